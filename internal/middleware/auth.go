package middleware

import (
	"net/http"
	"strings"

	"invoice-service/pkg/jwtutil"
	"invoice-service/pkg/logger"
	"invoice-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// JWTAuthMiddleware validates the bearer token and stores the caller's
// identity in the context under user_id, email, company_id and role.
func JWTAuthMiddleware(jwtUtil *jwtutil.JWTUtil) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromContext(c)
			prometheus.AuthAttemptsCounter.Inc()

			// Extract the token from the Authorization header
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				log.Warn("Missing authorization header")
				prometheus.AuthErrorsCounter.Inc()
				return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "error": "authentication required"})
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				log.Warn("Invalid authorization header format")
				prometheus.AuthErrorsCounter.Inc()
				return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "error": "invalid authorization header format"})
			}

			claims, err := jwtUtil.ValidateToken(strings.TrimSpace(parts[1]))
			if err != nil {
				log.Warn("Invalid or expired token", zap.Error(err))
				prometheus.AuthErrorsCounter.Inc()
				return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "error": "invalid or expired token"})
			}

			prometheus.AuthSuccessCounter.Inc()

			c.Set("user_id", claims.UserID)
			c.Set("email", claims.Email)
			c.Set("company_id", claims.CompanyID)
			c.Set("role", claims.Role)

			log = log.With(
				zap.Uint("user_id", claims.UserID),
				zap.String("email", claims.Email),
			)
			c.Set("logger", log)
			c.SetRequest(c.Request().WithContext(logger.WithLogger(c.Request().Context(), log)))

			return next(c)
		}
	}
}
