package cli

import (
	"fmt"
	"regexp"

	"invoice-service/internal/fiscal"
	"invoice-service/internal/invoice"
	"invoice-service/internal/report"
	"invoice-service/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var yearPattern = regexp.MustCompile(`^\d{4}$`)

func newExportCommand(a *app) *cobra.Command {
	var (
		companyID string
		year      string
		out       string
	)

	cmd := &cobra.Command{
		Use:     "export",
		Short:   "Write the GST sales register of a company to an xlsx file",
		Example: `  invoicectl export --company 0001 --year 2425 --out register.xlsx`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if companyID == "" {
				return fmt.Errorf("--company is required")
			}
			if year == "" {
				year = fiscal.YearOf(a.now())
			}
			if !yearPattern.MatchString(year) {
				return fmt.Errorf("invalid financial year %q", year)
			}
			if out == "" {
				out = report.Filename(companyID, year)
			}

			db, err := a.openDB()
			if err != nil {
				return err
			}

			profile, invoices, err := invoice.NewService(db, a.now).ForYear(cmd.Context(), companyID, year)
			if err != nil {
				return err
			}

			f, err := report.SalesRegister(profile, year, invoices)
			if err != nil {
				return err
			}
			defer f.Close()
			if err := f.SaveAs(out); err != nil {
				return fmt.Errorf("save %s: %w", out, err)
			}

			logger.GetLogger().Info("Sales register exported",
				zap.String("company_id", companyID),
				zap.String("year", year),
				zap.Int("invoices", len(invoices)),
				zap.String("file", out))
			return printf(cmd.OutOrStdout(), "wrote %d invoices to %s\n", len(invoices), out)
		},
	}

	cmd.Flags().StringVar(&companyID, "company", "", "Company ID")
	cmd.Flags().StringVar(&year, "year", "", "Financial year code such as 2425 (default: current)")
	cmd.Flags().StringVar(&out, "out", "", "Output file (default: gst-register-<company>-<year>.xlsx)")
	return cmd
}
