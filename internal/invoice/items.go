package invoice

import (
	"sort"
	"strconv"
	"strings"

	"invoice-service/internal/apperror"
	"invoice-service/internal/model"
	"invoice-service/internal/validation"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// buildItems checks each line and computes its amount. It does not touch
// the store; product existence is checked by checkProducts.
func buildItems(in []ItemInput) ([]model.InvoiceItem, error) {
	if len(in) == 0 {
		return nil, apperror.Validation("At least one invoice item is required.")
	}

	items := make([]model.InvoiceItem, 0, len(in))
	for i, it := range in {
		if it.ProductID == 0 {
			return nil, apperror.Validation("Product ID required for item %d", i+1)
		}
		if !validation.IsUOM(it.UOM) {
			return nil, apperror.Validation("Invalid UOM for product %d", it.ProductID)
		}
		if it.Rate == nil || it.Rate.IsNegative() {
			return nil, apperror.Validation("Invalid rate for product %d", it.ProductID)
		}

		// a missing or zero quantity means one unit
		quantity := 1
		if it.Quantity != nil && *it.Quantity != 0 {
			quantity = *it.Quantity
		}
		if quantity <= 0 {
			return nil, apperror.Validation("Invalid quantity for product %d", it.ProductID)
		}

		var hsn *string
		if it.HSNCode != nil && strings.TrimSpace(*it.HSNCode) != "" {
			code := strings.TrimSpace(*it.HSNCode)
			if !validation.IsHSN(code) {
				return nil, apperror.Validation("Invalid HSN code for product %d", it.ProductID)
			}
			hsn = &code
		}

		rate := it.Rate.Round(2)
		items = append(items, model.InvoiceItem{
			ProductID: it.ProductID,
			HSNCode:   hsn,
			UOM:       validation.NormalizeUOM(it.UOM),
			Quantity:  quantity,
			Rate:      rate,
			Amount:    rate.Mul(decimal.NewFromInt(int64(quantity))).Round(2),
		})
	}
	return items, nil
}

func sumAmounts(items []model.InvoiceItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Amount)
	}
	return total
}

// checkProducts verifies every referenced product with one query and
// reports all missing IDs together.
func checkProducts(tx *gorm.DB, items []model.InvoiceItem) error {
	wanted := make(map[uint]bool, len(items))
	ids := make([]uint, 0, len(items))
	for _, it := range items {
		if !wanted[it.ProductID] {
			wanted[it.ProductID] = true
			ids = append(ids, it.ProductID)
		}
	}

	var found []uint
	if err := tx.Model(&model.Product{}).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
		return err
	}
	for _, id := range found {
		delete(wanted, id)
	}
	if len(wanted) == 0 {
		return nil
	}

	missing := make([]uint, 0, len(wanted))
	for id := range wanted {
		missing = append(missing, id)
	}
	sort.Slice(missing, func(i, j int) bool { return missing[i] < missing[j] })

	parts := make([]string, len(missing))
	for i, id := range missing {
		parts[i] = strconv.FormatUint(uint64(id), 10)
	}
	return apperror.Validation("Invalid productId(s): %s", strings.Join(parts, ", "))
}

func round(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return d.Round(2)
}
