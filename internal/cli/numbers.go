package cli

import (
	"errors"
	"fmt"
	"time"

	"invoice-service/internal/fiscal"
	"invoice-service/internal/sequence"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// errPreview rolls back the preview transaction
var errPreview = errors.New("preview")

func parseDay(s string, now time.Time) (time.Time, error) {
	if s == "" {
		return now, nil
	}
	t, err := time.ParseInLocation("2006-01-02", s, now.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, use YYYY-MM-DD", s)
	}
	return t, nil
}

func newFiscalYearCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "fiscal-year [date]",
		Short: "Print the financial year code of a date",
		Example: `  invoicectl fiscal-year 2025-03-31   # 2425
  invoicectl fiscal-year              # today`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var raw string
			if len(args) == 1 {
				raw = args[0]
			}
			day, err := parseDay(raw, a.now())
			if err != nil {
				return err
			}
			return printf(cmd.OutOrStdout(), "%s\n", fiscal.YearOf(day))
		},
	}
}

func newNextNumbersCommand(a *app) *cobra.Command {
	var (
		companyID string
		date      string
		gst       bool
	)

	cmd := &cobra.Command{
		Use:   "next-numbers",
		Short: "Show the numbers the next invoice and company would get",
		Long: `next-numbers allocates the next invoice number, company ID and, with
--company, the next bill number inside a transaction that is rolled back,
so nothing is consumed.`,
		Example: `  invoicectl next-numbers
  invoicectl next-numbers --company 0001 --date 2025-05-01 --gst`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := parseDay(date, a.now())
			if err != nil {
				return err
			}
			year := fiscal.YearOf(day)

			db, err := a.openDB()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			var invoiceNumber, companyNumber, billNumber string
			err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
				var err error
				if invoiceNumber, err = sequence.NextInvoiceNumber(ctx, tx); err != nil {
					return err
				}
				if companyNumber, err = sequence.NextCompanyID(ctx, tx); err != nil {
					return err
				}
				if companyID != "" {
					if billNumber, err = sequence.NextBillNumber(ctx, tx, companyID, year, gst); err != nil {
						return err
					}
				}
				return errPreview
			})
			if !errors.Is(err, errPreview) {
				return err
			}

			out := cmd.OutOrStdout()
			if err := printf(out, "invoice number: %s\ncompany id: %s\n", invoiceNumber, companyNumber); err != nil {
				return err
			}
			if companyID == "" {
				return nil
			}
			return printf(out, "bill number: %s (company %s, year %s, gst %t)\n", billNumber, companyID, year, gst)
		},
	}

	cmd.Flags().StringVar(&companyID, "company", "", "Company ID for the bill number")
	cmd.Flags().StringVar(&date, "date", "", "Bill date (YYYY-MM-DD, default: today)")
	cmd.Flags().BoolVar(&gst, "gst", false, "Preview the GST bill series")
	return cmd
}
