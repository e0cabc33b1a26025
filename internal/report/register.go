// Package report renders the GST sales register of a company as a workbook.
package report

import (
	"fmt"
	"io"

	"invoice-service/internal/model"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// ContentType is the media type of the workbook
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const sheetName = "Sales Register"

var headings = []string{
	"Invoice No", "Bill No", "Bill Date", "Customer", "Customer GSTIN",
	"Assessable Value", "SGST", "CGST", "IGST", "Bill Value", "GST", "Status",
}

// Filename is the suggested download name, e.g. "gst-register-0001-2425.xlsx"
func Filename(companyID, year string) string {
	return fmt.Sprintf("gst-register-%s-%s.xlsx", companyID, year)
}

// SalesRegister lays out one row per invoice followed by a totals row.
// Inactive invoices are listed, to keep the numbering visible, but left
// out of the totals.
func SalesRegister(company *model.CompanyProfile, year string, invoices []model.Invoice) (*excelize.File, error) {
	f := newWorkbook()
	if err := layout(f, company, year, invoices); err != nil {
		_ = f.Close()
		return nil, err
	}
	return f, nil
}

// newWorkbook is replaced in tests
var newWorkbook = excelize.NewFile

func layout(f *excelize.File, company *model.CompanyProfile, year string, invoices []model.Invoice) error {
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return err
	}

	if err := f.SetCellValue(sheetName, "A1", fmt.Sprintf("%s (%s) GST sales register FY %s", company.CompanyName, company.ID, year)); err != nil {
		return err
	}

	const headerRow = 3
	for i, h := range headings {
		cell, err := excelize.CoordinatesToCellName(i+1, headerRow)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return err
		}
	}

	var assess, sgst, cgst, igst, bill decimal.Decimal
	row := headerRow + 1
	for _, inv := range invoices {
		customer, gstin := "", ""
		if inv.Customer != nil {
			customer = inv.Customer.CustomerName
			if inv.Customer.GSTNumber != nil {
				gstin = *inv.Customer.GSTNumber
			}
		}
		status := "Active"
		if !inv.IsActive {
			status = "Inactive"
		} else {
			assess = assess.Add(inv.TotalAssessableValue)
			sgst = sgst.Add(inv.SGSTAmount)
			cgst = cgst.Add(inv.CGSTAmount)
			igst = igst.Add(inv.IGSTAmount)
			bill = bill.Add(inv.BillValue)
		}
		gst := "No"
		if inv.GST == 1 {
			gst = "Yes"
		}

		values := []interface{}{
			inv.InvoiceNumber,
			inv.BillNumber,
			inv.BillDate.Format("02-01-2006"),
			customer,
			gstin,
			inv.TotalAssessableValue.InexactFloat64(),
			inv.SGSTAmount.InexactFloat64(),
			inv.CGSTAmount.InexactFloat64(),
			inv.IGSTAmount.InexactFloat64(),
			inv.BillValue.InexactFloat64(),
			gst,
			status,
		}
		if err := setRow(f, row, values); err != nil {
			return err
		}
		row++
	}

	totals := []interface{}{
		"Total", "", "", "", "",
		assess.InexactFloat64(),
		sgst.InexactFloat64(),
		cgst.InexactFloat64(),
		igst.InexactFloat64(),
		bill.InexactFloat64(),
	}
	return setRow(f, row, totals)
}

// WriteSalesRegister renders the register to w
func WriteSalesRegister(w io.Writer, company *model.CompanyProfile, year string, invoices []model.Invoice) error {
	f, err := SalesRegister(company, year, invoices)
	if err != nil {
		return err
	}
	defer f.Close()

	return f.Write(w)
}

func setRow(f *excelize.File, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheetName, cell, &values)
}
