package report

import (
	"github.com/mcclellann/emiLedger/pkg/ledger"
	"github.com/xuri/excelize/v2"
)

const (
	sheetName  = "Installments"
	dateLayout = "2006-01-02"
)

var header = []string{
	"Customer", "Contact", "Model", "EMI #", "Due Date", "Amount",
	"Paid", "Penalty", "Payable", "Status", "Overdue", "Paid Date",
}

// InstallmentsXLSX renders rows as a single-sheet workbook. Money columns
// are written as numbers so the sheet can sum them.
func InstallmentsXLSX(rows []ledger.InstallmentRow) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, err
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)

	for c, v := range header {
		cell, _ := excelize.CoordinatesToCellName(c+1, 1)
		_ = f.SetCellValue(sheetName, cell, v)
	}
	for r, row := range rows {
		paidDate := ""
		if row.PaidDate != nil {
			paidDate = row.PaidDate.Format(dateLayout)
		}
		overdue := "No"
		if row.Overdue {
			overdue = "Yes"
		}
		values := []any{
			row.Name,
			row.Contact,
			row.Model,
			row.Seq + 1,
			row.DueDate.Format(dateLayout),
			row.Amount.InexactFloat64(),
			row.PaidAmount.InexactFloat64(),
			row.Penalty.InexactFloat64(),
			row.Payable.InexactFloat64(),
			string(row.Status),
			overdue,
			paidDate,
		}
		for c, v := range values {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			_ = f.SetCellValue(sheetName, cell, v)
		}
	}

	_ = f.SetColWidth(sheetName, "A", "A", 24)
	_ = f.SetColWidth(sheetName, "B", "C", 16)
	_ = f.SetColWidth(sheetName, "D", "D", 8)
	_ = f.SetColWidth(sheetName, "E", "I", 12)
	_ = f.SetColWidth(sheetName, "J", "L", 12)

	style, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#1F2937"}, Pattern: 1},
	})
	_ = f.SetCellStyle(sheetName, "A1", "L1", style)
	_ = f.SetPanes(sheetName, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
