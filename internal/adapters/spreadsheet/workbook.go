// internal/adapters/spreadsheet/workbook.go
package spreadsheet

import (
	"bytes"
	"fmt"
	"time"

	"github.com/tealeg/xlsx/v3"

	"github.com/ammerola/lot-allocator/internal/core/domain"
)

// ContentType is the MIME type of the generated workbooks
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const (
	ExpiringSheet   = "Expiring Lots"
	AllocationSheet = "Allocation"
)

var expiringHeaders = []string{
	"Lot ID", "Lot No", "Product ID", "Status", "Created At", "Expiry Date", "Days Until Expiry",
}

var allocationHeaders = []string{
	"Lot ID", "Lot No", "Allocated Quantity", "Available Quantity", "Expiry Date",
}

// ExpiringLotsWorkbook renders lots nearing expiry, with days counted from today
func ExpiringLotsWorkbook(lots []domain.Lot, today time.Time) ([]byte, error) {
	file := xlsx.NewFile()

	sheet, err := file.AddSheet(ExpiringSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to add worksheet: %w", err)
	}
	addHeader(sheet, expiringHeaders)

	for i := range lots {
		lot := &lots[i]
		row := sheet.AddRow()
		row.AddCell().SetString(lot.ID.String())
		row.AddCell().SetString(lot.LotNo)
		row.AddCell().SetString(lot.ProductID.String())
		row.AddCell().SetString(string(lot.Status))
		row.AddCell().SetString(lot.CreatedAt.Format(time.RFC3339))
		row.AddCell().SetString(formatDate(lot.ExpiryDate))

		days := row.AddCell()
		if d, ok := lot.DaysUntilExpiry(today); ok {
			days.SetInt(d)
		}
	}

	return write(file)
}

// AllocationPlanWorkbook renders a plan as one row per consumed lot plus a total
func AllocationPlanWorkbook(plan *domain.AllocationPlan) ([]byte, error) {
	file := xlsx.NewFile()

	sheet, err := file.AddSheet(AllocationSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to add worksheet: %w", err)
	}
	addHeader(sheet, allocationHeaders)

	for _, a := range plan.Allocations {
		row := sheet.AddRow()
		row.AddCell().SetString(a.LotID.String())
		row.AddCell().SetString(a.LotNo)
		row.AddCell().SetString(a.AllocatedQuantity.StringFixed(domain.QuantityScale))
		row.AddCell().SetString(a.AvailableQuantity.StringFixed(domain.QuantityScale))
		row.AddCell().SetString(formatDate(a.ExpiryDate))
	}

	total := sheet.AddRow()
	total.AddCell()
	label := total.AddCell()
	label.SetString("Total")
	label.GetStyle().Font.Bold = true
	total.AddCell().SetString(plan.TotalAllocated().StringFixed(domain.QuantityScale))

	return write(file)
}

func addHeader(sheet *xlsx.Sheet, headers []string) {
	row := sheet.AddRow()
	for i, h := range headers {
		cell := row.AddCell()
		cell.SetString(h)
		cell.GetStyle().Font.Bold = true
		cell.GetStyle().Fill.PatternType = "solid"
		cell.GetStyle().Fill.FgColor = "CCCCCC"
		sheet.SetColWidth(i+1, i+1, 20)
	}
}

func write(file *xlsx.File) ([]byte, error) {
	var buffer bytes.Buffer
	if err := file.Write(&buffer); err != nil {
		return nil, fmt.Errorf("failed to write Excel file to buffer: %w", err)
	}
	return buffer.Bytes(), nil
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.DateOnly)
}
