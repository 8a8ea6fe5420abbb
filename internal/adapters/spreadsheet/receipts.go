// internal/adapters/spreadsheet/receipts.go
package spreadsheet

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tealeg/xlsx/v3"

	"github.com/ammerola/lot-allocator/internal/core/domain"
)

// ReceiptSheet is the worksheet the seeder reads
const ReceiptSheet = "Lots"

// ReceiptColumns is the expected header row, in order
var ReceiptColumns = []string{"lot_no", "product_id", "warehouse_id", "quantity", "received_at", "expiry_date"}

// ParseReceipts reads lot receipts for one tenant from an xlsx workbook.
// Every malformed row is reported; no receipts are returned if any row fails.
func ParseReceipts(data []byte, tenantID uuid.UUID) ([]domain.LotReceipt, error) {
	file, err := xlsx.OpenBinary(data)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}

	sheet, ok := file.Sheet[ReceiptSheet]
	if !ok {
		return nil, fmt.Errorf("workbook has no %q sheet", ReceiptSheet)
	}

	var (
		receipts []domain.LotReceipt
		rowErrs  []error
		rowIdx   int
	)

	err = sheet.ForEachRow(func(r *xlsx.Row) error {
		rowIdx++
		if rowIdx == 1 {
			return checkHeader(r)
		}

		rec, err := parseReceiptRow(r, tenantID)
		if err != nil {
			rowErrs = append(rowErrs, fmt.Errorf("row %d: %w", rowIdx, err))
			return nil
		}
		if rec != nil {
			receipts = append(receipts, *rec)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read %q sheet: %w", ReceiptSheet, err)
	}

	if len(rowErrs) > 0 {
		return nil, errors.Join(rowErrs...)
	}

	return receipts, nil
}

func cellText(r *xlsx.Row, i int) string {
	c := r.GetCell(i)
	if c == nil {
		return ""
	}
	return strings.TrimSpace(c.String())
}

func checkHeader(r *xlsx.Row) error {
	for i, want := range ReceiptColumns {
		if got := strings.ToLower(cellText(r, i)); got != want {
			return fmt.Errorf("column %d: expected header %q, got %q", i+1, want, got)
		}
	}
	return nil
}

// parseReceiptRow returns nil for blank rows
func parseReceiptRow(r *xlsx.Row, tenantID uuid.UUID) (*domain.LotReceipt, error) {
	lotNo := cellText(r, 0)
	if lotNo == "" {
		return nil, nil
	}

	productID, err := uuid.Parse(cellText(r, 1))
	if err != nil {
		return nil, fmt.Errorf("invalid product_id: %w", err)
	}
	warehouseID, err := uuid.Parse(cellText(r, 2))
	if err != nil {
		return nil, fmt.Errorf("invalid warehouse_id: %w", err)
	}
	qty, err := decimal.NewFromString(cellText(r, 3))
	if err != nil {
		return nil, fmt.Errorf("invalid quantity: %w", err)
	}
	receivedAt, ok, err := cellTime(r, 4, parseTime)
	if err != nil {
		return nil, fmt.Errorf("invalid received_at: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: received_at is required", domain.ErrInvalidArgument)
	}

	rec := &domain.LotReceipt{
		TenantID:    tenantID,
		WarehouseID: warehouseID,
		ProductID:   productID,
		LotNo:       lotNo,
		Quantity:    qty,
		ReceivedAt:  receivedAt,
	}

	expiry, ok, err := cellTime(r, 5, parseDate)
	if err != nil {
		return nil, fmt.Errorf("invalid expiry_date: %w", err)
	}
	if ok {
		day := time.Date(expiry.Year(), expiry.Month(), expiry.Day(), 0, 0, 0, 0, time.UTC)
		rec.ExpiryDate = &day
	}

	if err := rec.Validate(); err != nil {
		return nil, err
	}
	return rec, nil
}

// cellTime reads a date column. Excel date cells hold a numeric serial and
// render through their number format, so they are converted before the text
// is parsed. ok is false for an empty cell.
func cellTime(r *xlsx.Row, i int, parse func(string) (time.Time, error)) (t time.Time, ok bool, err error) {
	c := r.GetCell(i)
	if c == nil {
		return time.Time{}, false, nil
	}
	if c.Type() == xlsx.CellTypeNumeric {
		if t, err := c.GetTime(false); err == nil {
			return t.Round(time.Second), true, nil
		}
	}

	s := strings.TrimSpace(c.String())
	if s == "" {
		return time.Time{}, false, nil
	}
	t, err = parse(s)
	return t, true, err
}

func parseDate(s string) (time.Time, error) {
	return time.Parse(time.DateOnly, s)
}

func parseTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse(time.DateOnly, s)
}
