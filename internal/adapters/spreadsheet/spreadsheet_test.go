package spreadsheet_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v3"

	"github.com/ammerola/lot-allocator/internal/adapters/spreadsheet"
	"github.com/ammerola/lot-allocator/internal/core/domain"
	"github.com/ammerola/lot-allocator/test/helpers"
)

func readRows(t *testing.T, data []byte, sheetName string) [][]string {
	t.Helper()

	file, err := xlsx.OpenBinary(data)
	require.NoError(t, err)
	sheet, ok := file.Sheet[sheetName]
	require.True(t, ok, "missing sheet %s", sheetName)

	var rows [][]string
	err = sheet.ForEachRow(func(r *xlsx.Row) error {
		var cells []string
		err := r.ForEachCell(func(c *xlsx.Cell) error {
			cells = append(cells, c.String())
			return nil
		})
		rows = append(rows, cells)
		return err
	})
	require.NoError(t, err)
	return rows
}

func TestExpiringLotsWorkbook(t *testing.T) {
	today := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	lot := helpers.CreateTestLot(func(l *domain.Lot) {
		l.LotNo = "L-77"
		l.ExpiryDate = helpers.DatePtr(2024, 3, 15)
	})

	data, err := spreadsheet.ExpiringLotsWorkbook([]domain.Lot{lot}, today)
	require.NoError(t, err)

	rows := readRows(t, data, spreadsheet.ExpiringSheet)
	require.Len(t, rows, 2)
	assert.Equal(t, "Lot No", rows[0][1])
	assert.Equal(t, lot.ID.String(), rows[1][0])
	assert.Equal(t, "L-77", rows[1][1])
	assert.Equal(t, "ACTIVE", rows[1][3])
	assert.Equal(t, "2024-03-15", rows[1][5])
	assert.Equal(t, "5", rows[1][6])
}

func TestExpiringLotsWorkbook_Empty(t *testing.T) {
	data, err := spreadsheet.ExpiringLotsWorkbook(nil, time.Now())
	require.NoError(t, err)

	rows := readRows(t, data, spreadsheet.ExpiringSheet)
	assert.Len(t, rows, 1)
}

func TestAllocationPlanWorkbook(t *testing.T) {
	plan := &domain.AllocationPlan{
		Strategy:         domain.StrategyFIFO,
		RequiredQuantity: helpers.Dec("200"),
		Allocations: []domain.LotAllocation{
			{LotID: uuid.New(), LotNo: "L1", AllocatedQuantity: helpers.Dec("100"), AvailableQuantity: helpers.Dec("100")},
			{LotID: uuid.New(), LotNo: "L2", AllocatedQuantity: helpers.Dec("100"), AvailableQuantity: helpers.Dec("150"), ExpiryDate: helpers.DatePtr(2024, 9, 1)},
		},
	}

	data, err := spreadsheet.AllocationPlanWorkbook(plan)
	require.NoError(t, err)

	rows := readRows(t, data, spreadsheet.AllocationSheet)
	require.Len(t, rows, 4)
	assert.Equal(t, "L2", rows[2][1])
	assert.Equal(t, "100.0000", rows[2][2])
	assert.Equal(t, "150.0000", rows[2][3])
	assert.Equal(t, "2024-09-01", rows[2][4])
	assert.Equal(t, "Total", rows[3][1])
	assert.Equal(t, "200.0000", rows[3][2])
}

func receiptWorkbook(t *testing.T, rows ...[]string) []byte {
	t.Helper()

	file := xlsx.NewFile()
	sheet, err := file.AddSheet(spreadsheet.ReceiptSheet)
	require.NoError(t, err)

	for _, values := range append([][]string{spreadsheet.ReceiptColumns}, rows...) {
		row := sheet.AddRow()
		for _, v := range values {
			row.AddCell().SetString(v)
		}
	}

	var buf bytes.Buffer
	require.NoError(t, file.Write(&buf))
	return buf.Bytes()
}

func TestParseReceipts(t *testing.T) {
	tenant, product, warehouse := uuid.New(), uuid.New(), uuid.New()

	data := receiptWorkbook(t,
		[]string{"L-1", product.String(), warehouse.String(), "12.5", "2024-01-02", "2024-06-30"},
		[]string{"L-2", product.String(), warehouse.String(), "7", "2024-01-03T10:00:00Z", ""},
		[]string{"", "", "", "", "", ""},
	)

	receipts, err := spreadsheet.ParseReceipts(data, tenant)
	require.NoError(t, err)
	require.Len(t, receipts, 2)

	assert.Equal(t, tenant, receipts[0].TenantID)
	assert.Equal(t, "L-1", receipts[0].LotNo)
	assert.True(t, helpers.Dec("12.5").Equal(receipts[0].Quantity))
	require.NotNil(t, receipts[0].ExpiryDate)
	assert.Equal(t, "2024-06-30", receipts[0].ExpiryDate.Format(time.DateOnly))

	assert.Nil(t, receipts[1].ExpiryDate)
	assert.Equal(t, 10, receipts[1].ReceivedAt.Hour())
}

func TestParseReceipts_ExcelDateCells(t *testing.T) {
	tenant, product, warehouse := uuid.New(), uuid.New(), uuid.New()

	file := xlsx.NewFile()
	sheet, err := file.AddSheet(spreadsheet.ReceiptSheet)
	require.NoError(t, err)

	header := sheet.AddRow()
	for _, col := range spreadsheet.ReceiptColumns {
		header.AddCell().SetString(col)
	}

	row := sheet.AddRow()
	row.AddCell().SetString("L-1")
	row.AddCell().SetString(product.String())
	row.AddCell().SetString(warehouse.String())
	row.AddCell().SetString("3")
	row.AddCell().SetDate(time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC))
	row.AddCell().SetDate(time.Date(2024, time.June, 30, 0, 0, 0, 0, time.UTC))

	var buf bytes.Buffer
	require.NoError(t, file.Write(&buf))

	receipts, err := spreadsheet.ParseReceipts(buf.Bytes(), tenant)
	require.NoError(t, err)
	require.Len(t, receipts, 1)

	assert.Equal(t, "2024-01-02", receipts[0].ReceivedAt.Format(time.DateOnly))
	require.NotNil(t, receipts[0].ExpiryDate)
	assert.Equal(t, "2024-06-30", receipts[0].ExpiryDate.Format(time.DateOnly))
}

func TestParseReceipts_Errors(t *testing.T) {
	tenant, product, warehouse := uuid.New(), uuid.New(), uuid.New()

	tests := []struct {
		name     string
		data     []byte
		contains []string
	}{
		{
			name:     "not_a_workbook",
			data:     []byte("plain text"),
			contains: []string{"failed to open workbook"},
		},
		{
			name: "bad_rows_reported_together",
			data: receiptWorkbook(t,
				[]string{"L-1", "not-a-uuid", warehouse.String(), "1", "2024-01-01", ""},
				[]string{"L-2", product.String(), warehouse.String(), "abc", "2024-01-01", ""},
				[]string{"L-3", product.String(), warehouse.String(), "-1", "2024-01-01", ""},
			),
			contains: []string{"row 2: invalid product_id", "row 3: invalid quantity", "row 4:"},
		},
		{
			name: "quantity_finer_than_stored_scale",
			data: receiptWorkbook(t,
				[]string{"L-1", product.String(), warehouse.String(), "1.00005", "2024-01-01", ""},
			),
			contains: []string{"row 2:", "decimal places"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			receipts, err := spreadsheet.ParseReceipts(tt.data, tenant)
			require.Error(t, err)
			assert.Nil(t, receipts)
			for _, s := range tt.contains {
				assert.Contains(t, err.Error(), s)
			}
		})
	}
}

func TestParseReceipts_WrongHeader(t *testing.T) {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet(spreadsheet.ReceiptSheet)
	require.NoError(t, err)
	sheet.AddRow().AddCell().SetString("lot")

	var buf bytes.Buffer
	require.NoError(t, file.Write(&buf))

	_, err = spreadsheet.ParseReceipts(buf.Bytes(), uuid.New())
	assert.ErrorContains(t, err, `expected header "lot_no"`)
}
