package xlsxexport_test

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"docex/internal/csvexport"
	"docex/internal/domain"
	"docex/internal/xlsxexport"
)

func TestRender(t *testing.T) {
	doc := domain.NewDocumentRecord()
	doc.DocumentType = domain.DocumentTypePurchaseOrder
	doc.DocumentNumber = "PO-55"
	doc.TotalAmount = "1,000.00"
	result, err := json.Marshal(doc)
	require.NoError(t, err)

	exts := []domain.Extraction{
		{ID: uuid.New(), Status: domain.ExtractionStatusCompleted, Result: result, CreatedAt: time.Now()},
		{ID: uuid.New(), Status: domain.ExtractionStatusQueued, CreatedAt: time.Now()},
	}

	data, err := xlsxexport.Render(exts)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{xlsxexport.SheetName}, f.GetSheetList())

	rows, err := f.GetRows(xlsxexport.SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, csvexport.Columns, rows[0])
	assert.Equal(t, exts[0].ID.String(), rows[1][0])
	assert.Equal(t, "Purchase Order", rows[1][6])
	assert.Equal(t, "PO-55", rows[1][7])
	assert.Equal(t, "1,000.00", rows[1][32])
	assert.Equal(t, "queued", rows[2][2])
}

func TestRender_Empty(t *testing.T) {
	data, err := xlsxexport.Render(nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	rows, err := f.GetRows(xlsxexport.SheetName)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
