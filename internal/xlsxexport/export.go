// Package xlsxexport renders extractions as an Excel workbook with the same
// columns as the CSV export.
package xlsxexport

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"docex/internal/csvexport"
	"docex/internal/domain"
)

// SheetName is the worksheet holding the export rows.
const SheetName = "Extractions"

// Render builds the workbook and returns its bytes.
func Render(exts []domain.Extraction) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return nil, fmt.Errorf("xlsx rename sheet: %w", err)
	}
	activeIndex, _ := f.GetSheetIndex(SheetName)
	f.SetActiveSheet(activeIndex)

	if err := writeRow(f, 1, csvexport.Columns); err != nil {
		return nil, err
	}
	for i := range exts {
		if err := writeRow(f, i+2, csvexport.ExtractionToRow(&exts[i])); err != nil {
			return nil, err
		}
	}

	_ = f.SetColWidth(SheetName, "A", "A", 38) // id
	_ = f.SetColWidth(SheetName, "G", "I", 16) // type, number, date
	_ = f.SetColWidth(SheetName, "J", "K", 36) // client name, address
	_ = f.SetColWidth(SheetName, "T", "U", 36) // receiver name, address
	_ = f.SetPanes(SheetName, &excelize.Panes{
		Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft",
	})

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRow(f *excelize.File, row int, values []string) error {
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return fmt.Errorf("xlsx cell: %w", err)
		}
		if err := f.SetCellValue(SheetName, cell, v); err != nil {
			return fmt.Errorf("xlsx set %s: %w", cell, err)
		}
	}
	return nil
}
