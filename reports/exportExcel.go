package reports

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Sheet1"

type ExcelExporter interface {
	GetCellValues() []interface{}
}

// writeExcel writes one heading row followed by one row per record.
func writeExcel[T ExcelExporter](w io.Writer, data []T, headings ...string) error {
	f := excelize.NewFile()
	defer f.Close()

	for i, h := range headings {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return err
		}
	}

	rowNo := 2
	for _, d := range data {
		for i, value := range d.GetCellValues() {
			cell, err := excelize.CoordinatesToCellName(i+1, rowNo)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				return fmt.Errorf("row %d: %w", rowNo, err)
			}
		}
		rowNo++
	}

	return f.Write(w)
}
