// internal/importer/excel.go
package importer

import (
	"fmt"
	"strings"

	"github.com/tealeg/xlsx/v3"
)

const excelColumns = 5

// ParseExcel reads the first sheet of an .xlsx workbook. The first row is a
// header; blank rows are skipped and invalid rows are reported in Result.Errors.
func ParseExcel(data []byte) (*Result, error) {
	file, err := xlsx.OpenBinary(data)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}

	result := &Result{}
	if len(file.Sheets) == 0 {
		return result, nil
	}

	sheet := file.Sheets[0]

	err = sheet.ForEachRow(func(r *xlsx.Row) error {
		rowNum := r.GetCoordinate() + 1
		if rowNum == 1 {
			return nil
		}

		fields := make([]string, excelColumns)
		for i := range fields {
			c := r.GetCell(i)
			if c != nil {
				fields[i] = strings.TrimSpace(c.String())
			}
		}
		if blank(fields) {
			return nil
		}

		result.Rows++
		input, err := parseFields(fields)
		if err != nil {
			result.reject(rowNum, "%s", err.Error())
			return nil
		}
		result.Inputs = append(result.Inputs, input)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to process Excel rows: %w", err)
	}

	return result, nil
}
