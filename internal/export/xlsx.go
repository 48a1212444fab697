package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/amenity-parser/internal/entity"
)

const sheetName = "Объекты"

// BuildXLSX returns a workbook with the CSV columns. Budget, area and
// coordinates are written as numbers.
func BuildXLSX(records []entity.AmenityRecord) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, err
	}

	for i, h := range Headers() {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheetName, cell, h)
	}

	row := 2
	for _, r := range records {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheetName, cell, v)
		}
		write(1, r.Name)
		write(2, r.Address)
		write(3, r.District)
		write(4, r.Category)
		write(5, r.Status)
		write(6, truncate(r.Description, 500))
		if r.AreaSqM != nil {
			write(7, r.AreaSqM.InexactFloat64())
		}
		if r.Budget != nil {
			write(8, r.Budget.InexactFloat64())
		}
		write(9, r.EndDate)
		write(10, r.Coordinates.Lat)
		write(11, r.Coordinates.Lng)
		row++
	}

	_ = f.SetColWidth(sheetName, "A", "A", 48) // name
	_ = f.SetColWidth(sheetName, "B", "B", 40) // address
	_ = f.SetColWidth(sheetName, "C", "E", 20)
	_ = f.SetColWidth(sheetName, "F", "F", 60) // description
	_ = f.SetColWidth(sheetName, "G", "K", 16)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
