package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/gocarina/gocsv"

	"github.com/joseph-ayodele/amenity-parser/internal/entity"
)

// Separator is the column separator of the CSV export (spreadsheet locale default in Russia).
const Separator = ';'

// Row is one export line. Header names are the Russian column titles
// operators open in spreadsheets.
type Row struct {
	Name        string `csv:"Название"`
	Address     string `csv:"Адрес"`
	District    string `csv:"Район"`
	Category    string `csv:"Тип"`
	Status      string `csv:"Статус"`
	Description string `csv:"Описание"`
	Area        string `csv:"Площадь"`
	Budget      string `csv:"Бюджет"`
	EndDate     string `csv:"Дата завершения"`
	Lat         string `csv:"Широта"`
	Lng         string `csv:"Долгота"`
}

// Headers returns the column titles in order.
func Headers() []string {
	return []string{"Название", "Адрес", "Район", "Тип", "Статус", "Описание", "Площадь", "Бюджет", "Дата завершения", "Широта", "Долгота"}
}

func toRow(r entity.AmenityRecord) Row {
	row := Row{
		Name:        r.Name,
		Address:     r.Address,
		District:    r.District,
		Category:    r.Category,
		Status:      r.Status,
		Description: r.Description,
		EndDate:     r.EndDate,
		Lat:         strconv.FormatFloat(r.Coordinates.Lat, 'f', -1, 64),
		Lng:         strconv.FormatFloat(r.Coordinates.Lng, 'f', -1, 64),
	}
	if r.AreaSqM != nil {
		row.Area = r.AreaSqM.String()
	}
	if r.Budget != nil {
		row.Budget = r.Budget.String()
	}
	return row
}

// WriteCSV writes a header line and one row per record.
func WriteCSV(w io.Writer, records []entity.AmenityRecord) error {
	rows := make([]*Row, 0, len(records))
	for _, r := range records {
		row := toRow(r)
		rows = append(rows, &row)
	}
	cw := csv.NewWriter(w)
	cw.Comma = Separator
	if len(rows) == 0 {
		if err := cw.Write(Headers()); err != nil {
			return err
		}
		cw.Flush()
		return cw.Error()
	}
	if err := gocsv.MarshalCSV(&rows, gocsv.NewSafeCSVWriter(cw)); err != nil {
		return fmt.Errorf("encode csv: %w", err)
	}
	return nil
}
