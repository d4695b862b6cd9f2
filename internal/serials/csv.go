package serials

import (
	"encoding/csv"
	"io"
	"strings"

	pkgerrors "github.com/armeriaops/armimport-backend/pkg/errors"
)

// csvColumns maps recognized header names onto import row fields.
var csvColumns = map[string]func(*ImportRow, string){
	"serial_number": func(r *ImportRow, v string) { r.SerialNumber = v },
	"serial":        func(r *ImportRow, v string) { r.SerialNumber = v },
	"external_id":   func(r *ImportRow, v string) { r.ExternalID = v },
	"code":          func(r *ImportRow, v string) { r.Code = v },
	"name":          func(r *ImportRow, v string) { r.Name = v },
	"caliber":       func(r *ImportRow, v string) { r.Caliber = v },
	"brand":         func(r *ImportRow, v string) { r.Brand = v },
	"category":      func(r *ImportRow, v string) { r.Category = v },
}

// ParseCSVRows reads bulk import rows from a CSV body. Two shapes are
// accepted: a headered file whose columns name import row fields
// (serial_number plus optional model hints), and a bare single-column list
// of serial numbers.
func ParseCSVRows(r io.Reader) ([]ImportRow, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "parse csv")
	}
	if len(records) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "csv body is empty")
	}

	setters, headered := headerSetters(records[0])
	if headered {
		records = records[1:]
	}

	rows := make([]ImportRow, 0, len(records))
	for _, record := range records {
		var row ImportRow
		if headered {
			for i, cell := range record {
				if set := setters[i]; set != nil {
					set(&row, strings.TrimSpace(cell))
				}
			}
		} else {
			row.SerialNumber = strings.TrimSpace(record[0])
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// headerSetters treats the first record as a header only when every cell
// names a known column; a bare serial list falls through as data.
func headerSetters(record []string) ([]func(*ImportRow, string), bool) {
	setters := make([]func(*ImportRow, string), len(record))
	for i, cell := range record {
		set, ok := csvColumns[strings.ToLower(strings.TrimSpace(cell))]
		if !ok {
			return nil, false
		}
		setters[i] = set
	}
	return setters, true
}
