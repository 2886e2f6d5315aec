// Package export serializes record collections for download.
package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"actas/internal/model"
)

// Format is a downloadable table format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// BaseName is the download name without extension.
const BaseName = "resultado_actas"

var ErrUnknownFormat = errors.New("unknown export format")

// Columns is the fixed column order of every export.
var Columns = []string{"ID", "Institución", "Responsable", "DNI", "Archivo", "Estado", "Detalle"}

// utf8BOM lets spreadsheet tools detect the encoding of the CSV.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ParseFormat accepts "csv" or "xlsx" in any case; empty means CSV.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Filename is the attachment name for f.
func (f Format) Filename() string { return BaseName + "." + string(f) }

// ContentType is the MIME type for f.
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// Row renders a record in Columns order.
func Row(r model.Record) []string {
	return []string{r.ID, r.Institution, r.ResponsibleName, r.DNI, r.SourceFilename, string(r.Status), r.Reason}
}

func fromRow(row []string) model.Record {
	get := func(i int) string {
		if i < len(row) {
			return row[i]
		}
		return ""
	}
	return model.Record{
		ID:              get(0),
		Institution:     get(1),
		ResponsibleName: get(2),
		DNI:             get(3),
		SourceFilename:  get(4),
		Status:          model.Status(get(5)),
		Reason:          get(6),
	}
}

// Write serializes recs to w in the given format.
func Write(w io.Writer, f Format, recs model.Collection) error {
	switch f {
	case FormatCSV:
		return WriteCSV(w, recs)
	case FormatXLSX:
		return WriteXLSX(w, recs)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}

// Bytes is Write into a buffer.
func Bytes(f Format, recs model.Collection) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, f, recs); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteCSV writes a UTF-8 CSV with byte-order mark and a header row.
func WriteCSV(w io.Writer, recs model.Collection) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return err
	}
	for _, r := range recs {
		if err := cw.Write(Row(r)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV parses a file produced by WriteCSV back into records.
func ReadCSV(r io.Reader) (model.Collection, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	return fromRows(rows)
}

func fromRows(rows [][]string) (model.Collection, error) {
	if len(rows) == 0 {
		return nil, errors.New("missing header row")
	}
	if strings.Join(rows[0], ",") != strings.Join(Columns, ",") {
		return nil, fmt.Errorf("unexpected header %v", rows[0])
	}
	out := make(model.Collection, 0, len(rows)-1)
	for _, row := range rows[1:] {
		out = append(out, fromRow(row))
	}
	return out, nil
}
