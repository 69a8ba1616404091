package feed

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/gnavadev/fraud-watch/internal/domain/model"
)

// ErrUnsupportedFormat is returned for feed files that are neither CSV nor XLSX.
var ErrUnsupportedFormat = errors.New("feed: unsupported file format")

// ReadCSV parses a licensing-lookup CSV export. The first row is the header.
func ReadCSV(r io.Reader) ([]model.RawProviderRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("feed: read csv: %w", err)
	}
	return fromRows(rows)
}

// ReadXLSX parses the first sheet of a licensing-lookup workbook.
func ReadXLSX(r io.Reader) ([]model.RawProviderRecord, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("feed: open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("feed: workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("feed: read sheet %q: %w", sheets[0], err)
	}
	return fromRows(rows)
}

// ReadFile opens path and parses it according to its extension.
func ReadFile(path string) ([]model.RawProviderRecord, error) {
	var read func(io.Reader) ([]model.RawProviderRecord, error)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		read = ReadCSV
	case ".xlsx":
		read = ReadXLSX
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("feed: %w", err)
	}
	defer f.Close()

	return read(f)
}

func fromRows(rows [][]string) ([]model.RawProviderRecord, error) {
	if len(rows) == 0 {
		return nil, errors.New("feed: empty file")
	}
	h, err := newHeader(rows[0])
	if err != nil {
		return nil, err
	}
	return toRecords(h, rows[1:]), nil
}
