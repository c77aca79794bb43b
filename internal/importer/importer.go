package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Row is one data row extracted from an uploaded sales file. Values are kept
// as raw strings; validation and conversion happen per row during import so a
// malformed row never aborts the batch.
type Row struct {
	Line          int // 1-based position within the data rows
	ClientName    string
	ClientEmail   string
	ClientPhone   string
	Date          string
	Amount        string
	Quantity      string
	ProductFamily string
	ProductName   string
	InvoiceNumber string
	Notes         string
}

// ParseCSV reads a CSV file with a header row into Rows. Column order is
// free; headers are matched case-insensitively.
func ParseCSV(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return fromRecords(records)
}

// ParseXLSX reads the first sheet of an XLSX workbook into Rows.
func ParseXLSX(r io.Reader) ([]Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return fromRecords(records)
}

func fromRecords(records [][]string) ([]Row, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("file is empty")
	}

	index := make(map[string]int, len(records[0]))
	for i, h := range records[0] {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}

	cell := func(rec []string, name string) string {
		i, ok := index[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	rows := make([]Row, 0, len(records)-1)
	for n, rec := range records[1:] {
		rows = append(rows, Row{
			Line:          n + 1,
			ClientName:    cell(rec, "clientname"),
			ClientEmail:   cell(rec, "clientemail"),
			ClientPhone:   cell(rec, "clientphone"),
			Date:          cell(rec, "date"),
			Amount:        cell(rec, "amount"),
			Quantity:      cell(rec, "quantity"),
			ProductFamily: cell(rec, "productfamily"),
			ProductName:   cell(rec, "productname"),
			InvoiceNumber: cell(rec, "invoicenumber"),
			Notes:         cell(rec, "notes"),
		})
	}
	return rows, nil
}
