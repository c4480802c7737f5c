package infrastructure

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"

	"salesdash/internal/sales/domain"
)

// maxXLSRows borne de lecture des anciens classeurs .xls
const maxXLSRows = 1_000_000

// ReadRows lit un fichier téléversé et retourne les lignes brutes par colonne
// Le format est choisi sur l'extension: .xlsx/.xlsm (excelize), .xls (xls), sinon CSV.
func ReadRows(filename string, r io.Reader) ([]domain.RawRow, error) {
	table, err := readTable(filename, r)
	if err != nil {
		return nil, err
	}
	return tableToRows(table)
}

func readTable(filename string, r io.Reader) ([][]string, error) {
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".csv", ".txt", "":
		return readCSV(r)
	case ".xlsx", ".xlsm":
		return readXLSX(r)
	case ".xls":
		return readXLS(r)
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, ext)
	}
}

func readCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // lignes courtes tolérées, les colonnes manquantes restent vides
	reader.TrimLeadingSpace = true

	table, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: csv: %v", domain.ErrUnreadableFile, err)
	}
	return table, nil
}

func readXLSX(r io.Reader) ([][]string, error) {
	file, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: xlsx: %v", domain.ErrUnreadableFile, err)
	}
	defer func() { _ = file.Close() }()

	sheetName := file.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("%w: no worksheet found", domain.ErrEmptyFile)
	}
	// valeurs brutes: sans format de nombre, une date Excel reste un numéro de série
	rows, err := file.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%w: worksheet %q: %v", domain.ErrUnreadableFile, sheetName, err)
	}
	if len(rows) == 0 {
		return rows, nil
	}

	date1904 := false
	if props, err := file.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		date1904 = *props.Date1904
	}
	for col, h := range rows[0] {
		if normalizeHeader(h) != normalizeHeader(domain.ColumnDate) {
			continue
		}
		for _, cells := range rows[1:] {
			if col < len(cells) {
				cells[col] = excelDateCell(cells[col], date1904)
			}
		}
	}
	return rows, nil
}

// excelDateCell convertit un numéro de série Excel au format d'entrée (mois/jour/année)
// Une date saisie en texte est laissée telle quelle.
func excelDateCell(value string, date1904 bool) string {
	serial, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return value
	}
	t, err := excelize.ExcelDateToTime(serial, date1904)
	if err != nil {
		return value
	}
	return t.Format(domain.InputDateLayout)
}

func readXLS(r io.Reader) ([][]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	workbook, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("%w: xls: %v", domain.ErrUnreadableFile, err)
	}
	if workbook.NumSheets() == 0 {
		return nil, fmt.Errorf("%w: no worksheet found", domain.ErrEmptyFile)
	}
	return workbook.ReadAllCells(maxXLSRows), nil
}

// tableToRows associe les cellules aux colonnes attendues via l'en-tête
// En-têtes comparés sans casse ni espaces; colonnes inconnues ignorées; lignes vides sautées.
func tableToRows(table [][]string) ([]domain.RawRow, error) {
	if len(table) == 0 {
		return nil, domain.ErrEmptyFile
	}

	index := make(map[string]int, len(table[0]))
	for i, h := range table[0] {
		index[normalizeHeader(h)] = i
	}

	positions := make(map[string]int, len(domain.Columns()))
	var missing []string
	for _, col := range domain.Columns() {
		pos, ok := index[normalizeHeader(col)]
		if !ok {
			missing = append(missing, col)
			continue
		}
		positions[col] = pos
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrMissingColumn, strings.Join(missing, ", "))
	}

	rows := make([]domain.RawRow, 0, len(table)-1)
	for _, cells := range table[1:] {
		if isBlank(cells) {
			continue
		}
		var row domain.RawRow
		for col, pos := range positions {
			row.SetField(col, cellValue(cells, pos))
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func normalizeHeader(header string) string {
	h := strings.TrimPrefix(header, "\ufeff") // BOM UTF-8 des exports Excel
	return strings.ToLower(strings.TrimSpace(h))
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// IsIngestionError indique une erreur imputable au fichier (422), pas au serveur
func IsIngestionError(err error) bool {
	return errors.Is(err, domain.ErrMalformedAmount) ||
		errors.Is(err, domain.ErrMalformedField) ||
		errors.Is(err, domain.ErrMissingColumn) ||
		errors.Is(err, domain.ErrEmptyFile) ||
		errors.Is(err, domain.ErrUnsupportedFormat) ||
		errors.Is(err, domain.ErrUnreadableFile)
}
