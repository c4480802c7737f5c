package infrastructure

import (
	"encoding/csv"
	"io"

	"salesdash/internal/sales/domain"
)

// WriteCSV écrit l'en-tête canonique puis les lignes brutes
// Le fichier produit est relisible par ReadRows.
func WriteCSV(w io.Writer, rows []domain.RawRow) error {
	writer := csv.NewWriter(w)
	columns := domain.Columns()

	if err := writer.Write(columns); err != nil {
		return err
	}
	record := make([]string, len(columns))
	for _, row := range rows {
		for i, col := range columns {
			record[i] = row.Field(col)
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
