package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	shareddomain "salesdash/internal/shared/domain"
)

// InputDateLayout format "mois/jour/année" des fichiers téléversés
// Accepte aussi les mois et jours sans zéro ("2/5/2010")
const InputDateLayout = "1/2/2006"

// Normalize convertit les lignes brutes en SalesRecord
//   - Weekly_Sales: séparateurs de milliers supprimés puis conversion décimale exacte;
//     un seul montant illisible fait échouer tout le lot (ErrMalformedAmount)
//   - Date: format mois/jour/année, sinon marqueur de date manquante (pas d'erreur)
//   - autres colonnes: contrôle de type uniquement (ErrMalformedField)
//
// Aucun jeu partiel n'est retourné en cas d'erreur.
func Normalize(rows []RawRow) ([]SalesRecord, error) {
	records := make([]SalesRecord, 0, len(rows))
	for i, raw := range rows {
		rec, err := normalizeRow(i+1, raw)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func normalizeRow(row int, raw RawRow) (SalesRecord, error) {
	var rec SalesRecord

	store, err := strconv.ParseInt(strings.TrimSpace(raw.StoreNumber), 10, 64)
	if err != nil {
		return rec, fieldError(row, ColumnStore, raw.StoreNumber)
	}
	rec.StoreID = StoreID(store)

	rec.Date = parseSaleDate(raw.Date)

	amount, err := shareddomain.ParseMoney(raw.WeeklySales)
	if err != nil {
		return rec, &RowError{Row: row, Column: ColumnWeeklySales, Value: raw.WeeklySales, Err: err}
	}
	rec.WeeklySales = amount

	holiday, err := parseFlag(raw.HolidayFlag)
	if err != nil {
		return rec, fieldError(row, ColumnHolidayFlag, raw.HolidayFlag)
	}
	rec.Holiday = holiday

	measures := []struct {
		column string
		text   string
		dst    *float64
	}{
		{ColumnTemperature, raw.Temperature, &rec.Temperature},
		{ColumnFuelPrice, raw.FuelPrice, &rec.FuelPrice},
		{ColumnUnemployment, raw.Unemployment, &rec.Unemployment},
	}
	for _, m := range measures {
		v, err := strconv.ParseFloat(strings.TrimSpace(m.text), 64)
		if err != nil {
			return rec, fieldError(row, m.column, m.text)
		}
		*m.dst = v
	}

	return rec, nil
}

func parseSaleDate(text string) SaleDate {
	t, err := time.Parse(InputDateLayout, strings.TrimSpace(text))
	if err != nil {
		return MissingDate()
	}
	return NewSaleDate(t)
}

// parseFlag accepte 0/1 (et true/false)
func parseFlag(text string) (bool, error) {
	return strconv.ParseBool(strings.TrimSpace(text))
}

func fieldError(row int, column, value string) error {
	return &RowError{
		Row:    row,
		Column: column,
		Value:  value,
		Err:    fmt.Errorf("%w: %q", ErrMalformedField, value),
	}
}

// Denormalize reconvertit des lignes normalisées au format d'entrée
// Normalize(Denormalize(records)) redonne les mêmes lignes
func Denormalize(records []SalesRecord) []RawRow {
	rows := make([]RawRow, len(records))
	for i, r := range records {
		date := ""
		if t, ok := r.Date.Time(); ok {
			date = t.Format("01/02/2006")
		}
		rows[i] = RawRow{
			StoreNumber:  strconv.FormatInt(int64(r.StoreID), 10),
			Date:         date,
			WeeklySales:  r.WeeklySales.Raw(),
			HolidayFlag:  strconv.Itoa(r.HolidayFlag()),
			Temperature:  formatMeasure(r.Temperature),
			FuelPrice:    formatMeasure(r.FuelPrice),
			Unemployment: formatMeasure(r.Unemployment),
		}
	}
	return rows
}

func formatMeasure(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
