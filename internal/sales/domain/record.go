package domain

import (
	"time"

	shareddomain "salesdash/internal/shared/domain"
)

// Noms des colonnes attendues dans le fichier téléversé
const (
	ColumnStore        = "Store_Number"
	ColumnDate         = "Date"
	ColumnWeeklySales  = "Weekly_Sales"
	ColumnHolidayFlag  = "Holiday_Flag"
	ColumnTemperature  = "Temperature"
	ColumnFuelPrice    = "Fuel_Price"
	ColumnUnemployment = "Unemployment"
)

// Columns retourne les colonnes obligatoires dans l'ordre canonique
func Columns() []string {
	return []string{
		ColumnStore,
		ColumnDate,
		ColumnWeeklySales,
		ColumnHolidayFlag,
		ColumnTemperature,
		ColumnFuelPrice,
		ColumnUnemployment,
	}
}

// StoreID représente l'identifiant d'un magasin
type StoreID int64

// SaleDate date calendaire de la semaine, ou marqueur explicite "manquante"
// Une date manquante ne provoque jamais d'erreur: la ligne survit mais
// n'entre dans aucune période filtrée.
type SaleDate struct {
	t     time.Time
	valid bool
}

// NewSaleDate crée une date valide (tronquée au jour)
func NewSaleDate(t time.Time) SaleDate {
	return SaleDate{t: shareddomain.TruncateDay(t), valid: true}
}

// MissingDate retourne le marqueur de date manquante
func MissingDate() SaleDate {
	return SaleDate{}
}

// Time retourne la date et false si elle est manquante
func (d SaleDate) Time() (time.Time, bool) {
	return d.t, d.valid
}

// IsMissing vérifie si la date est manquante
func (d SaleDate) IsMissing() bool {
	return !d.valid
}

// Month retourne le libellé mensuel "2006-01" (vide si manquante)
func (d SaleDate) Month() string {
	if !d.valid {
		return ""
	}
	return d.t.Format("2006-01")
}

// String retourne la date ISO, ou "" si manquante
func (d SaleDate) String() string {
	if !d.valid {
		return ""
	}
	return d.t.Format(shareddomain.DateLayout)
}

// Equal compare deux dates (deux dates manquantes sont égales)
func (d SaleDate) Equal(other SaleDate) bool {
	if d.valid != other.valid {
		return false
	}
	return !d.valid || d.t.Equal(other.t)
}

// SalesRecord une ligne normalisée: ventes hebdomadaires d'un magasin
type SalesRecord struct {
	StoreID      StoreID
	Date         SaleDate
	WeeklySales  shareddomain.Money
	Holiday      bool
	Temperature  float64
	FuelPrice    float64
	Unemployment float64
}

// Equal compare deux lignes par valeur
func (r SalesRecord) Equal(other SalesRecord) bool {
	return r.StoreID == other.StoreID &&
		r.Date.Equal(other.Date) &&
		r.WeeklySales.Equal(other.WeeklySales) &&
		r.Holiday == other.Holiday &&
		r.Temperature == other.Temperature &&
		r.FuelPrice == other.FuelPrice &&
		r.Unemployment == other.Unemployment
}

// HolidayFlag retourne 1 pour une semaine fériée, 0 sinon
func (r SalesRecord) HolidayFlag() int {
	if r.Holiday {
		return 1
	}
	return 0
}

// RawRow ligne brute telle que lue dans le fichier, champs textuels par colonne
type RawRow struct {
	StoreNumber  string
	Date         string
	WeeklySales  string
	HolidayFlag  string
	Temperature  string
	FuelPrice    string
	Unemployment string
}

// Field retourne la valeur brute d'une colonne
func (r RawRow) Field(column string) string {
	switch column {
	case ColumnStore:
		return r.StoreNumber
	case ColumnDate:
		return r.Date
	case ColumnWeeklySales:
		return r.WeeklySales
	case ColumnHolidayFlag:
		return r.HolidayFlag
	case ColumnTemperature:
		return r.Temperature
	case ColumnFuelPrice:
		return r.FuelPrice
	case ColumnUnemployment:
		return r.Unemployment
	}
	return ""
}

// SetField affecte la valeur brute d'une colonne (colonnes inconnues ignorées)
func (r *RawRow) SetField(column, value string) {
	switch column {
	case ColumnStore:
		r.StoreNumber = value
	case ColumnDate:
		r.Date = value
	case ColumnWeeklySales:
		r.WeeklySales = value
	case ColumnHolidayFlag:
		r.HolidayFlag = value
	case ColumnTemperature:
		r.Temperature = value
	case ColumnFuelPrice:
		r.FuelPrice = value
	case ColumnUnemployment:
		r.Unemployment = value
	}
}
