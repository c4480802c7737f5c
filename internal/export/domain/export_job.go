package domain

import (
	"errors"
	"strconv"
	"time"

	analyticsdomain "salesdash/internal/analytics/domain"
	salesdomain "salesdash/internal/sales/domain"
	"salesdash/internal/shared/domain"
)

// ErrInvalidExport combinaison format / type non prise en charge
var ErrInvalidExport = errors.New("invalid export")

// ExportFormat représente le format d'export
type ExportFormat string

const (
	ExportFormatCSV     ExportFormat = "CSV"
	ExportFormatXLSX    ExportFormat = "XLSX"
	ExportFormatParquet ExportFormat = "Parquet"
)

// ExportType représente le contenu exporté
type ExportType string

const (
	ExportTypeSales    ExportType = "ventes"
	ExportTypeStats    ExportType = "stats"
	ExportTypeWorkbook ExportType = "dashboard" // lignes + agrégats dans un classeur
)

// ExportJob représente un job d'export du sous-ensemble filtré
type ExportJob struct {
	format     ExportFormat
	exportType ExportType
	dateRange  domain.DateRange
	createdAt  time.Time
}

// NewExportJob crée un nouveau job d'export avec validation
func NewExportJob(
	format ExportFormat,
	exportType ExportType,
	dateRange domain.DateRange,
) (*ExportJob, error) {
	switch {
	case format == ExportFormatCSV && (exportType == ExportTypeSales || exportType == ExportTypeStats),
		format == ExportFormatXLSX && exportType == ExportTypeWorkbook,
		format == ExportFormatParquet && exportType == ExportTypeSales:
	default:
		return nil, ErrInvalidExport
	}

	return &ExportJob{
		format:     format,
		exportType: exportType,
		dateRange:  dateRange,
		createdAt:  time.Now(),
	}, nil
}

// Format retourne le format d'export
func (ej *ExportJob) Format() ExportFormat {
	return ej.format
}

// ExportType retourne le type d'export
func (ej *ExportJob) ExportType() ExportType {
	return ej.exportType
}

// DateRange retourne la période d'export
func (ej *ExportJob) DateRange() domain.DateRange {
	return ej.dateRange
}

// CreatedAt retourne la date de création
func (ej *ExportJob) CreatedAt() time.Time {
	return ej.createdAt
}

// Filename nom du fichier proposé au téléchargement ("ventes_20100205_20101231.csv")
func (ej *ExportJob) Filename() string {
	const compact = "20060102"
	name := string(ej.exportType) + "_" +
		ej.dateRange.Start().Format(compact) + "_" +
		ej.dateRange.End().Format(compact)

	switch ej.format {
	case ExportFormatXLSX:
		return name + ".xlsx"
	case ExportFormatParquet:
		return name + ".parquet"
	}
	return name + ".csv"
}

// ContentType type MIME de la réponse
func (ej *ExportJob) ContentType() string {
	switch ej.format {
	case ExportFormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case ExportFormatParquet:
		return "application/vnd.apache.parquet"
	}
	return "text/csv; charset=utf-8"
}

// SaleExportRow représente une ligne d'export de vente
type SaleExportRow struct {
	StoreID      int64
	SaleDate     string // ISO, vide si manquante
	WeeklySales  float64
	HolidayFlag  int
	Temperature  float64
	FuelPrice    float64
	Unemployment float64
}

// NewSaleExportRow convertit une ligne normalisée
func NewSaleExportRow(r salesdomain.SalesRecord) *SaleExportRow {
	return &SaleExportRow{
		StoreID:      int64(r.StoreID),
		SaleDate:     r.Date.String(),
		WeeklySales:  r.WeeklySales.Float64(),
		HolidayFlag:  r.HolidayFlag(),
		Temperature:  r.Temperature,
		FuelPrice:    r.FuelPrice,
		Unemployment: r.Unemployment,
	}
}

// ToCells convertit en cellules de classeur (nombres typés)
func (ser *SaleExportRow) ToCells() []interface{} {
	return []interface{}{
		ser.StoreID,
		ser.SaleDate,
		ser.WeeklySales,
		ser.HolidayFlag,
		ser.Temperature,
		ser.FuelPrice,
		ser.Unemployment,
	}
}

// ToParquet convertit en ligne Parquet (date manquante = valeur nulle)
func (ser *SaleExportRow) ToParquet() SaleParquet {
	row := SaleParquet{
		StoreID:      ser.StoreID,
		WeeklySales:  ser.WeeklySales,
		HolidayFlag:  int32(ser.HolidayFlag),
		Temperature:  ser.Temperature,
		FuelPrice:    ser.FuelPrice,
		Unemployment: ser.Unemployment,
	}
	if ser.SaleDate != "" {
		date := ser.SaleDate
		row.SaleDate = &date
	}
	return row
}

// ExportHeaders en-têtes des exports tabulaires (classeur)
func ExportHeaders() []string {
	return []string{
		"store_id",
		"sale_date",
		"weekly_sales",
		"holiday_flag",
		"temperature",
		"fuel_price",
		"unemployment",
	}
}

// SaleParquet structure d'une ligne de l'export Parquet
type SaleParquet struct {
	StoreID      int64   `parquet:"name=store_id, type=INT64"`
	SaleDate     *string `parquet:"name=sale_date, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	WeeklySales  float64 `parquet:"name=weekly_sales, type=DOUBLE"`
	HolidayFlag  int32   `parquet:"name=holiday_flag, type=INT32"`
	Temperature  float64 `parquet:"name=temperature, type=DOUBLE"`
	FuelPrice    float64 `parquet:"name=fuel_price, type=DOUBLE"`
	Unemployment float64 `parquet:"name=unemployment, type=DOUBLE"`
}

// StatLine ligne "Type, Metric, Value" de l'export des statistiques
type StatLine struct {
	Section string
	Label   string
	Value   string
}

// ToCSVRow convertit en tableau pour CSV
func (l StatLine) ToCSVRow() []string {
	return []string{l.Section, l.Label, l.Value}
}

// StatsCSVHeaders retourne les en-têtes de l'export des statistiques
func StatsCSVHeaders() []string {
	return []string{"Type", "Metric", "Value"}
}

// BuildStatLines met à plat un résultat d'agrégation: global, par magasin, par mois
func BuildStatLines(result *analyticsdomain.AggregateResult) []StatLine {
	lines := []StatLine{
		{"Global", "Rows", strconv.Itoa(result.RowCount())},
		{"Global", "Total Weekly Sales", result.TotalSales().String()},
		{"Global", "Mean Weekly Sales", result.MeanWeeklySales().String()},
	}
	if best, ok := result.BestStore(); ok {
		lines = append(lines, StatLine{"Global", "Best Store", strconv.FormatInt(int64(best), 10)})
	}
	for _, s := range result.ByStore() {
		lines = append(lines, StatLine{"Store", strconv.FormatInt(int64(s.StoreID()), 10), s.TotalSales().String()})
	}
	for _, m := range result.ByMonth() {
		lines = append(lines, StatLine{"Month", m.Month(), m.TotalSales().String()})
	}
	return lines
}
