package v1

import (
	"time"

	analyticsapp "salesdash/internal/analytics/application"
	analyticsdomain "salesdash/internal/analytics/domain"
	salesdomain "salesdash/internal/sales/domain"
	shareddomain "salesdash/internal/shared/domain"
)

// Les montants sont sérialisés en chaîne décimale exacte ("2000.50")

// DatasetResponse résumé du jeu actif
type DatasetResponse struct {
	ID           string                `json:"id"`
	Filename     string                `json:"filename"`
	UploadedAt   time.Time             `json:"uploaded_at"`
	Rows         int                   `json:"rows"`
	Stores       []salesdomain.StoreID `json:"stores"`
	Start        *string               `json:"start"`
	End          *string               `json:"end"`
	MissingDates int                   `json:"missing_dates"`
}

// CriteriaResponse critères effectivement appliqués
type CriteriaResponse struct {
	Stores  []salesdomain.StoreID `json:"stores"`
	Start   string                `json:"start"`
	End     string                `json:"end"`
	Holiday string                `json:"holiday"`
}

// StoreTotalResponse total d'un magasin
type StoreTotalResponse struct {
	StoreID    salesdomain.StoreID `json:"store_id"`
	TotalSales string              `json:"total_sales"`
	Weeks      int                 `json:"weeks"`
}

// MonthTotalResponse total d'un mois AAAA-MM
type MonthTotalResponse struct {
	Month      string `json:"month"`
	TotalSales string `json:"total_sales"`
	Weeks      int    `json:"weeks"`
}

// StatsResponse indicateurs du sous-ensemble filtré
// BestStore est null quand la sélection est vide.
type StatsResponse struct {
	DatasetID       string               `json:"dataset_id"`
	Criteria        CriteriaResponse     `json:"criteria"`
	RowCount        int                  `json:"row_count"`
	TotalSales      string               `json:"total_sales"`
	MeanWeeklySales string               `json:"mean_weekly_sales"`
	BestStore       *salesdomain.StoreID `json:"best_store"`
	ByStore         []StoreTotalResponse `json:"by_store"`
	ByMonth         []MonthTotalResponse `json:"by_month"`
}

// RecordResponse ligne normalisée; Date null si absente
type RecordResponse struct {
	StoreID      salesdomain.StoreID `json:"store_id"`
	Date         *string             `json:"date"`
	WeeklySales  string              `json:"weekly_sales"`
	Holiday      bool                `json:"holiday"`
	Temperature  float64             `json:"temperature"`
	FuelPrice    float64             `json:"fuel_price"`
	Unemployment float64             `json:"unemployment"`
}

// RecordsResponse lignes filtrées, tronquées à limit
type RecordsResponse struct {
	RowCount int              `json:"row_count"`
	Records  []RecordResponse `json:"records"`
}

// TrendResponse droite des moindres carrés
type TrendResponse struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
}

// SeriesResponse points d'un nuage et sa tendance éventuelle
type SeriesResponse struct {
	Name   string         `json:"name"`
	Points interface{}    `json:"points"`
	Trend  *TrendResponse `json:"trend,omitempty"`
}

func toDatasetResponse(s *analyticsapp.DatasetSummary) DatasetResponse {
	resp := DatasetResponse{
		ID:           s.ID,
		Filename:     s.Filename,
		UploadedAt:   s.UploadedAt,
		Rows:         s.Rows,
		Stores:       nonNilStores(s.Stores),
		MissingDates: s.MissingDates,
	}
	if s.HasDates {
		start := s.DateRange.Start().Format(shareddomain.DateLayout)
		end := s.DateRange.End().Format(shareddomain.DateLayout)
		resp.Start, resp.End = &start, &end
	}
	return resp
}

func toCriteriaResponse(c analyticsdomain.FilterCriteria) CriteriaResponse {
	return CriteriaResponse{
		Stores:  nonNilStores(c.StoreIDs()),
		Start:   c.DateRange().Start().Format(shareddomain.DateLayout),
		End:     c.DateRange().End().Format(shareddomain.DateLayout),
		Holiday: c.HolidayMode().String(),
	}
}

func toStatsResponse(view *analyticsapp.View) StatsResponse {
	result := view.Result
	resp := StatsResponse{
		DatasetID:       view.DatasetID,
		Criteria:        toCriteriaResponse(view.Criteria),
		RowCount:        result.RowCount(),
		TotalSales:      result.TotalSales().String(),
		MeanWeeklySales: result.MeanWeeklySales().String(),
		ByStore:         make([]StoreTotalResponse, 0, len(result.ByStore())),
		ByMonth:         make([]MonthTotalResponse, 0, len(result.ByMonth())),
	}
	if best, ok := result.BestStore(); ok {
		resp.BestStore = &best
	}
	for _, s := range result.ByStore() {
		resp.ByStore = append(resp.ByStore, StoreTotalResponse{
			StoreID:    s.StoreID(),
			TotalSales: s.TotalSales().String(),
			Weeks:      s.Weeks(),
		})
	}
	for _, m := range result.ByMonth() {
		resp.ByMonth = append(resp.ByMonth, MonthTotalResponse{
			Month:      m.Month(),
			TotalSales: m.TotalSales().String(),
			Weeks:      m.Weeks(),
		})
	}
	return resp
}

func toRecordResponses(records []salesdomain.SalesRecord) []RecordResponse {
	out := make([]RecordResponse, len(records))
	for i, r := range records {
		out[i] = RecordResponse{
			StoreID:      r.StoreID,
			WeeklySales:  r.WeeklySales.String(),
			Holiday:      r.Holiday,
			Temperature:  r.Temperature,
			FuelPrice:    r.FuelPrice,
			Unemployment: r.Unemployment,
		}
		if !r.Date.IsMissing() {
			d := r.Date.String()
			out[i].Date = &d
		}
	}
	return out
}

func nonNilStores(ids []salesdomain.StoreID) []salesdomain.StoreID {
	if ids == nil {
		return []salesdomain.StoreID{}
	}
	return ids
}
