package domain

import (
	salesdomain "salesdash/internal/sales/domain"
)

// TemperaturePoint point du nuage température / ventes
// FuelPrice sert de taille de point, Holiday de couleur
type TemperaturePoint struct {
	StoreID     salesdomain.StoreID `json:"store_id"`
	Temperature float64             `json:"temperature"`
	WeeklySales float64             `json:"weekly_sales"`
	FuelPrice   float64             `json:"fuel_price"`
	Holiday     bool                `json:"holiday"`
}

// UnemploymentPoint point du nuage chômage / ventes, coloré par magasin
type UnemploymentPoint struct {
	StoreID      salesdomain.StoreID `json:"store_id"`
	Unemployment float64             `json:"unemployment"`
	WeeklySales  float64             `json:"weekly_sales"`
}

// Trend droite des moindres carrés y = Slope*x + Intercept
type Trend struct {
	Slope     float64
	Intercept float64
}

// At évalue la droite en x
func (t Trend) At(x float64) float64 {
	return t.Slope*x + t.Intercept
}

// TemperaturePoints extrait les points température / ventes, dans l'ordre des lignes
func TemperaturePoints(records []salesdomain.SalesRecord) []TemperaturePoint {
	points := make([]TemperaturePoint, len(records))
	for i, r := range records {
		points[i] = TemperaturePoint{
			StoreID:     r.StoreID,
			Temperature: r.Temperature,
			WeeklySales: r.WeeklySales.Float64(),
			FuelPrice:   r.FuelPrice,
			Holiday:     r.Holiday,
		}
	}
	return points
}

// UnemploymentPoints extrait les points chômage / ventes, dans l'ordre des lignes
func UnemploymentPoints(records []salesdomain.SalesRecord) []UnemploymentPoint {
	points := make([]UnemploymentPoint, len(records))
	for i, r := range records {
		points[i] = UnemploymentPoint{
			StoreID:      r.StoreID,
			Unemployment: r.Unemployment,
			WeeklySales:  r.WeeklySales.Float64(),
		}
	}
	return points
}

// UnemploymentTrend ajuste la tendance ventes = f(chômage)
// false si moins de deux points ou si tous les x sont identiques
func UnemploymentTrend(points []UnemploymentPoint) (Trend, bool) {
	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i] = p.Unemployment
		ys[i] = p.WeeklySales
	}
	return LinearTrend(xs, ys)
}

// LinearTrend régression linéaire ordinaire (OLS)
func LinearTrend(xs, ys []float64) (Trend, bool) {
	n := len(xs)
	if n < 2 || n != len(ys) {
		return Trend{}, false
	}

	var meanX, meanY float64
	for i := 0; i < n; i++ {
		meanX += xs[i]
		meanY += ys[i]
	}
	meanX /= float64(n)
	meanY /= float64(n)

	var sxy, sxx float64
	for i := 0; i < n; i++ {
		dx := xs[i] - meanX
		sxy += dx * (ys[i] - meanY)
		sxx += dx * dx
	}
	if sxx == 0 {
		return Trend{}, false
	}

	slope := sxy / sxx
	return Trend{Slope: slope, Intercept: meanY - slope*meanX}, true
}
