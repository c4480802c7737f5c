package domain

import (
	"math"
	"testing"
)

func TestTemperaturePoints_KeepRowOrderAndMeasures(t *testing.T) {
	records := fixtureRecords(t)

	points := TemperaturePoints(records)
	if len(points) != len(records) {
		t.Fatalf("points = %d, want %d", len(points), len(records))
	}
	p := points[1]
	if p.StoreID != 2 || p.Temperature != 42 || p.WeeklySales != 800 || p.FuelPrice != 2.6 || !p.Holiday {
		t.Errorf("point = %+v", p)
	}
}

func TestUnemploymentTrend(t *testing.T) {
	points := []UnemploymentPoint{
		{StoreID: 1, Unemployment: 6, WeeklySales: 1000},
		{StoreID: 1, Unemployment: 7, WeeklySales: 900},
		{StoreID: 2, Unemployment: 8, WeeklySales: 800},
	}
	trend, ok := UnemploymentTrend(points)
	if !ok {
		t.Fatal("expected a trend")
	}
	if math.Abs(trend.Slope+100) > 1e-9 || math.Abs(trend.Intercept-1600) > 1e-9 {
		t.Errorf("trend = %+v, want slope -100 intercept 1600", trend)
	}

	// un seul taux de chômage: pas de droite
	if _, ok := UnemploymentTrend(UnemploymentPoints(fixtureRecords(t)[:1])); ok {
		t.Error("single point has no trend")
	}
}
