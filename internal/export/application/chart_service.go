package application

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	analyticsapp "salesdash/internal/analytics/application"
	analyticsdomain "salesdash/internal/analytics/domain"
	sharedinfra "salesdash/internal/shared/infrastructure"
)

// Graphiques disponibles sous /api/v1/charts/:name
const (
	ChartSalesByStore = "sales-by-store"
	ChartMonthlyTrend = "monthly-trend"
	ChartTemperature  = "temperature"
	ChartUnemployment = "unemployment"
)

var (
	// ErrUnknownChart nom de graphique inconnu
	ErrUnknownChart = errors.New("unknown chart")
	// ErrNotEnoughData sous-ensemble filtré vide
	ErrNotEnoughData = errors.New("not enough data to draw chart")
)

// maxLegendSeries au-delà, la légende masquerait le graphique
const maxLegendSeries = 12

// ChartNames liste les graphiques dans l'ordre de la page
func ChartNames() []string {
	return []string{ChartSalesByStore, ChartMonthlyTrend, ChartTemperature, ChartUnemployment}
}

type renderFunc func(view *analyticsapp.View, width, height int) ([]byte, error)

// ChartService rend les graphiques PNG du sous-ensemble filtré
type ChartService struct {
	dashboard *analyticsapp.DashboardService
	width     int
	height    int
	renderers map[string]renderFunc
}

// NewChartService crée une nouvelle instance de ChartService
func NewChartService(dashboard *analyticsapp.DashboardService, width, height int) *ChartService {
	if width <= 0 {
		width = 900
	}
	if height <= 0 {
		height = 450
	}
	return &ChartService{
		dashboard: dashboard,
		width:     width,
		height:    height,
		renderers: map[string]renderFunc{
			ChartSalesByStore: renderSalesByStore,
			ChartMonthlyTrend: renderMonthlyTrend,
			ChartTemperature:  renderTemperature,
			ChartUnemployment: renderUnemployment,
		},
	}
}

// Render rend un graphique pour les critères de la requête
func (s *ChartService) Render(ctx context.Context, name string, req analyticsapp.StatsRequest) ([]byte, error) {
	render, ok := s.renderers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownChart, name)
	}
	view, err := s.dashboard.Stats(ctx, req)
	if err != nil {
		return nil, err
	}
	return render(view, s.width, s.height)
}

// RenderAll rend les quatre graphiques en parallèle sur le worker pool
// Un graphique sans données est absent du résultat, sans erreur.
func (s *ChartService) RenderAll(ctx context.Context, req analyticsapp.StatsRequest) (map[string][]byte, error) {
	start := time.Now()
	view, err := s.dashboard.Stats(ctx, req)
	if err != nil {
		return nil, err
	}

	var mu sync.Mutex
	images := make(map[string][]byte, len(s.renderers))

	pool := sharedinfra.NewWorkerPool(ctx, len(s.renderers))
	pool.Start()
	for _, name := range ChartNames() {
		name, render := name, s.renderers[name]
		if err := pool.Submit(func() error {
			img, err := render(view, s.width, s.height)
			if errors.Is(err, ErrNotEnoughData) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			mu.Lock()
			images[name] = img
			mu.Unlock()
			return nil
		}); err != nil {
			pool.Stop()
			return nil, err
		}
	}
	if err := pool.Wait(); err != nil {
		return nil, err
	}

	log.Printf("[Charts] %d/%d charts rendered for %d rows in %v", len(images), len(s.renderers), len(view.Records), time.Since(start))
	return images, nil
}

// ========================================
// Rendus go-chart
// ========================================

// pngChart chart.Chart et chart.BarChart
type pngChart interface {
	Render(rp chart.RendererProvider, w io.Writer) error
}

func renderPNG(r pngChart) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// paddedRange borne un axe; une plage nulle est élargie pour que go-chart puisse la tracer
func paddedRange(minV, maxV float64) *chart.ContinuousRange {
	if maxV <= minV {
		maxV = minV + 1
	}
	pad := (maxV - minV) * 0.05
	return &chart.ContinuousRange{Min: minV - pad, Max: maxV + pad}
}

// pointStyle points seuls, sans ligne
func pointStyle(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeWidth: chart.Disabled,
		DotWidth:    4,
		DotColor:    col,
	}
}

func renderSalesByStore(view *analyticsapp.View, width, height int) ([]byte, error) {
	stores := view.Result.ByStore()
	if len(stores) == 0 {
		return nil, ErrNotEnoughData
	}

	bars := make([]chart.Value, len(stores))
	maxV := 0.0
	for i, st := range stores {
		v := st.TotalSales().Float64()
		bars[i] = chart.Value{Value: v, Label: strconv.FormatInt(int64(st.StoreID()), 10)}
		maxV = math.Max(maxV, v)
	}
	if maxV <= 0 {
		maxV = 1
	}

	slot := (width - 100) / len(bars)
	spacing := max(slot/5, 1)
	barWidth := max(slot-spacing, 2)

	bc := chart.BarChart{
		Title:      "Ventes par magasin",
		Width:      width,
		Height:     height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 12, Bottom: 28}},
		BarWidth:   barWidth,
		BarSpacing: spacing,
		YAxis:      chart.YAxis{Range: &chart.ContinuousRange{Min: 0, Max: maxV * 1.1}},
		Bars:       bars,
	}
	return renderPNG(bc)
}

func renderMonthlyTrend(view *analyticsapp.View, width, height int) ([]byte, error) {
	months := view.Result.ByMonth()
	if len(months) == 0 {
		return nil, ErrNotEnoughData
	}

	times := make([]time.Time, 0, len(months))
	ys := make([]float64, 0, len(months))
	minY, maxY := math.MaxFloat64, -math.MaxFloat64
	for _, m := range months {
		t, err := time.Parse("2006-01", m.Month())
		if err != nil {
			return nil, err
		}
		v := m.TotalSales().Float64()
		times = append(times, t)
		ys = append(ys, v)
		minY, maxY = math.Min(minY, v), math.Max(maxY, v)
	}
	// go-chart exige au moins deux abscisses
	if len(times) == 1 {
		times = append(times, times[0].AddDate(0, 0, 1))
		ys = append(ys, ys[0])
	}

	ch := chart.Chart{
		Title:      "Tendance mensuelle des ventes",
		Width:      width,
		Height:     height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 12, Bottom: 28}},
		XAxis:      chart.XAxis{ValueFormatter: chart.TimeValueFormatterWithFormat("2006-01")},
		YAxis:      chart.YAxis{Range: paddedRange(minY, maxY)},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "Ventes",
				XValues: times,
				YValues: ys,
				Style:   chart.Style{StrokeColor: chart.ColorBlue, StrokeWidth: 2, DotWidth: 3, DotColor: chart.ColorBlue},
			},
		},
	}
	return renderPNG(ch)
}

func renderTemperature(view *analyticsapp.View, width, height int) ([]byte, error) {
	points := analyticsdomain.TemperaturePoints(view.Records)
	if len(points) == 0 {
		return nil, ErrNotEnoughData
	}

	var holidayX, holidayY, normalX, normalY []float64
	minX, maxX := math.MaxFloat64, -math.MaxFloat64
	minY, maxY := math.MaxFloat64, -math.MaxFloat64
	for _, p := range points {
		if p.Holiday {
			holidayX, holidayY = append(holidayX, p.Temperature), append(holidayY, p.WeeklySales)
		} else {
			normalX, normalY = append(normalX, p.Temperature), append(normalY, p.WeeklySales)
		}
		minX, maxX = math.Min(minX, p.Temperature), math.Max(maxX, p.Temperature)
		minY, maxY = math.Min(minY, p.WeeklySales), math.Max(maxY, p.WeeklySales)
	}

	series := make([]chart.Series, 0, 2)
	if len(normalX) > 0 {
		series = append(series, scatterSeries("Semaines normales", normalX, normalY, pointStyle(chart.ColorBlue)))
	}
	if len(holidayX) > 0 {
		series = append(series, scatterSeries("Semaines fériées", holidayX, holidayY, pointStyle(chart.ColorRed)))
	}

	ch := chart.Chart{
		Title:      "Température et ventes",
		Width:      width,
		Height:     height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 12, Bottom: 28}},
		XAxis:      chart.XAxis{Name: "Temperature", Range: paddedRange(minX, maxX)},
		YAxis:      chart.YAxis{Name: "Weekly_Sales", Range: paddedRange(minY, maxY)},
		Series:     series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	return renderPNG(ch)
}

func renderUnemployment(view *analyticsapp.View, width, height int) ([]byte, error) {
	points := analyticsdomain.UnemploymentPoints(view.Records)
	if len(points) == 0 {
		return nil, ErrNotEnoughData
	}

	type xy struct{ xs, ys []float64 }
	byStore := make(map[int64]*xy)
	var order []int64
	minX, maxX := math.MaxFloat64, -math.MaxFloat64
	minY, maxY := math.MaxFloat64, -math.MaxFloat64
	for _, p := range points {
		id := int64(p.StoreID)
		s, ok := byStore[id]
		if !ok {
			s = &xy{}
			byStore[id] = s
			order = append(order, id)
		}
		s.xs = append(s.xs, p.Unemployment)
		s.ys = append(s.ys, p.WeeklySales)
		minX, maxX = math.Min(minX, p.Unemployment), math.Max(maxX, p.Unemployment)
		minY, maxY = math.Min(minY, p.WeeklySales), math.Max(maxY, p.WeeklySales)
	}

	series := make([]chart.Series, 0, len(order)+1)
	for i, id := range order {
		s := byStore[id]
		series = append(series, scatterSeries("Magasin "+strconv.FormatInt(id, 10), s.xs, s.ys, pointStyle(chart.GetDefaultColor(i))))
	}
	if trend, ok := analyticsdomain.UnemploymentTrend(points); ok {
		series = append(series, chart.ContinuousSeries{
			Name:    "Tendance",
			XValues: []float64{minX, maxX},
			YValues: []float64{trend.At(minX), trend.At(maxX)},
			Style:   chart.Style{StrokeColor: chart.ColorRed, StrokeWidth: 2},
		})
		minY = math.Min(minY, math.Min(trend.At(minX), trend.At(maxX)))
		maxY = math.Max(maxY, math.Max(trend.At(minX), trend.At(maxX)))
	}

	ch := chart.Chart{
		Title:      "Chômage et ventes",
		Width:      width,
		Height:     height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 12, Bottom: 28}},
		XAxis:      chart.XAxis{Name: "Unemployment", Range: paddedRange(minX, maxX)},
		YAxis:      chart.YAxis{Name: "Weekly_Sales", Range: paddedRange(minY, maxY)},
		Series:     series,
	}
	if len(series) <= maxLegendSeries {
		ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	}
	return renderPNG(ch)
}

// scatterSeries nuage de points; un point isolé est doublé pour go-chart
func scatterSeries(name string, xs, ys []float64, style chart.Style) chart.ContinuousSeries {
	if len(xs) == 1 {
		xs = []float64{xs[0], xs[0]}
		ys = []float64{ys[0], ys[0]}
	}
	return chart.ContinuousSeries{Name: name, XValues: xs, YValues: ys, Style: style}
}
