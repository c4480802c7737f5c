package v1

import (
	"errors"
	"fmt"
	"log"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	analyticsapp "salesdash/internal/analytics/application"
	analyticsdomain "salesdash/internal/analytics/domain"
	exportapp "salesdash/internal/export/application"
	salesdomain "salesdash/internal/sales/domain"
)

// Handlers handlers HTTP de l'API V1 et de la page du tableau de bord
type Handlers struct {
	dashboard      *analyticsapp.DashboardService
	exports        *exportapp.ExportService
	charts         *exportapp.ChartService
	maxUploadBytes int64
	previewRows    int
}

// NewHandlers crée une nouvelle instance des handlers V1
func NewHandlers(
	dashboard *analyticsapp.DashboardService,
	exports *exportapp.ExportService,
	charts *exportapp.ChartService,
	maxUploadBytes int64,
	previewRows int,
) *Handlers {
	if previewRows <= 0 {
		previewRows = analyticsapp.DefaultPreviewRows
	}
	return &Handlers{
		dashboard:      dashboard,
		exports:        exports,
		charts:         charts,
		maxUploadBytes: maxUploadBytes,
		previewRows:    previewRows,
	}
}

// RegisterRoutes monte l'API sur le groupe /api/v1
func (h *Handlers) RegisterRoutes(api *gin.RouterGroup) {
	api.POST("/datasets", h.UploadDataset)
	api.GET("/datasets/current", h.GetCurrentDataset)
	api.GET("/stats", h.GetStats)
	api.GET("/records", h.GetRecords)
	api.GET("/charts/:name", h.GetChart)
	api.GET("/series/:name", h.GetSeries)
	api.GET("/export/:kind", h.Export)
}

// UploadDataset handler pour POST /api/v1/datasets (multipart, champ "file")
func (h *Handlers) UploadDataset(c *gin.Context) {
	ds, err := h.ingestForm(c)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toDatasetResponse(analyticsapp.SummaryOf(ds)))
}

// ingestForm lit le fichier du formulaire dans la limite de taille configurée
func (h *Handlers) ingestForm(c *gin.Context) (*salesdomain.Dataset, error) {
	if h.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: file: %v", ErrBadParameter, err)
	}
	defer func(f multipart.File) { _ = f.Close() }(file)

	if h.maxUploadBytes > 0 && header.Size > h.maxUploadBytes {
		return nil, &http.MaxBytesError{Limit: h.maxUploadBytes}
	}

	start := time.Now()
	ds, err := h.dashboard.Ingest(c.Request.Context(), header.Filename, file)
	if err != nil {
		log.Printf("[API] upload %q rejected: %v", header.Filename, err)
		return nil, err
	}
	log.Printf("[API] upload %q (%d bytes) ingested in %v", header.Filename, header.Size, time.Since(start))
	return ds, nil
}

// GetCurrentDataset handler pour GET /api/v1/datasets/current
func (h *Handlers) GetCurrentDataset(c *gin.Context) {
	summary, err := h.dashboard.Summary()
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, toDatasetResponse(summary))
}

// GetStats handler pour GET /api/v1/stats
func (h *Handlers) GetStats(c *gin.Context) {
	view, ok := h.view(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, toStatsResponse(view))
}

// GetRecords handler pour GET /api/v1/records (lignes filtrées, limit par défaut = aperçu)
func (h *Handlers) GetRecords(c *gin.Context) {
	limit, err := parseLimit(c, h.previewRows)
	if err != nil {
		abortWithError(c, err)
		return
	}
	view, ok := h.view(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, RecordsResponse{
		RowCount: len(view.Records),
		Records:  toRecordResponses(view.Preview(limit)),
	})
}

// GetChart handler pour GET /api/v1/charts/:name (PNG)
func (h *Handlers) GetChart(c *gin.Context) {
	req, err := parseStatsRequest(c)
	if err != nil {
		abortWithError(c, err)
		return
	}
	png, err := h.charts.Render(c.Request.Context(), c.Param("name"), req)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

// GetSeries handler pour GET /api/v1/series/:name (points des nuages en JSON)
func (h *Handlers) GetSeries(c *gin.Context) {
	name := c.Param("name")
	if name != exportapp.ChartTemperature && name != exportapp.ChartUnemployment {
		abortWithError(c, fmt.Errorf("%w: %q", exportapp.ErrUnknownChart, name))
		return
	}
	view, ok := h.view(c)
	if !ok {
		return
	}

	resp := SeriesResponse{Name: name}
	if name == exportapp.ChartTemperature {
		resp.Points = analyticsdomain.TemperaturePoints(view.Records)
	} else {
		points := analyticsdomain.UnemploymentPoints(view.Records)
		resp.Points = points
		if trend, ok := analyticsdomain.UnemploymentTrend(points); ok {
			resp.Trend = &TrendResponse{Slope: trend.Slope, Intercept: trend.Intercept}
		}
	}
	c.JSON(http.StatusOK, resp)
}

// Export handler pour GET /api/v1/export/:kind (csv, stats-csv, xlsx, parquet)
func (h *Handlers) Export(c *gin.Context) {
	req, err := parseStatsRequest(c)
	if err != nil {
		abortWithError(c, err)
		return
	}
	result, err := h.exports.Export(c.Request.Context(), c.Param("kind"), req)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Job.Filename()))
	c.Data(http.StatusOK, result.Job.ContentType(), result.Data)
}

// view lit les filtres puis calcule la vue; répond l'erreur lui-même si besoin
func (h *Handlers) view(c *gin.Context) (*analyticsapp.View, bool) {
	req, err := parseStatsRequest(c)
	if err != nil {
		abortWithError(c, err)
		return nil, false
	}
	view, err := h.dashboard.Stats(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, err)
		return nil, false
	}
	return view, true
}
