package v1

import (
	"context"
	_ "embed"
	"encoding/base64"
	"errors"
	"html/template"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	analyticsapp "salesdash/internal/analytics/application"
	exportapp "salesdash/internal/export/application"
	salesdomain "salesdash/internal/sales/domain"
)

//go:embed templates/dashboard.html
var dashboardHTML string

const dashboardTemplate = "dashboard.html"

var holidayOptions = []holidayOption{
	{Value: "all", Label: "Tous"},
	{Value: "yes-only", Label: "Oui"},
	{Value: "no-only", Label: "Non"},
}

type holidayOption struct {
	Value string
	Label string
}

type chartImage struct {
	Name string
	Src  template.URL
}

type exportLink struct {
	Kind string
	Href string
}

// pageData modèle de la page; Dataset nul tant que rien n'est chargé
type pageData struct {
	Error    string
	Dataset  *DatasetResponse
	Stores   []salesdomain.StoreID
	Selected map[salesdomain.StoreID]bool
	Start    string
	End      string
	Holiday  string
	Holidays []holidayOption
	Stats    *StatsResponse
	Preview  []RecordResponse
	Charts   []chartImage
	Exports  []exportLink
}

// ParseDashboardTemplate compile le gabarit embarqué
func ParseDashboardTemplate() *template.Template {
	return template.Must(template.New(dashboardTemplate).Parse(dashboardHTML))
}

// RegisterPage monte la page HTML et son formulaire de téléversement
func (h *Handlers) RegisterPage(r *gin.Engine) {
	r.SetHTMLTemplate(ParseDashboardTemplate())
	r.GET("/", h.Page)
	r.POST("/upload", h.UploadPage)
}

// Page handler pour GET / (filtres en query string, comme l'API)
func (h *Handlers) Page(c *gin.Context) {
	data := pageData{Holidays: holidayOptions}
	status := h.fillPage(c, &data)
	c.HTML(status, dashboardTemplate, data)
}

// UploadPage handler pour POST /upload; redirige vers / en cas de succès
func (h *Handlers) UploadPage(c *gin.Context) {
	if _, err := h.ingestForm(c); err != nil {
		data := pageData{Holidays: holidayOptions}
		h.fillPage(c, &data)
		data.Error = err.Error()
		c.HTML(StatusFor(err), dashboardTemplate, data)
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func (h *Handlers) fillPage(c *gin.Context, data *pageData) int {
	summary, err := h.dashboard.Summary()
	if errors.Is(err, analyticsapp.ErrNoDataset) {
		return http.StatusOK
	}
	if err != nil {
		data.Error = err.Error()
		return StatusFor(err)
	}
	ds := toDatasetResponse(summary)
	data.Dataset = &ds
	data.Stores = ds.Stores

	req, err := parseStatsRequest(c)
	if err != nil {
		data.Error = err.Error()
		return StatusFor(err)
	}
	ctx := c.Request.Context()
	view, err := h.dashboard.Stats(ctx, req)
	if err != nil {
		data.Error = err.Error()
		return StatusFor(err)
	}

	stats := toStatsResponse(view)
	data.Stats = &stats
	data.Start, data.End, data.Holiday = stats.Criteria.Start, stats.Criteria.End, stats.Criteria.Holiday
	data.Selected = make(map[salesdomain.StoreID]bool, len(stats.Criteria.Stores))
	for _, id := range stats.Criteria.Stores {
		data.Selected[id] = true
	}

	data.Preview = toRecordResponses(view.Preview(h.previewRows))
	data.Charts = h.chartImages(ctx, req)

	query := c.Request.URL.RawQuery
	for _, kind := range exportapp.Kinds() {
		href := "/api/v1/export/" + kind
		if query != "" {
			href += "?" + query
		}
		data.Exports = append(data.Exports, exportLink{Kind: kind, Href: href})
	}
	return http.StatusOK
}

// chartImages rend les graphiques en data URI, dans l'ordre de la page
func (h *Handlers) chartImages(ctx context.Context, req analyticsapp.StatsRequest) []chartImage {
	pngs, err := h.charts.RenderAll(ctx, req)
	if err != nil {
		log.Printf("[Page] charts: %v", err)
		return nil
	}
	images := make([]chartImage, 0, len(pngs))
	for _, name := range exportapp.ChartNames() {
		png, ok := pngs[name]
		if !ok {
			continue
		}
		images = append(images, chartImage{
			Name: name,
			Src:  template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(png)),
		})
	}
	return images
}
