package application

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"
	"github.com/xuri/excelize/v2"

	analyticsapp "salesdash/internal/analytics/application"
	"salesdash/internal/export/domain"
	salesdomain "salesdash/internal/sales/domain"
	salesinfra "salesdash/internal/sales/infrastructure"
	sharedinfra "salesdash/internal/shared/infrastructure"
)

// Noms des feuilles du classeur exporté
const (
	SheetRows    = "Ventes"
	SheetStores  = "Magasins"
	SheetMonths  = "Mois"
	SheetSummary = "Synthese"
)

// ExportResult fichier produit et son job
type ExportResult struct {
	Job  *domain.ExportJob
	Data []byte
}

// ExportService exporte le sous-ensemble filtré du jeu actif
type ExportService struct {
	dashboard *analyticsapp.DashboardService
	workers   int
	batchSize int
}

// NewExportService crée une nouvelle instance de ExportService
func NewExportService(dashboard *analyticsapp.DashboardService) *ExportService {
	return &ExportService{
		dashboard: dashboard,
		workers:   4,
		batchSize: 1000,
	}
}

func (s *ExportService) prepare(ctx context.Context, format domain.ExportFormat, typ domain.ExportType, req analyticsapp.StatsRequest) (*analyticsapp.View, *domain.ExportJob, error) {
	view, err := s.dashboard.Stats(ctx, req)
	if err != nil {
		return nil, nil, err
	}
	job, err := domain.NewExportJob(format, typ, view.Criteria.DateRange())
	if err != nil {
		return nil, nil, err
	}
	return view, job, nil
}

// ExportSalesToCSV lignes filtrées au format du fichier d'entrée (re-téléversable)
func (s *ExportService) ExportSalesToCSV(ctx context.Context, req analyticsapp.StatsRequest) (*ExportResult, error) {
	view, job, err := s.prepare(ctx, domain.ExportFormatCSV, domain.ExportTypeSales, req)
	if err != nil {
		return nil, err
	}

	buffer := bytes.NewBuffer(make([]byte, 0, 64*1024))
	if err := salesinfra.WriteCSV(buffer, salesdomain.Denormalize(view.Records)); err != nil {
		return nil, err
	}
	return &ExportResult{Job: job, Data: buffer.Bytes()}, nil
}

// ExportStatsToCSV indicateurs du sous-ensemble filtré
func (s *ExportService) ExportStatsToCSV(ctx context.Context, req analyticsapp.StatsRequest) (*ExportResult, error) {
	view, job, err := s.prepare(ctx, domain.ExportFormatCSV, domain.ExportTypeStats, req)
	if err != nil {
		return nil, err
	}

	buffer := bytes.NewBuffer(make([]byte, 0, 16*1024))
	w := csv.NewWriter(buffer)
	if err := w.Write(domain.StatsCSVHeaders()); err != nil {
		return nil, err
	}
	for _, line := range domain.BuildStatLines(view.Result) {
		if err := w.Write(line.ToCSVRow()); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return &ExportResult{Job: job, Data: buffer.Bytes()}, nil
}

// ExportToXLSX classeur: lignes filtrées, totaux par magasin et par mois, synthèse
func (s *ExportService) ExportToXLSX(ctx context.Context, req analyticsapp.StatsRequest) (*ExportResult, error) {
	view, job, err := s.prepare(ctx, domain.ExportFormatXLSX, domain.ExportTypeWorkbook, req)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	f.SetSheetName("Sheet1", SheetRows)
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E2E8F0"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})

	headers := domain.ExportHeaders()
	rows := make([][]interface{}, 0, len(view.Records))
	for _, r := range view.Records {
		rows = append(rows, domain.NewSaleExportRow(r).ToCells())
	}
	if err := writeSheet(f, SheetRows, headers, rows, headerStyle); err != nil {
		return nil, err
	}

	storeRows := make([][]interface{}, 0)
	for _, st := range view.Result.ByStore() {
		storeRows = append(storeRows, []interface{}{int64(st.StoreID()), st.TotalSales().Float64(), st.Weeks()})
	}
	f.NewSheet(SheetStores)
	if err := writeSheet(f, SheetStores, []string{"store_id", "total_sales", "weeks"}, storeRows, headerStyle); err != nil {
		return nil, err
	}

	monthRows := make([][]interface{}, 0)
	for _, m := range view.Result.ByMonth() {
		monthRows = append(monthRows, []interface{}{m.Month(), m.TotalSales().Float64(), m.Weeks()})
	}
	f.NewSheet(SheetMonths)
	if err := writeSheet(f, SheetMonths, []string{"month", "total_sales", "weeks"}, monthRows, headerStyle); err != nil {
		return nil, err
	}

	summaryRows := make([][]interface{}, 0)
	for _, line := range domain.BuildStatLines(view.Result) {
		if line.Section == "Global" {
			summaryRows = append(summaryRows, []interface{}{line.Label, line.Value})
		}
	}
	summaryRows = append(summaryRows,
		[]interface{}{"Period", view.Criteria.DateRange().String()},
		[]interface{}{"Holiday", view.Criteria.HolidayMode().String()},
	)
	f.NewSheet(SheetSummary)
	if err := writeSheet(f, SheetSummary, []string{"metric", "value"}, summaryRows, headerStyle); err != nil {
		return nil, err
	}

	f.SetColWidth(SheetRows, "A", "G", 15)
	f.SetColWidth(SheetSummary, "A", "B", 25)
	f.SetActiveSheet(0)

	buffer, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return &ExportResult{Job: job, Data: buffer.Bytes()}, nil
}

func writeSheet(f *excelize.File, sheet string, headers []string, rows [][]interface{}, headerStyle int) error {
	header := make([]interface{}, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	f.SetRowStyle(sheet, 1, 1, headerStyle)

	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &rows[i]); err != nil {
			return err
		}
	}
	return nil
}

// ExportToParquet lignes filtrées en Parquet
// Conversion par lots en parallèle sur le worker pool, écriture séquentielle dans l'ordre des lignes.
func (s *ExportService) ExportToParquet(ctx context.Context, req analyticsapp.StatsRequest) (*ExportResult, error) {
	start := time.Now()
	view, job, err := s.prepare(ctx, domain.ExportFormatParquet, domain.ExportTypeSales, req)
	if err != nil {
		return nil, err
	}

	converted := make([]domain.SaleParquet, len(view.Records))
	pool := sharedinfra.NewWorkerPool(ctx, s.workers)
	pool.Start()
	for from := 0; from < len(view.Records); from += s.batchSize {
		from, to := from, min(from+s.batchSize, len(view.Records))
		if err := pool.Submit(func() error {
			for i := from; i < to; i++ {
				converted[i] = domain.NewSaleExportRow(view.Records[i]).ToParquet()
			}
			return nil
		}); err != nil {
			pool.Stop()
			return nil, err
		}
	}
	if err := pool.Wait(); err != nil {
		return nil, err
	}

	buffer := new(bytes.Buffer)
	pw, err := writer.NewParquetWriterFromWriter(buffer, new(domain.SaleParquet), int64(s.workers))
	if err != nil {
		return nil, fmt.Errorf("parquet writer: %w", err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY
	for i := range converted {
		if err := pw.Write(converted[i]); err != nil {
			return nil, fmt.Errorf("parquet row %d: %w", i+1, err)
		}
	}
	if err := pw.WriteStop(); err != nil {
		return nil, fmt.Errorf("parquet close: %w", err)
	}

	log.Printf("[Export] parquet: %d rows in %v", len(converted), time.Since(start))
	return &ExportResult{Job: job, Data: buffer.Bytes()}, nil
}

// Export choisit l'export selon son nom d'URL ("csv", "stats-csv", "xlsx", "parquet")
func (s *ExportService) Export(ctx context.Context, kind string, req analyticsapp.StatsRequest) (*ExportResult, error) {
	switch kind {
	case "csv":
		return s.ExportSalesToCSV(ctx, req)
	case "stats-csv":
		return s.ExportStatsToCSV(ctx, req)
	case "xlsx":
		return s.ExportToXLSX(ctx, req)
	case "parquet":
		return s.ExportToParquet(ctx, req)
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrInvalidExport, strconv.Quote(kind))
}

// Kinds liste des exports disponibles
func Kinds() []string {
	return []string{"csv", "stats-csv", "xlsx", "parquet"}
}
