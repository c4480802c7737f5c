package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"salesdash/internal/analytics/domain"
	salesdomain "salesdash/internal/sales/domain"
	salesinfra "salesdash/internal/sales/infrastructure"
	shareddomain "salesdash/internal/shared/domain"
	sharedinfra "salesdash/internal/shared/infrastructure"
)

// ErrNoDataset aucun fichier n'a encore été téléversé
var ErrNoDataset = errors.New("no dataset loaded")

// DefaultPreviewRows nombre de lignes de l'aperçu
const DefaultPreviewRows = 10

// StatsRequest choix de l'utilisateur avant validation
// Start/End nuls: bornes du jeu de données
type StatsRequest struct {
	Stores  []salesdomain.StoreID
	Start   *time.Time
	End     *time.Time
	Holiday string
}

// View sous-ensemble filtré et ses indicateurs
type View struct {
	DatasetID string
	Criteria  domain.FilterCriteria
	Records   []salesdomain.SalesRecord
	Result    *domain.AggregateResult
}

// Preview retourne les premières lignes filtrées, dans l'ordre du fichier
func (v *View) Preview(limit int) []salesdomain.SalesRecord {
	if limit <= 0 {
		limit = DefaultPreviewRows
	}
	if limit > len(v.Records) {
		limit = len(v.Records)
	}
	return v.Records[:limit]
}

// DatasetSummary résumé du jeu actif
type DatasetSummary struct {
	ID           string
	Filename     string
	UploadedAt   time.Time
	Rows         int
	Stores       []salesdomain.StoreID
	DateRange    shareddomain.DateRange
	HasDates     bool
	MissingDates int
}

// DashboardService orchestre ingestion, filtrage et agrégation du jeu actif
// Un seul jeu à la fois: un téléversement remplace le précédent et invalide ses vues en cache.
type DashboardService struct {
	staging  salesinfra.Staging
	cache    sharedinfra.Cache
	cacheTTL time.Duration

	mu      sync.RWMutex
	current *salesdomain.Dataset
}

// NewDashboardService crée une nouvelle instance de DashboardService
func NewDashboardService(
	staging salesinfra.Staging,
	cache sharedinfra.Cache,
	cacheTTL time.Duration,
) *DashboardService {
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &DashboardService{
		staging:  staging,
		cache:    cache,
		cacheTTL: cacheTTL,
	}
}

// Ingest lit un fichier téléversé (CSV, XLSX, XLS) puis le charge
func (s *DashboardService) Ingest(ctx context.Context, filename string, r io.Reader) (*salesdomain.Dataset, error) {
	rows, err := salesinfra.ReadRows(filename, r)
	if err != nil {
		return nil, err
	}
	return s.Upload(ctx, filename, rows)
}

// Upload normalise les lignes brutes et remplace le jeu actif
// En cas d'erreur le jeu précédent reste en place.
func (s *DashboardService) Upload(ctx context.Context, filename string, rows []salesdomain.RawRow) (*salesdomain.Dataset, error) {
	start := time.Now()

	records, err := salesdomain.Normalize(rows)
	if err != nil {
		return nil, err
	}
	dataset := salesdomain.NewDataset(uuid.NewString(), filename, records, time.Now().UTC())

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.staging.Replace(ctx, records); err != nil {
		return nil, fmt.Errorf("staging: %w", err)
	}
	previous := s.current
	s.current = dataset
	if previous != nil {
		evicted := s.cache.DeletePrefix(datasetCachePrefix(previous.ID()))
		log.Printf("[Dashboard] dataset %s replaced, %d cached view(s) evicted", previous.ID(), evicted)
	}

	log.Printf("[Dashboard] dataset %s loaded from %q: %d rows, %d missing dates (%v)",
		dataset.ID(), filename, dataset.Len(), dataset.MissingDates(), time.Since(start))
	return dataset, nil
}

// Current retourne le jeu actif
func (s *DashboardService) Current() (*salesdomain.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil, ErrNoDataset
	}
	return s.current, nil
}

// Summary résume le jeu actif
func (s *DashboardService) Summary() (*DatasetSummary, error) {
	ds, err := s.Current()
	if err != nil {
		return nil, err
	}
	return SummaryOf(ds), nil
}

// SummaryOf résume un jeu de données quelconque
func SummaryOf(ds *salesdomain.Dataset) *DatasetSummary {
	bounds, ok := ds.DateBounds()
	return &DatasetSummary{
		ID:           ds.ID(),
		Filename:     ds.Filename(),
		UploadedAt:   ds.UploadedAt(),
		Rows:         ds.Len(),
		Stores:       ds.StoreIDs(),
		DateRange:    bounds,
		HasDates:     ok,
		MissingDates: ds.MissingDates(),
	}
}

// Criteria valide la requête; les bornes absentes prennent celles du jeu
func (s *DashboardService) Criteria(req StatsRequest) (domain.FilterCriteria, error) {
	ds, err := s.Current()
	if err != nil {
		return domain.FilterCriteria{}, err
	}
	return criteriaFor(ds, req)
}

func criteriaFor(ds *salesdomain.Dataset, req StatsRequest) (domain.FilterCriteria, error) {
	bounds, _ := ds.DateBounds()
	start, end := bounds.Start(), bounds.End()
	if req.Start != nil {
		start = *req.Start
	}
	if req.End != nil {
		end = *req.End
	}
	return domain.BuildFilter(req.Stores, start, end, req.Holiday)
}

// Stats filtre le jeu actif puis agrège le sous-ensemble
// Les vues sont mises en cache par jeu et par critères.
func (s *DashboardService) Stats(ctx context.Context, req StatsRequest) (*View, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return nil, ErrNoDataset
	}
	criteria, err := criteriaFor(s.current, req)
	if err != nil {
		return nil, err
	}

	cacheKey := s.buildCacheKey(s.current.ID(), criteria)
	if cached, found := s.cache.Get(cacheKey); found {
		return cached.(*View), nil
	}

	records, err := s.staging.Find(ctx, criteria)
	if err != nil {
		return nil, fmt.Errorf("staging: %w", err)
	}

	view := &View{
		DatasetID: s.current.ID(),
		Criteria:  criteria,
		Records:   records,
		Result:    domain.Aggregate(records),
	}
	s.cache.Set(cacheKey, view, s.cacheTTL)
	return view, nil
}

// buildCacheKey "stats:<jeu>:<magasins triés>:<début>:<fin>:<mode férié>"
func (s *DashboardService) buildCacheKey(datasetID string, criteria domain.FilterCriteria) string {
	stores := criteria.StoreIDs()
	ids := make([]int, len(stores))
	for i, id := range stores {
		ids[i] = int(id)
	}
	return sharedinfra.NewCacheKeyBuilder().
		Add("stats").
		Add(datasetID).
		AddInts(ids).
		AddDate(criteria.DateRange().Start()).
		AddDate(criteria.DateRange().End()).
		Add(criteria.HolidayMode().String()).
		Build()
}

// datasetCachePrefix préfixe commun à toutes les vues d'un jeu
func datasetCachePrefix(datasetID string) string {
	return sharedinfra.NewCacheKeyBuilder().Add("stats").Add(datasetID).Build() + ":"
}
