package infrastructure

import (
	"context"
	"sync"

	"salesdash/internal/sales/domain"
)

// MemoryStaging staging en mémoire (STAGING_DRIVER=memory), évalue les prédicats via Matches
type MemoryStaging struct {
	mu      sync.RWMutex
	records []domain.SalesRecord
}

// NewMemoryStaging crée un staging vide
func NewMemoryStaging() *MemoryStaging {
	return &MemoryStaging{}
}

// Replace remplace le contenu par une copie de records
func (m *MemoryStaging) Replace(ctx context.Context, records []domain.SalesRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	copied := make([]domain.SalesRecord, len(records))
	copy(copied, records)

	m.mu.Lock()
	m.records = copied
	m.mu.Unlock()
	return nil
}

// Find retourne les lignes satisfaisant spec, dans l'ordre d'insertion
func (m *MemoryStaging) Find(ctx context.Context, spec RecordSpecification) ([]domain.SalesRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []domain.SalesRecord
	for _, r := range m.records {
		if spec.Matches(r) {
			out = append(out, r)
		}
	}
	return out, nil
}

// Count retourne le nombre de lignes
func (m *MemoryStaging) Count(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records), nil
}
