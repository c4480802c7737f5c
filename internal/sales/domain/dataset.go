package domain

import (
	"sort"
	"time"

	shareddomain "salesdash/internal/shared/domain"
)

// Dataset jeu de données téléversé et normalisé (un seul actif à la fois)
type Dataset struct {
	id         string
	filename   string
	records    []SalesRecord
	uploadedAt time.Time
}

// NewDataset crée un jeu de données
func NewDataset(id, filename string, records []SalesRecord, uploadedAt time.Time) *Dataset {
	return &Dataset{
		id:         id,
		filename:   filename,
		records:    records,
		uploadedAt: uploadedAt,
	}
}

// ID retourne l'identifiant du jeu de données
func (d *Dataset) ID() string {
	return d.id
}

// Filename retourne le nom du fichier d'origine
func (d *Dataset) Filename() string {
	return d.filename
}

// UploadedAt retourne la date de téléversement
func (d *Dataset) UploadedAt() time.Time {
	return d.uploadedAt
}

// Records retourne les lignes (slice partagée: lecture seule)
func (d *Dataset) Records() []SalesRecord {
	return d.records
}

// Len retourne le nombre de lignes
func (d *Dataset) Len() int {
	return len(d.records)
}

// StoreIDs retourne les magasins distincts, triés
func (d *Dataset) StoreIDs() []StoreID {
	seen := make(map[StoreID]struct{})
	for _, r := range d.records {
		seen[r.StoreID] = struct{}{}
	}
	ids := make([]StoreID, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// DateBounds retourne [min, max] des dates non manquantes, false si aucune
func (d *Dataset) DateBounds() (shareddomain.DateRange, bool) {
	var minDate, maxDate time.Time
	found := false
	for _, r := range d.records {
		t, ok := r.Date.Time()
		if !ok {
			continue
		}
		if !found || t.Before(minDate) {
			minDate = t
		}
		if !found || t.After(maxDate) {
			maxDate = t
		}
		found = true
	}
	if !found {
		return shareddomain.DateRange{}, false
	}
	dr, err := shareddomain.NewDateRange(minDate, maxDate)
	if err != nil {
		return shareddomain.DateRange{}, false
	}
	return dr, true
}

// MissingDates compte les lignes dont la date n'a pas pu être lue
func (d *Dataset) MissingDates() int {
	n := 0
	for _, r := range d.records {
		if r.Date.IsMissing() {
			n++
		}
	}
	return n
}
