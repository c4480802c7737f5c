package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	salesdomain "salesdash/internal/sales/domain"
	shareddomain "salesdash/internal/shared/domain"
)

// ErrInvalidRange période avec début postérieur à la fin
var ErrInvalidRange = shareddomain.ErrInvalidRange

// ErrInvalidHolidayMode valeur de filtre "semaines fériées" inconnue
var ErrInvalidHolidayMode = errors.New("invalid holiday mode")

// HolidayMode filtre sur l'indicateur de semaine fériée
type HolidayMode int

const (
	HolidayAny        HolidayMode = iota // toutes les semaines
	HolidayOnly                          // Holiday_Flag = 1
	HolidayNonHoliday                    // Holiday_Flag = 0
)

// ParseHolidayMode "all" -> ANY, "yes-only" -> ONLY_HOLIDAY, "no-only" -> ONLY_NON_HOLIDAY
// Le vide vaut "all"; les libellés du formulaire d'origine (tous/oui/non) sont acceptés.
func ParseHolidayMode(s string) (HolidayMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all", "tous":
		return HolidayAny, nil
	case "yes-only", "oui":
		return HolidayOnly, nil
	case "no-only", "non":
		return HolidayNonHoliday, nil
	}
	return HolidayAny, fmt.Errorf("%w: %q", ErrInvalidHolidayMode, s)
}

// String retourne la forme canonique du mode
func (m HolidayMode) String() string {
	switch m {
	case HolidayOnly:
		return "yes-only"
	case HolidayNonHoliday:
		return "no-only"
	}
	return "all"
}

// Matches applique le prédicat férié à une valeur d'indicateur
func (m HolidayMode) Matches(holiday bool) bool {
	switch m {
	case HolidayOnly:
		return holiday
	case HolidayNonHoliday:
		return !holiday
	}
	return true
}

// FilterCriteria conjonction de clauses typées: magasins AND période AND fériés
// DESIGN PATTERN: Value Object + Specification
//   - Immutable une fois construit par BuildFilter
//   - Évalué en mémoire (Matches) ou rendu en SQL paramétré (ToSQL)
type FilterCriteria struct {
	storeIDs  []salesdomain.StoreID // triés, sans doublon; vide = tous les magasins
	storeSet  map[salesdomain.StoreID]struct{}
	dateRange shareddomain.DateRange
	holiday   HolidayMode
}

// BuildFilter construit les critères à partir des choix de l'utilisateur
// Les identifiants de magasin ne sont pas validés: un magasin inconnu donne zéro ligne.
func BuildFilter(stores []salesdomain.StoreID, start, end time.Time, holidayMode string) (FilterCriteria, error) {
	dateRange, err := shareddomain.NewDateRange(start, end)
	if err != nil {
		return FilterCriteria{}, err
	}
	mode, err := ParseHolidayMode(holidayMode)
	if err != nil {
		return FilterCriteria{}, err
	}
	return NewFilterCriteria(stores, dateRange, mode), nil
}

// NewFilterCriteria construit des critères à partir de valeurs déjà validées
func NewFilterCriteria(stores []salesdomain.StoreID, dateRange shareddomain.DateRange, mode HolidayMode) FilterCriteria {
	set := make(map[salesdomain.StoreID]struct{}, len(stores))
	ids := make([]salesdomain.StoreID, 0, len(stores))
	for _, id := range stores {
		if _, dup := set[id]; dup {
			continue
		}
		set[id] = struct{}{}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	return FilterCriteria{
		storeIDs:  ids,
		storeSet:  set,
		dateRange: dateRange,
		holiday:   mode,
	}
}

// StoreIDs retourne une copie des magasins sélectionnés (vide = tous)
func (c FilterCriteria) StoreIDs() []salesdomain.StoreID {
	return append([]salesdomain.StoreID{}, c.storeIDs...)
}

// DateRange retourne la période inclusive
func (c FilterCriteria) DateRange() shareddomain.DateRange {
	return c.dateRange
}

// HolidayMode retourne le mode férié
func (c FilterCriteria) HolidayMode() HolidayMode {
	return c.holiday
}

// Matches évalue le prédicat sur une ligne
// Une ligne sans date ne correspond jamais: la période est toujours bornée.
func (c FilterCriteria) Matches(r salesdomain.SalesRecord) bool {
	if len(c.storeSet) > 0 {
		if _, ok := c.storeSet[r.StoreID]; !ok {
			return false
		}
	}
	t, ok := r.Date.Time()
	if !ok || !c.dateRange.Contains(t) {
		return false
	}
	return c.holiday.Matches(r.Holiday)
}

// ToSQL rend le prédicat en clause WHERE paramétrée sur la table de staging
// Les valeurs passent toutes par des placeholders, jamais par concaténation.
func (c FilterCriteria) ToSQL(dialect shareddomain.Dialect) (string, []interface{}) {
	args := []interface{}{
		c.dateRange.Start().Format(shareddomain.DateLayout),
		c.dateRange.End().Format(shareddomain.DateLayout),
	}
	clauses := []string{
		"sale_date IS NOT NULL",
		"sale_date >= " + dialect.Placeholder(1),
		"sale_date <= " + dialect.Placeholder(2),
	}

	if len(c.storeIDs) > 0 {
		clauses = append(clauses, "store_id IN ("+dialect.Placeholders(len(args)+1, len(c.storeIDs))+")")
		for _, id := range c.storeIDs {
			args = append(args, int64(id))
		}
	}

	switch c.holiday {
	case HolidayOnly:
		args = append(args, 1)
		clauses = append(clauses, "holiday_flag = "+dialect.Placeholder(len(args)))
	case HolidayNonHoliday:
		args = append(args, 0)
		clauses = append(clauses, "holiday_flag = "+dialect.Placeholder(len(args)))
	}

	return strings.Join(clauses, " AND "), args
}

// ApplyFilter retourne les lignes qui satisfont les critères, dans l'ordre d'entrée
// Fonction pure: l'entrée n'est pas modifiée, un résultat vide est valide.
func ApplyFilter(records []salesdomain.SalesRecord, c FilterCriteria) []salesdomain.SalesRecord {
	out := make([]salesdomain.SalesRecord, 0, len(records))
	for _, r := range records {
		if c.Matches(r) {
			out = append(out, r)
		}
	}
	return out
}
