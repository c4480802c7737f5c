package domain

import (
	"sort"

	salesdomain "salesdash/internal/sales/domain"
	shareddomain "salesdash/internal/shared/domain"
)

// Aggregate calcule les indicateurs d'un ensemble de lignes (en général déjà filtré)
//   - total et moyenne en décimal exact
//   - meilleur magasin: plus fort total, égalité -> plus petit identifiant
//   - par mois: lignes sans date exclues (jamais présentes après ApplyFilter)
//
// Un ensemble vide donne total 0, moyenne 0 et pas de meilleur magasin.
func Aggregate(records []salesdomain.SalesRecord) *AggregateResult {
	result := &AggregateResult{
		rowCount:   len(records),
		totalSales: shareddomain.Zero(),
		meanWeekly: shareddomain.Zero(),
		byStore:    make([]*StoreStats, 0),
		byMonth:    make([]*MonthStats, 0),
	}
	if len(records) == 0 {
		return result
	}

	type bucket struct {
		total shareddomain.Money
		count int
	}
	stores := make(map[salesdomain.StoreID]*bucket)
	months := make(map[string]*bucket)

	total := shareddomain.Zero()
	for _, r := range records {
		total = total.Add(r.WeeklySales)

		sb, ok := stores[r.StoreID]
		if !ok {
			sb = &bucket{total: shareddomain.Zero()}
			stores[r.StoreID] = sb
		}
		sb.total = sb.total.Add(r.WeeklySales)
		sb.count++

		if month := r.Date.Month(); month != "" {
			mb, ok := months[month]
			if !ok {
				mb = &bucket{total: shareddomain.Zero()}
				months[month] = mb
			}
			mb.total = mb.total.Add(r.WeeklySales)
			mb.count++
		}
	}

	result.totalSales = total
	result.meanWeekly = total.DivideBy(len(records))

	storeIDs := make([]salesdomain.StoreID, 0, len(stores))
	for id := range stores {
		storeIDs = append(storeIDs, id)
	}
	sort.Slice(storeIDs, func(i, j int) bool { return storeIDs[i] < storeIDs[j] })

	for _, id := range storeIDs {
		b := stores[id]
		result.byStore = append(result.byStore, NewStoreStats(id, b.total, b.count))
		// parcours croissant + comparaison stricte: le plus petit ID gagne les égalités
		if !result.hasBest || b.total.Cmp(stores[result.bestStore].total) > 0 {
			result.bestStore = id
			result.hasBest = true
		}
	}

	// "2006-01" se trie chronologiquement dans l'ordre lexicographique
	monthKeys := make([]string, 0, len(months))
	for m := range months {
		monthKeys = append(monthKeys, m)
	}
	sort.Strings(monthKeys)
	for _, m := range monthKeys {
		b := months[m]
		result.byMonth = append(result.byMonth, NewMonthStats(m, b.total, b.count))
	}

	return result
}
