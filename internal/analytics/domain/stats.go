package domain

import (
	salesdomain "salesdash/internal/sales/domain"
	shareddomain "salesdash/internal/shared/domain"
)

// AggregateResult représente les indicateurs d'un sous-ensemble filtré
// Recalculé à chaque requête, jamais persisté.
type AggregateResult struct {
	rowCount   int
	totalSales shareddomain.Money
	meanWeekly shareddomain.Money
	bestStore  salesdomain.StoreID
	hasBest    bool
	byStore    []*StoreStats
	byMonth    []*MonthStats
}

// RowCount retourne le nombre de lignes agrégées
func (s *AggregateResult) RowCount() int {
	return s.rowCount
}

// TotalSales retourne la somme des ventes hebdomadaires (0 si vide)
func (s *AggregateResult) TotalSales() shareddomain.Money {
	return s.totalSales
}

// MeanWeeklySales retourne la moyenne par ligne
// Sentinelle: 0 quand RowCount() == 0
func (s *AggregateResult) MeanWeeklySales() shareddomain.Money {
	return s.meanWeekly
}

// BestStore retourne le magasin au plus fort total, false si aucune ligne
func (s *AggregateResult) BestStore() (salesdomain.StoreID, bool) {
	return s.bestStore, s.hasBest
}

// ByStore retourne les totaux par magasin, triés par identifiant croissant
func (s *AggregateResult) ByStore() []*StoreStats {
	return append([]*StoreStats{}, s.byStore...)
}

// ByMonth retourne les totaux par mois, dans l'ordre chronologique
func (s *AggregateResult) ByMonth() []*MonthStats {
	return append([]*MonthStats{}, s.byMonth...)
}

// ByStoreMap retourne magasin -> total
func (s *AggregateResult) ByStoreMap() map[salesdomain.StoreID]shareddomain.Money {
	m := make(map[salesdomain.StoreID]shareddomain.Money, len(s.byStore))
	for _, st := range s.byStore {
		m[st.storeID] = st.totalSales
	}
	return m
}

// StoreStats représente le total d'un magasin
type StoreStats struct {
	storeID    salesdomain.StoreID
	totalSales shareddomain.Money
	weeks      int
}

// NewStoreStats crée une nouvelle instance de StoreStats
func NewStoreStats(storeID salesdomain.StoreID, totalSales shareddomain.Money, weeks int) *StoreStats {
	return &StoreStats{storeID: storeID, totalSales: totalSales, weeks: weeks}
}

// StoreID retourne l'ID du magasin
func (ss *StoreStats) StoreID() salesdomain.StoreID {
	return ss.storeID
}

// TotalSales retourne le total du magasin
func (ss *StoreStats) TotalSales() shareddomain.Money {
	return ss.totalSales
}

// Weeks retourne le nombre de lignes du magasin
func (ss *StoreStats) Weeks() int {
	return ss.weeks
}

// MonthStats représente le total d'un mois calendaire
type MonthStats struct {
	month      string
	totalSales shareddomain.Money
	weeks      int
}

// NewMonthStats crée une nouvelle instance de MonthStats
func NewMonthStats(month string, totalSales shareddomain.Money, weeks int) *MonthStats {
	return &MonthStats{month: month, totalSales: totalSales, weeks: weeks}
}

// Month retourne le libellé "2006-01"
func (ms *MonthStats) Month() string {
	return ms.month
}

// TotalSales retourne le total du mois
func (ms *MonthStats) TotalSales() shareddomain.Money {
	return ms.totalSales
}

// Weeks retourne le nombre de lignes du mois
func (ms *MonthStats) Weeks() int {
	return ms.weeks
}
