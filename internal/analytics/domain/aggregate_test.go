package domain

import (
	"math"
	"strconv"
	"testing"

	salesdomain "salesdash/internal/sales/domain"
	shareddomain "salesdash/internal/shared/domain"
)

func money(t *testing.T, s string) shareddomain.Money {
	t.Helper()
	m, err := shareddomain.ParseMoney(s)
	if err != nil {
		t.Fatalf("ParseMoney(%q): %v", s, err)
	}
	return m
}

func TestAggregate_Example(t *testing.T) {
	records, err := salesdomain.Normalize([]salesdomain.RawRow{
		{StoreNumber: "1", Date: "01/02/2023", WeeklySales: "1,200.50", HolidayFlag: "0", Temperature: "40", FuelPrice: "2.5", Unemployment: "8"},
		{StoreNumber: "2", Date: "01/09/2023", WeeklySales: "800.00", HolidayFlag: "0", Temperature: "42", FuelPrice: "2.6", Unemployment: "7.5"},
	})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	c := mustFilter(t, nil, day(2023, 1, 1), day(2023, 1, 31), "all")

	result := Aggregate(ApplyFilter(records, c))

	if !result.TotalSales().Equal(money(t, "2000.50")) {
		t.Errorf("total = %s, want 2000.50", result.TotalSales())
	}
	if !result.MeanWeeklySales().Equal(money(t, "1000.25")) {
		t.Errorf("mean = %s, want 1000.25", result.MeanWeeklySales())
	}
	byStore := result.ByStoreMap()
	if len(byStore) != 2 || !byStore[1].Equal(money(t, "1200.50")) || !byStore[2].Equal(money(t, "800")) {
		t.Errorf("by store = %v", byStore)
	}
	best, ok := result.BestStore()
	if !ok || best != 1 {
		t.Errorf("best store = %d (ok=%v), want 1", best, ok)
	}
	months := result.ByMonth()
	if len(months) != 1 || months[0].Month() != "2023-01" || months[0].Weeks() != 2 {
		t.Errorf("by month = %+v", months)
	}
}

func TestAggregate_EmptyIsWellDefined(t *testing.T) {
	result := Aggregate(nil)

	if !result.TotalSales().IsZero() {
		t.Errorf("total = %s, want 0", result.TotalSales())
	}
	if !result.MeanWeeklySales().IsZero() {
		t.Errorf("mean = %s, want 0 sentinel", result.MeanWeeklySales())
	}
	if _, ok := result.BestStore(); ok {
		t.Error("best store must be absent on empty input")
	}
	if result.RowCount() != 0 || len(result.ByStore()) != 0 || len(result.ByMonth()) != 0 {
		t.Errorf("unexpected groups: %+v", result)
	}
}

func TestAggregate_BestStoreTieGoesToLowestID(t *testing.T) {
	records, _ := salesdomain.Normalize([]salesdomain.RawRow{
		{StoreNumber: "9", Date: "01/02/2023", WeeklySales: "500", HolidayFlag: "0", Temperature: "1", FuelPrice: "1", Unemployment: "1"},
		{StoreNumber: "4", Date: "01/02/2023", WeeklySales: "250", HolidayFlag: "0", Temperature: "1", FuelPrice: "1", Unemployment: "1"},
		{StoreNumber: "4", Date: "01/09/2023", WeeklySales: "250", HolidayFlag: "0", Temperature: "1", FuelPrice: "1", Unemployment: "1"},
		{StoreNumber: "7", Date: "01/09/2023", WeeklySales: "500", HolidayFlag: "0", Temperature: "1", FuelPrice: "1", Unemployment: "1"},
		{StoreNumber: "2", Date: "01/09/2023", WeeklySales: "100", HolidayFlag: "0", Temperature: "1", FuelPrice: "1", Unemployment: "1"},
	})

	best, ok := Aggregate(records).BestStore()
	if !ok || best != 4 {
		t.Fatalf("best store = %d, want 4 (lowest among tied 4, 7, 9)", best)
	}
}

func TestAggregate_PartitionProperties(t *testing.T) {
	records := fixtureRecords(t)
	filtered := ApplyFilter(records, mustFilter(t, nil, day(2023, 1, 1), day(2023, 12, 31), "all"))
	result := Aggregate(filtered)

	storeSum := shareddomain.Zero()
	for _, s := range result.ByStore() {
		storeSum = storeSum.Add(s.TotalSales())
	}
	monthSum := shareddomain.Zero()
	for _, m := range result.ByMonth() {
		monthSum = monthSum.Add(m.TotalSales())
	}

	if !storeSum.Equal(result.TotalSales()) {
		t.Errorf("sum(by_store) = %s, total = %s", storeSum, result.TotalSales())
	}
	if !monthSum.Equal(result.TotalSales()) {
		t.Errorf("sum(by_month) = %s, total = %s", monthSum, result.TotalSales())
	}
}

func TestAggregate_MonthsAreChronological(t *testing.T) {
	records, _ := salesdomain.Normalize([]salesdomain.RawRow{
		{StoreNumber: "1", Date: "11/05/2011", WeeklySales: "1", HolidayFlag: "0", Temperature: "1", FuelPrice: "1", Unemployment: "1"},
		{StoreNumber: "1", Date: "02/05/2010", WeeklySales: "1", HolidayFlag: "0", Temperature: "1", FuelPrice: "1", Unemployment: "1"},
		{StoreNumber: "1", Date: "01/07/2011", WeeklySales: "1", HolidayFlag: "0", Temperature: "1", FuelPrice: "1", Unemployment: "1"},
		{StoreNumber: "1", Date: "12/31/2010", WeeklySales: "1", HolidayFlag: "0", Temperature: "1", FuelPrice: "1", Unemployment: "1"},
	})

	var got []string
	for _, m := range Aggregate(records).ByMonth() {
		got = append(got, m.Month())
	}
	want := []string{"2010-02", "2010-12", "2011-01", "2011-11"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("months = %v, want %v", got, want)
		}
	}
}

func TestAggregate_FullRangeRecoversUnfilteredTotal(t *testing.T) {
	records, _ := salesdomain.Normalize([]salesdomain.RawRow{
		{StoreNumber: "1", Date: "02/05/2010", WeeklySales: "1,643,690.90", HolidayFlag: "0", Temperature: "42.31", FuelPrice: "2.572", Unemployment: "8.106"},
		{StoreNumber: "1", Date: "02/12/2010", WeeklySales: "1,641,957.44", HolidayFlag: "1", Temperature: "38.51", FuelPrice: "2.548", Unemployment: "8.106"},
		{StoreNumber: "2", Date: "02/05/2010", WeeklySales: "2,136,989.46", HolidayFlag: "0", Temperature: "40.19", FuelPrice: "2.572", Unemployment: "8.324"},
	})
	ds := salesdomain.NewDataset("d", "f.csv", records, day(2024, 1, 1))
	bounds, _ := ds.DateBounds()

	c := NewFilterCriteria(nil, bounds, HolidayAny)
	filtered := Aggregate(ApplyFilter(records, c))
	all := Aggregate(records)

	if !filtered.TotalSales().Equal(all.TotalSales()) {
		t.Fatalf("filtered total %s != unfiltered total %s", filtered.TotalSales(), all.TotalSales())
	}
}

func TestLinearTrend(t *testing.T) {
	trend, ok := LinearTrend([]float64{1, 2, 3, 4}, []float64{3, 5, 7, 9})
	if !ok {
		t.Fatal("expected a trend")
	}
	if math.Abs(trend.Slope-2) > 1e-9 || math.Abs(trend.Intercept-1) > 1e-9 {
		t.Fatalf("trend = %+v, want slope 2 intercept 1", trend)
	}
	if math.Abs(trend.At(10)-21) > 1e-9 {
		t.Errorf("At(10) = %v", trend.At(10))
	}

	if _, ok := LinearTrend([]float64{5, 5}, []float64{1, 2}); ok {
		t.Error("vertical data has no trend")
	}
	if _, ok := LinearTrend([]float64{1}, []float64{1}); ok {
		t.Error("single point has no trend")
	}
}

// BenchmarkAggregate_45Stores_143Weeks taille du jeu Walmart d'origine (6435 lignes)
func BenchmarkAggregate_45Stores_143Weeks(b *testing.B) {
	rows := make([]salesdomain.RawRow, 0, 45*143)
	start := day(2010, 2, 5)
	for s := 1; s <= 45; s++ {
		for w := 0; w < 143; w++ {
			rows = append(rows, salesdomain.RawRow{
				StoreNumber:  strconv.Itoa(s),
				Date:         start.AddDate(0, 0, 7*w).Format("01/02/2006"),
				WeeklySales:  "1,234,567.89",
				HolidayFlag:  "0",
				Temperature:  "50",
				FuelPrice:    "3",
				Unemployment: "8",
			})
		}
	}
	records, err := salesdomain.Normalize(rows)
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = Aggregate(records)
	}
}

