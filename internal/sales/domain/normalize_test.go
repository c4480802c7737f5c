package domain

import (
	"errors"
	"testing"
	"time"
)

func rawRow(store, date, sales string) RawRow {
	return RawRow{
		StoreNumber:  store,
		Date:         date,
		WeeklySales:  sales,
		HolidayFlag:  "0",
		Temperature:  "42.31",
		FuelPrice:    "2.572",
		Unemployment: "8.106",
	}
}

func TestNormalize_StripsSeparatorsAndParsesDates(t *testing.T) {
	records, err := Normalize([]RawRow{
		rawRow("1", "01/02/2023", "1,200.50"),
		rawRow("2", "1/9/2023", "800.00"),
	})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("len = %d, want 2", len(records))
	}

	first := records[0]
	if first.StoreID != 1 {
		t.Errorf("StoreID = %d, want 1", first.StoreID)
	}
	if first.WeeklySales.String() != "1200.50" {
		t.Errorf("WeeklySales = %s, want 1200.50", first.WeeklySales)
	}
	got, ok := first.Date.Time()
	if !ok || !got.Equal(time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Date = %v (valid=%v), want 2023-01-02", got, ok)
	}
	if records[1].Date.String() != "2023-01-09" {
		t.Errorf("unpadded date = %q, want 2023-01-09", records[1].Date.String())
	}
	if first.Temperature != 42.31 || first.FuelPrice != 2.572 || first.Unemployment != 8.106 {
		t.Errorf("measures not passed through: %+v", first)
	}
}

func TestNormalize_UnparseableDateBecomesMissing(t *testing.T) {
	for _, date := range []string{"", "2023-01-02", "13/01/2023", "02/30/2023", "n/a"} {
		records, err := Normalize([]RawRow{rawRow("1", date, "10")})
		if err != nil {
			t.Fatalf("date %q: unexpected error %v", date, err)
		}
		if !records[0].Date.IsMissing() {
			t.Errorf("date %q should be marked missing, got %s", date, records[0].Date)
		}
	}
}

func TestNormalize_MalformedAmountFailsWholeBatch(t *testing.T) {
	records, err := Normalize([]RawRow{
		rawRow("1", "01/02/2023", "100"),
		rawRow("1", "01/09/2023", "12a0"),
		rawRow("1", "01/16/2023", "300"),
	})
	if !errors.Is(err, ErrMalformedAmount) {
		t.Fatalf("error = %v, want ErrMalformedAmount", err)
	}
	if records != nil {
		t.Fatalf("no partial dataset expected, got %d rows", len(records))
	}

	var rowErr *RowError
	if !errors.As(err, &rowErr) {
		t.Fatalf("error %T should be a *RowError", err)
	}
	if rowErr.Row != 2 || rowErr.Column != ColumnWeeklySales || rowErr.Value != "12a0" {
		t.Errorf("RowError = %+v", rowErr)
	}
}

func TestNormalize_TypeChecksOtherColumns(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*RawRow)
		column string
	}{
		{"store", func(r *RawRow) { r.StoreNumber = "A1" }, ColumnStore},
		{"holiday", func(r *RawRow) { r.HolidayFlag = "maybe" }, ColumnHolidayFlag},
		{"temperature", func(r *RawRow) { r.Temperature = "" }, ColumnTemperature},
		{"fuel", func(r *RawRow) { r.FuelPrice = "x" }, ColumnFuelPrice},
		{"unemployment", func(r *RawRow) { r.Unemployment = "8,1" }, ColumnUnemployment},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := rawRow("1", "01/02/2023", "10")
			tt.mutate(&row)
			_, err := Normalize([]RawRow{row})
			if !errors.Is(err, ErrMalformedField) {
				t.Fatalf("error = %v, want ErrMalformedField", err)
			}
			var rowErr *RowError
			if errors.As(err, &rowErr) && rowErr.Column != tt.column {
				t.Errorf("column = %s, want %s", rowErr.Column, tt.column)
			}
		})
	}
}

func TestNormalize_IsIdempotent(t *testing.T) {
	first, err := Normalize([]RawRow{
		rawRow("1", "02/05/2010", "1,643,690.90"),
		rawRow("7", "garbage", "-12.5"),
		{StoreNumber: "3", Date: "12/31/2012", WeeklySales: "0", HolidayFlag: "1",
			Temperature: "-3", FuelPrice: "3.1", Unemployment: "10"},
	})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	second, err := Normalize(Denormalize(first))
	if err != nil {
		t.Fatalf("re-Normalize: %v", err)
	}
	if len(second) != len(first) {
		t.Fatalf("len = %d, want %d", len(second), len(first))
	}
	for i := range first {
		if !first[i].Equal(second[i]) {
			t.Errorf("row %d changed: %+v -> %+v", i, first[i], second[i])
		}
	}
}

func TestDataset_Summary(t *testing.T) {
	records, err := Normalize([]RawRow{
		rawRow("3", "03/05/2010", "1"),
		rawRow("1", "02/05/2010", "1"),
		rawRow("3", "bad", "1"),
		rawRow("2", "10/26/2012", "1"),
	})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	ds := NewDataset("id", "walmart.csv", records, time.Now())

	ids := ds.StoreIDs()
	if len(ids) != 3 || ids[0] != 1 || ids[1] != 2 || ids[2] != 3 {
		t.Errorf("StoreIDs = %v, want [1 2 3]", ids)
	}
	bounds, ok := ds.DateBounds()
	if !ok || bounds.String() != "2010-02-05..2012-10-26" {
		t.Errorf("DateBounds = %s (ok=%v)", bounds, ok)
	}
	if ds.MissingDates() != 1 {
		t.Errorf("MissingDates = %d, want 1", ds.MissingDates())
	}
}

func TestDataset_DateBoundsWithoutDates(t *testing.T) {
	records, _ := Normalize([]RawRow{rawRow("1", "", "1")})
	if _, ok := NewDataset("id", "f.csv", records, time.Now()).DateBounds(); ok {
		t.Error("DateBounds should report no valid dates")
	}
}
