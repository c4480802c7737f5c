package domain

import (
	"errors"
	"testing"
	"time"

	analyticsdomain "salesdash/internal/analytics/domain"
	salesdomain "salesdash/internal/sales/domain"
	shareddomain "salesdash/internal/shared/domain"
)

func sampleRecords(t testing.TB) []salesdomain.SalesRecord {
	t.Helper()
	records, err := salesdomain.Normalize([]salesdomain.RawRow{
		{StoreNumber: "1", Date: "02/05/2010", WeeklySales: "1,643,690.90", HolidayFlag: "0", Temperature: "42.31", FuelPrice: "2.572", Unemployment: "8.106"},
		{StoreNumber: "2", Date: "02/12/2010", WeeklySales: "2,136,989.46", HolidayFlag: "1", Temperature: "40.19", FuelPrice: "2.548", Unemployment: "8.324"},
		{StoreNumber: "2", Date: "", WeeklySales: "10.00", HolidayFlag: "0", Temperature: "40", FuelPrice: "2.5", Unemployment: "8"},
	})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	return records
}

func TestNewExportJob_Combinations(t *testing.T) {
	dr, _ := shareddomain.NewDateRange(
		time.Date(2010, 2, 5, 0, 0, 0, 0, time.UTC),
		time.Date(2010, 12, 31, 0, 0, 0, 0, time.UTC),
	)

	tests := []struct {
		format   ExportFormat
		typ      ExportType
		filename string
		wantErr  bool
	}{
		{ExportFormatCSV, ExportTypeSales, "ventes_20100205_20101231.csv", false},
		{ExportFormatCSV, ExportTypeStats, "stats_20100205_20101231.csv", false},
		{ExportFormatXLSX, ExportTypeWorkbook, "dashboard_20100205_20101231.xlsx", false},
		{ExportFormatParquet, ExportTypeSales, "ventes_20100205_20101231.parquet", false},
		{ExportFormatParquet, ExportTypeStats, "", true},
		{"JSON", ExportTypeSales, "", true},
	}
	for _, tt := range tests {
		job, err := NewExportJob(tt.format, tt.typ, dr)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidExport) {
				t.Errorf("%s/%s: error = %v, want ErrInvalidExport", tt.format, tt.typ, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("%s/%s: %v", tt.format, tt.typ, err)
			continue
		}
		if job.Filename() != tt.filename {
			t.Errorf("filename = %s, want %s", job.Filename(), tt.filename)
		}
	}
}

func TestSaleExportRow_MissingDateIsNullInParquet(t *testing.T) {
	records := sampleRecords(t)

	dated := NewSaleExportRow(records[0]).ToParquet()
	if dated.SaleDate == nil || *dated.SaleDate != "2010-02-05" || dated.WeeklySales != 1643690.90 {
		t.Errorf("dated row = %+v", dated)
	}

	missing := NewSaleExportRow(records[2]).ToParquet()
	if missing.SaleDate != nil {
		t.Errorf("missing date exported as %q", *missing.SaleDate)
	}
	if h := NewSaleExportRow(records[1]).ToParquet().HolidayFlag; h != 1 {
		t.Errorf("holiday flag = %d", h)
	}
}

func TestBuildStatLines(t *testing.T) {
	result := analyticsdomain.Aggregate(sampleRecords(t))
	lines := BuildStatLines(result)

	want := []StatLine{
		{"Global", "Rows", "3"},
		{"Global", "Total Weekly Sales", "3780690.36"},
		{"Global", "Mean Weekly Sales", "1260230.12"},
		{"Global", "Best Store", "2"},
		{"Store", "1", "1643690.90"},
		{"Store", "2", "2136999.46"},
		{"Month", "2010-02", "3780680.36"},
	}
	if len(lines) != len(want) {
		t.Fatalf("lines = %+v", lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %+v, want %+v", i, lines[i], want[i])
		}
	}
}

func TestBuildStatLines_EmptyHasNoBestStore(t *testing.T) {
	lines := BuildStatLines(analyticsdomain.Aggregate(nil))
	if len(lines) != 3 {
		t.Fatalf("lines = %+v", lines)
	}
}

// ========================================
// Benchmarks: conversion des lignes
// ========================================

// BenchmarkSaleExportRow_ToParquet mesure la conversion d'une ligne
func BenchmarkSaleExportRow_ToParquet(b *testing.B) {
	row := NewSaleExportRow(sampleRecords(b)[0])

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		_ = row.ToParquet()
	}
}

// BenchmarkSaleExportRow_ToCells mesure la conversion en cellules de classeur
func BenchmarkSaleExportRow_ToCells(b *testing.B) {
	row := NewSaleExportRow(sampleRecords(b)[0])

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		_ = row.ToCells()
	}
}
