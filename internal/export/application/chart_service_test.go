package application

import (
	"bytes"
	"context"
	"errors"
	"testing"

	analyticsapp "salesdash/internal/analytics/application"
	salesdomain "salesdash/internal/sales/domain"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func TestChartService_RenderEachChart(t *testing.T) {
	svc := NewChartService(setupDashboard(t), 640, 320)

	for _, name := range ChartNames() {
		t.Run(name, func(t *testing.T) {
			img, err := svc.Render(context.Background(), name, analyticsapp.StatsRequest{})
			if err != nil {
				t.Fatalf("Render: %v", err)
			}
			if !bytes.HasPrefix(img, pngMagic) {
				t.Fatalf("not a PNG (%d bytes)", len(img))
			}
		})
	}
}

func TestChartService_SinglePointStillRenders(t *testing.T) {
	svc := NewChartService(setupDashboard(t), 640, 320)
	req := analyticsapp.StatsRequest{Stores: []salesdomain.StoreID{3}}

	images, err := svc.RenderAll(context.Background(), req)
	if err != nil {
		t.Fatalf("RenderAll: %v", err)
	}
	if len(images) != len(ChartNames()) {
		t.Errorf("rendered %d charts, want %d", len(images), len(ChartNames()))
	}
}

func TestChartService_EmptySelection(t *testing.T) {
	svc := NewChartService(setupDashboard(t), 640, 320)
	req := analyticsapp.StatsRequest{Stores: []salesdomain.StoreID{404}}

	if _, err := svc.Render(context.Background(), ChartSalesByStore, req); !errors.Is(err, ErrNotEnoughData) {
		t.Errorf("error = %v, want ErrNotEnoughData", err)
	}
	images, err := svc.RenderAll(context.Background(), req)
	if err != nil || len(images) != 0 {
		t.Errorf("RenderAll = %d images, %v; want none, nil", len(images), err)
	}
}

func TestChartService_UnknownChart(t *testing.T) {
	svc := NewChartService(setupDashboard(t), 0, 0)
	if _, err := svc.Render(context.Background(), "pie", analyticsapp.StatsRequest{}); !errors.Is(err, ErrUnknownChart) {
		t.Errorf("error = %v, want ErrUnknownChart", err)
	}
}
