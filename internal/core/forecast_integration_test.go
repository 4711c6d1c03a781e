package core_test

import (
	"context"
	"fmt"
	"testing"

	"bizsense/internal/core"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// stubPredictor records the sequence it was called with.
type stubPredictor struct {
	sequence [][]float64
	result   float64
}

func (p *stubPredictor) PredictNetCashFlow(ctx context.Context, sequence [][]float64) (float64, error) {
	p.sequence = sequence
	return p.result, nil
}

func seedCashFlowHistory(t *testing.T, pool *pgxpool.Pool, days int) {
	t.Helper()
	ctx := context.Background()
	for i := 1; i <= days; i++ {
		day := fmt.Sprintf("2026-07-%02d", i)
		_, err := pool.Exec(ctx, `
			INSERT INTO transactions (id, business_id, kind, amount, occurred_on)
			VALUES ($1, 'biz-a', 'SALE', $2, $3), ($4, 'biz-a', 'EXPENSE', $5, $3)
		`, uuid.NewString(), 1000+i*10, day, uuid.NewString(), 400+i*5)
		if err != nil {
			t.Fatalf("Failed to seed transactions for %s: %v", day, err)
		}
	}
}

func TestForecastService_DailySeries(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svc := core.NewForecastService(pool, &stubPredictor{}, nil)
	seedCashFlowHistory(t, pool, 3)

	series, err := svc.DailySeries(context.Background(), "biz-a")
	if err != nil {
		t.Fatalf("DailySeries failed: %v", err)
	}
	if len(series) != 3 {
		t.Fatalf("series has %d days, want 3", len(series))
	}
	if series[0].Date != "2026-07-01" {
		t.Errorf("series starts at %s, want oldest day first", series[0].Date)
	}
	if series[0].CashIn != 1010 || series[0].CashOut != 405 {
		t.Errorf("day 1 = in %.0f / out %.0f, want 1010 / 405", series[0].CashIn, series[0].CashOut)
	}
}

func TestForecastService_RunForecast(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	predictor := &stubPredictor{result: 4321.5}
	svc := core.NewForecastService(pool, predictor, nil)

	// 13 days of history yields exactly 7 feature rows.
	seedCashFlowHistory(t, pool, 13)

	result, err := svc.RunForecast(context.Background(), "biz-a")
	if err != nil {
		t.Fatalf("RunForecast failed: %v", err)
	}

	if result.Prediction != 4321.5 {
		t.Errorf("prediction = %v, want 4321.5", result.Prediction)
	}
	if result.Confidence != 0.8 {
		t.Errorf("confidence = %v, want 0.8", result.Confidence)
	}
	if len(predictor.sequence) != 7 {
		t.Fatalf("model received %d feature rows, want 7", len(predictor.sequence))
	}
	for i, row := range predictor.sequence {
		if len(row) != 6 {
			t.Errorf("feature row %d has %d features, want 6", i, len(row))
		}
	}

	// The prediction and its model row are persisted.
	if n := countRows(t, pool, "ai_predictions"); n != 1 {
		t.Errorf("ai_predictions has %d rows, want 1", n)
	}
	if n := countRows(t, pool, "ai_models"); n != 1 {
		t.Errorf("ai_models has %d rows, want 1", n)
	}

	// A second run reuses the model singleton.
	if _, err := svc.RunForecast(context.Background(), "biz-a"); err != nil {
		t.Fatalf("Second RunForecast failed: %v", err)
	}
	if n := countRows(t, pool, "ai_models"); n != 1 {
		t.Errorf("ai_models has %d rows after second run, want 1", n)
	}
}

func TestForecastService_InsufficientHistory(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svc := core.NewForecastService(pool, &stubPredictor{}, nil)
	seedCashFlowHistory(t, pool, 5)

	_, err := svc.RunForecast(context.Background(), "biz-a")
	if err == nil {
		t.Fatal("expected forecast on thin history to fail")
	}
	if !core.IsValidation(err) {
		t.Errorf("expected ValidationError, got %T: %v", err, err)
	}
}
