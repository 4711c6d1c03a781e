package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// sequenceWindow is how many trailing feature rows are sent to the model
// server, and how many lagged days each row needs behind it.
const sequenceWindow = 7

// DailyCashFlow is one day of aggregated cash movement: SALE postings in,
// EXPENSE postings out.
type DailyCashFlow struct {
	Date    string  `json:"date"`
	CashIn  float64 `json:"cash_in"`
	CashOut float64 `json:"cash_out"`
}

// ForecastResult is the stored outcome of one forecast run.
type ForecastResult struct {
	PredictionID string  `json:"prediction_id"`
	Prediction   float64 `json:"prediction"`
	Confidence   float64 `json:"confidence"`
	GeneratedAt  string  `json:"generated_at"`
}

// Predictor calls an external model server with a feature sequence and
// returns the predicted net cash flow. The model itself is out of scope.
type Predictor interface {
	PredictNetCashFlow(ctx context.Context, sequence [][]float64) (float64, error)
}

// ForecastCache holds the latest forecast per business so dashboards do not
// re-run the model on every load. A nil cache disables caching.
type ForecastCache interface {
	GetForecast(ctx context.Context, businessID string) (*ForecastResult, bool)
	SetForecast(ctx context.Context, businessID string, result *ForecastResult)
}

// ForecastService builds cash-flow feature sequences from posted
// transactions and records predictions from the external model server.
type ForecastService interface {
	DailySeries(ctx context.Context, businessID string) ([]DailyCashFlow, error)
	RunForecast(ctx context.Context, businessID string) (*ForecastResult, error)
}

type forecastService struct {
	pool      *pgxpool.Pool
	predictor Predictor
	cache     ForecastCache
}

func NewForecastService(pool *pgxpool.Pool, predictor Predictor, cache ForecastCache) ForecastService {
	return &forecastService{pool: pool, predictor: predictor, cache: cache}
}

// DailySeries aggregates SALE inflows and EXPENSE outflows per day, oldest
// first. Days with no postings are absent rather than zero-filled, matching
// how the feature pipeline was trained.
func (s *forecastService) DailySeries(ctx context.Context, businessID string) ([]DailyCashFlow, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT to_char(occurred_on, 'YYYY-MM-DD') AS day,
		       COALESCE(SUM(amount) FILTER (WHERE kind = 'SALE'), 0)    AS cash_in,
		       COALESCE(SUM(ABS(amount)) FILTER (WHERE kind = 'EXPENSE'), 0) AS cash_out
		FROM transactions
		WHERE business_id = $1 AND kind IN ('SALE', 'EXPENSE')
		GROUP BY occurred_on
		ORDER BY occurred_on
	`, businessID)
	if err != nil {
		return nil, fmt.Errorf("failed to query cash flow series: %w", err)
	}
	defer rows.Close()

	var series []DailyCashFlow
	for rows.Next() {
		var d DailyCashFlow
		if err := rows.Scan(&d.Date, &d.CashIn, &d.CashOut); err != nil {
			return nil, fmt.Errorf("failed to scan cash flow day: %w", err)
		}
		series = append(series, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cash flow series: %w", err)
	}
	return series, nil
}

// BuildSequence turns a daily series into model feature rows:
// [cashIn, cashOut, cashInLag1, cashOutLag1, rollingIn7d, rollingOut7d].
// The first sequenceWindow-1 days only feed the rolling windows.
func BuildSequence(series []DailyCashFlow) [][]float64 {
	var sequences [][]float64
	for i := sequenceWindow - 1; i < len(series); i++ {
		var rollIn, rollOut float64
		for j := i - (sequenceWindow - 1); j <= i; j++ {
			rollIn += series[j].CashIn
			rollOut += series[j].CashOut
		}
		sequences = append(sequences, []float64{
			series[i].CashIn,
			series[i].CashOut,
			series[i-1].CashIn,
			series[i-1].CashOut,
			rollIn,
			rollOut,
		})
	}
	return sequences
}

func (s *forecastService) RunForecast(ctx context.Context, businessID string) (*ForecastResult, error) {
	series, err := s.DailySeries(ctx, businessID)
	if err != nil {
		return nil, err
	}

	sequence := BuildSequence(series)
	if len(sequence) < sequenceWindow {
		return nil, &ValidationError{Reason: "insufficient transaction history for a forecast"}
	}
	sequence = sequence[len(sequence)-sequenceWindow:]

	prediction, err := s.predictor.PredictNetCashFlow(ctx, sequence)
	if err != nil {
		return nil, fmt.Errorf("prediction failed: %w", err)
	}

	inputJSON, err := json.Marshal(sequence)
	if err != nil {
		return nil, fmt.Errorf("failed to encode sequence: %w", err)
	}
	resultJSON, err := json.Marshal(prediction)
	if err != nil {
		return nil, fmt.Errorf("failed to encode prediction: %w", err)
	}

	result := &ForecastResult{
		PredictionID: uuid.NewString(),
		Prediction:   prediction,
		Confidence:   0.8,
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	modelID, err := s.ensureModel(ctx, tx, businessID)
	if err != nil {
		return nil, err
	}

	var createdAt time.Time
	err = tx.QueryRow(ctx, `
		INSERT INTO ai_predictions (id, business_id, model_id, prediction_type, input_data, prediction_result, confidence_score, created_at)
		VALUES ($1, $2, $3, 'CASH_FLOW_FORECAST', $4, $5, $6, NOW())
		RETURNING created_at
	`, result.PredictionID, businessID, modelID, string(inputJSON), string(resultJSON), result.Confidence).Scan(&createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert prediction: %w", err)
	}
	result.GeneratedAt = createdAt.UTC().Format(time.RFC3339)

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit prediction: %w", err)
	}

	if s.cache != nil {
		s.cache.SetForecast(ctx, businessID, result)
	}
	return result, nil
}

// ensureModel returns the business's forecasting model row, creating the
// singleton on first use.
func (s *forecastService) ensureModel(ctx context.Context, tx pgx.Tx, businessID string) (string, error) {
	modelID := "cf-forecast-" + businessID

	var id string
	err := tx.QueryRow(ctx,
		"SELECT id FROM ai_models WHERE id = $1 AND business_id = $2",
		modelID, businessID,
	).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("failed to fetch forecast model: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO ai_models (id, business_id, model_name, version, model_type, model_status, last_trained, training_data_size, deployment_status)
		VALUES ($1, $2, 'Cash Flow Forecast Model', '1.0', 'Forecasting', 'Active', NOW(), 365, 'PRODUCTION')
	`, modelID, businessID)
	if err != nil {
		return "", fmt.Errorf("failed to create forecast model: %w", err)
	}
	return modelID, nil
}
