package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"dcf_valuation/pkg/models"
)

// RunRepo stores completed valuation runs.
type RunRepo struct{}

// NewRunRepo creates a repository instance.
func NewRunRepo() *RunRepo {
	return &RunRepo{}
}

// Save persists a run, upserting on run ID. The full result and the
// assumptions land in a JSONB blob; the headline values get their own
// columns for querying.
//
// Schema assumption:
//
//	CREATE TABLE IF NOT EXISTS valuation_runs (
//	    run_id UUID PRIMARY KEY,
//	    case_name TEXT,
//	    enterprise_value DOUBLE PRECISION,
//	    equity_value DOUBLE PRECISION,
//	    audit_failures INT,
//	    run_json JSONB,
//	    created_at TIMESTAMPTZ
//	);
func (r *RunRepo) Save(ctx context.Context, runID, caseName string, a *models.Assumptions, result *models.ValuationResult) error {
	pool := GetPool()
	if pool == nil {
		return fmt.Errorf("database pool not initialized")
	}

	data := struct {
		Assumptions *models.Assumptions     `json:"assumptions"`
		Result      *models.ValuationResult `json:"result"`
	}{a, result}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal run: %w", err)
	}

	query := `
		INSERT INTO valuation_runs (run_id, case_name, enterprise_value, equity_value, audit_failures, run_json, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (run_id)
		DO UPDATE SET
			case_name = EXCLUDED.case_name,
			enterprise_value = EXCLUDED.enterprise_value,
			equity_value = EXCLUDED.equity_value,
			audit_failures = EXCLUDED.audit_failures,
			run_json = EXCLUDED.run_json,
			created_at = EXCLUDED.created_at;
	`

	_, err = pool.Exec(ctx, query,
		runID, caseName,
		result.Bridge.EnterpriseValue, result.Bridge.EquityValue,
		len(result.AuditFailures()), jsonData, time.Now())
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	return nil
}

// Load retrieves a run by ID.
func (r *RunRepo) Load(ctx context.Context, runID string) (*models.Assumptions, *models.ValuationResult, error) {
	pool := GetPool()
	if pool == nil {
		return nil, nil, fmt.Errorf("database pool not initialized")
	}

	query := `SELECT run_json FROM valuation_runs WHERE run_id = $1`

	var jsonData []byte
	err := pool.QueryRow(ctx, query, runID).Scan(&jsonData)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil, fmt.Errorf("no run found for id %s", runID)
		}
		return nil, nil, fmt.Errorf("failed to load run: %w", err)
	}

	var data struct {
		Assumptions *models.Assumptions     `json:"assumptions"`
		Result      *models.ValuationResult `json:"result"`
	}
	if err := json.Unmarshal(jsonData, &data); err != nil {
		return nil, nil, fmt.Errorf("failed to unmarshal run: %w", err)
	}
	return data.Assumptions, data.Result, nil
}
