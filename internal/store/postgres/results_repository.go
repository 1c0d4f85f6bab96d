// Package postgres stores the results of processing runs in PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	apperrors "github.com/w-flo/eu-emission-factors/internal/errors"
	"github.com/w-flo/eu-emission-factors/internal/matching"
	"github.com/w-flo/eu-emission-factors/pkg/contracts/domain"
)

//go:embed schema.sql
var schema string

// Run identifies one processing run
type Run struct {
	ID              string
	Year            int
	CreatedAt       time.Time
	StaleDegreeDays bool
}

// Open connects to dsn through the pgx database/sql driver and verifies the connection
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, apperrors.NewStorageError("open database", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, apperrors.NewStorageError("connect to database", err)
	}
	return db, nil
}

// ResultRepository persists power plant and country results.
type ResultRepository struct {
	db *sql.DB
}

// NewResultRepository constructs a repository.
func NewResultRepository(db *sql.DB) *ResultRepository {
	return &ResultRepository{db: db}
}

// EnsureSchema creates the result tables if they do not exist.
func (r *ResultRepository) EnsureSchema(ctx context.Context) error {
	if r == nil || r.db == nil {
		return errors.New("result repo: nil db")
	}
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return apperrors.NewStorageError("create result tables", err)
	}
	return nil
}

// SaveRun inserts a run with all of its matches and fuel statistics in one transaction.
func (r *ResultRepository) SaveRun(ctx context.Context, run Run, matches []*matching.Match, stats []domain.FuelStat) error {
	if r == nil || r.db == nil {
		return errors.New("result repo: nil db")
	}
	if run.ID == "" {
		return apperrors.NewValidationError("run id is required", nil)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.NewStorageError("begin transaction", err)
	}

	if err := insertRun(ctx, tx, run, matches, stats); err != nil {
		_ = tx.Rollback()
		return apperrors.NewStorageError("save run", err).WithContext("run_id", run.ID)
	}

	if err := tx.Commit(); err != nil {
		return apperrors.NewStorageError("commit run", err).WithContext("run_id", run.ID)
	}
	return nil
}

func insertRun(ctx context.Context, tx *sql.Tx, run Run, matches []*matching.Match, stats []domain.FuelStat) error {
	_, err := tx.ExecContext(ctx, `
INSERT INTO emission_factor_runs (id, year, created_at, stale_degree_days)
VALUES ($1,$2,$3,$4)`,
		run.ID, run.Year, run.CreatedAt, run.StaleDegreeDays)
	if err != nil {
		return err
	}

	plantStmt, err := tx.PrepareContext(ctx, `
INSERT INTO emission_factor_plants (
	run_id, ordinal, country, name, generation, emission, fuel, sigma,
	generation_el, generation_heat, emissions_heat, emissions_el, emission_factor, ignore_reason
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`)
	if err != nil {
		return err
	}
	defer plantStmt.Close()

	for i, m := range matches {
		args := append([]any{run.ID, i}, plantValues(m)...)
		if _, err := plantStmt.ExecContext(ctx, args...); err != nil {
			return err
		}
	}

	countryStmt, err := tx.PrepareContext(ctx, `
INSERT INTO emission_factor_countries (
	run_id, country, fuel, total_generation, matched_generation, coverage_percentage,
	emissions_el, emissions_heat, emission_factor
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`)
	if err != nil {
		return err
	}
	defer countryStmt.Close()

	for _, s := range stats {
		args := append([]any{run.ID}, fuelStatValues(s)...)
		if _, err := countryStmt.ExecContext(ctx, args...); err != nil {
			return err
		}
	}

	return nil
}

// plantValues maps a match to the emission_factor_plants columns after run_id and ordinal.
// Results that were never computed are stored as NULL.
func plantValues(m *matching.Match) []any {
	var heat, emHeat, emEl, factor sql.NullFloat64
	if m.IsComputed() {
		heat = sql.NullFloat64{Float64: m.GenerationHeat, Valid: true}
		emHeat = sql.NullFloat64{Float64: m.EmissionsHeat, Valid: true}
		emEl = sql.NullFloat64{Float64: m.EmissionsEl, Valid: true}
		factor = sql.NullFloat64{Float64: m.EmissionFactor, Valid: true}
	}

	var reason sql.NullString
	if m.IsIgnored() {
		reason = sql.NullString{String: m.IgnoreReason(), Valid: true}
	}

	return []any{
		m.Country,
		m.Name,
		strings.Join(m.GenerationNames(), "|"),
		strings.Join(m.EmissionNames(), "|"),
		string(m.Fuel),
		m.Sigma,
		m.GenerationEl,
		heat,
		emHeat,
		emEl,
		factor,
		reason,
	}
}

// fuelStatValues maps a fuel statistic to the emission_factor_countries columns after run_id
func fuelStatValues(s domain.FuelStat) []any {
	var factor sql.NullFloat64
	if s.EmissionFactor != nil {
		factor = sql.NullFloat64{Float64: *s.EmissionFactor, Valid: true}
	}
	return []any{
		s.Country,
		string(s.Fuel),
		s.TotalGeneration,
		s.MatchedGeneration,
		s.CoveragePercentage,
		s.EmissionsEl,
		s.EmissionsHeat,
		factor,
	}
}

// CountRuns returns the number of stored runs for year.
func (r *ResultRepository) CountRuns(ctx context.Context, year int) (int, error) {
	if r == nil || r.db == nil {
		return 0, errors.New("result repo: nil db")
	}
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM emission_factor_runs WHERE year = $1`, year).Scan(&n)
	if err != nil {
		return 0, apperrors.NewStorageError("count runs", err)
	}
	return n, nil
}

// PlantFactors returns the emission factors of the active plants of a run keyed by "country/name".
func (r *ResultRepository) PlantFactors(ctx context.Context, runID string) (map[string]float64, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("result repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT country, name, emission_factor
FROM emission_factor_plants
WHERE run_id = $1 AND ignore_reason IS NULL AND emission_factor IS NOT NULL
ORDER BY ordinal`, runID)
	if err != nil {
		return nil, apperrors.NewStorageError("query plant factors", err)
	}
	defer rows.Close()

	result := make(map[string]float64)
	for rows.Next() {
		var country, name string
		var factor float64
		if err := rows.Scan(&country, &name, &factor); err != nil {
			return nil, apperrors.NewStorageError("scan plant factor", err)
		}
		result[country+"/"+name] = factor
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStorageError("iterate plant factors", err)
	}
	return result, nil
}
