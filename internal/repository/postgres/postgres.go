package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/diabetesguard/backend/internal/domain"
)

const schema = `
	CREATE TABLE IF NOT EXISTS prediction_logs (
		id              UUID PRIMARY KEY,
		age             DOUBLE PRECISION NOT NULL,
		gender          TEXT NOT NULL,
		bmi             DOUBLE PRECISION NOT NULL,
		blood_pressure  DOUBLE PRECISION NOT NULL,
		glucose_level   DOUBLE PRECISION NOT NULL,
		exercise_hours  DOUBLE PRECISION NOT NULL,
		smoking_status  TEXT NOT NULL,
		alcohol         DOUBLE PRECISION NOT NULL,
		stress_level    TEXT NOT NULL,
		probability     DOUBLE PRECISION NOT NULL,
		prediction      BOOLEAN NOT NULL,
		risk_level      TEXT NOT NULL,
		model_name      TEXT NOT NULL,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS prediction_logs_created_at_idx ON prediction_logs (created_at DESC);
`

// PostgresRepository implements domain.PredictionRepository
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// EnsureSchema creates the prediction_logs table if it does not exist
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("postgres: failed to create schema: %w", err)
	}
	return nil
}

// SavePredictionLog persists a prediction and its input profile
func (r *PostgresRepository) SavePredictionLog(ctx context.Context, entry domain.PredictionLog) error {
	query := `
		INSERT INTO prediction_logs (
			id, age, gender, bmi, blood_pressure, glucose_level, exercise_hours,
			smoking_status, alcohol, stress_level,
			probability, prediction, risk_level, model_name, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	p := entry.Profile
	_, err := r.pool.Exec(ctx, query,
		entry.ID, p.Age, string(p.Gender), p.BMI, p.BloodPressure, p.GlucoseLevel, p.ExerciseHoursPerWeek,
		string(p.SmokingStatus), p.AlcoholPerWeek, string(p.StressLevel),
		entry.Result.Probability, entry.Result.Diabetic, string(entry.Result.RiskLevel), entry.ModelName, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: failed to save prediction log: %w", err)
	}

	return nil
}

// RecentPredictions retrieves the newest prediction logs
func (r *PostgresRepository) RecentPredictions(ctx context.Context, limit int) ([]domain.PredictionLog, error) {
	query := `
		SELECT id, age, gender, bmi, blood_pressure, glucose_level, exercise_hours,
			   smoking_status, alcohol, stress_level,
			   probability, prediction, risk_level, model_name, created_at
		FROM prediction_logs
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query prediction logs: %w", err)
	}
	defer rows.Close()

	var results []domain.PredictionLog
	for rows.Next() {
		var (
			e                     domain.PredictionLog
			gender, smoke, stress string
			risk                  string
		)
		err := rows.Scan(
			&e.ID, &e.Profile.Age, &gender, &e.Profile.BMI, &e.Profile.BloodPressure,
			&e.Profile.GlucoseLevel, &e.Profile.ExerciseHoursPerWeek,
			&smoke, &e.Profile.AlcoholPerWeek, &stress,
			&e.Result.Probability, &e.Result.Diabetic, &risk, &e.ModelName, &e.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("postgres: failed to scan prediction log row: %w", err)
		}
		e.Profile.Gender = domain.Gender(gender)
		e.Profile.SmokingStatus = domain.SmokingStatus(smoke)
		e.Profile.StressLevel = domain.StressLevel(stress)
		e.Result.RiskLevel = domain.RiskLevel(risk)
		results = append(results, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: failed to read prediction logs: %w", err)
	}

	return results, nil
}

// Health checks database connectivity
func (r *PostgresRepository) Health(ctx context.Context) error {
	if err := r.pool.Ping(ctx); err != nil {
		return fmt.Errorf("postgres: health check failed: %w", err)
	}
	return nil
}
