// Package store persists scored runs to Postgres.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/KaramelBytes/riskloom-cli/internal/pipeline"
	"github.com/KaramelBytes/riskloom-cli/internal/risk"
)

// DefaultSchema holds the run tables when none is configured.
const DefaultSchema = "riskloom"

// Config locates the target database.
type Config struct {
	URL    string
	Schema string
	Tag    string
}

var schemaName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// SanitizeSchema validates a schema identifier before it is interpolated into SQL.
func SanitizeSchema(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", errors.New("db schema is required")
	}
	if !schemaName.MatchString(value) {
		return "", fmt.Errorf("invalid schema name: %s", value)
	}
	return value, nil
}

// SaveRun opens the database, ensures the schema exists and writes the run
// with all of its student rows in one transaction.
func SaveRun(ctx context.Context, cfg Config, res *pipeline.Result) error {
	schema, err := SanitizeSchema(cfg.Schema)
	if err != nil {
		return err
	}
	if strings.TrimSpace(cfg.URL) == "" {
		return errors.New("database URL missing; set db_url or RISKLOOM_DB_URL")
	}
	db, err := sql.Open("pgx", cfg.URL)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(ctx, 12*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping db: %w", err)
	}
	if err := EnsureSchema(ctx, db, schema); err != nil {
		return err
	}
	return InsertRun(ctx, db, schema, cfg.Tag, res)
}

// EnsureSchema creates the run tables if they do not exist.
func EnsureSchema(ctx context.Context, db *sql.DB, schema string) error {
	for _, stmt := range schemaStatements(schema) {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

func schemaStatements(schema string) []string {
	return []string{
		fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS %s`, schema),
		fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s.riskloom_runs (
			id uuid PRIMARY KEY,
			students integer NOT NULL,
			warnings integer NOT NULL,
			run_tag text,
			created_at timestamptz NOT NULL DEFAULT now()
		)`, schema),
		fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s.riskloom_students (
			id uuid PRIMARY KEY,
			run_id uuid NOT NULL REFERENCES %s.riskloom_runs(id) ON DELETE CASCADE,
			student_id text NOT NULL,
			attendance_percentage numeric(6,2),
			marks_percentage numeric(6,2),
			fee_remaining numeric(14,2) NOT NULL,
			attendance_risk text NOT NULL,
			marks_risk text NOT NULL,
			fee_risk text NOT NULL,
			dropout_probability double precision NOT NULL
		)`, schema, schema),
	}
}

// InsertRun writes res inside a transaction.
func InsertRun(ctx context.Context, db *sql.DB, schema, tag string, res *pipeline.Result) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, fmt.Sprintf(`
		INSERT INTO %s.riskloom_runs (id, students, warnings, run_tag)
		VALUES ($1,$2,$3,$4)`, schema),
		res.RunID, len(res.Records), len(res.Warnings), nullString(tag))
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	insertStudent := fmt.Sprintf(`
		INSERT INTO %s.riskloom_students (
			id, run_id, student_id, attendance_percentage, marks_percentage,
			fee_remaining, attendance_risk, marks_risk, fee_risk, dropout_probability
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`, schema)
	for _, r := range res.Records {
		_, err = tx.ExecContext(ctx, insertStudent, studentArgs(res.RunID, r)...)
		if err != nil {
			return fmt.Errorf("insert student %s: %w", r.StudentID, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func studentArgs(runID uuid.UUID, r risk.StudentRecord) []any {
	return []any{
		uuid.New(),
		runID,
		r.StudentID,
		nullFloat(r.AttendancePercentage),
		nullFloat(r.MarksPercentage),
		r.FeeRemaining,
		string(r.AttendanceRisk),
		string(r.MarksRisk),
		string(r.FeeRisk),
		r.DropoutProbability,
	}
}

func nullString(value string) sql.NullString {
	if strings.TrimSpace(value) == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: value, Valid: true}
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
