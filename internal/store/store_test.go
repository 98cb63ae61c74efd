package store

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/riskloom-cli/internal/pipeline"
	"github.com/KaramelBytes/riskloom-cli/internal/risk"
)

func TestSanitizeSchema(t *testing.T) {
	got, err := SanitizeSchema("  riskloom_2024 ")
	require.NoError(t, err)
	assert.Equal(t, "riskloom_2024", got)

	for _, bad := range []string{"", "   ", "1abc", "risk-loom", "public; drop table x", `"quoted"`} {
		_, err := SanitizeSchema(bad)
		assert.Error(t, err, "%q", bad)
	}
}

func TestSchemaStatements(t *testing.T) {
	stmts := schemaStatements("audit")
	require.Len(t, stmts, 3)
	assert.Equal(t, "CREATE SCHEMA IF NOT EXISTS audit", stmts[0])
	assert.Contains(t, stmts[1], "audit.riskloom_runs")
	assert.Contains(t, stmts[2], "audit.riskloom_students")
	assert.Contains(t, stmts[2], "REFERENCES audit.riskloom_runs(id)")
}

func TestStudentArgs(t *testing.T) {
	runID := uuid.New()
	att := 81.5
	args := studentArgs(runID, risk.StudentRecord{
		StudentID:            "S1",
		AttendancePercentage: &att,
		FeeRemaining:         2500,
		AttendanceRisk:       risk.Green,
		MarksRisk:            risk.Red,
		FeeRisk:              risk.Orange,
		DropoutProbability:   0.3,
	})
	require.Len(t, args, 10)
	assert.NotEqual(t, runID, args[0])
	assert.Equal(t, runID, args[1])
	assert.Equal(t, "S1", args[2])
	assert.Equal(t, sql.NullFloat64{Float64: 81.5, Valid: true}, args[3])
	assert.Equal(t, sql.NullFloat64{}, args[4])
	assert.Equal(t, 2500.0, args[5])
	assert.Equal(t, "Green", args[6])
	assert.Equal(t, "Red", args[7])
	assert.Equal(t, "Orange", args[8])
	assert.Equal(t, 0.3, args[9])
}

func TestNullString(t *testing.T) {
	assert.False(t, nullString("  ").Valid)
	assert.Equal(t, sql.NullString{String: "nightly", Valid: true}, nullString("nightly"))
}

func TestSaveRun_ValidatesBeforeConnecting(t *testing.T) {
	res := &pipeline.Result{RunID: uuid.New()}

	err := SaveRun(context.Background(), Config{URL: "postgres://localhost/x", Schema: "bad-name"}, res)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid schema name")

	err = SaveRun(context.Background(), Config{Schema: DefaultSchema}, res)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "database URL missing"))
}
