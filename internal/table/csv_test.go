package table_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/riskloom-cli/internal/table"
)

func TestReadCSV_CellsStayTextAndNAIsMissing(t *testing.T) {
	in := "\ufeffStudent ID,Attendance,Fee Paid\n" +
		"S1,3/4,5000\n" +
		"S2,N/A,\n" +
		",,\n" +
		"S3,90%\n"
	tb, err := table.ReadCSV(strings.NewReader(in), "att.csv", ',')
	require.NoError(t, err)

	assert.Equal(t, "att.csv", tb.Name)
	assert.Equal(t, []string{"Student ID", "Attendance", "Fee Paid"}, tb.Headers())
	require.Equal(t, 3, tb.Len())
	assert.Equal(t, []any{"S1", "S2", "S3"}, tb.Columns[0].Cells)
	assert.Equal(t, []any{"3/4", nil, "90%"}, tb.Columns[1].Cells)
	assert.Equal(t, []any{"5000", nil, nil}, tb.Columns[2].Cells)
}

func TestReadCSV_StructuralFailures(t *testing.T) {
	cases := map[string]string{
		"empty file":   "",
		"blank header": " , \nS1,2\n",
		"header only":  "id,attendance\n",
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := table.ReadCSV(strings.NewReader(in), "bad.csv", ',')
			require.Error(t, err)
			assert.True(t, errors.Is(err, table.ErrIngestion))
		})
	}
}

func TestReadCSVFile_SniffsDelimiter(t *testing.T) {
	dir := t.TempDir()
	semi := filepath.Join(dir, "marks.csv")
	require.NoError(t, os.WriteFile(semi, []byte("roll;marks;total\n1;40;50\n2;35;50\n"), 0o644))
	tsv := filepath.Join(dir, "fees.tsv")
	require.NoError(t, os.WriteFile(tsv, []byte("id\tpaid\n1\t1,200\n"), 0o644))

	tb, err := table.ReadCSVFile(semi, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"roll", "marks", "total"}, tb.Headers())
	assert.Equal(t, []any{"40", "35"}, tb.Columns[1].Cells)

	tb, err = table.ReadCSVFile(tsv, 0)
	require.NoError(t, err)
	assert.Equal(t, []any{"1,200"}, tb.Columns[1].Cells)
}

func TestReadCSVFile_MissingFile(t *testing.T) {
	_, err := table.ReadCSVFile(filepath.Join(t.TempDir(), "nope.csv"), 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, table.ErrIngestion))
}
