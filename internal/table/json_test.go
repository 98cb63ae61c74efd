package table_test

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/riskloom-cli/internal/table"
)

func TestReadJSON_KeyOrderAndCells(t *testing.T) {
	in := `[
		{"Roll No": "R1", "Marks": 42, "Total": 50, "Cleared": true},
		{"Roll No": "R2", "Marks": "N/A", "Remark": "late"},
		{"Total": 50, "Roll No": "R3", "Marks": null}
	]`
	tb, err := table.ReadJSON(strings.NewReader(in), "marks.json")
	require.NoError(t, err)

	assert.Equal(t, []string{"Roll No", "Marks", "Total", "Cleared", "Remark"}, tb.Headers())
	require.Equal(t, 3, tb.Len())
	assert.Equal(t, []any{json.Number("42"), nil, nil}, tb.Columns[1].Cells)
	assert.Equal(t, []any{json.Number("50"), nil, json.Number("50")}, tb.Columns[2].Cells)
	assert.Equal(t, []any{true, nil, nil}, tb.Columns[3].Cells)
	assert.Equal(t, []any{nil, "late", nil}, tb.Columns[4].Cells)
}

func TestReadJSON_LongIntegerIDsStayDistinct(t *testing.T) {
	in := `[
		{"admission_no": 20230000000000001, "fee_paid": 2500.50},
		{"admission_no": 20230000000000002, "fee_paid": 1e3}
	]`
	tb, err := table.ReadJSON(strings.NewReader(in), "fees.json")
	require.NoError(t, err)

	ids := tb.Columns[0].Cells
	assert.Equal(t, "20230000000000001", table.Key(ids[0]))
	assert.Equal(t, "20230000000000002", table.Key(ids[1]))
	assert.NotEqual(t, table.Key(ids[0]), table.Key(ids[1]))
	assert.Equal(t, "2500.50", table.Text(tb.Columns[1].Cells[0]))
}

func TestReadJSON_Rejects(t *testing.T) {
	for name, in := range map[string]string{
		"not an array":   `{"id": 1}`,
		"empty array":    `[]`,
		"scalar records": `[1, 2]`,
		"truncated":      `[{"id": 1}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := table.ReadJSON(strings.NewReader(in), "bad.json")
			require.Error(t, err)
			assert.True(t, errors.Is(err, table.ErrIngestion))
		})
	}
}
