package analysis

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/riskloom-cli/internal/reconcile"
	"github.com/KaramelBytes/riskloom-cli/internal/table"
)

func TestProfile_RolesAndKinds(t *testing.T) {
	tb := table.New("marks.csv", []string{"Roll No", "Marks Obtained", "Max Marks", "Grade", "Cleared"}, [][]any{
		{"1", "45", "50", "A", "yes"},
		{"2", "30", "50", "B", "no"},
		{"3", nil, "50", "A", "pending"},
	})
	rep := Profile(tb, DefaultOptions())

	assert.Equal(t, 3, rep.Rows)
	require.Len(t, rep.Cols, 5)

	roll := rep.Cols[0]
	assert.Equal(t, "Roll No", roll.Name)
	assert.Equal(t, "roll_no", roll.Header)
	assert.Equal(t, "numeric", roll.Kind)
	assert.Equal(t, []string{"student_id"}, roll.Roles)

	obtained := rep.Cols[1]
	assert.Equal(t, 1, obtained.Missing)
	assert.Equal(t, 2, obtained.NonNull)
	assert.InDelta(t, 37.5, obtained.Mean, 1e-9)
	assert.Equal(t, 30.0, obtained.Min)
	assert.Equal(t, 45.0, obtained.Max)
	assert.Equal(t, []string{"marks.percent_value"}, obtained.Roles)

	assert.Equal(t, []string{"marks.percent_total"}, rep.Cols[2].Roles)
	assert.Equal(t, 0.0, rep.Cols[2].Std)

	grade := rep.Cols[3]
	assert.Equal(t, "categorical", grade.Kind)
	require.NotEmpty(t, grade.TopValues)
	assert.Equal(t, CategoryCount{Value: "A", Count: 2}, grade.TopValues[0])

	assert.Equal(t, "yes/no", rep.Cols[4].Kind)

	require.Len(t, rep.Resolutions, 2)
	assert.Equal(t, Resolution{Domain: "attendance", Method: reconcile.MethodNone}, rep.Resolutions[0])
	assert.Equal(t, Resolution{Domain: "marks", Method: reconcile.MethodValueTotal}, rep.Resolutions[1])
	assert.Len(t, rep.Samples, 3)
}

func TestProfile_Warnings(t *testing.T) {
	tb := table.New("att.csv", []string{"Name", "Attended", "attended"}, [][]any{
		{"ann", "300", "1"},
		{"bob", "150", "2"},
	})
	rep := Profile(tb, Options{SampleRows: 1})
	assert.Len(t, rep.Samples, 1)
	require.Len(t, rep.Warnings, 3)
	assert.Contains(t, rep.Warnings[0], "normalize to the same header")
	assert.Contains(t, rep.Warnings[1], "no student id column matched")
	assert.Contains(t, rep.Warnings[2], "rescaled by their maximum 300")
}

func TestProfile_FeesRole(t *testing.T) {
	tb := table.New("fees.json", []string{"student", "deposit"}, [][]any{{"s1", 100.0}})
	rep := Profile(tb, DefaultOptions())
	assert.Equal(t, []string{"fees.paid_amount"}, rep.Cols[1].Roles)
}

func TestReportMarkdown(t *testing.T) {
	tb := table.New("fees.csv", []string{"Student ID", "Deposit"}, [][]any{
		{"S1", "1,000"},
		{"S2", "2|500"},
	})
	md := Profile(tb, DefaultOptions()).Markdown()
	assert.Contains(t, md, "[TABLE PROFILE]\nFile: fees.csv\nRows: 2\nColumns: 2")
	assert.Contains(t, md, "- Student ID -> student_id: categorical (non-null 2, missing 0.0%, numeric 0.00, yes/no 0.00); top: S1(1), S2(1) [student_id]")
	assert.Contains(t, md, "[fees.paid_amount]")
	assert.Contains(t, md, "[RESOLUTION]\n- attendance: none\n- marks: none")
	assert.Contains(t, md, "| S2 | 2/500 |")
}

func TestReportMarkdown_TruncatesByRune(t *testing.T) {
	long := strings.Repeat("é", 100)
	tb := table.New("notes.csv", []string{"Student ID", "Remark"}, [][]any{{"S1", long}})
	md := Profile(tb, DefaultOptions()).Markdown()
	assert.True(t, utf8.ValidString(md))
	assert.Contains(t, md, "| S1 | "+strings.Repeat("é", 77)+"... |")

	assert.Equal(t, "abc", truncate("abc", 80))
	assert.Equal(t, "日本...", truncate("日本語のテキスト", 5))
}

func TestOutliers(t *testing.T) {
	cells := []any{10.0, 11.0, 10.5, 9.5, 10.0, 500.0}
	cs := summarize(table.Column{Name: "x", Cells: cells}, "x", Options{OutlierThreshold: 3.5})
	assert.Equal(t, "numeric", cs.Kind)
	assert.Equal(t, 1, cs.OutliersCount)
}

func TestMedianMAD(t *testing.T) {
	med, mad := medianMAD([]float64{1, 2, 3, 4, 100})
	assert.Equal(t, 3.0, med)
	assert.Equal(t, 1.0, mad)
	med, mad = medianMAD(nil)
	assert.Zero(t, med)
	assert.Zero(t, mad)
}
