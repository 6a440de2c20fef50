package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/attendance-tracker/internal/entity"
	"github.com/joseph-ayodele/attendance-tracker/internal/schedule"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("LLM_PROVIDER", "none")
	t.Setenv("CONFIG_FILE", "")
	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestCalc(t *testing.T) {
	out, err := run(t, "calc", "--total", "100", "--attended", "60")
	require.NoError(t, err)
	var stats entity.AttendanceStats
	require.NoError(t, json.Unmarshal([]byte(out), &stats))
	assert.Equal(t, 60.0, stats.AttendancePercentage)
	assert.Equal(t, 15, stats.ClassesToAttendForTarget)
}

func TestCalc_FromSchedule(t *testing.T) {
	out, err := run(t, "calc", "--working-days", "72", "--per-day", "2", "--attended", "100")
	require.NoError(t, err)
	var stats entity.AttendanceStats
	require.NoError(t, json.Unmarshal([]byte(out), &stats))
	assert.Equal(t, 144, stats.TotalClasses)

	_, err = run(t, "calc", "--working-days", "0", "--per-day", "2")
	assert.Error(t, err)
}

func TestAnalyze_UnknownMode(t *testing.T) {
	_, err := run(t, "analyze", "--mode", "poem", "x.pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}

func TestPlan(t *testing.T) {
	dir := t.TempDir()
	sched := filepath.Join(dir, "week.json")
	require.NoError(t, os.WriteFile(sched, []byte(`{"Monday":[{"subject":"Maths","day":"Monday","time":"09:00-10:00"}]}`), 0o644))
	icsPath := filepath.Join(dir, "term.ics")
	xlsxPath := filepath.Join(dir, "term.xlsx")

	out, err := run(t, "plan", "-s", sched, "--start", "2025-06-02", "--end", "2025-06-30",
		"--holiday", "2025-06-16", "--attended", "3", "--ics", icsPath, "--xlsx", xlsxPath)
	require.NoError(t, err)

	var plan schedule.Plan
	require.NoError(t, json.Unmarshal([]byte(out), &plan))
	assert.Equal(t, 4, plan.Projection.TotalClasses)
	assert.Equal(t, 75.0, plan.Stats.AttendancePercentage)

	ics, err := os.ReadFile(icsPath)
	require.NoError(t, err)
	assert.Equal(t, 4, strings.Count(string(ics), "BEGIN:VEVENT"))
	assert.FileExists(t, xlsxPath)
}

func TestPlan_FromTimetableAnalysis(t *testing.T) {
	dir := t.TempDir()
	sched := filepath.Join(dir, "tt.json")
	require.NoError(t, os.WriteFile(sched, []byte(`{"timetable_events":[{"subject":"Physics","day":"Tuesday"}],"total_working_days":1,"confidence_score":0.3}`), 0o644))

	out, err := run(t, "plan", "-s", sched, "--start", "2025-06-02", "--end", "2025-06-15")
	require.NoError(t, err)
	var plan schedule.Plan
	require.NoError(t, json.Unmarshal([]byte(out), &plan))
	assert.Equal(t, 2, plan.Projection.TotalClasses)
}

func TestDBHealth(t *testing.T) {
	t.Setenv("DB_URL", filepath.Join(t.TempDir(), "att.db"))
	out, err := run(t, "dbhealth", "--migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "DB health: OK")
}
