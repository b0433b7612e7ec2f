package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleRecords = `[
  {"activity": "Parser", "categoryName": "Deep Work", "startTime": "2026-10-18T09:00:00Z", "endTime": "2026-10-18T11:00:00Z"},
  {"activity": "Lunch", "startTime": "2026-10-18T12:00:00Z", "endTime": "2026-10-18T12:30:00Z"},
  {"activity": "Reviews", "categoryName": "Coding", "startTime": "2026-10-18T13:00:00Z", "endTime": "2026-10-18T14:00:00Z"}
]`

func TestRunPrintsReportForFile(t *testing.T) {
	color.NoColor = true
	path := filepath.Join(t.TempDir(), "records.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleRecords), 0o600))

	var out bytes.Buffer
	require.NoError(t, run([]string{"-file", path, "-now", "2026-10-19T08:00:00Z"}, &out))

	text := out.String()
	assert.Contains(t, text, "Focus report (3 records)")
	assert.Contains(t, text, "Work time")
	assert.Contains(t, text, "180 min")
	assert.Contains(t, text, "productive minutes by hour of day")
	assert.Contains(t, text, "Suggested routine")
}

func TestRunJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleRecords), 0o600))

	var out bytes.Buffer
	require.NoError(t, run([]string{"-file", path, "-now", "2026-10-19T08:00:00Z", "-json"}, &out))
	assert.Contains(t, out.String(), `"recordCount": 3`)
}

func TestRunRequiresInput(t *testing.T) {
	var out bytes.Buffer
	assert.Error(t, run([]string{}, &out))
}

func TestLoadFileDefaultsCategory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleRecords), 0o600))

	records, err := loadFile(path)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "Other", records[1].CategoryName)
}
