package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reviewpilot/reviewpilot/internal/triage"
)

func sampleReport() *Report {
	return &Report{
		Repo:          "acme/rocket",
		PRNumber:      42,
		GeneratedAt:   time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
		TotalComments: 2,
		Result: triage.BatchResult{
			TotalComments: 2,
			Categories: map[triage.Category]int{
				triage.CategoryBugs:  1,
				triage.CategoryOther: 1,
			},
			Priorities: []triage.BatchItem{
				{
					CommentID:  "1001",
					Priority:   triage.PriorityHigh,
					Category:   triage.CategoryBugs,
					Author:     "reviewer",
					FilePath:   "app/main.py",
					LineNumber: 3,
					Preview:    "possible security issue | needs check",
				},
				{
					CommentID: "1002",
					Priority:  triage.PriorityLow,
					Category:  triage.CategoryOther,
					Author:    "coderabbitai[bot]",
					Preview:   "nit: naming",
				},
			},
		},
	}
}

func TestWriteAndReadReport(t *testing.T) {
	s := New(t.TempDir())

	path, err := s.WriteReport(sampleReport())
	require.NoError(t, err)
	assert.Equal(t, "acme-rocket-pr42.md", filepath.Base(path))

	repo, pr, generatedAt, err := s.ReadReportMeta(path)
	require.NoError(t, err)
	assert.Equal(t, "acme/rocket", repo)
	assert.Equal(t, 42, pr)
	assert.Equal(t, 2026, generatedAt.Year())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "# Triage report: acme/rocket #42")
	assert.Contains(t, content, "- bugs: 1")
	assert.Contains(t, content, "| high | 1001 | reviewer | app/main.py:3 |")
	// pipes in comment text must be escaped inside the table
	assert.Contains(t, content, `security issue \| needs check`)
}

func TestWriteReportCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "reports")
	s := New(dir)

	path, err := s.WriteReport(sampleReport())
	require.NoError(t, err)
	assert.FileExists(t, path)
}

func TestWriteReportIsAtomic(t *testing.T) {
	s := New(t.TempDir())

	_, err := s.WriteReport(sampleReport())
	require.NoError(t, err)

	// a second write replaces the report without leaving temp files
	path, err := s.WriteReport(sampleReport())
	require.NoError(t, err)
	assert.NoFileExists(t, path+".tmp")
}

func TestReadReportMetaMissingFile(t *testing.T) {
	s := New(t.TempDir())
	_, _, _, err := s.ReadReportMeta(filepath.Join(s.Dir(), "absent.md"))
	assert.Error(t, err)
}
