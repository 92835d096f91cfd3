package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"passcan/internal/model"
)

func sampleReport() model.Report {
	return model.Report{
		Summary: model.Summary{
			RunID:            "run-1",
			Root:             "/repo",
			FilesScanned:     3,
			FilesWithSecrets: 1,
			TotalSecrets:     2,
			Errors:           1,
			Elapsed:          1500 * time.Millisecond,
		},
		Results: []model.ScanResult{
			model.NewResult("/repo/a.env", []string{"OpenAI Key", "Password"}, nil),
			model.NewResult("/repo/b.py", nil, nil),
			model.NewResult("/repo/c.sh", nil, errors.New("permission denied")),
		},
	}
}

func TestTable(t *testing.T) {
	var buf bytes.Buffer
	New(&buf).Table(sampleReport().Results)
	out := buf.String()

	assert.Contains(t, out, "File Path")
	assert.Contains(t, out, "Secrets Found")
	assert.Contains(t, out, "/repo/a.env")
	assert.Contains(t, out, "OpenAI Key, Password")
	assert.Contains(t, out, "Alert")
	assert.Contains(t, out, "Clean")
	assert.Contains(t, out, "Error")
	assert.Contains(t, out, "unreadable: permission denied")
	assert.NotContains(t, out, "\x1b[", "no colour codes when not a terminal")
}

func TestStatusCellsDistinct(t *testing.T) {
	p := New(&bytes.Buffer{})
	clean := p.StatusCell(model.StatusClean)
	alert := p.StatusCell(model.StatusAlert)
	errCell := p.StatusCell(model.StatusError)

	assert.NotEqual(t, clean, errCell)
	assert.NotEqual(t, clean, alert)
	assert.NotEqual(t, alert, errCell)
}

func TestSecretsCell(t *testing.T) {
	assert.Equal(t, "-", SecretsCell(model.NewResult("x", nil, nil)))
	assert.Equal(t, "AWS Access Key", SecretsCell(model.NewResult("x", []string{"AWS Access Key"}, nil)))
	assert.Equal(t, "unreadable: boom", SecretsCell(model.NewResult("x", nil, errors.New("boom"))))
}

func TestSummary(t *testing.T) {
	var buf bytes.Buffer
	New(&buf).Summary(sampleReport().Summary)
	out := buf.String()

	assert.Contains(t, out, "Total files scanned: 3")
	assert.Contains(t, out, "Files with secrets: 1")
	assert.Contains(t, out, "Total secrets found: 2")
	assert.Contains(t, out, "Unreadable files: 1")
	assert.Contains(t, out, "Time taken: 1.5s")
}

func TestFull(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf)
	p.Banner("/repo")
	p.Full(sampleReport())
	out := buf.String()

	assert.Contains(t, out, "Scanning directory: /repo")
	assert.Contains(t, out, ProjectURL)
	assert.Contains(t, out, "Scan completed")
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, JSON(&buf, sampleReport()))

	var decoded struct {
		Summary map[string]any `json:"summary"`
		Results []struct {
			Path    string   `json:"path"`
			Status  string   `json:"status"`
			Secrets []string `json:"secrets"`
			Error   string   `json:"error"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))

	assert.EqualValues(t, 3, decoded.Summary["files_scanned"])
	assert.EqualValues(t, 2, decoded.Summary["total_secrets"])
	require.Len(t, decoded.Results, 3)
	assert.Equal(t, "alert", decoded.Results[0].Status)
	assert.Equal(t, []string{"OpenAI Key", "Password"}, decoded.Results[0].Secrets)
	assert.Equal(t, "clean", decoded.Results[1].Status)
	assert.Equal(t, []string{}, decoded.Results[1].Secrets)
	assert.Equal(t, "error", decoded.Results[2].Status)
	assert.Equal(t, "permission denied", decoded.Results[2].Error)
}

func TestJSONEmptyResults(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, JSON(&buf, model.Report{}))
	assert.Contains(t, buf.String(), `"results": []`)
}

func TestProgress(t *testing.T) {
	var buf bytes.Buffer
	p := newProgress(&buf, true)
	p.Start(2)
	p.Inc()
	p.Inc()
	p.Finish()
	assert.Contains(t, buf.String(), "2/2 files")
	assert.True(t, strings.HasSuffix(buf.String(), "\r\x1b[2K"))

	var quiet bytes.Buffer
	q := newProgress(&quiet, false)
	q.Start(1)
	q.Inc()
	q.Finish()
	assert.Empty(t, quiet.String())
}

func TestFormatElapsed(t *testing.T) {
	assert.Equal(t, "1.23s", FormatElapsed(1234*time.Millisecond))
	assert.Equal(t, "12.35ms", FormatElapsed(12345678*time.Nanosecond))
}
