package scan

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"passcan/internal/detect"
	"passcan/internal/model"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestRunEndToEnd(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.env"), "OPENAI_API_KEY=sk-"+strings.Repeat("Ab1", 16)+"\n")
	writeFile(t, filepath.Join(root, "b.json"), `{"password": "hunter2"}`+"\n")
	writeFile(t, filepath.Join(root, "c.py"), "print('hello world')\n")

	report := Run(root, Options{Workers: 2})

	require.Len(t, report.Results, 2)
	a, c := report.Results[0], report.Results[1]

	assert.Equal(t, filepath.Join(root, "a.env"), a.Path)
	assert.Equal(t, model.StatusAlert, a.Status)
	assert.Equal(t, []string{"OpenAI Key"}, a.Secrets)

	assert.Equal(t, filepath.Join(root, "c.py"), c.Path)
	assert.Equal(t, model.StatusClean, c.Status)
	assert.Empty(t, c.Secrets)

	s := report.Summary
	assert.Equal(t, 2, s.FilesScanned)
	assert.Equal(t, 1, s.FilesWithSecrets)
	assert.Equal(t, 1, s.TotalSecrets)
	assert.Equal(t, 0, s.Errors)
	assert.Equal(t, root, s.Root)
	assert.NotEmpty(t, s.RunID)
}

func TestRunInaccessibleRoot(t *testing.T) {
	report := Run(filepath.Join(t.TempDir(), "missing"), Options{})
	assert.Empty(t, report.Results)
	assert.Equal(t, 0, report.Summary.FilesScanned)
	assert.Equal(t, 0, report.Summary.FilesWithSecrets)
	assert.Equal(t, 0, report.Summary.TotalSecrets)
}

func TestRunManyFiles(t *testing.T) {
	root := t.TempDir()
	const n = 200
	for i := 0; i < n; i++ {
		content := "x = 1\n"
		if i%10 == 0 {
			content = "key = AKIA1234567890ABCDEF\npassword = \"p\"\n"
		}
		writeFile(t, filepath.Join(root, fmt.Sprintf("dir%d", i%7), fmt.Sprintf("f%03d.py", i)), content)
	}

	var (
		candidates int
		seen       sync.Map
		calls      atomic.Int64
	)
	report := Run(root, Options{
		Workers:      8,
		OnCandidates: func(n int) { candidates = n },
		OnResult: func(r model.ScanResult) {
			calls.Add(1)
			_, dup := seen.LoadOrStore(r.Path, true)
			assert.False(t, dup, "path reported twice: %s", r.Path)
		},
	})

	assert.Equal(t, n, candidates)
	assert.EqualValues(t, n, calls.Load())
	require.Len(t, report.Results, n)
	assert.Equal(t, 20, report.Summary.FilesWithSecrets)
	assert.Equal(t, 40, report.Summary.TotalSecrets)

	for i := 1; i < len(report.Results); i++ {
		assert.Less(t, report.Results[i-1].Path, report.Results[i].Path)
	}
}

func TestRunContentMode(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "cfg.yaml"), "db:\n  password\n  'secret'\n")

	line := Run(root, Options{})
	content := Run(root, Options{Detector: detect.New(detect.Options{Mode: detect.ModeContent}, nil)})

	assert.Equal(t, model.StatusClean, line.Results[0].Status)
	assert.Equal(t, model.StatusAlert, content.Results[0].Status)
	assert.Equal(t, []string{"Password"}, content.Results[0].Secrets)
}

func TestRunUnreadableFile(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root can read files regardless of mode bits")
	}
	root := t.TempDir()
	p := filepath.Join(root, "locked.sh")
	writeFile(t, p, "password=x\n")
	require.NoError(t, os.Chmod(p, 0))
	t.Cleanup(func() { _ = os.Chmod(p, 0644) })

	report := Run(root, Options{})
	require.Len(t, report.Results, 1)
	assert.Equal(t, model.StatusError, report.Results[0].Status)
	assert.Equal(t, 1, report.Summary.FilesScanned)
	assert.Equal(t, 1, report.Summary.Errors)
	assert.Equal(t, 0, report.Summary.FilesWithSecrets)
}

func TestSummarize(t *testing.T) {
	results := []model.ScanResult{
		model.NewResult("a", []string{"AWS Access Key", "Password"}, nil),
		model.NewResult("b", nil, nil),
		model.NewResult("c", []string{"Password"}, errors.New("boom")),
		model.NewResult("d", []string{"Slack Token"}, nil),
	}

	s := Summarize(results, time.Second)
	assert.Equal(t, 4, s.FilesScanned)
	assert.Equal(t, 2, s.FilesWithSecrets)
	assert.Equal(t, 3, s.TotalSecrets)
	assert.Equal(t, 1, s.Errors)
	assert.Equal(t, time.Second, s.Elapsed)

	assert.Equal(t, model.StatusError, results[2].Status)
	assert.Empty(t, results[2].Secrets)
}

func TestRunLogsSummary(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.sh"), "export PASSWORD=x\n")

	Run(root, Options{Logger: zap.New(core)})

	finished := logs.FilterMessage("scan finished").All()
	require.Len(t, finished, 1)
	fields := finished[0].ContextMap()
	assert.EqualValues(t, 1, fields["files_with_secrets"])
	assert.NotEmpty(t, fields["run_id"])
	assert.Equal(t, 1, logs.FilterMessage("scan started").Len())
}

func TestRunnerSerializes(t *testing.T) {
	root := t.TempDir()
	for i := 0; i < 20; i++ {
		writeFile(t, filepath.Join(root, fmt.Sprintf("f%d.go", i)), "package f\n")
	}

	r := NewRunner(Options{Workers: 4})

	var (
		active  atomic.Int32
		overlap atomic.Bool
		wg      sync.WaitGroup
	)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.RunWith(root,
				func(int) {
					if active.Add(1) > 1 {
						overlap.Store(true)
					}
					time.Sleep(10 * time.Millisecond)
					active.Add(-1)
				},
				nil,
			)
		}()
	}
	wg.Wait()

	assert.False(t, overlap.Load())
	assert.Len(t, r.Run(root).Results, 20)
}
