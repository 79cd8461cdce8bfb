// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package operation_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/artcopy/pkg/copier"
	"github.com/walteh/artcopy/pkg/log"
	"github.com/walteh/artcopy/pkg/manifest"
	"github.com/walteh/artcopy/pkg/operation"
)

// 🧪 createTestEnv builds an in-memory file system, a context and the console buffer
func createTestEnv(t *testing.T, files map[string]string) (context.Context, afero.Fs, *bytes.Buffer) {
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = false })

	logger := zerolog.New(zerolog.NewTestWriter(t))
	ctx := logger.WithContext(context.Background())

	buf := &bytes.Buffer{}
	ctx = log.NewContext(ctx, log.New(buf, logger))

	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/src", 0o755))
	require.NoError(t, fs.MkdirAll("/dst", 0o755))
	for name, content := range files {
		path := filepath.Join("/src", name)
		require.NoError(t, fs.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o644))
	}
	return ctx, fs, buf
}

// recordingFs remembers every path looked up through Stat or Open
type recordingFs struct {
	afero.Fs
	mu      sync.Mutex
	touched map[string]bool
}

func newRecordingFs(fs afero.Fs) *recordingFs {
	return &recordingFs{Fs: fs, touched: map[string]bool{}}
}

func (r *recordingFs) record(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.touched[filepath.Clean(name)] = true
}

func (r *recordingFs) Stat(name string) (os.FileInfo, error) {
	r.record(name)
	return r.Fs.Stat(name)
}

func (r *recordingFs) Open(name string) (afero.File, error) {
	r.record(name)
	return r.Fs.Open(name)
}

func (r *recordingFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	r.record(name)
	return r.Fs.OpenFile(name, flag, perm)
}

func (r *recordingFs) wasTouched(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.touched[filepath.Clean(name)]
}

func loadManifest(t *testing.T, ctx context.Context, content string) *manifest.Manifest {
	t.Helper()
	path := filepath.Join(t.TempDir(), "artifacts.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	m, err := manifest.Load(ctx, path)
	require.NoError(t, err, "loading manifest")
	return m
}

const threeProjects = `
- project: group/libfoo
  install:
    foo.txt: lib/foo.txt
- project: group/libbar
  install:
    bar.txt: lib/bar.txt
- project: other/tool
  install:
    tool: bin/tool
`

func TestRunFilter(t *testing.T) {
	tests := []struct {
		name        string
		filter      manifest.Filter
		wantCopied  []string
		wantSkipped []string
		wantFiles   map[string]bool
		wantErr     error
	}{
		{
			name:       "no_filter_copies_all",
			filter:     "",
			wantCopied: []string{"group/libfoo", "group/libbar", "other/tool"},
			wantFiles:  map[string]bool{"/dst/lib/foo.txt": true, "/dst/lib/bar.txt": true, "/dst/bin/tool": true},
		},
		{
			name:        "substring_filter",
			filter:      "group/",
			wantCopied:  []string{"group/libfoo", "group/libbar"},
			wantSkipped: []string{"other/tool"},
			wantFiles:   map[string]bool{"/dst/lib/foo.txt": true, "/dst/lib/bar.txt": true, "/dst/bin/tool": false},
		},
		{
			name:        "single_match",
			filter:      "tool",
			wantCopied:  []string{"other/tool"},
			wantSkipped: []string{"group/libfoo", "group/libbar"},
			wantFiles:   map[string]bool{"/dst/lib/foo.txt": false, "/dst/lib/bar.txt": false, "/dst/bin/tool": true},
		},
		{
			name:        "no_match",
			filter:      "nothing",
			wantSkipped: []string{"group/libfoo", "group/libbar", "other/tool"},
			wantFiles:   map[string]bool{"/dst/lib/foo.txt": false, "/dst/lib/bar.txt": false, "/dst/bin/tool": false},
			wantErr:     operation.ErrNoProjectProcessed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, fs, _ := createTestEnv(t, map[string]string{
				"foo.txt": "foo",
				"bar.txt": "bar",
				"tool":    "tool",
			})
			m := loadManifest(t, ctx, threeProjects)
			rfs := newRecordingFs(fs)

			summary, err := operation.Run(ctx, operation.Options{
				Manifest:       m,
				SourceDir:      "/src",
				DestinationDir: "/dst",
				Filter:         tt.filter,
				Fs:             rfs,
			})
			if tt.wantErr != nil {
				require.Error(t, err, "run should fail")
				assert.ErrorIs(t, err, tt.wantErr, "error kind should match")
			} else {
				require.NoError(t, err, "run should succeed")
			}

			require.NotNil(t, summary, "summary should be returned")
			assert.Equal(t, tt.wantCopied, summary.Names(operation.OutcomeCopied), "copied projects should match")
			assert.Equal(t, tt.wantSkipped, summary.Names(operation.OutcomeSkipped), "skipped projects should match")
			assert.Empty(t, summary.Names(operation.OutcomeFailed), "no project should fail")

			for _, p := range m.Projects {
				if tt.filter.Match(p.Name) {
					continue
				}
				for _, src := range p.Sources() {
					assert.False(t, rfs.wasTouched(filepath.Join("/src", src)), "source of skipped %s should not be read", p.Name)
					assert.False(t, rfs.wasTouched(filepath.Join("/dst", p.Install[src])), "destination of skipped %s should not be read", p.Name)
				}
			}

			for path, want := range tt.wantFiles {
				exists, err := afero.Exists(fs, path)
				require.NoError(t, err)
				assert.Equal(t, want, exists, "existence of %s should match", path)
			}
		})
	}
}

func TestRunContinuesAfterFailedProject(t *testing.T) {
	ctx, fs, buf := createTestEnv(t, map[string]string{
		"good/a.txt": "alpha",
	})
	m := loadManifest(t, ctx, `
- project: broken
  install:
    missing: out/missing
- project: working
  install:
    good: out/good
`)

	summary, err := operation.Run(ctx, operation.Options{
		Manifest:       m,
		SourceDir:      "/src",
		DestinationDir: "/dst",
		Fs:             fs,
	})
	require.NoError(t, err, "run should succeed when one project copies")

	assert.Equal(t, []string{"broken"}, summary.Names(operation.OutcomeFailed), "broken project should fail")
	assert.Equal(t, []string{"working"}, summary.Names(operation.OutcomeCopied), "working project should copy")
	require.Error(t, summary.Results[0].Err)
	assert.ErrorIs(t, summary.Results[0].Err, copier.ErrCopy, "failure should be a copy error")

	data, err := afero.ReadFile(fs, "/dst/out/good/a.txt")
	require.NoError(t, err, "working project output should exist")
	assert.Equal(t, "alpha", string(data))

	out := buf.String()
	assert.Contains(t, out, "◆ broken", "console should show the failed project")
	assert.Contains(t, out, "❌ broken:", "console should report the failure")
	assert.Contains(t, out, "✅ working: 1 files", "console should report the success")
}

func TestRunAllProjectsFail(t *testing.T) {
	ctx, fs, _ := createTestEnv(t, nil)
	m := loadManifest(t, ctx, `
- project: a
  install:
    missing: x
- project: b
  install:
    also-missing: y
`)

	summary, err := operation.Run(ctx, operation.Options{
		Manifest:       m,
		SourceDir:      "/src",
		DestinationDir: "/dst",
		Fs:             fs,
	})
	require.Error(t, err, "run should fail")
	assert.ErrorIs(t, err, operation.ErrNoProjectProcessed)
	assert.Contains(t, err.Error(), "all 2 matched projects failed")
	assert.Equal(t, 2, summary.Count(operation.OutcomeFailed))
}

func TestRunDefaultsDestinationToManifestDir(t *testing.T) {
	logger := zerolog.New(zerolog.NewTestWriter(t))
	ctx := logger.WithContext(context.Background())
	ctx = log.NewContext(ctx, log.New(&bytes.Buffer{}, logger))

	src := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(src, "a.txt"), []byte("alpha"), 0o644))

	m := loadManifest(t, ctx, "- project: p\n  install:\n    a.txt: out/a.txt\n")

	_, err := operation.Run(ctx, operation.Options{
		Manifest:  m,
		SourceDir: src,
	})
	require.NoError(t, err, "run should succeed")

	data, err := os.ReadFile(filepath.Join(m.Dir(), "out", "a.txt"))
	require.NoError(t, err, "file should land next to the manifest")
	assert.Equal(t, "alpha", string(data))
}

func TestRunDryRun(t *testing.T) {
	ctx, fs, _ := createTestEnv(t, map[string]string{"foo.txt": "foo"})
	m := loadManifest(t, ctx, "- project: p\n  install:\n    foo.txt: lib/foo.txt\n")

	summary, err := operation.Run(ctx, operation.Options{
		Manifest:       m,
		SourceDir:      "/src",
		DestinationDir: "/dst",
		DryRun:         true,
		Fs:             fs,
	})
	require.NoError(t, err, "dry run should succeed")
	assert.Equal(t, 1, summary.Results[0].Report.Count(copier.StatusNew), "file should be reported as new")

	exists, err := afero.Exists(fs, "/dst/lib/foo.txt")
	require.NoError(t, err)
	assert.False(t, exists, "dry run should not write")
}

func TestRunRequiresOptions(t *testing.T) {
	ctx, _, _ := createTestEnv(t, nil)

	_, err := operation.Run(ctx, operation.Options{SourceDir: "/src"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "manifest is required")

	_, err = operation.Run(ctx, operation.Options{Manifest: &manifest.Manifest{}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "source directory is required")
}

func TestSummaryRows(t *testing.T) {
	summary := &operation.Summary{
		Results: []operation.ProjectResult{
			{Project: manifest.Project{Name: "skipped"}, Outcome: operation.OutcomeSkipped},
			{
				Project: manifest.Project{Name: "copied"},
				Outcome: operation.OutcomeCopied,
				Report: &copier.Report{Files: []copier.FileResult{
					{Status: copier.StatusNew},
					{Status: copier.StatusSkipped},
				}},
			},
		},
	}

	rows := summary.Rows()
	require.Len(t, rows, 1, "skipped projects should not appear")
	assert.Equal(t, "copied", rows[0].Name)
	assert.Equal(t, "copied", rows[0].Outcome)
	assert.Equal(t, 1, rows[0].Files, "excluded files should not be counted")
}

func TestRunWithoutConsoleLogger(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/src/a.txt", []byte("alpha"), 0o644))

	logger := zerolog.New(zerolog.NewTestWriter(t))
	ctx := logger.WithContext(context.Background())
	m := loadManifest(t, ctx, `
- project: plain
  install:
    a.txt: a.txt
`)

	var summary *operation.Summary
	var err error
	require.NotPanics(t, func() {
		summary, err = operation.Run(ctx, operation.Options{
			Manifest:       m,
			SourceDir:      "/src",
			DestinationDir: "/dst",
			Fs:             fs,
		})
	}, "run should not need a console logger")
	require.NoError(t, err, "run should succeed")
	assert.Equal(t, []string{"plain"}, summary.Names(operation.OutcomeCopied))

	data, err := afero.ReadFile(fs, "/dst/a.txt")
	require.NoError(t, err)
	assert.Equal(t, "alpha", string(data))
}
