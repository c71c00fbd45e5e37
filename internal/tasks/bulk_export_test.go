package tasks

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/desertthunder/playgraph/internal/formatter"
	th "github.com/desertthunder/playgraph/internal/testing"
)

func TestBulkExport(t *testing.T) {
	tests := []struct {
		name      string
		format    string
		ids       []string
		wantOK    int
		wantFail  int
		wantFiles int
	}{
		{name: "json", format: formatter.FormatJSON, ids: []string{"p1", "p2"}, wantOK: 2, wantFiles: 1},
		{name: "csv", format: formatter.FormatCSV, ids: []string{"p1"}, wantOK: 1, wantFiles: 3},
		{name: "markdown", format: formatter.FormatMarkdown, ids: []string{"p2"}, wantOK: 1, wantFiles: 1},
		{name: "text", format: formatter.FormatText, ids: []string{"p1", "p2"}, wantOK: 2, wantFiles: 1},
		{name: "partial failure", format: formatter.FormatJSON, ids: []string{"p1", "broken", "nope"}, wantOK: 1, wantFail: 2, wantFiles: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			engine := NewCatalogEngine(setupSource(), newMemoryCache(), nil)

			result, err := engine.BulkExport(context.Background(), nil, tt.ids, BulkExportOpts{
				Format:    tt.format,
				OutputDir: dir,
				RateLimit: 1000,
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if result.TotalPlaylists != len(tt.ids) {
				t.Errorf("expected %d total, got %d", len(tt.ids), result.TotalPlaylists)
			}
			if result.SuccessfulExports != tt.wantOK || result.FailedExports != tt.wantFail {
				t.Errorf("expected %d/%d, got %d/%d", tt.wantOK, tt.wantFail, result.SuccessfulExports, result.FailedExports)
			}
			for _, res := range result.Results {
				if !res.Success {
					if res.Error == nil {
						t.Errorf("failed result %s has no error", res.PlaylistID)
					}
					continue
				}
				if len(res.Files) != tt.wantFiles {
					t.Errorf("expected %d files for %s, got %d", tt.wantFiles, res.PlaylistID, len(res.Files))
				}
				for _, f := range res.Files {
					th.AssertFileExists(t, f)
				}
			}

			th.AssertFileExists(t, result.ManifestPath)
			var m formatter.Manifest
			if err := json.Unmarshal([]byte(th.MustReadFile(t, result.ManifestPath)), &m); err != nil {
				t.Fatalf("failed to decode manifest: %v", err)
			}
			if m.Format != tt.format || len(m.Playlists) != len(tt.ids) {
				t.Errorf("unexpected manifest %+v", m)
			}
		})
	}

	t.Run("defaults output directory and format", func(t *testing.T) {
		dir := t.TempDir()
		wd, _ := os.Getwd()
		if err := os.Chdir(dir); err != nil {
			t.Fatalf("failed to chdir: %v", err)
		}
		t.Cleanup(func() { os.Chdir(wd) })

		engine := NewCatalogEngine(setupSource(), nil, nil)
		result, err := engine.BulkExport(context.Background(), nil, []string{"p1"}, BulkExportOpts{NumWorkers: 50, RateLimit: 1000})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		th.AssertDirExists(t, result.OutputDirectory)
		th.AssertFileExists(t, filepath.Join(result.OutputDirectory, "p1.json"))
	})

	t.Run("cancelled context records failures", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		engine := NewCatalogEngine(setupSource(), nil, nil)
		result, err := engine.BulkExport(ctx, nil, []string{"p1", "p2"}, BulkExportOpts{OutputDir: t.TempDir(), RateLimit: 1000})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.FailedExports != 2 {
			t.Errorf("expected 2 failures, got %d", result.FailedExports)
		}
	})

	t.Run("reports progress per playlist", func(t *testing.T) {
		progress := make(chan ProgressUpdate, 20)
		engine := NewCatalogEngine(setupSource(), nil, nil)
		_, err := engine.BulkExport(context.Background(), progress, []string{"p1", "p2"}, BulkExportOpts{OutputDir: t.TempDir(), RateLimit: 1000})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		close(progress)

		var steps []int
		for u := range progress {
			if u.Phase != ExportPlaylist {
				t.Errorf("unexpected phase %v", u.Phase)
			}
			steps = append(steps, u.Step)
		}
		sort.Ints(steps)
		if len(steps) != 4 {
			t.Errorf("expected 4 updates, got %v", steps)
		}
	})

	t.Run("unwritable output directory", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "file")
		if err := os.WriteFile(file, nil, 0644); err != nil {
			t.Fatalf("failed to write file: %v", err)
		}
		engine := NewCatalogEngine(setupSource(), nil, nil)
		if _, err := engine.BulkExport(context.Background(), nil, []string{"p1"}, BulkExportOpts{OutputDir: filepath.Join(file, "out")}); err == nil {
			t.Error("expected an error")
		}
	})
}
