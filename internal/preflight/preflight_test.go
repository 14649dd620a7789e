package preflight

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"botanize/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	result := CheckDirectoryAccess("test", t.TempDir())
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed || result.Detail == "" {
		t.Fatalf("expected failure with detail, got %+v", result)
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if result := CheckDirectoryAccess("test", f); result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckPlantNet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/projects" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if r.URL.Query().Get("api-key") != "good-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	if result := CheckPlantNet(context.Background(), srv.URL+"/v2/", "good-key"); !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
	if result := CheckPlantNet(context.Background(), srv.URL+"/v2", "bad-key"); result.Passed || result.Detail != "auth failed (invalid api key)" {
		t.Fatalf("expected auth failure, got %+v", result)
	}
	if result := CheckPlantNet(context.Background(), "", "key"); result.Passed {
		t.Fatal("expected failure for missing URL")
	}
	if result := CheckPlantNet(context.Background(), srv.URL, " "); result.Passed {
		t.Fatal("expected failure for missing key")
	}
}

func TestRunAllWithFixtures(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithFixtureTaxonomy())
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}

	results := RunAll(context.Background(), cfg)
	if failed := Failed(results); len(failed) != 0 {
		t.Fatalf("expected every check to pass, failed: %+v", failed)
	}
	byName := make(map[string]Result, len(results))
	for _, r := range results {
		byName[r.Name] = r
	}
	if !byName["Pl@ntNet"].Skipped {
		t.Fatalf("expected Pl@ntNet check skipped without a key, got %+v", byName["Pl@ntNet"])
	}
	if got := byName["Species"].Detail; got != cfg.SpeciesPath()+" (4 species)" {
		t.Fatalf("unexpected species detail %q", got)
	}
	if !byName["Quota backend"].Passed {
		t.Fatalf("expected memory quota backend to pass, got %+v", byName["Quota backend"])
	}
}

func TestRunAllReportsMissingReferenceData(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	failed := Failed(RunAll(context.Background(), cfg))
	if len(failed) != 2 || failed[0].Name != "Species" || failed[1].Name != "Vocabulary" {
		t.Fatalf("expected species and vocabulary failures, got %+v", failed)
	}
}
