package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"sir/pkg/history"
)

func clearEnv(t *testing.T) {
	t.Helper()
	chdir(t, t.TempDir())
	for _, k := range []string{"SIR_SOLR_URI", "SIR_DB_URI", "SIR_HTTP_TIMEOUT", "SIR_CORES", "SIR_SCHEMA_VERSIONS", "SIR_HISTORY_DB", "SIR_DEBUG"} {
		t.Setenv(k, "")
	}
}

// fakeSolr answers ping for every core and serves versions from the map.
func fakeSolr(t *testing.T, versions map[string]string, versionHits *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		core, rest, _ := strings.Cut(strings.TrimPrefix(r.URL.Path, "/solr/"), "/")
		switch rest {
		case "admin/ping":
			if _, ok := versions[core]; !ok {
				http.Error(w, "no such core", http.StatusNotFound)
				return
			}
			w.Write([]byte(`{"status":"OK"}`))
		case "schema/version":
			if versionHits != nil {
				versionHits.Add(1)
			}
			w.Write([]byte(`{"version":` + versions[core] + `}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRunAllMatch(t *testing.T) {
	clearEnv(t)
	t.Setenv("SIR_SCHEMA_VERSIONS", "core1=4.0")
	srv := fakeSolr(t, map[string]string{"core1": "4.0"}, nil)

	var out, errOut bytes.Buffer
	code := run(context.Background(), []string{"-solr", srv.URL + "/solr", "-cores", "core1"}, &out, &errOut)
	if code != 0 {
		t.Fatalf("exit %d, stderr %s", code, errOut.String())
	}
	if !strings.Contains(out.String(), "ok    core1 4.0") {
		t.Fatalf("stdout %q", out.String())
	}
}

func TestRunMismatchRecordsHistory(t *testing.T) {
	clearEnv(t)
	t.Setenv("SIR_SCHEMA_VERSIONS", "core1=4.0,core2=1.1")
	srv := fakeSolr(t, map[string]string{"core1": "3.9", "core2": "1.1"}, nil)
	hist := filepath.Join(t.TempDir(), "h.db")

	var out, errOut bytes.Buffer
	code := run(context.Background(), []string{"-solr", srv.URL + "/solr", "-cores", "core1,core2", "-history", hist}, &out, &errOut)
	if code != 1 {
		t.Fatalf("exit %d", code)
	}
	if !strings.Contains(out.String(), "core1: Expected 4.0, got 3.9") {
		t.Fatalf("stdout %q", out.String())
	}
	if !strings.Contains(out.String(), "2 checked, 1 failed") {
		t.Fatalf("stdout %q", out.String())
	}

	st, err := history.Open(context.Background(), hist)
	if err != nil {
		t.Fatalf("open history: %v", err)
	}
	defer st.Close()
	got, err := st.Recent(context.Background(), "", 10)
	if err != nil || len(got) != 2 {
		t.Fatalf("history %v %v", got, err)
	}
}

func TestRunPingFailureSkipsVersionCheck(t *testing.T) {
	clearEnv(t)
	t.Setenv("SIR_SCHEMA_VERSIONS", "core1=4.0")
	var hits atomic.Int32
	srv := fakeSolr(t, map[string]string{}, &hits)

	var out, errOut bytes.Buffer
	code := run(context.Background(), []string{"-solr", srv.URL + "/solr", "-cores", "core1"}, &out, &errOut)
	if code != 1 {
		t.Fatalf("exit %d", code)
	}
	if hits.Load() != 0 {
		t.Fatalf("version endpoint hit %d times after failed ping", hits.Load())
	}
}

func TestRunUnknownCore(t *testing.T) {
	clearEnv(t)
	var out, errOut bytes.Buffer
	if code := run(context.Background(), []string{"-cores", "nope"}, &out, &errOut); code != 2 {
		t.Fatalf("exit %d", code)
	}
}

func TestRunVersion(t *testing.T) {
	clearEnv(t)
	var out, errOut bytes.Buffer
	if code := run(context.Background(), []string{"-v"}, &out, &errOut); code != 0 {
		t.Fatalf("exit %d", code)
	}
	if !strings.HasPrefix(out.String(), "sir-check ") {
		t.Fatalf("stdout %q", out.String())
	}
}
