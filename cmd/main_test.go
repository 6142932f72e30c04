package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

// execute runs the root command with args in a clean working directory and
// returns what it wrote to stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) }) //nolint:errcheck

	resetFlags(rootCmd)
	t.Cleanup(func() { resetFlags(rootCmd) })

	if args == nil {
		args = []string{}
	}

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	t.Setenv("INPUT_LOG_LEVEL", "error")
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

// resetFlags restores every flag in the command tree to its default so
// values do not leak between executions.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.PersistentFlags().VisitAll(reset)
	cmd.Flags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// siteServer serves robots.txt and a flat sitemap listing paths.
func siteServer(t *testing.T, paths ...string) *httptest.Server {
	t.Helper()
	var base string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/robots.txt":
			_, _ = fmt.Fprintf(w, "User-agent: *\nSitemap: %s/sitemap.xml\n", base)
		case "/sitemap.xml":
			var b strings.Builder
			b.WriteString("<urlset>")
			for _, p := range paths {
				_, _ = fmt.Fprintf(&b, "<url><loc>%s%s</loc></url>", base, p)
			}
			b.WriteString("</urlset>")
			_, _ = w.Write([]byte(b.String()))
		default:
			http.NotFound(w, r)
		}
	}))
	base = srv.URL
	t.Cleanup(srv.Close)
	return srv
}

// jinaServer mimics the Reader API. Targets whose path ends in /fail get a
// 500. The last Authorization header seen is stored in auth.
type jinaServer struct {
	*httptest.Server
	calls atomic.Int32
	auth  atomic.Value
}

func newJinaServer(t *testing.T) *jinaServer {
	t.Helper()
	js := &jinaServer{}
	js.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		js.calls.Add(1)
		js.auth.Store(r.Header.Get("Authorization"))
		target := strings.TrimPrefix(r.URL.Path, "/")
		if strings.HasSuffix(target, "/fail") {
			http.Error(w, "upstream error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"code": 200,
			"data": map[string]any{
				"url":     target,
				"title":   "Title",
				"content": "content of " + target,
			},
		})
	}))
	t.Cleanup(js.Close)
	return js
}

// firecrawlServer mimics POST /scrape.
func firecrawlServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/scrape" || r.Header.Get("Authorization") != "Bearer fc-key" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		body, _ := io.ReadAll(r.Body)
		var req struct {
			URL string `json:"url"`
		}
		_ = json.Unmarshal(body, &req)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data":    map[string]any{"markdown": "markdown of " + req.URL},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}
