package main

import (
	"flag"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gorilla/handlers"
)

func main() {
	fs := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	listen := fs.String("listen", "127.0.0.1:8080", "HTTP listen address")
	dataDirs := fs.String("data-dirs", filepath.Join("data", "selfplay"), "Comma-separated self-play output roots (each holding games/*.parquet)")
	refresh := fs.Duration("refresh", 30*time.Second, "How long a DuckDB view is reused before the parquet files are rescanned")
	staticDir := fs.String("static-dir", "", "Optional directory to serve as SPA static")
	if err := fs.Parse(os.Args[1:]); err != nil {
		log.Fatalf("flag parse: %v", err)
	}

	roots := parseDataRoots(*dataDirs)
	log.Printf("Viewer data roots: %s", strings.Join(roots, ","))

	srv := NewServer(roots, *refresh)
	defer srv.Close()

	var static http.Handler
	if dir := strings.TrimSpace(*staticDir); dir != "" {
		static = spaHandler{staticPath: dir, indexPath: filepath.Join(dir, "index.html")}
		log.Printf("Serving SPA from %s", dir)
	}

	httpSrv := &http.Server{
		Addr:              *listen,
		Handler:           handlers.LoggingHandler(os.Stdout, srv.Router(static)),
		ReadHeaderTimeout: 5 * time.Second,
	}
	log.Printf("Viewer API listening on http://%s", *listen)
	log.Fatal(httpSrv.ListenAndServe())
}

type spaHandler struct {
	staticPath string
	indexPath  string
}

// ServeHTTP serves an existing static file, otherwise index.html for
// client-side routing.
func (h spaHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := filepath.Clean(r.URL.Path)
	if path == "/" {
		http.ServeFile(w, r, h.indexPath)
		return
	}
	candidate := filepath.Join(h.staticPath, strings.TrimPrefix(path, "/"))
	if fi, err := os.Stat(candidate); err == nil && !fi.IsDir() {
		http.ServeFile(w, r, candidate)
		return
	}
	http.ServeFile(w, r, h.indexPath)
}
