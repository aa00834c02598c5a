package webserver

import (
	"io/fs"
	"log"
	"net/http"
	"path"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
)

// statusRecorder captures the status code and body size written through it.
type statusRecorder struct {
	http.ResponseWriter
	status int
	size   uint64
}

func (r *statusRecorder) WriteHeader(status int) {
	if r.status == 0 {
		r.status = status
	}
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.size += uint64(n)
	return n, err
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

const indexPage = "index.html"

// serveIndexFile sends an explicitly requested index.html with its contents.
// http.FileServer would answer it with a redirect to the directory instead.
func serveIndexFile(w http.ResponseWriter, r *http.Request, dir http.Dir) bool {
	if !strings.HasSuffix(r.URL.Path, "/"+indexPage) {
		return false
	}
	f, err := dir.Open(path.Clean(r.URL.Path))
	if err != nil {
		switch {
		case errors.Is(err, fs.ErrNotExist):
			http.NotFound(w, r)
		case errors.Is(err, fs.ErrPermission):
			http.Error(w, "403 Forbidden", http.StatusForbidden)
		default:
			http.Error(w, "500 Internal Server Error", http.StatusInternalServerError)
		}
		return true
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		return false
	}
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
	return true
}

// NewHandler returns a handler serving the files under root. Lookups are
// delegated to http.FileServer, which maps paths to files, infers content
// types from extensions, resolves index.html for directories, lists
// directories without one and never leaves root. A direct request for an
// index.html is served as a file. Only GET and HEAD are accepted. A nil
// logger uses the standard logger.
func NewHandler(root string, logger *log.Logger) http.Handler {
	if logger == nil {
		logger = log.Default()
	}
	dir := http.Dir(root)
	files := http.FileServer(dir)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w}
		defer func() {
			status := rec.status
			if status == 0 {
				status = http.StatusOK
			}
			logger.Printf("%s %s %d %s", r.Method, r.URL.Path, status, humanize.Bytes(rec.size))
		}()

		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			rec.Header().Set("Allow", "GET, HEAD")
			http.Error(rec, "Unsupported method ("+r.Method+")", http.StatusNotImplemented)
			return
		}

		if serveIndexFile(rec, r, dir) {
			return
		}
		files.ServeHTTP(rec, r)
	})
}
