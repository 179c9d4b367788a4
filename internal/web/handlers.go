package web

import (
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/JonMunkholm/csv2db/internal/core"
	"github.com/JonMunkholm/csv2db/internal/logging"
	"github.com/go-chi/chi/v5"
)

var errFileTooLarge = errors.New("file too large")

// ImportResponse is the body of a successful import.
type ImportResponse struct {
	FileName string            `json:"fileName"`
	Results  []core.LoadResult `json:"results"`
}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status        string `json:"status"`
	ActiveImports int    `json:"activeImports"`
	MaxImports    int    `json:"maxImports"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:        "ok",
		ActiveImports: s.limiter.Active(),
		MaxImports:    s.limiter.MaxConcurrent(),
	})
}

// handleImport accepts a multipart upload in the "file" field and loads it.
// The upload keeps its original name because table names derive from it.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	maxSize := s.cfg.Upload.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.respondError(w, r, fmt.Errorf("%w: limit %d bytes", errFileTooLarge, tooLarge.Limit), 0)
			return
		}
		s.respondError(w, r, fmt.Errorf("no file provided: %w", err), http.StatusBadRequest)
		return
	}
	defer file.Close()

	name := uploadName(header.Filename)
	if name == "" {
		s.respondError(w, r, fmt.Errorf("%w: missing file name", core.ErrUnsupportedFormat), http.StatusBadRequest)
		return
	}

	dir, err := os.MkdirTemp(s.cfg.Import.StagingDir, "upload-")
	if err != nil {
		s.respondError(w, r, fmt.Errorf("create upload dir: %w", err), http.StatusInternalServerError)
		return
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, name)
	if err := saveUpload(path, file); err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	ctx := r.Context()
	if err := s.limiter.Acquire(ctx); err != nil {
		if errors.Is(err, core.ErrTooManyImports) {
			w.Header().Set("Retry-After", retryAfter(s.cfg.Upload.MaxWaitTime.Seconds()))
		}
		s.respondError(w, r, err, 0)
		return
	}
	defer s.limiter.Release()

	results, err := s.importer.Load(ctx, path)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	logging.FromContext(ctx).Info("import finished", "file", name, "files", len(results))
	writeJSON(w, http.StatusOK, ImportResponse{FileName: name, Results: results})
}

func (s *Server) handleTableInfo(w http.ResponseWriter, r *http.Request) {
	table := chi.URLParam(r, "table")

	schema, err := s.importer.TableInfo(r.Context(), table)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	writeJSON(w, http.StatusOK, schema)
}

// uploadName strips any client-side directory from a multipart file name.
// Browsers on Windows may send backslash-separated paths.
func uploadName(filename string) string {
	if i := strings.LastIndexAny(filename, `/\`); i >= 0 {
		filename = filename[i+1:]
	}
	if filename == "." || filename == ".." {
		return ""
	}
	return filename
}

func saveUpload(path string, src io.Reader) error {
	dst, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("save upload: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return fmt.Errorf("%w: limit %d bytes", errFileTooLarge, tooLarge.Limit)
		}
		return fmt.Errorf("save upload: %w", err)
	}
	return dst.Close()
}

func retryAfter(seconds float64) string {
	return strconv.Itoa(max(1, int(math.Ceil(seconds))))
}
