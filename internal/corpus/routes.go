package corpus

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kakuhq/kaku/internal/auth"
	"github.com/kakuhq/kaku/internal/httpx"
	"github.com/kakuhq/kaku/internal/style"
)

const (
	maxUploadBytes = 32 << 20
	maxFileBytes   = 10 << 20
)

// RegisterRoutes mounts the document and style API routes. Callers are
// expected to have resolved a non-anonymous session.
func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/api/documents", func(r chi.Router) {
		r.Post("/", handleUpload(svc))
		r.Get("/", handleList(svc))
		r.Delete("/", handleClear(svc))
		r.Get("/stats", handleStats(svc))
		r.Get("/{id}", handleGet(svc))
		r.Delete("/{id}", handleDelete(svc))
	})
	r.Get("/api/style/profile", handleProfile(svc))
}

func owner(r *http.Request) string {
	return auth.FromContext(r.Context()).UserID
}

func handleUpload(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			httpx.WriteError(w, http.StatusBadRequest, "invalid multipart upload")
			return
		}
		headers := r.MultipartForm.File["files"]
		if len(headers) == 0 {
			httpx.WriteError(w, http.StatusBadRequest, "at least one file is required in field \"files\"")
			return
		}

		files := make([]File, 0, len(headers))
		for _, fh := range headers {
			data, err := readPart(fh)
			if err != nil {
				httpx.WriteError(w, http.StatusBadRequest, fmt.Sprintf("reading %s: %v", fh.Filename, err))
				return
			}
			files = append(files, File{Name: fh.Filename, Data: data})
		}

		result, err := svc.Upload(r.Context(), owner(r), files)
		if errors.Is(err, ErrNoDocumentsProcessed) {
			httpx.WriteJSON(w, http.StatusUnprocessableEntity, result)
			return
		}
		if err != nil {
			httpx.WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}
		httpx.WriteJSON(w, http.StatusCreated, result)
	}
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	if fh.Size > maxFileBytes {
		return nil, fmt.Errorf("file exceeds %d bytes", maxFileBytes)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, maxFileBytes))
}

// documentSummary is a document without its content and chunks.
type documentSummary struct {
	ID       string        `json:"id"`
	Title    string        `json:"title"`
	Metadata Metadata      `json:"metadata"`
	Style    style.Metrics `json:"styleMetrics"`
}

func handleList(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		docs, err := svc.List(r.Context(), owner(r))
		if err != nil {
			httpx.WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}
		out := make([]documentSummary, len(docs))
		for i, d := range docs {
			out[i] = documentSummary{ID: d.ID, Title: d.Title, Metadata: d.Metadata, Style: d.Style}
		}
		httpx.WriteJSON(w, http.StatusOK, out)
	}
}

func handleGet(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc, err := svc.Get(r.Context(), owner(r), chi.URLParam(r, "id"))
		if errors.Is(err, ErrNotFound) {
			httpx.WriteError(w, http.StatusNotFound, err.Error())
			return
		}
		if err != nil {
			httpx.WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}
		for i := range doc.Chunks {
			doc.Chunks[i].Embedding = nil
		}
		httpx.WriteJSON(w, http.StatusOK, doc)
	}
}

func handleDelete(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Delete(r.Context(), owner(r), chi.URLParam(r, "id")); err != nil {
			httpx.WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleClear(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Clear(r.Context(), owner(r)); err != nil {
			httpx.WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleStats(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, err := svc.Stats(r.Context(), owner(r))
		if err != nil {
			httpx.WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}
		httpx.WriteJSON(w, http.StatusOK, st)
	}
}

func handleProfile(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := svc.Profile(r.Context(), owner(r))
		if err != nil {
			httpx.WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}
		httpx.WriteJSON(w, http.StatusOK, p)
	}
}
