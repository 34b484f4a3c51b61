package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/mindengage-quizgen/internal/storage"
)

// MountPackages serves stored packages: GET /packages/* returns the blob at
// packages/<whatever follows>.
func MountPackages(r chi.Router, bs storage.BlobStore) {
	r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
		key := storage.PackagePrefix + chi.URLParam(r, "*")
		rc, err := bs.Get(key)
		switch {
		case errors.Is(err, storage.ErrNotFound), errors.Is(err, storage.ErrInvalidKey):
			http.Error(w, "not found", http.StatusNotFound)
			return
		case err != nil:
			http.Error(w, "store error: "+err.Error(), http.StatusInternalServerError)
			return
		}
		defer rc.Close()
		w.Header().Set("Content-Type", "application/zip")
		_, _ = io.Copy(w, rc)
	})
}
