package http

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/mind-engage/mindengage-quizgen/internal/grading"
	"github.com/mind-engage/mindengage-quizgen/internal/qti"
	"github.com/mind-engage/mindengage-quizgen/internal/qti/parser"
	"github.com/mind-engage/mindengage-quizgen/internal/quiz"
)

type importResp struct {
	Filename string            `json:"filename"`
	Settings quiz.Settings     `json:"settings"`
	Rows     []quiz.Row        `json:"rows"`
	Problems []grading.Problem `json:"problems,omitempty"`
}

// POST /qti/import (multipart: file=package.zip)
func ImportQTIHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, hdr, err := r.FormFile("file")
		if err != nil {
			http.Error(w, "file required", http.StatusBadRequest)
			return
		}
		defer f.Close()

		b, err := io.ReadAll(io.LimitReader(f, maxUpload))
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		doc, err := parser.ReadPackage(b)
		if err != nil {
			http.Error(w, "package: "+err.Error(), http.StatusBadRequest)
			return
		}
		settings, rows := qti.MapToRows(doc)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(importResp{
			Filename: hdr.Filename,
			Settings: settings,
			Rows:     rows,
			Problems: grading.CheckDocument(doc),
		})
	}
}
