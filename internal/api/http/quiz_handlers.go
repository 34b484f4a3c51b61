package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log"
	"math/rand/v2"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/mind-engage/mindengage-quizgen/internal/config"
	"github.com/mind-engage/mindengage-quizgen/internal/generate"
	"github.com/mind-engage/mindengage-quizgen/internal/grading"
	"github.com/mind-engage/mindengage-quizgen/internal/ident"
	"github.com/mind-engage/mindengage-quizgen/internal/llm"
	"github.com/mind-engage/mindengage-quizgen/internal/pdftext"
	"github.com/mind-engage/mindengage-quizgen/internal/qti/export"
	"github.com/mind-engage/mindengage-quizgen/internal/qti/parser"
	"github.com/mind-engage/mindengage-quizgen/internal/quiz"
	"github.com/mind-engage/mindengage-quizgen/internal/storage"
)

const maxUpload = 32 << 20

type generateResp struct {
	Settings  quiz.Settings `json:"settings"`
	Rows      []quiz.Row    `json:"rows"`
	Requested int           `json:"requested"`
	Generated int           `json:"generated"`
	Short     bool          `json:"short"`
}

// POST /quizzes/generate (multipart: file=document.pdf or text=..., num_questions, total_marks)
func GenerateHandler(gen llm.Generator, qc config.Quiz, logger *log.Logger) http.HandlerFunc {
	if logger == nil {
		logger = log.Default()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(maxUpload); err != nil && !errors.Is(err, http.ErrNotMultipart) {
			http.Error(w, "bad form: "+err.Error(), http.StatusBadRequest)
			return
		}
		n, err := strconv.Atoi(strings.TrimSpace(r.FormValue("num_questions")))
		if err != nil || n < 1 {
			http.Error(w, "num_questions must be a positive integer", http.StatusBadRequest)
			return
		}
		if n > qc.MaxQuestions {
			http.Error(w, "num_questions exceeds "+strconv.Itoa(qc.MaxQuestions), http.StatusBadRequest)
			return
		}
		settings := qc.Defaults
		if v := strings.TrimSpace(r.FormValue("total_marks")); v != "" {
			total, err := strconv.ParseFloat(v, 64)
			if err != nil || total <= 0 {
				http.Error(w, "total_marks must be a positive number", http.StatusBadRequest)
				return
			}
			settings.PointsPerQuestion = quiz.PointsPerQuestion(total, n)
		}

		chunks, err := sourceChunks(r, qc)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		opts := generate.Options{SimpleRatio: qc.SimpleRatio, Logger: logger}
		if qc.Shuffle {
			opts.Rand = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))
		}
		res, err := generate.NewPipeline(gen, opts).Run(r.Context(), chunks, n)
		switch {
		case errors.Is(err, generate.ErrNoText):
			http.Error(w, "document has no extractable text", http.StatusUnprocessableEntity)
			return
		case err != nil:
			http.Error(w, "generation failed: "+err.Error(), http.StatusBadGateway)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(generateResp{
			Settings:  settings,
			Rows:      quiz.FromQuestions(res.Questions, settings.PointsPerQuestion),
			Requested: res.Requested,
			Generated: len(res.Questions),
			Short:     res.Short(),
		})
	}
}

// sourceChunks reads the uploaded PDF (page chunks) or the text field
// (rune chunks).
func sourceChunks(r *http.Request, qc config.Quiz) ([]string, error) {
	f, hdr, err := r.FormFile("file")
	switch {
	case err == nil:
		defer f.Close()
		pages, err := pdftext.Pages(f, hdr.Size)
		if err != nil {
			return nil, errors.New("pdf: " + err.Error())
		}
		return pdftext.Chunk(pages, qc.PagesPerChunk), nil
	case errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart):
		text := r.FormValue("text")
		if strings.TrimSpace(text) == "" {
			return nil, errors.New("file or text required")
		}
		return pdftext.SplitText(text, qc.ChunkRunes), nil
	default:
		return nil, err
	}
}

type exportReq struct {
	Settings *quiz.Settings `json:"settings,omitempty"`
	Rows     []quiz.Row     `json:"rows"`
}

type storedResp struct {
	Key    string          `json:"key"`
	URL    string          `json:"url"`
	Blob   string          `json:"blob"`
	Issues []quiz.RowIssue `json:"issues,omitempty"`
}

// POST /quizzes/export[?store=1]
func ExportHandler(bs storage.BlobStore, ids ident.Generator, defaults quiz.Settings, logger *log.Logger) http.HandlerFunc {
	if logger == nil {
		logger = log.Default()
	}
	if ids == nil {
		ids = ident.UUID{}
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req exportReq
		if err := json.NewDecoder(io.LimitReader(r.Body, maxUpload)).Decode(&req); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		settings := defaults
		if req.Settings != nil {
			settings = *req.Settings
		}
		qs, issues := quiz.RowsToQuestions(req.Rows)
		for _, is := range issues {
			logger.Printf("export: %s", is)
		}
		if len(qs) == 0 {
			http.Error(w, "no questions to export", http.StatusBadRequest)
			return
		}

		pkg, err := export.Export(qs, settings, ids)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if doc, err := parser.ReadPackage(pkg); err != nil {
			logger.Printf("export: self-check: %v", err)
		} else {
			for _, p := range grading.CheckDocument(doc) {
				logger.Printf("export: self-check: %s", p)
			}
		}

		if store, _ := strconv.ParseBool(r.URL.Query().Get("store")); store {
			if bs == nil {
				http.Error(w, "package store not configured", http.StatusServiceUnavailable)
				return
			}
			key, err := bs.Put(storage.PackageKey(ids.NewID()), bytes.NewReader(pkg))
			if err != nil {
				http.Error(w, "store error: "+err.Error(), http.StatusInternalServerError)
				return
			}
			blob, err := bs.URL(key)
			if err != nil {
				http.Error(w, "store error: "+err.Error(), http.StatusInternalServerError)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Location", "/"+key)
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(storedResp{Key: key, URL: "/" + key, Blob: blob, Issues: issues})
			return
		}

		w.Header().Set("Content-Type", "application/zip")
		w.Header().Set("Content-Disposition", `attachment; filename="quiz.zip"`)
		w.Header().Set("X-Quiz-Issues", strconv.Itoa(len(issues)))
		http.ServeContent(w, r, "quiz.zip", time.Now(), bytes.NewReader(pkg))
	}
}
