package main

import (
	"flag"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	api "github.com/mind-engage/mindengage-quizgen/internal/api/http"
	"github.com/mind-engage/mindengage-quizgen/internal/config"
	"github.com/mind-engage/mindengage-quizgen/internal/ident"
	"github.com/mind-engage/mindengage-quizgen/internal/llm"
	storage "github.com/mind-engage/mindengage-quizgen/internal/storage"
)

func main() {
	cfgPath := flag.String("config", "", "YAML config file (default $QUIZGEN_CONFIG)")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	gen, err := llm.New(cfg.LLM)
	if err != nil {
		log.Fatalf("llm: %v", err)
	}

	bs, err := storage.NewFSStore(cfg.BlobBasePath)
	if err != nil {
		log.Fatalf("blob store: %v", err)
	}

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		ExposedHeaders:   []string{"Content-Length", "Content-Disposition", "X-Quiz-Issues"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// generation waits on the model; everything else is quick
	genTimeout := cfg.LLM.Timeout*time.Duration(cfg.Quiz.MaxQuestions) + 30*time.Second
	r.With(middleware.Timeout(genTimeout)).
		Post("/quizzes/generate", api.GenerateHandler(gen, cfg.Quiz, log.Default()))

	r.Group(func(fr chi.Router) {
		fr.Use(middleware.Timeout(30 * time.Second))
		fr.Post("/quizzes/export", api.ExportHandler(bs, ident.UUID{}, cfg.Quiz.Defaults, log.Default()))
		fr.Post("/qti/import", api.ImportQTIHandler())
		fr.Route("/packages", func(pr chi.Router) {
			api.MountPackages(pr, bs)
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	log.Printf("listening on %s (llm=%s model=%s blobs=%s)", cfg.HTTPAddr, cfg.LLM.Provider, cfg.LLM.Model, cfg.BlobBasePath)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}
