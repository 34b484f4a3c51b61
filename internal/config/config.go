package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/mind-engage/mindengage-quizgen/internal/llm"
	"github.com/mind-engage/mindengage-quizgen/internal/quiz"
)

type Config struct {
	HTTPAddr     string   `yaml:"http_addr" validate:"required"`
	BlobBasePath string   `yaml:"blob_base_path" validate:"required"`
	CORSOrigins  []string `yaml:"cors_origins"`

	LLM  llm.Config `yaml:"llm"`
	Quiz Quiz       `yaml:"quiz"`
}

// Quiz holds generation and export defaults.
type Quiz struct {
	PagesPerChunk int           `yaml:"pages_per_chunk" validate:"gte=1"`
	ChunkRunes    int           `yaml:"chunk_runes" validate:"gte=0"` // plain-text input, 0 = one chunk
	SimpleRatio   float64       `yaml:"simple_ratio" validate:"gt=0,lte=1"`
	Shuffle       bool          `yaml:"shuffle"`
	MaxQuestions  int           `yaml:"max_questions" validate:"gte=1"`
	Defaults      quiz.Settings `yaml:"defaults"`
}

func FromEnv() Config {
	def := quiz.DefaultSettings()
	return Config{
		HTTPAddr:     envOr("HTTP_ADDR", ":8080"),
		BlobBasePath: envOr("BLOB_BASE_PATH", "./data"),
		CORSOrigins:  csvOr("CORS_ORIGINS", "http://localhost:3000"),
		LLM: llm.Config{
			Provider:     envOr("LLM_PROVIDER", llm.ProviderOllama),
			BaseURL:      os.Getenv("LLM_BASE_URL"),
			Model:        os.Getenv("LLM_MODEL"),
			Temperature:  envFloat("LLM_TEMPERATURE", 0.7),
			Timeout:      envDuration("LLM_TIMEOUT", 2*time.Minute),
			APIKey:       os.Getenv("LLM_API_KEY"),
			TokenURL:     os.Getenv("LLM_TOKEN_URL"),
			ClientID:     os.Getenv("LLM_CLIENT_ID"),
			ClientSecret: os.Getenv("LLM_CLIENT_SECRET"),
		},
		Quiz: Quiz{
			PagesPerChunk: envInt("QUIZ_PAGES_PER_CHUNK", 5),
			ChunkRunes:    envInt("QUIZ_CHUNK_RUNES", 12000),
			SimpleRatio:   envFloat("QUIZ_SIMPLE_RATIO", 0.2),
			Shuffle:       envBool("QUIZ_SHUFFLE", false),
			MaxQuestions:  envInt("QUIZ_MAX_QUESTIONS", 50),
			Defaults: quiz.Settings{
				Title:             envOr("QUIZ_TITLE", def.Title),
				Ident:             envOr("QUIZ_IDENT", def.Ident),
				AttemptsAllowed:   envInt("QUIZ_ATTEMPTS", def.AttemptsAllowed),
				PointsPerQuestion: envFloat("QUIZ_POINTS", def.PointsPerQuestion),
			},
		},
	}
}

// Load reads an optional .env file, then the environment, then overlays the
// YAML file at path (or $QUIZGEN_CONFIG when path is empty) and validates
// the result.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	cfg := FromEnv()
	if path == "" {
		path = os.Getenv("QUIZGEN_CONFIG")
	}
	if path != "" {
		if err := overlayFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func overlayFile(cfg *Config, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	defer f.Close()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func Validate(cfg Config) error {
	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s must satisfy %s=%s", fe.Namespace(), fe.Tag(), fe.Param()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return err
	}
	return nil
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}
func envBool(k string, def bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return def
	}
}
func envInt(k string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(os.Getenv(k)))
	if err != nil {
		return def
	}
	return n
}
func envFloat(k string, def float64) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(os.Getenv(k)), 64)
	if err != nil {
		return def
	}
	return f
}
func envDuration(k string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(strings.TrimSpace(os.Getenv(k)))
	if err != nil {
		return def
	}
	return d
}
func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
