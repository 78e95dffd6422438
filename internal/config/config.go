// Package config holds the server settings, read from command-line flags
// with environment-variable fallbacks.
package config

import (
	"github.com/urfave/cli/v3"

	"github.com/ai-nutricare/backend/internal/gemini"
)

// Store backends.
const (
	StoreNone      = "none"
	StoreMemory    = "memory"
	StoreSQLite    = "sqlite"
	StoreFirestore = "firestore"
)

// OCR engines.
const (
	OCRTesseract = "tesseract"
	OCRGemini    = "gemini"
	OCRNone      = "none"
)

// Auth modes.
const (
	AuthNone     = "none"
	AuthFirebase = "firebase"
)

// Config is the resolved server configuration.
type Config struct {
	Port string

	GeminiAPIKey     string
	GeminiModel      string
	GeminiMaxRetries int

	ModelPath         string
	ReferenceDataPath string
	FoodKBPath        string

	OCREngine    string
	TesseractCmd string
	PdftoppmCmd  string

	Store        string
	SQLitePath   string
	Project      string
	ReportBucket string

	Auth           string
	AllowedOrigins []string
	MaxUploadMB    int
}

// Flags returns the flags shared by every command that builds a pipeline.
func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "port", Value: "8111", Sources: cli.EnvVars("PORT"), Usage: "HTTP listen port"},
		&cli.StringFlag{Name: "gemini-api-key", Sources: cli.EnvVars("GEMINI_API_KEY"), Usage: "Gemini API key; plan endpoints are disabled without it"},
		&cli.StringFlag{Name: "gemini-model", Value: gemini.DefaultModel, Sources: cli.EnvVars("GEMINI_MODEL"), Usage: "Gemini model id"},
		&cli.IntFlag{Name: "gemini-max-retries", Value: 0, Sources: cli.EnvVars("GEMINI_MAX_RETRIES"), Usage: "retries for rate-limited or unavailable Gemini calls"},
		&cli.StringFlag{Name: "model-path", Value: "models/attention_lstm.json", Sources: cli.EnvVars("MODEL_PATH"), Usage: "exported risk model weights"},
		&cli.StringFlag{Name: "reference-data-path", Value: "data/X_final.npy", Sources: cli.EnvVars("REFERENCE_DATA_PATH"), Usage: "training matrix used for feature standardization"},
		&cli.StringFlag{Name: "food-kb-path", Value: "diet_kb.json", Sources: cli.EnvVars("FOOD_KB_PATH"), Usage: "food knowledge base JSON"},
		&cli.StringFlag{Name: "ocr-engine", Value: OCRTesseract, Sources: cli.EnvVars("OCR_ENGINE"), Usage: "scanned-report fallback: tesseract, gemini or none"},
		&cli.StringFlag{Name: "tesseract-cmd", Value: "tesseract", Sources: cli.EnvVars("TESSERACT_CMD"), Usage: "tesseract binary"},
		&cli.StringFlag{Name: "pdftoppm-cmd", Value: "pdftoppm", Sources: cli.EnvVars("PDFTOPPM_CMD"), Usage: "pdftoppm binary"},
		&cli.StringFlag{Name: "store", Value: StoreNone, Sources: cli.EnvVars("STORE"), Usage: "plan store: none, memory, sqlite or firestore"},
		&cli.StringFlag{Name: "sqlite-path", Value: "nutricare.db", Sources: cli.EnvVars("SQLITE_PATH"), Usage: "SQLite database file"},
		&cli.StringFlag{Name: "project", Sources: cli.EnvVars("GOOGLE_CLOUD_PROJECT"), Usage: "Google Cloud project for Firestore and Firebase"},
		&cli.StringFlag{Name: "report-bucket", Sources: cli.EnvVars("REPORT_BUCKET"), Usage: "GCS bucket for archiving uploaded reports"},
		&cli.StringFlag{Name: "auth", Value: AuthNone, Sources: cli.EnvVars("AUTH"), Usage: "request authentication: none or firebase"},
		&cli.StringSliceFlag{Name: "allowed-origins", Value: []string{"http://localhost:5173"}, Sources: cli.EnvVars("ALLOWED_ORIGINS"), Usage: "CORS origins"},
		&cli.IntFlag{Name: "max-upload-mb", Value: 20, Sources: cli.EnvVars("MAX_UPLOAD_MB"), Usage: "largest accepted report upload"},
	}
}

// FromCommand reads the flags defined by Flags.
func FromCommand(cmd *cli.Command) Config {
	return Config{
		Port:              cmd.String("port"),
		GeminiAPIKey:      cmd.String("gemini-api-key"),
		GeminiModel:       cmd.String("gemini-model"),
		GeminiMaxRetries:  cmd.Int("gemini-max-retries"),
		ModelPath:         cmd.String("model-path"),
		ReferenceDataPath: cmd.String("reference-data-path"),
		FoodKBPath:        cmd.String("food-kb-path"),
		OCREngine:         cmd.String("ocr-engine"),
		TesseractCmd:      cmd.String("tesseract-cmd"),
		PdftoppmCmd:       cmd.String("pdftoppm-cmd"),
		Store:             cmd.String("store"),
		SQLitePath:        cmd.String("sqlite-path"),
		Project:           cmd.String("project"),
		ReportBucket:      cmd.String("report-bucket"),
		Auth:              cmd.String("auth"),
		AllowedOrigins:    cmd.StringSlice("allowed-origins"),
		MaxUploadMB:       cmd.Int("max-upload-mb"),
	}
}

// Validate checks enumerated values and cross-field requirements.
func (c Config) Validate() error {
	switch c.Store {
	case StoreNone, StoreMemory:
	case StoreSQLite:
		if c.SQLitePath == "" {
			return ErrSQLitePathRequired
		}
	case StoreFirestore:
		if c.Project == "" {
			return ErrProjectRequired
		}
	default:
		return ErrInvalidStore
	}

	switch c.OCREngine {
	case OCRTesseract, OCRGemini, OCRNone:
	default:
		return ErrInvalidOCREngine
	}

	switch c.Auth {
	case AuthNone, AuthFirebase:
	default:
		return ErrInvalidAuthMode
	}

	if c.ModelPath == "" {
		return ErrModelPathRequired
	}
	if c.MaxUploadMB <= 0 {
		return ErrInvalidUploadLimit
	}
	if c.GeminiMaxRetries < 0 {
		return ErrInvalidRetries
	}
	return nil
}

// MaxUploadBytes is the upload limit in bytes.
func (c Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

// Retry returns the Gemini retry policy.
func (c Config) Retry() gemini.RetryConfig {
	return gemini.WithMaxRetries(c.GeminiMaxRetries)
}
