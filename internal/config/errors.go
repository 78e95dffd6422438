package config

import "errors"

var (
	ErrInvalidStore       = errors.New("STORE must be one of: none, memory, sqlite, firestore")
	ErrInvalidOCREngine   = errors.New("OCR_ENGINE must be one of: tesseract, gemini, none")
	ErrInvalidAuthMode    = errors.New("AUTH must be one of: none, firebase")
	ErrProjectRequired    = errors.New("GOOGLE_CLOUD_PROJECT is required for the firestore store")
	ErrSQLitePathRequired = errors.New("SQLITE_PATH is required for the sqlite store")
	ErrModelPathRequired  = errors.New("MODEL_PATH is required")
	ErrInvalidUploadLimit = errors.New("MAX_UPLOAD_MB must be positive")
	ErrInvalidRetries     = errors.New("GEMINI_MAX_RETRIES must not be negative")
)
