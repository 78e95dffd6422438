package config

import (
	"context"
	"errors"
	"testing"

	"github.com/urfave/cli/v3"
)

func parse(t *testing.T, args ...string) Config {
	t.Helper()
	var cfg Config
	cmd := &cli.Command{
		Name:  "test",
		Flags: Flags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg = FromCommand(cmd)
			return nil
		},
	}
	if err := cmd.Run(context.Background(), append([]string{"test"}, args...)); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	return cfg
}

func TestFromCommand_Defaults(t *testing.T) {
	cfg := parse(t)

	if cfg.Port != "8111" {
		t.Errorf("Port = %q, want 8111", cfg.Port)
	}
	if cfg.GeminiAPIKey != "" {
		t.Errorf("GeminiAPIKey = %q, want empty", cfg.GeminiAPIKey)
	}
	if cfg.GeminiModel != "gemini-2.5-flash-lite" {
		t.Errorf("GeminiModel = %q", cfg.GeminiModel)
	}
	if cfg.GeminiMaxRetries != 0 {
		t.Errorf("GeminiMaxRetries = %d, want 0", cfg.GeminiMaxRetries)
	}
	if cfg.Store != StoreNone || cfg.Auth != AuthNone || cfg.OCREngine != OCRTesseract {
		t.Errorf("store/auth/ocr = %q/%q/%q", cfg.Store, cfg.Auth, cfg.OCREngine)
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "http://localhost:5173" {
		t.Errorf("AllowedOrigins = %v", cfg.AllowedOrigins)
	}
	if cfg.MaxUploadBytes() != 20<<20 {
		t.Errorf("MaxUploadBytes() = %d", cfg.MaxUploadBytes())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestFromCommand_EnvAndFlags(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "from-env")
	t.Setenv("STORE", "sqlite")
	t.Setenv("GEMINI_MAX_RETRIES", "2")

	cfg := parse(t, "--port", "9000", "--sqlite-path", "/tmp/plans.db")

	if cfg.GeminiAPIKey != "from-env" {
		t.Errorf("GeminiAPIKey = %q", cfg.GeminiAPIKey)
	}
	if cfg.Store != StoreSQLite || cfg.SQLitePath != "/tmp/plans.db" {
		t.Errorf("store = %q path = %q", cfg.Store, cfg.SQLitePath)
	}
	if cfg.Port != "9000" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.Retry().MaxRetries != 2 {
		t.Errorf("Retry().MaxRetries = %d", cfg.Retry().MaxRetries)
	}
}

func TestValidate(t *testing.T) {
	valid := Config{
		Store: StoreNone, OCREngine: OCRNone, Auth: AuthNone,
		ModelPath: "m.json", MaxUploadMB: 20,
	}
	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"valid", func(c *Config) {}, nil},
		{"unknown store", func(c *Config) { c.Store = "postgres" }, ErrInvalidStore},
		{"sqlite without path", func(c *Config) { c.Store = StoreSQLite }, ErrSQLitePathRequired},
		{"firestore without project", func(c *Config) { c.Store = StoreFirestore }, ErrProjectRequired},
		{"firestore with project", func(c *Config) { c.Store = StoreFirestore; c.Project = "p" }, nil},
		{"unknown ocr", func(c *Config) { c.OCREngine = "easyocr" }, ErrInvalidOCREngine},
		{"unknown auth", func(c *Config) { c.Auth = "basic" }, ErrInvalidAuthMode},
		{"no model", func(c *Config) { c.ModelPath = "" }, ErrModelPathRequired},
		{"zero upload", func(c *Config) { c.MaxUploadMB = 0 }, ErrInvalidUploadLimit},
		{"negative retries", func(c *Config) { c.GeminiMaxRetries = -1 }, ErrInvalidRetries},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}
