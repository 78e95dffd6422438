package extraction

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"google.golang.org/genai"

	"github.com/ai-nutricare/backend/internal/gemini"
)

// OCRDPI is the rasterization resolution used for scanned reports.
const OCRDPI = 300

// OCREngine recognizes text in an image-only PDF, one string per page.
type OCREngine interface {
	Name() string
	Recognize(ctx context.Context, pdf []byte, dpi int) ([]string, error)
}

// NoopOCR disables the OCR fallback.
type NoopOCR struct{}

func (NoopOCR) Name() string { return "none" }

func (NoopOCR) Recognize(context.Context, []byte, int) ([]string, error) {
	return nil, nil
}

// TesseractOCR rasterizes pages with poppler's pdftoppm and recognizes each
// page image with the tesseract CLI.
type TesseractOCR struct {
	PdftoppmCmd  string
	TesseractCmd string
	Language     string
}

// NewTesseractOCR returns an engine using the given binaries, defaulting to
// the ones on PATH.
func NewTesseractOCR(pdftoppmCmd, tesseractCmd string) *TesseractOCR {
	if pdftoppmCmd == "" {
		pdftoppmCmd = "pdftoppm"
	}
	if tesseractCmd == "" {
		tesseractCmd = "tesseract"
	}
	return &TesseractOCR{PdftoppmCmd: pdftoppmCmd, TesseractCmd: tesseractCmd, Language: "eng"}
}

func (t *TesseractOCR) Name() string { return "tesseract" }

// Available reports whether both binaries resolve.
func (t *TesseractOCR) Available() error {
	for _, bin := range []string{t.PdftoppmCmd, t.TesseractCmd} {
		if _, err := exec.LookPath(bin); err != nil {
			return &ExtractionError{Code: ErrOCRUnavailable, Message: bin + " not found", Method: t.Name(), Cause: err}
		}
	}
	return nil
}

func (t *TesseractOCR) Recognize(ctx context.Context, pdf []byte, dpi int) ([]string, error) {
	if err := t.Available(); err != nil {
		return nil, err
	}

	dir, err := os.MkdirTemp("", "nutricare-ocr-")
	if err != nil {
		return nil, fmt.Errorf("create OCR workdir: %w", err)
	}
	defer os.RemoveAll(dir)

	input := filepath.Join(dir, "report.pdf")
	if err := os.WriteFile(input, pdf, 0o600); err != nil {
		return nil, fmt.Errorf("write OCR input: %w", err)
	}

	prefix := filepath.Join(dir, "page")
	raster := exec.CommandContext(ctx, t.PdftoppmCmd, "-r", strconv.Itoa(dpi), "-png", input, prefix)
	if out, err := raster.CombinedOutput(); err != nil {
		return nil, &ExtractionError{Code: ErrOCRFailed, Message: "rasterize PDF: " + strings.TrimSpace(string(out)), Method: t.Name(), Cause: err}
	}

	images, err := filepath.Glob(prefix + "-*.png")
	if err != nil {
		return nil, fmt.Errorf("list page images: %w", err)
	}
	// pdftoppm zero-pads page numbers to a common width
	sort.Strings(images)

	pages := make([]string, 0, len(images))
	for _, img := range images {
		cmd := exec.CommandContext(ctx, t.TesseractCmd, img, "stdout", "-l", t.Language)
		out, err := cmd.Output()
		if err != nil {
			return nil, &ExtractionError{Code: ErrOCRFailed, Message: "recognize " + filepath.Base(img), Method: t.Name(), Cause: err}
		}
		pages = append(pages, string(out))
	}
	return pages, nil
}

type jsonGenerator interface {
	GenerateJSON(ctx context.Context, req gemini.Request) (string, error)
}

// GeminiOCR transcribes a scanned report with a multimodal Gemini call.
// Rasterization happens server side, so dpi is only a hint in the prompt.
type GeminiOCR struct {
	client jsonGenerator
}

// NewGeminiOCR creates a GeminiOCR backed by client.
func NewGeminiOCR(client jsonGenerator) *GeminiOCR {
	return &GeminiOCR{client: client}
}

func (g *GeminiOCR) Name() string { return "gemini" }

var transcriptionSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"pages": {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
	},
	Required: []string{"pages"},
}

const transcriptionPrompt = `Transcribe this scanned laboratory report exactly as printed, as if it were scanned at %d DPI.
Keep every test name, value, H/L flag, unit and reference range on the same line as printed.
Do not summarize, correct or interpret anything.
Return JSON: {"pages": ["<page 1 text>", "<page 2 text>", ...]}`

func (g *GeminiOCR) Recognize(ctx context.Context, pdf []byte, dpi int) ([]string, error) {
	if g.client == nil {
		return nil, &ExtractionError{Code: ErrOCRUnavailable, Message: "Gemini client not configured", Method: g.Name()}
	}

	text, err := g.client.GenerateJSON(ctx, gemini.Request{
		Prompt:       fmt.Sprintf(transcriptionPrompt, dpi),
		Document:     pdf,
		DocumentMIME: "application/pdf",
		Schema:       transcriptionSchema,
		Temperature:  0,
	})
	if err != nil {
		return nil, &ExtractionError{Code: ErrOCRFailed, Message: "Gemini transcription", Method: g.Name(), Cause: err}
	}

	var resp struct {
		Pages []string `json:"pages"`
	}
	if err := gemini.DecodeJSON(text, &resp); err != nil {
		return nil, &ExtractionError{Code: ErrOCRFailed, Message: "parse Gemini transcription", Method: g.Name(), Cause: err}
	}
	return resp.Pages, nil
}
