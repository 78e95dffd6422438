// Package extraction turns lab-report PDFs into text and text into
// biomarker values.
package extraction

import (
	"context"
	"strings"

	"github.com/ai-nutricare/backend/internal/logging"
)

var logger = logging.Logger(logging.SourceExtraction)

// TextSource records where extracted text came from.
type TextSource string

const (
	SourceTextLayer TextSource = "text-layer"
	SourceOCR       TextSource = "ocr"
	SourceNone      TextSource = "none"
)

// TextResult is the outcome of TextExtractor.ExtractWithInfo.
type TextResult struct {
	Text      string
	PageCount int
	Source    TextSource
}

// TextExtractor converts PDF bytes into best-effort plain text: the direct
// text layer first, OCR when that layer is too thin.
type TextExtractor struct {
	ocr OCREngine
	dpi int
}

// NewTextExtractor creates a TextExtractor. A nil engine disables OCR.
func NewTextExtractor(ocr OCREngine) *TextExtractor {
	if ocr == nil {
		ocr = NoopOCR{}
	}
	return &TextExtractor{ocr: ocr, dpi: OCRDPI}
}

// Extract returns the report text. Failures are logged and yield whatever
// text was recovered, possibly none.
func (te *TextExtractor) Extract(ctx context.Context, data []byte) string {
	return te.ExtractWithInfo(ctx, data).Text
}

// ExtractWithInfo is Extract plus page count and source.
func (te *TextExtractor) ExtractWithInfo(ctx context.Context, data []byte) TextResult {
	layer, err := ReadTextLayer(data)
	if err != nil {
		logger.Warn("text layer extraction failed", "err", err)
	}

	result := TextResult{Text: layer.Text, PageCount: layer.PageCount, Source: SourceTextLayer}
	if !layer.IsScanned() {
		return result
	}

	logger.Info("text layer below threshold, running OCR",
		"chars", len(layer.Text), "pages", layer.PageCount, "engine", te.ocr.Name())

	pages, err := te.ocr.Recognize(ctx, data, te.dpi)
	if err != nil {
		logger.Warn("OCR failed", "engine", te.ocr.Name(), "err", err)
		if strings.TrimSpace(result.Text) == "" {
			result.Source = SourceNone
		}
		return result
	}
	if len(pages) == 0 {
		if strings.TrimSpace(result.Text) == "" {
			result.Source = SourceNone
		}
		return result
	}

	result.Text = strings.Join(pages, "\n")
	result.Source = SourceOCR
	if result.PageCount == 0 {
		result.PageCount = len(pages)
	}
	return result
}
