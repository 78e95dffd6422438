package extraction

import "fmt"

// ExtractionErrorCode represents specific text-extraction failure types.
type ExtractionErrorCode string

const (
	ErrInvalidDocument ExtractionErrorCode = "INVALID_DOCUMENT"
	ErrTextLayerFailed ExtractionErrorCode = "TEXT_LAYER_FAILED"
	ErrOCRUnavailable  ExtractionErrorCode = "OCR_UNAVAILABLE"
	ErrOCRFailed       ExtractionErrorCode = "OCR_FAILED"
)

// ExtractionError is a structured error for text-extraction failures. The
// text extractor logs these and degrades to empty text; they are surfaced
// only by the lower-level helpers.
type ExtractionError struct {
	Code    ExtractionErrorCode
	Message string
	Method  string // "text-layer", "tesseract" or "gemini"
	Cause   error
}

func (e *ExtractionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}
