package extraction

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

const (
	maxTextBytes     = 256 * 1024 // cap for extracted text
	xTolerance       = 2.0        // horizontal gap (pt) above which words are split
	minContentChars  = 50         // below this the PDF is treated as scanned
	pdfMagic         = "%PDF-"
	pdfMagicSearchIn = 1024
)

// PDFText is the direct text layer of a PDF.
type PDFText struct {
	PageCount int
	Pages     []string
	Text      string
}

// IsScanned reports whether the text layer is too thin to be useful.
func (p *PDFText) IsScanned() bool {
	return p == nil || utf8.RuneCountInString(p.Text) < minContentChars
}

// LooksLikePDF checks for the %PDF- header near the start of data.
func LooksLikePDF(data []byte) bool {
	head := data
	if len(head) > pdfMagicSearchIn {
		head = head[:pdfMagicSearchIn]
	}
	return bytes.Contains(head, []byte(pdfMagic))
}

// ReadTextLayer extracts text page by page, rebuilding each line from the
// positioned glyphs so that table columns stay separated. It never panics.
func ReadTextLayer(data []byte) (result *PDFText, err error) {
	result = &PDFText{}

	defer func() {
		if r := recover(); r != nil {
			err = &ExtractionError{
				Code:    ErrTextLayerFailed,
				Message: "panic during PDF text extraction",
				Method:  "text-layer",
				Cause:   fmt.Errorf("%v", r),
			}
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return result, &ExtractionError{Code: ErrInvalidDocument, Message: "open PDF reader", Method: "text-layer", Cause: err}
	}

	result.PageCount = reader.NumPage()
	size := 0
	for i := 1; i <= result.PageCount; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			result.Pages = append(result.Pages, "")
			continue
		}

		text, perr := pageText(page)
		if perr != nil {
			return result, &ExtractionError{Code: ErrTextLayerFailed, Message: fmt.Sprintf("read page %d", i), Method: "text-layer", Cause: perr}
		}
		if size+len(text) > maxTextBytes {
			text = truncateUTF8(text, maxTextBytes-size)
		}
		size += len(text)
		result.Pages = append(result.Pages, text)
		if size >= maxTextBytes {
			break
		}
	}

	result.Text = strings.TrimSpace(strings.Join(result.Pages, "\n"))
	return result, nil
}

// truncateUTF8 cuts s to at most n bytes without splitting a rune.
func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// pageText lays out one page row by row. Glyph runs closer than xTolerance
// are joined, wider gaps become a single space.
func pageText(page pdf.Page) (string, error) {
	rows, err := page.GetTextByRow()
	if err != nil {
		return page.GetPlainText(nil)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Position > rows[j].Position
	})

	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		words := row.Content
		sort.SliceStable(words, func(i, j int) bool {
			return words[i].X < words[j].X
		})

		var b strings.Builder
		prevEnd := 0.0
		for i, w := range words {
			if i > 0 && w.X-prevEnd > xTolerance && !strings.HasSuffix(b.String(), " ") {
				b.WriteByte(' ')
			}
			b.WriteString(w.S)
			prevEnd = w.X + w.W
		}
		if line := strings.TrimSpace(b.String()); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n"), nil
}
