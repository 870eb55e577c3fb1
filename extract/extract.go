// Package extract is the text-acquisition boundary. The engine evaluates
// structured records; this package owns the step before parsing, turning a
// document stream into raw text plus a confidence score, so richer
// extractors (OCR, PDF) can be plugged in without touching the parser.
package extract

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// Extraction is the raw material handed to the parser.
type Extraction struct {
	Text string
	// Confidence in [0,1]; how much the extractor trusts its own output.
	Confidence float64
	Pages      int
}

// Empty reports whether the extraction carries no usable text.
func (e Extraction) Empty() bool { return strings.TrimSpace(e.Text) == "" }

// Extractor turns a document stream into text.
type Extractor interface {
	Extract(ctx context.Context, r io.Reader) (Extraction, error)
}

// PlainText reads UTF-8 text as-is. Page breaks are form feeds. The only
// extractor the engine ships; image and PDF extraction sit behind the same
// interface but outside this repository.
type PlainText struct{}

var _ Extractor = PlainText{}

func (PlainText) Extract(ctx context.Context, r io.Reader) (Extraction, error) {
	if err := ctx.Err(); err != nil {
		return Extraction{}, err
	}
	raw, err := io.ReadAll(r)
	if err != nil {
		return Extraction{}, fmt.Errorf("reading document: %w", err)
	}

	text := string(raw)
	return Extraction{
		Text:       text,
		Confidence: 1.0,
		Pages:      strings.Count(text, "\f") + 1,
	}, nil
}
