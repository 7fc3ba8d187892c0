package extractor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/document/parser/pdf"
	einoparser "github.com/cloudwego/eino/components/document/parser"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog"
)

// Extraction errors. Both surface to the user as the same "upload a different
// file" remediation; they are distinguished only for logging.
var (
	// ErrParseFailure means the document could not be opened or decoded at
	// all (corrupt file, unsupported format).
	ErrParseFailure = errors.New("document could not be parsed")
	// ErrNoRecoverableText means the document parsed but yielded no text,
	// which is typical of scanned image-only PDFs.
	ErrNoRecoverableText = errors.New("document contains no recoverable text")
)

// parseTimeout bounds a single extraction.
const parseTimeout = 30 * time.Second

// pageParser is the slice of the eino PDF parser the extractor needs.
// *pdf.PDFParser satisfies it; tests substitute a stub.
type pageParser interface {
	Parse(ctx context.Context, reader io.Reader, opts ...einoparser.Option) ([]*schema.Document, error)
}

// PDFExtractor extracts plain text from page-oriented PDF documents.
// Pages are walked in order and joined with a newline; fragments within a
// page are space-joined by the parser. The extractor has no side effects
// beyond transient buffers.
type PDFExtractor struct {
	parser pageParser
	log    zerolog.Logger
}

// NewPDFExtractor builds an extractor in per-page mode.
func NewPDFExtractor(ctx context.Context, log zerolog.Logger) (*PDFExtractor, error) {
	p, err := pdf.NewPDFParser(ctx, &pdf.Config{ToPages: true})
	if err != nil {
		return nil, fmt.Errorf("create pdf parser: %w", err)
	}

	return &PDFExtractor{
		parser: p,
		log:    log.With().Str("component", "pdf_extractor").Logger(),
	}, nil
}

// ExtractText reads the document and returns the concatenated page texts.
// The uri is used for logging only. There is no retry; on failure the caller
// prompts the user for a different file.
func (e *PDFExtractor) ExtractText(ctx context.Context, reader io.Reader, uri string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, parseTimeout)
	defer cancel()

	start := time.Now()

	docs, err := e.parser.Parse(ctx, reader, einoparser.WithURI(uri))
	if err != nil {
		e.log.Warn().Err(err).Str("uri", uri).Msg("PDF parse failed")
		return "", fmt.Errorf("%w: %v", ErrParseFailure, err)
	}

	var b strings.Builder
	for _, doc := range docs {
		b.WriteString(doc.Content)
		b.WriteString("\n")
	}
	text := b.String()

	if strings.TrimSpace(text) == "" {
		e.log.Warn().Str("uri", uri).Int("pages", len(docs)).Msg("No extractable text, likely a scanned document")
		return "", ErrNoRecoverableText
	}

	e.log.Info().
		Str("uri", uri).
		Int("pages", len(docs)).
		Int("chars", len(text)).
		Dur("took", time.Since(start)).
		Msg("Extracted resume text")

	return text, nil
}
