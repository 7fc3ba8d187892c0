package extractor

import (
	"context"
	"errors"
	"io"
	"testing"

	einoparser "github.com/cloudwego/eino/components/document/parser"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubParser fakes the eino PDF parser with canned pages or a canned error.
type stubParser struct {
	pages []string
	err   error
}

func (s *stubParser) Parse(_ context.Context, _ io.Reader, _ ...einoparser.Option) ([]*schema.Document, error) {
	if s.err != nil {
		return nil, s.err
	}
	docs := make([]*schema.Document, 0, len(s.pages))
	for _, p := range s.pages {
		docs = append(docs, &schema.Document{Content: p})
	}
	return docs, nil
}

func newStubExtractor(stub *stubParser) *PDFExtractor {
	return &PDFExtractor{parser: stub, log: zerolog.Nop()}
}

func TestExtractTextJoinsPagesWithNewlines(t *testing.T) {
	e := newStubExtractor(&stubParser{pages: []string{"Hello", "World"}})

	text, err := e.ExtractText(context.Background(), nil, "resume.pdf")
	require.NoError(t, err)
	assert.Equal(t, "Hello\nWorld\n", text)
}

func TestExtractTextSinglePage(t *testing.T) {
	e := newStubExtractor(&stubParser{pages: []string{"Jane Doe Senior Gopher"}})

	text, err := e.ExtractText(context.Background(), nil, "resume.pdf")
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe Senior Gopher\n", text)
}

func TestExtractTextNoRecoverableText(t *testing.T) {
	// Whitespace-only pages count as empty: scanned image PDFs often carry
	// a few stray blanks.
	e := newStubExtractor(&stubParser{pages: []string{"  ", "\t"}})

	_, err := e.ExtractText(context.Background(), nil, "scan.pdf")
	assert.ErrorIs(t, err, ErrNoRecoverableText)
}

func TestExtractTextZeroPages(t *testing.T) {
	e := newStubExtractor(&stubParser{pages: nil})

	_, err := e.ExtractText(context.Background(), nil, "empty.pdf")
	assert.ErrorIs(t, err, ErrNoRecoverableText)
}

func TestExtractTextParseFailure(t *testing.T) {
	parseErr := errors.New("bad xref table")
	e := newStubExtractor(&stubParser{err: parseErr})

	_, err := e.ExtractText(context.Background(), nil, "corrupt.pdf")
	assert.ErrorIs(t, err, ErrParseFailure)
	assert.NotErrorIs(t, err, ErrNoRecoverableText)
}

func TestNewPDFExtractor(t *testing.T) {
	e, err := NewPDFExtractor(context.Background(), zerolog.Nop())
	require.NoError(t, err)
	require.NotNil(t, e)
	require.NotNil(t, e.parser)
}
