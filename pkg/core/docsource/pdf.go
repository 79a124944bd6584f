// Package docsource turns scanned survey documents into the markdown-ish
// plain text the extraction layer consumes.
package docsource

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ContentSource yields the text of one survey return.
type ContentSource interface {
	FetchText(ctx context.Context) (string, error)
}

// PDFSource reads a digitized return from a local PDF file.
type PDFSource struct {
	Path string
}

func NewPDFSource(path string) *PDFSource {
	return &PDFSource{Path: path}
}

// FetchText extracts the plain text of every page, in page order.
func (p *PDFSource) FetchText(ctx context.Context) (string, error) {
	f, r, err := pdf.Open(p.Path)
	if err != nil {
		return "", fmt.Errorf("docsource: failed to open %s: %w", p.Path, err)
	}
	defer f.Close()

	var sb strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			fmt.Printf("⚠️ Skipping unreadable page %d of %s: %v\n", i, p.Path, err)
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("docsource: no extractable text in %s", p.Path)
	}
	return sb.String(), nil
}

// FileSource reads a pre-converted text or markdown return as-is. Useful
// when OCR happened upstream.
type FileSource struct {
	Path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

func (f *FileSource) FetchText(_ context.Context) (string, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return "", fmt.Errorf("docsource: failed to read %s: %w", f.Path, err)
	}
	return string(data), nil
}
