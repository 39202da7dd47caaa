package crawler

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

func extractPDF(body []byte) (content *Content, err error) {
	// The pdf reader panics on some malformed files.
	defer func() {
		if rec := recover(); rec != nil {
			content, err = nil, fmt.Errorf("failed to parse PDF: %v", rec)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(body), int64(len(body)))
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}

	reader, err := r.GetPlainText()
	if err != nil {
		return nil, fmt.Errorf("failed to extract plain text: %w", err)
	}

	text, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read plain text: %w", err)
	}

	return &Content{
		TextContent: strings.TrimSpace(string(text)),
		Extractor:   "pdf",
		Metadata:    &ContentMetadata{},
	}, nil
}
