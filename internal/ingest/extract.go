// Package ingest extracts plain text from uploaded job-ad files.
package ingest

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

// MaxFileSize bounds uploads; a job ad has no business being bigger.
const MaxFileSize = 10 << 20

// ExtractText returns the plain text of an uploaded file, dispatching on the
// filename extension. Supported: .txt, .md, .pdf, .docx.
func ExtractText(filename string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.New("file is empty")
	}
	if len(data) > MaxFileSize {
		return "", fmt.Errorf("file too large: %d bytes (limit %d)", len(data), MaxFileSize)
	}

	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".txt", ".md":
		if !utf8.Valid(data) {
			return "", errors.New("text file is not valid UTF-8")
		}
		return string(data), nil
	case ".pdf":
		return extractPDFText(data)
	case ".docx":
		return extractDocxText(data)
	default:
		return "", fmt.Errorf("unsupported file type: %q", ext)
	}
}

func extractPDFText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to read pdf: %w", err)
	}

	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, _ := page.GetPlainText(nil)
		b.WriteString(text)
	}
	return b.String(), nil
}

func extractDocxText(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to parse docx: %w", err)
	}
	defer doc.Close()

	content := doc.Editable().GetContent()
	if text := flattenDocxXML(content); text != "" {
		return text, nil
	}
	return strings.TrimSpace(content), nil
}

// flattenDocxXML keeps the character data of WordprocessingML content,
// turning paragraph and line-break elements into newlines.
func flattenDocxXML(content string) string {
	dec := xml.NewDecoder(strings.NewReader(content))
	var b strings.Builder
	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		switch t := tok.(type) {
		case xml.CharData:
			b.Write(t)
		case xml.EndElement:
			switch t.Name.Local {
			case "p", "br":
				b.WriteString("\n")
			case "tab":
				b.WriteString("\t")
			}
		}
	}
	return strings.TrimSpace(b.String())
}
