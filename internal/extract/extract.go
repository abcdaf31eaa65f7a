// Package extract turns uploaded CV documents into plain text suitable for
// prompting. Supported formats are PDF, DOCX and plain text.
package extract

import (
	"bytes"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

// MinTextChars is the shortest normalized text accepted as a usable CV.
// Anything shorter is almost certainly a scan or a broken upload.
const MinTextChars = 100

var (
	// ErrUnsupportedFormat means the document's type is not one we extract.
	ErrUnsupportedFormat = errors.New("unsupported document format")
	// ErrEmptyDocument means extraction produced no usable text.
	ErrEmptyDocument = errors.New("document contains no extractable text")
)

const (
	mimePDF   = "application/pdf"
	mimeDOCX  = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	mimePlain = "text/plain"
)

// Text extracts normalized plain text from the document bytes. mimeType and
// fileName are both hints; when they disagree with the bytes the bytes win.
func Text(data []byte, mimeType, fileName string) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyDocument
	}

	kind := detectKind(data, mimeType, fileName)

	var (
		raw string
		err error
	)
	switch kind {
	case mimePDF:
		raw, err = pdfText(data)
	case mimeDOCX:
		raw, err = docxText(data)
	case mimePlain:
		raw = string(data)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, kind)
	}
	if err != nil {
		return "", err
	}

	text := Normalize(raw)
	if len(text) < MinTextChars {
		return "", ErrEmptyDocument
	}
	return text, nil
}

// detectKind resolves the effective document type from the declared MIME
// type, the file extension and the leading bytes, in that order of trust
// reversed: magic bytes override a generic or wrong declaration.
func detectKind(data []byte, mimeType, fileName string) string {
	declared := normalizeMime(mimeType)

	// PDF magic is unambiguous.
	if bytes.HasPrefix(data, []byte("%PDF-")) {
		return mimePDF
	}

	// DOCX is a zip container; a zip with a DOCX declaration or extension is
	// treated as DOCX, any other zip is unsupported.
	if bytes.HasPrefix(data, []byte("PK\x03\x04")) {
		if declared == mimeDOCX || hasExt(fileName, ".docx") {
			return mimeDOCX
		}
		if declared == "" || declared == "application/zip" || declared == "application/octet-stream" {
			// Probe the container: real DOCX always carries word/document.xml
			// near the start of the central directory, but checking the first
			// local header name is enough to separate DOCX from arbitrary zips.
			if looksLikeOOXML(data) {
				return mimeDOCX
			}
		}
		return "application/zip"
	}

	switch declared {
	case mimePDF, mimeDOCX, mimePlain:
		return declared
	}

	switch {
	case hasExt(fileName, ".pdf"):
		return mimePDF
	case hasExt(fileName, ".docx"):
		return mimeDOCX
	case hasExt(fileName, ".txt"):
		return mimePlain
	}

	sniffed := http.DetectContentType(data)
	if base, _, err := mime.ParseMediaType(sniffed); err == nil {
		if strings.HasPrefix(base, "text/") {
			return mimePlain
		}
		return base
	}
	return sniffed
}

func normalizeMime(m string) string {
	base, _, err := mime.ParseMediaType(strings.TrimSpace(m))
	if err != nil {
		return strings.ToLower(strings.TrimSpace(m))
	}
	if strings.HasPrefix(base, "text/") {
		return mimePlain
	}
	return base
}

func hasExt(name, ext string) bool {
	return strings.HasSuffix(strings.ToLower(name), ext)
}

// looksLikeOOXML checks the first local file header of a zip for the
// [Content_Types].xml entry every OOXML package starts with.
func looksLikeOOXML(data []byte) bool {
	if len(data) < 30 {
		return false
	}
	nameLen := int(data[26]) | int(data[27])<<8
	if len(data) < 30+nameLen {
		return false
	}
	name := string(data[30 : 30+nameLen])
	return name == "[Content_Types].xml" || strings.HasPrefix(name, "word/")
}

func pdfText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	var sb strings.Builder
	pages := reader.NumPage()
	for i := 1; i <= pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			// A single unreadable page should not sink the document.
			continue
		}
		sb.WriteString(content)
		sb.WriteString("\n")
	}

	if sb.Len() == 0 {
		return "", ErrEmptyDocument
	}
	return sb.String(), nil
}

func docxText(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}
	defer doc.Close()

	content := doc.Editable().GetContent()
	return stripXMLTags(content), nil
}

// stripXMLTags flattens the raw document.xml body into text, inserting line
// breaks at paragraph boundaries.
func stripXMLTags(s string) string {
	s = strings.ReplaceAll(s, "</w:p>", "\n")
	s = strings.ReplaceAll(s, "<w:br/>", "\n")
	s = strings.ReplaceAll(s, "<w:tab/>", " ")

	var sb strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			sb.WriteRune(r)
		}
	}
	out := sb.String()
	out = strings.ReplaceAll(out, "&amp;", "&")
	out = strings.ReplaceAll(out, "&lt;", "<")
	out = strings.ReplaceAll(out, "&gt;", ">")
	out = strings.ReplaceAll(out, "&quot;", `"`)
	out = strings.ReplaceAll(out, "&apos;", "'")
	return out
}

// Normalize collapses whitespace runs, strips control characters and trims
// the result. Newlines are preserved as paragraph separators.
func Normalize(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))

	lastSpace := false
	lastNewline := false
	for _, r := range s {
		switch {
		case r == '\n' || r == '\r':
			if !lastNewline {
				sb.WriteByte('\n')
				lastNewline = true
				lastSpace = false
			}
		case unicode.IsSpace(r):
			if !lastSpace && !lastNewline {
				sb.WriteByte(' ')
				lastSpace = true
			}
		case unicode.IsControl(r) || r == '�':
			// drop
		default:
			sb.WriteRune(r)
			lastSpace = false
			lastNewline = false
		}
	}
	return strings.TrimSpace(sb.String())
}
