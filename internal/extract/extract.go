// Package extract turns uploaded resume files into plain text.
package extract

import (
	"bytes"
	"errors"
	"fmt"
	"mime"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
	"mvdan.cc/xurls/v2"
)

type Format string

const (
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
	FormatHTML Format = "html"
	FormatText Format = "txt"
)

const docxMIME = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

var ErrUnsupported = errors.New("unsupported file type (PDF, DOCX, HTML and TXT allowed)")

// Document is the text extracted from one resume file.
type Document struct {
	Format Format
	Text   string
	Links  []string
}

// Detect picks the format from the declared content type, falling back to the
// file extension when the content type is missing or generic.
func Detect(filename, contentType string) (Format, error) {
	if mt, _, err := mime.ParseMediaType(contentType); err == nil {
		switch mt {
		case "application/pdf":
			return FormatPDF, nil
		case docxMIME:
			return FormatDOCX, nil
		case "text/html":
			return FormatHTML, nil
		case "text/plain":
			return FormatText, nil
		case "application/octet-stream":
		default:
			return "", ErrUnsupported
		}
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return FormatPDF, nil
	case ".docx":
		return FormatDOCX, nil
	case ".html", ".htm":
		return FormatHTML, nil
	case ".txt":
		return FormatText, nil
	}
	return "", ErrUnsupported
}

// Resume extracts text and links from data.
func Resume(format Format, data []byte) (Document, error) {
	var (
		text  string
		hrefs []string
		err   error
	)
	switch format {
	case FormatPDF:
		text, err = pdfText(data)
	case FormatDOCX:
		text, err = docxText(data)
	case FormatHTML:
		text, hrefs, err = htmlText(data)
	case FormatText:
		text = string(data)
	default:
		return Document{}, ErrUnsupported
	}
	if err != nil {
		return Document{}, fmt.Errorf("extract %s: %w", format, err)
	}
	text = tidy(text)
	return Document{Format: format, Text: text, Links: dedupe(append(Links(text), hrefs...))}, nil
}

// Links returns the URLs found in text in order of first appearance.
func Links(text string) []string {
	return dedupe(xurls.Strict().FindAllString(text, -1))
}

func pdfText(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() || page.V.Key("Contents").Kind() == pdf.Null {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// Skip pages that fail to extract
			continue
		}
		b.WriteString(text)
		b.WriteString("\n")
	}
	return b.String(), nil
}

func docxText(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	defer doc.Close()
	return stripXML(doc.Editable().GetContent())
}

// stripXML reduces WordprocessingML to its text, one paragraph per line.
func stripXML(content string) (string, error) {
	content = strings.ReplaceAll(content, "</w:p>", "</w:p>\n")
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return "", err
	}
	return doc.Text(), nil
}

func htmlText(data []byte) (string, []string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return "", nil, err
	}
	doc.Find("script, style, noscript").Remove()

	var hrefs []string
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
			hrefs = append(hrefs, href)
		}
	})

	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find("p, div, li, h1, h2, h3, h4, h5, h6, tr").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})

	body := doc.Find("body")
	if body.Length() == 0 {
		return doc.Text(), hrefs, nil
	}
	return body.Text(), hrefs, nil
}

// tidy trims every line and collapses runs of blank lines.
func tidy(s string) string {
	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, l := range lines {
		l = strings.TrimSpace(l)
		if l == "" {
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, l)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

func dedupe(items []string) []string {
	if len(items) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		it = strings.TrimRight(it, ".,;)")
		if it == "" || seen[it] {
			continue
		}
		seen[it] = true
		out = append(out, it)
	}
	return out
}
