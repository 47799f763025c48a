// Package input normalizes raw text or image payloads into the canonical
// request unit the rest of the pipeline works on. It has no side effects.
package input

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"regexp"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"github.com/PuerkitoBio/goquery"
)

// Kind discriminates the payload of a Request.
type Kind string

const (
	KindText  Kind = "text"
	KindImage Kind = "image"
)

// Request is the canonical request unit produced by normalization.
type Request struct {
	Kind        Kind
	Text        string
	Image       []byte
	ImageMIME   string
	Supermarket string
}

// UnsupportedMediaError reports an image payload that cannot be decoded as
// one of the accepted raster formats.
type UnsupportedMediaError struct {
	Reason string
}

func (e *UnsupportedMediaError) Error() string {
	return fmt.Sprintf("unsupported image payload: %s", e.Reason)
}

func (e *UnsupportedMediaError) Kind() string { return "unsupported_media" }

func (e *UnsupportedMediaError) Hint() string {
	return "upload a PNG, JPEG, GIF or WebP photo of your list"
}

var htmlTagPattern = regexp.MustCompile(`<\s*[a-zA-Z][^>]*>`)

// NormalizeText produces a text request. Input that carries HTML markup
// (pasted from a web page or email) is reduced to its plain text first.
func NormalizeText(text, supermarket string) (Request, error) {
	text = strings.TrimSpace(text)
	if htmlTagPattern.MatchString(text) {
		extracted, err := extractText(text)
		if err == nil && strings.TrimSpace(extracted) != "" {
			text = strings.TrimSpace(extracted)
		}
	}
	return Request{Kind: KindText, Text: text, Supermarket: supermarket}, nil
}

// NormalizeImage validates that the payload decodes as an accepted raster
// format and produces an image request.
func NormalizeImage(data []byte, supermarket string) (Request, error) {
	if len(data) == 0 {
		return Request{}, &UnsupportedMediaError{Reason: "empty payload"}
	}
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Request{}, &UnsupportedMediaError{Reason: "not a recognized image format"}
	}
	return Request{
		Kind:        KindImage,
		Image:       data,
		ImageMIME:   "image/" + format,
		Supermarket: supermarket,
	}, nil
}

// DecodeImagePayload turns a base64 image payload, with or without a data-URL
// prefix ("data:image/png;base64,..."), into raw bytes.
func DecodeImagePayload(payload string) ([]byte, error) {
	if idx := strings.IndexByte(payload, ','); idx >= 0 && strings.HasPrefix(payload, "data:") {
		payload = payload[idx+1:]
	}
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(payload))
	if err != nil {
		return nil, &UnsupportedMediaError{Reason: "invalid base64 encoding"}
	}
	return data, nil
}

// extractText strips markup the way a reader would see the page: noise
// elements removed, block boundaries turned into line breaks.
func extractText(markup string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return "", err
	}
	doc.Find("script, style, nav, footer, iframe").Each(func(i int, s *goquery.Selection) {
		s.Remove()
	})

	var sb strings.Builder
	doc.Find("li, p, h1, h2, h3, td, div").Each(func(i int, s *goquery.Selection) {
		if line := strings.TrimSpace(ownText(s)); line != "" {
			sb.WriteString(line)
			sb.WriteByte('\n')
		}
	})
	if sb.Len() > 0 {
		return sb.String(), nil
	}
	return doc.Find("body").Text(), nil
}

// ownText returns the selection's direct text, so nested blocks do not get
// counted twice.
func ownText(s *goquery.Selection) string {
	var sb strings.Builder
	s.Contents().Each(func(i int, c *goquery.Selection) {
		if goquery.NodeName(c) == "#text" {
			sb.WriteString(c.Text())
		}
	})
	return sb.String()
}
