package input

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
)

func TestNormalizeTextPassesPlainTextThrough(t *testing.T) {
	req, err := NormalizeText("  Milk 2L\nBread\n", "tesco")
	if err != nil {
		t.Fatalf("NormalizeText failed: %v", err)
	}
	if req.Kind != KindText {
		t.Errorf("got kind %q", req.Kind)
	}
	if req.Text != "Milk 2L\nBread" {
		t.Errorf("got text %q", req.Text)
	}
	if req.Supermarket != "tesco" {
		t.Errorf("got supermarket %q", req.Supermarket)
	}
}

func TestNormalizeTextExtractsFromHTML(t *testing.T) {
	markup := `<html><head><style>li { color: red }</style></head><body>
		<nav>Home | Recipes</nav>
		<ul>
			<li>Milk 2L</li>
			<li>Bread</li>
		</ul>
		<footer>copyright</footer>
	</body></html>`

	req, err := NormalizeText(markup, "")
	if err != nil {
		t.Fatalf("NormalizeText failed: %v", err)
	}
	if !strings.Contains(req.Text, "Milk 2L") || !strings.Contains(req.Text, "Bread") {
		t.Errorf("list items lost: %q", req.Text)
	}
	if strings.Contains(req.Text, "color: red") || strings.Contains(req.Text, "Home | Recipes") {
		t.Errorf("noise elements survived extraction: %q", req.Text)
	}
	if strings.Contains(req.Text, "<li>") {
		t.Errorf("markup survived extraction: %q", req.Text)
	}
}

func TestNormalizeTextLeavesAnglyProseAlone(t *testing.T) {
	// A bare comparison is not markup.
	text := "chocolate < 70% cocoa"
	req, err := NormalizeText(text, "")
	if err != nil {
		t.Fatalf("NormalizeText failed: %v", err)
	}
	if req.Text != text {
		t.Errorf("got %q, want input unchanged", req.Text)
	}
}

func tinyPNG(t *testing.T) []byte {
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.Set(0, 0, color.White)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

func TestNormalizeImageAcceptsPNG(t *testing.T) {
	req, err := NormalizeImage(tinyPNG(t), "aldi")
	if err != nil {
		t.Fatalf("NormalizeImage failed: %v", err)
	}
	if req.Kind != KindImage {
		t.Errorf("got kind %q", req.Kind)
	}
	if req.ImageMIME != "image/png" {
		t.Errorf("got MIME %q", req.ImageMIME)
	}
	if len(req.Image) == 0 {
		t.Error("image bytes were dropped")
	}
}

func TestNormalizeImageRejectsGarbage(t *testing.T) {
	for name, data := range map[string][]byte{
		"empty":     nil,
		"not image": []byte("just some text"),
		"truncated": {0x89, 0x50, 0x4e},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := NormalizeImage(data, "")
			var media *UnsupportedMediaError
			if !errors.As(err, &media) {
				t.Fatalf("got %v, want UnsupportedMediaError", err)
			}
		})
	}
}

func TestDecodeImagePayload(t *testing.T) {
	raw := tinyPNG(t)
	encoded := base64.StdEncoding.EncodeToString(raw)

	for name, payload := range map[string]string{
		"bare base64": encoded,
		"data url":    "data:image/png;base64," + encoded,
	} {
		t.Run(name, func(t *testing.T) {
			data, err := DecodeImagePayload(payload)
			if err != nil {
				t.Fatalf("DecodeImagePayload failed: %v", err)
			}
			if !bytes.Equal(data, raw) {
				t.Error("decoded bytes do not match the original")
			}
		})
	}
}

func TestDecodeImagePayloadRejectsBadBase64(t *testing.T) {
	_, err := DecodeImagePayload("data:image/png;base64,@@@not-base64@@@")
	var media *UnsupportedMediaError
	if !errors.As(err, &media) {
		t.Fatalf("got %v, want UnsupportedMediaError", err)
	}
}
