//go:build cgo

package ocr

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"
	"github.com/sirupsen/logrus"
)

type tesseractEngine struct {
	client   *gosseract.Client
	language string
}

// NewEngine creates a Tesseract-backed OCR engine. The language must be an
// installed tessdata language code such as "eng".
func NewEngine(language string) (Engine, error) {
	if language == "" {
		language = "eng"
	}
	client := gosseract.NewClient()
	if err := client.SetLanguage(language); err != nil {
		client.Close()
		return nil, fmt.Errorf("setting tesseract language %q: %w", language, err)
	}
	logrus.WithField("language", language).Debug("Tesseract OCR engine initialized")
	return &tesseractEngine{client: client, language: language}, nil
}

func (e *tesseractEngine) Recognize(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("encoding image for OCR: %w", err)
	}
	if err := e.client.SetImageFromBytes(buf.Bytes()); err != nil {
		return "", fmt.Errorf("loading image into tesseract: %w", err)
	}
	text, err := e.client.Text()
	if err != nil {
		return "", fmt.Errorf("tesseract recognition failed: %w", err)
	}
	return text, nil
}

func (e *tesseractEngine) RecognizeRegion(img image.Image, r image.Rectangle) (string, error) {
	r = r.Intersect(img.Bounds())
	if r.Empty() {
		return "", fmt.Errorf("region %v is outside the image bounds %v", r, img.Bounds())
	}
	return e.Recognize(imaging.Crop(img, r))
}

func (e *tesseractEngine) Available() bool { return true }

func (e *tesseractEngine) Close() error {
	return e.client.Close()
}
