// Package ocr recognizes text in detected regions using Tesseract. The
// backend is selected at build time: with cgo the gosseract bindings are
// used, without cgo every recognition returns ErrUnavailable so the rest of
// the service keeps working.
package ocr

import (
	"errors"
	"image"
)

// ErrUnavailable is returned when the binary was built without the
// Tesseract backend.
var ErrUnavailable = errors.New("ocr: tesseract backend unavailable (built without cgo)")

// Engine recognizes text in images
type Engine interface {
	// Recognize extracts text from the whole image
	Recognize(img image.Image) (string, error)

	// RecognizeRegion extracts text from a rectangular part of the image
	RecognizeRegion(img image.Image, r image.Rectangle) (string, error)

	// Available reports whether the backend can perform recognition
	Available() bool

	Close() error
}
