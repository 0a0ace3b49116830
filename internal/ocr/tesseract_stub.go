//go:build !cgo

package ocr

import "image"

type stubEngine struct{}

// NewEngine returns a stub engine when the binary is built without cgo.
// Recognition calls fail with ErrUnavailable.
func NewEngine(language string) (Engine, error) {
	return stubEngine{}, nil
}

func (stubEngine) Recognize(img image.Image) (string, error) {
	return "", ErrUnavailable
}

func (stubEngine) RecognizeRegion(img image.Image, r image.Rectangle) (string, error) {
	return "", ErrUnavailable
}

func (stubEngine) Available() bool { return false }

func (stubEngine) Close() error { return nil }
