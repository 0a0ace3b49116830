package repository

import "errors"

var (
	// ErrInvalidImageURL indicates an invalid image URL
	ErrInvalidImageURL = errors.New("invalid image URL")

	// ErrImageNotFound indicates the image was not found
	ErrImageNotFound = errors.New("image not found")

	// ErrDetectionNotFound indicates the detection result was not found
	ErrDetectionNotFound = errors.New("detection result not found")

	// ErrMissingDetectionID indicates a detection result without an ID
	ErrMissingDetectionID = errors.New("detection result has no ID")
)
