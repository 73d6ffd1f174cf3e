package models

import "errors"

var (
	ErrValidation      = errors.New("validation error")          // 400
	ErrNotFound        = errors.New("barcode not found")         // 404
	ErrRender          = errors.New("barcode rendering failed")  // 500
	ErrArtifactMissing = errors.New("barcode artifact missing")  // 500
	ErrDuplicateID     = errors.New("barcode id already exists") // 500
)
