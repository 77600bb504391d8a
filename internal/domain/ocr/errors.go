package ocr

import "errors"

var (
	// ErrImageDecode means the uploaded image could not be decoded; the
	// pipeline aborts before any extraction attempt.
	ErrImageDecode = errors.New("image decode failed")

	// ErrOCREngine means a local OCR invocation failed on either the
	// original or the preprocessed image; the request fails fully.
	ErrOCREngine = errors.New("ocr engine failure")

	// ErrRemoteExtraction means the vision-model call failed; the upstream
	// error text is carried in the wrap.
	ErrRemoteExtraction = errors.New("remote extraction failure")

	// ErrNotFound means no result record exists for the requested id.
	ErrNotFound = errors.New("result not found")
)
