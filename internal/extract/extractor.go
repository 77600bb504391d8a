// Package extract obtains raw text from images through one of two backends:
// a local tesseract engine or a remote vision-language model. It also recovers
// structured records from free-form model output.
package extract

import (
	"context"

	"ocr-ai-service/internal/domain/ocr"
)

// Input carries everything a single extraction needs. Processed is nil on the
// vision-model path, which never runs preprocessing.
type Input struct {
	Original  []byte
	Processed []byte
	Languages string
	Mode      string
}

// Extractor is implemented by both extraction strategies. Every backend call
// is attempted exactly once; there are no retries anywhere in the pipeline.
type Extractor interface {
	Extract(ctx context.Context, in Input) (*ocr.ExtractionResult, error)
}
