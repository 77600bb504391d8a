package extract

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
	"github.com/rs/zerolog"

	"ocr-ai-service/internal/domain/ocr"
)

const tesseractEngine = "tesseract"

// TesseractExtractor runs the local engine twice per request, once on the
// preprocessed image and once on the original, so callers can compare the two
// readings. Word-level confidence comes from the preprocessed pass.
type TesseractExtractor struct {
	log zerolog.Logger
}

func NewTesseractExtractor(log zerolog.Logger) *TesseractExtractor {
	return &TesseractExtractor{log: log}
}

func (e *TesseractExtractor) Extract(ctx context.Context, in Input) (*ocr.ExtractionResult, error) {
	languages := in.Languages
	if languages == "" {
		languages = ocr.DefaultLanguages
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(strings.Split(languages, "+")...); err != nil {
		return nil, fmt.Errorf("%w: set language %q: %v", ocr.ErrOCREngine, languages, err)
	}
	// Single uniform block of text, the layout the engine is tuned for here.
	if err := client.SetPageSegMode(gosseract.PSM_SINGLE_BLOCK); err != nil {
		return nil, fmt.Errorf("%w: set page segmentation mode: %v", ocr.ErrOCREngine, err)
	}

	textProcessed, words, err := e.recognize(client, in.Processed, true)
	if err != nil {
		return nil, fmt.Errorf("%w: processed image: %v", ocr.ErrOCREngine, err)
	}

	textOriginal, _, err := e.recognize(client, in.Original, false)
	if err != nil {
		return nil, fmt.Errorf("%w: original image: %v", ocr.ErrOCREngine, err)
	}

	e.log.Debug().
		Str("languages", languages).
		Int("words", len(words)).
		Int("len_processed", len(textProcessed)).
		Int("len_original", len(textOriginal)).
		Msg("tesseract extraction done")

	return &ocr.ExtractionResult{
		Engine:        tesseractEngine,
		TextOriginal:  strings.TrimSpace(textOriginal),
		TextProcessed: strings.TrimSpace(textProcessed),
		Words:         words,
	}, nil
}

func (e *TesseractExtractor) recognize(client *gosseract.Client, image []byte, withWords bool) (string, []ocr.WordConfidence, error) {
	if err := client.SetImageFromBytes(image); err != nil {
		return "", nil, err
	}
	text, err := client.Text()
	if err != nil {
		return "", nil, err
	}

	var words []ocr.WordConfidence
	if withWords {
		boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
		if err != nil {
			return "", nil, err
		}
		words = make([]ocr.WordConfidence, 0, len(boxes))
		for _, box := range boxes {
			words = append(words, ocr.WordConfidence{
				Word:       box.Word,
				Confidence: box.Confidence,
			})
		}
	}
	return text, words, nil
}
