package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"ocr-ai-service/internal/domain/ocr"
	"ocr-ai-service/internal/extract"
	"ocr-ai-service/internal/recognize"
	"ocr-ai-service/internal/repository"
	"ocr-ai-service/internal/utils"
)

var (
	ErrInvalidInput = errors.New("invalid input")
)

// Preprocessor produces the secondary image the local OCR engine reads
// alongside the original.
type Preprocessor interface {
	Preprocess(src []byte) ([]byte, error)
}

// PlateRecognizer finds plate-number candidates in extracted text.
type PlateRecognizer interface {
	Recognize(text string) []string
}

type OCRService struct {
	preprocessor Preprocessor
	ocrEngine    extract.Extractor
	visionModel  extract.Extractor
	recognizer   PlateRecognizer
	store        repository.ResultStore
	log          zerolog.Logger
}

func NewOCRService(
	preprocessor Preprocessor,
	ocrEngine extract.Extractor,
	visionModel extract.Extractor,
	recognizer PlateRecognizer,
	store repository.ResultStore,
	log zerolog.Logger,
) *OCRService {
	return &OCRService{
		preprocessor: preprocessor,
		ocrEngine:    ocrEngine,
		visionModel:  visionModel,
		recognizer:   recognizer,
		store:        store,
		log:          log,
	}
}

// Process runs one end-to-end pipeline pass: preprocess (ocr path only),
// extract, normalize (vision path only), recognize plates, persist. Decode
// and engine failures abort with nothing persisted; JSON recovery failures
// degrade into a record carrying the raw model text.
func (s *OCRService) Process(ctx context.Context, req ocr.ExtractionRequest) (*ocr.ResultRecord, error) {
	if len(req.Image) == 0 {
		return nil, fmt.Errorf("%w: image is required", ErrInvalidInput)
	}
	switch req.Strategy {
	case ocr.StrategyOCR, ocr.StrategyVision:
	default:
		return nil, fmt.Errorf("%w: unknown strategy %q", ErrInvalidInput, req.Strategy)
	}
	mode := req.Mode
	if mode == "" {
		mode = ocr.ModeGeneral
	}
	languages := req.Languages
	if languages == "" {
		languages = ocr.DefaultLanguages
	}

	now := time.Now()
	id := req.ID
	if id == "" {
		id = utils.TimestampID(now)
	}

	s.log.Info().
		Str("id", id).
		Str("filename", req.Filename).
		Str("strategy", req.Strategy).
		Str("mode", mode).
		Msg("processing extraction request")

	var (
		result     *ocr.ExtractionResult
		normalized ocr.NormalizedRecord
		err        error
	)

	if req.Strategy == ocr.StrategyOCR {
		var processed []byte
		processed, err = s.preprocessor.Preprocess(req.Image)
		if err != nil {
			s.log.Error().Err(err).Str("id", id).Msg("image preprocessing failed")
			return nil, err
		}

		result, err = s.ocrEngine.Extract(ctx, extract.Input{
			Original:  req.Image,
			Processed: processed,
			Languages: languages,
		})
		if err != nil {
			s.log.Error().Err(err).Str("id", id).Msg("ocr extraction failed")
			return nil, err
		}
	} else {
		result, err = s.visionModel.Extract(ctx, extract.Input{
			Original: req.Image,
			Mode:     mode,
		})
		if err != nil {
			s.log.Error().Err(err).Str("id", id).Msg("vision-model extraction failed")
			return nil, err
		}

		normalized = extract.Normalize(result.RawResponse)
		if normalized.Degraded {
			s.log.Warn().Str("id", id).Msg("model output did not parse as JSON, keeping raw text")
		}
	}

	text := s.recognizerInput(req.Strategy, mode, result, normalized)
	regexPlates := s.recognizer.Recognize(text)
	modelPlate := normalized.Fields["vehicle_number"]
	plates := recognize.Merge(regexPlates, modelPlate)

	record := &ocr.ResultRecord{
		ID:             id,
		Filename:       req.Filename,
		Timestamp:      id,
		Strategy:       req.Strategy,
		Mode:           mode,
		Languages:      languages,
		Engine:         result.Engine,
		TextOriginal:   result.TextOriginal,
		TextProcessed:  result.TextProcessed,
		Fields:         normalized.Fields,
		Degraded:       normalized.Degraded,
		VehicleNumbers: plates,
		Words:          result.Words,
		Processing: ocr.ProcessingInfo{
			TotalPlatesFound: len(plates),
			ModelPlate:       modelPlate,
			RegexPlates:      regexPlates,
			Confidence:       normalized.Fields["confidence"],
		},
		CreatedAt: now,
	}
	if req.Strategy == ocr.StrategyVision {
		record.TextOriginal = text
	}

	if _, err := s.store.Save(ctx, record); err != nil {
		s.log.Error().Err(err).Str("id", id).Msg("failed to save result record")
		return nil, fmt.Errorf("failed to save result record: %w", err)
	}

	s.log.Info().
		Str("id", id).
		Str("engine", record.Engine).
		Int("plates_found", len(plates)).
		Bool("degraded", record.Degraded).
		Msg("extraction request processed")

	return record, nil
}

// Fetch loads a previously persisted record by its id.
func (s *OCRService) Fetch(ctx context.Context, id string) (*ocr.ResultRecord, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: record id is required", ErrInvalidInput)
	}
	return s.store.Load(ctx, id)
}

// recognizerInput picks the text the plate recognizer scans. The ocr path
// joins both reading variants; the vision path uses the field matching the
// analysis mode, falling back to whatever text the record carries.
func (s *OCRService) recognizerInput(strategy, mode string, result *ocr.ExtractionResult, normalized ocr.NormalizedRecord) string {
	if strategy == ocr.StrategyOCR {
		if result.TextOriginal == "" {
			return result.TextProcessed
		}
		if result.TextProcessed == "" {
			return result.TextOriginal
		}
		return result.TextProcessed + "\n" + result.TextOriginal
	}
	if mode == ocr.ModeVehicle {
		return normalized.Fields["full_text"]
	}
	return normalized.Fields["text_content"]
}
