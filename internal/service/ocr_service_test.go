package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ocr-ai-service/internal/domain/ocr"
	"ocr-ai-service/internal/extract"
	"ocr-ai-service/internal/recognize"
	"ocr-ai-service/internal/repository"
)

type fakePreprocessor struct {
	out []byte
	err error
}

func (f *fakePreprocessor) Preprocess(src []byte) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.out, nil
}

type fakeExtractor struct {
	result *ocr.ExtractionResult
	err    error
	gotIn  extract.Input
}

func (f *fakeExtractor) Extract(ctx context.Context, in extract.Input) (*ocr.ExtractionResult, error) {
	f.gotIn = in
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func newTestService(t *testing.T, pre Preprocessor, engine, vision extract.Extractor) (*OCRService, repository.ResultStore) {
	t.Helper()
	store, err := repository.NewFileStore(t.TempDir())
	require.NoError(t, err)
	svc := NewOCRService(pre, engine, vision, recognize.NewPlateRecognizer(), store, zerolog.Nop())
	return svc, store
}

func TestProcess_OCRPath(t *testing.T) {
	pre := &fakePreprocessor{out: []byte("processed-bytes")}
	engine := &fakeExtractor{result: &ocr.ExtractionResult{
		Engine:        "tesseract",
		TextOriginal:  "plate 品川500あ1234",
		TextProcessed: "plate 品川500あ1234 clearly",
		Words:         []ocr.WordConfidence{{Word: "品川500あ1234", Confidence: 91.2}},
	}}
	svc, store := newTestService(t, pre, engine, &fakeExtractor{})

	record, err := svc.Process(context.Background(), ocr.ExtractionRequest{
		ID:       "20250101_120000",
		Filename: "20250101_120000_plate.png",
		Image:    []byte("image-bytes"),
		Strategy: ocr.StrategyOCR,
	})
	require.NoError(t, err)

	assert.Equal(t, "tesseract", record.Engine)
	assert.Equal(t, ocr.DefaultLanguages, record.Languages)
	assert.Contains(t, record.VehicleNumbers, "品川500あ1234")
	assert.Equal(t, []byte("processed-bytes"), engine.gotIn.Processed)
	assert.Equal(t, []byte("image-bytes"), engine.gotIn.Original)
	assert.Len(t, record.Words, 1)

	loaded, err := store.Load(context.Background(), record.ID)
	require.NoError(t, err)
	assert.Equal(t, record.VehicleNumbers, loaded.VehicleNumbers)
}

func TestProcess_VisionPathVehicleMode(t *testing.T) {
	vision := &fakeExtractor{result: &ocr.ExtractionResult{
		Engine:      "gpt-4o",
		RawResponse: "```json\n{\"vehicle_number\": \"AB12CD3456\", \"full_text\": \"plate AB12CD3456\", \"confidence\": \"high\"}\n```",
	}}
	svc, _ := newTestService(t, &fakePreprocessor{}, &fakeExtractor{}, vision)

	record, err := svc.Process(context.Background(), ocr.ExtractionRequest{
		ID:       "20250101_130000",
		Image:    []byte("image-bytes"),
		Strategy: ocr.StrategyVision,
		Mode:     ocr.ModeVehicle,
	})
	require.NoError(t, err)

	assert.False(t, record.Degraded)
	assert.Contains(t, record.VehicleNumbers, "AB12CD3456")
	assert.Equal(t, "AB12CD3456", record.Processing.ModelPlate)
	assert.Equal(t, "high", record.Processing.Confidence)

	// model-asserted plate already found by regex: still exactly one entry
	count := 0
	for _, c := range record.VehicleNumbers {
		if c == "AB12CD3456" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestProcess_VisionPathMergesModelPlateNotFoundByRegex(t *testing.T) {
	vision := &fakeExtractor{result: &ocr.ExtractionResult{
		Engine:      "gpt-4o",
		RawResponse: `{"vehicle_number": "かabc", "full_text": "no readable text"}`,
	}}
	svc, _ := newTestService(t, &fakePreprocessor{}, &fakeExtractor{}, vision)

	record, err := svc.Process(context.Background(), ocr.ExtractionRequest{
		ID:       "20250101_130100",
		Image:    []byte("image-bytes"),
		Strategy: ocr.StrategyVision,
		Mode:     ocr.ModeVehicle,
	})
	require.NoError(t, err)

	assert.Contains(t, record.VehicleNumbers, "かabc")
}

func TestProcess_VisionPathDegradedOutput(t *testing.T) {
	raw := "I cannot process this image."
	vision := &fakeExtractor{result: &ocr.ExtractionResult{Engine: "gpt-4o", RawResponse: raw}}
	svc, store := newTestService(t, &fakePreprocessor{}, &fakeExtractor{}, vision)

	record, err := svc.Process(context.Background(), ocr.ExtractionRequest{
		ID:       "20250101_140000",
		Image:    []byte("image-bytes"),
		Strategy: ocr.StrategyVision,
	})
	require.NoError(t, err, "json recovery failure must degrade, not error")

	assert.True(t, record.Degraded)
	assert.Equal(t, raw, record.Fields["text_content"])
	assert.NotEmpty(t, record.Fields["analysis"])

	// degraded runs still persist a record
	_, err = store.Load(context.Background(), record.ID)
	assert.NoError(t, err)
}

func TestProcess_DecodeFailureAbortsWithoutPersisting(t *testing.T) {
	decodeErr := fmt.Errorf("%w: bad header", ocr.ErrImageDecode)
	svc, store := newTestService(t, &fakePreprocessor{err: decodeErr}, &fakeExtractor{}, &fakeExtractor{})

	_, err := svc.Process(context.Background(), ocr.ExtractionRequest{
		ID:       "20250101_150000",
		Image:    []byte("junk"),
		Strategy: ocr.StrategyOCR,
	})
	assert.ErrorIs(t, err, ocr.ErrImageDecode)

	_, err = store.Load(context.Background(), "20250101_150000")
	assert.ErrorIs(t, err, ocr.ErrNotFound)
}

func TestProcess_EngineFailureAbortsWithoutPersisting(t *testing.T) {
	engineErr := fmt.Errorf("%w: original image: boom", ocr.ErrOCREngine)
	engine := &fakeExtractor{err: engineErr}
	svc, store := newTestService(t, &fakePreprocessor{out: []byte("p")}, engine, &fakeExtractor{})

	_, err := svc.Process(context.Background(), ocr.ExtractionRequest{
		ID:       "20250101_160000",
		Image:    []byte("image"),
		Strategy: ocr.StrategyOCR,
	})
	assert.ErrorIs(t, err, ocr.ErrOCREngine)

	_, err = store.Load(context.Background(), "20250101_160000")
	assert.ErrorIs(t, err, ocr.ErrNotFound)
}

func TestProcess_RemoteFailureSurfacesUpstreamText(t *testing.T) {
	remoteErr := fmt.Errorf("%w: API error 429: rate limited", ocr.ErrRemoteExtraction)
	vision := &fakeExtractor{err: remoteErr}
	svc, _ := newTestService(t, &fakePreprocessor{}, &fakeExtractor{}, vision)

	_, err := svc.Process(context.Background(), ocr.ExtractionRequest{
		Image:    []byte("image"),
		Strategy: ocr.StrategyVision,
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, ocr.ErrRemoteExtraction)
	assert.Contains(t, err.Error(), "rate limited")
}

func TestProcess_UnknownStrategy(t *testing.T) {
	svc, _ := newTestService(t, &fakePreprocessor{}, &fakeExtractor{}, &fakeExtractor{})

	_, err := svc.Process(context.Background(), ocr.ExtractionRequest{
		Image:    []byte("image"),
		Strategy: "telepathy",
	})

	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestProcess_MissingImage(t *testing.T) {
	svc, _ := newTestService(t, &fakePreprocessor{}, &fakeExtractor{}, &fakeExtractor{})

	_, err := svc.Process(context.Background(), ocr.ExtractionRequest{Strategy: ocr.StrategyOCR})

	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestFetch_UnknownID(t *testing.T) {
	svc, _ := newTestService(t, &fakePreprocessor{}, &fakeExtractor{}, &fakeExtractor{})

	_, err := svc.Fetch(context.Background(), "20990101_000000")

	assert.ErrorIs(t, err, ocr.ErrNotFound)
}

func TestFetch_EmptyID(t *testing.T) {
	svc, _ := newTestService(t, &fakePreprocessor{}, &fakeExtractor{}, &fakeExtractor{})

	_, err := svc.Fetch(context.Background(), "")

	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestProcess_VisionGeneralModeUsesTextContent(t *testing.T) {
	vision := &fakeExtractor{result: &ocr.ExtractionResult{
		Engine:      "gpt-4o",
		RawResponse: `{"text_content": "serial 1234-5678", "image_type": "document"}`,
	}}
	svc, _ := newTestService(t, &fakePreprocessor{}, &fakeExtractor{}, vision)

	record, err := svc.Process(context.Background(), ocr.ExtractionRequest{
		ID:       "20250101_170000",
		Image:    []byte("image"),
		Strategy: ocr.StrategyVision,
		Mode:     ocr.ModeGeneral,
	})
	require.NoError(t, err)

	assert.Contains(t, record.VehicleNumbers, "1234-5678")
	assert.Equal(t, ocr.ModeGeneral, record.Mode)
}
