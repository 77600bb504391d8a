package ocr

import (
	"time"
)

const (
	StrategyOCR    = "ocr"
	StrategyVision = "vision-model"

	ModeGeneral = "general"
	ModeVehicle = "vehicle"

	DefaultLanguages = "jpn+eng"
)

type ExtractionRequest struct {
	ID        string `json:"id"`
	Filename  string `json:"filename"`
	Image     []byte `json:"-"`
	Strategy  string `json:"strategy"`
	Languages string `json:"languages,omitempty"`
	Mode      string `json:"mode,omitempty"`
}

type WordConfidence struct {
	Word       string  `json:"word"`
	Confidence float64 `json:"confidence"`
}

type ExtractionResult struct {
	Engine        string           `json:"engine"`
	TextOriginal  string           `json:"text_original,omitempty"`
	TextProcessed string           `json:"text_processed,omitempty"`
	RawResponse   string           `json:"-"`
	Words         []WordConfidence `json:"words,omitempty"`
}

// NormalizedRecord holds the structured fields recovered from vision-model
// output. When recovery fails, Degraded is set and Fields carries the raw
// model text under "text_content" plus a diagnostic under "analysis".
type NormalizedRecord struct {
	Fields   map[string]string `json:"fields"`
	Degraded bool              `json:"degraded"`
}

type ProcessingInfo struct {
	TotalPlatesFound int      `json:"total_plates_found"`
	ModelPlate       string   `json:"model_plate,omitempty"`
	RegexPlates      []string `json:"regex_plates,omitempty"`
	Confidence       string   `json:"confidence,omitempty"`
}

// ResultRecord is written once per processed request and is both the HTTP
// response payload and the persisted record body.
type ResultRecord struct {
	ID             string            `json:"id"`
	Filename       string            `json:"filename"`
	Timestamp      string            `json:"timestamp"`
	Strategy       string            `json:"strategy"`
	Mode           string            `json:"mode,omitempty"`
	Languages      string            `json:"languages,omitempty"`
	Engine         string            `json:"engine"`
	TextOriginal   string            `json:"text_original,omitempty"`
	TextProcessed  string            `json:"text_processed,omitempty"`
	Fields         map[string]string `json:"analysis_result,omitempty"`
	Degraded       bool              `json:"degraded,omitempty"`
	VehicleNumbers []string          `json:"vehicle_numbers"`
	Words          []WordConfidence  `json:"words,omitempty"`
	Processing     ProcessingInfo    `json:"processing_info"`
	CreatedAt      time.Time         `json:"created_at"`
}
