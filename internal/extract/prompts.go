package extract

import "ocr-ai-service/internal/domain/ocr"

// Prompt templates for the vision-model path. Both demand a JSON-only answer;
// the model routinely ignores that, which is what the tolerant recovery in
// normalize.go is for.

const vehiclePrompt = `Analyze this image and extract the vehicle registration
plate number.

Important: respond in JSON only. Do not add any explanatory text.

Extract the following and return it in exactly this JSON shape:

1. Vehicle registration number (Japanese plate formats such as
   "品川500 あ 1234" or "品川500あ1234", chassis numbers such as
   "1234A123456", or international formats)
2. Vehicle type and manufacturer
3. Vehicle color
4. Any other notable vehicle information

{
    "vehicle_number": "detected registration number",
    "vehicle_type": "vehicle type and manufacturer",
    "color": "vehicle color",
    "other_info": "other notable vehicle information",
    "full_text": "all text readable in the image",
    "confidence": "confidence of the plate detection (high/medium/low)"
}

If no registration number is found, set vehicle_number to an empty string.
Do not include anything outside the JSON.`

const generalPrompt = `Analyze this image.

Important: respond in JSON only. Do not add any explanatory text.

Extract the following and return it in exactly this JSON shape:

1. All text contained in the image
2. Important information (dates, numbers, names and so on)
3. The kind of image and its content

{
    "text_content": "all text readable in the image",
    "important_info": "important information",
    "image_type": "the kind of image and its content",
    "analysis": "detailed analysis"
}

Do not include anything outside the JSON.`

func promptForMode(mode string) string {
	if mode == ocr.ModeVehicle {
		return vehiclePrompt
	}
	return generalPrompt
}
