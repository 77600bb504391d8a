// Package imaging normalizes uploaded images for OCR: grayscale conversion,
// median-filter denoise and Otsu binarization, in that order. Each step is a
// pure transform; the source image is never mutated.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"

	"github.com/sunshineplan/imgconv"

	"ocr-ai-service/internal/domain/ocr"
)

// medianWindow is the side length of the denoise window. Kept small so
// salt-and-pepper noise goes away without blurring glyph edges.
const medianWindow = 3

type Preprocessor struct{}

func NewPreprocessor() *Preprocessor {
	return &Preprocessor{}
}

// Preprocess decodes src and returns a PNG-encoded single-channel binary
// image. A decode failure wraps ocr.ErrImageDecode and the caller is expected
// to abort the request.
func (p *Preprocessor) Preprocess(src []byte) ([]byte, error) {
	img, err := imgconv.Decode(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ocr.ErrImageDecode, err)
	}

	gray := toGray(img)
	denoised := medianFilter(gray, medianWindow)
	binary := binarize(denoised, otsuThreshold(denoised))

	var buf bytes.Buffer
	if err := imgconv.Write(&buf, binary, &imgconv.FormatOption{Format: imgconv.PNG}); err != nil {
		return nil, fmt.Errorf("encode processed image: %w", err)
	}
	return buf.Bytes(), nil
}

func toGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		out := image.NewGray(g.Bounds())
		copy(out.Pix, g.Pix)
		return out
	}
	bounds := img.Bounds()
	gray := image.NewGray(bounds)
	draw.Draw(gray, bounds, img, bounds.Min, draw.Src)
	return gray
}

// medianFilter applies a window×window median over the interior; border
// pixels are carried over untouched.
func medianFilter(src *image.Gray, window int) *image.Gray {
	bounds := src.Bounds()
	dst := image.NewGray(bounds)
	copy(dst.Pix, src.Pix)

	r := window / 2
	var histogram [256]int
	for y := bounds.Min.Y + r; y < bounds.Max.Y-r; y++ {
		for x := bounds.Min.X + r; x < bounds.Max.X-r; x++ {
			for i := range histogram {
				histogram[i] = 0
			}
			for dy := -r; dy <= r; dy++ {
				for dx := -r; dx <= r; dx++ {
					histogram[src.GrayAt(x+dx, y+dy).Y]++
				}
			}
			mid := (window*window)/2 + 1
			count := 0
			for v := 0; v < 256; v++ {
				count += histogram[v]
				if count >= mid {
					dst.Pix[dst.PixOffset(x, y)] = uint8(v)
					break
				}
			}
		}
	}
	return dst
}

// otsuThreshold picks the global threshold maximizing inter-class variance
// over the 256-bin histogram.
func otsuThreshold(img *image.Gray) uint8 {
	var histogram [256]int
	total := 0
	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			histogram[img.GrayAt(x, y).Y]++
			total++
		}
	}
	if total == 0 {
		return 0
	}

	sum := 0.0
	for v, count := range histogram {
		sum += float64(v) * float64(count)
	}

	var (
		sumBackground    float64
		weightBackground int
		maxVariance      float64
		threshold        uint8
	)
	for v := 0; v < 256; v++ {
		weightBackground += histogram[v]
		if weightBackground == 0 {
			continue
		}
		weightForeground := total - weightBackground
		if weightForeground == 0 {
			break
		}
		sumBackground += float64(v) * float64(histogram[v])

		meanBackground := sumBackground / float64(weightBackground)
		meanForeground := (sum - sumBackground) / float64(weightForeground)
		diff := meanBackground - meanForeground
		variance := float64(weightBackground) * float64(weightForeground) * diff * diff
		if variance > maxVariance {
			maxVariance = variance
			threshold = uint8(v)
		}
	}
	return threshold
}

func binarize(src *image.Gray, threshold uint8) *image.Gray {
	dst := image.NewGray(src.Bounds())
	for i, v := range src.Pix {
		if v > threshold {
			dst.Pix[i] = 255
		}
	}
	return dst
}
