package saliency

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/nfnt/resize"

	"github.com/Brianleach11/Brain-Tumor-Classification/internal/classifier"
	"github.com/Brianleach11/Brain-Tumor-Classification/pkg/nn"
)

const (
	blurKernelSize      = 11
	thresholdPercentile = 80.0
	heatmapWeight       = 0.7
	originalWeight      = 0.3
)

// Renderer turns input gradients into a heatmap composited over the scan and
// persists the result under its output directory keyed by the uploaded
// filename. A second upload with the same name silently overwrites the first.
type Renderer struct {
	outputDir string
}

func New(outputDir string) *Renderer {
	return &Renderer{outputDir: outputDir}
}

func (r *Renderer) OutputDir() string {
	return r.outputDir
}

// Render computes the saliency composite for one prediction.
//
// The gradient of the target class probability is taken with respect to the
// input tensor, reduced to a per-pixel magnitude, masked to the centered
// circular brain region, min-max normalized within the mask, cut below the
// 80th percentile, blurred and color mapped, then alpha blended over the
// resized original. The raw upload bytes are written first and the encoded
// composite then replaces them at the same path.
func (r *Renderer) Render(model classifier.Classifier, input *nn.Tensor, classIndex int, size int, original image.Image, rawUpload []byte, filename string) (image.Image, string, error) {
	grad, err := model.InputGradient(input, classIndex)
	if err != nil {
		return nil, "", err
	}

	grid := grad.ChannelMaxAbs()
	grid = resizeBilinear(grid, size, size)

	mask := circularMask(size, size)
	normalizeWithinMask(grid, mask)

	threshold := maskedPercentile(grid, mask, thresholdPercentile)
	thresholdBelow(grid, threshold)

	grid = gaussianBlur(grid, blurKernelSize)

	base := resize.Resize(uint(size), uint(size), original, resize.Lanczos3)

	composite := image.NewRGBA(image.Rect(0, 0, size, size))
	baseBounds := base.Bounds()
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			hr, hg, hb := jet(grid[y][x])
			or, og, ob, _ := base.At(baseBounds.Min.X+x, baseBounds.Min.Y+y).RGBA()

			idx := composite.PixOffset(x, y)
			composite.Pix[idx+0] = blend(hr, uint8(or>>8))
			composite.Pix[idx+1] = blend(hg, uint8(og>>8))
			composite.Pix[idx+2] = blend(hb, uint8(ob>>8))
			composite.Pix[idx+3] = 255
		}
	}

	path, err := r.write(composite, rawUpload, filename)
	if err != nil {
		return nil, "", err
	}

	return composite, path, nil
}

func blend(heat, orig uint8) uint8 {
	v := heatmapWeight*float64(heat) + originalWeight*float64(orig)
	if v > 255 {
		v = 255
	}
	return uint8(v)
}

func (r *Renderer) write(composite image.Image, rawUpload []byte, filename string) (string, error) {
	if err := os.MkdirAll(r.outputDir, 0o755); err != nil {
		return "", err
	}

	path := filepath.Join(r.outputDir, filename)

	if err := os.WriteFile(path, rawUpload, 0o644); err != nil {
		return "", fmt.Errorf("failed to write upload: %w", err)
	}

	out, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer out.Close()

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".png":
		err = png.Encode(out, composite)
	default:
		err = jpeg.Encode(out, composite, &jpeg.Options{Quality: 90})
	}
	if err != nil {
		return "", fmt.Errorf("failed to encode composite: %w", err)
	}

	return path, nil
}
