package classifier

import (
	"image"

	"github.com/nfnt/resize"

	"github.com/Brianleach11/Brain-Tumor-Classification/pkg/nn"
)

// Preprocess applies the shared input contract of both variants: resize to
// the model's expected square size and scale 8-bit pixel values to [0,1].
// The batch dimension of 1 is implicit in the single-tensor call.
func Preprocess(img image.Image, size int) *nn.Tensor {
	resized := resize.Resize(uint(size), uint(size), img, resize.Lanczos3)

	out := nn.NewTensor(size, size, 3)
	bounds := resized.Bounds()
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			r, g, b, _ := resized.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			out.Set(y, x, 0, float64(r>>8)/255.0)
			out.Set(y, x, 1, float64(g>>8)/255.0)
			out.Set(y, x, 2, float64(b>>8)/255.0)
		}
	}
	return out
}
