package saliency

import (
	"image"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Brianleach11/Brain-Tumor-Classification/internal/classifier"
	"github.com/Brianleach11/Brain-Tumor-Classification/pkg/nn"
)

const testSize = 64

func testClassifier(t *testing.T) classifier.Classifier {
	t.Helper()

	in := testSize * testSize * 3
	w := make([]float64, 4*in)
	for i := range w {
		w[i] = math.Sin(float64(i)*0.7) * 0.1
	}

	network, err := nn.Build(&nn.ModelFile{
		Name:      "saliency-test",
		InputSize: testSize,
		Head: []nn.LayerSpec{
			{Kind: "flatten"},
			{Kind: "dense", In: in, Out: 4, W: w, B: []float64{0, 0, 0, 0}},
			{Kind: "softmax"},
		},
	})
	require.NoError(t, err)
	return classifier.NewCNN(network)
}

func testScan() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, testSize, testSize))
	for y := 0; y < testSize; y++ {
		for x := 0; x < testSize; x++ {
			img.Set(x, y, color.RGBA{
				R: uint8((x * 3) % 256),
				G: uint8((y * 5) % 256),
				B: uint8((x*y + 11) % 256),
				A: 255,
			})
		}
	}
	return img
}

func TestNormalizeWithinMaskBoundsValues(t *testing.T) {
	grid := make([][]float64, 40)
	for y := range grid {
		grid[y] = make([]float64, 40)
		for x := range grid[y] {
			grid[y][x] = float64(y*40+x) * 0.37
		}
	}
	mask := circularMask(40, 40)

	normalizeWithinMask(grid, mask)

	sawMax := false
	for y := range grid {
		for x := range grid[y] {
			if mask[y][x] {
				require.GreaterOrEqual(t, grid[y][x], 0.0)
				require.LessOrEqual(t, grid[y][x], 1.0)
				if grid[y][x] == 1.0 {
					sawMax = true
				}
			} else {
				require.Zero(t, grid[y][x])
			}
		}
	}
	require.True(t, sawMax, "normalization should map the mask maximum to 1")
}

func TestNormalizeWithinMaskDegenerateCase(t *testing.T) {
	grid := make([][]float64, 40)
	for y := range grid {
		grid[y] = make([]float64, 40)
		for x := range grid[y] {
			grid[y][x] = 3.5
		}
	}
	mask := circularMask(40, 40)

	// Constant gradients carry no ranking signal: the defined fallback is an
	// all-zero map rather than out-of-range unnormalized values.
	normalizeWithinMask(grid, mask)

	for y := range grid {
		for x := range grid[y] {
			require.Zero(t, grid[y][x])
		}
	}
}

func TestMaskedPercentile(t *testing.T) {
	grid := [][]float64{{1, 2, 3, 4, 5}}
	mask := [][]bool{{true, true, true, true, true}}

	require.InDelta(t, 4.2, maskedPercentile(grid, mask, 80), 1e-9)
	require.InDelta(t, 1.0, maskedPercentile(grid, mask, 0), 1e-9)
	require.InDelta(t, 5.0, maskedPercentile(grid, mask, 100), 1e-9)
}

func TestGaussianBlurPreservesConstantField(t *testing.T) {
	grid := make([][]float64, 20)
	for y := range grid {
		grid[y] = make([]float64, 20)
		for x := range grid[y] {
			grid[y][x] = 0.25
		}
	}

	blurred := gaussianBlur(grid, blurKernelSize)
	for y := range blurred {
		for x := range blurred[y] {
			require.InDelta(t, 0.25, blurred[y][x], 1e-12)
		}
	}
}

func TestResizeBilinearPreservesConstantField(t *testing.T) {
	grid := make([][]float64, 8)
	for y := range grid {
		grid[y] = make([]float64, 8)
		for x := range grid[y] {
			grid[y][x] = 0.6
		}
	}

	out := resizeBilinear(grid, 20, 20)
	require.Len(t, out, 20)
	for y := range out {
		require.Len(t, out[y], 20)
		for x := range out[y] {
			require.InDelta(t, 0.6, out[y][x], 1e-12)
		}
	}
}

func TestRenderWritesCompositeUnderUploadName(t *testing.T) {
	dir := t.TempDir()
	r := New(dir)
	model := testClassifier(t)

	img := testScan()
	tensor := classifier.Preprocess(img, testSize)

	composite, path, err := r.Render(model, tensor, 1, testSize, img, []byte("raw-bytes"), "scan.png")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "scan.png"), path)

	bounds := composite.Bounds()
	require.Equal(t, testSize, bounds.Dx())
	require.Equal(t, testSize, bounds.Dy())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	decoded, format, err := image.Decode(f)
	require.NoError(t, err)
	require.Equal(t, "png", format)
	require.Equal(t, testSize, decoded.Bounds().Dx())
	require.Equal(t, testSize, decoded.Bounds().Dy())
}

func TestRenderIsDeterministic(t *testing.T) {
	dir := t.TempDir()
	r := New(dir)
	model := testClassifier(t)

	img := testScan()
	tensor := classifier.Preprocess(img, testSize)

	_, path, err := r.Render(model, tensor, 2, testSize, img, []byte("raw"), "scan.png")
	require.NoError(t, err)
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	_, _, err = r.Render(model, tensor, 2, testSize, img, []byte("raw"), "scan.png")
	require.NoError(t, err)
	second, err := os.ReadFile(path)
	require.NoError(t, err)

	require.Equal(t, first, second)
}

func TestRenderOverwritesSameFilename(t *testing.T) {
	dir := t.TempDir()
	r := New(dir)
	model := testClassifier(t)

	img := testScan()
	tensor := classifier.Preprocess(img, testSize)

	_, path1, err := r.Render(model, tensor, 0, testSize, img, []byte("first"), "same.png")
	require.NoError(t, err)

	_, path2, err := r.Render(model, tensor, 3, testSize, img, []byte("second"), "same.png")
	require.NoError(t, err)
	require.Equal(t, path1, path2)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}
