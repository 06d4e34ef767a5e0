package classifier

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Brianleach11/Brain-Tumor-Classification/pkg/nn"
)

// denseOnlyNetwork scores every input to a fixed logit vector, making the
// argmax predictable regardless of the image.
func denseOnlyNetwork(size int, bias []float64) *nn.Network {
	in := size * size * 3
	network, err := nn.Build(&nn.ModelFile{
		Name:      "test",
		InputSize: size,
		Head: []nn.LayerSpec{
			{Kind: "flatten"},
			{Kind: "dense", In: in, Out: len(bias), W: make([]float64, len(bias)*in), B: bias},
			{Kind: "softmax"},
		},
	})
	if err != nil {
		panic(err)
	}
	return network
}

func testImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{
				R: uint8((x * 7) % 256),
				G: uint8((y * 13) % 256),
				B: uint8((x + y) % 256),
				A: 255,
			})
		}
	}
	return img
}

func TestPreprocessShapeAndRange(t *testing.T) {
	tensor := Preprocess(testImage(64, 48), 32)

	require.Equal(t, 32, tensor.H)
	require.Equal(t, 32, tensor.W)
	require.Equal(t, 3, tensor.C)
	require.Len(t, tensor.Data, 32*32*3)

	for _, v := range tensor.Data {
		require.GreaterOrEqual(t, v, 0.0)
		require.LessOrEqual(t, v, 1.0)
	}
}

func TestPredictReturnsFourProbabilitiesSummingToOne(t *testing.T) {
	c := NewCNN(denseOnlyNetwork(16, []float64{0.1, 0.9, 0.2, 0.3}))
	tensor := Preprocess(testImage(40, 40), c.InputSize())

	probs, err := c.Predict(tensor)
	require.NoError(t, err)
	require.Len(t, probs, len(Labels))

	sum := 0.0
	for _, p := range probs {
		sum += p
	}
	require.InDelta(t, 1.0, sum, 1e-9)
}

func TestArgmaxSelectsReportedLabel(t *testing.T) {
	c := NewXception(denseOnlyNetwork(16, []float64{0.1, 0.9, 0.2, 0.3}))
	tensor := Preprocess(testImage(40, 40), c.InputSize())

	probs, err := c.Predict(tensor)
	require.NoError(t, err)
	require.Equal(t, 1, Argmax(probs))
	require.Equal(t, "Meningioma", Labels[Argmax(probs)])
}

func TestPredictRejectsWrongInputShape(t *testing.T) {
	c := NewCNN(denseOnlyNetwork(16, []float64{0, 0, 0, 0}))

	_, err := c.Predict(nn.NewTensor(8, 8, 3))
	require.Error(t, err)

	_, err = c.Predict(nil)
	require.Error(t, err)
}

func TestPredictRejectsWrongClassCount(t *testing.T) {
	c := NewCNN(denseOnlyNetwork(16, []float64{0.5, 0.5}))
	tensor := Preprocess(testImage(16, 16), 16)

	_, err := c.Predict(tensor)
	require.Error(t, err)
}

// pooledNetwork has input-dependent output and layers that cache forward
// state (maxpool argmax, dense pre-activation, softmax probs), so overlapping
// inferences on a shared instance would corrupt each other's results.
func pooledNetwork(size int) *nn.Network {
	in := (size / 2) * (size / 2) * 3
	w := make([]float64, 4*in)
	for i := range w {
		w[i] = math.Sin(float64(i)) * 0.1
	}

	network, err := nn.Build(&nn.ModelFile{
		Name:      "test",
		InputSize: size,
		Head: []nn.LayerSpec{
			{Kind: "maxpool2d", Size: 2},
			{Kind: "flatten"},
			{Kind: "dense", In: in, Out: 4, W: w, B: []float64{0.1, -0.2, 0.3, -0.4}},
			{Kind: "softmax"},
		},
	})
	if err != nil {
		panic(err)
	}
	return network
}

func TestConcurrentInferencesStayConsistent(t *testing.T) {
	const (
		workers    = 4
		iterations = 200
	)

	c := NewCNN(pooledNetwork(16))

	inputs := make([]*nn.Tensor, workers)
	wantProbs := make([][]float64, workers)
	wantGrads := make([]*nn.Tensor, workers)
	for i := range inputs {
		in := nn.NewTensor(16, 16, 3)
		for j := range in.Data {
			in.Data[j] = math.Cos(float64(i*1000+j)) * 0.5
		}
		inputs[i] = in

		probs, err := c.Predict(in)
		require.NoError(t, err)
		wantProbs[i] = probs

		grad, err := c.InputGradient(in, Argmax(probs))
		require.NoError(t, err)
		wantGrads[i] = grad
	}

	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for n := 0; n < iterations; n++ {
				probs, err := c.Predict(inputs[i])
				if err != nil {
					errs[i] = err
					return
				}
				for k, p := range probs {
					if math.Abs(p-wantProbs[i][k]) > 1e-12 {
						errs[i] = fmt.Errorf("iteration %d: probability %d drifted from %v to %v", n, k, wantProbs[i][k], p)
						return
					}
				}

				grad, err := c.InputGradient(inputs[i], Argmax(probs))
				if err != nil {
					errs[i] = err
					return
				}
				for k, g := range grad.Data {
					if math.Abs(g-wantGrads[i].Data[k]) > 1e-12 {
						errs[i] = fmt.Errorf("iteration %d: gradient %d drifted from %v to %v", n, k, wantGrads[i].Data[k], g)
						return
					}
				}
			}
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "worker %d", i)
	}
}

func TestRegistryResolvesVariants(t *testing.T) {
	cnn := NewCNN(denseOnlyNetwork(16, []float64{0, 0, 0, 0}))
	xception := NewXception(denseOnlyNetwork(16, []float64{0, 0, 0, 0}))
	registry := NewRegistry(cnn, xception)

	got, err := registry.Get(VariantCNN)
	require.NoError(t, err)
	require.Equal(t, VariantCNN, got.Variant())

	got, err = registry.Get(VariantXception)
	require.NoError(t, err)
	require.Equal(t, VariantXception, got.Variant())

	_, err = registry.Get("resnet")
	require.Error(t, err)

	require.Equal(t, []string{VariantCNN, VariantXception}, registry.Variants())
}
