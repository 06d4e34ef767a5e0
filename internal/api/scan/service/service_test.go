package scanService

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/context"

	"github.com/Brianleach11/Brain-Tumor-Classification/internal/api/scan"
	"github.com/Brianleach11/Brain-Tumor-Classification/internal/classifier"
	"github.com/Brianleach11/Brain-Tumor-Classification/internal/saliency"
	"github.com/Brianleach11/Brain-Tumor-Classification/pkg/nn"
)

const fixtureExplanation = "The model focuses on a hyperintense mass in the left temporal lobe."

type fakeClassifier struct {
	variant string
	size    int
	probs   []float64
}

func (f *fakeClassifier) Variant() string {
	return f.variant
}

func (f *fakeClassifier) InputSize() int {
	return f.size
}

func (f *fakeClassifier) Predict(_ *nn.Tensor) ([]float64, error) {
	return f.probs, nil
}

func (f *fakeClassifier) InputGradient(in *nn.Tensor, _ int) (*nn.Tensor, error) {
	grad := nn.NewTensor(in.H, in.W, in.C)
	for i := range grad.Data {
		grad.Data[i] = float64(i%97) * 0.01
	}
	return grad, nil
}

type fakeGemini struct {
	reply      string
	err        error
	lastPrompt string
	calls      int
}

func (f *fakeGemini) AnalyzeImage(_ context.Context, _ string, _ string, prompt string) (string, error) {
	f.calls++
	f.lastPrompt = prompt
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func uploadPNG(t *testing.T, size int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newTestService(t *testing.T, llm *fakeGemini) (IScanService, string) {
	t.Helper()

	outputDir := t.TempDir()
	registry := classifier.NewRegistry(&fakeClassifier{
		variant: classifier.VariantCNN,
		size:    64,
		probs:   []float64{0.1, 0.2, 0.6, 0.1},
	})

	svc := NewScanService(logrus.New(), registry, saliency.New(outputDir), llm)
	return svc, outputDir
}

func TestClassifyEndToEnd(t *testing.T) {
	llm := &fakeGemini{reply: fixtureExplanation}
	svc, outputDir := newTestService(t, llm)

	result, err := svc.Classify(context.Background(), scan.ClassifyInput{
		Filename: "scan.png",
		Variant:  classifier.VariantCNN,
		Image:    uploadPNG(t, 64),
	})
	require.NoError(t, err)

	require.Contains(t, []string{"Glioma", "Meningioma", "No Tumor", "Pituitary"}, result.Label)
	require.Equal(t, "No Tumor", result.Label)
	require.InDelta(t, 0.6, result.Confidence, 1e-9)

	require.Len(t, result.Probabilities, 4)
	sum := 0.0
	for i, p := range result.Probabilities {
		require.Equal(t, classifier.Labels[i], p.Label)
		sum += p.Probability
	}
	require.InDelta(t, 1.0, sum, 1e-5)

	require.Equal(t, "/saliency_maps/scan.png", result.SaliencyURL)
	require.FileExists(t, filepath.Join(outputDir, "scan.png"))

	require.NotEmpty(t, result.Explanation)
	require.Equal(t, fixtureExplanation, result.Explanation)
	require.Equal(t, 1, llm.calls)
	require.Contains(t, llm.lastPrompt, "'No Tumor'")
	require.Contains(t, llm.lastPrompt, "60.00%")

	require.Len(t, result.Chart.Values, 4)
	for i, want := range []float64{10, 20, 60, 10} {
		require.InDelta(t, want, result.Chart.Values[i], 1e-9)
	}
}

func TestClassifyRejectsUnknownVariant(t *testing.T) {
	svc, _ := newTestService(t, &fakeGemini{reply: fixtureExplanation})

	_, err := svc.Classify(context.Background(), scan.ClassifyInput{
		Filename: "scan.png",
		Variant:  "resnet",
		Image:    uploadPNG(t, 64),
	})
	require.ErrorIs(t, err, scan.ErrUnknownModelVariant)
}

func TestClassifyRejectsUndecodableImage(t *testing.T) {
	svc, _ := newTestService(t, &fakeGemini{reply: fixtureExplanation})

	_, err := svc.Classify(context.Background(), scan.ClassifyInput{
		Filename: "scan.png",
		Variant:  classifier.VariantCNN,
		Image:    []byte("not an image"),
	})
	require.ErrorIs(t, err, scan.ErrInvalidImage)
}

func TestClassifyPropagatesExplainerFailure(t *testing.T) {
	llm := &fakeGemini{err: context.DeadlineExceeded}
	svc, outputDir := newTestService(t, llm)

	_, err := svc.Classify(context.Background(), scan.ClassifyInput{
		Filename: "scan.png",
		Variant:  classifier.VariantCNN,
		Image:    uploadPNG(t, 64),
	})
	require.ErrorIs(t, err, scan.ErrExplanationFailed)

	// The composite is already on disk when the explainer fails.
	require.FileExists(t, filepath.Join(outputDir, "scan.png"))
}
