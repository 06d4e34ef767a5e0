package classifier

import (
	"fmt"

	"github.com/Brianleach11/Brain-Tumor-Classification/pkg/nn"
)

// Labels is the fixed class order shared by both model variants. The argmax
// index of a prediction vector selects the reported label.
var Labels = []string{"Glioma", "Meningioma", "No Tumor", "Pituitary"}

const (
	VariantCNN      = "cnn"
	VariantXception = "xception"
)

// Classifier is the uniform contract over the two pretrained models.
type Classifier interface {
	Variant() string
	InputSize() int
	Predict(in *nn.Tensor) ([]float64, error)
	InputGradient(in *nn.Tensor, classIndex int) (*nn.Tensor, error)
}

func Argmax(probs []float64) int {
	best := 0
	for i, p := range probs {
		if p > probs[best] {
			best = i
		}
	}
	return best
}

func checkInput(in *nn.Tensor, size int) error {
	if in == nil {
		return fmt.Errorf("nil input tensor")
	}
	if in.H != size || in.W != size || in.C != 3 {
		return fmt.Errorf("expected %dx%dx3 input, got %dx%dx%d", size, size, in.H, in.W, in.C)
	}
	return nil
}
