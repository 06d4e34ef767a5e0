package classifier

import (
	"fmt"
	"sync"

	"github.com/Brianleach11/Brain-Tumor-Classification/pkg/nn"
)

// XceptionClassifier is the transfer-learned variant: a frozen feature
// extractor stack plus a small trained head, both carried in one weight file.
// Input size 299x299. The underlying network caches per-layer forward state,
// so inferences are serialized behind a mutex.
type XceptionClassifier struct {
	mu      sync.Mutex
	network *nn.Network
}

func LoadXception(path string) (*XceptionClassifier, error) {
	network, err := nn.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load xception model: %w", err)
	}
	return NewXception(network), nil
}

func NewXception(network *nn.Network) *XceptionClassifier {
	return &XceptionClassifier{network: network}
}

func (c *XceptionClassifier) Variant() string {
	return VariantXception
}

func (c *XceptionClassifier) InputSize() int {
	return c.network.InputSize
}

func (c *XceptionClassifier) Predict(in *nn.Tensor) ([]float64, error) {
	if err := checkInput(in, c.network.InputSize); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	probs := c.network.Forward(in)
	if len(probs) != len(Labels) {
		return nil, fmt.Errorf("model produced %d classes, expected %d", len(probs), len(Labels))
	}
	return probs, nil
}

func (c *XceptionClassifier) InputGradient(in *nn.Tensor, classIndex int) (*nn.Tensor, error) {
	if err := checkInput(in, c.network.InputSize); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return c.network.InputGradient(in, classIndex)
}
