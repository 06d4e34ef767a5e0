package classifier

import (
	"fmt"
	"sync"

	"github.com/Brianleach11/Brain-Tumor-Classification/pkg/nn"
)

// CNNClassifier is the custom convolutional network, loaded wholesale from a
// single weight file. Input size 224x224. The underlying network caches
// per-layer forward state, so inferences are serialized behind a mutex.
type CNNClassifier struct {
	mu      sync.Mutex
	network *nn.Network
}

func LoadCNN(path string) (*CNNClassifier, error) {
	network, err := nn.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load cnn model: %w", err)
	}
	return NewCNN(network), nil
}

func NewCNN(network *nn.Network) *CNNClassifier {
	return &CNNClassifier{network: network}
}

func (c *CNNClassifier) Variant() string {
	return VariantCNN
}

func (c *CNNClassifier) InputSize() int {
	return c.network.InputSize
}

func (c *CNNClassifier) Predict(in *nn.Tensor) ([]float64, error) {
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

func (c *CNNClassifier) InputGradient(in *nn.Tensor, classIndex int) (*nn.Tensor, error) {
	if err := checkInput(in, c.network.InputSize); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return c.network.InputGradient(in, classIndex)
}
