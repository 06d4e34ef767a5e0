package nn

import (
	"fmt"
)

// Network is an ordered stack of layers ending in a Softmax. It holds
// per-layer forward caches, so a Network instance must not be shared between
// concurrent inferences.
type Network struct {
	Name      string
	InputSize int
	Layers    []Layer
}

// Forward runs one inference pass and returns the class probabilities.
func (n *Network) Forward(x *Tensor) []float64 {
	out := x
	for _, layer := range n.Layers {
		out = layer.Forward(out)
	}

	probs := make([]float64, len(out.Data))
	copy(probs, out.Data)
	return probs
}

// InputGradient computes d(probability[classIndex])/d(input) with a single
// backward pass through the cached forward state.
func (n *Network) InputGradient(x *Tensor, classIndex int) (*Tensor, error) {
	probs := n.Forward(x)
	if classIndex < 0 || classIndex >= len(probs) {
		return nil, fmt.Errorf("class index %d out of range for %d classes", classIndex, len(probs))
	}

	grad := NewTensor(1, 1, len(probs))
	grad.Data[classIndex] = 1

	for i := len(n.Layers) - 1; i >= 0; i-- {
		grad = n.Layers[i].Backward(grad)
	}

	if grad.H != x.H || grad.W != x.W || grad.C != x.C {
		return nil, fmt.Errorf("gradient shape %dx%dx%d does not match input %dx%dx%d",
			grad.H, grad.W, grad.C, x.H, x.W, x.C)
	}
	return grad, nil
}
