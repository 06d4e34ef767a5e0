package nn

import (
	"encoding/gob"
	"fmt"
	"os"
)

// LayerSpec is the serialized form of one layer. Weight artifacts are
// exported from the training environment into this portable container
// instead of shipping framework-specific checkpoint files.
type LayerSpec struct {
	Kind       string
	Activation string

	// Conv2D
	KH, KW    int
	InC, OutC int
	Stride    int
	SamePad   bool

	// MaxPool2D
	Size int

	// Dense
	In, Out int

	// Dropout
	Rate float64

	W []float64
	B []float64
}

// ModelFile is the on-disk weight container. The Frozen stack holds the
// transfer-learned feature extractor when present; the Head stack holds the
// trained classifier layers.
type ModelFile struct {
	Name      string
	InputSize int
	Labels    []string
	Frozen    []LayerSpec
	Head      []LayerSpec
}

func buildLayer(spec LayerSpec) (Layer, error) {
	switch spec.Kind {
	case "conv2d":
		if len(spec.W) != spec.OutC*spec.KH*spec.KW*spec.InC || len(spec.B) != spec.OutC {
			return nil, fmt.Errorf("conv2d: parameter count does not match %dx%dx%d->%d",
				spec.KH, spec.KW, spec.InC, spec.OutC)
		}
		stride := spec.Stride
		if stride == 0 {
			stride = 1
		}
		return &Conv2D{
			KH: spec.KH, KW: spec.KW,
			InC: spec.InC, OutC: spec.OutC,
			Stride:     stride,
			SamePad:    spec.SamePad,
			Activation: spec.Activation,
			W:          spec.W,
			B:          spec.B,
		}, nil
	case "maxpool2d":
		size := spec.Size
		if size == 0 {
			size = 2
		}
		return &MaxPool2D{Size: size}, nil
	case "flatten":
		return &Flatten{}, nil
	case "dense":
		if len(spec.W) != spec.Out*spec.In || len(spec.B) != spec.Out {
			return nil, fmt.Errorf("dense: parameter count does not match %d->%d", spec.In, spec.Out)
		}
		return &Dense{
			In: spec.In, Out: spec.Out,
			Activation: spec.Activation,
			W:          spec.W,
			B:          spec.B,
		}, nil
	case "dropout":
		return &Dropout{Rate: spec.Rate}, nil
	case "softmax":
		return &Softmax{}, nil
	default:
		return nil, fmt.Errorf("unknown layer kind %q", spec.Kind)
	}
}

// Build assembles a runnable network from a decoded model file.
func Build(file *ModelFile) (*Network, error) {
	if file.InputSize <= 0 {
		return nil, fmt.Errorf("model %q has invalid input size %d", file.Name, file.InputSize)
	}

	specs := make([]LayerSpec, 0, len(file.Frozen)+len(file.Head))
	specs = append(specs, file.Frozen...)
	specs = append(specs, file.Head...)
	if len(specs) == 0 {
		return nil, fmt.Errorf("model %q has no layers", file.Name)
	}

	layers := make([]Layer, 0, len(specs))
	for i, spec := range specs {
		layer, err := buildLayer(spec)
		if err != nil {
			return nil, fmt.Errorf("layer %d: %w", i, err)
		}
		layers = append(layers, layer)
	}

	return &Network{
		Name:      file.Name,
		InputSize: file.InputSize,
		Layers:    layers,
	}, nil
}

// Load reads a gob weight file and builds the network. A truncated download
// surfaces here as a decode error.
func Load(path string) (*Network, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open model file: %w", err)
	}
	defer f.Close()

	var file ModelFile
	if err := gob.NewDecoder(f).Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to decode model file %s: %w", path, err)
	}

	return Build(&file)
}

// Save writes a model file, used by the export tooling and test fixtures.
func Save(path string, file *ModelFile) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return gob.NewEncoder(f).Encode(file)
}
