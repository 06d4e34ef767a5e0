package entity

// Prediction is the outcome of one classifier run over an uploaded scan.
type Prediction struct {
	Variant       string
	Label         string
	Confidence    float64
	Probabilities []float64
}

// SaliencyArtifact locates the composite written for a prediction.
type SaliencyArtifact struct {
	Filename string
	Path     string
}
