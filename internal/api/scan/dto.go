package scan

import (
	"github.com/Brianleach11/Brain-Tumor-Classification/internal/chart"
)

// ClassifyRequest carries the user's model choice alongside the multipart
// image upload.
type ClassifyRequest struct {
	Model string `json:"model" form:"model" validate:"required,oneof=cnn xception"`
}

// ClassifyInput is the service-side view of one upload.
type ClassifyInput struct {
	Filename string
	Variant  string
	Image    []byte
}

type ClassProbability struct {
	Label       string  `json:"label"`
	Probability float64 `json:"probability"`
}

type ClassificationResult struct {
	Variant       string             `json:"model"`
	Label         string             `json:"label"`
	Confidence    float64            `json:"confidence"`
	Probabilities []ClassProbability `json:"probabilities"`
	Chart         chart.BarChart     `json:"chart"`
	SaliencyURL   string             `json:"saliency_url"`
	Explanation   string             `json:"explanation"`
}

type ClassifyResponse struct {
	Data  ClassificationResult `json:"data,omitempty"`
	Error string               `json:"error,omitempty"`
}
