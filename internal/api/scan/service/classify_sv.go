package scanService

import (
	"bytes"
	"errors"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"golang.org/x/net/context"

	"github.com/Brianleach11/Brain-Tumor-Classification/internal/api/scan"
	"github.com/Brianleach11/Brain-Tumor-Classification/internal/chart"
	"github.com/Brianleach11/Brain-Tumor-Classification/internal/classifier"
	"github.com/Brianleach11/Brain-Tumor-Classification/internal/entity"
	"github.com/Brianleach11/Brain-Tumor-Classification/pkg/log"
)

// Classify runs the full pipeline for one upload: preprocess, predict,
// saliency render, confidence chart, explanation. Every stage either
// completes or fails the whole request.
func (s *scanService) Classify(ctx context.Context, input scan.ClassifyInput) (*scan.ClassificationResult, error) {
	model, err := s.registry.Get(input.Variant)
	if err != nil {
		return nil, errors.Join(scan.ErrUnknownModelVariant, err)
	}

	img, _, err := image.Decode(bytes.NewReader(input.Image))
	if err != nil {
		return nil, errors.Join(scan.ErrInvalidImage, err)
	}

	tensor := classifier.Preprocess(img, model.InputSize())

	probs, err := model.Predict(tensor)
	if err != nil {
		return nil, err
	}

	classIndex := classifier.Argmax(probs)
	prediction := entity.Prediction{
		Variant:       input.Variant,
		Label:         classifier.Labels[classIndex],
		Confidence:    probs[classIndex],
		Probabilities: probs,
	}

	s.log.WithFields(log.Fields{
		"model":      prediction.Variant,
		"label":      prediction.Label,
		"confidence": prediction.Confidence,
	}).Debug("Prediction computed")

	_, compositePath, err := s.renderer.Render(model, tensor, classIndex, model.InputSize(), img, input.Image, input.Filename)
	if err != nil {
		return nil, err
	}

	artifact := entity.SaliencyArtifact{
		Filename: input.Filename,
		Path:     compositePath,
	}

	confidenceChart := chart.Confidence(classifier.Labels, probs)

	explanation, err := s.explain(ctx, artifact.Path, prediction.Label, prediction.Confidence)
	if err != nil {
		return nil, errors.Join(scan.ErrExplanationFailed, err)
	}

	probabilities := make([]scan.ClassProbability, len(probs))
	for i, p := range probs {
		probabilities[i] = scan.ClassProbability{
			Label:       classifier.Labels[i],
			Probability: p,
		}
	}

	return &scan.ClassificationResult{
		Variant:       prediction.Variant,
		Label:         prediction.Label,
		Confidence:    prediction.Confidence,
		Probabilities: probabilities,
		Chart:         confidenceChart,
		SaliencyURL:   "/saliency_maps/" + artifact.Filename,
		Explanation:   explanation,
	}, nil
}
