package scanService

import (
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"

	"github.com/Brianleach11/Brain-Tumor-Classification/internal/api/scan"
	"github.com/Brianleach11/Brain-Tumor-Classification/internal/classifier"
	"github.com/Brianleach11/Brain-Tumor-Classification/internal/saliency"
	"github.com/Brianleach11/Brain-Tumor-Classification/pkg/gemini"
)

type IScanService interface {
	Classify(ctx context.Context, input scan.ClassifyInput) (*scan.ClassificationResult, error)
}

type scanService struct {
	log      *logrus.Logger
	registry *classifier.Registry
	renderer *saliency.Renderer
	gemini   gemini.IGemini
}

func NewScanService(
	log *logrus.Logger,
	registry *classifier.Registry,
	renderer *saliency.Renderer,
	gemini gemini.IGemini,
) IScanService {
	return &scanService{
		log:      log,
		registry: registry,
		renderer: renderer,
		gemini:   gemini,
	}
}
