package scanHandler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	scanService "github.com/Brianleach11/Brain-Tumor-Classification/internal/api/scan/service"
	"github.com/Brianleach11/Brain-Tumor-Classification/internal/middleware"
	"github.com/Brianleach11/Brain-Tumor-Classification/pkg/utils"
)

type ScanHandler struct {
	log         *logrus.Logger
	validator   *validator.Validate
	middleware  middleware.Middleware
	scanService scanService.IScanService
	utils       utils.IUtils
}

func New(
	log *logrus.Logger,
	validator *validator.Validate,
	middleware middleware.Middleware,
	ss scanService.IScanService,
	utils utils.IUtils,
) *ScanHandler {
	return &ScanHandler{
		log:         log,
		validator:   validator,
		middleware:  middleware,
		scanService: ss,
		utils:       utils,
	}
}

func (h *ScanHandler) Start(srv fiber.Router) {
	scan := srv.Group("/scan")
	scan.Post("/classify", h.middleware.NewRateLimiter, h.Classify)
}
