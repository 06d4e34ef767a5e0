package scanHandler

import (
	"io"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/net/context"

	"github.com/Brianleach11/Brain-Tumor-Classification/internal/api/scan"
	"github.com/Brianleach11/Brain-Tumor-Classification/internal/classifier"
	contextPkg "github.com/Brianleach11/Brain-Tumor-Classification/pkg/context"
	"github.com/Brianleach11/Brain-Tumor-Classification/pkg/handlerUtil"
	"github.com/Brianleach11/Brain-Tumor-Classification/pkg/log"
)

// The LLM call dominates the request budget, so the timeout is far above the
// usual API one.
const classifyTimeout = 90 * time.Second

func (h *ScanHandler) Classify(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), classifyTimeout)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
	}).Debug("Processing scan classification request")

	file, err := ctx.FormFile("image")
	if err != nil {
		return errHandler.Handle(ctx, requestID, scan.ErrInvalidImage, ctx.Path(), "get_form_file")
	}

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
		"file_name":  file.Filename,
		"file_size":  file.Size,
	}).Debug("Processing file upload")

	if err := h.utils.ValidateImageFile(file); err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "validate_image_file")
	}

	req := scan.ClassifyRequest{
		Model: ctx.FormValue("model", classifier.VariantXception),
	}
	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	fileContent, err := file.Open()
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "open_file")
	}
	defer fileContent.Close()

	imageBytes, err := io.ReadAll(fileContent)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "read_file")
	}

	result, err := h.scanService.Classify(c, scan.ClassifyInput{
		Filename: h.utils.SanitizeFilename(file.Filename),
		Variant:  req.Model,
		Image:    imageBytes,
	})
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "classify_scan")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		h.log.WithFields(log.Fields{
			"request_id": requestID,
			"path":       ctx.Path(),
			"model":      result.Variant,
			"label":      result.Label,
			"confidence": result.Confidence,
		}).Info("Scan classification successful")
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, scan.ClassifyResponse{
			Data: *result,
		})
	}
}
