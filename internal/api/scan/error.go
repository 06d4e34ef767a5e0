package scan

import (
	"net/http"

	"github.com/Brianleach11/Brain-Tumor-Classification/pkg/response"
)

var (
	ErrInvalidImage        = response.NewError(http.StatusBadRequest, "invalid or unsupported image")
	ErrUnknownModelVariant = response.NewError(http.StatusBadRequest, "unknown model variant")
	ErrExplanationFailed   = response.NewError(http.StatusBadGateway, "explanation service failed")
)
