package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// apiError is the stable JSON error shape returned on every non-2xx
// response (spec §7 propagation policy: the HTTP surface always translates
// failures to status codes, never a bare 500 with no body).
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Stable error codes referenced by the HTTP surface. Validation errors and
// state-machine violations carry one of these; infrastructure errors fall
// back to "internal_error".
const (
	codeValidation         = "validation_error"
	codeNotFound           = "job_not_found"
	codeMissingPrereq      = "missing_precondition"
	codeNoChannelsSelected = "no_channels_selected"
	codeInternal           = "internal_error"
)

func writeError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{"error": apiError{Code: code, Message: message}})
}

func badRequest(c *gin.Context, code, message string) {
	writeError(c, http.StatusBadRequest, code, message)
}

func conflict(c *gin.Context, code, message string) {
	writeError(c, http.StatusConflict, code, message)
}

func notFound(c *gin.Context, message string) {
	writeError(c, http.StatusNotFound, codeNotFound, message)
}

func internalError(c *gin.Context, message string) {
	writeError(c, http.StatusInternalServerError, codeInternal, message)
}
