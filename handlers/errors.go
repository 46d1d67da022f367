package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/shop_backend/config"
	"github.com/mmdatafocus/shop_backend/utils"
)

// errorStatus maps domain errors to HTTP status codes. Unknown errors are 500.
func errorStatus(err error) int {
	var validationErr *utils.ValidationError
	var insufficientErr *utils.InsufficientStockError
	var duplicateErr *utils.DuplicateStatusError
	var terminalErr *utils.TerminalStateError

	switch {
	case errors.Is(err, utils.ErrorRecordNotFound):
		return http.StatusNotFound
	case errors.As(err, &validationErr), errors.As(err, &insufficientErr):
		return http.StatusBadRequest
	case errors.As(err, &duplicateErr), errors.As(err, &terminalErr):
		return http.StatusForbidden
	case errors.Is(err, utils.ErrLockNotObtained):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, funcName string, err error) {
	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		config.LogError(config.GetLogger(), "handlers", funcName, c.Request.Method+" "+c.FullPath(), c.Params, err)
		_ = c.Error(err)
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}

	body := gin.H{"error": err.Error()}
	var validationErr *utils.ValidationError
	if errors.As(err, &validationErr) && len(validationErr.Fields) > 0 {
		body["fields"] = validationErr.Fields
	}
	c.JSON(status, body)
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": message})
}

// pathId parses an integer path parameter; writes 404 and returns false when it is not a number.
func pathId(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return 0, false
	}
	return id, true
}
