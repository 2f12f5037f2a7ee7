package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yourname/exercisetracker/internal"
	"github.com/yourname/exercisetracker/internal/response"
	"github.com/yourname/exercisetracker/internal/service"
)

// HandleError logs err with the request id and writes the matching error body.
// 500 responses carry a generic message; the cause only reaches the log.
func HandleError(c *gin.Context, logger internal.Logger, err error, status int, msg string) {
	requestID := c.GetString("request_id")
	switch {
	case status >= http.StatusInternalServerError:
		logger.Errorf("[request_id=%s] %s: %v", requestID, msg, err)
	case status == http.StatusNotFound:
		logger.Infof("[request_id=%s] %s: %v", requestID, msg, err)
	default:
		logger.Warnf("[request_id=%s] %s: %v", requestID, msg, err)
	}
	code, body := response.FromAppError(internal.NewAppError(status, msg))
	c.AbortWithStatusJSON(code, body)
}

// HandleServiceError maps errors coming out of the service and storage layers.
func HandleServiceError(c *gin.Context, logger internal.Logger, err error, msg string) {
	var appErr *internal.AppError
	switch {
	case service.IsValidationError(err):
		HandleError(c, logger, err, http.StatusBadRequest, err.Error())
	case errors.As(err, &appErr):
		HandleError(c, logger, err, appErr.Code, appErr.Message)
	default:
		HandleError(c, logger, err, http.StatusInternalServerError, msg)
	}
}

func HandleSuccess(c *gin.Context, logger internal.Logger, data interface{}) {
	requestID := c.GetString("request_id")
	logger.Debugf("[request_id=%s] Success", requestID)
	c.JSON(http.StatusOK, data)
}
