package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/careflowhq/careflow-api/pkg/errors"
)

type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func NewSuccessResponse(data interface{}) *Response {
	return &Response{
		Status: "success",
		Data:   data,
	}
}

func NewErrorResponse(message string) *Response {
	return &Response{
		Status:  "error",
		Message: message,
	}
}

// RespondError writes a classified error. Unclassified errors get a
// generic 500; their details stay in the log, not the response.
func RespondError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		c.Error(err)
		c.JSON(appErr.HTTPStatus(), NewErrorResponse(appErr.Message))
		return
	}
	c.Error(err)
	c.JSON(http.StatusInternalServerError, NewErrorResponse("internal server error"))
}
