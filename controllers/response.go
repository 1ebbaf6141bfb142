package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

const (
	msgSuccess = "success"
	msgError   = "error"
)

type ErrorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func errorJSON(c echo.Context, code int, msg string) error {
	return c.JSON(code, ErrorResponse{Message: msgError, Error: msg})
}

func badRequest(c echo.Context, msg string) error {
	return errorJSON(c, http.StatusBadRequest, msg)
}
