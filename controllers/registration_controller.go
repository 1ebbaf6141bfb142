package controllers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/prem22k/c3-backend/applications/email"
	"github.com/prem22k/c3-backend/applications/registration"
	"github.com/prem22k/c3-backend/applications/validation"
)

const emailProbeTimeout = 30 * time.Second

type RegisterResponse struct {
	Message        string `json:"message"`
	Status         string `json:"status,omitempty"`
	RegistrationID string `json:"registrationID"`
	EmailSent      bool   `json:"emailSent"`
	Warning        string `json:"warning,omitempty"`
}

type RegistrationController struct {
	log    *slog.Logger
	uc     *registration.RegisterMemberUC
	sender email.Sender
}

func NewRegistrationController(log *slog.Logger, uc *registration.RegisterMemberUC, sender email.Sender) *RegistrationController {
	return &RegistrationController{log: log, uc: uc, sender: sender}
}

// Register handles POST /api/register.
func (rc *RegistrationController) Register(c echo.Context) error {
	payload, err := io.ReadAll(c.Request().Body)
	if err != nil {
		rc.log.Warn(fmt.Sprintf("[registration-controller] Error reading payload: %v", err))
		return badRequest(c, "Invalid request payload.")
	}

	res, err := rc.uc.Invoke(c.Request().Context(), payload)
	if err != nil {
		return rc.registerError(c, err)
	}

	return c.JSON(http.StatusOK, RegisterResponse{
		Message:        msgSuccess,
		Status:         res.Status,
		RegistrationID: res.Member.RegistrationID,
		EmailSent:      res.EmailSent,
		Warning:        res.Warning,
	})
}

func (rc *RegistrationController) registerError(c echo.Context, err error) error {
	var fe *validation.FieldError
	var already *registration.AlreadyRegisteredError

	switch {
	case errors.As(err, &fe):
		return badRequest(c, fe.Error())
	case errors.Is(err, registration.ErrInvalidPayload):
		return badRequest(c, "Invalid request payload.")
	case errors.As(err, &already):
		return c.JSON(http.StatusOK, RegisterResponse{
			Message:        "already registered",
			RegistrationID: already.RegistrationID,
			EmailSent:      true,
		})
	case errors.Is(err, registration.ErrMobileTaken):
		return badRequest(c, "Mobile number already registered")
	case errors.Is(err, registration.ErrEmailDelivery):
		return errorJSON(c, http.StatusInternalServerError, "Registration saved but the confirmation email could not be sent. Please try again.")
	default:
		rc.log.Error(fmt.Sprintf("[registration-controller] Registration failed: %v", err))
		return errorJSON(c, http.StatusInternalServerError, "Server error")
	}
}

// Info handles GET /api/register.
func (rc *RegistrationController) Info(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"message":      "Registration API is working",
		"instructions": "Please use POST method to submit registrations",
		"endpoints": map[string]string{
			"register": "POST /api/register - Submit the membership form",
		},
	})
}

// TestEmail handles GET /api/register/test-email: it probes the configured
// transport without sending anything.
func (rc *RegistrationController) TestEmail(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), emailProbeTimeout)
	defer cancel()

	if err := rc.sender.Verify(ctx); err != nil {
		rc.log.Warn(fmt.Sprintf("[registration-controller] Email probe failed on %s: %v", rc.sender.Name(), err))
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"message":   msgError,
			"transport": rc.sender.Name(),
			"error":     err.Error(),
		})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message":   msgSuccess,
		"transport": rc.sender.Name(),
	})
}
