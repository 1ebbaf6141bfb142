package controllers

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/prem22k/c3-backend/applications/recruitment"
	"github.com/prem22k/c3-backend/applications/validation"
)

type RecruitmentController struct {
	log       *slog.Logger
	uc        *recruitment.UnlockCandidateUC
	allowlist recruitment.DomainAllowlist
}

func NewRecruitmentController(log *slog.Logger, uc *recruitment.UnlockCandidateUC, allowlist recruitment.DomainAllowlist) *RecruitmentController {
	return &RecruitmentController{log: log, uc: uc, allowlist: allowlist}
}

// Unlock handles POST /api/recruitment/unlock and POST /api/register/unlock.
func (rc *RecruitmentController) Unlock(c echo.Context) error {
	payload, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return badRequest(c, "Invalid request payload.")
	}

	cand, err := rc.uc.Invoke(c.Request().Context(), payload)
	if err != nil {
		var fe *validation.FieldError
		switch {
		case errors.As(err, &fe):
			return badRequest(c, fe.Error())
		case errors.Is(err, recruitment.ErrInvalidPayload):
			return badRequest(c, "Invalid request payload.")
		case errors.Is(err, recruitment.ErrInvalidEmail):
			return badRequest(c, "Invalid email format")
		case errors.Is(err, recruitment.ErrDomainNotAllowed):
			return badRequest(c, fmt.Sprintf("Only emails from %s domains are accepted", strings.Join(rc.allowlist, " or ")))
		default:
			rc.log.Error(fmt.Sprintf("[recruitment-controller] Unlock failed: %v", err))
			return errorJSON(c, http.StatusInternalServerError, "An error occurred while processing your request")
		}
	}

	return c.JSON(http.StatusOK, map[string]any{
		"message": msgSuccess,
		"data": map[string]any{
			"name":     cand.Name,
			"email":    cand.Email,
			"unlocked": true,
		},
	})
}

// Info handles GET /api/recruitment.
func (rc *RecruitmentController) Info(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"message":      "Recruitment API is working",
		"instructions": "Please use POST method to unlock recruitment challenges",
		"endpoints": map[string]string{
			"unlock": "POST /api/recruitment/unlock - Submit details to unlock challenges",
		},
	})
}
