package controllers

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/prem22k/c3-backend/applications/auth"
	"github.com/prem22k/c3-backend/applications/recruitment"
	"github.com/prem22k/c3-backend/applications/registration"
	"github.com/prem22k/c3-backend/applications/validation"
)

type AdminController struct {
	log        *slog.Logger
	login      *auth.LoginAdminUC
	members    *registration.ListMembersUC
	cards      *registration.RenderMemberCardUC
	candidates *recruitment.ListCandidatesUC
}

func NewAdminController(
	log *slog.Logger,
	login *auth.LoginAdminUC,
	members *registration.ListMembersUC,
	cards *registration.RenderMemberCardUC,
	candidates *recruitment.ListCandidatesUC,
) *AdminController {
	return &AdminController{log: log, login: login, members: members, cards: cards, candidates: candidates}
}

// Login handles POST /api/admin/login.
func (ac *AdminController) Login(c echo.Context) error {
	payload, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return badRequest(c, "Invalid login request")
	}

	res, err := ac.login.Invoke(payload)
	if err != nil {
		var fe *validation.FieldError
		if errors.As(err, &fe) {
			return badRequest(c, fe.Error())
		}
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return errorJSON(c, http.StatusUnauthorized, "Invalid credentials")
		}
		ac.log.Error(fmt.Sprintf("[admin-controller] Login failed: %v", err))
		return errorJSON(c, http.StatusInternalServerError, "Server error")
	}
	return c.JSON(http.StatusOK, res)
}

// ListRegistrations handles GET /api/admin/registrations.
func (ac *AdminController) ListRegistrations(c echo.Context) error {
	members, err := ac.members.Invoke(c.Request().Context())
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, "Failed to retrieve registrations")
	}
	return c.JSON(http.StatusOK, members)
}

// ListCandidates handles GET /api/admin/recruitment.
func (ac *AdminController) ListCandidates(c echo.Context) error {
	candidates, err := ac.candidates.Invoke(c.Request().Context())
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, "Failed to retrieve candidates")
	}
	return c.JSON(http.StatusOK, candidates)
}

// DownloadCard handles GET /api/admin/registrations/:email/card.
func (ac *AdminController) DownloadCard(c echo.Context) error {
	pdfBytes, m, err := ac.cards.Invoke(c.Request().Context(), c.Param("email"))
	if err != nil {
		if errors.Is(err, registration.ErrNotFound) {
			return errorJSON(c, http.StatusNotFound, "Registration not found")
		}
		return errorJSON(c, http.StatusInternalServerError, "Failed to generate membership card")
	}

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="C3-Membership-Card-%s.pdf"`, m.RegistrationID))
	return c.Blob(http.StatusOK, "application/pdf", pdfBytes)
}
