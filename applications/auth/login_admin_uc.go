package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/prem22k/c3-backend/applications/validation"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type LoginParams struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResult struct {
	Token string `json:"token"`
	Role  string `json:"role"`
}

// LoginAdminUC checks the single configured admin account.
type LoginAdminUC struct {
	log          *slog.Logger
	email        string
	passwordHash []byte
	secret       []byte
}

func NewLoginAdminUC(log *slog.Logger, email, passwordHash string, secret []byte) *LoginAdminUC {
	return &LoginAdminUC{
		log:          log,
		email:        strings.ToLower(strings.TrimSpace(email)),
		passwordHash: []byte(passwordHash),
		secret:       secret,
	}
}

func (uc *LoginAdminUC) Invoke(payload []byte) (*LoginResult, error) {
	var p LoginParams
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}
	p.Email = strings.ToLower(strings.TrimSpace(p.Email))
	if err := validation.Struct(&p); err != nil {
		return nil, err
	}

	uc.log.Info(fmt.Sprintf("[login-admin-uc] Admin login attempt for %s", p.Email))

	if uc.email == "" || len(uc.passwordHash) == 0 || p.Email != uc.email {
		uc.log.Warn(fmt.Sprintf("[login-admin-uc] Admin login failed for %s: unknown account.", p.Email))
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword(uc.passwordHash, []byte(p.Password)); err != nil {
		uc.log.Warn(fmt.Sprintf("[login-admin-uc] Admin login failed for %s: Password mismatch.", p.Email))
		return nil, ErrInvalidCredentials
	}

	token, err := GenerateJWT(uc.secret, "admin", p.Email, RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("failed to generate JWT: %w", err)
	}

	uc.log.Info(fmt.Sprintf("[login-admin-uc] ✅ Admin login successful for %s.", p.Email))
	return &LoginResult{Token: token, Role: RoleAdmin}, nil
}
