// Package dto define los cuerpos de request/response de la API.
package dto

import (
	"time"

	"github.com/dropDatabas3/gatekeep/internal/domain/repository"
	"github.com/dropDatabas3/gatekeep/internal/ledger"
)

// LoginRequest es el body del login por password.
type LoginRequest struct {
	Account  string `json:"account" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Validate aplica las reglas de struct.
func (r *LoginRequest) Validate() error { return check(r) }

// CodeLoginRequest es el body del login por código de un solo uso.
type CodeLoginRequest struct {
	Account string `json:"account" validate:"required"`
	Code    string `json:"code" validate:"required,len=6"`
}

func (r *CodeLoginRequest) Validate() error { return check(r) }

// CodeRequest pide la emisión de un código de un solo uso.
type CodeRequest struct {
	Account string `json:"account" validate:"required"`
}

func (r *CodeRequest) Validate() error { return check(r) }

// UuidLoginRequest es el body del login por user id directo.
type UuidLoginRequest struct {
	UserID string `json:"user_id" validate:"required,uuid"`
}

func (r *UuidLoginRequest) Validate() error { return check(r) }

// ProfileLoginRequest es el body del login por atributos de perfil.
type ProfileLoginRequest struct {
	FirstName   string `json:"first_name" validate:"required"`
	MiddleName  string `json:"middle_name,omitempty"`
	LastName    string `json:"last_name" validate:"required"`
	Suffix      string `json:"suffix,omitempty"`
	DateOfBirth string `json:"date_of_birth" validate:"required,datetime=2006-01-02"`
}

func (r *ProfileLoginRequest) Validate() error { return check(r) }

// TokenResponse es la respuesta de login y refresh. El refresh token
// viaja solo por cookie; acá se informa únicamente su expiración.
type TokenResponse struct {
	AccessToken      string    `json:"access_token"`
	TokenType        string    `json:"token_type"`
	ExpiresIn        int64     `json:"expires_in"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}

// NewTokenResponse arma la respuesta a partir del par emitido.
func NewTokenResponse(p *ledger.Pair) TokenResponse {
	return TokenResponse{
		AccessToken:      p.AccessToken,
		TokenType:        "Bearer",
		ExpiresIn:        int64(time.Until(p.AccessExpiresAt).Seconds()),
		RefreshExpiresAt: p.RefreshExpiresAt.UTC(),
	}
}

// MeResponse es la vista del usuario autenticado.
type MeResponse struct {
	ID          string     `json:"id"`
	Email       *string    `json:"email,omitempty"`
	Phone       *string    `json:"phone,omitempty"`
	Status      string     `json:"status"`
	FirstName   string     `json:"first_name,omitempty"`
	LastName    string     `json:"last_name,omitempty"`
	Strategy    string     `json:"strategy"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

// NewMeResponse arma la vista desde la entidad del dominio.
func NewMeResponse(u *repository.User, strategy string) MeResponse {
	return MeResponse{
		ID:          u.ID,
		Email:       u.Email,
		Phone:       u.Phone,
		Status:      string(u.Status),
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Strategy:    strategy,
		LastLoginAt: u.LastLoginAt,
	}
}
