package auth

import (
	errors "github.com/mostafaSataki/LprParkingWeb-sub000/internal"
	"github.com/mostafaSataki/LprParkingWeb-sub000/internal/core/common/validation"
)

type LoginDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (d LoginDTO) Validate() *errors.AppError {
	validator := validation.NewValidator()
	validator.Field("email", d.Email).Required().MaxLength(255)
	validator.Field("password", d.Password).Required()
	return validator.Validate()
}

type RefreshTokenDTO struct {
	RefreshToken string `json:"refreshToken"`
}

func (d RefreshTokenDTO) Validate() *errors.AppError {
	validator := validation.NewValidator()
	validator.Field("refresh_token", d.RefreshToken).Required()
	return validator.Validate()
}
