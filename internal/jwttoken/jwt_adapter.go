package jwttoken

import (
	authmw "cubemint/pkg/platform/middleware/auth"
)

// JWTServiceAdapter exposes JWTService as the auth middleware validator.
type JWTServiceAdapter struct {
	service *JWTService
}

func NewJWTServiceAdapter(service *JWTService) *JWTServiceAdapter {
	return &JWTServiceAdapter{service: service}
}

func (a *JWTServiceAdapter) ValidateToken(tokenString string) (*authmw.CallerClaims, error) {
	claims, err := a.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	return &authmw.CallerClaims{Subject: claims.Subject, JTI: claims.ID}, nil
}
