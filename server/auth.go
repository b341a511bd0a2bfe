/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package server

import (
	stderrors "errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/suparena/eventgraph/models"
)

var ErrInvalidToken = stderrors.New("invalid token")

// Claims identifies the viewer. The subject is the user's hex id.
type Claims struct {
	jwt.RegisteredClaims
}

// JWTService issues and validates HS256 tokens.
type JWTService struct {
	secret      []byte
	expireHours int
	now         func() time.Time
}

// NewJWTService creates a JWT service.
func NewJWTService(secret string, expireHours int) *JWTService {
	return &JWTService{secret: []byte(secret), expireHours: expireHours, now: time.Now}
}

// Generate creates a token for the user.
func (s *JWTService) Generate(userID models.ID) (string, error) {
	now := s.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.Hex(),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(s.expireHours) * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Validate parses a token and returns the viewer it names.
func (s *JWTService) Validate(tokenString string) (models.ID, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return models.NilID, ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return models.NilID, ErrInvalidToken
	}
	viewer, err := models.ParseID(claims.Subject)
	if err != nil || viewer.IsZero() {
		return models.NilID, ErrInvalidToken
	}
	return viewer, nil
}
