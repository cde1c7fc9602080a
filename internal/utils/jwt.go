package utils

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SessionData is the identity payload handed to the session layer after a
// successful phone verification.
type SessionData struct {
	FarmerID    uuid.UUID  `json:"farmer_id"`
	FarmID      *uuid.UUID `json:"farm_id,omitempty"`
	DisplayName string     `json:"display_name"`
}

type sessionClaims struct {
	FarmerID    string `json:"farmer_id"`
	FarmID      string `json:"farm_id,omitempty"`
	DisplayName string `json:"display_name"`
	jwt.RegisteredClaims
}

// GenerateSessionToken signs the session payload into a JWT.
func GenerateSessionToken(secret string, data SessionData, ttl time.Duration) (string, error) {
	claims := &sessionClaims{
		FarmerID:    data.FarmerID.String(),
		DisplayName: data.DisplayName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   data.FarmerID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	if data.FarmID != nil {
		claims.FarmID = data.FarmID.String()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseSessionToken validates the token and restores the session payload.
func ParseSessionToken(secret, tokenString string) (SessionData, error) {
	token, err := jwt.ParseWithClaims(tokenString, &sessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return SessionData{}, err
	}

	claims, ok := token.Claims.(*sessionClaims)
	if !ok || !token.Valid {
		return SessionData{}, jwt.ErrTokenInvalidClaims
	}

	farmerID, err := uuid.Parse(claims.FarmerID)
	if err != nil {
		return SessionData{}, err
	}

	data := SessionData{FarmerID: farmerID, DisplayName: claims.DisplayName}
	if claims.FarmID != "" {
		if farmID, err := uuid.Parse(claims.FarmID); err == nil {
			data.FarmID = &farmID
		}
	}

	return data, nil
}
