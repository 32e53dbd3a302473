package models

import "github.com/golang-jwt/jwt/v5"

// StudentClaims are the JWT claims issued to a logged-in applicant.
type StudentClaims struct {
	LRN       string `json:"lrn"`
	TrackCode string `json:"track_code"`
	jwt.RegisteredClaims
}
