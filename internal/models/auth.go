package models

import "github.com/golang-jwt/jwt/v5"

// JWTClaims carries the authenticated console user. Tokens are issued by the
// estate's identity service; this API only validates them.
type JWTClaims struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	jwt.RegisteredClaims
}
