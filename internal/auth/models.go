package auth

import "github.com/golang-jwt/jwt/v5"

type User struct {
	ID                int64   `json:"id"`
	Email             string  `json:"email"`
	Token             string  `json:"token,omitempty"`
	Username          string  `json:"username"`
	Password          []byte  `json:"-"`
	PlaintextPassword string  `json:"-"`
	GoogleID          *string `json:"-"`
	Image             *string `json:"image,omitempty"`
	IsAdmin           bool    `json:"isAdmin"`
}

// HasLocalPassword reports whether the account can log in with a password.
// OAuth-provisioned accounts have no credential hash.
func (user *User) HasLocalPassword() bool {
	return len(user.Password) > 0
}

type UserClaim struct {
	Username string `json:"username"`
	Email    string `json:"email"`

	jwt.RegisteredClaims
}
