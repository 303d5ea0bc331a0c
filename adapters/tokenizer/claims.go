package tokenizer

import "github.com/golang-jwt/jwt/v5"

// SessionClaims are the registered claims of a session token. The wallet
// address travels in the subject.
type SessionClaims struct {
	jwt.RegisteredClaims
}
