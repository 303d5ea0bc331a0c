package ports

import "github.com/agorafi/marketplace/core"

// Tokenizer converts between sessions and bearer tokens.
type Tokenizer interface {
	SessionToToken(session *core.Session) (string, error)
	TokenToSession(token string) (*core.Session, error)
}
