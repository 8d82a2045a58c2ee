package tokenpkg

import "fmt"

// Token formats accepted by New.
const (
	KindPaseto = "paseto"
	KindJWT    = "jwt"
)

// New returns the Maker of the given kind. An empty kind selects paseto.
func New(kind, key string) (Maker, error) {
	switch kind {
	case "", KindPaseto:
		return NewPasetoMaker(key)
	case KindJWT:
		return NewJWTMaker(key)
	}

	return nil, fmt.Errorf("unknown token maker %q", kind)
}
