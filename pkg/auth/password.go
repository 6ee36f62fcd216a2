package auth

import (
	"golang.org/x/crypto/bcrypt"
)

// Verifier hashes and checks passwords. The hashing primitive is pluggable
// so deployments (and tests) can swap cost or scheme without touching the
// identity flow.
type Verifier interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

// BcryptVerifier is the default Verifier.
type BcryptVerifier struct {
	// Cost of 0 uses bcrypt.DefaultCost.
	Cost int
}

func (v BcryptVerifier) Hash(password string) (string, error) {
	cost := v.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

func (v BcryptVerifier) Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// DefaultVerifier is used wherever no explicit Verifier is injected.
var DefaultVerifier Verifier = BcryptVerifier{}
