package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/mr-tron/base58"

	"wikid/pkg/config"
	"wikid/pkg/logger"
)

var errNoSigningKeys = errors.New("server misconfigured: no signing secrets available")

// CookieName is the session cookie carrying the signed token.
const CookieName = "SESSION"

// Token is the session credential: who and when, signed with a keyed MAC.
// Tokens are stateless; there is no server-side session store and hence
// no revocation, only the configurable expiry.
type Token struct {
	Username string `json:"username"`
	IssuedAt int64  `json:"issued_at"`
}

// NewToken issues a token for the user at the current time.
func NewToken(username string) Token {
	return Token{Username: username, IssuedAt: time.Now().UTC().Unix()}
}

// Signed renders the token as base58(payload) + "." + base58(mac) using the
// first configured signing key.
func (t Token) Signed() (string, error) {
	keys := config.GetSigningKeys()
	if len(keys) == 0 {
		logger.Error("no_signing_keys_configured")
		return "", errNoSigningKeys
	}
	payload, err := json.Marshal(t)
	if err != nil {
		return "", err
	}
	mac := hmac.New(sha256.New, []byte(keys[0]))
	mac.Write(payload)
	return base58.Encode(payload) + "." + base58.Encode(mac.Sum(nil)), nil
}

// VerifyToken recomputes the MAC over the decoded payload and compares in
// constant time, trying every configured signing key so keys can rotate.
// Any malformed input, bad signature or expired issue time verifies to
// (zero, false); verification never errors.
func VerifyToken(signed string) (Token, bool) {
	encPayload, encSig, found := strings.Cut(signed, ".")
	if !found {
		return Token{}, false
	}
	payload, err := base58.Decode(encPayload)
	if err != nil {
		return Token{}, false
	}
	sig, err := base58.Decode(encSig)
	if err != nil {
		return Token{}, false
	}

	ok := false
	for _, k := range config.GetSigningKeys() {
		mac := hmac.New(sha256.New, []byte(k))
		mac.Write(payload)
		if hmac.Equal(mac.Sum(nil), sig) {
			ok = true
			break
		}
	}
	if !ok {
		return Token{}, false
	}

	var t Token
	if err := json.Unmarshal(payload, &t); err != nil {
		return Token{}, false
	}
	if ttl := config.GetTokenTTL(); ttl > 0 {
		if time.Since(time.Unix(t.IssuedAt, 0)) > ttl {
			logger.Debug("token_expired", "user", t.Username)
			return Token{}, false
		}
	}
	return t, true
}
