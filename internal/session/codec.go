package session

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrInvalid = errors.New("invalid session cookie")

// Codec signs session ids into cookies and verifies them on the way back.
type Codec struct {
	secret     []byte
	cookieName string
	secure     bool
	maxAge     time.Duration
}

func NewCodec(secret []byte, cookieName string, secure bool, maxAge time.Duration) (*Codec, error) {
	if len(secret) == 0 {
		return nil, errors.New("session secret required")
	}
	if cookieName == "" {
		return nil, errors.New("session cookie name required")
	}
	return &Codec{secret: secret, cookieName: cookieName, secure: secure, maxAge: maxAge}, nil
}

// Encode returns "<id>.<base64 hmac(id)>".
func (c *Codec) Encode(id string) string {
	return id + "." + sign(c.secret, id)
}

// Decode verifies the signature and that the id is a UUID.
func (c *Codec) Decode(v string) (string, error) {
	id, sig, ok := strings.Cut(v, ".")
	if !ok || id == "" || strings.Contains(sig, ".") {
		return "", ErrInvalid
	}
	if _, err := uuid.Parse(id); err != nil {
		return "", ErrInvalid
	}
	if !verify(c.secret, id, sig) {
		return "", ErrInvalid
	}
	return id, nil
}

// Resolve returns the session id carried by the request, or mints a new one
// and sets the cookie. The bool reports whether the session was newly issued.
func (c *Codec) Resolve(w http.ResponseWriter, r *http.Request) (string, bool) {
	if cookie, err := r.Cookie(c.cookieName); err == nil && cookie.Value != "" {
		if id, err := c.Decode(cookie.Value); err == nil {
			return id, false
		}
	}
	id := uuid.NewString()
	c.Set(w, id)
	return id, true
}

func (c *Codec) Set(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.cookieName,
		Value:    c.Encode(id),
		Path:     "/",
		MaxAge:   int(c.maxAge.Seconds()),
		Secure:   c.secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (c *Codec) CookieName() string {
	return c.cookieName
}

func sign(secret []byte, payload string) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func verify(secret []byte, payload, sig string) bool {
	return hmac.Equal([]byte(sign(secret, payload)), []byte(sig))
}
