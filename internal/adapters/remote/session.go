package remote

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type tokenKey struct{}

// WithAccessToken returns a context carrying the user's bearer token.
func WithAccessToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, strings.TrimSpace(token))
}

// AccessToken returns the bearer token carried by ctx.
func AccessToken(ctx context.Context) (string, bool) {
	t, ok := ctx.Value(tokenKey{}).(string)
	return t, ok && t != ""
}

// Session identifies the signed-in user.
type Session struct {
	UserID      string    `json:"user_id"`
	Email       string    `json:"email"`
	ExpiresAt   time.Time `json:"expires_at"`
	AccessToken string    `json:"-"`
}

type claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Session decodes the token on ctx. With a JWT secret the signature and expiry are
// verified; without one the token is only decoded, since the backend checks it on
// every request anyway.
func (c *Client) Session(ctx context.Context) (*Session, error) {
	token, ok := AccessToken(ctx)
	if !ok {
		return nil, ErrNotSignedIn
	}
	return c.parseToken(token)
}

func (c *Client) parseToken(token string) (*Session, error) {
	var cl claims
	if len(c.jwtSecret) > 0 {
		_, err := jwt.ParseWithClaims(token, &cl, func(t *jwt.Token) (any, error) {
			return c.jwtSecret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired(), jwt.WithTimeFunc(c.now))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrNotSignedIn, err)
		}
	} else {
		if _, _, err := jwt.NewParser().ParseUnverified(token, &cl); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrNotSignedIn, err)
		}
		if cl.ExpiresAt != nil && !cl.ExpiresAt.After(c.now()) {
			return nil, fmt.Errorf("%w: %w", ErrNotSignedIn, jwt.ErrTokenExpired)
		}
	}
	if cl.Subject == "" {
		return nil, fmt.Errorf("%w: %w", ErrNotSignedIn, errors.New("token has no subject"))
	}
	s := &Session{UserID: cl.Subject, Email: cl.Email, AccessToken: token}
	if cl.ExpiresAt != nil {
		s.ExpiresAt = cl.ExpiresAt.Time
	}
	return s, nil
}
