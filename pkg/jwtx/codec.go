package jwtx

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrExpired reports a token whose expiry claim has passed.
	ErrExpired = errors.New("jwtx: token expired")
	// ErrInvalid reports a malformed token, an unverifiable signature, or
	// claims missing required identity fields.
	ErrInvalid = errors.New("jwtx: invalid token")
)

// Config parameterizes a Codec. Secret and Algorithm are fixed at process
// start; zero TTLs fall back to the package defaults.
type Config struct {
	Secret    string
	Algorithm string // HS256 (default), HS384 or HS512
	Issuer    string

	ActivationTTL time.Duration
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Temp2FATTL    time.Duration

	// Now overrides the clock, for tests. Defaults to time.Now.
	Now func() time.Time
}

// Codec issues and decodes tokens with a shared HMAC secret. It holds no
// mutable state and is safe for concurrent use.
type Codec struct {
	secret []byte
	method jwt.SigningMethod
	issuer string
	ttls   map[Kind]time.Duration
	now    func() time.Time
}

// NewCodec validates cfg and builds a Codec.
func NewCodec(cfg Config) (*Codec, error) {
	if cfg.Secret == "" {
		return nil, errors.New("jwtx: signing secret must not be empty")
	}

	var method jwt.SigningMethod
	switch cfg.Algorithm {
	case "", "HS256":
		method = jwt.SigningMethodHS256
	case "HS384":
		method = jwt.SigningMethodHS384
	case "HS512":
		method = jwt.SigningMethodHS512
	default:
		return nil, fmt.Errorf("jwtx: unsupported algorithm %q", cfg.Algorithm)
	}

	orDefault := func(d, fallback time.Duration) time.Duration {
		if d > 0 {
			return d
		}
		return fallback
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	activationTTL := orDefault(cfg.ActivationTTL, DefaultActivationTTL)

	return &Codec{
		secret: []byte(cfg.Secret),
		method: method,
		issuer: cfg.Issuer,
		ttls: map[Kind]time.Duration{
			KindActivation:    activationTTL,
			KindAccess:        orDefault(cfg.AccessTTL, DefaultAccessTTL),
			KindRefresh:       orDefault(cfg.RefreshTTL, DefaultRefreshTTL),
			KindTemp2FA:       orDefault(cfg.Temp2FATTL, DefaultTemp2FATTL),
			KindPasswordReset: activationTTL,
		},
		now: now,
	}, nil
}

// Issue signs a token of the given kind for id and returns the compact token
// string along with its absolute expiry.
func (c *Codec) Issue(kind Kind, id Identity) (string, time.Time, error) {
	ttl, ok := c.ttls[kind]
	if !ok {
		return "", time.Time{}, fmt.Errorf("jwtx: unknown token kind %q", kind)
	}

	now := c.now().UTC()
	expiry := now.Add(ttl)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiry),
		},
		Username:   id.Username,
		Email:      id.Email,
		UserID:     id.UserID,
		MFAPending: kind == KindTemp2FA,
	}

	signed, err := jwt.NewWithClaims(c.method, claims).SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("jwtx: sign token: %w", err)
	}
	return signed, expiry, nil
}

// Decode verifies the signature and expiry of token and returns its claims.
// The signature is checked before any claim is trusted. Fails with ErrExpired
// past the exp claim and ErrInvalid for anything else, including claims
// missing a required identity field.
func (c *Codec) Decode(token string) (Claims, error) {
	var claims Claims

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{c.method.Alg()}),
		jwt.WithTimeFunc(c.now),
		jwt.WithExpirationRequired(),
	}
	if c.issuer != "" {
		opts = append(opts, jwt.WithIssuer(c.issuer))
	}

	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return c.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrExpired
		}
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	if claims.Username == "" || claims.Email == "" || claims.UserID == "" {
		return Claims{}, fmt.Errorf("%w: missing identity claims", ErrInvalid)
	}

	return claims, nil
}

// TTL reports the configured lifetime for a token kind.
func (c *Codec) TTL(kind Kind) time.Duration { return c.ttls[kind] }
