package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"creditagency/handler/render"
	"creditagency/handler/request"

	"github.com/fox-one/pkg/logger"
	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/twitchtv/twirp"
)

// Config token signing config
type Config struct {
	Secret string        `json:"secret"`
	Issuer string        `json:"issuer"`
	TTL    time.Duration `json:"ttl"`
}

// Authenticator issues and verifies bearer tokens whose subject is the caller identity
type Authenticator struct {
	cfg    Config
	secret []byte
}

// New new authenticator
func New(cfg Config) *Authenticator {
	return &Authenticator{
		cfg:    cfg,
		secret: []byte(strings.TrimSpace(cfg.Secret)),
	}
}

// Issue signed token for subject
func (a *Authenticator) Issue(subject string) (string, error) {
	if len(a.secret) == 0 {
		return "", errors.New("auth secret not configured")
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:  subject,
		Issuer:   a.cfg.Issuer,
		IssuedAt: jwt.NewNumericDate(now),
	}
	if a.cfg.TTL > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(a.cfg.TTL))
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// Parse verify token and return its subject
func (a *Authenticator) Parse(token string) (string, error) {
	if len(a.secret) == 0 {
		return "", errors.New("auth secret not configured")
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if a.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.cfg.Issuer))
	}

	var claims jwt.RegisteredClaims
	if _, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, opts...); err != nil {
		return "", err
	}

	if claims.Subject == "" {
		return "", errors.New("token without subject")
	}

	return claims.Subject, nil
}

// HandleAuthentication puts the caller of a valid bearer token into the request context
func HandleAuthentication(a *Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := logger.FromContext(ctx)

			accessToken := getBearerToken(r)
			if accessToken == "" {
				next.ServeHTTP(w, r)
				return
			}

			caller, err := a.Parse(accessToken)
			if err != nil {
				next.ServeHTTP(w, r)
				log.WithError(err).Debugln("parse access token error:", err)
				return
			}

			next.ServeHTTP(w, r.WithContext(request.WithCaller(ctx, caller)))
		}

		return http.HandlerFunc(fn)
	}
}

// LoginRequired rejects requests without an authenticated caller
func LoginRequired(next http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		if _, ok := request.Caller(r.Context()); !ok {
			render.Error(w, twirp.NewError(twirp.Unauthenticated, "login required"))
			return
		}

		next.ServeHTTP(w, r)
	}

	return http.HandlerFunc(fn)
}

func getBearerToken(r *http.Request) string {
	s := r.Header.Get("Authorization")
	return strings.TrimPrefix(s, "Bearer ")
}
