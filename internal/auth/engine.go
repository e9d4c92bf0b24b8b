package auth

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"github.com/desslyhub/platform/internal/core"
	"github.com/desslyhub/platform/internal/model"
	"github.com/desslyhub/platform/internal/policy"
)

// SessionCookie is the cookie carrying the operator session token.
const SessionCookie = "access_token"

// ResultKind distinguishes the two ways a request can be granted.
type ResultKind int

const (
	// KindSession is a first-party operator session. Sessions are never
	// subject to the origin allow-list.
	KindSession ResultKind = iota
	// KindCredential is an opaque API token.
	KindCredential
)

// Result is a granted authorization decision.
type Result struct {
	Kind     ResultKind
	Username string          // session identity, set for KindSession
	Token    *model.APIToken // set for KindCredential
}

// Tier returns the effective access level of the result. Sessions act with
// full privilege.
func (r *Result) Tier() int {
	if r.Kind == KindSession {
		return model.AccessLevelFull
	}
	return r.Token.AccessLevel
}

// TokenStore resolves a presented raw secret to a credential.
type TokenStore interface {
	Resolve(ctx context.Context, rawSecret string) (*model.APIToken, error)
}

// OriginChecker answers whether an IP or domain is allow-listed.
type OriginChecker interface {
	IsAllowed(ctx context.Context, ip, domain string) (bool, error)
}

// AuditWriter records one row per granted token call.
type AuditWriter interface {
	Record(ctx context.Context, path, method, clientIP string, apiTokenID *string) error
}

// PolicyReader serves dynamic policy flags.
type PolicyReader interface {
	GetBool(key string, def bool) bool
}

// SessionVerifier checks an operator session token and returns its identity.
type SessionVerifier interface {
	VerifySession(token string) (string, error)
}

// Engine is the authorization decision engine. Every request passes through
// Authorize before reaching any business handler.
type Engine struct {
	tokens    TokenStore
	allowlist OriginChecker
	audit     AuditWriter
	policy    PolicyReader
	sessions  SessionVerifier
	logger    zerolog.Logger
}

func NewEngine(tokens TokenStore, allowlist OriginChecker, audit AuditWriter, pol PolicyReader, sessions SessionVerifier, logger zerolog.Logger) *Engine {
	return &Engine{
		tokens:    tokens,
		allowlist: allowlist,
		audit:     audit,
		policy:    pol,
		sessions:  sessions,
		logger:    logger,
	}
}

// Authorize decides whether the request may proceed and as whom.
//
// A valid session cookie grants immediately. Otherwise the bearer secret is
// resolved; level-0 tokens are additionally gated on the origin allow-list
// when enforcement is on. Every granted token call writes one audit record
// before the result is returned.
func (e *Engine) Authorize(r *http.Request) (*Result, error) {
	ctx := r.Context()

	// Session cookie takes precedence. A present-but-invalid cookie is a
	// hard failure, not a fallthrough to token auth.
	if cookie, err := r.Cookie(SessionCookie); err == nil && cookie.Value != "" {
		username, err := e.sessions.VerifySession(cookie.Value)
		if err != nil {
			e.logger.Warn().Str("path", r.URL.Path).Msg("invalid session token")
			return nil, unauthorized("invalid session token")
		}
		return &Result{Kind: KindSession, Username: username}, nil
	}

	secret := extractBearer(r)
	if secret == "" {
		return nil, unauthorized("API token required")
	}

	tok, err := e.tokens.Resolve(ctx, secret)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			e.logger.Warn().Str("path", r.URL.Path).Msg("invalid API token")
			return nil, unauthorized("invalid API token")
		}
		return nil, fmt.Errorf("resolve token: %w", err)
	}

	clientIP := requestIP(r)

	if tok.AccessLevel == model.AccessLevelReadOnly && e.policy.GetBool(policy.KeyEnforceWhitelist, true) {
		domain := originDomain(r)

		allowed, err := e.allowlist.IsAllowed(ctx, clientIP, domain)
		if err != nil {
			return nil, fmt.Errorf("check origin allowlist: %w", err)
		}
		if !allowed {
			e.logger.Warn().
				Str("ip", clientIP).
				Str("domain", domain).
				Str("token", tok.ID).
				Msg("valid token used from non-whitelisted origin")
			if domain != "" {
				return nil, forbidden("access from this origin is not allowed (ip=%s, domain=%s)", clientIP, domain)
			}
			return nil, forbidden("access from this origin is not allowed (ip=%s)", clientIP)
		}
	}

	// The audit row must be durable before the call counts as authorized.
	if err := e.audit.Record(ctx, r.URL.Path, r.Method, clientIP, &tok.ID); err != nil {
		return nil, fmt.Errorf("record audit: %w", err)
	}

	return &Result{Kind: KindCredential, Token: tok}, nil
}

// RequireTier enforces a minimum access level on a granted result. Sessions
// always satisfy it.
func RequireTier(result *Result, minLevel int) error {
	if result.Tier() < minLevel {
		return forbidden("insufficient access level: requires %d, token has %d", minLevel, result.Tier())
	}
	return nil
}

// extractBearer pulls the opaque secret from an Authorization: Bearer
// header. Returns "" for absent or malformed headers.
func extractBearer(r *http.Request) string {
	header := r.Header.Get("Authorization")
	secret, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(secret)
}

// requestIP returns the client IP without the port. Behind the RealIP
// middleware RemoteAddr is already the originating address.
func requestIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// originDomain parses the host out of a declared Origin header, if any.
func originDomain(r *http.Request) string {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return ""
	}
	u, err := url.Parse(origin)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
