package correios

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"github.com/nizaesteves/backoffice/pkg/carrier"
)

// expiryMargin is subtracted from the issued expiry so a token is
// refreshed before Correios actually rejects it.
const expiryMargin = 5 * time.Minute

// modeOrder is the fallback chain: contract first, posting card second.
var modeOrder = []CredentialMode{ModeContract, ModeCard}

type cachedToken struct {
	token     string
	expiresAt time.Time
}

// Authenticator obtains and caches Correios bearer tokens, one cache
// slot per credential mode. Concurrent callers may race to refresh the
// same mode; each refresh independently produces a valid token and the
// last writer wins, so no mutual exclusion is needed beyond the atomic
// slot swap.
type Authenticator struct {
	api      APIClient
	contract string
	card     string
	logger   *otelzap.Logger
	now      func() time.Time

	contractToken atomic.Pointer[cachedToken]
	cardToken     atomic.Pointer[cachedToken]
}

// NewAuthenticator creates an Authenticator for the given credential numbers.
func NewAuthenticator(api APIClient, contract, card string, logger *otelzap.Logger) *Authenticator {
	return &Authenticator{
		api:      api,
		contract: contract,
		card:     card,
		logger:   logger,
		now:      time.Now,
	}
}

// WithClock overrides the time source. Tests use it to move past expiry
// without sleeping.
func (a *Authenticator) WithClock(now func() time.Time) *Authenticator {
	a.now = now
	return a
}

func (a *Authenticator) slot(mode CredentialMode) *atomic.Pointer[cachedToken] {
	if mode == ModeCard {
		return &a.cardToken
	}
	return &a.contractToken
}

func (a *Authenticator) number(mode CredentialMode) string {
	if mode == ModeCard {
		return a.card
	}
	return a.contract
}

// Token returns the cached token for mode when it has not expired,
// otherwise authenticates once and caches the result with the safety
// margin applied.
func (a *Authenticator) Token(ctx context.Context, mode CredentialMode) (string, error) {
	slot := a.slot(mode)
	if t := slot.Load(); t != nil && a.now().Before(t.expiresAt) {
		return t.token, nil
	}

	resp, err := a.api.Authenticate(ctx, mode, a.number(mode))
	if err != nil {
		return "", carrier.NewError(carrierName, "AUTH", "token request failed").WithCause(err)
	}

	issue, err := time.Parse(time.RFC3339, resp.Issue)
	if err != nil {
		issue = a.now()
	}
	ttlMs, err := resp.ExpiraEm.Int64()
	if err != nil {
		return "", carrier.NewError(carrierName, "AUTH", "invalid expiraEm in token response").WithCause(err)
	}

	expiresAt := issue.Add(time.Duration(ttlMs)*time.Millisecond - expiryMargin)
	slot.Store(&cachedToken{token: resp.Token, expiresAt: expiresAt})

	a.logger.Info("Correios token refreshed",
		zap.String("mode", string(mode)),
		zap.Time("expires_at", expiresAt),
	)
	return resp.Token, nil
}

// PreferredToken walks the credential modes in order and returns the
// first token obtained. A mode failing is logged and the next mode is
// tried; only when every mode fails does the call surface a single
// authentication failure.
func (a *Authenticator) PreferredToken(ctx context.Context) (string, error) {
	var lastErr error
	for _, mode := range modeOrder {
		token, err := a.Token(ctx, mode)
		if err == nil {
			return token, nil
		}
		lastErr = err
		a.logger.Warn("Correios credential mode failed, trying next",
			zap.String("mode", string(mode)),
			zap.Error(err),
		)
	}

	return "", carrier.NewError(carrierName, "AUTH", "all credential modes failed").
		WithCause(lastErr).
		WithSentinel(carrier.ErrAuthenticationFailed)
}
