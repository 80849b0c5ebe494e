package correios_test

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"github.com/nizaesteves/backoffice/pkg/carrier"
	"github.com/nizaesteves/backoffice/pkg/carrier/correios"
)

func nopLogger() *otelzap.Logger {
	return otelzap.New(zap.NewNop())
}

func tokenResponse(token string, issue time.Time, ttl time.Duration) *correios.TokenResponse {
	return &correios.TokenResponse{
		Token:    token,
		Issue:    issue.Format(time.RFC3339),
		ExpiraEm: json.Number(strconv.FormatInt(ttl.Milliseconds(), 10)),
	}
}

func TestAuthenticator_CachesToken(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	calls := 0
	mockAPI := correios.NewMockAPIClient()
	mockAPI.OnAuthenticate = func(ctx context.Context, mode correios.CredentialMode, number string) (*correios.TokenResponse, error) {
		calls++
		return tokenResponse("tok-1", now, 24*time.Hour), nil
	}

	auth := correios.NewAuthenticator(mockAPI, "9912345678", "0067599079", nopLogger()).
		WithClock(func() time.Time { return now })

	ctx := context.Background()

	token, err := auth.Token(ctx, correios.ModeContract)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", token)
	assert.Equal(t, 1, calls)

	// Second call inside the validity window must not touch the network.
	token, err = auth.Token(ctx, correios.ModeContract)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", token)
	assert.Equal(t, 1, calls, "cache hit must not authenticate again")
}

func TestAuthenticator_RefreshesAfterExpiry(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	calls := 0
	mockAPI := correios.NewMockAPIClient()
	mockAPI.OnAuthenticate = func(ctx context.Context, mode correios.CredentialMode, number string) (*correios.TokenResponse, error) {
		calls++
		return tokenResponse("tok", now, time.Hour), nil
	}

	auth := correios.NewAuthenticator(mockAPI, "9912345678", "0067599079", nopLogger()).
		WithClock(func() time.Time { return now })

	ctx := context.Background()
	_, err := auth.Token(ctx, correios.ModeContract)
	require.NoError(t, err)
	require.Equal(t, 1, calls)

	// 56 minutes in: past the 5-minute safety margin of a 1h token.
	now = now.Add(56 * time.Minute)

	_, err = auth.Token(ctx, correios.ModeContract)
	require.NoError(t, err)
	assert.Equal(t, 2, calls, "expired token must trigger exactly one refresh")

	_, err = auth.Token(ctx, correios.ModeContract)
	require.NoError(t, err)
	assert.Equal(t, 2, calls, "refreshed token must be cached again")
}

func TestAuthenticator_ModesAreCachedIndependently(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	var modes []correios.CredentialMode
	mockAPI := correios.NewMockAPIClient()
	mockAPI.OnAuthenticate = func(ctx context.Context, mode correios.CredentialMode, number string) (*correios.TokenResponse, error) {
		modes = append(modes, mode)
		return tokenResponse("tok-"+string(mode), now, time.Hour), nil
	}

	auth := correios.NewAuthenticator(mockAPI, "9912345678", "0067599079", nopLogger()).
		WithClock(func() time.Time { return now })

	ctx := context.Background()

	contract, err := auth.Token(ctx, correios.ModeContract)
	require.NoError(t, err)
	card, err := auth.Token(ctx, correios.ModeCard)
	require.NoError(t, err)

	assert.Equal(t, "tok-contrato", contract)
	assert.Equal(t, "tok-cartaopostagem", card)
	assert.Equal(t, []correios.CredentialMode{correios.ModeContract, correios.ModeCard}, modes)
}

func TestAuthenticator_PreferredToken_FallsBackToCard(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	mockAPI := correios.NewMockAPIClient()
	mockAPI.OnAuthenticate = func(ctx context.Context, mode correios.CredentialMode, number string) (*correios.TokenResponse, error) {
		if mode == correios.ModeContract {
			return nil, &correios.APIError{Code: "HTTP_401", Message: "invalid contract"}
		}
		assert.Equal(t, "0067599079", number)
		return tokenResponse("card-token", now, time.Hour), nil
	}

	auth := correios.NewAuthenticator(mockAPI, "9912345678", "0067599079", nopLogger()).
		WithClock(func() time.Time { return now })

	token, err := auth.PreferredToken(context.Background())
	require.NoError(t, err, "contract failure must not surface when card mode succeeds")
	assert.Equal(t, "card-token", token)
}

func TestAuthenticator_PreferredToken_AllModesFail(t *testing.T) {
	mockAPI := correios.NewMockAPIClient()
	mockAPI.SimulateErrors = true

	auth := correios.NewAuthenticator(mockAPI, "9912345678", "0067599079", nopLogger())

	_, err := auth.PreferredToken(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, carrier.ErrAuthenticationFailed))
}
