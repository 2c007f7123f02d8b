package workflow

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/phrazzld/mutuals/internal/config"
	"github.com/phrazzld/mutuals/internal/delivery"
	"github.com/phrazzld/mutuals/internal/domain"
	"github.com/phrazzld/mutuals/internal/platform/transport"
	"github.com/phrazzld/mutuals/internal/registration"
	"github.com/phrazzld/mutuals/internal/stubapi"
	"github.com/phrazzld/mutuals/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	stub   *stubapi.Server
	srv    *httptest.Server
	cfg    *config.Config
	waits  []time.Duration
	logger *slog.Logger
}

func newHarness(t *testing.T, opts stubapi.Options) *harness {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	stub := stubapi.NewServer(opts, logger)
	srv := httptest.NewServer(stub.Router())
	t.Cleanup(srv.Close)

	return &harness{
		stub:   stub,
		srv:    srv,
		logger: logger,
		cfg: &config.Config{
			Identity:     config.IdentityConfig{Name: "Jane Doe", RegNo: "REG12347", Email: "jane@example.com"},
			Registration: config.RegistrationConfig{URL: srv.URL + stubapi.RegisterPath},
			Delivery:     config.DeliveryConfig{MaxAttempts: 4, Backoff: time.Second},
			HTTP:         config.HTTPConfig{Timeout: 5 * time.Second},
			Graph:        config.GraphConfig{DuplicatePolicy: config.DuplicateLastWins},
			Log:          config.LogConfig{Level: "debug", Format: "json"},
		},
	}
}

func (h *harness) run(t *testing.T) (*Result, error) {
	t.Helper()
	poster := transport.NewClient(h.cfg.HTTP, h.logger)
	w := New(h.cfg, poster, h.logger, WithDriverOptions(delivery.WithSleeper(func(d time.Duration) {
		h.waits = append(h.waits, d)
	})))
	return w.Run(context.Background())
}

func TestRunDeliversMutualPairs(t *testing.T) {
	h := newHarness(t, stubapi.Options{})

	res, err := h.run(t)

	require.NoError(t, err)
	assert.NotEmpty(t, res.RunID.String())
	assert.Equal(t, 4, res.Users, "record without id is skipped")
	require.Len(t, res.Diagnostics, 1)
	assert.ErrorIs(t, res.Diagnostics[0].Err, domain.ErrMissingID)
	assert.Equal(t, domain.ResultSet{{A: 1, B: 2}, {A: 2, B: 3}}, res.Pairs)
	assert.Equal(t, delivery.StateDelivered, res.Delivery.State)
	assert.Empty(t, h.waits)

	subs := h.stub.Submissions()
	require.Len(t, subs, 1)
	assert.Equal(t, "REG12347", subs[0].RegNo)
	assert.Equal(t, [][2]int{{1, 2}, {2, 3}}, subs[0].Outcome)
	assert.True(t, subs[0].Correct)
}

func TestRunRetriesDelivery(t *testing.T) {
	h := newHarness(t, stubapi.Options{FailFirst: 3})

	res, err := h.run(t)

	require.NoError(t, err)
	assert.Len(t, res.Delivery.Attempts, 4)
	assert.Len(t, h.waits, 3)
	assert.Equal(t, 4, h.stub.Deliveries())
	assert.Len(t, h.stub.Submissions(), 1)
}

func TestRunExhaustsDelivery(t *testing.T) {
	h := newHarness(t, stubapi.Options{FailFirst: 100})

	res, err := h.run(t)

	require.ErrorIs(t, err, delivery.ErrDeliveryExhausted)
	assert.True(t, transport.IsStatus(err, 503))
	assert.Equal(t, delivery.StateExhausted, res.Delivery.State)
	assert.Equal(t, 4, h.stub.Deliveries(), "never a fifth call")
	assert.Empty(t, h.stub.Submissions())
}

func TestRunWithoutUsersDeliversEmptyOutcome(t *testing.T) {
	h := newHarness(t, stubapi.Options{OmitUsers: true})

	res, err := h.run(t)

	require.NoError(t, err)
	assert.Equal(t, 0, res.Users)
	assert.Empty(t, res.Pairs)
	subs := h.stub.Submissions()
	require.Len(t, subs, 1)
	assert.Empty(t, subs[0].Outcome)
}

func TestRunAppliesDuplicatePolicy(t *testing.T) {
	users := []json.RawMessage{
		json.RawMessage(`{"id": 1, "follows": [2]}`),
		json.RawMessage(`{"id": 2, "follows": [1]}`),
		json.RawMessage(`{"id": 1, "follows": []}`),
	}

	t.Run("last wins", func(t *testing.T) {
		h := newHarness(t, stubapi.Options{Users: users})

		res, err := h.run(t)

		require.NoError(t, err)
		assert.Empty(t, res.Pairs)
	})

	t.Run("first wins", func(t *testing.T) {
		h := newHarness(t, stubapi.Options{Users: users})
		h.cfg.Graph.DuplicatePolicy = config.DuplicateFirstWins

		res, err := h.run(t)

		require.NoError(t, err)
		assert.Equal(t, domain.ResultSet{{A: 1, B: 2}}, res.Pairs)
	})
}

func TestRunRegistrationFailureIsFatal(t *testing.T) {
	h := newHarness(t, stubapi.Options{})
	h.cfg.Identity.Email = "invalid"

	res, err := h.run(t)

	require.ErrorIs(t, err, registration.ErrRegistrationFailed)
	assert.True(t, transport.IsStatus(err, 400))
	assert.Equal(t, delivery.State(0), res.Delivery.State, "delivery never started")
	assert.Equal(t, 0, h.stub.Deliveries())
}

// tokenSwapper forwards to a real poster but replaces any non-empty token.
type tokenSwapper struct {
	next  transport.Poster
	token string
}

func (p tokenSwapper) PostJSON(ctx context.Context, url string, body []byte, token string) ([]byte, error) {
	if token != "" {
		token = p.token
	}
	return p.next.PostJSON(ctx, url, body, token)
}

func TestRunReportsRejectedToken(t *testing.T) {
	h := newHarness(t, stubapi.Options{})
	capture := testutils.NewLogCapture()
	poster := tokenSwapper{next: transport.NewClient(h.cfg.HTTP, h.logger), token: "stale-token"}
	w := New(h.cfg, poster, capture.Logger(), WithDriverOptions(delivery.WithSleeper(func(time.Duration) {})))

	_, err := w.Run(context.Background())

	require.ErrorIs(t, err, delivery.ErrDeliveryExhausted)
	assert.True(t, transport.IsStatus(err, 401))
	var rejected bool
	for _, e := range capture.AtLevel(slog.LevelError) {
		if e["message"] == "webhook rejected the access token" {
			rejected = true
		}
	}
	assert.True(t, rejected)
	assert.Equal(t, 0, h.stub.Deliveries())
}
