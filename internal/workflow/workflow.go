package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/phrazzld/mutuals/internal/config"
	"github.com/phrazzld/mutuals/internal/delivery"
	"github.com/phrazzld/mutuals/internal/domain"
	"github.com/phrazzld/mutuals/internal/domain/follow"
	"github.com/phrazzld/mutuals/internal/platform/transport"
	"github.com/phrazzld/mutuals/internal/registration"
)

// Result describes a completed run.
type Result struct {
	RunID       uuid.UUID
	Users       int
	Diagnostics []follow.Diagnostic
	Pairs       domain.ResultSet
	Delivery    delivery.Report
}

// Workflow wires the run's components together.
type Workflow struct {
	cfg           *config.Config
	poster        transport.Poster
	logger        *slog.Logger
	driverOptions []delivery.Option
}

// Option customizes a Workflow.
type Option func(*Workflow)

// WithDriverOptions passes options through to the delivery driver.
func WithDriverOptions(opts ...delivery.Option) Option {
	return func(w *Workflow) {
		w.driverOptions = append(w.driverOptions, opts...)
	}
}

// New creates a Workflow that talks to the remote service through poster.
func New(cfg *config.Config, poster transport.Poster, logger *slog.Logger, opts ...Option) *Workflow {
	w := &Workflow{
		cfg:    cfg,
		poster: poster,
		logger: logger,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run executes the workflow once. A registration failure is returned
// immediately; a delivery failure is returned after the driver has used all
// of its attempts. The returned Result is populated as far as the run got.
func (w *Workflow) Run(ctx context.Context) (*Result, error) {
	res := &Result{RunID: uuid.New()}
	logger := w.logger.With("run_id", res.RunID.String())

	registrar := registration.NewClient(w.poster, w.cfg.Registration.URL, logger)
	reg, err := registrar.Register(ctx, registration.NewRequest(w.cfg.Identity))
	if err != nil {
		return res, fmt.Errorf("register: %w", err)
	}

	builder := follow.NewBuilder(logger, follow.DuplicatePolicy(w.cfg.Graph.DuplicatePolicy))
	graph, diags := builder.Build(reg.Users)
	res.Users = graph.Len()
	res.Diagnostics = diags

	res.Pairs = follow.Extract(graph)
	logger.InfoContext(ctx, "mutual pairs identified",
		"count", len(res.Pairs),
		"pairs", res.Pairs)

	payload, err := delivery.EncodeOutcome(w.cfg.Identity.RegNo, res.Pairs)
	if err != nil {
		return res, err
	}

	driver := delivery.NewDriver(w.poster, w.cfg.Delivery, logger, w.driverOptions...)
	res.Delivery, err = driver.Deliver(ctx, reg.Webhook, reg.AccessToken, payload)
	if err != nil {
		if transport.IsStatus(err, http.StatusUnauthorized) {
			logger.ErrorContext(ctx, "webhook rejected the access token",
				"webhook", reg.Webhook)
		}
		return res, fmt.Errorf("deliver: %w", err)
	}

	logger.InfoContext(ctx, "workflow complete",
		"users", res.Users,
		"pairs", len(res.Pairs),
		"attempts", len(res.Delivery.Attempts))
	return res, nil
}
