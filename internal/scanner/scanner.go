package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nao1215/ghbuster/internal/github"
	"github.com/nao1215/ghbuster/internal/heuristic"
	"github.com/nao1215/ghbuster/internal/model"
	"golang.org/x/sync/errgroup"
)

// Client is the GitHub API surface a scan needs.
type Client interface {
	heuristic.Client
	AuthenticatedUser(ctx context.Context) (*github.User, error)
}

// state is the position of a Scanner in its stage sequence.
type state int

const (
	stateUnauthenticated state = iota
	stateAuthenticated
	stateTargetValidated
	stateScanned
)

// Scanner runs heuristics against one target. It is not safe for
// concurrent use; build one per scan.
type Scanner struct {
	client     Client
	target     model.TargetSpec
	heuristics []heuristic.Heuristic
	gate       heuristic.Heuristic

	logger      *slog.Logger
	force       bool
	concurrency int
	now         func() time.Time

	state  state
	env    *heuristic.Env
	report *model.ScanReport
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scanner) {
		s.logger = logger
	}
}

// WithForce keeps scanning users the legitimacy gate lets through.
func WithForce(force bool) Option {
	return func(s *Scanner) {
		s.force = force
	}
}

// WithConcurrency sets how many heuristics, and how many sub-scans per
// composite heuristic, run at once. 1 runs everything sequentially.
func WithConcurrency(n int) Option {
	return func(s *Scanner) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithNow replaces the clock.
func WithNow(now func() time.Time) Option {
	return func(s *Scanner) {
		s.now = now
	}
}

// WithGate replaces the legitimacy gate.
func WithGate(gate heuristic.Heuristic) Option {
	return func(s *Scanner) {
		s.gate = gate
	}
}

// New creates a Scanner for target running heuristics, usually the output
// of heuristic.Resolve.
func New(client Client, target model.TargetSpec, heuristics []heuristic.Heuristic, opts ...Option) *Scanner {
	s := &Scanner{
		client:      client,
		target:      target,
		heuristics:  heuristics,
		gate:        heuristic.NewLooksLegit(),
		concurrency: DefaultConcurrency,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	s.report = model.NewScanReport(uuid.NewString(), target)
	s.logger = s.logger.With("scan_id", s.report.ID)

	s.env = heuristic.NewEnv(client, nil, s.logger)
	s.env.Now = s.now
	s.env.Sub = NewDispatcher(s.env, s.concurrency, s.logger)
	return s
}

// Report returns the report being built.
func (s *Scanner) Report() *model.ScanReport {
	return s.report
}

// Authenticate checks the token and records who it belongs to.
func (s *Scanner) Authenticate(ctx context.Context) (*github.User, error) {
	user, err := s.client.AuthenticatedUser(ctx)
	if err != nil {
		status, _ := github.StatusOf(err)
		return nil, &AuthenticationError{Status: status, Err: err}
	}
	s.logger.Info("authenticated", "login", user.Login)
	s.report.AuthenticatedAs = user.Login
	s.state = stateAuthenticated
	return user, nil
}

// ValidateTarget checks that the target exists.
func (s *Scanner) ValidateTarget(ctx context.Context) error {
	if s.state < stateAuthenticated {
		return ErrNotAuthenticated
	}

	var err error
	if s.target.IsRepository() {
		fullName, ferr := s.target.FullName()
		if ferr != nil {
			return ferr
		}
		_, err = s.client.Repository(ctx, fullName)
	} else {
		_, err = s.client.User(ctx, s.target.Username())
	}
	if err != nil {
		if github.IsGone(err) {
			return &InvalidTargetError{Target: s.target, Err: err}
		}
		return fmt.Errorf("validate %s: %w", s.target, err)
	}

	s.logger.Info("target validated", "target", s.target.String())
	if s.state < stateTargetValidated {
		s.state = stateTargetValidated
	}
	return nil
}

// PreCheck runs the legitimacy gate against a user target and reports
// whether it triggered. Repository targets are never gated.
func (s *Scanner) PreCheck(ctx context.Context) (bool, error) {
	if s.state < stateTargetValidated {
		return false, ErrTargetNotValidated
	}
	if !s.target.IsUser() || s.gate == nil {
		return false, nil
	}

	res, err := s.gate.Evaluate(ctx, s.env, s.target)
	if err != nil {
		return false, &HeuristicError{HeuristicID: s.gate.ID(), Target: s.target, Err: err}
	}
	res = res.WithHeuristic(s.gate)
	s.report.Precheck = &res

	if res.IsTriggered() {
		s.logger.Info("user looks legitimate",
			"target", s.target.String(),
			"evidence", res.Detail,
		)
	}
	return res.IsTriggered(), nil
}

// Scan runs every heuristic that applies to the target kind and returns
// the tagged results in registry order. The first unexpected failure
// aborts the scan and is returned as a *HeuristicError.
func (s *Scanner) Scan(ctx context.Context) ([]model.Result, error) {
	if s.state < stateTargetValidated {
		return nil, ErrTargetNotValidated
	}

	applicable := make([]heuristic.Heuristic, 0, len(s.heuristics))
	for _, h := range s.heuristics {
		if h.TargetKind() == s.target.Kind() {
			applicable = append(applicable, h)
		} else {
			s.logger.Debug("heuristic does not apply to target", "heuristic", h.ID())
		}
	}

	results := make([]model.Result, len(applicable))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, h := range applicable {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			s.logger.Info("running heuristic", "heuristic", h.ID())
			start := s.now()

			res, err := h.Evaluate(gctx, s.env, s.target)
			if err != nil {
				s.logger.Error("heuristic failed",
					"heuristic", h.ID(),
					"target", s.target.String(),
					"error", err,
				)
				return &HeuristicError{HeuristicID: h.ID(), Target: s.target, Err: err}
			}

			s.logger.Debug("heuristic completed",
				"heuristic", h.ID(),
				"outcome", res.Outcome.String(),
				"elapsed", s.now().Sub(start),
			)
			results[i] = res.WithHeuristic(h)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.report.Results = results
	s.state = stateScanned
	return results, nil
}

// Run performs every stage and returns the report. When the legitimacy
// gate triggers and force is off, the report has EarlyExit set and no
// results.
func (s *Scanner) Run(ctx context.Context) (*model.ScanReport, error) {
	s.report.StartedAt = s.now()
	defer func() {
		s.report.FinishedAt = s.now()
	}()

	stages := []struct {
		name string
		do   func(context.Context) (stop bool, err error)
	}{
		{"authenticate", func(ctx context.Context) (bool, error) {
			_, err := s.Authenticate(ctx)
			return false, err
		}},
		{"validate target", func(ctx context.Context) (bool, error) {
			return false, s.ValidateTarget(ctx)
		}},
		{"legitimacy pre-check", func(ctx context.Context) (bool, error) {
			legit, err := s.PreCheck(ctx)
			if err != nil || !legit {
				return false, err
			}
			if s.force {
				s.logger.Info("continuing despite legitimate-looking user, force is set")
				return false, nil
			}
			s.report.EarlyExit = true
			return true, nil
		}},
		{"scan", func(ctx context.Context) (bool, error) {
			_, err := s.Scan(ctx)
			return false, err
		}},
	}

	for _, stage := range stages {
		select {
		case <-ctx.Done():
			s.logger.Warn("scan cancelled", "stage", stage.name, "reason", ctx.Err())
			return s.report, ctx.Err()
		default:
		}

		s.logger.Debug("executing stage", "stage", stage.name, "target", s.target.String())
		stop, err := stage.do(ctx)
		if err != nil {
			return s.report, err
		}
		if stop {
			s.logger.Info("stopping early", "stage", stage.name)
			break
		}
	}
	return s.report, nil
}
