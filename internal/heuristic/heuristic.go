package heuristic

import (
	"context"
	"iter"
	"log/slog"
	"time"

	"github.com/nao1215/ghbuster/internal/github"
	"github.com/nao1215/ghbuster/internal/identity"
	"github.com/nao1215/ghbuster/internal/model"
)

// Client is the read-only GitHub API surface detectors use.
type Client interface {
	User(ctx context.Context, login string) (*github.User, error)
	UserByID(ctx context.Context, id int64) (*github.User, error)
	Repository(ctx context.Context, fullName string) (*github.Repository, error)
	UserRepositories(ctx context.Context, login string) iter.Seq2[github.Repository, error]
	Branches(ctx context.Context, fullName string) iter.Seq2[github.Branch, error]
	Commits(ctx context.Context, fullName, sha string) iter.Seq2[github.Commit, error]
	Stargazers(ctx context.Context, fullName string) iter.Seq2[github.User, error]
	StarredCount(ctx context.Context, login string) (int, error)
	SearchIssuesCount(ctx context.Context, query string) (int, error)
}

// Heuristic is a single detector.
type Heuristic interface {
	// ID is the stable identifier used by --include and --exclude.
	ID() string

	// Name is a short human-readable title.
	Name() string

	// Description explains what the detector looks for.
	Description() string

	// TargetKind is the kind of target the detector applies to.
	TargetKind() model.TargetKind

	// Evaluate runs the detector. Errors are unexpected upstream failures;
	// statuses a detector knows how to interpret never surface here.
	Evaluate(ctx context.Context, env *Env, target model.TargetSpec) (model.Result, error)
}

// Env carries everything a detector may use during one scan. Resolvers
// memoize for the lifetime of the Env, so a fresh Env is built per scan.
type Env struct {
	Client Client

	// Sub runs sub-scans on behalf of composite detectors.
	Sub SubScanner

	// Users tells whether an account id still resolves.
	Users *identity.Resolver[int64]

	// Repos tells whether a repository still resolves.
	Repos *identity.Resolver[string]

	Logger *slog.Logger

	// Now is the clock. Detectors never call time.Now directly.
	Now func() time.Time
}

// NewEnv builds an Env with fresh resolvers backed by client.
func NewEnv(client Client, sub SubScanner, logger *slog.Logger) *Env {
	if logger == nil {
		logger = slog.Default()
	}
	return &Env{
		Client: client,
		Sub:    sub,
		Users:  identity.NewUserResolver(client),
		Repos:  identity.NewRepositoryResolver(client),
		Logger: logger,
		Now:    time.Now,
	}
}

func (e *Env) now() time.Time {
	if e.Now == nil {
		return time.Now()
	}
	return e.Now()
}

func (e *Env) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.Default()
	}
	return e.Logger
}

// SubScanRequest asks for a user to be scanned on behalf of a composite
// detector.
type SubScanRequest struct {
	// Target is the user to scan.
	Target model.TargetSpec

	// Gate, when set, runs first. If it triggers, the user is considered
	// legitimate and no other detector runs.
	Gate Heuristic

	// Select picks the detectors to run from the user's profile.
	Select func(profile *github.User) []Heuristic
}

// SubScanResult is the outcome of one SubScanRequest.
type SubScanResult struct {
	Target model.TargetSpec

	// Legit is true when the gate triggered.
	Legit bool

	// Results holds one tagged result per selected detector, in selection
	// order. It is empty when Legit is true.
	Results []model.Result
}

// Triggered returns the ids of the detectors that fired.
func (r SubScanResult) Triggered() []string {
	var ids []string
	for _, res := range r.Results {
		if res.IsTriggered() {
			ids = append(ids, res.HeuristicID())
		}
	}
	return ids
}

// Suspicious reports whether any selected detector fired.
func (r SubScanResult) Suspicious() bool {
	return len(r.Triggered()) > 0
}

// SubScanner runs sub-scans and returns their results in request order.
type SubScanner interface {
	SubScan(ctx context.Context, requests []SubScanRequest) ([]SubScanResult, error)
}

// RunSubScan evaluates a single request sequentially. Schedulers call it
// once per request.
func RunSubScan(ctx context.Context, env *Env, req SubScanRequest) (SubScanResult, error) {
	out := SubScanResult{Target: req.Target}

	if req.Gate != nil {
		gate, err := req.Gate.Evaluate(ctx, env, req.Target)
		if err != nil {
			return out, err
		}
		if gate.IsTriggered() {
			env.logger().Info("user looks legitimate, skipping", "user", req.Target.Username())
			out.Legit = true
			return out, nil
		}
	}

	profile, err := env.Client.User(ctx, req.Target.Username())
	if err != nil {
		return out, err
	}

	selected := req.Select(profile)
	env.logger().Info("analyzing user",
		"user", profile.Login,
		"heuristics", len(selected),
	)
	for _, h := range selected {
		res, err := h.Evaluate(ctx, env, req.Target)
		if err != nil {
			return out, err
		}
		if res.IsTriggered() {
			env.logger().Debug("sub-scan heuristic triggered",
				"user", profile.Login,
				"heuristic", h.ID(),
			)
		}
		out.Results = append(out.Results, res.WithHeuristic(h))
	}
	return out, nil
}

// Sequential is a SubScanner that runs requests one after another.
type Sequential struct {
	Env *Env
}

// SubScan implements SubScanner.
func (s Sequential) SubScan(ctx context.Context, requests []SubScanRequest) ([]SubScanResult, error) {
	out := make([]SubScanResult, 0, len(requests))
	for _, req := range requests {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res, err := RunSubScan(ctx, s.Env, req)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, nil
}

// descriptor implements the naming half of Heuristic for embedding.
type descriptor struct {
	id          string
	name        string
	description string
	kind        model.TargetKind
}

func (d descriptor) ID() string                   { return d.id }
func (d descriptor) Name() string                 { return d.name }
func (d descriptor) Description() string          { return d.description }
func (d descriptor) TargetKind() model.TargetKind { return d.kind }
