package view

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/socialchef/mise/internal/errors"
	"github.com/socialchef/mise/internal/logger"
	"github.com/socialchef/mise/internal/metrics"
	"github.com/socialchef/mise/internal/sentry"
	"github.com/socialchef/mise/internal/services/recipe"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/semaphore"
)

// MessageUnexpected is shown for failures that carry no application error.
const MessageUnexpected = "An unexpected error occurred"

var (
	ErrBusy       = errors.New("a recipe fetch is already in progress")
	ErrBlankQuery = errors.New("query is blank")

	errNoRecipe = errors.New("fetcher returned neither recipe nor error")
)

// Phase is the lifecycle position of the view.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseSuccess
	PhaseFailure
)

// String returns the phase name used in JSON and templates.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseSuccess:
		return "success"
	case PhaseFailure:
		return "failure"
	default:
		return "unknown"
	}
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// State is a snapshot of everything the page renders.
type State struct {
	Phase        Phase                `json:"phase"`
	Query        string               `json:"query"`
	Recipe       *recipe.RecipeResult `json:"recipe,omitempty"`
	ErrorMessage string               `json:"errorMessage,omitempty"`
	ErrorHint    string               `json:"errorHint,omitempty"`
}

// Fetcher is the recipe lookup the controller drives.
type Fetcher interface {
	FetchRecipe(ctx context.Context, query string) (*recipe.RecipeResult, error)
}

// Controller owns the view state. At most one fetch runs at a time.
type Controller struct {
	fetcher Fetcher
	gate    *semaphore.Weighted
	timeout time.Duration
	logger  *slog.Logger

	mu    sync.RWMutex
	state State
}

type Option func(*Controller)

// WithTimeout bounds each fetch. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(c *Controller) {
		c.timeout = d
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = l
	}
}

// New creates a controller in the idle phase.
func New(fetcher Fetcher, opts ...Option) *Controller {
	c := &Controller{
		fetcher: fetcher,
		gate:    semaphore.NewWeighted(1),
		logger:  slog.Default(),
		state:   State{Phase: PhaseIdle},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetQuery replaces the pending query text. Allowed in every phase.
func (c *Controller) SetQuery(text string) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Query = text
	return c.snapshot()
}

// State returns a copy of the current view state.
func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot()
}

// CanSubmit reports whether the submit control should be enabled.
func (c *Controller) CanSubmit() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.Phase != PhaseLoading && strings.TrimSpace(c.state.Query) != ""
}

// Submit starts a fetch for the trimmed query and returns a channel that
// receives the settled state once. It returns ErrBusy while a fetch is in
// flight and ErrBlankQuery for a blank query, leaving the state unchanged.
//
// The fetch outlives ctx cancellation; only ctx values (trace, hub) are kept.
func (c *Controller) Submit(ctx context.Context) (<-chan State, error) {
	if !c.gate.TryAcquire(1) {
		c.reject(ctx, "busy")
		return nil, ErrBusy
	}

	c.mu.Lock()
	query := strings.TrimSpace(c.state.Query)
	if query == "" {
		c.mu.Unlock()
		c.gate.Release(1)
		c.reject(ctx, "blank_query")
		return nil, ErrBlankQuery
	}
	c.state.Phase = PhaseLoading
	c.state.ErrorMessage = ""
	c.state.ErrorHint = ""
	c.mu.Unlock()

	fetchID := uuid.NewString()
	c.logger.InfoContext(ctx, "Recipe fetch started", "fetch_id", fetchID, "query", query, logger.WithTraceContext(ctx))

	done := make(chan State, 1)
	go c.run(context.WithoutCancel(ctx), fetchID, query, done)
	return done, nil
}

func (c *Controller) run(ctx context.Context, fetchID, query string, done chan<- State) {
	result, err := c.fetch(ctx, fetchID, query)
	settled := c.settle(ctx, fetchID, result, err)
	c.gate.Release(1)
	done <- settled
	close(done)
}

func (c *Controller) fetch(ctx context.Context, fetchID, query string) (result *recipe.RecipeResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("recipe fetch panicked: %v", r)
			sentry.CaptureException(ctx, err)
			c.logger.ErrorContext(ctx, "Recipe fetch panicked", "fetch_id", fetchID, "panic", r, logger.WithTraceContext(ctx))
		}
	}()

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	return c.fetcher.FetchRecipe(ctx, query)
}

func (c *Controller) settle(ctx context.Context, fetchID string, result *recipe.RecipeResult, err error) State {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err == nil && result == nil {
		err = errNoRecipe
	}
	if err != nil {
		message, hint := describe(err)
		// recipe and query survive a failed fetch
		c.state.Phase = PhaseFailure
		c.state.ErrorMessage = message
		c.state.ErrorHint = hint
		c.logger.WarnContext(ctx, "Recipe fetch settled with failure", "fetch_id", fetchID, "message", message, logger.WithTraceContext(ctx))
		return c.snapshot()
	}

	c.state.Phase = PhaseSuccess
	c.state.Recipe = result
	c.state.ErrorMessage = ""
	c.state.ErrorHint = ""
	c.state.Query = ""
	c.logger.InfoContext(ctx, "Recipe fetch settled", "fetch_id", fetchID, "recipe", result.RecipeName, logger.WithTraceContext(ctx))
	return c.snapshot()
}

func (c *Controller) reject(ctx context.Context, reason string) {
	metrics.SubmitRejectedTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
	c.logger.DebugContext(ctx, "Submit rejected", "reason", reason)
}

// snapshot copies the state; callers hold mu.
func (c *Controller) snapshot() State {
	s := c.state
	if s.Recipe != nil {
		r := *s.Recipe
		r.Ingredients = slices.Clone(r.Ingredients)
		s.Recipe = &r
	}
	return s
}

// describe maps a fetch error to the banner text and recovery hint.
func describe(err error) (string, string) {
	if appErr, ok := apperrors.As(err); ok && appErr.Message != "" {
		return appErr.Message, appErr.RecoverySuggestion()
	}
	return MessageUnexpected, ""
}
