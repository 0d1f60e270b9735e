// Package reconcile fills empty pull request bodies with the description of
// the ticket named in the pull request's branch.
//
// A pass lists the tracked author's open pull requests and evaluates them one
// by one, in listing order. An issue is updated only when all of these hold:
// it is a pull request, its body is empty, its repository is private, the
// repository owner is the allow-listed owner, and its head branch carries a
// ticket id. Nothing is remembered between passes; a pull request whose body
// has been filled is skipped on the next pass because its body is no longer
// empty.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/danielolaszy/prfill/internal/logging"
	"github.com/danielolaszy/prfill/internal/markup"
	"github.com/danielolaszy/prfill/pkg/models"
)

const (
	// DefaultInterval is the time between two passes.
	DefaultInterval = 5 * time.Minute
	// DefaultCallTimeout bounds every call to the code host or ticket service.
	DefaultCallTimeout = 30 * time.Second
)

// CodeHost lists, reads and updates pull requests.
type CodeHost interface {
	ListOpenPullRequests(ctx context.Context) ([]models.CandidateIssue, error)
	GetPullRequest(ctx context.Context, reference string) (models.PullRequestDetail, error)
	UpdatePullRequestBody(ctx context.Context, reference, body string) (models.PullRequestDetail, error)
}

// TicketSource looks up tickets by numeric id.
type TicketSource interface {
	GetTicket(ctx context.Context, id int) (models.Ticket, error)
}

// Transformer converts a ticket description into a pull request body.
type Transformer func(description string) string

// Outcome is the result of evaluating one issue.
type Outcome string

const (
	OutcomeUpdated        Outcome = "updated"
	OutcomeDryRun         Outcome = "dry_run"
	OutcomeNotPullRequest Outcome = "not_pull_request"
	OutcomeHasBody        Outcome = "has_body"
	OutcomePublic         Outcome = "public"
	OutcomeOwnerMismatch  Outcome = "owner_mismatch"
	OutcomeNoTicketID     Outcome = "no_ticket_id"
	OutcomeFailed         Outcome = "failed"
)

// Summary counts what happened during one pass.
type Summary struct {
	Listed  int
	Updated int
	Skipped int
	Failed  int
}

// Engine runs reconciliation passes.
type Engine struct {
	codeHost    CodeHost
	tickets     TicketSource
	owner       string
	interval    time.Duration
	callTimeout time.Duration
	transform   Transformer
	dryRun      bool
}

// Option customizes an Engine.
type Option func(*Engine)

// WithInterval sets the time between passes.
func WithInterval(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.interval = d
		}
	}
}

// WithCallTimeout sets the deadline applied to each outbound call.
func WithCallTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.callTimeout = d
		}
	}
}

// WithTransformer replaces the description to body conversion.
func WithTransformer(t Transformer) Option {
	return func(e *Engine) {
		if t != nil {
			e.transform = t
		}
	}
}

// WithDryRun makes the engine log the body it would write instead of writing it.
func WithDryRun(dryRun bool) Option {
	return func(e *Engine) {
		e.dryRun = dryRun
	}
}

// New creates an Engine that updates pull requests in repositories owned by owner.
func New(codeHost CodeHost, tickets TicketSource, owner string, opts ...Option) *Engine {
	e := &Engine{
		codeHost:    codeHost,
		tickets:     tickets,
		owner:       owner,
		interval:    DefaultInterval,
		callTimeout: DefaultCallTimeout,
		transform:   markup.ToMarkdown,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run performs a pass immediately and then once per interval until ctx is
// cancelled. Pass errors are logged and the loop carries on. The next tick is
// only awaited once the current pass returns, although a call abandoned by
// withTimeout may still complete while a later pass runs.
func (e *Engine) Run(ctx context.Context) error {
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	logging.Info("starting reconciliation loop",
		"interval", e.interval,
		"call_timeout", e.callTimeout,
		"owner", e.owner,
		"dry_run", e.dryRun)

	for {
		logging.Info("checking for new pull requests")
		if _, err := e.ReconcileOnce(ctx); err != nil && ctx.Err() == nil {
			logging.Error("error processing issues", "error", err)
		}

		select {
		case <-ctx.Done():
			logging.Info("stopping reconciliation loop")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// ReconcileOnce performs exactly one pass. Only a failure to list the open
// pull requests is returned; failures on individual issues are logged and
// counted in the summary.
func (e *Engine) ReconcileOnce(ctx context.Context) (Summary, error) {
	start := time.Now()
	defer func() {
		passDuration.Observe(time.Since(start).Seconds())
	}()

	var summary Summary

	issues, err := withTimeout(ctx, e.callTimeout, e.codeHost.ListOpenPullRequests)
	if err != nil {
		passCounter.WithLabelValues("error").Inc()
		return summary, fmt.Errorf("failed to list open pull requests: %w", err)
	}
	summary.Listed = len(issues)

	for _, issue := range issues {
		if ctx.Err() != nil {
			break
		}

		logging.Debug("received issue",
			"issue", issue.Reference,
			"pull_request", issue.PullRequestReference,
			"body_length", len(issue.Body))

		outcome, err := e.Evaluate(ctx, issue)
		issueCounter.WithLabelValues(string(outcome)).Inc()

		switch {
		case err != nil:
			summary.Failed++
			logging.Error("error processing issue",
				"issue", issue.Reference,
				"error", err)
		case outcome == OutcomeUpdated:
			summary.Updated++
		default:
			summary.Skipped++
		}
	}

	passCounter.WithLabelValues("ok").Inc()
	logging.Info("reconciliation pass complete",
		"listed", summary.Listed,
		"updated", summary.Updated,
		"skipped", summary.Skipped,
		"failed", summary.Failed,
		"duration", time.Since(start).Round(time.Millisecond))

	return summary, nil
}

// Evaluate decides whether the issue's pull request should get a ticket
// derived body and applies it. Ineligible issues return a skip outcome and a
// nil error; an error means an external call or the id parse failed.
func (e *Engine) Evaluate(ctx context.Context, issue models.CandidateIssue) (Outcome, error) {
	if !issue.IsPullRequest() {
		return OutcomeNotPullRequest, nil
	}

	// A body that is already set is never overwritten.
	if issue.Body != "" {
		return OutcomeHasBody, nil
	}

	pull, err := withTimeout(ctx, e.callTimeout, func(ctx context.Context) (models.PullRequestDetail, error) {
		return e.codeHost.GetPullRequest(ctx, issue.PullRequestReference)
	})
	if err != nil {
		return OutcomeFailed, fmt.Errorf("failed to get pull request: %w", err)
	}

	if !pull.IsPrivate {
		logging.Debug("skipping pull request in public repository", "pull_request", pull.Reference)
		return OutcomePublic, nil
	}

	if pull.RepositoryOwner != e.owner {
		logging.Debug("skipping pull request outside owner filter",
			"pull_request", pull.Reference,
			"owner", pull.RepositoryOwner)
		return OutcomeOwnerMismatch, nil
	}

	ticketID, found, err := ExtractTicketID(pull.HeadBranchName)
	if err != nil {
		return OutcomeFailed, err
	}
	if !found {
		logging.Debug("no ticket id in branch name",
			"pull_request", pull.Reference,
			"branch", pull.HeadBranchName)
		return OutcomeNoTicketID, nil
	}

	return e.applyTicket(ctx, pull, ticketID)
}

func (e *Engine) applyTicket(ctx context.Context, pull models.PullRequestDetail, ticketID int) (Outcome, error) {
	logging.Info("updating pull request",
		"pull_request", pull.Reference,
		"branch", pull.HeadBranchName,
		"ticket_id", ticketID)

	ticket, err := withTimeout(ctx, e.callTimeout, func(ctx context.Context) (models.Ticket, error) {
		return e.tickets.GetTicket(ctx, ticketID)
	})
	if err != nil {
		return OutcomeFailed, fmt.Errorf("failed to get ticket %d: %w", ticketID, err)
	}

	body := e.transform(ticket.Description)

	if e.dryRun {
		logging.Info("dry run, not updating pull request",
			"pull_request", pull.Reference,
			"ticket_id", ticketID,
			"body", body)
		return OutcomeDryRun, nil
	}

	_, err = withTimeout(ctx, e.callTimeout, func(ctx context.Context) (models.PullRequestDetail, error) {
		return e.codeHost.UpdatePullRequestBody(ctx, pull.Reference, body)
	})
	if err != nil {
		return OutcomeFailed, fmt.Errorf("failed to update pull request %s: %w", pull.Reference, err)
	}

	return OutcomeUpdated, nil
}

// errCallTimeout is reported when a call outlives the engine's deadline even
// though the collaborator ignored its context.
var errCallTimeout = errors.New("call timed out")

type callResult[T any] struct {
	value T
	err   error
}

// withTimeout runs fn with a derived context bounded by timeout. It returns as
// soon as the deadline passes, even if fn does not honour ctx. Such a call
// keeps running in the background and may still take effect during a later
// pass; its late completion is logged as a warning.
func withTimeout[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan callResult[T])
	abandoned := make(chan struct{})
	go func() {
		value, err := fn(callCtx)
		select {
		case done <- callResult[T]{value: value, err: err}:
		case <-abandoned:
			lateCallCounter.Inc()
			logging.Warn("call finished after its deadline", "timeout", timeout, "error", err)
		}
	}()

	select {
	case r := <-done:
		return r.value, r.err
	case <-callCtx.Done():
		close(abandoned)
		var zero T
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return zero, fmt.Errorf("%w after %s", errCallTimeout, timeout)
		}
		return zero, callCtx.Err()
	}
}
