package connections

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	defaultRefreshHorizon     = 10 * time.Minute
	defaultRefreshConcurrency = 8
)

// RefreshScheduler refreshes soon-to-expire credentials in a single batch
// pass. It is triggered externally and is idempotent: a run immediately after
// a fully successful one finds nothing inside the horizon.
type RefreshScheduler struct {
	store       AccountStore
	adapters    *AdapterSet
	logger      Logger
	horizon     time.Duration
	concurrency int
	now         func() time.Time
}

// SchedulerOption configures the refresh scheduler.
type SchedulerOption func(*RefreshScheduler)

// WithRefreshHorizon overrides the default 10 minute expiry horizon.
func WithRefreshHorizon(horizon time.Duration) SchedulerOption {
	return func(s *RefreshScheduler) {
		if horizon > 0 {
			s.horizon = horizon
		}
	}
}

// WithRefreshConcurrency bounds the number of concurrent refresh attempts.
func WithRefreshConcurrency(n int) SchedulerOption {
	return func(s *RefreshScheduler) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithSchedulerLogger sets the logger.
func WithSchedulerLogger(l Logger) SchedulerOption {
	return func(s *RefreshScheduler) {
		s.logger = l
	}
}

// WithSchedulerClock sets the time source.
func WithSchedulerClock(now func() time.Time) SchedulerOption {
	return func(s *RefreshScheduler) {
		if now != nil {
			s.now = now
		}
	}
}

// NewRefreshScheduler creates a scheduler over the given store and adapters.
func NewRefreshScheduler(store AccountStore, adapters *AdapterSet, opts ...SchedulerOption) *RefreshScheduler {
	s := &RefreshScheduler{
		store:       store,
		adapters:    adapters,
		logger:      defLogger{},
		horizon:     defaultRefreshHorizon,
		concurrency: defaultRefreshConcurrency,
		now:         time.Now,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	return s
}

// Run executes one refresh pass. Reading the batch is the only fatal failure;
// each account's attempt runs in its own failure domain and contributes
// exactly one result regardless of how any other attempt fared.
func (s *RefreshScheduler) Run(ctx context.Context) (*RefreshSummary, error) {
	started := s.now()

	accounts, err := s.store.ExpiringWithin(ctx, started, s.horizon)
	if err != nil {
		return nil, wrapStorageErr(err, "failed to load expiring accounts")
	}

	results := make([]RefreshResult, len(accounts))

	g := &errgroup.Group{}
	g.SetLimit(s.concurrency)
	for i, account := range accounts {
		g.Go(func() error {
			results[i] = s.refreshOne(ctx, account)
			return nil
		})
	}
	_ = g.Wait()

	summary := &RefreshSummary{
		Total:    len(accounts),
		Duration: s.now().Sub(started),
		Results:  results,
	}
	for _, r := range results {
		switch r.Status {
		case RefreshStatusRefreshed:
			summary.Refreshed++
		case RefreshStatusSkipped:
			summary.Skipped++
		default:
			summary.Errors++
		}
	}

	s.logger.Info(
		"token refresh pass complete: total=%d refreshed=%d skipped=%d errors=%d duration=%s",
		summary.Total, summary.Refreshed, summary.Skipped, summary.Errors, summary.Duration,
	)

	return summary, nil
}

func (s *RefreshScheduler) refreshOne(ctx context.Context, account *SocialAccount) RefreshResult {
	result := RefreshResult{
		AccountID: account.ID,
		Provider:  account.Provider,
	}

	if !account.HasRefreshToken {
		result.Status = RefreshStatusError
		result.Reason = "missing refresh token"
		return result
	}

	adapter, err := s.adapters.ForProvider(account.Provider)
	if err != nil {
		result.Status = RefreshStatusError
		result.Reason = err.Error()
		return result
	}

	refreshToken, err := s.store.RefreshToken(ctx, account.ID)
	if err != nil || refreshToken == "" {
		if err != nil {
			s.logger.Error("failed to read refresh token for account %s: %v", account.ID, err)
		}
		result.Status = RefreshStatusError
		result.Reason = "refresh token unavailable"
		return result
	}

	refreshed, err := adapter.Refresh(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, ErrRefreshNotSupported) {
			result.Status = RefreshStatusSkipped
			result.Reason = "not implemented"
			return result
		}
		s.logger.Error("refresh failed for %s account %s: %v", account.Provider, account.ID, err)
		result.Status = RefreshStatusError
		result.Reason = err.Error()
		return result
	}

	update := TokenUpdate{
		AccessToken:  refreshed.AccessToken,
		RefreshToken: refreshed.RefreshToken,
		Scope:        refreshed.Scope,
	}
	if !refreshed.ExpiresAt.IsZero() {
		expiresAt := refreshed.ExpiresAt
		update.ExpiresAt = &expiresAt
	}

	if err := s.store.UpdateTokens(ctx, account.ID, update); err != nil {
		s.logger.Error("failed to persist refreshed tokens for account %s: %v", account.ID, err)
		result.Status = RefreshStatusError
		result.Reason = "failed to persist tokens"
		return result
	}

	result.Status = RefreshStatusRefreshed
	return result
}
