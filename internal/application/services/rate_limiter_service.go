package services

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/avatarctic/docflow/internal/core/domain/ratelimit"
	"github.com/avatarctic/docflow/internal/core/ports"
)

// UnknownIdentity keys callers whose address could not be determined.
const UnknownIdentity = "unknown"

// Outcome labels for the decisions counter.
const (
	OutcomeAllowed  = "allowed"
	OutcomeRejected = "rejected"
	OutcomeFailOpen = "fail_open"
)

// RateLimiterService is a fixed-window limiter over a RateLimitRepository.
type RateLimiterService struct {
	repo        ports.RateLimitRepository
	maxRequests int
	window      time.Duration
	keyPrefix   string
	decisions   *prometheus.CounterVec
	logger      *logrus.Logger
	now         func() time.Time
}

// RateLimiterConfig groups configuration parameters for the rate limiter.
type RateLimiterConfig struct {
	MaxRequests int
	Window      time.Duration
	KeyPrefix   string
}

// NewRateLimiterService applies defaults of 5 requests per 15 minutes under the
// "ratelimit" prefix. decisions may be nil.
func NewRateLimiterService(repo ports.RateLimitRepository, cfg *RateLimiterConfig, decisions *prometheus.CounterVec, logger *logrus.Logger) *RateLimiterService {
	max := 5
	w := 15 * time.Minute
	kp := "ratelimit"
	if cfg != nil {
		if cfg.MaxRequests > 0 {
			max = cfg.MaxRequests
		}
		if cfg.Window > 0 {
			w = cfg.Window
		}
		if cfg.KeyPrefix != "" {
			kp = cfg.KeyPrefix
		}
	}
	return &RateLimiterService{
		repo:        repo,
		maxRequests: max,
		window:      w,
		keyPrefix:   kp,
		decisions:   decisions,
		logger:      logger,
		now:         time.Now,
	}
}

// Key returns the store key for identity.
func (s *RateLimiterService) Key(identity string) string {
	return s.keyPrefix + ":" + identity
}

func (s *RateLimiterService) Allow(ctx context.Context, identity string) ratelimit.Decision {
	if identity == "" {
		identity = UnknownIdentity
	}
	now := s.now()
	count, ttl, err := s.repo.Increment(ctx, s.Key(identity), s.window)
	if err != nil {
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{"identity": identity}).WithError(err).Warn("rate limiter: store unavailable, allowing request")
		}
		s.observe(OutcomeFailOpen)
		return ratelimit.Decision{
			Allowed:    true,
			Identity:   identity,
			Limit:      s.maxRequests,
			Remaining:  s.maxRequests,
			Reset:      now.Add(s.window),
			FailedOpen: true,
		}
	}
	if ttl <= 0 {
		ttl = s.window
	}
	d := ratelimit.Decision{
		Allowed:  count <= int64(s.maxRequests),
		Identity: identity,
		Count:    count,
		Limit:    s.maxRequests,
		Reset:    now.Add(ttl),
	}
	if d.Allowed {
		d.Remaining = s.maxRequests - int(count)
		s.observe(OutcomeAllowed)
	} else {
		s.observe(OutcomeRejected)
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{"identity": identity, "count": count, "limit": s.maxRequests}).Info("rate limiter: request rejected")
		}
	}
	return d
}

func (s *RateLimiterService) observe(outcome string) {
	if s.decisions != nil {
		s.decisions.WithLabelValues(outcome).Inc()
	}
}
