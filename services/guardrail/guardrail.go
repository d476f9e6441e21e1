package guardrail

import (
	"context"
	"errors"
	"time"

	"hotelbot/models"

	"go.uber.org/zap"
)

// ErrRateLimited is returned when a sender exceeded the inbound limit.
var ErrRateLimited = errors.New("inbound rate limit exceeded")

// Policy decides what happens to a reply outside the messaging window.
type Policy string

const (
	PolicyPermissive Policy = "permissive" // warn and send
	PolicyStrict     Policy = "strict"     // block the send
)

// ParsePolicy maps a config value to a Policy, defaulting to permissive.
func ParsePolicy(s string) Policy {
	if Policy(s) == PolicyStrict {
		return PolicyStrict
	}
	return PolicyPermissive
}

// WindowCheck is the outcome of the messaging-window check.
type WindowCheck struct {
	Expired bool
	Allowed bool
}

// Guardrail applies the inbound rate limit and the outbound messaging window.
type Guardrail struct {
	limiter RateLimiter
	window  time.Duration
	policy  Policy
	logger  *zap.Logger

	// Now is the clock used for window checks.
	Now func() time.Time
}

func NewGuardrail(limiter RateLimiter, window time.Duration, policy Policy, logger *zap.Logger) *Guardrail {
	return &Guardrail{
		limiter: limiter,
		window:  window,
		policy:  policy,
		logger:  logger,
		Now:     time.Now,
	}
}

// AllowInbound returns ErrRateLimited when sender is over the limit. A limiter failure
// lets the message through.
func (g *Guardrail) AllowInbound(ctx context.Context, sender string) error {
	allowed, err := g.limiter.Allow(ctx, sender)
	if err != nil {
		g.logger.Error("Rate limiter unavailable, allowing message", zap.String("from", sender), zap.Error(err))
		return nil
	}
	if !allowed {
		return ErrRateLimited
	}
	return nil
}

// CheckWindow reports whether a reply on conv may be sent now. The window is expired when
// the guest never wrote or wrote more than the configured window ago.
func (g *Guardrail) CheckWindow(conv *models.Conversation) WindowCheck {
	expired := conv.LastGuestMessageAt == nil || g.Now().Sub(*conv.LastGuestMessageAt) >= g.window
	if !expired {
		return WindowCheck{Allowed: true}
	}
	if g.policy == PolicyStrict {
		g.logger.Warn("Outside messaging window, reply blocked",
			zap.String("tenantId", conv.TenantID),
			zap.String("conversationId", conv.ID),
		)
		return WindowCheck{Expired: true, Allowed: false}
	}
	g.logger.Warn("Outside 24h messaging window, sending anyway",
		zap.String("tenantId", conv.TenantID),
		zap.String("conversationId", conv.ID),
	)
	return WindowCheck{Expired: true, Allowed: true}
}
