// Package rewards calls the eco points service when a seller hands an item to the
// rider. Calls go through a circuit breaker so a slow rewards service cannot stall
// order transitions.
package rewards

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"ecolocker/internal/core/domain/model/kernel"
	"ecolocker/internal/observability"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"
)

const awardPath = "/api/v1/rewards/award"

var ErrRewardsUnavailable = errors.New("rewards service unavailable")

type awardRequest struct {
	UserID  string `json:"userId"`
	OrderID string `json:"orderId"`
	Points  int    `json:"points"`
	Reason  string `json:"reason"`
}

type awardResponse struct {
	PointsAwarded int `json:"pointsAwarded"`
}

type Client struct {
	http    *resty.Client
	breaker *gobreaker.CircuitBreaker
}

func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if timeout <= 0 {
		timeout = 3 * time.Second
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "rewards",
		MaxRequests: 3,
		Interval:    15 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			observability.RewardsBreakerState.Set(stateValue(to))
			logger.Info("circuit breaker state changed",
				slog.String("circuit", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
		},
	})

	return &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(timeout).
			SetRetryCount(0).
			SetHeader("Content-Type", "application/json"),
		breaker: breaker,
	}
}

func (c *Client) AwardPoints(
	ctx context.Context,
	userID kernel.UUID,
	orderID kernel.UUID,
	points int,
	reason string,
) (int, error) {
	result, err := c.breaker.Execute(func() (any, error) {
		var out awardResponse
		resp, httpErr := c.http.R().
			SetContext(ctx).
			SetHeader("Idempotency-Key", orderID.String()+":"+reason).
			SetBody(awardRequest{
				UserID:  userID.String(),
				OrderID: orderID.String(),
				Points:  points,
				Reason:  reason,
			}).
			SetResult(&out).
			Post(awardPath)
		if httpErr != nil {
			return nil, httpErr
		}
		if resp.StatusCode() != http.StatusOK {
			return nil, fmt.Errorf("rewards service returned status %d: %s", resp.StatusCode(), resp.String())
		}
		return out.PointsAwarded, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return 0, fmt.Errorf("%w: %w", ErrRewardsUnavailable, err)
		}
		return 0, err
	}
	return result.(int), nil
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateOpen:
		return 1
	case gobreaker.StateHalfOpen:
		return 2
	default:
		return 0
	}
}

// Disabled is used when no rewards service is configured; every award reports
// ErrRewardsUnavailable.
type Disabled struct{}

func (Disabled) AwardPoints(context.Context, kernel.UUID, kernel.UUID, int, string) (int, error) {
	return 0, ErrRewardsUnavailable
}
