// pkg/deletion/dispatcher.go
package deletion

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ErrNetwork marks a transport failure that aborted a deletion run
var ErrNetwork = errors.New("network error")

// Outcome summarizes a deletion run
type Outcome struct {
	RunID   string
	Total   int
	Success int
	Failure int
	Elapsed time.Duration
}

// Attempted returns how many requests got an HTTP response
func (o Outcome) Attempted() int {
	return o.Success + o.Failure
}

// Dispatcher sends one deletion request per identifier at a bounded rate
type Dispatcher struct {
	client   *Client
	limiter  *rate.Limiter
	logger   *zap.Logger
	progress func()
}

// NewDispatcher paces requests with a token bucket of requestsPerMinute and burst 1.
// requestsPerMinute <= 0 disables pacing.
func NewDispatcher(client *Client, requestsPerMinute int, logger *zap.Logger) *Dispatcher {
	limit := rate.Inf
	if requestsPerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(requestsPerMinute))
	}

	return &Dispatcher{
		client:  client,
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger.Named("dispatcher"),
	}
}

// WithProgress registers a callback run after every request that got a response
func (d *Dispatcher) WithProgress(fn func()) *Dispatcher {
	d.progress = fn
	return d
}

// Run deletes every identifier in order. A transport error stops the run and
// returns the partial Outcome wrapped in ErrNetwork.
func (d *Dispatcher) Run(ctx context.Context, ids []string) (Outcome, error) {
	start := time.Now()
	out := Outcome{RunID: uuid.NewString(), Total: len(ids)}
	logger := d.logger.With(zap.String("runId", out.RunID))

	logger.Info("Starting deletion run",
		zap.Int("identifiers", len(ids)),
		zap.Float64("ratePerSecond", float64(d.limiter.Limit())))

	for i, id := range ids {
		if err := d.limiter.Wait(ctx); err != nil {
			out.Elapsed = time.Since(start)
			return out, fmt.Errorf("deletion interrupted after %d requests: %w", i, err)
		}

		resp, err := d.client.Delete(ctx, id)
		if err != nil {
			out.Elapsed = time.Since(start)
			logger.Error("Connection error while deleting profile",
				zap.String("cpf", id),
				zap.Int("position", i+1),
				zap.Error(err))
			return out, fmt.Errorf("%w: deleting %s: %w", ErrNetwork, id, err)
		}

		if resp.OK() {
			out.Success++
			logger.Info("Profile deleted",
				zap.String("cpf", id),
				zap.Int("status", resp.StatusCode))
		} else {
			out.Failure++
			logger.Warn("Failed to delete profile",
				zap.String("cpf", id),
				zap.Int("status", resp.StatusCode),
				zap.String("response", resp.Body))
		}

		if d.progress != nil {
			d.progress()
		}
	}

	out.Elapsed = time.Since(start)
	logger.Info("Deletion run finished",
		zap.Int("success", out.Success),
		zap.Int("failure", out.Failure),
		zap.Duration("elapsed", out.Elapsed))

	return out, nil
}
