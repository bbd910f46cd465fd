package retry

import (
	"context"
	"time"

	"github.com/bitcoin-sv/gophercoin/ulogger"
)

// Do runs fn, retrying on error per the configured SetOptions, logging each
// retry through logger. Used by the transport's static-peer dial loop
// (services/p2p/transport) to adapt the teacher's retry/backoff shape
// (util/retry.Options) to an actually-invoked retry loop.
func Do(ctx context.Context, logger ulogger.Logger, fn func() error, opts ...Options) error {
	options := NewSetOptions(opts...)

	backoff := options.BackoffDurationType

	var err error
	for attempt := 0; options.InfiniteRetry || attempt <= options.RetryCount; attempt++ {
		if err = fn(); err == nil {
			return nil
		}

		if !options.InfiniteRetry && attempt == options.RetryCount {
			break
		}

		logger.Warnf("%s attempt %d failed: %v, retrying in %s", options.Message, attempt+1, err, backoff)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}

		if options.ExponentialBackoff {
			backoff = time.Duration(float64(backoff) * options.BackoffFactor)
			if backoff > options.MaxBackoff {
				backoff = options.MaxBackoff
			}
		} else {
			backoff = backoff * time.Duration(options.BackoffMultiplier)
		}
	}

	return err
}
