package app

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"

	"github.com/ethpandaops/counterpush/internal/counter"
	"github.com/ethpandaops/counterpush/internal/dispatch"
	"github.com/ethpandaops/counterpush/internal/telemetry"
)

// Run dispatches src once, retrying failed sends up to cfg.Retries
// times. Configuration errors are never retried. Run metrics are pushed
// afterwards when a Pushgateway is configured.
func Run(
	ctx context.Context,
	log logrus.FieldLogger,
	cfg *Config,
	src counter.Source,
	timestamp int64,
	opts ...dispatch.Option,
) error {
	metrics := telemetry.NewMetrics(log)

	d := dispatch.New(log, append([]dispatch.Option{dispatch.WithMetrics(metrics)}, opts...)...)
	dcfg := cfg.Dispatch(timestamp)

	attempt := 0
	op := func() error {
		attempt++

		err := d.Dispatch(ctx, dcfg, src)
		if errors.Is(err, dispatch.ErrConfiguration) {
			return backoff.Permanent(err)
		}

		return err
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(cfg.RetryInterval), uint64(max(cfg.Retries, 0))),
		ctx,
	)

	err := backoff.RetryNotify(op, policy, func(err error, next time.Duration) {
		log.WithError(err).WithFields(logrus.Fields{
			"attempt":  attempt,
			"retry_in": next,
		}).Warn("Dispatch failed, retrying")
	})

	if pushErr := metrics.Push(ctx, cfg.Metrics); pushErr != nil {
		log.WithError(pushErr).Warn("Failed to push run metrics")
	}

	return err
}
