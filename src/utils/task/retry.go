package task

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
	"github.com/warp-contracts/launchpad/src/utils/logger"
)

const DefaultAttempts = 3

// Calls an operation until it succeeds or runs out of attempts.
// Attempts follow each other immediately, there's no delay in between.
type Retry struct {
	ctx         context.Context
	maxAttempts int
	log         *logrus.Entry
	onError     func(err error, attempt int)
}

func NewRetry() *Retry {
	return &Retry{
		ctx:         context.Background(),
		maxAttempts: DefaultAttempts,
		log:         logger.NewSublogger("retry"),
	}
}

func (self *Retry) WithContext(ctx context.Context) *Retry {
	self.ctx = ctx
	return self
}

// 1 means the first failure is final
func (self *Retry) WithMaxAttempts(maxAttempts int) *Retry {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	self.maxAttempts = maxAttempts
	return self
}

func (self *Retry) WithLog(log *logrus.Entry) *Retry {
	self.log = log
	return self
}

// Called after every failed attempt that will be retried
func (self *Retry) WithOnError(v func(err error, attempt int)) *Retry {
	self.onError = v
	return self
}

func (self *Retry) Run(f func() error) (err error) {
	attempt := 0
	operation := func() error {
		attempt++
		return f()
	}

	b := backoff.WithContext(backoff.WithMaxRetries(&backoff.ZeroBackOff{}, uint64(self.maxAttempts-1)), self.ctx)

	err = backoff.RetryNotify(operation, b, func(err error, _ time.Duration) {
		self.log.WithError(err).
			WithField("attempt", attempt).
			WithField("maxAttempts", self.maxAttempts).
			Warn("Call failed, retrying")
		if self.onError != nil {
			self.onError(err, attempt)
		}
	})
	if err != nil {
		self.log.WithError(err).
			WithField("attempts", attempt).
			Error("Call failed, giving up")
	}
	return
}

// Run for operations that produce a value
func Call[Out any](retry *Retry, f func() (Out, error)) (out Out, err error) {
	err = retry.Run(func() (err error) {
		out, err = f()
		return
	})
	return
}
