package eth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/rs/xid"
	"github.com/sirupsen/logrus"
	"github.com/warp-contracts/launchpad/src/utils/config"
	"github.com/warp-contracts/launchpad/src/utils/logger"
	"github.com/warp-contracts/launchpad/src/utils/monitoring"
	"golang.org/x/time/rate"
)

var ErrReverted = errors.New("transaction reverted")

// State changing call that went through the Submitter
type Transaction struct {
	// Correlates log lines of a single submission, known before the hash is
	Id    string
	Label string

	// Signer recovered from the transaction
	From common.Address

	Tx      *types.Transaction
	Receipt *types.Receipt
}

func (self *Transaction) Hash() common.Hash {
	return self.Tx.Hash()
}

// Sends transactions and waits until they're confirmed.
// Failures are returned as they are, callers wrap submissions in task.Retry if they need to.
type Submitter struct {
	log     *logrus.Entry
	backend Backend
	monitor *monitoring.Monitor

	// Number of blocks, including the one with the transaction
	confirmations uint64

	// How often the head is checked while waiting for confirmations
	pollInterval time.Duration

	limiter *rate.Limiter
}

func NewSubmitter(config *config.Config, backend Backend) (self *Submitter) {
	self = new(Submitter)
	self.log = logger.NewSublogger("submitter")
	self.backend = backend
	self.monitor = monitoring.NewMonitor()
	self.confirmations = config.Network.Confirmations
	self.pollInterval = config.Network.PollInterval
	if self.pollInterval <= 0 {
		self.pollInterval = time.Second
	}

	limit := rate.Inf
	if config.Network.MaxTxPerSecond > 0 {
		limit = rate.Limit(config.Network.MaxTxPerSecond)
	}
	self.limiter = rate.NewLimiter(limit, 1)
	return
}

func (self *Submitter) WithMonitor(monitor *monitoring.Monitor) *Submitter {
	self.monitor = monitor
	return self
}

func (self *Submitter) WithConfirmations(confirmations uint64) *Submitter {
	self.confirmations = confirmations
	return self
}

func (self *Submitter) Backend() Backend {
	return self.backend
}

// SendTxn runs submit, which is expected to broadcast exactly one transaction,
// and blocks until that transaction is confirmed.
func (self *Submitter) SendTxn(ctx context.Context, submit func() (*types.Transaction, error), label string) (out *Transaction, err error) {
	out = &Transaction{
		Id:    xid.New().String(),
		Label: label,
	}
	log := self.log.WithField("label", label).WithField("id", out.Id)

	log.Info("Processing")

	err = self.limiter.Wait(ctx)
	if err != nil {
		return nil, err
	}

	out.Tx, err = submit()
	if err != nil {
		self.monitor.GetReport().Deployer.Errors.SubmitFailed.Inc()
		return nil, fmt.Errorf("failed to submit %s: %w", label, err)
	}
	self.monitor.GetReport().Deployer.State.TransactionsSubmitted.Inc()

	out.From, err = GetTxSender(out.Tx)
	if err != nil {
		return nil, fmt.Errorf("failed to recover sender of %s: %w", label, err)
	}

	log = log.WithField("hash", out.Hash().Hex()).WithField("from", out.From.Hex())
	log.Info("Sending...")

	out.Receipt, err = self.Wait(ctx, out.Tx)
	if err != nil {
		self.monitor.GetReport().Deployer.Errors.ConfirmationFailed.Inc()
		return nil, fmt.Errorf("failed to confirm %s: %w", label, err)
	}
	self.monitor.GetReport().Deployer.State.TransactionsConfirmed.Inc()

	log.WithField("block", out.Receipt.BlockNumber).Info("... Sent!")
	return
}

// Wait blocks until the transaction is mined successfully and buried under enough blocks
func (self *Submitter) Wait(ctx context.Context, tx *types.Transaction) (receipt *types.Receipt, err error) {
	receipt, err = bind.WaitMined(ctx, self.backend, tx)
	if err != nil {
		return
	}

	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, fmt.Errorf("%w: %s", ErrReverted, tx.Hash().Hex())
	}

	err = self.WaitConfirmations(ctx, receipt)
	if err != nil {
		return nil, err
	}
	return
}

// The block containing the transaction counts as the first confirmation
func (self *Submitter) WaitConfirmations(ctx context.Context, receipt *types.Receipt) (err error) {
	if self.confirmations <= 1 || receipt.BlockNumber == nil {
		return
	}
	target := receipt.BlockNumber.Uint64() + self.confirmations - 1

	ticker := time.NewTicker(self.pollInterval)
	defer ticker.Stop()

	for {
		head, err := self.backend.HeaderByNumber(ctx, nil)
		if err != nil {
			return err
		}
		if head.Number.Uint64() >= target {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
