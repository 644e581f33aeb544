package distribute

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/sirupsen/logrus"
	"github.com/warp-contracts/launchpad/src/contract"
	"github.com/warp-contracts/launchpad/src/utils/config"
	"github.com/warp-contracts/launchpad/src/utils/csvfile"
	"github.com/warp-contracts/launchpad/src/utils/eth"
	"github.com/warp-contracts/launchpad/src/utils/logger"
	"github.com/warp-contracts/launchpad/src/utils/monitoring"
	"github.com/warp-contracts/launchpad/src/utils/task"
)

// CSV columns
const (
	AccountColumn = "account"
	AmountColumn  = "amount"
)

// Sends token transfers listed in a CSV file, batch by batch
type Distributor struct {
	log       *logrus.Entry
	submitter *eth.Submitter
	monitor   *monitoring.Monitor

	batchSize int
	pause     time.Duration
	attempts  int
}

func NewDistributor(config *config.Config, submitter *eth.Submitter) (self *Distributor) {
	self = new(Distributor)
	self.log = logger.NewSublogger("distribute")
	self.submitter = submitter
	self.monitor = monitoring.NewMonitor()
	self.batchSize = config.Batch.Size
	self.pause = config.Batch.Pause
	self.attempts = config.Retry.Attempts
	return
}

func (self *Distributor) WithMonitor(monitor *monitoring.Monitor) *Distributor {
	self.monitor = monitor
	return self
}

// Parses account and amount columns. Amounts are decimal token units with 18 decimals.
// Any invalid row fails the whole file.
func ParseTransfers(records []map[string]string) (accounts []any, amounts []any, err error) {
	accounts = make([]any, 0, len(records))
	amounts = make([]any, 0, len(records))

	for i, record := range records {
		account, err := eth.ParseAddress(record[AccountColumn])
		if err != nil {
			return nil, nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		amount, err := eth.ParseEther(record[AmountColumn])
		if err != nil {
			return nil, nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		accounts = append(accounts, account)
		amounts = append(amounts, amount)
	}
	return
}

// Transfers tokens to every account listed in the file. Returns the number of confirmed transfers.
func (self *Distributor) Run(ctx context.Context, signer *bind.TransactOpts, token *contract.Handle, path string) (sent int, err error) {
	records, err := csvfile.ReadCsv(path)
	if err != nil {
		return
	}

	accounts, amounts, err := ParseTransfers(records)
	if err != nil {
		return
	}
	self.log.WithField("path", path).WithField("count", len(accounts)).Info("Distributing")

	if len(accounts) == 0 {
		return
	}

	retry := task.NewRetry().
		WithContext(ctx).
		WithMaxAttempts(self.attempts).
		WithLog(self.log).
		WithOnError(func(err error, attempt int) {
			self.monitor.GetReport().Deployer.State.CallsRetried.Inc()
		})

	opts := eth.WithContext(signer, ctx)

	err = task.NewBatchProcessor[any](self.batchSize).
		WithLog(self.log).
		WithOnBatch(func(ctx context.Context, batch [][]any) error {
			for _, row := range batch {
				account, amount := row[0].(common.Address), row[1].(*big.Int)
				label := fmt.Sprintf("transfer %s %s", account.Hex(), amount)

				_, err := task.Call(retry, func() (*eth.Transaction, error) {
					tx, err := self.submitter.SendTxn(ctx, func() (*types.Transaction, error) {
						return token.Transact(opts, "transfer", account, amount)
					}, label)
					if errors.Is(err, eth.ErrReverted) {
						// Same transfer would revert again
						return nil, backoff.Permanent(err)
					}
					return tx, err
				})
				if err != nil {
					return err
				}
				sent++
			}

			self.monitor.GetReport().Deployer.State.BatchesHandled.Inc()
			return task.Sleep(ctx, self.pause)
		}).
		Process(ctx, accounts, amounts)
	return
}
