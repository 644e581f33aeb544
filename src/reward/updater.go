package reward

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/sirupsen/logrus"
	"github.com/warp-contracts/launchpad/src/contract"
	"github.com/warp-contracts/launchpad/src/utils/config"
	"github.com/warp-contracts/launchpad/src/utils/eth"
	"github.com/warp-contracts/launchpad/src/utils/logger"
)

// Changes the emission rate of a reward distributor
type Updater struct {
	log       *logrus.Entry
	submitter *eth.Submitter
	gasLimit  uint64
}

func NewUpdater(config *config.Config, submitter *eth.Submitter) (self *Updater) {
	self = new(Updater)
	self.log = logger.NewSublogger("reward")
	self.submitter = submitter
	self.gasLimit = config.Distributor.GasLimit
	return
}

// Sets tokensPerInterval to rate. When the current rate is 0 the last distribution
// time is reset first, in a separate transaction.
func (self *Updater) UpdateTokensPerInterval(ctx context.Context, signer *bind.TransactOpts, distributor *contract.Handle, rate *big.Int, label string) (err error) {
	log := self.log.WithField("distributor", distributor.Address.Hex()).WithField("label", label)

	current, err := distributor.CallBig(ctx, "tokensPerInterval")
	if err != nil {
		return
	}
	log.WithField("current", current).WithField("rate", rate).Info("Updating tokens per interval")

	opts := eth.WithGasLimit(eth.WithContext(signer, ctx), self.gasLimit)

	if current.Sign() == 0 {
		_, err = self.submitter.SendTxn(ctx, func() (*types.Transaction, error) {
			return distributor.Transact(opts, "updateLastDistributionTime")
		}, fmt.Sprintf("updateLastDistributionTime %s", label))
		if err != nil {
			return
		}
	}

	_, err = self.submitter.SendTxn(ctx, func() (*types.Transaction, error) {
		return distributor.Transact(opts, "setTokensPerInterval", rate)
	}, fmt.Sprintf("setTokensPerInterval %s", label))
	return
}
