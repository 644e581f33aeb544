// Package launchpad deploys the token launchpad and exercises it with a full trade:
// create a token, buy it on the bonding curve, sell everything back and withdraw the fee.
package launchpad

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/sirupsen/logrus"
	"github.com/warp-contracts/launchpad/src/contract"
	"github.com/warp-contracts/launchpad/src/utils/addresses"
	"github.com/warp-contracts/launchpad/src/utils/config"
	"github.com/warp-contracts/launchpad/src/utils/eth"
	"github.com/warp-contracts/launchpad/src/utils/logger"
)

// Address file key of the token created by the factory
const CreatedToken = "CreatedToken"

var (
	ErrNothingBought   = errors.New("buy didn't credit any tokens")
	ErrBalanceNotEmpty = errors.New("tokens left after selling everything")
)

// Addresses and amounts observed during a run
type Result struct {
	Token        common.Address
	BondingCurve common.Address
	Factory      common.Address
	CreatedToken common.Address

	// Tokens received for the buy and sold back
	Bought *big.Int
}

type Scenario struct {
	log       *logrus.Entry
	config    *config.Config
	deployer  *contract.Deployer
	submitter *eth.Submitter
	store     *addresses.Store
}

func NewScenario(config *config.Config, deployer *contract.Deployer, store *addresses.Store) (self *Scenario) {
	self = new(Scenario)
	self.log = logger.NewSublogger("launchpad")
	self.config = config
	self.deployer = deployer
	self.submitter = deployer.Submitter()
	self.store = store
	return
}

func (self *Scenario) Run(ctx context.Context, signer *bind.TransactOpts) (result *Result, err error) {
	result = new(Result)
	smoke := self.config.Smoke

	buyAmount, err := eth.ParseEther(smoke.BuyAmount)
	if err != nil {
		return nil, fmt.Errorf("invalid buy amount: %w", err)
	}

	// Core contracts
	tokenImplementation, _, err := self.deployOrAttach(ctx, signer, contract.Token, nil, contract.WithLabel("implementation"))
	if err != nil {
		return
	}
	result.Token = tokenImplementation.Address

	bondingCurve, _, err := self.deployOrAttach(ctx, signer, contract.BondingCurve, []interface{}{
		big.NewInt(smoke.CurveSlope),
		uint32(smoke.CurveReserveRatio),
	})
	if err != nil {
		return
	}
	result.BondingCurve = bondingCurve.Address

	factory, attached, err := self.deployOrAttach(ctx, signer, contract.TokenFactory, nil)
	if err != nil {
		return
	}
	result.Factory = factory.Address

	// A resumed factory may come from a run that stopped before initializing it
	initialized := false
	if attached {
		initialized, err = self.isInitialized(ctx, factory)
		if err != nil {
			return
		}
	}
	if initialized {
		self.log.WithField("factory", factory.Address.Hex()).Info("Factory already initialized, skipping")
	} else {
		_, err = self.send(ctx, factory, signer, "initialize", tokenImplementation.Address, bondingCurve.Address, big.NewInt(smoke.FeePercent))
		if err != nil {
			return
		}
	}

	// Token creation
	created, err := self.send(ctx, factory, signer, "createToken", smoke.TokenName, smoke.TokenSymbol, smoke.TokenUri)
	if err != nil {
		return
	}
	event, err := factory.Event(created.Receipt, "TokenCreated")
	if err != nil {
		return
	}
	tokenAddress, ok := event["token"].(common.Address)
	if !ok {
		return nil, fmt.Errorf("%w: TokenCreated.token is %T", contract.ErrUnexpectedOutput, event["token"])
	}
	result.CreatedToken = tokenAddress
	self.log.WithField("token", tokenAddress.Hex()).WithField("symbol", smoke.TokenSymbol).Info("Token created")

	err = self.store.Write(map[string]string{CreatedToken: tokenAddress.Hex()})
	if err != nil {
		return
	}

	token, err := self.deployer.Attach(contract.Token, tokenAddress)
	if err != nil {
		return
	}

	// Trade
	self.log.WithField("ether", eth.WeiToEther(buyAmount)).Info("Buying")
	_, err = self.send(ctx, factory, eth.WithValue(signer, buyAmount), "buy", tokenAddress)
	if err != nil {
		return
	}

	balance, err := token.CallBig(ctx, "balanceOf", signer.From)
	if err != nil {
		return
	}
	self.log.WithField("balance", balance).Info("Bought")
	if balance.Sign() <= 0 {
		return nil, ErrNothingBought
	}
	result.Bought = balance

	_, err = self.send(ctx, token, signer, "approve", factory.Address, balance)
	if err != nil {
		return
	}

	_, err = self.send(ctx, factory, signer, "sell", tokenAddress, balance)
	if err != nil {
		return
	}

	balance, err = token.CallBig(ctx, "balanceOf", signer.From)
	if err != nil {
		return
	}
	self.log.WithField("balance", balance).Info("Sold")
	if balance.Sign() != 0 {
		return nil, fmt.Errorf("%w: %s", ErrBalanceNotEmpty, balance)
	}

	_, err = self.send(ctx, factory, signer, "withdrawFee")
	if err != nil {
		return
	}

	self.log.Info("Smoke test passed")
	return
}

// With Smoke.Resume contracts recorded in the address file are reused.
// Freshly deployed contracts are recorded right away.
func (self *Scenario) deployOrAttach(ctx context.Context, signer *bind.TransactOpts, name string, args []interface{}, options ...contract.DeployOption) (handle *contract.Handle, attached bool, err error) {
	if self.config.Smoke.Resume {
		address, ok, err := self.store.Get(name)
		if err != nil {
			return nil, false, err
		}
		if ok {
			parsed, err := eth.ParseAddress(address)
			if err != nil {
				return nil, false, fmt.Errorf("invalid %s address in %s: %w", name, self.store.Path(), err)
			}
			self.log.WithField("name", name).WithField("address", parsed.Hex()).Info("Reusing deployed contract")
			handle, err = self.deployer.Attach(name, parsed)
			return handle, true, err
		}
	}

	handle, err = self.deployer.Deploy(ctx, signer, name, args, options...)
	if err != nil {
		return
	}

	err = self.store.Write(map[string]string{name: handle.Address.Hex()})
	return
}

// Factory points to its token implementation once initialize went through
func (self *Scenario) isInitialized(ctx context.Context, factory *contract.Handle) (bool, error) {
	out, err := factory.Call(ctx, "tokenImplementation")
	if err != nil {
		return false, err
	}
	if len(out) == 0 {
		return false, fmt.Errorf("%w: %s.tokenImplementation returned nothing", contract.ErrUnexpectedOutput, factory.Name)
	}
	implementation, ok := out[0].(common.Address)
	if !ok {
		return false, fmt.Errorf("%w: %s.tokenImplementation returned %T", contract.ErrUnexpectedOutput, factory.Name, out[0])
	}
	return implementation != (common.Address{}), nil
}

func (self *Scenario) send(ctx context.Context, handle *contract.Handle, signer *bind.TransactOpts, method string, args ...interface{}) (*eth.Transaction, error) {
	opts := eth.WithContext(signer, ctx)
	out, err := self.submitter.SendTxn(ctx, func() (*types.Transaction, error) {
		return handle.Transact(opts, method, args...)
	}, handle.Name+"."+method)
	if err != nil {
		return nil, err
	}

	decoded, inputs, err := handle.DecodeInput(out.Tx)
	if err != nil {
		return nil, err
	}
	self.log.WithField("method", decoded.Sig).
		WithField("args", contract.FormatArgs(inputs)).
		WithField("hash", out.Hash().Hex()).
		Debug("Called")
	return out, nil
}
