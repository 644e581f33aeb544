package contract

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/warp-contracts/launchpad/src/utils/eth"
)

var ErrUnexpectedOutput = errors.New("unexpected call output")

// Live contract bound to an address and a backend
type Handle struct {
	Name    string
	Address common.Address
	ABI     *abi.ABI

	// Set for contracts deployed in this run
	Deployment *eth.Transaction

	// Set for proxies, points to the logic contract
	Implementation common.Address

	backend  eth.Backend
	contract *bind.BoundContract
}

func NewHandle(name string, address common.Address, contractABI *abi.ABI, backend eth.Backend) *Handle {
	return &Handle{
		Name:     name,
		Address:  address,
		ABI:      contractABI,
		backend:  backend,
		contract: bind.NewBoundContract(address, *contractABI, backend, backend, backend),
	}
}

// Same contract, different provider
func (self *Handle) Connect(backend eth.Backend) *Handle {
	out := NewHandle(self.Name, self.Address, self.ABI, backend)
	out.Deployment = self.Deployment
	out.Implementation = self.Implementation
	return out
}

func (self *Handle) Backend() eth.Backend {
	return self.backend
}

// Read-only call against the latest block
func (self *Handle) Call(ctx context.Context, method string, args ...interface{}) (out []interface{}, err error) {
	err = self.contract.Call(&bind.CallOpts{Context: ctx}, &out, method, args...)
	if err != nil {
		err = fmt.Errorf("call %s.%s failed: %w", self.Name, method, err)
	}
	return
}

// Call for methods returning a single integer
func (self *Handle) CallBig(ctx context.Context, method string, args ...interface{}) (*big.Int, error) {
	out, err := self.Call(ctx, method, args...)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %s.%s returned nothing", ErrUnexpectedOutput, self.Name, method)
	}
	value, ok := out[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s returned %T", ErrUnexpectedOutput, self.Name, method, out[0])
	}
	return value, nil
}

// Signs and broadcasts a transaction, doesn't wait for it
func (self *Handle) Transact(opts *bind.TransactOpts, method string, args ...interface{}) (*types.Transaction, error) {
	return self.contract.Transact(opts, method, args...)
}

// Decodes the method and arguments of a transaction sent to this contract
func (self *Handle) DecodeInput(tx *types.Transaction) (*abi.Method, []interface{}, error) {
	return eth.DecodeTransactionInputData(self.ABI, tx.Data())
}

// Decodes the first log of the event emitted by this contract's ABI
func (self *Handle) Event(receipt *types.Receipt, name string) (map[string]interface{}, error) {
	return eth.GetTransactionLog(receipt, self.ABI, name)
}
