package contract

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/warp-contracts/launchpad/src/utils/config"
	"github.com/warp-contracts/launchpad/src/utils/eth"
	"github.com/warp-contracts/launchpad/src/utils/eth/ethtest"
	"github.com/warp-contracts/launchpad/src/utils/monitoring"
)

const counterABI = `[
	{"type": "constructor", "inputs": [{"name": "initial", "type": "uint256"}], "stateMutability": "nonpayable"},
	{"type": "function", "name": "value", "inputs": [], "outputs": [{"name": "", "type": "uint256"}], "stateMutability": "view"},
	{"type": "function", "name": "initialize", "inputs": [{"name": "initial", "type": "uint256"}], "outputs": [], "stateMutability": "nonpayable"},
	{"type": "function", "name": "increment", "inputs": [], "outputs": [], "stateMutability": "nonpayable"},
	{"type": "event", "name": "Incremented", "anonymous": false, "inputs": [{"name": "by", "type": "address", "indexed": true}, {"name": "value", "type": "uint256", "indexed": false}]}
]`

// Creation code prefix of the scripted counter
var counterCode = []byte{0x60, 0x01}

// Shared fixture of the deployer tests
type fixture struct {
	ctx       context.Context
	config    *config.Config
	backend   *ethtest.Backend
	signer    *bind.TransactOpts
	registry  *Registry
	monitor   *monitoring.Monitor
	submitter *eth.Submitter
	deployer  *Deployer
}

func newFixture(ctx context.Context) (f *fixture, err error) {
	f = &fixture{ctx: ctx}

	f.config = config.Default()
	f.config.Network.PollInterval = time.Millisecond

	f.backend = ethtest.NewBackend()
	f.signer, err = ethtest.NewTransactor(f.backend.ChainId)
	if err != nil {
		return
	}

	f.registry, err = DefaultRegistry()
	if err != nil {
		return
	}
	f.registry.Register(&Descriptor{
		Name:     "Counter",
		ABI:      ethtest.MustParseABI(counterABI),
		Bytecode: common.Bytes2Hex(counterCode),
	})

	f.monitor = monitoring.NewMonitor()
	f.submitter = eth.NewSubmitter(f.config, f.backend).WithMonitor(f.monitor)
	f.deployer = NewDeployer(f.config, f.registry, f.submitter).WithMonitor(f.monitor)
	return
}

// Counter whose state lives in the closure
func newCounter(descriptor *Descriptor, initial *big.Int) *ethtest.Contract {
	value := new(big.Int).Set(initial)
	return ethtest.NewContract(descriptor.ABI).
		OnCall("value", func(from common.Address, args []interface{}) ([]interface{}, error) {
			return []interface{}{new(big.Int).Set(value)}, nil
		}).
		OnTransact("initialize", func(tx *types.Transaction, from common.Address, args []interface{}) ([]*types.Log, error) {
			value.Set(args[0].(*big.Int))
			return nil, nil
		}).
		OnTransact("increment", func(tx *types.Transaction, from common.Address, args []interface{}) ([]*types.Log, error) {
			value.Add(value, big.NewInt(1))
			log, err := ethtest.EventLog(descriptor.ABI, *tx.To(), "Incremented", from, new(big.Int).Set(value))
			if err != nil {
				return nil, err
			}
			return []*types.Log{log}, nil
		})
}

// Scripts the counter bytecode: constructor argument becomes the initial value
func (f *fixture) scriptCounter(code []byte) {
	descriptor, _ := f.registry.Get("Counter")
	f.backend.OnDeploy(code, func(address, from common.Address, ctorArgs []byte) (*ethtest.Contract, error) {
		initial := big.NewInt(0)
		if len(ctorArgs) > 0 {
			args, err := descriptor.ABI.Constructor.Inputs.Unpack(ctorArgs)
			if err != nil {
				return nil, err
			}
			initial = args[0].(*big.Int)
		}
		return newCounter(descriptor, initial), nil
	})
}

// Address the next deployment of the signer ends up at
func (f *fixture) nextAddress() (common.Address, error) {
	nonce, err := f.backend.PendingNonceAt(f.ctx, f.signer.From)
	if err != nil {
		return common.Address{}, err
	}
	return crypto.CreateAddress(f.signer.From, nonce), nil
}
