package contract

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/sirupsen/logrus"
	"github.com/warp-contracts/launchpad/src/utils/config"
	"github.com/warp-contracts/launchpad/src/utils/eth"
	"github.com/warp-contracts/launchpad/src/utils/logger"
	"github.com/warp-contracts/launchpad/src/utils/monitoring"
)

var ErrNoProxyFactory = errors.New("proxy factory address is not configured")

type deployOptions struct {
	label     string
	libraries map[string]common.Address
}

type DeployOption func(*deployOptions)

// Only changes how the deployment is logged
func WithLabel(label string) DeployOption {
	return func(o *deployOptions) {
		o.label = label
	}
}

// Fully qualified library name -> deployed library address
func WithLibraries(libraries map[string]common.Address) DeployOption {
	return func(o *deployOptions) {
		o.libraries = libraries
	}
}

type attachOptions struct {
	backend eth.Backend
}

type AttachOption func(*attachOptions)

// Binds the handle to a different provider than the deployer's
func WithBackend(backend eth.Backend) AttachOption {
	return func(o *attachOptions) {
		o.backend = backend
	}
}

// Deploys contracts by name and attaches to already deployed ones
type Deployer struct {
	log       *logrus.Entry
	config    *config.Config
	registry  *Registry
	submitter *eth.Submitter
	explorer  *eth.Explorer
	monitor   *monitoring.Monitor
}

func NewDeployer(config *config.Config, registry *Registry, submitter *eth.Submitter) (self *Deployer) {
	self = new(Deployer)
	self.log = logger.NewSublogger("deployer")
	self.config = config
	self.registry = registry
	self.submitter = submitter
	self.monitor = monitoring.NewMonitor()
	return
}

func (self *Deployer) WithExplorer(explorer *eth.Explorer) *Deployer {
	self.explorer = explorer
	return self
}

func (self *Deployer) WithMonitor(monitor *monitoring.Monitor) *Deployer {
	self.monitor = monitor
	return self
}

func (self *Deployer) Registry() *Registry {
	return self.registry
}

func (self *Deployer) Submitter() *eth.Submitter {
	return self.submitter
}

// Deploys the named contract and waits until the deployment is confirmed
func (self *Deployer) Deploy(ctx context.Context, signer *bind.TransactOpts, name string, args []interface{}, options ...DeployOption) (handle *Handle, err error) {
	var opts deployOptions
	for _, option := range options {
		option(&opts)
	}

	defer func() {
		if err != nil {
			self.monitor.GetReport().Deployer.Errors.DeploymentFailed.Inc()
		}
	}()

	descriptor, err := self.registry.Get(name)
	if err != nil {
		return
	}
	if !descriptor.HasBytecode() {
		err = fmt.Errorf("%w: %s", ErrNoBytecode, name)
		return
	}

	bytecode, err := Link(descriptor.Bytecode, opts.libraries)
	if err != nil {
		err = fmt.Errorf("failed to link %s: %w", name, err)
		return
	}

	info := name
	if opts.label != "" {
		info = name + ":" + opts.label
	}

	var address common.Address
	tx, err := self.submitter.SendTxn(ctx, func() (*types.Transaction, error) {
		deployed, tx, _, err := bind.DeployContract(eth.WithContext(signer, ctx), *descriptor.ABI, bytecode, self.submitter.Backend(), args...)
		if err != nil {
			return nil, err
		}
		address = deployed
		self.log.Infof("Deploying %s %s %s", info, address.Hex(), FormatArgs(args))
		return tx, nil
	}, "deploy "+info)
	if err != nil {
		return
	}

	if tx.Receipt.ContractAddress != (common.Address{}) {
		address = tx.Receipt.ContractAddress
	}

	self.log.Info("... Completed!")
	self.monitor.GetReport().Deployer.State.ContractsDeployed.Inc()

	handle = NewHandle(name, address, descriptor.ABI, self.submitter.Backend())
	handle.Deployment = tx
	return
}

// Binds to a contract that is already on chain. Nothing is sent.
func (self *Deployer) Attach(name string, address common.Address, options ...AttachOption) (handle *Handle, err error) {
	opts := attachOptions{backend: self.submitter.Backend()}
	for _, option := range options {
		option(&opts)
	}

	descriptor, err := self.registry.Get(name)
	if err != nil {
		return
	}

	self.monitor.GetReport().Deployer.State.ContractsAttached.Inc()
	self.log.WithField("name", name).WithField("address", address.Hex()).Debug("Attached")
	return NewHandle(name, address, descriptor.ABI, opts.backend), nil
}

// Attach that falls back to the ABI verified on the block explorer
func (self *Deployer) AttachVerified(ctx context.Context, name string, address common.Address, options ...AttachOption) (handle *Handle, err error) {
	if self.registry.Has(name) || self.explorer == nil || !self.explorer.IsEnabled() {
		return self.Attach(name, address, options...)
	}

	contractABI, err := self.explorer.GetContractABI(ctx, address)
	if err != nil {
		err = fmt.Errorf("failed to get verified ABI of %s: %w", name, err)
		return
	}

	self.registry.Register(&Descriptor{
		Name: name,
		ABI:  contractABI,
	})

	return self.Attach(name, address, options...)
}

// Deploys the implementation and an ERC-1967 proxy in front of it through the configured factory.
// initMethod is called on the proxy in the same transaction, empty means no call.
// Returned handle points to the proxy and uses the implementation's ABI.
func (self *Deployer) DeployProxy(ctx context.Context, signer *bind.TransactOpts, name string, admin common.Address, initMethod string, initArgs []interface{}, options ...DeployOption) (handle *Handle, err error) {
	if self.config.Proxy.FactoryAddress == "" {
		return nil, ErrNoProxyFactory
	}
	factoryAddress, err := eth.ParseAddress(self.config.Proxy.FactoryAddress)
	if err != nil {
		return
	}
	factory, err := self.Attach(ERC1967Factory, factoryAddress)
	if err != nil {
		return
	}

	implementation, err := self.Deploy(ctx, signer, name, nil, options...)
	if err != nil {
		return
	}

	var data []byte
	if initMethod != "" {
		data, err = implementation.ABI.Pack(initMethod, initArgs...)
		if err != nil {
			err = fmt.Errorf("failed to encode %s.%s: %w", name, initMethod, err)
			return
		}
	}

	tx, err := self.submitter.SendTxn(ctx, func() (*types.Transaction, error) {
		return factory.Transact(eth.WithGasLimit(eth.WithContext(signer, ctx), self.config.Proxy.GasLimit), "deployAndCall", implementation.Address, admin, data)
	}, "deploy proxy "+name)
	if err != nil {
		self.monitor.GetReport().Deployer.Errors.DeploymentFailed.Inc()
		return
	}

	event, err := factory.Event(tx.Receipt, "Deployed")
	if err != nil {
		return
	}
	proxy, ok := event["proxy"].(common.Address)
	if !ok {
		err = fmt.Errorf("%w: Deployed.proxy is %T", ErrUnexpectedOutput, event["proxy"])
		return
	}

	self.log.Infof("Proxy of %s %s -> %s", name, proxy.Hex(), implementation.Address.Hex())
	self.monitor.GetReport().Deployer.State.ContractsDeployed.Inc()

	handle = NewHandle(name, proxy, implementation.ABI, self.submitter.Backend())
	handle.Deployment = tx
	handle.Implementation = implementation.Address
	return
}

// Renders constructor arguments the way they're logged: "a" "b" "c"
func FormatArgs(args []interface{}) string {
	quoted := make([]string, 0, len(args))
	for _, arg := range args {
		quoted = append(quoted, fmt.Sprintf("\"%v\"", arg))
	}
	return strings.Join(quoted, " ")
}
