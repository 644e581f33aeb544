package cmd

import (
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/warp-contracts/launchpad/src/contract"
	"github.com/warp-contracts/launchpad/src/utils/addresses"
	"github.com/warp-contracts/launchpad/src/utils/eth"
	"github.com/warp-contracts/launchpad/src/utils/logger"
)

// Components shared by the commands talking to the chain
type environment struct {
	client    *ethclient.Client
	signer    *bind.TransactOpts
	submitter *eth.Submitter
	deployer  *contract.Deployer
	store     *addresses.Store
}

// Connects to the node and wires the deployer. Signer is only loaded when needed.
func newEnvironment(withSigner bool) (env *environment, err error) {
	log := logger.NewSublogger("env")
	env = new(environment)

	env.client, err = eth.GetEthClient(ctx, log, conf)
	if err != nil {
		return
	}

	if withSigner {
		chainId, err := eth.GetChainId(ctx, env.client, conf)
		if err != nil {
			return nil, err
		}
		env.signer, err = eth.GetTransactor(conf, chainId)
		if err != nil {
			return nil, err
		}
		log.WithField("network", conf.Network.Name).
			WithField("chainId", chainId).
			WithField("signer", env.signer.From.Hex()).
			Info("Using signer")
	}

	registry, err := contract.DefaultRegistry()
	if err != nil {
		return
	}
	_, err = registry.LoadArtifacts(conf.Artifacts.Dir)
	if err != nil {
		return
	}

	env.submitter = eth.NewSubmitter(conf, env.client).WithMonitor(monitor)
	env.deployer = contract.NewDeployer(conf, registry, env.submitter).
		WithExplorer(eth.NewExplorer(conf)).
		WithMonitor(monitor)
	env.store = addresses.NewStore(conf)
	return
}

func (self *environment) Close() {
	self.client.Close()
}

// Accepts either an address or a name saved in the address file
func (self *environment) resolveAddress(v string) (common.Address, error) {
	if common.IsHexAddress(v) {
		return common.HexToAddress(v), nil
	}

	address, ok, err := self.store.Get(v)
	if err != nil {
		return common.Address{}, err
	}
	if !ok {
		return common.Address{}, fmt.Errorf("%s is neither an address nor a name in %s", v, self.store.Path())
	}
	return eth.ParseAddress(address)
}
