package contract

import (
	"context"
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/warp-contracts/launchpad/src/utils/eth"
	"github.com/warp-contracts/launchpad/src/utils/eth/ethtest"

	"testing"
)

func TestDeployerTestSuite(t *testing.T) {
	suite.Run(t, new(DeployerTestSuite))
}

type DeployerTestSuite struct {
	suite.Suite
	ctx    context.Context
	cancel context.CancelFunc
	*fixture
}

func (s *DeployerTestSuite) SetupTest() {
	var err error
	s.ctx, s.cancel = context.WithTimeout(context.Background(), 10*time.Second)
	s.fixture, err = newFixture(s.ctx)
	require.Nil(s.T(), err)
	s.scriptCounter(counterCode)
}

func (s *DeployerTestSuite) TearDownTest() {
	s.cancel()
}

func (s *DeployerTestSuite) TestDeploy() {
	expected, err := s.nextAddress()
	require.Nil(s.T(), err)

	counter, err := s.deployer.Deploy(s.ctx, s.signer, "Counter", []interface{}{big.NewInt(7)}, WithLabel("first"))
	require.Nil(s.T(), err)
	require.Equal(s.T(), "Counter", counter.Name)
	require.Equal(s.T(), expected, counter.Address)
	require.NotNil(s.T(), counter.Deployment)
	require.Equal(s.T(), "deploy Counter:first", counter.Deployment.Label)
	require.Equal(s.T(), expected, counter.Deployment.Receipt.ContractAddress)

	value, err := counter.CallBig(s.ctx, "value")
	require.Nil(s.T(), err)
	require.Equal(s.T(), big.NewInt(7), value)

	require.Equal(s.T(), uint64(1), s.monitor.GetReport().Deployer.State.ContractsDeployed.Load())
}

func (s *DeployerTestSuite) TestTransactAndEvent() {
	counter, err := s.deployer.Deploy(s.ctx, s.signer, "Counter", []interface{}{big.NewInt(1)})
	require.Nil(s.T(), err)

	tx, err := s.submitter.SendTxn(s.ctx, func() (*types.Transaction, error) {
		return counter.Transact(eth.WithContext(s.signer, s.ctx), "increment")
	}, "increment")
	require.Nil(s.T(), err)

	event, err := counter.Event(tx.Receipt, "Incremented")
	require.Nil(s.T(), err)
	require.Equal(s.T(), s.signer.From, event["by"])
	require.Equal(s.T(), big.NewInt(2), event["value"])

	_, err = counter.Event(tx.Receipt, "Missing")
	require.ErrorIs(s.T(), err, eth.ErrEventNotFound)

	method, inputs, err := counter.DecodeInput(tx.Tx)
	require.Nil(s.T(), err)
	require.Equal(s.T(), "increment", method.Name)
	require.Empty(s.T(), inputs)
}

func (s *DeployerTestSuite) TestUnknownContract() {
	_, err := s.deployer.Deploy(s.ctx, s.signer, "Missing", nil)
	require.ErrorIs(s.T(), err, ErrUnknownContract)

	_, err = s.deployer.Attach("Missing", common.HexToAddress("0x01"))
	require.ErrorIs(s.T(), err, ErrUnknownContract)

	require.Empty(s.T(), s.backend.Sent)
}

func (s *DeployerTestSuite) TestNoBytecode() {
	// Embedded ABIs come without bytecode
	_, err := s.deployer.Deploy(s.ctx, s.signer, Token, nil)
	require.ErrorIs(s.T(), err, ErrNoBytecode)
	require.Equal(s.T(), uint64(1), s.monitor.GetReport().Deployer.Errors.DeploymentFailed.Load())
}

func (s *DeployerTestSuite) TestDeployReverted() {
	s.registry.Register(&Descriptor{Name: "Broken", ABI: s.registry.descriptors["Counter"].ABI, Bytecode: "0x66"})
	s.backend.OnDeploy([]byte{0x66}, func(address, from common.Address, ctorArgs []byte) (*ethtest.Contract, error) {
		return nil, errors.New("constructor reverted")
	})

	_, err := s.deployer.Deploy(s.ctx, s.signer, "Broken", []interface{}{big.NewInt(1)})
	require.ErrorIs(s.T(), err, eth.ErrReverted)
	require.Equal(s.T(), uint64(1), s.monitor.GetReport().Deployer.Errors.DeploymentFailed.Load())
}

func (s *DeployerTestSuite) TestDeployWithLibraries() {
	library := common.HexToAddress("0x00000000000000000000000000000000000abcde")
	placeholder := LibraryPlaceholder("contracts/Math.sol:Math")

	s.registry.Register(&Descriptor{
		Name:     "Linked",
		ABI:      s.registry.descriptors["Counter"].ABI,
		Bytecode: "0x61" + placeholder + "02",
	})
	linked := append(append([]byte{0x61}, library.Bytes()...), 0x02)
	s.scriptCounter(linked)

	_, err := s.deployer.Deploy(s.ctx, s.signer, "Linked", []interface{}{big.NewInt(1)})
	require.ErrorIs(s.T(), err, ErrUnlinkedLibrary)
	require.Empty(s.T(), s.backend.Sent)

	handle, err := s.deployer.Deploy(s.ctx, s.signer, "Linked", []interface{}{big.NewInt(3)},
		WithLibraries(map[string]common.Address{"contracts/Math.sol:Math": library}))
	require.Nil(s.T(), err)

	value, err := handle.CallBig(s.ctx, "value")
	require.Nil(s.T(), err)
	require.Equal(s.T(), big.NewInt(3), value)
}

func (s *DeployerTestSuite) TestAttach() {
	counter, err := s.deployer.Deploy(s.ctx, s.signer, "Counter", []interface{}{big.NewInt(5)})
	require.Nil(s.T(), err)

	attached, err := s.deployer.Attach("Counter", counter.Address)
	require.Nil(s.T(), err)
	require.Nil(s.T(), attached.Deployment)

	value, err := attached.CallBig(s.ctx, "value")
	require.Nil(s.T(), err)
	require.Equal(s.T(), big.NewInt(5), value)

	// Same address on a chain that doesn't have the contract
	other := ethtest.NewBackend()
	elsewhere, err := s.deployer.Attach("Counter", counter.Address, WithBackend(other))
	require.Nil(s.T(), err)
	require.Equal(s.T(), other, elsewhere.Backend())
	_, err = elsewhere.Call(s.ctx, "value")
	require.NotNil(s.T(), err)

	require.Equal(s.T(), s.backend, elsewhere.Connect(s.backend).Backend())
	require.Equal(s.T(), uint64(2), s.monitor.GetReport().Deployer.State.ContractsAttached.Load())
}

func (s *DeployerTestSuite) TestAttachVerified() {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"1","message":"OK","result":"[{\"type\":\"function\",\"name\":\"value\",\"inputs\":[],\"outputs\":[{\"name\":\"\",\"type\":\"uint256\"}],\"stateMutability\":\"view\"}]"}`))
	}))
	defer server.Close()

	counter, err := s.deployer.Deploy(s.ctx, s.signer, "Counter", []interface{}{big.NewInt(9)})
	require.Nil(s.T(), err)

	// Without an explorer unknown names can't be resolved
	_, err = s.deployer.AttachVerified(s.ctx, "PositionManager", counter.Address)
	require.ErrorIs(s.T(), err, ErrUnknownContract)

	s.config.Explorer.Url = server.URL
	s.deployer.WithExplorer(eth.NewExplorer(s.config))

	handle, err := s.deployer.AttachVerified(s.ctx, "PositionManager", counter.Address)
	require.Nil(s.T(), err)
	require.True(s.T(), s.registry.Has("PositionManager"))

	value, err := handle.CallBig(s.ctx, "value")
	require.Nil(s.T(), err)
	require.Equal(s.T(), big.NewInt(9), value)
}

func (s *DeployerTestSuite) TestDeployProxy() {
	logicABI := strings.Replace(counterABI, `{"type": "constructor", "inputs": [{"name": "initial", "type": "uint256"}], "stateMutability": "nonpayable"},`, "", 1)
	logic := &Descriptor{Name: "CounterLogic", ABI: ethtest.MustParseABI(logicABI), Bytecode: "0x6003"}
	s.registry.Register(logic)
	s.backend.OnDeploy([]byte{0x60, 0x03}, func(address, from common.Address, ctorArgs []byte) (*ethtest.Contract, error) {
		return newCounter(logic, big.NewInt(0)), nil
	})

	_, err := s.deployer.DeployProxy(s.ctx, s.signer, "CounterLogic", s.signer.From, "initialize", []interface{}{big.NewInt(11)})
	require.ErrorIs(s.T(), err, ErrNoProxyFactory)

	// Factory creates a proxy that behaves like the implementation and runs the init call on it
	factoryAddress := common.HexToAddress("0x0000000000006396FF2a80c067f99B3d2Ab4Df24")
	s.config.Proxy.FactoryAddress = factoryAddress.Hex()
	factoryDescriptor, err := s.registry.Get(ERC1967Factory)
	require.Nil(s.T(), err)

	var gasLimit uint64
	s.backend.Register(factoryAddress, ethtest.NewContract(factoryDescriptor.ABI).
		OnTransact("deployAndCall", func(tx *types.Transaction, from common.Address, args []interface{}) ([]*types.Log, error) {
			gasLimit = tx.Gas()
			implementation, admin, data := args[0].(common.Address), args[1].(common.Address), args[2].([]byte)
			proxy := crypto.CreateAddress(factoryAddress, 1)

			counter := newCounter(logic, big.NewInt(0))
			method, err := logic.ABI.MethodById(data[:4])
			if err != nil {
				return nil, err
			}
			initArgs, err := method.Inputs.Unpack(data[4:])
			if err != nil {
				return nil, err
			}
			_, err = counter.Transacts[method.Name](tx, from, initArgs)
			if err != nil {
				return nil, err
			}
			s.backend.Register(proxy, counter)

			log, err := ethtest.EventLog(factoryDescriptor.ABI, factoryAddress, "Deployed", proxy, implementation, admin)
			if err != nil {
				return nil, err
			}
			return []*types.Log{log}, nil
		}))

	handle, err := s.deployer.DeployProxy(s.ctx, s.signer, "CounterLogic", s.signer.From, "initialize", []interface{}{big.NewInt(11)})
	require.Nil(s.T(), err)
	require.Equal(s.T(), crypto.CreateAddress(factoryAddress, 1), handle.Address)
	require.NotEqual(s.T(), handle.Address, handle.Implementation)
	require.Equal(s.T(), s.config.Proxy.GasLimit, gasLimit)

	value, err := handle.CallBig(s.ctx, "value")
	require.Nil(s.T(), err)
	require.Equal(s.T(), big.NewInt(11), value)

	require.Equal(s.T(), []string{"deployAndCall"}, s.backend.SentMethods(factoryAddress))
}

func (s *DeployerTestSuite) TestFormatArgs() {
	require.Equal(s.T(), "", FormatArgs(nil))
	require.Equal(s.T(), `"1000000" "0x0000000000000000000000000000000000000001" "TTK"`,
		FormatArgs([]interface{}{big.NewInt(1000000), common.HexToAddress("0x01"), "TTK"}))
}
