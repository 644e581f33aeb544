// Package ethtest provides an in-memory chain that scripts contract behaviour
// with Go functions. It lets the deployment code run end to end without a node.
package ethtest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

var ErrSendRejected = errors.New("send rejected")

const DefaultGas = 100_000

// Read-only method implementation
type CallFunc func(from common.Address, args []interface{}) ([]interface{}, error)

// State changing method implementation. Returned error reverts the transaction.
type TransactFunc func(tx *types.Transaction, from common.Address, args []interface{}) ([]*types.Log, error)

// Scripted contract living at an address
type Contract struct {
	ABI       *abi.ABI
	Calls     map[string]CallFunc
	Transacts map[string]TransactFunc
}

func NewContract(contractABI *abi.ABI) *Contract {
	return &Contract{
		ABI:       contractABI,
		Calls:     make(map[string]CallFunc),
		Transacts: make(map[string]TransactFunc),
	}
}

func (self *Contract) OnCall(method string, f CallFunc) *Contract {
	self.Calls[method] = f
	return self
}

func (self *Contract) OnTransact(method string, f TransactFunc) *Contract {
	self.Transacts[method] = f
	return self
}

// Builds the contract that appears at address when code starting with the registered prefix is deployed.
// ctorArgs holds the bytes following the prefix.
type DeployFunc func(address common.Address, from common.Address, ctorArgs []byte) (*Contract, error)

type deployable struct {
	code   []byte
	create DeployFunc
}

type Backend struct {
	mu sync.Mutex

	ChainId *big.Int
	BaseFee *big.Int

	// Every HeaderByNumber call moves the head one block forward
	AutoAdvance bool

	// Number of upcoming SendTransaction calls that fail
	RejectSends int

	head        uint64
	nonces      map[common.Address]uint64
	receipts    map[common.Hash]*types.Receipt
	contracts   map[common.Address]*Contract
	deployables []deployable

	// Every accepted transaction, in order
	Sent []*types.Transaction
}

func NewBackend() *Backend {
	return &Backend{
		ChainId:     big.NewInt(1337),
		BaseFee:     big.NewInt(1_000_000_000),
		AutoAdvance: true,
		head:        1,
		nonces:      make(map[common.Address]uint64),
		receipts:    make(map[common.Hash]*types.Receipt),
		contracts:   make(map[common.Address]*Contract),
	}
}

func (self *Backend) Register(address common.Address, contract *Contract) {
	self.mu.Lock()
	defer self.mu.Unlock()
	self.contracts[address] = contract
}

func (self *Backend) OnDeploy(code []byte, f DeployFunc) {
	self.mu.Lock()
	defer self.mu.Unlock()
	self.deployables = append(self.deployables, deployable{code: code, create: f})
}

func (self *Backend) Head() uint64 {
	self.mu.Lock()
	defer self.mu.Unlock()
	return self.head
}

// Names of the methods called by the accepted transactions sent to address, in order
func (self *Backend) SentMethods(address common.Address) (out []string) {
	self.mu.Lock()
	defer self.mu.Unlock()

	contract, ok := self.contracts[address]
	if !ok {
		return
	}
	for _, tx := range self.Sent {
		if tx.To() == nil || *tx.To() != address || len(tx.Data()) < 4 {
			continue
		}
		method, err := contract.ABI.MethodById(tx.Data()[:4])
		if err != nil {
			continue
		}
		out = append(out, method.Name)
	}
	return
}

func (self *Backend) Receipt(hash common.Hash) *types.Receipt {
	self.mu.Lock()
	defer self.mu.Unlock()
	return self.receipts[hash]
}

func (self *Backend) code(address common.Address) []byte {
	if _, ok := self.contracts[address]; ok {
		return []byte{0x60, 0x80}
	}
	return nil
}

func (self *Backend) CodeAt(ctx context.Context, contract common.Address, blockNumber *big.Int) ([]byte, error) {
	self.mu.Lock()
	defer self.mu.Unlock()
	return self.code(contract), nil
}

func (self *Backend) PendingCodeAt(ctx context.Context, account common.Address) ([]byte, error) {
	return self.CodeAt(ctx, account, nil)
}

func (self *Backend) CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	if call.To == nil {
		return nil, errors.New("call without target")
	}

	self.mu.Lock()
	contract, ok := self.contracts[*call.To]
	self.mu.Unlock()
	if !ok {
		return nil, nil
	}
	if len(call.Data) < 4 {
		return nil, errors.New("call without method")
	}

	method, err := contract.ABI.MethodById(call.Data[:4])
	if err != nil {
		return nil, err
	}
	f, ok := contract.Calls[method.Name]
	if !ok {
		return nil, fmt.Errorf("execution reverted: %s not scripted", method.Name)
	}
	args, err := method.Inputs.Unpack(call.Data[4:])
	if err != nil {
		return nil, err
	}

	out, err := f(call.From, args)
	if err != nil {
		return nil, err
	}
	return method.Outputs.Pack(out...)
}

func (self *Backend) HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error) {
	self.mu.Lock()
	defer self.mu.Unlock()

	if self.AutoAdvance {
		self.head++
	}
	return &types.Header{
		Number:   new(big.Int).SetUint64(self.head),
		BaseFee:  self.BaseFee,
		GasLimit: 30_000_000,
	}, nil
}

func (self *Backend) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	self.mu.Lock()
	defer self.mu.Unlock()
	return self.nonces[account], nil
}

func (self *Backend) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	return big.NewInt(1_000_000_000), nil
}

func (self *Backend) SuggestGasTipCap(ctx context.Context) (*big.Int, error) {
	return big.NewInt(1_000_000_000), nil
}

func (self *Backend) EstimateGas(ctx context.Context, call ethereum.CallMsg) (uint64, error) {
	return DefaultGas, nil
}

func (self *Backend) FilterLogs(ctx context.Context, query ethereum.FilterQuery) ([]types.Log, error) {
	return nil, nil
}

func (self *Backend) SubscribeFilterLogs(ctx context.Context, query ethereum.FilterQuery, ch chan<- types.Log) (ethereum.Subscription, error) {
	return nil, errors.New("subscriptions are not supported")
}

func (self *Backend) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	self.mu.Lock()
	defer self.mu.Unlock()

	receipt, ok := self.receipts[txHash]
	if !ok {
		return nil, ethereum.NotFound
	}
	return receipt, nil
}

// Every transaction is mined right away in its own block.
// Scripted handlers run without the lock held, they may Register new contracts.
func (self *Backend) SendTransaction(ctx context.Context, tx *types.Transaction) (err error) {
	from, err := types.Sender(types.LatestSignerForChainID(tx.ChainId()), tx)
	if err != nil {
		return
	}

	self.mu.Lock()
	if self.RejectSends > 0 {
		self.RejectSends--
		self.mu.Unlock()
		return ErrSendRejected
	}
	if tx.Nonce() != self.nonces[from] {
		expected := self.nonces[from]
		self.mu.Unlock()
		return fmt.Errorf("invalid nonce: got %d, expected %d", tx.Nonce(), expected)
	}
	self.nonces[from]++
	self.head++
	blockNumber := self.head
	deployables := self.deployables
	var target *Contract
	if tx.To() != nil {
		target = self.contracts[*tx.To()]
	}
	self.mu.Unlock()

	receipt := &types.Receipt{
		Type:              tx.Type(),
		Status:            types.ReceiptStatusSuccessful,
		TxHash:            tx.Hash(),
		GasUsed:           DefaultGas,
		CumulativeGasUsed: DefaultGas,
		BlockNumber:       new(big.Int).SetUint64(blockNumber),
	}

	var (
		logs     []*types.Log
		deployed *Contract
		execErr  error
	)
	if tx.To() == nil {
		receipt.ContractAddress = crypto.CreateAddress(from, tx.Nonce())
		deployed, execErr = deploy(deployables, receipt.ContractAddress, from, tx.Data())
	} else if target != nil {
		logs, execErr = transact(target, tx, from)
	}
	if execErr != nil {
		receipt.Status = types.ReceiptStatusFailed
		logs = nil
	}

	for i, log := range logs {
		log.TxHash = tx.Hash()
		log.BlockNumber = blockNumber
		log.Index = uint(i)
	}
	receipt.Logs = logs

	self.mu.Lock()
	defer self.mu.Unlock()
	if deployed != nil {
		self.contracts[receipt.ContractAddress] = deployed
	}
	self.receipts[tx.Hash()] = receipt
	self.Sent = append(self.Sent, tx)
	return nil
}

func deploy(deployables []deployable, address, from common.Address, data []byte) (*Contract, error) {
	for _, d := range deployables {
		if !bytes.HasPrefix(data, d.code) {
			continue
		}
		return d.create(address, from, data[len(d.code):])
	}
	return nil, errors.New("unknown bytecode")
}

// Transactions to addresses without a scripted contract are plain value transfers
func transact(contract *Contract, tx *types.Transaction, from common.Address) ([]*types.Log, error) {
	if len(tx.Data()) < 4 {
		return nil, errors.New("transaction without method")
	}

	method, err := contract.ABI.MethodById(tx.Data()[:4])
	if err != nil {
		return nil, err
	}
	f, ok := contract.Transacts[method.Name]
	if !ok {
		return nil, fmt.Errorf("%s not scripted", method.Name)
	}
	args, err := method.Inputs.Unpack(tx.Data()[4:])
	if err != nil {
		return nil, err
	}
	return f(tx, from, args)
}

// Builds a log the way the EVM would emit the event
func EventLog(contractABI *abi.ABI, address common.Address, name string, args ...interface{}) (*types.Log, error) {
	event, ok := contractABI.Events[name]
	if !ok {
		return nil, fmt.Errorf("no event %s", name)
	}
	if len(args) != len(event.Inputs) {
		return nil, fmt.Errorf("event %s takes %d arguments", name, len(event.Inputs))
	}

	topics := []common.Hash{event.ID}
	var nonIndexed []interface{}
	for i, input := range event.Inputs {
		if !input.Indexed {
			nonIndexed = append(nonIndexed, args[i])
			continue
		}
		hashes, err := abi.MakeTopics([]interface{}{args[i]})
		if err != nil {
			return nil, err
		}
		topics = append(topics, hashes[0][0])
	}

	data, err := event.Inputs.NonIndexed().Pack(nonIndexed...)
	if err != nil {
		return nil, err
	}

	return &types.Log{
		Address: address,
		Topics:  topics,
		Data:    data,
	}, nil
}
