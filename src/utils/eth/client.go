package eth

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/params"
	"github.com/sirupsen/logrus"
	"github.com/warp-contracts/launchpad/src/utils/config"
)

var (
	ErrEventNotFound = errors.New("desired transaction log not found")
	ErrNoPrivateKey  = errors.New("signer private key is not configured")
)

// Everything needed to deploy, call and wait for contracts.
// Implemented by *ethclient.Client.
type Backend interface {
	bind.ContractBackend
	bind.DeployBackend
}

var _ Backend = (*ethclient.Client)(nil)

func GetEthClient(ctx context.Context, log *logrus.Entry, config *config.Config) (client *ethclient.Client, err error) {
	client, err = ethclient.DialContext(ctx, config.Network.RpcUrl)
	if err != nil {
		log.WithError(err).WithField("url", config.Network.RpcUrl).Error("Cannot get ETH client")
		return
	}
	return
}

// Uses the configured chain id, asks the node if it's not set
func GetChainId(ctx context.Context, client *ethclient.Client, config *config.Config) (chainId *big.Int, err error) {
	if config.Network.ChainId != 0 {
		return big.NewInt(config.Network.ChainId), nil
	}
	return client.ChainID(ctx)
}

func ParsePrivateKey(v string) (key *ecdsa.PrivateKey, address common.Address, err error) {
	v = strings.TrimPrefix(strings.TrimSpace(v), "0x")
	if v == "" {
		err = ErrNoPrivateKey
		return
	}
	key, err = crypto.HexToECDSA(v)
	if err != nil {
		err = fmt.Errorf("parse private key: %w", err)
		return
	}
	address = crypto.PubkeyToAddress(key.PublicKey)
	return
}

// Transaction options of the configured signer
func GetTransactor(config *config.Config, chainId *big.Int) (opts *bind.TransactOpts, err error) {
	key, _, err := ParsePrivateKey(config.Signer.PrivateKey)
	if err != nil {
		return
	}
	return bind.NewKeyedTransactorWithChainID(key, chainId)
}

func ParseAddress(v string) (common.Address, error) {
	if !common.IsHexAddress(v) {
		return common.Address{}, fmt.Errorf("invalid address: %s", v)
	}
	return common.HexToAddress(v), nil
}

// Copies the options so that per call settings don't leak into other calls
func WithGasLimit(opts *bind.TransactOpts, gasLimit uint64) *bind.TransactOpts {
	out := *opts
	out.GasLimit = gasLimit
	return &out
}

func WithValue(opts *bind.TransactOpts, value *big.Int) *bind.TransactOpts {
	out := *opts
	out.Value = value
	return &out
}

func WithContext(opts *bind.TransactOpts, ctx context.Context) *bind.TransactOpts {
	out := *opts
	out.Context = ctx
	return &out
}

func DecodeTransactionInputData(contractABI *abi.ABI, data []byte) (method *abi.Method, inputs []interface{}, err error) {
	if len(data) < 4 {
		err = errors.New("no data to decode")
		return
	}
	method, err = contractABI.MethodById(data[:4])
	if err != nil {
		return
	}
	inputs, err = method.Inputs.Unpack(data[4:])
	return
}

func GetTxSender(tx *types.Transaction) (sender common.Address, err error) {
	return types.Sender(types.LatestSignerForChainID(tx.ChainId()), tx)
}

func WeiToEther(wei *big.Int) float64 {
	ether, _ := new(big.Float).Quo(new(big.Float).SetInt(wei), big.NewFloat(params.Ether)).Float64()
	return ether
}

// Parses a decimal amount like "1.5" into the smallest unit
func ParseUnits(amount string, decimals int) (out *big.Int, err error) {
	amount = strings.TrimSpace(amount)
	if amount == "" {
		return nil, errors.New("empty amount")
	}
	whole, fraction, _ := strings.Cut(amount, ".")
	if len(fraction) > decimals {
		return nil, fmt.Errorf("too many decimal places in %q", amount)
	}
	digits := whole + fraction + strings.Repeat("0", decimals-len(fraction))

	out, ok := new(big.Int).SetString(digits, 10)
	if !ok || out.Sign() < 0 {
		return nil, fmt.Errorf("invalid amount %q", amount)
	}
	return
}

func ParseEther(amount string) (*big.Int, error) {
	return ParseUnits(amount, 18)
}

// Decodes the first log in the receipt that matches the event name.
// Indexed and non-indexed arguments end up in the same map.
func GetTransactionLog(receipt *types.Receipt, contractABI *abi.ABI, name string) (eventMap map[string]interface{}, err error) {
	for _, vLog := range receipt.Logs {
		if len(vLog.Topics) == 0 {
			continue
		}

		event, err := contractABI.EventByID(vLog.Topics[0])
		if err != nil || event.Name != name {
			continue
		}

		eventMap = make(map[string]interface{})

		indexed := make(abi.Arguments, 0)
		for _, input := range event.Inputs {
			if input.Indexed {
				indexed = append(indexed, input)
			}
		}
		err = abi.ParseTopicsIntoMap(eventMap, indexed, vLog.Topics[1:])
		if err != nil {
			return nil, err
		}

		if len(vLog.Data) > 0 {
			err = contractABI.UnpackIntoMap(eventMap, event.Name, vLog.Data)
			if err != nil {
				return nil, err
			}
		}
		return eventMap, nil
	}

	err = fmt.Errorf("%w: %s", ErrEventNotFound, name)
	return
}
