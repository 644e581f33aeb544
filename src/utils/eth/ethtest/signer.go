package ethtest

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/crypto"
)

// Signer with a fresh random key
func NewTransactor(chainId *big.Int) (*bind.TransactOpts, error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return nil, err
	}
	return bind.NewKeyedTransactorWithChainID(key, chainId)
}

func MustParseABI(v string) *abi.ABI {
	out, err := abi.JSON(strings.NewReader(v))
	if err != nil {
		panic(err)
	}
	return &out
}
