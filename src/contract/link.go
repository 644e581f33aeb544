package contract

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

var ErrUnlinkedLibrary = errors.New("bytecode references an unlinked library")

// Solidity placeholder for the address of a library, e.g. "contracts/Math.sol:Math"
func LibraryPlaceholder(fullyQualifiedName string) string {
	hash := crypto.Keccak256Hash([]byte(fullyQualifiedName)).Hex()
	return "__$" + hash[2:36] + "$__"
}

// Puts library addresses into creation code. Every placeholder has to be resolved.
func Link(bytecode string, libraries map[string]common.Address) (out []byte, err error) {
	code := strings.TrimPrefix(bytecode, "0x")

	for name, address := range libraries {
		code = strings.ReplaceAll(code, LibraryPlaceholder(name), strings.ToLower(address.Hex()[2:]))
	}

	if idx := strings.Index(code, "__$"); idx >= 0 {
		err = fmt.Errorf("%w: placeholder at byte %d", ErrUnlinkedLibrary, idx/2)
		return
	}

	return hexutil.Decode("0x" + code)
}
