package contract

import (
	"errors"
	"fmt"
	"math/big"
	"reflect"
	"strconv"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

var ErrArgumentCount = errors.New("wrong number of arguments")

// Converts command line strings into values accepted by the method's inputs.
// Arrays and tuples aren't supported.
func ParseArgs(method *abi.Method, args []string) (out []interface{}, err error) {
	if len(args) != len(method.Inputs) {
		return nil, fmt.Errorf("%w: %s takes %d, got %d", ErrArgumentCount, method.Sig, len(method.Inputs), len(args))
	}

	out = make([]interface{}, 0, len(args))
	for i, input := range method.Inputs {
		value, err := ParseArg(input.Type, args[i])
		if err != nil {
			return nil, fmt.Errorf("argument %d (%s): %w", i, input.Name, err)
		}
		out = append(out, value)
	}
	return
}

func ParseArg(t abi.Type, v string) (interface{}, error) {
	switch t.T {
	case abi.AddressTy:
		if !common.IsHexAddress(v) {
			return nil, fmt.Errorf("invalid address: %s", v)
		}
		return common.HexToAddress(v), nil

	case abi.BoolTy:
		return strconv.ParseBool(v)

	case abi.StringTy:
		return v, nil

	case abi.BytesTy:
		return hexutil.Decode(v)

	case abi.FixedBytesTy:
		raw, err := hexutil.Decode(v)
		if err != nil {
			return nil, err
		}
		if len(raw) != t.Size {
			return nil, fmt.Errorf("expected %d bytes, got %d", t.Size, len(raw))
		}
		array := reflect.New(t.GetType()).Elem()
		reflect.Copy(array, reflect.ValueOf(raw))
		return array.Interface(), nil

	case abi.UintTy, abi.IntTy:
		return parseInteger(t, v)
	}

	return nil, fmt.Errorf("unsupported type %s", t.String())
}

// Values of 8, 16, 32 and 64 bits use the matching Go type, all other widths *big.Int
func parseInteger(t abi.Type, v string) (interface{}, error) {
	value, ok := new(big.Int).SetString(v, 0)
	if !ok {
		return nil, fmt.Errorf("invalid integer: %s", v)
	}
	if t.T == abi.UintTy && value.Sign() < 0 {
		return nil, fmt.Errorf("negative value for %s", t.String())
	}
	if t.Size > 64 {
		return value, nil
	}

	if t.T == abi.UintTy {
		if value.BitLen() > t.Size {
			return nil, fmt.Errorf("%s overflows %s", v, t.String())
		}
	} else {
		limit := new(big.Int).Lsh(big.NewInt(1), uint(t.Size-1))
		if value.Cmp(limit) >= 0 || value.Cmp(new(big.Int).Neg(limit)) < 0 {
			return nil, fmt.Errorf("%s overflows %s", v, t.String())
		}
	}

	// uint24, int40 and friends are packed from *big.Int
	goType := t.GetType()
	if goType.Kind() == reflect.Ptr {
		return value, nil
	}

	out := reflect.New(goType).Elem()
	if t.T == abi.UintTy {
		out.SetUint(value.Uint64())
	} else {
		out.SetInt(value.Int64())
	}
	return out.Interface(), nil
}
