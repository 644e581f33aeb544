package contract

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/warp-contracts/launchpad/src/utils/eth/ethtest"

	"testing"
)

const argsABI = `[{"type": "function", "name": "f", "stateMutability": "view", "outputs": [], "inputs": [
	{"name": "a", "type": "address"},
	{"name": "b", "type": "bool"},
	{"name": "c", "type": "string"},
	{"name": "d", "type": "bytes"},
	{"name": "e", "type": "bytes4"},
	{"name": "f", "type": "uint8"},
	{"name": "g", "type": "int64"},
	{"name": "h", "type": "uint256"},
	{"name": "i", "type": "int128"}
]}]`

func TestArgsTestSuite(t *testing.T) {
	suite.Run(t, new(ArgsTestSuite))
}

type ArgsTestSuite struct {
	suite.Suite
}

func (s *ArgsTestSuite) TestParseArgs() {
	method := ethtest.MustParseABI(argsABI).Methods["f"]

	out, err := ParseArgs(&method, []string{
		"0x0000000000000000000000000000000000000001",
		"true",
		"hello",
		"0xabcd",
		"0x01020304",
		"255",
		"-5",
		"1000000000000000000000",
		"-0x10",
	})
	require.Nil(s.T(), err)
	require.Equal(s.T(), common.HexToAddress("0x01"), out[0])
	require.Equal(s.T(), true, out[1])
	require.Equal(s.T(), "hello", out[2])
	require.Equal(s.T(), []byte{0xab, 0xcd}, out[3])
	require.Equal(s.T(), [4]byte{1, 2, 3, 4}, out[4])
	require.Equal(s.T(), uint8(255), out[5])
	require.Equal(s.T(), int64(-5), out[6])
	expected, _ := new(big.Int).SetString("1000000000000000000000", 10)
	require.Equal(s.T(), expected, out[7])
	require.Equal(s.T(), big.NewInt(-16), out[8])

	// Values can be packed as they are
	_, err = method.Inputs.Pack(out...)
	require.Nil(s.T(), err)
}

func (s *ArgsTestSuite) TestInvalid() {
	method := ethtest.MustParseABI(argsABI).Methods["f"]
	valid := []string{"0x0000000000000000000000000000000000000001", "true", "x", "0x", "0x01020304", "1", "1", "1", "1"}

	_, err := ParseArgs(&method, valid[:3])
	require.ErrorIs(s.T(), err, ErrArgumentCount)

	for i, value := range map[int]string{0: "0x01", 1: "maybe", 3: "zz", 4: "0x0102", 5: "256", 6: "1e3", 7: "-1"} {
		args := append([]string{}, valid...)
		args[i] = value
		_, err := ParseArgs(&method, args)
		require.NotNil(s.T(), err, "argument %d = %s", i, value)
	}
}

const poolABI = `[{"type": "function", "name": "getPool", "stateMutability": "view", "outputs": [{"name": "", "type": "address"}], "inputs": [
	{"name": "tokenA", "type": "address"},
	{"name": "tokenB", "type": "address"},
	{"name": "fee", "type": "uint24"},
	{"name": "tick", "type": "int24"},
	{"name": "observed", "type": "uint40"}
]}]`

func (s *ArgsTestSuite) TestOddWidths() {
	method := ethtest.MustParseABI(poolABI).Methods["getPool"]

	out, err := ParseArgs(&method, []string{
		"0x0000000000000000000000000000000000000001",
		"0x0000000000000000000000000000000000000002",
		"3000",
		"-887272",
		"1700000000",
	})
	require.Nil(s.T(), err)
	require.Equal(s.T(), big.NewInt(3000), out[2])
	require.Equal(s.T(), big.NewInt(-887272), out[3])
	require.Equal(s.T(), big.NewInt(1700000000), out[4])

	_, err = method.Inputs.Pack(out...)
	require.Nil(s.T(), err)
}

func (s *ArgsTestSuite) TestOddWidthsOverflow() {
	method := ethtest.MustParseABI(poolABI).Methods["getPool"]
	valid := []string{"0x0000000000000000000000000000000000000001", "0x0000000000000000000000000000000000000002", "3000", "60", "1"}

	for i, value := range map[int]string{2: "16777216", 3: "8388608", 4: "1099511627776"} {
		args := append([]string{}, valid...)
		args[i] = value
		_, err := ParseArgs(&method, args)
		require.ErrorContains(s.T(), err, "overflows", "argument %d = %s", i, value)
	}

	// Lowest int24
	args := append([]string{}, valid...)
	args[3] = "-8388608"
	out, err := ParseArgs(&method, args)
	require.Nil(s.T(), err)
	require.Equal(s.T(), big.NewInt(-8388608), out[3])
}
