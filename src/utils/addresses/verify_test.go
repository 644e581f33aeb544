package addresses

import (
	"context"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

type codeReader struct {
	deployed map[common.Address]bool
	err      error
}

func (self *codeReader) CodeAt(ctx context.Context, contract common.Address, blockNumber *big.Int) ([]byte, error) {
	if self.err != nil {
		return nil, self.err
	}
	if self.deployed[contract] {
		return []byte{0x60, 0x80}, nil
	}
	return nil, nil
}

func (s *StoreTestSuite) TestVerify() {
	store := NewStore(s.config)
	require.Nil(s.T(), store.Write(map[string]string{
		"Token":        "0x0000000000000000000000000000000000000001",
		"BondingCurve": "0x0000000000000000000000000000000000000002",
		"Factory":      "0x0000000000000000000000000000000000000003",
		"CreatedToken": "0x0000000000000000000000000000000000000004",
	}))

	reader := &codeReader{deployed: map[common.Address]bool{
		common.HexToAddress("0x01"): true,
		common.HexToAddress("0x03"): true,
	}}

	missing, err := store.Verify(context.Background(), reader, 2)
	require.Nil(s.T(), err)
	require.Equal(s.T(), []string{"BondingCurve", "CreatedToken"}, missing)
}

func (s *StoreTestSuite) TestVerifyEmpty() {
	missing, err := NewStore(s.config).Verify(context.Background(), &codeReader{}, 0)
	require.Nil(s.T(), err)
	require.Empty(s.T(), missing)
}

func (s *StoreTestSuite) TestVerifyInvalidAddress() {
	store := NewStore(s.config)
	require.Nil(s.T(), store.Write(map[string]string{"Token": "not-an-address"}))

	_, err := store.Verify(context.Background(), &codeReader{}, 2)
	require.ErrorContains(s.T(), err, "invalid address")
}

func (s *StoreTestSuite) TestVerifyRpcError() {
	store := NewStore(s.config)
	require.Nil(s.T(), store.Write(map[string]string{"Token": "0x0000000000000000000000000000000000000001"}))

	rpcErr := errors.New("connection refused")
	_, err := store.Verify(context.Background(), &codeReader{err: rpcErr}, 2)
	require.ErrorIs(s.T(), err, rpcErr)
}
