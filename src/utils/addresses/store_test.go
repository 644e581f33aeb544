package addresses

import (
	"os"
	"path/filepath"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/warp-contracts/launchpad/src/utils/config"

	"testing"
)

func TestStoreTestSuite(t *testing.T) {
	suite.Run(t, new(StoreTestSuite))
}

type StoreTestSuite struct {
	suite.Suite
	config *config.Config
}

func (s *StoreTestSuite) SetupTest() {
	s.config = config.Default()
	s.config.Addresses.Dir = s.T().TempDir()
	s.config.Network.Name = "localhost"
}

func (s *StoreTestSuite) TestPath() {
	store := NewStore(s.config)
	require.Equal(s.T(), filepath.Join(s.config.Addresses.Dir, ".tmp-addresses-localhost.json"), store.Path())
}

func (s *StoreTestSuite) TestReadMissing() {
	all, err := NewStore(s.config).Read()
	require.Nil(s.T(), err)
	require.NotNil(s.T(), all)
	require.Empty(s.T(), all)

	_, ok, err := NewStore(s.config).Get("Token")
	require.Nil(s.T(), err)
	require.False(s.T(), ok)
}

func (s *StoreTestSuite) TestMerge() {
	store := NewStore(s.config)

	require.Nil(s.T(), store.Write(map[string]string{"Token": "0x01", "Factory": "0x02"}))
	require.Nil(s.T(), store.Write(map[string]string{"Factory": "0x03", "Curve": "0x04"}))

	all, err := store.Read()
	require.Nil(s.T(), err)
	require.Equal(s.T(), map[string]string{
		"Token":   "0x01",
		"Factory": "0x03",
		"Curve":   "0x04",
	}, all)

	address, ok, err := store.Get("Factory")
	require.Nil(s.T(), err)
	require.True(s.T(), ok)
	require.Equal(s.T(), "0x03", address)
}

func (s *StoreTestSuite) TestEmptyWrite() {
	store := NewStore(s.config)
	require.Nil(s.T(), store.Write(map[string]string{}))

	content, err := os.ReadFile(store.Path())
	require.Nil(s.T(), err)
	require.Equal(s.T(), "{}", string(content))
}

func (s *StoreTestSuite) TestNetworksAreSeparate() {
	require.Nil(s.T(), NewStore(s.config).Write(map[string]string{"Token": "0x01"}))

	other := *s.config
	other.Network.Name = "sepolia"
	all, err := NewStore(&other).Read()
	require.Nil(s.T(), err)
	require.Empty(s.T(), all)
}

func (s *StoreTestSuite) TestKeepsUnknownEntries() {
	store := NewStore(s.config)
	err := os.WriteFile(store.Path(), []byte(`{"External":"0xaa"}`), 0644)
	require.Nil(s.T(), err)

	require.Nil(s.T(), store.Write(map[string]string{"Token": "0x01"}))

	all, err := store.Read()
	require.Nil(s.T(), err)
	require.Equal(s.T(), map[string]string{"External": "0xaa", "Token": "0x01"}, all)
}

func (s *StoreTestSuite) TestCorrupted() {
	store := NewStore(s.config)
	err := os.WriteFile(store.Path(), []byte(`not json`), 0644)
	require.Nil(s.T(), err)

	_, err = store.Read()
	require.NotNil(s.T(), err)
	require.NotNil(s.T(), store.Write(map[string]string{"Token": "0x01"}))
}

func (s *StoreTestSuite) TestSortedKeys() {
	require.Equal(s.T(), []string{"a", "b", "c"}, SortedKeys(map[string]string{"c": "", "a": "", "b": ""}))
}
