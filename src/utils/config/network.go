package config

import (
	"time"

	"github.com/spf13/viper"
)

type Network struct {
	// Network identifier, selects the address file as well
	Name string

	// JSON-RPC endpoint of the node
	RpcUrl string

	// Chain id used for signing. 0 means it's fetched from the node
	ChainId int64

	// Number of blocks a transaction needs before it's considered done
	Confirmations uint64

	// How often receipts and new heads are polled
	PollInterval time.Duration

	// Max number of submitted transactions per second, 0 is no limit
	MaxTxPerSecond float64
}

func setNetworkDefaults() {
	viper.SetDefault("Network.Name", "mainnet")
	viper.SetDefault("Network.RpcUrl", "http://127.0.0.1:8545")
	viper.SetDefault("Network.ChainId", 0)
	viper.SetDefault("Network.Confirmations", 2)
	viper.SetDefault("Network.PollInterval", "1s")
	viper.SetDefault("Network.MaxTxPerSecond", 0)
}
