package config

import (
	"github.com/spf13/viper"
)

type Distributor struct {
	// Gas limit for updateLastDistributionTime and setTokensPerInterval
	GasLimit uint64
}

func setDistributorDefaults() {
	viper.SetDefault("Distributor.GasLimit", 1_000_000)
}
