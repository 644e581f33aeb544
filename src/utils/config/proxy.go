package config

import (
	"github.com/spf13/viper"
)

type Proxy struct {
	// Address of the ERC1967Factory used for proxied deployments
	FactoryAddress string

	// Gas limit of the deployAndCall transaction
	GasLimit uint64
}

func setProxyDefaults() {
	viper.SetDefault("Proxy.FactoryAddress", "")
	viper.SetDefault("Proxy.GasLimit", 500_000)
}
