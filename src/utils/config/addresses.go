package config

import (
	"github.com/spf13/viper"
)

type Addresses struct {
	// Directory with the .tmp-addresses-<network>.json files
	Dir string

	// Number of parallel RPC calls when checking saved addresses have code
	VerifyWorkers int
}

func setAddressesDefaults() {
	viper.SetDefault("Addresses.Dir", ".")
	viper.SetDefault("Addresses.VerifyWorkers", 5)
}
