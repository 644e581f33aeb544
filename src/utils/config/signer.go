package config

import (
	"github.com/spf13/viper"
)

type Signer struct {
	// Hex encoded private key of the deploying account
	PrivateKey string
}

func setSignerDefaults() {
	viper.SetDefault("Signer.PrivateKey", "")
}
