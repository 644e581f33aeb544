package config

import (
	"github.com/spf13/viper"
)

type Retry struct {
	// Max number of attempts, 1 means no retry
	Attempts int
}

func setRetryDefaults() {
	viper.SetDefault("Retry.Attempts", 3)
}
