package config

import (
	"time"

	"github.com/spf13/viper"
)

type Batch struct {
	// Number of rows passed to a single handler call
	Size int

	// Pause between batches
	Pause time.Duration
}

func setBatchDefaults() {
	viper.SetDefault("Batch.Size", 100)
	viper.SetDefault("Batch.Pause", "0s")
}
