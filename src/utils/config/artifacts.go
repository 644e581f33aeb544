package config

import (
	"github.com/spf13/viper"
)

type Artifacts struct {
	// Directory with compiled Hardhat artifacts. Searched recursively.
	Dir string
}

func setArtifactsDefaults() {
	viper.SetDefault("Artifacts.Dir", "artifacts")
}
