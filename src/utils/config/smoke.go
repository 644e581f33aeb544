package config

import (
	"github.com/spf13/viper"
)

type Smoke struct {
	// Created token
	TokenName   string
	TokenSymbol string
	TokenUri    string

	// Bonding curve constructor arguments
	CurveSlope        int64
	CurveReserveRatio int64

	// Fee passed to the factory initializer
	FeePercent int64

	// Amount of ether paid for the buy, decimal string
	BuyAmount string

	// Attach to contracts already saved in the address file instead of deploying them again
	Resume bool
}

func setSmokeDefaults() {
	viper.SetDefault("Smoke.TokenName", "TestToken")
	viper.SetDefault("Smoke.TokenSymbol", "TTK")
	viper.SetDefault("Smoke.TokenUri", "testuri")
	viper.SetDefault("Smoke.CurveSlope", 1000000)
	viper.SetDefault("Smoke.CurveReserveRatio", 1000000)
	viper.SetDefault("Smoke.FeePercent", 100)
	viper.SetDefault("Smoke.BuyAmount", "1")
	viper.SetDefault("Smoke.Resume", false)
}
