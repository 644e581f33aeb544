package config

import (
	"github.com/spf13/viper"
)

type Monitoring struct {
	// Prometheus Pushgateway url. Empty disables pushing the run report
	PushgatewayUrl string

	// Job name used when pushing
	Job string
}

func setMonitoringDefaults() {
	viper.SetDefault("Monitoring.PushgatewayUrl", "")
	viper.SetDefault("Monitoring.Job", "launchpad")
}
