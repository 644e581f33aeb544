package monitoring

import (
	"context"
	"encoding/json"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
	"github.com/sirupsen/logrus"
	"github.com/warp-contracts/launchpad/src/utils/config"
	"github.com/warp-contracts/launchpad/src/utils/logger"
)

// Counts what happened during a single run.
// The report can be pushed to a Prometheus Pushgateway once the run is over.
type Monitor struct {
	Report Report

	log       *logrus.Entry
	collector *Collector
}

func NewMonitor() (self *Monitor) {
	self = new(Monitor)
	self.log = logger.NewSublogger("monitor")
	self.Report.Run.State.StartTimestamp.Store(time.Now().Unix())
	self.collector = NewCollector().WithMonitor(self)
	return
}

func (self *Monitor) GetReport() *Report {
	return &self.Report
}

func (self *Monitor) GetPrometheusCollector() prometheus.Collector {
	return self.collector
}

func (self *Monitor) LogReport() {
	out, err := json.Marshal(&self.Report)
	if err != nil {
		self.log.WithError(err).Error("Failed to marshal report")
		return
	}
	self.log.WithField("report", string(out)).Info("Run report")
}

// Does nothing if the Pushgateway isn't configured
func (self *Monitor) Push(ctx context.Context, config *config.Config) (err error) {
	if config.Monitoring.PushgatewayUrl == "" {
		return
	}

	err = push.New(config.Monitoring.PushgatewayUrl, config.Monitoring.Job).
		Collector(self.collector).
		Grouping("network", config.Network.Name).
		PushContext(ctx)
	if err != nil {
		self.log.WithError(err).Error("Failed to push run report")
		return
	}
	return
}
