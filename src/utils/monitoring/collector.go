package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type Collector struct {
	monitor *Monitor

	// Run
	UpForSeconds *prometheus.Desc

	TransactionsSubmitted *prometheus.Desc
	TransactionsConfirmed *prometheus.Desc
	ContractsDeployed     *prometheus.Desc
	ContractsAttached     *prometheus.Desc
	BatchesHandled        *prometheus.Desc
	CallsRetried          *prometheus.Desc

	// Errors
	SubmitFailed       *prometheus.Desc
	ConfirmationFailed *prometheus.Desc
	DeploymentFailed   *prometheus.Desc
}

func NewCollector() *Collector {
	return &Collector{
		UpForSeconds:          prometheus.NewDesc("up_for_seconds", "", nil, nil),
		TransactionsSubmitted: prometheus.NewDesc("transactions_submitted", "", nil, nil),
		TransactionsConfirmed: prometheus.NewDesc("transactions_confirmed", "", nil, nil),
		ContractsDeployed:     prometheus.NewDesc("contracts_deployed", "", nil, nil),
		ContractsAttached:     prometheus.NewDesc("contracts_attached", "", nil, nil),
		BatchesHandled:        prometheus.NewDesc("batches_handled", "", nil, nil),
		CallsRetried:          prometheus.NewDesc("calls_retried", "", nil, nil),
		SubmitFailed:          prometheus.NewDesc("submit_failed", "", nil, nil),
		ConfirmationFailed:    prometheus.NewDesc("confirmation_failed", "", nil, nil),
		DeploymentFailed:      prometheus.NewDesc("deployment_failed", "", nil, nil),
	}
}

func (self *Collector) WithMonitor(m *Monitor) *Collector {
	self.monitor = m
	return self
}

func (self *Collector) Describe(ch chan<- *prometheus.Desc) {
	// Run
	ch <- self.UpForSeconds

	ch <- self.TransactionsSubmitted
	ch <- self.TransactionsConfirmed
	ch <- self.ContractsDeployed
	ch <- self.ContractsAttached
	ch <- self.BatchesHandled
	ch <- self.CallsRetried

	// Errors
	ch <- self.SubmitFailed
	ch <- self.ConfirmationFailed
	ch <- self.DeploymentFailed
}

// Collect implements required collect function for all promehteus collectors
func (self *Collector) Collect(ch chan<- prometheus.Metric) {
	report := &self.monitor.Report

	// Run
	upFor := time.Now().Unix() - report.Run.State.StartTimestamp.Load()
	ch <- prometheus.MustNewConstMetric(self.UpForSeconds, prometheus.GaugeValue, float64(upFor))

	state := &report.Deployer.State
	ch <- prometheus.MustNewConstMetric(self.TransactionsSubmitted, prometheus.CounterValue, float64(state.TransactionsSubmitted.Load()))
	ch <- prometheus.MustNewConstMetric(self.TransactionsConfirmed, prometheus.CounterValue, float64(state.TransactionsConfirmed.Load()))
	ch <- prometheus.MustNewConstMetric(self.ContractsDeployed, prometheus.CounterValue, float64(state.ContractsDeployed.Load()))
	ch <- prometheus.MustNewConstMetric(self.ContractsAttached, prometheus.CounterValue, float64(state.ContractsAttached.Load()))
	ch <- prometheus.MustNewConstMetric(self.BatchesHandled, prometheus.CounterValue, float64(state.BatchesHandled.Load()))
	ch <- prometheus.MustNewConstMetric(self.CallsRetried, prometheus.CounterValue, float64(state.CallsRetried.Load()))

	errors := &report.Deployer.Errors
	ch <- prometheus.MustNewConstMetric(self.SubmitFailed, prometheus.CounterValue, float64(errors.SubmitFailed.Load()))
	ch <- prometheus.MustNewConstMetric(self.ConfirmationFailed, prometheus.CounterValue, float64(errors.ConfirmationFailed.Load()))
	ch <- prometheus.MustNewConstMetric(self.DeploymentFailed, prometheus.CounterValue, float64(errors.DeploymentFailed.Load()))
}
