package monitoring

import (
	"go.uber.org/atomic"
)

type RunState struct {
	StartTimestamp atomic.Int64 `json:"start_timestamp"`
}

type DeployerState struct {
	// Transactions that got a hash
	TransactionsSubmitted atomic.Uint64 `json:"transactions_submitted"`

	// Transactions that reached the confirmation depth
	TransactionsConfirmed atomic.Uint64 `json:"transactions_confirmed"`

	ContractsDeployed atomic.Uint64 `json:"contracts_deployed"`
	ContractsAttached atomic.Uint64 `json:"contracts_attached"`

	BatchesHandled atomic.Uint64 `json:"batches_handled"`
	CallsRetried   atomic.Uint64 `json:"calls_retried"`
}

type DeployerErrors struct {
	SubmitFailed       atomic.Uint64 `json:"submit_failed"`
	ConfirmationFailed atomic.Uint64 `json:"confirmation_failed"`
	DeploymentFailed   atomic.Uint64 `json:"deployment_failed"`
}

type Report struct {
	Run struct {
		State RunState `json:"state"`
	} `json:"run"`

	Deployer struct {
		State  DeployerState  `json:"state"`
		Errors DeployerErrors `json:"errors"`
	} `json:"deployer"`
}
