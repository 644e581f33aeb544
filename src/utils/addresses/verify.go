package addresses

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gammazero/workerpool"
	"go.uber.org/atomic"
)

type CodeReader interface {
	CodeAt(ctx context.Context, contract common.Address, blockNumber *big.Int) ([]byte, error)
}

// Verify checks every saved address has code on chain. Returns sorted names of entries without code.
func (self *Store) Verify(ctx context.Context, reader CodeReader, numWorkers int) (missing []string, err error) {
	all, err := self.Read()
	if err != nil {
		return
	}

	if numWorkers < 1 {
		numWorkers = 1
	}

	var (
		mtx      sync.Mutex
		firstErr error
		empty    = make(map[string]string)
		checked  = atomic.NewInt64(0)
	)

	workers := workerpool.New(numWorkers)
	for _, name := range SortedKeys(all) {
		name := name
		value := all[name]
		workers.Submit(func() {
			if ctx.Err() != nil {
				return
			}

			if !common.IsHexAddress(value) {
				mtx.Lock()
				defer mtx.Unlock()
				if firstErr == nil {
					firstErr = fmt.Errorf("%s has invalid address %q", name, value)
				}
				return
			}

			code, err := reader.CodeAt(ctx, common.HexToAddress(value), nil)
			checked.Inc()

			mtx.Lock()
			defer mtx.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = fmt.Errorf("failed to get code of %s: %w", name, err)
				}
				return
			}
			if len(code) == 0 {
				empty[name] = value
			}
		})
	}
	workers.StopWait()

	if firstErr != nil {
		return nil, firstErr
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	missing = SortedKeys(empty)
	self.log.WithField("checked", checked.Load()).
		WithField("missing", len(missing)).
		Debug("Verified addresses")
	return
}
