package task

import (
	"context"
	"errors"
	"fmt"

	"github.com/gammazero/deque"
	"github.com/sirupsen/logrus"
	"github.com/warp-contracts/launchpad/src/utils/logger"
)

var (
	ErrNoColumns        = errors.New("no columns to batch")
	ErrColumnLength     = errors.New("columns differ in length")
	ErrInvalidBatchSize = errors.New("batch size must be positive")
)

// Splits parallel columns into rows and hands them over in fixed size batches.
// Row i holds the i-th element of every column, in column order.
// Batches are handled one after another, never concurrently.
type BatchProcessor[T any] struct {
	log       *logrus.Entry
	batchSize int
	onBatch   func(ctx context.Context, batch [][]T) error

	// Rows waiting for the next onBatch call
	queue deque.Deque[[]T]
}

func NewBatchProcessor[T any](batchSize int) (self *BatchProcessor[T]) {
	self = new(BatchProcessor[T])
	self.log = logger.NewSublogger("batch")
	self.batchSize = batchSize
	return
}

func (self *BatchProcessor[T]) WithLog(log *logrus.Entry) *BatchProcessor[T] {
	self.log = log
	return self
}

func (self *BatchProcessor[T]) WithOnBatch(f func(ctx context.Context, batch [][]T) error) *BatchProcessor[T] {
	self.onBatch = f
	return self
}

func (self *BatchProcessor[T]) validate(columns [][]T) error {
	if self.batchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if len(columns) == 0 {
		return ErrNoColumns
	}
	for i, column := range columns[1:] {
		if len(column) != len(columns[0]) {
			return fmt.Errorf("%w: column %d has %d elements, expected %d", ErrColumnLength, i+1, len(column), len(columns[0]))
		}
	}
	return nil
}

func (self *BatchProcessor[T]) flush(ctx context.Context) error {
	batch := make([][]T, 0, self.queue.Len())
	for self.queue.Len() > 0 {
		batch = append(batch, self.queue.PopFront())
	}
	return self.onBatch(ctx, batch)
}

// Process is not safe for concurrent use
func (self *BatchProcessor[T]) Process(ctx context.Context, columns ...[]T) (err error) {
	err = self.validate(columns)
	if err != nil {
		return
	}
	self.queue.Clear()

	total := len(columns[0])
	for i := 0; i < total; i++ {
		row := make([]T, len(columns))
		for j, column := range columns {
			row[j] = column[i]
		}
		self.queue.PushBack(row)

		if self.queue.Len() == self.batchSize {
			self.log.WithField("index", i).
				WithField("size", self.queue.Len()).
				WithField("total", total).
				Info("Handling current batch")
			err = self.flush(ctx)
			if err != nil {
				return
			}
		}
	}

	if self.queue.Len() > 0 {
		self.log.WithField("size", self.queue.Len()).
			WithField("total", total).
			Info("Handling final batch")
		err = self.flush(ctx)
	}

	return
}
