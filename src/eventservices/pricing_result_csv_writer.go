package eventservices

import (
	"context"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/gocarina/gocsv"
	log "github.com/sirupsen/logrus"

	"github.com/jiaming2012/option-pricer/src/eventmodels"
)

// PricingResultCSVWriter appends pricing results to a CSV stream from its own goroutine.
// Emit never blocks; results are dropped when the buffer is full.
type PricingResultCSVWriter struct {
	out           io.Writer
	ch            chan eventmodels.PricingResultDTO
	headerWritten bool
	dropped       atomic.Int64
}

func NewPricingResultCSVWriter(out io.Writer, bufferSize int) *PricingResultCSVWriter {
	if bufferSize <= 0 {
		bufferSize = 1024
	}

	return &PricingResultCSVWriter{
		out: out,
		ch:  make(chan eventmodels.PricingResultDTO, bufferSize),
	}
}

func (w *PricingResultCSVWriter) Emit(ctx context.Context, result eventmodels.PricingResult) error {
	select {
	case w.ch <- result.ToDTO():
		return nil
	default:
		w.dropped.Add(1)
		return fmt.Errorf("PricingResultCSVWriter: buffer full, dropped result %s", result.ID)
	}
}

func (w *PricingResultCSVWriter) Dropped() int64 {
	return w.dropped.Load()
}

// Run writes buffered results until ctx is done, then flushes whatever is still queued.
func (w *PricingResultCSVWriter) Run(ctx context.Context) error {
	for {
		select {
		case dto := <-w.ch:
			if err := w.write(dto); err != nil {
				log.Errorf("PricingResultCSVWriter: %v", err)
			}
		case <-ctx.Done():
			return w.drain()
		}
	}
}

func (w *PricingResultCSVWriter) drain() error {
	for {
		select {
		case dto := <-w.ch:
			if err := w.write(dto); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

func (w *PricingResultCSVWriter) write(dto eventmodels.PricingResultDTO) error {
	rows := []eventmodels.PricingResultDTO{dto}

	if !w.headerWritten {
		if err := gocsv.Marshal(&rows, w.out); err != nil {
			return fmt.Errorf("failed to write csv: %w", err)
		}

		w.headerWritten = true
		return nil
	}

	if err := gocsv.MarshalWithoutHeaders(&rows, w.out); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}

	return nil
}
