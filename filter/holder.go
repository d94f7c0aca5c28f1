package filter

import (
	"context"
	"sync/atomic"

	"github.com/effective-security/jwtfilter/record"
)

// Holder keeps the current Filter snapshot.
// A new configuration is installed with Swap; records already being
// processed complete with the snapshot they started with.
type Holder struct {
	current atomic.Pointer[Filter]
}

// NewHolder returns Holder with the initial filter
func NewHolder(f *Filter) *Holder {
	h := new(Holder)
	h.current.Store(f)
	return h
}

// Load returns the current filter
func (h *Holder) Load() *Filter {
	return h.current.Load()
}

// Swap installs the filter and returns the previous one
func (h *Holder) Swap(f *Filter) *Filter {
	return h.current.Swap(f)
}

// Process processes the record with the current filter
func (h *Holder) Process(ctx context.Context, rec *record.Record) *Result {
	return h.Load().Process(ctx, rec)
}
