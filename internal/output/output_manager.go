package output

import (
	"errors"

	"github.com/tkjaer/rtlookup/internal/shared"
)

// Output interface for different output types
type Output interface {
	CompleteLookup(rec *shared.LookupRecord)
	Close() error
}

// OutputManager manages multiple outputs
type OutputManager struct {
	outputs []Output
}

func (om *OutputManager) Register(o Output) {
	om.outputs = append(om.outputs, o)
}

func (om *OutputManager) CompleteLookup(rec *shared.LookupRecord) {
	for _, o := range om.outputs {
		o.CompleteLookup(rec)
	}
}

// Close closes every output and returns their errors joined
func (om *OutputManager) Close() error {
	var errs []error
	for _, o := range om.outputs {
		if err := o.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
