package lasagna

import (
	"fmt"
	"math"

	"github.com/gcomneno/lasagna-v2/errs"
)

// TimeSeries is the input to Encode and the output of Decode: a sequence of samples
// taken at a fixed interval Dt, starting at an opaque T0, carrying an opaque Unit.
//
// Dt, T0, and Unit round-trip through the container verbatim; the codec never
// interprets them beyond validating that Dt is finite and positive.
type TimeSeries struct {
	Values []float64
	Dt     float64
	T0     any
	Unit   string
}

// Validate checks the invariants Encode requires: Values must be non-empty, Dt must be
// finite and positive, and every sample must be finite.
func (ts TimeSeries) Validate() error {
	if len(ts.Values) == 0 {
		return fmt.Errorf("lasagna: %w: values must not be empty", errs.ErrInvalidInput)
	}

	if math.IsNaN(ts.Dt) || math.IsInf(ts.Dt, 0) || ts.Dt <= 0 {
		return fmt.Errorf("lasagna: %w: dt must be finite and positive, got %v", errs.ErrInvalidInput, ts.Dt)
	}

	for i, v := range ts.Values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("lasagna: %w: sample %d is not finite: %v", errs.ErrInvalidInput, i, v)
		}
	}

	return nil
}
