package al

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strconv"
)

// ProportionOrInteger is a sizing value the trainer accepts in two forms:
// an integral value >= 1 is an absolute count, a value in [0, 1] is a
// proportion of some total.
type ProportionOrInteger float64

// Resolve converts to an absolute count against total.
func (p ProportionOrInteger) Resolve(total int) (int, error) {
	v := float64(p)
	if v >= 1.0 && v == math.Trunc(v) {
		return int(v), nil
	}
	if v >= 0 && v <= 1.0 && total > 0 {
		return int(v * float64(total)), nil
	}
	return 0, fmt.Errorf("cannot resolve %v against total %d", v, total)
}

// String renders counts without a decimal point and proportions as given.
func (p ProportionOrInteger) String() string {
	v := float64(p)
	if v >= 1.0 && v == math.Trunc(v) {
		return strconv.Itoa(int(v))
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// TotalIterations is the number of query rounds needed to label every row:
// ceil((nRows - nStart) / nQuery).
func TotalIterations(nRows, nStart, nQuery int) int {
	q := (nRows - nStart) / nQuery
	r := (nRows - nStart) % nQuery
	if r == 0 {
		return q
	}
	return q + 1
}

// Plan is a resolved active-learning iteration schedule.
type Plan struct {
	NRows       int
	NStart      int
	NQuery      int
	NIterations int
	Total       int
	// Clamped reports that the requested iteration count exceeded the
	// possible total and was reduced.
	Clamped bool

	valSetSize ProportionOrInteger
}

// NewPlan resolves the schedule for a dataset of nRows rows. nIterations may
// itself be a proportion of the possible total.
func NewPlan(nRows int, nStart, nQuery, valSetSize, nIterations ProportionOrInteger) (Plan, error) {
	if nRows <= 0 {
		return Plan{}, errors.New("plan needs a positive row count")
	}
	start, err := nStart.Resolve(nRows)
	if err != nil {
		return Plan{}, fmt.Errorf("n_start: %w", err)
	}
	query, err := nQuery.Resolve(nRows)
	if err != nil {
		return Plan{}, fmt.Errorf("n_query: %w", err)
	}
	if start <= 0 || start > nRows {
		return Plan{}, errors.New("n_start must be in (0, n_rows]")
	}
	if query <= 0 {
		return Plan{}, errors.New("n_query must be positive")
	}
	total := TotalIterations(nRows, start, query)
	iters, err := nIterations.Resolve(total)
	if err != nil {
		return Plan{}, fmt.Errorf("n_iterations: %w", err)
	}
	p := Plan{
		NRows:       nRows,
		NStart:      start,
		NQuery:      query,
		NIterations: iters,
		Total:       total,
		valSetSize:  valSetSize,
	}
	if p.NIterations > total {
		p.NIterations = total
		p.Clamped = true
	}
	return p, nil
}

// LabeledAt is the cumulative labeled count after iteration i, where
// iteration 0 is the initial random batch.
func (p Plan) LabeledAt(i int) int {
	n := p.NStart + i*p.NQuery
	if n > p.NRows {
		return p.NRows
	}
	return n
}

// OutputRoot is the default output directory the trainer derives from its
// sizing configuration: <n_start>/<n_query>/<val_set_size>.
func (p Plan) OutputRoot() string {
	return filepath.Join(
		strconv.Itoa(p.NStart),
		strconv.Itoa(p.NQuery),
		p.valSetSize.String(),
	)
}
