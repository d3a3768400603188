// Package pairwise cross-validates two redundant particulate sensors
// measuring the same PM2.5 concentration. It maintains a rolling
// baseline per sensor and, when the pair disagrees, attributes the
// mismatch to whichever sensor has strayed further from its own
// recent history.
package pairwise

import (
	"math"
	"sort"

	"go.uber.org/zap"
)

const (
	// BaselineSamples is the rolling baseline length per sensor
	BaselineSamples = 30

	// MinPM is the concentration floor (µg/m³) below which the pair is
	// not judged; trace-level readings are too noisy for a meaningful
	// relative comparison.
	MinPM = 1.0

	// RPDOk is the maximum relative percent difference considered
	// agreement.
	RPDOk = 0.25

	// attributionMargin is the hysteresis factor for fault attribution:
	// a sensor is only singled out when its baseline deviation exceeds
	// the other's by this factor, so attribution does not flip-flop on
	// noise.
	attributionMargin = 1.5
)

// PairFlag is the categorical outcome of comparing the pair for one tick
type PairFlag string

const (
	FlagBothBad    PairFlag = "BOTH_BAD"
	FlagPMS1Bad    PairFlag = "PMS1_BAD"
	FlagPMS2Bad    PairFlag = "PMS2_BAD"
	FlagOK         PairFlag = "OK"
	FlagLowPMOK    PairFlag = "LOW_PM_OK"
	FlagMismatch   PairFlag = "MISMATCH"
	FlagIncomplete PairFlag = "INCOMPLETE"
	FlagError      PairFlag = "ERROR"
)

// Suspect identifies the sensor judged more likely at fault. The zero
// value means no judgment was made; SuspectOK is an explicit "nothing
// suspect" so agreement is recorded rather than left blank.
type Suspect string

const (
	SuspectNone    Suspect = ""
	SuspectPMS1    Suspect = "PMS1"
	SuspectPMS2    Suspect = "PMS2"
	SuspectBoth    Suspect = "BOTH"
	SuspectUnknown Suspect = "UNKNOWN"
	SuspectOK      Suspect = "OK"
)

// Result is the outcome of one tick's pair evaluation. Mean and RPD are
// nil whenever they were not computable.
type Result struct {
	Mean    *float64
	RPD     *float64
	Flag    PairFlag
	Suspect Suspect
}

// Engine holds the process-lifetime baselines for the sensor pair
type Engine struct {
	baseline1 *Baseline
	baseline2 *Baseline
	logger    *zap.SugaredLogger
}

// NewEngine creates an agreement engine with empty baselines
func NewEngine(logger *zap.SugaredLogger) *Engine {
	return &Engine{
		baseline1: NewBaseline(BaselineSamples),
		baseline2: NewBaseline(BaselineSamples),
		logger:    logger.Named("pairwise"),
	}
}

// Evaluate classifies one tick. v1/v2 are the PM2.5 values (nil when
// the sensor produced none) and ok1/ok2 the per-sensor decode outcome.
// Baselines are updated first, from ok readings only, so a mismatch
// tick's own values participate in the medians used to attribute it.
// Evaluate never fails; unexpected inputs downgrade to FlagError.
func (e *Engine) Evaluate(v1 *float64, ok1 bool, v2 *float64, ok2 bool) Result {
	if ok1 && v1 != nil && isFinite(*v1) {
		e.baseline1.Append(*v1)
	}
	if ok2 && v2 != nil && isFinite(*v2) {
		e.baseline2.Append(*v2)
	}

	r := e.classify(v1, ok1, v2, ok2)

	// Agreement is recorded explicitly, never left blank
	if r.Suspect == SuspectNone && (r.Flag == FlagOK || r.Flag == FlagLowPMOK) {
		r.Suspect = SuspectOK
	}
	return r
}

func (e *Engine) classify(v1 *float64, ok1 bool, v2 *float64, ok2 bool) Result {
	// Status-first: a sensor that failed to decode is suspect before
	// any value comparison.
	switch {
	case !ok1 && !ok2:
		return Result{Flag: FlagBothBad, Suspect: SuspectBoth}
	case !ok1:
		return Result{Flag: FlagPMS1Bad, Suspect: SuspectPMS1}
	case !ok2:
		return Result{Flag: FlagPMS2Bad, Suspect: SuspectPMS2}
	}

	if v1 == nil || v2 == nil {
		// Decode said ok but a value is missing; nothing to compare
		return Result{Flag: FlagIncomplete, Suspect: SuspectUnknown}
	}
	if !isFinite(*v1) || !isFinite(*v2) {
		return Result{Flag: FlagError, Suspect: SuspectUnknown}
	}

	mean := 0.5 * (*v1 + *v2)
	r := Result{Mean: &mean}

	if mean < MinPM {
		r.Flag = FlagLowPMOK
		return r
	}

	rpd, defined := RPD(*v1, *v2)
	if defined {
		r.RPD = &rpd
	}
	if defined && rpd <= RPDOk {
		r.Flag = FlagOK
		return r
	}

	r.Flag = FlagMismatch
	r.Suspect = e.attribute(*v1, *v2)
	e.logger.Debugw("pair mismatch",
		"pm25_1", *v1, "pm25_2", *v2, "rpd", rpd, "suspect", r.Suspect)
	return r
}

// attribute compares each sensor's deviation from its own rolling
// median. A sensor with no baseline yet contributes deviation 0, so
// early-run mismatches tend toward SuspectBoth.
func (e *Engine) attribute(v1, v2 float64) Suspect {
	dev1 := 0.0
	if m1, ok := e.baseline1.Median(); ok {
		dev1 = math.Abs(v1-m1) / math.Max(m1, MinPM)
	}
	dev2 := 0.0
	if m2, ok := e.baseline2.Median(); ok {
		dev2 = math.Abs(v2-m2) / math.Max(m2, MinPM)
	}

	switch {
	case dev1 > attributionMargin*dev2:
		return SuspectPMS1
	case dev2 > attributionMargin*dev1:
		return SuspectPMS2
	default:
		// Neither sensor is clearly more anomalous than the other
		return SuspectBoth
	}
}

// RPD returns the relative percent difference |a-b|/mean(a,b). It is
// undefined (ok=false) when the mean is not positive.
func RPD(a, b float64) (float64, bool) {
	m := 0.5 * (a + b)
	if m <= 0 {
		return 0, false
	}
	return math.Abs(a-b) / m, true
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Baseline is a bounded FIFO of recent values. The median is always
// recomputed from the current contents, never cached.
type Baseline struct {
	values []float64
	max    int
}

// NewBaseline creates a baseline holding at most max values
func NewBaseline(max int) *Baseline {
	return &Baseline{max: max}
}

// Append adds a value, evicting the oldest once the bound is reached
func (b *Baseline) Append(v float64) {
	b.values = append(b.values, v)
	if len(b.values) > b.max {
		b.values = b.values[1:]
	}
}

// Len returns the number of values currently held
func (b *Baseline) Len() int {
	return len(b.values)
}

// Median returns the median of the current contents; ok is false for an
// empty baseline. Even-length baselines average the two middle values.
func (b *Baseline) Median() (float64, bool) {
	n := len(b.values)
	if n == 0 {
		return 0, false
	}
	sorted := append([]float64(nil), b.values...)
	sort.Float64s(sorted)
	if n%2 == 1 {
		return sorted[n/2], true
	}
	return 0.5 * (sorted[n/2-1] + sorted[n/2]), true
}
