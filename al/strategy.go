// Package al describes the active-learning strategy surface of the external
// training program: which queriers and stoppers it accepts and how their
// parameters are spelled. Nothing here runs active learning; the point is to
// reject a bad strategy spec before it reaches the cluster.
package al

import (
	"errors"
	"strconv"
	"strings"
)

// Querier names accepted by the trainer.
const (
	QuerierRandom      = "random"
	QuerierUncertainty = "uncertainty"
	QuerierMargin      = "margin"
	QuerierEntropy     = "entropy"
)

// Stopper names accepted by the trainer. "continuous" is an alias the
// trainer documents for "null".
const (
	StopperNull                 = "null"
	StopperContinuous           = "continuous"
	StopperStabilizing          = "stabilizing_predictions"
	StopperChangingConfidence   = "changing_confidence"
	StopperMaxConfidence        = "max_confidence"
	StopperMinError             = "min_error"
	StopperOverallUncertainty   = "overall_uncertainty"
	StopperClassificationChange = "classification_change"
)

// Defaults applied when a parameterized stopper is named without parameters.
const (
	DefaultStopperWindows   = 3
	DefaultStopperThreshold = 0.99
	DefaultStopperMode      = "D"
)

type QuerierSpec struct {
	Name string
}

func queriers() map[string]struct{} {
	return map[string]struct{}{
		QuerierRandom:      {},
		QuerierUncertainty: {},
		QuerierMargin:      {},
		QuerierEntropy:     {},
	}
}

// ParseQuerier validates a querier name.
func ParseQuerier(spec string) (QuerierSpec, error) {
	name := strings.TrimSpace(spec)
	if len(name) == 0 {
		return QuerierSpec{Name: QuerierRandom}, nil
	}
	if _, ok := queriers()[name]; !ok {
		return QuerierSpec{}, errors.New("unknown querier: " + name)
	}
	return QuerierSpec{Name: name}, nil
}

// StopperSpec is a parsed stopper specification. Parameter fields are only
// meaningful for the stoppers that take them.
type StopperSpec struct {
	Name      string
	Windows   int
	Threshold float64
	Mode      string

	hasWindows   bool
	hasThreshold bool
	hasMode      bool
}

// ParseStopper parses "name[:param[:param]]" specifications:
//
//	null | continuous
//	stabilizing_predictions[:windows[:threshold]]
//	changing_confidence[:windows[:mode]]
//	max_confidence[:threshold]
//	min_error[:threshold]
//	overall_uncertainty[:threshold]
//	classification_change[:windows]
func ParseStopper(spec string) (StopperSpec, error) {
	fields := strings.Split(strings.TrimSpace(spec), ":")
	name := fields[0]
	params := fields[1:]
	if len(name) == 0 {
		name = StopperNull
	}

	s := StopperSpec{
		Name:      name,
		Windows:   DefaultStopperWindows,
		Threshold: DefaultStopperThreshold,
		Mode:      DefaultStopperMode,
	}

	switch name {
	case StopperNull, StopperContinuous:
		s.Name = StopperNull
		if len(params) > 0 {
			return StopperSpec{}, errors.New(name + " stopper takes no parameters")
		}
	case StopperStabilizing:
		if err := s.setWindows(params, 0); err != nil {
			return StopperSpec{}, err
		}
		if err := s.setThreshold(params, 1); err != nil {
			return StopperSpec{}, err
		}
		s.hasWindows = true
		s.hasThreshold = true
	case StopperChangingConfidence:
		if err := s.setWindows(params, 0); err != nil {
			return StopperSpec{}, err
		}
		if err := s.setMode(params, 1); err != nil {
			return StopperSpec{}, err
		}
		s.hasWindows = true
		s.hasMode = true
	case StopperMaxConfidence, StopperMinError, StopperOverallUncertainty:
		if err := s.setThreshold(params, 0); err != nil {
			return StopperSpec{}, err
		}
		s.hasThreshold = true
	case StopperClassificationChange:
		if err := s.setWindows(params, 0); err != nil {
			return StopperSpec{}, err
		}
		s.hasWindows = true
	default:
		return StopperSpec{}, errors.New("unknown stopper: " + name)
	}
	return s, nil
}

func (s *StopperSpec) setWindows(params []string, i int) error {
	if len(params) <= i {
		return nil
	}
	w, err := strconv.Atoi(params[i])
	if err != nil || w < 1 {
		return errors.New(s.Name + ": windows must be a positive integer")
	}
	s.Windows = w
	return nil
}

func (s *StopperSpec) setThreshold(params []string, i int) error {
	if len(params) <= i {
		return nil
	}
	t, err := strconv.ParseFloat(params[i], 64)
	if err != nil || t <= 0 || t >= 1 {
		return errors.New(s.Name + ": threshold must be in (0, 1)")
	}
	s.Threshold = t
	return nil
}

func (s *StopperSpec) setMode(params []string, i int) error {
	if len(params) <= i {
		return nil
	}
	m := params[i]
	if m != "D" && m != "N" {
		return errors.New(s.Name + ": mode must be D or N")
	}
	s.Mode = m
	return nil
}

// Flag is the value forwarded as --stopper.
func (s StopperSpec) Flag() string {
	return s.Name
}

// ExtraArgs are the additional trainer flags carrying stopper parameters.
func (s StopperSpec) ExtraArgs() []string {
	var args []string
	if s.hasWindows {
		args = append(args, "--stopper_windows", strconv.Itoa(s.Windows))
	}
	if s.hasThreshold {
		args = append(args, "--stopper_threshold",
			strconv.FormatFloat(s.Threshold, 'g', -1, 64))
	}
	if s.hasMode {
		args = append(args, "--stopper_mode", s.Mode)
	}
	return args
}

// String renders the canonical spec form.
func (s StopperSpec) String() string {
	parts := []string{s.Name}
	if s.hasWindows {
		parts = append(parts, strconv.Itoa(s.Windows))
	}
	if s.hasThreshold {
		parts = append(parts, strconv.FormatFloat(s.Threshold, 'g', -1, 64))
	}
	if s.hasMode {
		parts = append(parts, s.Mode)
	}
	return strings.Join(parts, ":")
}

// Queriers returns the accepted querier names for help output.
func Queriers() []string {
	return []string{QuerierRandom, QuerierUncertainty, QuerierMargin, QuerierEntropy}
}

// Stoppers returns the accepted stopper names for help output.
func Stoppers() []string {
	return []string{
		StopperNull,
		StopperStabilizing,
		StopperChangingConfidence,
		StopperMaxConfidence,
		StopperMinError,
		StopperOverallUncertainty,
		StopperClassificationChange,
	}
}
