package models

import (
	"encoding/json"
	"sort"
)

// Series is a constant-or-per-year input. Tax rates, cost of debt, NWC ratios
// and similar drivers may be given either as a single value broadcast to every
// required year or as an explicit year mapping that must cover the required
// years exactly. Resolving once up front keeps type branching out of the
// calculation stages.
type Series struct {
	Constant *float64        `json:"constant,omitempty" yaml:"constant,omitempty"`
	PerYear  map[int]float64 `json:"per_year,omitempty" yaml:"per_year,omitempty"`
}

// Const builds a constant series.
func Const(v float64) Series {
	return Series{Constant: &v}
}

// PerYear builds an explicit year-mapped series.
func PerYear(values map[int]float64) Series {
	return Series{PerYear: values}
}

// IsZero reports whether neither form was provided.
func (s Series) IsZero() bool {
	return s.Constant == nil && s.PerYear == nil
}

// UnmarshalJSON accepts three document forms: a bare number (constant), a
// year-keyed object, or the explicit {constant, per_year} struct.
func (s *Series) UnmarshalJSON(data []byte) error {
	var scalar float64
	if err := json.Unmarshal(data, &scalar); err == nil {
		s.Constant = &scalar
		s.PerYear = nil
		return nil
	}
	var perYear map[int]float64
	if err := json.Unmarshal(data, &perYear); err == nil {
		s.Constant = nil
		s.PerYear = perYear
		return nil
	}
	type plain Series
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*s = Series(p)
	return nil
}

// UnmarshalYAML mirrors UnmarshalJSON for YAML documents.
func (s *Series) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var scalar float64
	if err := unmarshal(&scalar); err == nil {
		s.Constant = &scalar
		s.PerYear = nil
		return nil
	}
	var perYear map[int]float64
	if err := unmarshal(&perYear); err == nil {
		s.Constant = nil
		s.PerYear = perYear
		return nil
	}
	type plain Series
	var p plain
	if err := unmarshal(&p); err != nil {
		return err
	}
	*s = Series(p)
	return nil
}

// Resolve returns a year->value map covering exactly the required years.
// A constant always succeeds by broadcast. A per-year mapping must contain
// every required year; years outside required or optional are rejected. The
// field name is carried into the ValidationError.
func (s Series) Resolve(field string, required, optional []int) (map[int]float64, error) {
	out := make(map[int]float64, len(required))

	if s.Constant != nil {
		for _, y := range required {
			out[y] = *s.Constant
		}
		return out, nil
	}

	if s.PerYear == nil {
		return nil, &ValidationError{Field: field, Reason: "no constant or per-year values provided"}
	}

	var missing []int
	for _, y := range required {
		v, ok := s.PerYear[y]
		if !ok {
			missing = append(missing, y)
			continue
		}
		out[y] = v
	}
	if len(missing) > 0 {
		return nil, &ValidationError{Field: field, Reason: "missing required years", MissingYears: missing}
	}

	allowed := make(map[int]bool, len(required)+len(optional))
	for _, y := range required {
		allowed[y] = true
	}
	for _, y := range optional {
		allowed[y] = true
	}
	var extra []int
	for y := range s.PerYear {
		if !allowed[y] {
			extra = append(extra, y)
		}
	}
	if len(extra) > 0 {
		sort.Ints(extra)
		return nil, &ValidationError{Field: field, Reason: "unexpected years outside the timeline", MissingYears: extra}
	}

	return out, nil
}

// ResolveMap checks exact coverage of a plain year mapping (inputs that are
// never constants, e.g. explicit revenue or debt balances).
func ResolveMap(field string, values map[int]float64, required, optional []int) (map[int]float64, error) {
	s := Series{PerYear: values}
	return s.Resolve(field, required, optional)
}
