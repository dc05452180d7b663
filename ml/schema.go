package ml

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
)

// Field identifiers, in the column order the classifier was trained on.
const (
	FieldPregnancies              = "Pregnancies"
	FieldGlucose                  = "Glucose"
	FieldBloodPressure            = "BloodPressure"
	FieldSkinThickness            = "SkinThickness"
	FieldInsulin                  = "Insulin"
	FieldBMI                      = "BMI"
	FieldDiabetesPedigreeFunction = "DiabetesPedigreeFunction"
	FieldAge                      = "Age"
)

type Kind int

const (
	Integer Kind = iota
	Float
)

func (k Kind) String() string {
	if k == Float {
		return "float"
	}
	return "integer"
}

func (k Kind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

type Field struct {
	Name    string  `json:"name"`
	Kind    Kind    `json:"kind"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Default float64 `json:"default"`
}

// Step is the input granularity of the field. Float fields report 0: any
// value inside the range is accepted.
func (f Field) Step() float64 {
	if f.Kind == Float {
		return 0
	}
	return 1
}

func (f Field) InRange(v float64) bool {
	return v >= f.Min && v <= f.Max
}

// Clamp bounds v to [Min, Max] and rounds integer fields.
func (f Field) Clamp(v float64) float64 {
	if math.IsNaN(v) {
		return f.Default
	}
	if f.Kind == Integer {
		v = math.Round(v)
	}
	return math.Min(math.Max(v, f.Min), f.Max)
}

// Inputs holds captured values keyed by field identifier.
type Inputs map[string]float64

type FeatureSchema struct {
	fields []Field
	index  map[string]int
}

func NewSchema(fields ...Field) (*FeatureSchema, error) {
	if len(fields) == 0 {
		return nil, errors.New("schema has no fields")
	}
	s := &FeatureSchema{
		fields: make([]Field, len(fields)),
		index:  make(map[string]int, len(fields)),
	}
	for i, f := range fields {
		if f.Name == "" {
			return nil, fmt.Errorf("field %d has no name", i)
		}
		if _, dup := s.index[f.Name]; dup {
			return nil, fmt.Errorf("duplicate field %s", f.Name)
		}
		if f.Min > f.Max {
			return nil, fmt.Errorf("field %s: min %g greater than max %g", f.Name, f.Min, f.Max)
		}
		if !f.InRange(f.Default) {
			return nil, fmt.Errorf("field %s: default %g outside [%g, %g]", f.Name, f.Default, f.Min, f.Max)
		}
		s.fields[i] = f
		s.index[f.Name] = i
	}
	return s, nil
}

var defaultSchema = mustSchema(
	Field{Name: FieldPregnancies, Kind: Integer, Min: 0, Max: 17, Default: 0},
	Field{Name: FieldGlucose, Kind: Integer, Min: 44, Max: 199, Default: 44},
	Field{Name: FieldBloodPressure, Kind: Integer, Min: 20, Max: 122, Default: 24},
	Field{Name: FieldSkinThickness, Kind: Integer, Min: 7, Max: 99, Default: 7},
	Field{Name: FieldInsulin, Kind: Integer, Min: 14, Max: 846, Default: 14},
	Field{Name: FieldBMI, Kind: Integer, Min: 18, Max: 67, Default: 18},
	Field{Name: FieldDiabetesPedigreeFunction, Kind: Float, Min: 0.05, Max: 2.5, Default: 0.05},
	Field{Name: FieldAge, Kind: Integer, Min: 21, Max: 85, Default: 21},
)

// DefaultSchema returns the eight-field diabetes schema. It is the only
// place field identifiers, bounds and defaults are declared.
func DefaultSchema() *FeatureSchema {
	return defaultSchema
}

func mustSchema(fields ...Field) *FeatureSchema {
	s, err := NewSchema(fields...)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *FeatureSchema) Len() int {
	return len(s.fields)
}

func (s *FeatureSchema) Fields() []Field {
	return append([]Field(nil), s.fields...)
}

func (s *FeatureSchema) Names() []string {
	names := make([]string, len(s.fields))
	for i, f := range s.fields {
		names[i] = f.Name
	}
	return names
}

func (s *FeatureSchema) Field(name string) (Field, bool) {
	i, ok := s.index[name]
	if !ok {
		return Field{}, false
	}
	return s.fields[i], true
}

func (s *FeatureSchema) Defaults() Inputs {
	in := make(Inputs, len(s.fields))
	for _, f := range s.fields {
		in[f.Name] = f.Default
	}
	return in
}

// Clamp returns a copy of in with every schema field bounded to its range.
// Fields without a value take their default; unknown identifiers are dropped.
func (s *FeatureSchema) Clamp(in Inputs) Inputs {
	out := make(Inputs, len(s.fields))
	for _, f := range s.fields {
		v, ok := in[f.Name]
		if !ok {
			v = f.Default
		}
		out[f.Name] = f.Clamp(v)
	}
	return out
}

// Assemble builds the single feature row handed to the classifier. Values
// are taken as captured; range checks belong to Validate.
func (s *FeatureSchema) Assemble(in Inputs) (FeatureRow, error) {
	var missing, unknown []string
	values := make([]float64, len(s.fields))
	for i, f := range s.fields {
		v, ok := in[f.Name]
		if !ok {
			missing = append(missing, f.Name)
			continue
		}
		values[i] = v
	}
	for name := range in {
		if _, ok := s.index[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	if len(missing) > 0 || len(unknown) > 0 {
		sort.Strings(unknown)
		return FeatureRow{}, &NameResolutionError{Missing: missing, Unknown: unknown}
	}
	return FeatureRow{names: s.Names(), values: values}, nil
}

// Validate reports every value of row outside its field's range.
func (s *FeatureSchema) Validate(row FeatureRow) error {
	var errs []error
	for i, name := range row.names {
		f, ok := s.Field(name)
		if !ok {
			errs = append(errs, &NameResolutionError{Unknown: []string{name}})
			continue
		}
		if v := row.values[i]; !f.InRange(v) {
			errs = append(errs, &RangeViolationError{Field: f.Name, Value: v, Min: f.Min, Max: f.Max})
		}
	}
	return errors.Join(errs...)
}

func (s *FeatureSchema) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.fields)
}

// FeatureRow is one instantiation of a schema, columns in schema order.
type FeatureRow struct {
	names  []string
	values []float64
}

func (r FeatureRow) Len() int {
	return len(r.values)
}

func (r FeatureRow) Names() []string {
	return append([]string(nil), r.names...)
}

func (r FeatureRow) Values() []float64 {
	return append([]float64(nil), r.values...)
}

func (r FeatureRow) Get(name string) (float64, bool) {
	for i, n := range r.names {
		if n == name {
			return r.values[i], true
		}
	}
	return 0, false
}

// MarshalJSON keeps column order, which a map would lose.
func (r FeatureRow) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range r.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(r.values[i])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
