package config

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Value is the typed form of an option setting. It is one of Bool, Text, Number or List.
type Value interface {
	value()
}

// Scalar is a Value that can appear inside a List: Text or Number.
type Scalar interface {
	Value
	String() string
	scalar()
}

// Bool is a switch. True becomes a bare flag, false is omitted.
type Bool bool

// Text is a string option.
type Text string

// Number is a numeric option, kept in the textual form passed on the command line.
type Number struct {
	repr string
	zero bool
}

// List is a homogeneous list of Text or Number, each item becoming its own flag/value pair.
type List []Scalar

func (Bool) value()   {}
func (Text) value()   {}
func (Number) value() {}
func (List) value()   {}

func (Text) scalar()   {}
func (Number) scalar() {}

func (t Text) String() string {
	return string(t)
}

func (n Number) String() string {
	return n.repr
}

// Int creates a Number from an integer.
func Int(i int64) Number {
	return Number{repr: strconv.FormatInt(i, 10), zero: i == 0}
}

// Float creates a Number from a float, rendered the way Python renders floats e.g. 2.0 or 0.5.
func Float(f float64) Number {
	switch {
	case math.IsNaN(f):
		return Number{repr: "nan"}
	case math.IsInf(f, 1):
		return Number{repr: "inf"}
	case math.IsInf(f, -1):
		return Number{repr: "-inf"}
	}

	abs := math.Abs(f)

	var repr string
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		repr = strconv.FormatFloat(f, 'g', -1, 64)
	} else {
		repr = strconv.FormatFloat(f, 'f', -1, 64)
	}

	if !strings.ContainsAny(repr, ".eIN") {
		repr += ".0"
	}

	return Number{repr: repr, zero: f == 0}
}

// ValueOf converts decoded settings data into a Value.
// Anything other than a bool, string, number or a homogeneous list of strings or numbers is rejected.
func ValueOf(name string, raw any) (Value, error) {
	switch v := raw.(type) {
	case Value:
		return v, nil
	case bool:
		return Bool(v), nil
	case string:
		return Text(v), nil
	case []string:
		list := make(List, len(v))
		for i, s := range v {
			list[i] = Text(s)
		}

		return list, nil
	case []any:
		return listOf(name, v)
	default:
		if n, ok := numberOf(raw); ok {
			return n, nil
		}

		return nil, &ConfigurationError{Name: name, Reason: reasonValue, Err: fmt.Errorf("unsupported type %T", raw)}
	}
}

func listOf(name string, items []any) (List, error) {
	list := make(List, len(items))

	for i, item := range items {
		var scalar Scalar

		switch v := item.(type) {
		case string:
			scalar = Text(v)
		case Text:
			scalar = v
		case Number:
			scalar = v
		default:
			n, ok := numberOf(item)
			if !ok {
				return nil, &ConfigurationError{
					Name: name, Reason: reasonValue, Err: fmt.Errorf("unsupported list item type %T", item),
				}
			}

			scalar = n
		}

		if i > 0 && !sameKind(list[0], scalar) {
			return nil, &ConfigurationError{Name: name, Reason: reasonListValues}
		}

		list[i] = scalar
	}

	return list, nil
}

func sameKind(a, b Scalar) bool {
	_, aText := a.(Text)
	_, bText := b.(Text)

	return aText == bText
}

func numberOf(raw any) (Number, bool) {
	switch v := raw.(type) {
	case int:
		return Int(int64(v)), true
	case int8:
		return Int(int64(v)), true
	case int16:
		return Int(int64(v)), true
	case int32:
		return Int(int64(v)), true
	case int64:
		return Int(v), true
	case uint:
		return Number{repr: strconv.FormatUint(uint64(v), 10), zero: v == 0}, true
	case uint8:
		return Int(int64(v)), true
	case uint16:
		return Int(int64(v)), true
	case uint32:
		return Int(int64(v)), true
	case uint64:
		return Number{repr: strconv.FormatUint(v, 10), zero: v == 0}, true
	case float32:
		return Float(float64(v)), true
	case float64:
		return Float(v), true
	default:
		return Number{}, false
	}
}

// Args renders a value as command line arguments for the given long flag.
// False booleans, empty strings, zero and empty lists produce no arguments.
// Zero inside a list is still passed on.
func Args(flag string, v Value) ([]string, error) {
	switch v := v.(type) {
	case Bool:
		if v {
			return []string{flag}, nil
		}

		return nil, nil
	case Text:
		if v == "" {
			return nil, nil
		}

		return []string{flag, string(v)}, nil
	case Number:
		if v.zero {
			return nil, nil
		}

		return []string{flag, v.String()}, nil
	case List:
		args := make([]string, 0, 2*len(v))
		for _, item := range v {
			args = append(args, flag, item.String())
		}

		return args, nil
	default:
		return nil, &ConfigurationError{Reason: reasonValue, Err: fmt.Errorf("unsupported value %T", v)}
	}
}
