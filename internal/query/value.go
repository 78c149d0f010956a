package query

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// ValueKind is the binding type of a Value.
type ValueKind int

const (
	KindNull ValueKind = iota
	KindInt
	KindFloat
	KindText
)

func (k ValueKind) String() string {
	switch k {
	case KindInt:
		return "integer"
	case KindFloat:
		return "float"
	case KindText:
		return "text"
	}
	return "null"
}

// Value is a bound statement parameter. The kind is fixed when the value is
// constructed and decides how the engine compares it: Int(1) and Text("1")
// are different parameters.
type Value struct {
	kind ValueKind
	i    int64
	f    float64
	s    string
}

func Int(v int64) Value     { return Value{kind: KindInt, i: v} }
func Float(v float64) Value { return Value{kind: KindFloat, f: v} }
func Text(v string) Value   { return Value{kind: KindText, s: v} }
func Null() Value           { return Value{} }

// Of picks the binding for a dynamically typed value: integers bind as
// integer, floats as float, nil as null and everything else as text.
func Of(v any) Value {
	switch t := v.(type) {
	case nil:
		return Null()
	case Value:
		return t
	case int:
		return Int(int64(t))
	case int8:
		return Int(int64(t))
	case int16:
		return Int(int64(t))
	case int32:
		return Int(int64(t))
	case int64:
		return Int(t)
	case uint:
		return unsigned(uint64(t))
	case uint8:
		return Int(int64(t))
	case uint16:
		return Int(int64(t))
	case uint32:
		return Int(int64(t))
	case uint64:
		return unsigned(t)
	case float32:
		return Float(float64(t))
	case float64:
		return Float(t)
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return Int(n)
		}
		if f, err := t.Float64(); err == nil {
			return Float(f)
		}
		return Text(t.String())
	case string:
		return Text(t)
	case []byte:
		return Text(string(t))
	}
	return Text(fmt.Sprint(v))
}

// unsigned binds values past math.MaxInt64 as text rather than wrapping.
func unsigned(v uint64) Value {
	if v > math.MaxInt64 {
		return Text(strconv.FormatUint(v, 10))
	}
	return Int(int64(v))
}

// Kind returns the binding type.
func (v Value) Kind() ValueKind { return v.kind }

// Value implements driver.Valuer so a Value can be handed to database/sql
// as is.
func (v Value) Value() (driver.Value, error) {
	switch v.kind {
	case KindInt:
		return v.i, nil
	case KindFloat:
		return v.f, nil
	case KindText:
		return v.s, nil
	}
	return nil, nil
}

func (v Value) String() string {
	switch v.kind {
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindText:
		return strconv.Quote(v.s)
	}
	return "NULL"
}
