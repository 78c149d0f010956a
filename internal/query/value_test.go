package query

import (
	"encoding/json"
	"math"
	"testing"
)

func TestOfPicksBinding(t *testing.T) {
	cases := []struct {
		in   any
		want ValueKind
	}{
		{42, KindInt},
		{int64(-1), KindInt},
		{uint8(3), KindInt},
		{1.5, KindFloat},
		{float32(2), KindFloat},
		{nil, KindNull},
		{"1", KindText},
		{true, KindText},
		{json.Number("12"), KindInt},
		{json.Number("1.25"), KindFloat},
		{uint64(math.MaxInt64), KindInt},
		{uint64(math.MaxUint64), KindText},
	}
	for _, c := range cases {
		if got := Of(c.in).Kind(); got != c.want {
			t.Errorf("Of(%#v) kind = %s, want %s", c.in, got, c.want)
		}
	}
}

func TestDriverValues(t *testing.T) {
	if v, _ := Int(7).Value(); v != int64(7) {
		t.Errorf("Int driver value = %#v", v)
	}
	if v, _ := Float(0.5).Value(); v != 0.5 {
		t.Errorf("Float driver value = %#v", v)
	}
	if v, _ := Text("7").Value(); v != "7" {
		t.Errorf("Text driver value = %#v", v)
	}
	if v, _ := Null().Value(); v != nil {
		t.Errorf("Null driver value = %#v", v)
	}
}

func TestIdent(t *testing.T) {
	if got := Ident(`a"b`); got != `"a""b"` {
		t.Errorf("Ident = %s", got)
	}
}

func TestOfLargeUnsignedKeepsDigits(t *testing.T) {
	v, _ := Of(uint64(math.MaxUint64)).Value()
	if v != "18446744073709551615" {
		t.Errorf("driver value = %#v", v)
	}
}
