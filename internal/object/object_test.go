package object

import (
	"math"
	"testing"
)

func TestFormatNumberDropsTrailingZero(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{10, "10"},
		{10.4, "10.4"},
		{0, "0"},
		{math.Copysign(0, -1), "-0"},
	}
	for _, c := range cases {
		if got := FormatNumber(c.in); got != c.want {
			t.Errorf("FormatNumber(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestClassFindMethodWalksSuperclass(t *testing.T) {
	base := &Class{Name: "Base", Methods: map[string]*Function{
		"greet": {Declaration: nil},
	}}
	derived := &Class{Name: "Derived", Superclass: base, Methods: map[string]*Function{}}

	if _, ok := derived.FindMethod("greet"); !ok {
		t.Fatalf("expected Derived to inherit 'greet' from Base")
	}
	if _, ok := derived.FindMethod("missing"); ok {
		t.Fatalf("did not expect to find 'missing'")
	}
}

func TestInstanceGetFallsBackToBoundMethod(t *testing.T) {
	class := &Class{Name: "Counter", Methods: map[string]*Function{
		"inc": {Declaration: nil, Closure: NewEnvironment()},
	}}
	instance := NewInstance(class)
	instance.Set("count", &Number{Value: 1})

	v, ok := instance.Get("count")
	if !ok || v.(*Number).Value != 1 {
		t.Fatalf("expected field lookup to succeed, got %v, %v", v, ok)
	}
	m, ok := instance.Get("inc")
	fn, isFn := m.(*Function)
	if !ok || !isFn {
		t.Fatalf("expected 'inc' to fall back to a method, got %v, %v", m, ok)
	}
	if this, _ := fn.Closure.Get("this"); this != instance {
		t.Fatalf("expected the method to be bound to the instance, got %v", this)
	}
	if _, ok := instance.Get("missing"); ok {
		t.Fatalf("did not expect to find 'missing'")
	}
}
