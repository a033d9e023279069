package cfg

import (
	"errors"
	"slices"
	"testing"
)

func TestEval(t *testing.T) {
	opts := NewOptions("test", `feature="serde"`, "unix")

	cases := []struct {
		pred string
		want bool
	}{
		{"test", true},
		{"windows", false},
		{`feature = "serde"`, true},
		{`feature = "json"`, false},
		{"not(test)", false},
		{"all(unix, test)", true},
		{"all(unix, windows)", false},
		{`any(windows, feature = "serde")`, true},
		{"any()", false},
		{"all()", true},
	}
	for _, c := range cases {
		if got := opts.Enabled(c.pred); got != c.want {
			t.Errorf("Enabled(%q) = %v, want %v", c.pred, got, c.want)
		}
	}
}

func TestMalformedPredicateIsEnabled(t *testing.T) {
	opts := NewOptions()
	for _, pred := range []string{"all(unix", `feature = `, "not(a, b)"} {
		if !opts.Enabled(pred) {
			t.Errorf("malformed %q disabled the item", pred)
		}
	}
}

func TestParseString(t *testing.T) {
	e, err := Parse(`all(unix,not(feature="x"))`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := e.String(); got != `all(unix, not(feature = "x"))` {
		t.Fatalf("String() = %s", got)
	}

	if _, err := Parse("unix extra"); !errors.Is(err, ErrSyntax) {
		t.Fatalf("expected ErrSyntax, got %v", err)
	}
}

func TestOptionsEntries(t *testing.T) {
	opts := NewOptions("b", `feature = "x"`, "a")
	want := []string{"a", "b", "feature=x"}
	if got := opts.Entries(); !slices.Equal(got, want) {
		t.Fatalf("entries = %v, want %v", got, want)
	}
}
