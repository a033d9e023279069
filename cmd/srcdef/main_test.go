package main

import (
	"testing"

	"srcdef/internal/driver"
	"srcdef/internal/source"
)

func TestParseLineCol(t *testing.T) {
	got, err := parseLineCol("12:7")
	if err != nil {
		t.Fatal(err)
	}
	if got != (source.LineCol{Line: 12, Col: 7}) {
		t.Fatalf("got %+v", got)
	}
	for _, bad := range []string{"12", "0:1", "1:0", "a:b", "1:-2"} {
		if _, err := parseLineCol(bad); err == nil {
			t.Errorf("%q accepted", bad)
		}
	}
}

func TestReadUIMode(t *testing.T) {
	cases := map[string]uiMode{"": uiModeAuto, "AUTO": uiModeAuto, " on ": uiModeOn, "off": uiModeOff}
	for in, want := range cases {
		got, err := readUIMode(in)
		if err != nil || got != want {
			t.Errorf("readUIMode(%q) = %s, %v", in, got, err)
		}
	}
	if _, err := readUIMode("sometimes"); err == nil {
		t.Error("invalid mode accepted")
	}
}

func TestProgressViewFollowsFormat(t *testing.T) {
	cases := []struct {
		mode   uiMode
		format driver.Format
		want   bool
	}{
		{uiModeOn, driver.FormatPretty, true},
		{uiModeOff, driver.FormatPretty, false},
		{uiModeOn, driver.FormatJSON, false},
		{uiModeOn, driver.FormatMsgpack, false},
		{uiModeAuto, driver.FormatJSON, false},
	}
	for _, tc := range cases {
		if got := tc.mode.progressView(tc.format, nil); got != tc.want {
			t.Errorf("%s with %v = %v, want %v", tc.mode, tc.format, got, tc.want)
		}
	}
}

func TestChildLinesSorted(t *testing.T) {
	if lines := childLines(nil); len(lines) != 0 {
		t.Fatalf("nil map produced %v", lines)
	}
}
