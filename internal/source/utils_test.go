package source

import "testing"

func TestNormalizeCRLFKeepsLoneCR(t *testing.T) {
	out, changed := normalizeCRLF([]byte("a\r\nb\rc"))
	if !changed || string(out) != "a\nb\rc" {
		t.Fatalf("got %q changed=%v", out, changed)
	}
	if _, changed := normalizeCRLF([]byte("plain")); changed {
		t.Fatalf("no CR means unchanged")
	}
}

func TestToLineColBoundaries(t *testing.T) {
	idx := buildLineIndex([]byte("ab\ncd\n"))
	cases := []struct {
		off  uint32
		want LineCol
	}{
		{0, LineCol{1, 1}},
		{2, LineCol{1, 3}}, // сам перевод строки
		{3, LineCol{2, 1}},
		{6, LineCol{3, 1}},
	}
	for _, c := range cases {
		if got := toLineCol(idx, c.off); got != c.want {
			t.Errorf("off %d: got %+v want %+v", c.off, got, c.want)
		}
	}
}

func TestNormalizeName(t *testing.T) {
	decomposed := "cafe\u0301"
	if NormalizeName(decomposed) != "caf\u00e9" {
		t.Fatalf("NFC not applied")
	}
	if NormalizeName("plain") != "plain" {
		t.Fatalf("ascii must be unchanged")
	}
}

func TestSpanContainsAndCover(t *testing.T) {
	s := Span{File: 1, Start: 4, End: 8}
	if !s.Contains(8) || s.Contains(9) || s.Contains(3) {
		t.Fatalf("Contains boundaries wrong")
	}
	c := s.Cover(Span{File: 1, Start: 2, End: 5})
	if c.Start != 2 || c.End != 8 {
		t.Fatalf("Cover = %v", c)
	}
}
