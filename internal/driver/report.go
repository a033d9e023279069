package driver

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"

	"github.com/fatih/color"
	"github.com/vmihailenco/msgpack/v5"
)

type Format string

const (
	FormatPretty  Format = "pretty"
	FormatJSON    Format = "json"
	FormatMsgpack Format = "msgpack"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatPretty, FormatJSON, FormatMsgpack:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format %q (want pretty, json or msgpack)", s)
	}
}

var (
	pathColor  = color.New(color.Bold)
	kindColor  = color.New(color.FgCyan)
	errorColor = color.New(color.FgRed, color.Bold)
	okColor    = color.New(color.FgGreen)
)

// WriteReport encodes rep in the given format.
func WriteReport(w io.Writer, rep *Report, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rep); err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}
		return nil
	case FormatMsgpack:
		if err := msgpack.NewEncoder(w).Encode(rep); err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}
		return nil
	default:
		return writePretty(w, rep)
	}
}

// ReadReport decodes a msgpack report.
func ReadReport(r io.Reader) (*Report, error) {
	var rep Report
	if err := msgpack.NewDecoder(r).Decode(&rep); err != nil {
		return nil, fmt.Errorf("failed to decode report: %w", err)
	}
	return &rep, nil
}

func writePretty(w io.Writer, rep *Report) error {
	for _, f := range rep.Files {
		if _, err := fmt.Fprintf(w, "%s  %v\n", pathColor.Sprint(f.Path), f.Modules); err != nil {
			return err
		}
		for _, d := range f.Definitions {
			name := d.Name
			if name == "" {
				name = "_"
			}
			if _, err := fmt.Fprintf(w, "  %4d:%-3d %s %s  %s\n", d.Line, d.Col, kindColor.Sprintf("%-14s", d.Kind), name, d.Definition); err != nil {
				return err
			}
		}
		for _, m := range f.Mismatches {
			if _, err := fmt.Fprintf(w, "  %s %s\n", errorColor.Sprint("mismatch"), m); err != nil {
				return err
			}
		}
	}
	names := make([]string, 0, len(rep.Totals))
	for k := range rep.Totals {
		names = append(names, k)
	}
	slices.Sort(names)
	summary := okColor
	if rep.Mismatches() > 0 {
		summary = errorColor
	}
	line := ""
	for _, k := range names {
		line += fmt.Sprintf(" %s=%d", k, rep.Totals[k])
	}
	_, err := fmt.Fprintln(w, summary.Sprint("totals:"+line))
	return err
}
