package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/simlab/prngkit/common/cbor"
	"github.com/simlab/prngkit/common/errors"
	"github.com/simlab/prngkit/common/version"
)

var _ flag.Value = (*Format)(nil)

// Format is an output format.
type Format uint8

const (
	// FormatText is a human readable table.
	FormatText Format = iota
	// FormatPretty is a human readable listing, one line per result with
	// the reason of undefined values.
	FormatPretty
	// FormatJSON is indented JSON.
	FormatJSON
	// FormatCBOR is canonical CBOR.
	FormatCBOR
)

// String returns the string representation of a Format.
func (f Format) String() string {
	switch f {
	case FormatText:
		return "text"
	case FormatPretty:
		return "pretty"
	case FormatJSON:
		return "json"
	case FormatCBOR:
		return "cbor"
	default:
		return fmt.Sprintf("[unknown format: %d]", uint8(f))
	}
}

// Set sets the Format to the value specified by the provided string.
func (f *Format) Set(s string) error {
	switch strings.ToLower(s) {
	case "text":
		*f = FormatText
	case "pretty":
		*f = FormatPretty
	case "json":
		*f = FormatJSON
	case "cbor":
		*f = FormatCBOR
	default:
		return fmt.Errorf("report: invalid format: '%s'", s)
	}
	return nil
}

// Type returns the list of supported Formats.
func (f *Format) Type() string {
	return "[text,pretty,json,cbor]"
}

// Write renders the report in the given format.
func (r *Report) Write(w io.Writer, f Format) error {
	switch f {
	case FormatText:
		r.WriteTable(w)
		return nil
	case FormatPretty:
		r.PrettyPrint("", w)
		return nil
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case FormatCBOR:
		return cbor.NewEncoder(w).Encode(r)
	default:
		return fmt.Errorf("report: unsupported format: %s", f)
	}
}

// WriteSequence renders a raw sequence in the given format, one value per
// line for text and pretty.
func WriteSequence[T uint64 | float64](w io.Writer, f Format, values []T) error {
	switch f {
	case FormatText, FormatPretty:
		for _, v := range values {
			if _, err := fmt.Fprintln(w, v); err != nil {
				return err
			}
		}
		return nil
	case FormatJSON:
		return json.NewEncoder(w).Encode(values)
	case FormatCBOR:
		return cbor.NewEncoder(w).Encode(values)
	default:
		return fmt.Errorf("report: unsupported format: %s", f)
	}
}

// Read decodes a report written in the given format. Only JSON and CBOR
// reports can be read back, and their format version must match
// ReportFormat up to the patch segment.
func Read(r io.Reader, f Format) (*Report, error) {
	var (
		rep Report
		err error
	)
	switch f {
	case FormatJSON:
		err = json.NewDecoder(r).Decode(&rep)
	case FormatCBOR:
		err = cbor.NewDecoder(r).Decode(&rep)
	default:
		return nil, fmt.Errorf("report: %s reports cannot be read", f)
	}
	if err != nil {
		return nil, fmt.Errorf("report: failed to decode %s report: %w", f, err)
	}

	if rep.Version.MajorMinor() != version.ReportFormat.MajorMinor() {
		return nil, errors.WithContext(ErrIncompatibleVersion, fmt.Sprintf("got %s, want %s", rep.Version, version.ReportFormat))
	}
	return &rep, nil
}

// MarshalText encodes a Format into text form.
func (f Format) MarshalText() ([]byte, error) {
	switch f {
	case FormatText, FormatPretty, FormatJSON, FormatCBOR:
		return []byte(f.String()), nil
	default:
		return nil, fmt.Errorf("report: unsupported format: %s", f)
	}
}

// UnmarshalText decodes a text slice into a Format.
func (f *Format) UnmarshalText(text []byte) error {
	return f.Set(string(text))
}
