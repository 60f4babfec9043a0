// Package report assembles generator and distribution runs with their test
// results and renders them as a text table, JSON or CBOR.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/simlab/prngkit/common/cbor"
	"github.com/simlab/prngkit/common/errors"
	"github.com/simlab/prngkit/common/prettyprint"
	"github.com/simlab/prngkit/common/version"
	"github.com/simlab/prngkit/stattest"
)

// NotAvailable is printed in place of undefined values.
const NotAvailable = "N/A"

// ErrIncompatibleVersion is the error returned when reading a report whose
// format version is not supported.
var ErrIncompatibleVersion = errors.New("report", 1, "report: incompatible report format version")

var _ prettyprint.PrettyPrinter = (*Report)(nil)

// Entry is the outcome of testing one sequence.
type Entry struct {
	// Source names what produced the sequence (a method or distribution).
	Source string
	// Seed is the seed the source was initialized with.
	Seed uint64
	// Count is the sequence length.
	Count int
	// Head holds the first values of the sequence.
	Head []float64
	// Results are the test results in battery order.
	Results []stattest.Result
}

// Report is a collection of entries.
type Report struct {
	Version version.Version
	Created time.Time
	Entries []Entry
}

// New creates an empty report.
func New() *Report {
	return &Report{
		Version: version.ReportFormat,
		Created: time.Now().UTC().Truncate(time.Second),
	}
}

// Add appends an entry to the report.
func (r *Report) Add(e Entry) {
	r.Entries = append(r.Entries, e)
}

// Tests returns the test names appearing in the report, in order of first
// appearance.
func (r *Report) Tests() []string {
	var names []string
	seen := make(map[string]bool)
	for _, e := range r.Entries {
		for _, res := range e.Results {
			if !seen[res.Test] {
				seen[res.Test] = true
				names = append(names, res.Test)
			}
		}
	}
	return names
}

// FormatFloat formats a value for display, NotAvailable if undefined.
func FormatFloat(v float64) string {
	if math.IsNaN(v) {
		return NotAvailable
	}
	return strconv.FormatFloat(v, 'g', 6, 64)
}

// WriteTable renders the report as a text table with one row per entry and
// a statistic and p-value column per test.
func (r *Report) WriteTable(w io.Writer) {
	tests := r.Tests()

	header := []string{"source", "n"}
	for _, t := range tests {
		header = append(header, t, t+" p")
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	for _, e := range r.Entries {
		row := []string{e.Source, strconv.Itoa(e.Count)}
		for _, t := range tests {
			res, ok := e.result(t)
			if !ok {
				row = append(row, "", "")
				continue
			}
			row = append(row, FormatFloat(res.Statistic), FormatFloat(res.PValue))
		}
		table.Append(row)
	}
	table.Render()
}

// PrettyPrint writes a pretty-printed representation of the report to the
// given writer.
func (r *Report) PrettyPrint(prefix string, w io.Writer) {
	fmt.Fprintf(w, "%sReport format: %s\n", prefix, r.Version)
	fmt.Fprintf(w, "%sCreated:       %s\n", prefix, r.Created.Format(time.RFC3339))
	for _, e := range r.Entries {
		fmt.Fprintf(w, "%s%s (seed %d, n %d):\n", prefix, e.Source, e.Seed, e.Count)
		if len(e.Head) > 0 {
			head := make([]string, 0, len(e.Head))
			for _, v := range e.Head {
				head = append(head, FormatFloat(v))
			}
			fmt.Fprintf(w, "%s  head: %s\n", prefix, strings.Join(head, " "))
		}
		for _, res := range e.Results {
			fmt.Fprintf(w, "%s  %-20s statistic: %-12s p-value: %s", prefix, res.Test, FormatFloat(res.Statistic), FormatFloat(res.PValue))
			if res.Reason != nil {
				fmt.Fprintf(w, " (%v)", res.Reason)
			}
			fmt.Fprintln(w)
		}
	}
}

func (e *Entry) result(test string) (stattest.Result, bool) {
	for _, res := range e.Results {
		if res.Test == test {
			return res, true
		}
	}
	return stattest.Result{}, false
}

// serializedResult is the plain data form of a stattest.Result.
type serializedResult struct {
	Test      string   `json:"test" cbor:"test"`
	Statistic *float64 `json:"statistic" cbor:"statistic"`
	PValue    *float64 `json:"p_value" cbor:"p_value"`
	Reason    string   `json:"reason,omitempty" cbor:"reason,omitempty"`
}

type serializedEntry struct {
	Source  string             `json:"source" cbor:"source"`
	Seed    uint64             `json:"seed" cbor:"seed"`
	Count   int                `json:"count" cbor:"count"`
	Head    []float64          `json:"head,omitempty" cbor:"head,omitempty"`
	Results []serializedResult `json:"results" cbor:"results"`
}

type serializedReport struct {
	Version version.Version   `json:"version" cbor:"version"`
	Created time.Time         `json:"created" cbor:"created"`
	Entries []serializedEntry `json:"entries" cbor:"entries"`
}

func definedOrNil(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func (r *Report) serialize() *serializedReport {
	sr := &serializedReport{
		Version: r.Version,
		Created: r.Created,
		Entries: make([]serializedEntry, 0, len(r.Entries)),
	}
	for _, e := range r.Entries {
		se := serializedEntry{
			Source:  e.Source,
			Seed:    e.Seed,
			Count:   e.Count,
			Head:    e.Head,
			Results: make([]serializedResult, 0, len(e.Results)),
		}
		for _, res := range e.Results {
			s := serializedResult{
				Test:      res.Test,
				Statistic: definedOrNil(res.Statistic),
				PValue:    definedOrNil(res.PValue),
			}
			if res.Reason != nil {
				s.Reason = res.Reason.Error()
			}
			se.Results = append(se.Results, s)
		}
		sr.Entries = append(sr.Entries, se)
	}
	return sr
}

func (sr *serializedReport) deserialize() *Report {
	r := &Report{
		Version: sr.Version,
		Created: sr.Created,
		Entries: make([]Entry, 0, len(sr.Entries)),
	}
	for _, se := range sr.Entries {
		e := Entry{
			Source:  se.Source,
			Seed:    se.Seed,
			Count:   se.Count,
			Head:    se.Head,
			Results: make([]stattest.Result, 0, len(se.Results)),
		}
		for _, s := range se.Results {
			res := stattest.Result{
				Test:      s.Test,
				Statistic: math.NaN(),
				PValue:    math.NaN(),
			}
			if s.Statistic != nil {
				res.Statistic = *s.Statistic
			}
			if s.PValue != nil {
				res.PValue = *s.PValue
			}
			if s.Reason != "" {
				res.Reason = reasonError(s.Reason)
			}
			e.Results = append(e.Results, res)
		}
		r.Entries = append(r.Entries, e)
	}
	return r
}

// reasonError is a deserialized undefined-value reason.
type reasonError string

func (e reasonError) Error() string {
	return string(e)
}

// MarshalJSON encodes the report as JSON, undefined values being null.
func (r *Report) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.serialize())
}

// UnmarshalJSON decodes a JSON report, null values being undefined.
func (r *Report) UnmarshalJSON(data []byte) error {
	var sr serializedReport
	if err := json.Unmarshal(data, &sr); err != nil {
		return err
	}
	*r = *sr.deserialize()
	return nil
}

// MarshalCBOR encodes the report as canonical CBOR.
func (r *Report) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(r.serialize()), nil
}

// UnmarshalCBOR decodes a CBOR report.
func (r *Report) UnmarshalCBOR(data []byte) error {
	var sr serializedReport
	if err := cbor.Unmarshal(data, &sr); err != nil {
		return err
	}
	*r = *sr.deserialize()
	return nil
}
