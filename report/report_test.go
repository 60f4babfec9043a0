package report

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/simlab/prngkit/common/cbor"
	"github.com/simlab/prngkit/stattest"
)

func testReport() *Report {
	r := New()
	r.Add(Entry{
		Source: "lcg",
		Seed:   0,
		Count:  3,
		Head:   []float64{12345, 1406932606},
		Results: []stattest.Result{
			{Test: stattest.NameChiSquare, Statistic: 4.5, PValue: 0.25},
			{Test: stattest.NameRuns, Statistic: -1.25, PValue: 0.5},
		},
	})
	r.Add(Entry{
		Source: "middle_square",
		Seed:   0,
		Count:  3,
		Results: []stattest.Result{
			{Test: stattest.NameChiSquare, Statistic: math.NaN(), PValue: math.NaN(), Reason: stattest.ErrDegenerateInput},
			{Test: stattest.NameRuns, Statistic: math.NaN(), PValue: math.NaN(), Reason: stattest.ErrDegenerateInput},
		},
	})
	return r
}

func TestWriteTable(t *testing.T) {
	require := require.New(t)

	var buf bytes.Buffer
	testReport().WriteTable(&buf)
	out := buf.String()

	require.Contains(out, "source")
	require.Contains(out, stattest.NameChiSquare+" p")
	require.Contains(out, "lcg")
	require.Contains(out, "middle_square")
	require.Contains(out, "4.5")
	require.Contains(out, "-1.25")
	require.Equal(4, strings.Count(out, NotAvailable), "undefined values print as N/A")
	require.NotContains(out, "NaN")
}

func TestJSON(t *testing.T) {
	require := require.New(t)

	r := testReport()
	data, err := json.Marshal(r)
	require.NoError(err, "NaN must not break JSON encoding")

	var raw map[string]interface{}
	require.NoError(json.Unmarshal(data, &raw))
	entries := raw["entries"].([]interface{})
	require.Len(entries, 2)
	undefined := entries[1].(map[string]interface{})["results"].([]interface{})[0].(map[string]interface{})
	require.Nil(undefined["statistic"])
	require.Nil(undefined["p_value"])
	require.Equal(stattest.ErrDegenerateInput.Error(), undefined["reason"])

	var decoded Report
	require.NoError(json.Unmarshal(data, &decoded))
	require.Equal(r.Version, decoded.Version)
	require.True(r.Created.Equal(decoded.Created))
	require.Len(decoded.Entries, 2)
	require.Equal(r.Entries[0].Results, decoded.Entries[0].Results)
	res := decoded.Entries[1].Results[0]
	require.False(res.Defined())
	require.False(res.HasPValue())
	require.EqualError(res.Reason, stattest.ErrDegenerateInput.Error())
}

func TestCBOR(t *testing.T) {
	require := require.New(t)

	r := testReport()
	var buf bytes.Buffer
	require.NoError(r.Write(&buf, FormatCBOR))

	var decoded Report
	require.NoError(cbor.Unmarshal(buf.Bytes(), &decoded))
	require.True(r.Created.Equal(decoded.Created))
	require.Equal(r.Entries[0].Head, decoded.Entries[0].Head)
	require.Equal(r.Entries[0].Results, decoded.Entries[0].Results)
	require.False(decoded.Entries[1].Results[1].Defined())

	// Canonical encoding is deterministic.
	require.Equal(buf.Bytes(), cbor.Marshal(r))
}

func TestFormat(t *testing.T) {
	require := require.New(t)

	var f Format
	require.NoError(f.Set("JSON"))
	require.Equal(FormatJSON, f)
	require.Equal("json", f.String())
	require.Error(f.Set("yaml"))

	var buf bytes.Buffer
	require.NoError(WriteSequence(&buf, FormatText, []uint64{5227, 3215}))
	require.Equal("5227\n3215\n", buf.String())

	buf.Reset()
	require.NoError(WriteSequence(&buf, FormatJSON, []uint64{5227, 3215}))
	require.JSONEq("[5227, 3215]", buf.String())

	buf.Reset()
	require.NoError(WriteSequence(&buf, FormatCBOR, []float64{0.5}))
	var values []float64
	require.NoError(cbor.Unmarshal(buf.Bytes(), &values))
	require.Equal([]float64{0.5}, values)
}

func TestRead(t *testing.T) {
	require := require.New(t)

	r := testReport()
	for _, f := range []Format{FormatJSON, FormatCBOR} {
		var buf bytes.Buffer
		require.NoError(r.Write(&buf, f))
		decoded, err := Read(&buf, f)
		require.NoError(err, f.String())
		require.Equal(r.Entries[0].Results, decoded.Entries[0].Results)
		require.False(decoded.Entries[1].Results[0].Defined())
	}

	// Patch releases stay readable.
	r.Version.Patch++
	var buf bytes.Buffer
	require.NoError(r.Write(&buf, FormatJSON))
	_, err := Read(&buf, FormatJSON)
	require.NoError(err)

	r.Version.Minor++
	buf.Reset()
	require.NoError(r.Write(&buf, FormatJSON))
	_, err = Read(&buf, FormatJSON)
	require.ErrorIs(err, ErrIncompatibleVersion)

	_, err = Read(strings.NewReader("x"), FormatPretty)
	require.Error(err)
}

func TestPrettyPrint(t *testing.T) {
	var buf bytes.Buffer
	testReport().PrettyPrint("  ", &buf)
	out := buf.String()

	require.Contains(t, out, "lcg (seed 0, n 3):")
	require.Contains(t, out, "head: 12345 1.40693e+09")
	require.Contains(t, out, stattest.ErrDegenerateInput.Error())

	var viaWrite bytes.Buffer
	require.NoError(t, testReport().Write(&viaWrite, FormatPretty))
	require.Contains(t, viaWrite.String(), "middle_square (seed 0, n 3):")

	var f Format
	require.NoError(t, f.Set("pretty"))
	text, err := f.MarshalText()
	require.NoError(t, err)
	require.Equal(t, "pretty", string(text))
}
