package report

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/simlab/prngkit/common/version"
	"github.com/simlab/prngkit/config"
	cmdCommon "github.com/simlab/prngkit/prngkit/cmd/common"
	reportAPI "github.com/simlab/prngkit/report"
	"github.com/simlab/prngkit/stattest"
)

func saveReport(t *testing.T, rep *reportAPI.Report, format reportAPI.Format, compress bool) string {
	cfg := config.DefaultConfig()
	cfg.Output = filepath.Join(t.TempDir(), "report.out")
	cfg.Compress = compress

	w, err := cmdCommon.Output(&cfg)
	require.NoError(t, err)
	require.NoError(t, rep.Write(w, format))
	require.NoError(t, w.Close())

	return cfg.Output
}

func testReport() *reportAPI.Report {
	rep := reportAPI.New()
	rep.Add(reportAPI.Entry{
		Source: "xorshift",
		Seed:   7,
		Count:  100,
		Head:   []float64{1, 2},
		Results: []stattest.Result{
			{Test: stattest.NameRuns, Statistic: 0.5, PValue: 0.75},
			{Test: stattest.NameAutocorrelation, Statistic: math.NaN(), PValue: math.NaN(), Reason: stattest.ErrInvalidLag},
		},
	})
	return rep
}

func TestShow(t *testing.T) {
	require := require.New(t)

	cfg := config.DefaultConfig()
	cfg.Format = reportAPI.FormatPretty

	path := saveReport(t, testReport(), reportAPI.FormatJSON, false)
	var buf bytes.Buffer
	require.NoError(show(&buf, &cfg, path, reportAPI.FormatJSON, false))
	out := buf.String()
	require.Contains(out, "xorshift (seed 7, n 100):")
	require.Contains(out, "head: 1 2")
	require.Contains(out, stattest.ErrInvalidLag.Error())

	path = saveReport(t, testReport(), reportAPI.FormatCBOR, true)
	buf.Reset()
	cfg.Format = reportAPI.FormatText
	require.NoError(show(&buf, &cfg, path, reportAPI.FormatCBOR, true))
	require.Contains(buf.String(), "xorshift")
	require.Contains(buf.String(), reportAPI.NotAvailable)
}

func TestShowErrors(t *testing.T) {
	require := require.New(t)

	cfg := config.DefaultConfig()
	var buf bytes.Buffer

	require.Error(show(&buf, &cfg, filepath.Join(t.TempDir(), "missing.json"), reportAPI.FormatJSON, false))

	path := saveReport(t, testReport(), reportAPI.FormatJSON, false)
	require.Error(show(&buf, &cfg, path, reportAPI.FormatCBOR, false), "wrong input format")
	require.Error(show(&buf, &cfg, path, reportAPI.FormatText, false), "text reports cannot be read")

	rep := testReport()
	rep.Version = version.Version{Major: version.ReportFormat.Major + 1}
	path = saveReport(t, rep, reportAPI.FormatJSON, false)
	require.ErrorIs(show(&buf, &cfg, path, reportAPI.FormatJSON, false), reportAPI.ErrIncompatibleVersion)

	require.NoError(os.WriteFile(path, []byte("{"), 0o600))
	require.Error(show(&buf, &cfg, path, reportAPI.FormatJSON, false))
	require.Empty(buf.String(), "nothing is written on failure")
}
