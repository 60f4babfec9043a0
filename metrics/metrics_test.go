package metrics

import (
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/simlab/prngkit/metrics/config"
	"github.com/simlab/prngkit/report"
	"github.com/simlab/prngkit/stattest"
)

func TestObserve(t *testing.T) {
	require := require.New(t)

	e := &report.Entry{
		Source: "observe_test",
		Count:  100,
		Results: []stattest.Result{
			{Test: stattest.NameChiSquare, Statistic: 12.5, PValue: 0.25},
			{Test: stattest.NameAutocorrelation, Statistic: 1, PValue: math.NaN(), Reason: stattest.ErrNotApplicable},
			{Test: stattest.NameRuns, Statistic: math.NaN(), PValue: math.NaN(), Reason: stattest.ErrDegenerateInput},
		},
	}
	Observe(e)
	Observe(e)

	require.Equal(200.0, testutil.ToFloat64(generatedNumbers.WithLabelValues("observe_test")))
	require.Equal(12.5, testutil.ToFloat64(testStatistic.WithLabelValues("observe_test", stattest.NameChiSquare)))
	require.Equal(0.25, testutil.ToFloat64(testPValue.WithLabelValues("observe_test", stattest.NameChiSquare)))
	require.Equal(1.0, testutil.ToFloat64(testStatistic.WithLabelValues("observe_test", stattest.NameAutocorrelation)))
	require.Equal(0.0, testutil.ToFloat64(testUndefined.WithLabelValues("observe_test", stattest.NameChiSquare)))
	require.Equal(2.0, testutil.ToFloat64(testUndefined.WithLabelValues("observe_test", stattest.NameAutocorrelation)))
	require.Equal(2.0, testutil.ToFloat64(testUndefined.WithLabelValues("observe_test", stattest.NameRuns)))
}

func TestConfigValidate(t *testing.T) {
	require := require.New(t)

	cfg := config.DefaultConfig()
	require.NoError(cfg.Validate())
	require.False(Enabled(&cfg))

	for _, tc := range []struct {
		cfg   config.Config
		valid bool
	}{
		{config.Config{Mode: config.ModePull, Address: "127.0.0.1:0"}, true},
		{config.Config{Mode: config.ModePull}, false},
		{config.Config{Mode: config.ModePush, Address: "http://gw", JobName: "j", Labels: map[string]string{"instance": "a"}}, true},
		{config.Config{Mode: config.ModePush, Address: "http://gw", JobName: "j"}, false},
		{config.Config{Mode: config.ModePush, Address: "http://gw", Labels: map[string]string{"instance": "a"}}, false},
		{config.Config{Mode: "poll"}, false},
	} {
		err := tc.cfg.Validate()
		switch tc.valid {
		case true:
			require.NoError(err, "mode %s", tc.cfg.Mode)
		case false:
			require.Error(err, "mode %s", tc.cfg.Mode)
			_, err = New(&tc.cfg)
			require.Error(err)
		}
	}

	require.Equal("run_id", EscapeLabelCharacters("run-id"))
}

func TestPull(t *testing.T) {
	require := require.New(t)

	cfg := config.Config{Mode: config.ModePull, Address: "127.0.0.1:0"}
	svc, err := New(&cfg)
	require.NoError(err)
	require.NoError(svc.Start())

	Observe(&report.Entry{Source: "pull_test", Count: 5})

	resp, err := http.Get("http://" + svc.(*pullService).Addr().String() + "/metrics")
	require.NoError(err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(err)
	require.Contains(string(body), `prngkit_generated_numbers_total{source="pull_test"} 5`)

	require.NoError(svc.Stop())
}

func TestPush(t *testing.T) {
	require := require.New(t)

	var (
		lock   sync.Mutex
		method string
		path   string
		body   []byte
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lock.Lock()
		defer lock.Unlock()
		method, path = r.Method, r.URL.Path
		body, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cfg := config.Config{
		Mode:    config.ModePush,
		Address: srv.URL,
		JobName: "prngkit",
		Labels:  map[string]string{"instance": "ci-1"},
	}
	svc, err := New(&cfg)
	require.NoError(err)
	require.NoError(svc.Start())

	Observe(&report.Entry{Source: "push_test", Count: 7})
	require.NoError(svc.Stop())

	lock.Lock()
	defer lock.Unlock()
	require.Equal(http.MethodPut, method)
	require.True(strings.HasPrefix(path, "/metrics/job/prngkit"), path)
	require.Contains(path, "/instance/ci-1")
	require.Contains(path, "/"+MetricsLabelSoftwareVersion+"/")
	require.NotEmpty(body)

	srv.Close()
	require.Error(svc.Stop(), "push to a closed gateway fails")
}

func TestPushRetry(t *testing.T) {
	require := require.New(t)

	var (
		lock     sync.Mutex
		requests int
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lock.Lock()
		defer lock.Unlock()
		requests++
		if requests == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	cfg := config.Config{
		Mode:    config.ModePush,
		Address: srv.URL,
		JobName: "prngkit",
		Labels:  map[string]string{"instance": "ci-2"},
	}
	svc, err := New(&cfg)
	require.NoError(err)
	require.NoError(svc.Stop(), "a transient gateway failure is retried")

	lock.Lock()
	defer lock.Unlock()
	require.Equal(2, requests)
}
