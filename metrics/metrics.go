// Package metrics implements prometheus metrics for generator runs and
// statistical test outcomes.
package metrics

import (
	"fmt"
	"net"
	"net/http"
	"regexp"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/simlab/prngkit/common/logging"
	"github.com/simlab/prngkit/common/version"
	"github.com/simlab/prngkit/metrics/config"
	"github.com/simlab/prngkit/report"
)

const (
	// MetricsLabelSource is the label naming what produced a sequence.
	MetricsLabelSource = "source"
	// MetricsLabelTest is the label naming a statistical test.
	MetricsLabelTest = "test"
	// MetricsLabelSoftwareVersion is the push grouping label carrying the
	// software version.
	MetricsLabelSoftwareVersion = "software_version"
)

var (
	generatedNumbers = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prngkit_generated_numbers_total",
			Help: "Number of generated values.",
		},
		[]string{MetricsLabelSource},
	)
	testStatistic = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "prngkit_test_statistic",
			Help: "Last test statistic.",
		},
		[]string{MetricsLabelSource, MetricsLabelTest},
	)
	testPValue = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "prngkit_test_pvalue",
			Help: "Last test p-value.",
		},
		[]string{MetricsLabelSource, MetricsLabelTest},
	)
	testUndefined = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prngkit_test_undefined_total",
			Help: "Number of test results with an undefined statistic or p-value.",
		},
		[]string{MetricsLabelSource, MetricsLabelTest},
	)
	collectors = []prometheus.Collector{
		generatedNumbers,
		testStatistic,
		testPValue,
		testUndefined,
	}

	metricsOnce sync.Once

	pushRetries       uint64 = 3
	pushRetryInterval        = 100 * time.Millisecond

	invalidLabelCharactersRegexp = regexp.MustCompile(`[^a-zA-Z0-9_]`)

	logger = logging.GetLogger("metrics")
)

func initMetrics() {
	metricsOnce.Do(func() {
		prometheus.MustRegister(collectors...)
	})
}

// Observe records the entry's sequence length and test results.
func Observe(e *report.Entry) {
	initMetrics()

	generatedNumbers.WithLabelValues(e.Source).Add(float64(e.Count))
	for _, r := range e.Results {
		labels := prometheus.Labels{
			MetricsLabelSource: e.Source,
			MetricsLabelTest:   r.Test,
		}
		if r.Defined() {
			testStatistic.With(labels).Set(r.Statistic)
		}
		if r.HasPValue() {
			testPValue.With(labels).Set(r.PValue)
		}
		if !r.Defined() || !r.HasPValue() {
			testUndefined.With(labels).Inc()
		}
	}
}

// EscapeLabelCharacters replaces invalid prometheus label name characters
// with "_".
func EscapeLabelCharacters(l string) string {
	return invalidLabelCharactersRegexp.ReplaceAllString(l, "_")
}

// Service exposes the collected metrics for the duration of a command.
type Service interface {
	// Start starts the service.
	Start() error
	// Stop stops the service, flushing metrics if needed.
	Stop() error
}

type stubService struct{}

func (s *stubService) Start() error {
	return nil
}

func (s *stubService) Stop() error {
	return nil
}

func resourceHandler(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		UpdateResources()
		h.ServeHTTP(w, r)
	})
}

type pullService struct {
	ln net.Listener
	s  *http.Server

	errCh chan error
}

func (s *pullService) Start() error {
	go func() {
		if err := s.s.Serve(s.ln); err != nil && err != http.ErrServerClosed {
			s.errCh <- err
		}
		close(s.errCh)
	}()
	return nil
}

func (s *pullService) Stop() error {
	_ = s.s.Close()
	if err := <-s.errCh; err != nil {
		logger.Error("metrics terminated uncleanly",
			"err", err,
		)
		return err
	}
	return nil
}

// Addr returns the address the service listens on.
func (s *pullService) Addr() net.Addr {
	return s.ln.Addr()
}

func newPullService(cfg *config.Config) (*pullService, error) {
	logger.Debug("metrics server params",
		"mode", config.ModePull,
		"addr", cfg.Address,
	)

	ln, err := net.Listen("tcp", cfg.Address)
	if err != nil {
		return nil, err
	}

	return &pullService{
		ln:    ln,
		s:     &http.Server{Handler: resourceHandler(promhttp.Handler()), ReadTimeout: 5 * time.Second},
		errCh: make(chan error, 1),
	}, nil
}

type pushService struct {
	pusher *push.Pusher

	addr    string
	jobName string
	labels  map[string]string
}

func (s *pushService) Start() error {
	return nil
}

// Stop pushes the default gatherer, retrying a bounded number of times.
func (s *pushService) Stop() error {
	UpdateResources()

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = pushRetryInterval
	op := func() error {
		err := s.pusher.Push()
		if err != nil {
			logger.Warn("push failed",
				"addr", s.addr,
				"err", err,
			)
		}
		return err
	}
	if err := backoff.Retry(op, backoff.WithMaxRetries(bo, pushRetries)); err != nil {
		return fmt.Errorf("metrics: push failed: %w", err)
	}
	return nil
}

func newPushService(cfg *config.Config) *pushService {
	labels := map[string]string{
		MetricsLabelSoftwareVersion: version.SoftwareVersion,
	}
	for k, v := range cfg.Labels {
		labels[EscapeLabelCharacters(k)] = v
	}

	svc := &pushService{
		addr:    cfg.Address,
		jobName: cfg.JobName,
		labels:  labels,
	}

	logger.Debug("initializing metrics push service",
		"mode", config.ModePush,
		"addr", svc.addr,
		"job_name", svc.jobName,
		"labels", svc.labels,
	)

	pusher := push.New(svc.addr, svc.jobName).Gatherer(prometheus.DefaultGatherer)
	for k, v := range svc.labels {
		// Empty grouping label values are rejected by the Pushgateway.
		if v == "" {
			continue
		}
		pusher = pusher.Grouping(k, v)
	}
	svc.pusher = pusher

	return svc
}

// New constructs a new metrics service.
func New(cfg *config.Config) (Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}

	initMetrics()

	switch cfg.Mode {
	case config.ModeNone:
		return &stubService{}, nil
	case config.ModePull:
		svc, err := newPullService(cfg)
		if err != nil {
			return nil, err
		}
		return svc, nil
	case config.ModePush:
		return newPushService(cfg), nil
	default:
		// Unreachable, Validate rejects unknown modes.
		return nil, fmt.Errorf("metrics: unsupported mode: '%v'", cfg.Mode)
	}
}

// Enabled returns true iff the configuration enables metrics.
func Enabled(cfg *config.Config) bool {
	return cfg.Mode != config.ModeNone
}
