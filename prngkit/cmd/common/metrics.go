package common

import (
	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/simlab/prngkit/config"
	"github.com/simlab/prngkit/metrics"
	metricsConfig "github.com/simlab/prngkit/metrics/config"
)

const (
	cfgMetricsMode    = "metrics.mode"
	cfgMetricsAddr    = "metrics.address"
	cfgMetricsJobName = "metrics.job_name"
	cfgMetricsLabels  = "metrics.labels"
)

// metricsFlags has the metrics flags.
var metricsFlags = flag.NewFlagSet("", flag.ContinueOnError)

func applyMetricsFlags(cfg *metricsConfig.Config) {
	if viper.IsSet(cfgMetricsMode) {
		cfg.Mode = viper.GetString(cfgMetricsMode)
	}
	if viper.IsSet(cfgMetricsAddr) {
		cfg.Address = viper.GetString(cfgMetricsAddr)
	}
	if viper.IsSet(cfgMetricsJobName) {
		cfg.JobName = viper.GetString(cfgMetricsJobName)
	}
	if viper.IsSet(cfgMetricsLabels) {
		cfg.Labels = viper.GetStringMapString(cfgMetricsLabels)
	}
}

// StartMetrics starts the configured metrics service. The caller stops it
// once the command output is complete.
func StartMetrics(cfg *config.Config) (metrics.Service, error) {
	svc, err := metrics.New(&cfg.Metrics)
	if err != nil {
		return nil, err
	}
	if metrics.Enabled(&cfg.Metrics) {
		logger.Info("starting metrics service",
			"mode", cfg.Metrics.Mode,
			"address", cfg.Metrics.Address,
		)
	}
	if err = svc.Start(); err != nil {
		return nil, err
	}
	return svc, nil
}

// StopMetrics stops the metrics service, logging failures.
func StopMetrics(svc metrics.Service) {
	if err := svc.Stop(); err != nil {
		logger.Error("failed to stop metrics service",
			"err", err,
		)
	}
}

func initMetricsFlags() {
	defaults := metricsConfig.DefaultConfig()

	metricsFlags.String(cfgMetricsMode, defaults.Mode, "metrics mode [none,pull,push]")
	metricsFlags.String(cfgMetricsAddr, defaults.Address, "metrics pull listen address or push gateway address")
	metricsFlags.String(cfgMetricsJobName, defaults.JobName, "metrics push job name")
	metricsFlags.StringToString(cfgMetricsLabels, map[string]string{}, "metrics push grouping labels (key=value,...)")

	_ = viper.BindPFlags(metricsFlags)
}
