package common

import (
	"io"
	"os"
	"path/filepath"

	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/simlab/prngkit/common/logging"
	"github.com/simlab/prngkit/config"
)

const (
	cfgLogFile  = "log.file"
	cfgLogFmt   = "log.format"
	cfgLogLevel = "log.level"
	// Custom log levels for modules are not supported by cobra.
	// Use the config file instead.

	defaultLogLevelKey = "default"
)

// loggingFlags has the logging flags.
var loggingFlags = flag.NewFlagSet("", flag.ContinueOnError)

// applyLoggingFlags overrides the logging configuration with the explicitly
// set flags. The level flag sets the default level.
func applyLoggingFlags(cfg *config.LogConfig) {
	if viper.IsSet(cfgLogFile) {
		cfg.File = viper.GetString(cfgLogFile)
	}
	if viper.IsSet(cfgLogFmt) {
		cfg.Format = viper.GetString(cfgLogFmt)
	}
	if viper.IsSet(cfgLogLevel) {
		levels := map[string]string{}
		for k, v := range cfg.Level {
			levels[k] = v
		}
		levels[defaultLogLevelKey] = viper.GetString(cfgLogLevel)
		cfg.Level = levels
	}
}

func initLogging(cfg *config.LogConfig) error {
	logLevel := logging.LevelWarn
	moduleLevels := map[string]logging.Level{}
	for k, v := range cfg.Level {
		var lvl logging.Level
		if err := lvl.Set(v); err != nil {
			return err
		}
		if k == defaultLogLevelKey {
			logLevel = lvl
			continue
		}
		moduleLevels[k] = lvl
	}

	var logFmt logging.Format
	if err := logFmt.Set(cfg.Format); err != nil {
		return err
	}

	// Standard output carries the command output.
	var w io.Writer = os.Stderr
	if cfg.File != "" {
		var err error
		if w, err = os.OpenFile(filepath.Clean(cfg.File), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600); err != nil {
			return err
		}
	}

	return logging.Initialize(w, logFmt, logLevel, moduleLevels)
}

func initLoggingFlags() {
	logFmt := logging.FmtLogfmt
	logLevel := logging.LevelWarn

	loggingFlags.String(cfgLogFile, "", "log file")
	loggingFlags.Var(&logFmt, cfgLogFmt, "log format")
	loggingFlags.Var(&logLevel, cfgLogLevel, "log level")

	_ = viper.BindPFlags(loggingFlags)
}
