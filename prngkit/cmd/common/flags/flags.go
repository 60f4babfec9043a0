// Package flags implements common flags used across multiple commands.
//
// Every flag is bound to viper under its own name, which is also the key of
// the same setting in the configuration file. Flags only override the
// configuration when explicitly set.
package flags

import (
	"fmt"
	"strconv"

	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/simlab/prngkit/config"
	"github.com/simlab/prngkit/distribution"
	"github.com/simlab/prngkit/generator/api"
	"github.com/simlab/prngkit/report"
)

const (
	// CfgMethod is the generation method.
	CfgMethod = "method"
	// CfgMethods are the compared generation methods.
	CfgMethods = "methods"
	// CfgSeed is the seed.
	CfgSeed = "seed"
	// CfgSeeds are the compared seeds.
	CfgSeeds = "seeds"
	// CfgCount is the number of values to generate.
	CfgCount = "count"
	// CfgHead is the number of leading values kept in reports.
	CfgHead = "head"

	cfgLCGMultiplier = "lcg.a"
	cfgLCGIncrement  = "lcg.c"
	cfgLCGModulus    = "lcg.m"

	// CfgLag is the autocorrelation lag.
	CfgLag = "lag"
	// CfgTests are the statistical tests to run.
	CfgTests = "tests"

	// CfgDist is the distribution.
	CfgDist = "dist"

	cfgUniformA         = "uniform.a"
	cfgUniformB         = "uniform.b"
	cfgExponentialScale = "exponential.scale"
	cfgNormalMu         = "normal.mu"
	cfgNormalSigma      = "normal.sigma"
	cfgPascalN          = "pascal.n"
	cfgPascalP          = "pascal.p"
	cfgBinomialN        = "binomial.n"
	cfgBinomialP        = "binomial.p"
	cfgPoissonLambda    = "poisson.lambda"
	cfgEmpiricalValues  = "empirical.values"
	cfgEmpiricalProbs   = "empirical.probabilities"

	cfgOutputFormat   = "format"
	cfgOutputFile     = "output"
	cfgOutputCompress = "compress"
)

var (
	// GeneratorFlags has the single source generator flags.
	GeneratorFlags = flag.NewFlagSet("", flag.ContinueOnError)
	// CompareFlags has the side by side comparison flags.
	CompareFlags = flag.NewFlagSet("", flag.ContinueOnError)
	// BatteryFlags has the statistical test selection flags.
	BatteryFlags = flag.NewFlagSet("", flag.ContinueOnError)
	// DistributionFlags has the distribution selection and parameter flags.
	DistributionFlags = flag.NewFlagSet("", flag.ContinueOnError)
	// OutputFlags has the output format and destination flags.
	OutputFlags = flag.NewFlagSet("", flag.ContinueOnError)
)

// Apply overrides the configuration with the explicitly set flags.
func Apply(cfg *config.Config) error {
	var err error

	if viper.IsSet(CfgMethod) {
		if err = cfg.Method.Set(viper.GetString(CfgMethod)); err != nil {
			return fmt.Errorf("%s: %w", CfgMethod, err)
		}
	}
	if viper.IsSet(CfgMethods) {
		cfg.Methods = nil
		for _, s := range viper.GetStringSlice(CfgMethods) {
			var m api.Method
			if err = m.Set(s); err != nil {
				return fmt.Errorf("%s: %w", CfgMethods, err)
			}
			cfg.Methods = append(cfg.Methods, m)
		}
	}
	if viper.IsSet(CfgSeed) {
		seed, perr := getUint64(CfgSeed)
		if perr != nil {
			return perr
		}
		cfg.Seed = &seed
	}
	if viper.IsSet(CfgSeeds) {
		cfg.Seeds = nil
		for _, s := range viper.GetStringSlice(CfgSeeds) {
			seed, perr := strconv.ParseUint(s, 10, 64)
			if perr != nil {
				return fmt.Errorf("%s: malformed seed '%s': %w", CfgSeeds, s, perr)
			}
			cfg.Seeds = append(cfg.Seeds, seed)
		}
	}

	for key, dst := range map[string]*int{
		CfgCount: &cfg.Count,
		CfgHead:  &cfg.Head,
		CfgLag:   &cfg.Lag,
	} {
		if viper.IsSet(key) {
			*dst = viper.GetInt(key)
		}
	}
	for key, dst := range map[string]*uint64{
		cfgLCGMultiplier: &cfg.LCG.Multiplier,
		cfgLCGIncrement:  &cfg.LCG.Increment,
		cfgLCGModulus:    &cfg.LCG.Modulus,
		cfgBinomialN:     &cfg.Binomial.N,
	} {
		if !viper.IsSet(key) {
			continue
		}
		if *dst, err = getUint64(key); err != nil {
			return err
		}
	}
	for key, dst := range map[string]*float64{
		cfgUniformA:         &cfg.Uniform.A,
		cfgUniformB:         &cfg.Uniform.B,
		cfgExponentialScale: &cfg.Exponential.Scale,
		cfgNormalMu:         &cfg.Normal.Mu,
		cfgNormalSigma:      &cfg.Normal.Sigma,
		cfgPascalN:          &cfg.Pascal.N,
		cfgPascalP:          &cfg.Pascal.P,
		cfgBinomialP:        &cfg.Binomial.P,
		cfgPoissonLambda:    &cfg.Poisson.Lambda,
	} {
		if viper.IsSet(key) {
			*dst = viper.GetFloat64(key)
		}
	}
	for key, dst := range map[string]*[]float64{
		cfgEmpiricalValues: &cfg.Empirical.Values,
		cfgEmpiricalProbs:  &cfg.Empirical.Probabilities,
	} {
		if !viper.IsSet(key) {
			continue
		}
		if *dst, err = parseFloats(viper.GetStringSlice(key)); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
	}

	if viper.IsSet(CfgTests) {
		cfg.Tests = viper.GetStringSlice(CfgTests)
	}
	if viper.IsSet(CfgDist) {
		if err = cfg.Dist.Set(viper.GetString(CfgDist)); err != nil {
			return fmt.Errorf("%s: %w", CfgDist, err)
		}
	}
	if viper.IsSet(cfgOutputFormat) {
		if err = cfg.Format.Set(viper.GetString(cfgOutputFormat)); err != nil {
			return fmt.Errorf("%s: %w", cfgOutputFormat, err)
		}
	}
	if viper.IsSet(cfgOutputFile) {
		cfg.Output = viper.GetString(cfgOutputFile)
	}
	if viper.IsSet(cfgOutputCompress) {
		cfg.Compress = viper.GetBool(cfgOutputCompress)
	}

	return nil
}

// getUint64 parses an unsigned flag in base 10 over its full 64-bit range,
// which viper's own conversion does not cover.
func getUint64(key string) (uint64, error) {
	v, err := strconv.ParseUint(viper.GetString(key), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}

func parseFloats(ss []string) ([]float64, error) {
	out := make([]float64, 0, len(ss))
	for _, s := range ss {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("malformed value '%s': %w", s, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func formatFloats(vs []float64) []string {
	out := make([]string, 0, len(vs))
	for _, v := range vs {
		out = append(out, strconv.FormatFloat(v, 'g', -1, 64))
	}
	return out
}

func init() {
	defaults := config.DefaultConfig()

	method := defaults.Method
	GeneratorFlags.Var(&method, CfgMethod, "generation method")
	GeneratorFlags.Uint64(CfgSeed, 0, "seed (current time if unset)")
	GeneratorFlags.Int(CfgCount, defaults.Count, "number of values to generate")
	GeneratorFlags.Int(CfgHead, defaults.Head, "number of leading values kept in reports")
	GeneratorFlags.Uint64(cfgLCGMultiplier, defaults.LCG.Multiplier, "LCG multiplier")
	GeneratorFlags.Uint64(cfgLCGIncrement, defaults.LCG.Increment, "LCG increment")
	GeneratorFlags.Uint64(cfgLCGModulus, defaults.LCG.Modulus, "LCG modulus")
	_ = viper.BindPFlags(GeneratorFlags)

	methods := make([]string, 0, len(defaults.Methods))
	for _, m := range defaults.Methods {
		methods = append(methods, m.String())
	}
	CompareFlags.StringSlice(CfgMethods, methods, "compared generation methods")
	CompareFlags.StringSlice(CfgSeeds, nil, "compared seeds (--seed or current time if unset)")
	_ = viper.BindPFlags(CompareFlags)

	BatteryFlags.Int(CfgLag, defaults.Lag, "autocorrelation lag")
	BatteryFlags.StringSlice(CfgTests, nil, "statistical tests to run (all if unset)")
	_ = viper.BindPFlags(BatteryFlags)

	dist := defaults.Dist
	DistributionFlags.Var(&dist, CfgDist, "distribution")
	DistributionFlags.Float64(cfgUniformA, defaults.Uniform.A, "uniform lower bound")
	DistributionFlags.Float64(cfgUniformB, defaults.Uniform.B, "uniform upper bound")
	DistributionFlags.Float64(cfgExponentialScale, defaults.Exponential.Scale, "exponential scale")
	DistributionFlags.Float64(cfgNormalMu, defaults.Normal.Mu, "normal mean")
	DistributionFlags.Float64(cfgNormalSigma, defaults.Normal.Sigma, "normal standard deviation")
	DistributionFlags.Float64(cfgPascalN, defaults.Pascal.N, "pascal number of successes")
	DistributionFlags.Float64(cfgPascalP, defaults.Pascal.P, "pascal success probability")
	DistributionFlags.Uint64(cfgBinomialN, defaults.Binomial.N, "binomial number of trials")
	DistributionFlags.Float64(cfgBinomialP, defaults.Binomial.P, "binomial success probability")
	DistributionFlags.Float64(cfgPoissonLambda, defaults.Poisson.Lambda, "poisson rate")
	DistributionFlags.StringSlice(cfgEmpiricalValues, formatFloats(defaults.Empirical.Values), "empirical support values")
	DistributionFlags.StringSlice(cfgEmpiricalProbs, formatFloats(defaults.Empirical.Probabilities), "empirical probabilities")
	_ = viper.BindPFlags(DistributionFlags)

	format := defaults.Format
	OutputFlags.Var(&format, cfgOutputFormat, "output format")
	OutputFlags.StringP(cfgOutputFile, "o", "", "output file (standard output if unset)")
	OutputFlags.Bool(cfgOutputCompress, false, "snappy frame the output")
	_ = viper.BindPFlags(OutputFlags)
}

var (
	_ flag.Value = (*distribution.Kind)(nil)
	_ flag.Value = (*report.Format)(nil)
)
