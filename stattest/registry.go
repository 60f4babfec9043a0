package stattest

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/simlab/prngkit/common/errors"
)

// Test is a named statistical test.
type Test interface {
	// Name returns the test name.
	Name() string

	// Run runs the test over the sample.
	Run(s *Sample) (Result, error)
}

// Options are the parameters shared by test constructors.
type Options struct {
	// Lag is the autocorrelation lag.
	Lag int
}

// Factory constructs a test from the options.
type Factory func(opts Options) Test

type testFunc struct {
	name string
	fn   func(s *Sample) (Result, error)
}

func (t *testFunc) Name() string {
	return t.name
}

func (t *testFunc) Run(s *Sample) (Result, error) {
	return t.fn(s)
}

// NewTest wraps a function as a Test.
func NewTest(name string, fn func(s *Sample) (Result, error)) Test {
	return &testFunc{name: name, fn: fn}
}

var (
	registryLock sync.RWMutex
	registry     = make(map[string]Factory)
	defaultOrder []string
)

// Register adds a test factory under the given name and appends it to the
// default battery.
func Register(name string, f Factory) error {
	registryLock.Lock()
	defer registryLock.Unlock()

	n := strings.ToLower(name)
	if _, ok := registry[n]; ok {
		return fmt.Errorf("stattest: test already registered: %s", n)
	}
	registry[n] = f
	defaultOrder = append(defaultOrder, n)

	return nil
}

// Names returns the names of all registered tests, sorted alphabetically.
func Names() []string {
	registryLock.RLock()
	defer registryLock.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ByName constructs a registered test.
func ByName(name string, opts Options) (Test, error) {
	registryLock.RLock()
	defer registryLock.RUnlock()

	f, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, errors.WithContext(ErrUnknownTest, name)
	}
	return f(opts), nil
}

// Resolve constructs the named tests in order. No names selects the default
// battery.
func Resolve(names []string, opts Options) ([]Test, error) {
	if len(names) == 0 {
		return DefaultTests(opts), nil
	}

	tests := make([]Test, 0, len(names))
	for _, name := range names {
		t, err := ByName(name, opts)
		if err != nil {
			return nil, err
		}
		tests = append(tests, t)
	}
	return tests, nil
}

// DefaultTests returns every registered test in registration order.
func DefaultTests(opts Options) []Test {
	registryLock.RLock()
	defer registryLock.RUnlock()

	tests := make([]Test, 0, len(defaultOrder))
	for _, name := range defaultOrder {
		tests = append(tests, registry[name](opts))
	}
	return tests
}

func init() {
	for _, v := range []struct {
		name string
		f    Factory
	}{
		{NameChiSquare, func(Options) Test {
			return NewTest(NameChiSquare, func(s *Sample) (Result, error) {
				return ChiSquare(s), nil
			})
		}},
		{NameRuns, func(Options) Test {
			return NewTest(NameRuns, func(s *Sample) (Result, error) {
				return Runs(s), nil
			})
		}},
		{NameAutocorrelation, func(opts Options) Test {
			return NewTest(NameAutocorrelation, func(s *Sample) (Result, error) {
				return Autocorrelation(s, opts.Lag)
			})
		}},
		{NameKolmogorovSmirnov, func(Options) Test {
			return NewTest(NameKolmogorovSmirnov, func(s *Sample) (Result, error) {
				return KolmogorovSmirnov(s), nil
			})
		}},
	} {
		if err := Register(v.name, v.f); err != nil {
			panic(err)
		}
	}
}
