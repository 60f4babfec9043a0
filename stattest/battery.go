package stattest

import (
	"context"
	"fmt"
	"runtime"
	"runtime/debug"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/simlab/prngkit/common/errors"
	"github.com/simlab/prngkit/common/logging"
)

var logger = logging.GetLogger(ModuleName)

// Battery runs every test over the same sample, at most GOMAXPROCS at a
// time, and returns the results in test order.
//
// A test that fails (or panics) does not abort the others: its row holds an
// undefined result whose Reason is the failure, and all failures are
// combined into the returned error. A canceled context leaves the tests
// that have not started undefined.
func Battery(ctx context.Context, s *Sample, tests []Test) ([]Result, error) {
	results := make([]Result, len(tests))
	errs := make([]error, len(tests))

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, t := range tests {
		i, t := i, t
		// Failures stay in their row, the group never sees them.
		g.Go(func() error {
			results[i], errs[i] = runOne(ctx, s, t)
			if errs[i] != nil {
				results[i] = undefined(t.Name(), errs[i])
			}
			return nil
		})
	}
	_ = g.Wait()

	var err error
	for i, e := range errs {
		if e == nil {
			continue
		}
		module, code := errors.Code(e)
		logger.Warn("test failed",
			"test", tests[i].Name(),
			"err", e,
			"module", module,
			"code", code,
		)
		err = multierr.Append(err, fmt.Errorf("%s: %w", tests[i].Name(), e))
	}

	return results, err
}

func runOne(ctx context.Context, s *Sample, t Test) (r Result, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("stattest: panic caught running test: %v: %s", p, debug.Stack())
		}
	}()

	if err = ctx.Err(); err != nil {
		return
	}

	logger.Debug("running test",
		"test", t.Name(),
		"n", s.Len(),
	)

	r, err = t.Run(s)
	if err == nil && r.Test == "" {
		r.Test = t.Name()
	}
	return
}
