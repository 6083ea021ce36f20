package check

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"sir/pkg/config"
	"sir/pkg/logger"
	"sir/pkg/schema"
	"sir/pkg/solr"
)

// ErrUnknownCore is returned for cores missing from the registry.
var ErrUnknownCore = errors.New("core not in schema registry")

// VersionMismatchError reports a core whose live schema version differs
// from the expected one.
type VersionMismatchError struct {
	Core     string
	Expected float64
	Actual   float64
}

func (e *VersionMismatchError) Error() string {
	return fmt.Sprintf("%s: Expected %1.1f, got %1.1f", e.Core, e.Expected, e.Actual)
}

// VersionChecker compares the schema version of Solr cores against a registry.
type VersionChecker struct {
	baseURI  string
	client   *http.Client
	registry *schema.Registry
	log      logger.Logger
}

// Option configures a VersionChecker.
type Option func(*VersionChecker)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(v *VersionChecker) {
		if c != nil {
			v.client = c
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(v *VersionChecker) {
		if l != nil {
			v.log = l
		}
	}
}

// New builds a checker for the Solr server at cfg.SolrURI. The HTTP client
// defaults to one with cfg.HTTPTimeout.
func New(cfg config.Config, registry *schema.Registry, opts ...Option) *VersionChecker {
	v := &VersionChecker{
		baseURI:  cfg.SolrURI,
		client:   &http.Client{Timeout: cfg.HTTPTimeout},
		registry: registry,
		log:      logger.Default,
	}
	for _, o := range opts {
		o(v)
	}
	return v
}

// CheckVersion fetches the live version of core and compares it with the
// registry. It returns a *VersionMismatchError on difference and a
// *solr.TransportError when the version could not be fetched.
func (v *VersionChecker) CheckVersion(ctx context.Context, core string) error {
	_, _, err := v.check(ctx, core)
	return err
}

func (v *VersionChecker) check(ctx context.Context, core string) (expected, actual float64, err error) {
	expected, ok := v.registry.Version(core)
	if !ok {
		return 0, 0, fmt.Errorf("%s: %w", core, ErrUnknownCore)
	}
	actual, err = solr.Bind(v.client, v.baseURI, core).SchemaVersion(ctx)
	if err != nil {
		return expected, 0, err
	}
	if actual != expected {
		return expected, actual, &VersionMismatchError{Core: core, Expected: expected, Actual: actual}
	}
	v.log.Debug("%s: version %1.1f matches %1.1f", core, expected, actual)
	return expected, actual, nil
}

// Result is the outcome of checking one core. Actual is zero when the
// version could not be fetched.
type Result struct {
	Core     string
	Expected float64
	Actual   float64
	Err      error
}

// OK reports whether the core passed.
func (r Result) OK() bool { return r.Err == nil }

// Report holds per-core results in the order the cores were given.
type Report struct {
	Results []Result
}

// Failed returns the results that did not pass.
func (r Report) Failed() []Result {
	var out []Result
	for _, res := range r.Results {
		if !res.OK() {
			out = append(out, res)
		}
	}
	return out
}

// Err joins every failure, or returns nil when all cores passed.
func (r Report) Err() error {
	var errs []error
	for _, res := range r.Results {
		if res.Err != nil {
			errs = append(errs, res.Err)
		}
	}
	return errors.Join(errs...)
}

// CheckVersions checks every core, continuing past failures. The returned
// error is Report.Err.
func (v *VersionChecker) CheckVersions(ctx context.Context, cores []string) (Report, error) {
	rep := Report{Results: make([]Result, 0, len(cores))}
	for _, core := range cores {
		expected, actual, err := v.check(ctx, core)
		rep.Results = append(rep.Results, Result{Core: core, Expected: expected, Actual: actual, Err: err})
	}
	return rep, rep.Err()
}
