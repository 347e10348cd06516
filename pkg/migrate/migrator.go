package migrate

import "context"

// Runner : ports the configured tables into the destination
type Runner interface {
	// Run : refresh rebuilds every table, otherwise only units missing from the last
	// failed run's checkpoint are ported
	Run(ctx context.Context, refresh bool) error
	Close() error
}

var _ Runner = (*Porter)(nil)
