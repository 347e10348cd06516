// package source
//
// registry of the named origins tables are read from
package source

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/baderkha/dbporter/pkg/migrate/config/sourcecfg"
	"github.com/baderkha/dbporter/pkg/migrate/connection"
	"github.com/baderkha/dbporter/pkg/migrate/dialect"
	"github.com/baderkha/dbporter/pkg/migrate/errs"
	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"
)

// Kind : how a source stores its tables
type Kind string

const (
	FlatFile   Kind = "FLAT_FILE"
	Relational Kind = "RELATIONAL"
)

// Source : immutable once the registry is built. DB and Dialect are set only for relational sources.
type Source struct {
	Name    string
	Kind    Kind
	DB      *sql.DB
	Dialect dialect.Dialect
	UseView bool
}

// Dialer : opens a connection, swapped out in tests
type Dialer func(ctx context.Context, opts connection.Options) (*sql.DB, error)

// Registry : source name -> Source
type Registry struct {
	sources map[string]*Source
}

// NewRegistry : builds every source, dialing relational ones eagerly and concurrently
func NewRegistry(ctx context.Context, cfgs []sourcecfg.Source, dial Dialer) (*Registry, error) {
	var (
		wg  errgroup.Group
		reg = &Registry{sources: make(map[string]*Source, len(cfgs))}
	)
	if dial == nil {
		dial = connection.Dial
	}
	for i := range cfgs {
		cfg := cfgs[i]
		src := &Source{Name: cfg.Name, Kind: FlatFile}
		reg.sources[cfg.Name] = src
		if !cfg.IsRelational() {
			continue
		}
		d, err := dialect.For(dialect.Type(cfg.Driver))
		if err != nil {
			_ = wg.Wait()
			_ = reg.Close()
			return nil, fmt.Errorf("source %s : %w", cfg.Name, err)
		}
		src.Kind = Relational
		src.Dialect = d
		src.UseView = cfg.UseView
		wg.Go(func() error {
			db, err := dial(ctx, connection.Options{Driver: d.Type(), DSN: cfg.URL, QueryLogging: cfg.QueryLogging})
			if err != nil {
				return fmt.Errorf("source %s : %w", cfg.Name, err)
			}
			src.DB = db
			return nil
		})
	}
	if err := wg.Wait(); err != nil {
		_ = reg.Close()
		return nil, err
	}
	return reg, nil
}

// Resolve : the source registered under name
func (r *Registry) Resolve(name string) (*Source, error) {
	src, ok := r.sources[name]
	if !ok {
		return nil, &errs.ConfigurationError{Name: name, Reason: "source was never registered"}
	}
	return src, nil
}

// Has : whether name is a registered source
func (r *Registry) Has(name string) bool {
	_, ok := r.sources[name]
	return ok
}

// Close : closes every open source connection
func (r *Registry) Close() error {
	var finalErr error
	for name, src := range r.sources {
		if src.DB == nil {
			continue
		}
		if err := src.DB.Close(); err != nil {
			finalErr = multierror.Append(finalErr, fmt.Errorf("source %s : %w", name, err))
		}
	}
	return finalErr
}
