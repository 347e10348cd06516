// package locate
//
// maps table and script names to the .sql / .csv files that back them
package locate

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/baderkha/dbporter/pkg/migrate/errs"
	"github.com/spf13/afero"
)

// Location : owning source (or destination) directory name plus the file path
type Location struct {
	Owner string
	Path  string
}

// Resolver : walks the root directory once on first lookup and serves every lookup after
// that from the cached map. Files under a directory named after a registered source land in
// the source bucket, files under the destination's directory in the dest bucket.
type Resolver struct {
	fs       afero.Fs
	root     string
	isSource func(name string) bool
	destName string

	once    sync.Once
	scanErr error
	sources map[string]Location
	dest    map[string]Location
}

// NewResolver : isSource reports whether a directory name is a registered source
func NewResolver(fs afero.Fs, root string, isSource func(name string) bool, destName string) *Resolver {
	return &Resolver{fs: fs, root: root, isSource: isSource, destName: destName}
}

// Locate : file backing name in the requested scope
func (r *Resolver) Locate(name string, scope errs.Scope) (Location, error) {
	r.once.Do(r.scan)
	if r.scanErr != nil {
		return Location{}, r.scanErr
	}
	bucket := r.sources
	if scope == errs.ScopeDest {
		bucket = r.dest
	}
	loc, ok := bucket[name]
	if !ok {
		return Location{}, &errs.NotFoundError{Name: name, Scope: scope}
	}
	return loc, nil
}

// Read : full text of the file backing name
func (r *Resolver) Read(name string, scope errs.Scope) (Location, string, error) {
	loc, err := r.Locate(name, scope)
	if err != nil {
		return loc, "", err
	}
	b, err := afero.ReadFile(r.fs, loc.Path)
	if err != nil {
		return loc, "", fmt.Errorf("locate : could not read %s : %w", loc.Path, err)
	}
	return loc, string(b), nil
}

func (r *Resolver) scan() {
	r.sources = make(map[string]Location)
	r.dest = make(map[string]Location)
	r.scanErr = afero.Walk(r.fs, r.root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		ext := filepath.Ext(info.Name())
		if ext != ".sql" && ext != ".csv" {
			return nil
		}
		stem := strings.TrimSuffix(info.Name(), ext)
		dir := filepath.Base(filepath.Dir(path))
		switch {
		case r.isSource(dir):
			r.sources[stem] = Location{Owner: dir, Path: path}
		case dir == r.destName:
			r.dest[stem] = Location{Owner: dir, Path: path}
		}
		return nil
	})
	if r.scanErr != nil {
		r.scanErr = fmt.Errorf("locate : could not scan %s : %w", r.root, r.scanErr)
	}
}
