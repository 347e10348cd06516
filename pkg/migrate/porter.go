package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/baderkha/dbporter/pkg/migrate/config"
	"github.com/baderkha/dbporter/pkg/migrate/connection"
	"github.com/baderkha/dbporter/pkg/migrate/dialect"
	"github.com/baderkha/dbporter/pkg/migrate/errs"
	"github.com/baderkha/dbporter/pkg/migrate/extract"
	"github.com/baderkha/dbporter/pkg/migrate/load"
	"github.com/baderkha/dbporter/pkg/migrate/locate"
	"github.com/baderkha/dbporter/pkg/migrate/source"
	"github.com/baderkha/dbporter/pkg/migrate/state"
	"github.com/davecgh/go-spew/spew"
	"github.com/gofrs/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// Option : tweaks how a Porter is wired
type Option func(p *Porter)

// WithFs : filesystem holding the script root and the file checkpoint
func WithFs(fs afero.Fs) Option {
	return func(p *Porter) { p.fs = fs }
}

func WithLogger(log zerolog.Logger) Option {
	return func(p *Porter) { p.log = log }
}

// WithHook : registers a row hook that orders reference through before_insert
func WithHook(name string, hook RowHook) Option {
	return func(p *Porter) { p.hooks[name] = hook }
}

// WithStateManager : overrides the checkpoint backend picked from the config
func WithStateManager(m state.Manager) Option {
	return func(p *Porter) { p.state = m }
}

// WithDialer : overrides how source and destination connections are opened
func WithDialer(d source.Dialer) Option {
	return func(p *Porter) { p.dial = d }
}

// WithS3 : client used when the job pulls its script root from s3
func WithS3(api s3iface.S3API) Option {
	return func(p *Porter) { p.s3 = api }
}

// Porter : ports the configured tables one unit at a time, remembering completed units
// so a failed run can be resumed without redoing them.
type Porter struct {
	cfg         config.Config
	runID       string
	fs          afero.Fs
	log         zerolog.Logger
	dial        source.Dialer
	s3          s3iface.S3API
	hooks       map[string]RowHook
	state       state.Manager
	dest        *sql.DB
	destDialect dialect.Dialect
	sources     *source.Registry
	files       *locate.Resolver
	extractor   *extract.Extractor
	loader      *load.Loader
	completed   state.Keys
}

// NewPorter : dials every connection and builds the collaborators for cfg
func NewPorter(ctx context.Context, cfg config.Config, opts ...Option) (*Porter, error) {
	uid, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	p := &Porter{
		cfg:       cfg,
		runID:     uid.String(),
		fs:        afero.NewOsFs(),
		log:       zerolog.Nop(),
		dial:      connection.Dial,
		hooks:     builtinHooks(),
		completed: state.NewKeys(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.log = p.log.With().Str("run_id", p.runID).Logger()

	if err := p.init(ctx); err != nil {
		_ = p.Close()
		return nil, err
	}
	return p, nil
}

func (p *Porter) init(ctx context.Context) error {
	var err error
	p.destDialect, err = dialect.For(dialect.Type(p.cfg.Destination.Driver))
	if err != nil {
		return fmt.Errorf("destination : %w", err)
	}
	// one connection so scripts, truncates and loads run strictly in sequence
	p.dest, err = p.dial(ctx, connection.Options{
		Driver:       p.destDialect.Type(),
		DSN:          p.cfg.Destination.URL,
		QueryLogging: p.cfg.Destination.QueryLogging,
		MaxOpenConns: 1,
	})
	if err != nil {
		return fmt.Errorf("destination : %w", err)
	}
	p.sources, err = source.NewRegistry(ctx, p.cfg.Sources, p.dial)
	if err != nil {
		return err
	}
	if err := p.syncScripts(ctx); err != nil {
		return err
	}
	if p.state == nil {
		p.state, err = p.newStateManager(ctx)
		if err != nil {
			return err
		}
	}
	p.files = locate.NewResolver(p.fs, p.cfg.RootDir, p.sources.Has, p.cfg.Destination.Name)
	p.extractor = extract.New(p.files, p.sources, p.cfg.Destination.Name, p.log)
	p.loader = load.New(p.dest, p.destDialect, p.cfg.BatchRecordSize, p.log)
	return nil
}

func (p *Porter) newStateManager(ctx context.Context) (state.Manager, error) {
	switch p.cfg.Checkpoint.Backend {
	case config.CheckpointBackendSqlite:
		return state.NewSqliteManager(ctx, p.cfg.Checkpoint.Path)
	case config.CheckpointBackendFile, "":
		return state.NewFileManager(p.fs, p.cfg.Checkpoint.Path), nil
	}
	return nil, &errs.ConfigurationError{Name: p.cfg.Checkpoint.Backend, Reason: "unknown checkpoint backend"}
}

func (p *Porter) syncScripts(ctx context.Context) error {
	opts := p.cfg.ScriptsS3
	if opts == nil || opts.Bucket == "" {
		return nil
	}
	if p.s3 == nil {
		p.s3 = s3.New(session.Must(session.NewSession(aws.NewConfig())))
	}
	n, err := locate.SyncFromS3(ctx, p.s3, opts.Bucket, opts.PrefixOverride, p.fs, p.cfg.RootDir)
	if err != nil {
		return err
	}
	p.log.Info().Str("bucket", opts.Bucket).Int("files", n).Msg("[SYNC SCRIPTS FROM S3]")
	return nil
}

// RunID : id stamped on log lines and checkpoints of this porter
func (p *Porter) RunID() string {
	return p.runID
}

func (p *Porter) Run(ctx context.Context, refresh bool) error {
	orders := p.determineOrders(ctx, refresh)
	if e := p.log.Debug(); e.Enabled() {
		e.Str("orders", spew.Sdump(orders)).Msg("resolved orders")
	}
	if err := p.preflight(orders); err != nil {
		return err
	}
	if err := p.truncate(ctx, p.truncateTargets(refresh, orders)); err != nil {
		return err
	}
	for _, o := range orders {
		if err := p.migrate(ctx, o); err != nil {
			p.onFailure(ctx, err)
			return err
		}
		p.completed.Add(state.UnitKey(o))
	}
	if err := p.runInitials(ctx); err != nil {
		p.onFailure(ctx, err)
		return err
	}
	if err := p.state.Clear(ctx); err != nil {
		p.log.Warn().Err(err).Msg("could not clear checkpoint after a successful run")
	}
	p.log.Info().Int("units", len(orders)).Msg("[DONE]")
	return nil
}

// determineOrders : the units still to run. Loaded checkpoint keys seed the completed set so
// a resumed run that fails again still remembers earlier progress.
func (p *Porter) determineOrders(ctx context.Context, refresh bool) []config.Order {
	p.completed = state.NewKeys()
	if refresh {
		p.log.Info().Msg("FRESH")
		return p.cfg.Orders
	}
	cp, err := p.state.Load(ctx)
	if err != nil {
		p.log.Warn().Err(err).Msg("checkpoint unreadable, treating as absent")
	}
	if cp == nil {
		p.log.Info().Msg("FRESH")
		return p.cfg.Orders
	}
	p.completed = cp.Set()
	var remaining []config.Order
	for _, o := range p.cfg.Orders {
		if !p.completed.Has(state.UnitKey(o)) {
			remaining = append(remaining, o)
		}
	}
	p.log.Info().Str("resumed_run_id", cp.RunID).Int("skipped", len(p.cfg.Orders)-len(remaining)).Msg("NOT FRESH")
	return remaining
}

// truncateTargets : a refresh wipes the truncate list (or every ordered table), a resume only
// the tables it is about to port again
func (p *Porter) truncateTargets(refresh bool, orders []config.Order) []string {
	if refresh {
		if list, ok := p.cfg.TruncateList(); ok {
			return dedupe(list)
		}
	}
	tables := make([]string, 0, len(orders))
	for _, o := range orders {
		tables = append(tables, o.Table)
	}
	return dedupe(tables)
}

// preflight : resolves every name the run needs before the destination is touched
func (p *Porter) preflight(orders []config.Order) error {
	for _, o := range orders {
		if _, err := p.extractor.Prepare(o.Table); err != nil {
			return err
		}
		for _, script := range []string{o.BeforeScript(), o.AfterScript()} {
			if script == "" {
				continue
			}
			if _, err := p.files.Locate(script, errs.ScopeDest); err != nil {
				return err
			}
		}
		if hook := o.BeforeInsert(); hook != "" {
			if _, ok := p.hooks[hook]; !ok {
				return &errs.ConfigurationError{Name: hook, Reason: "row hook was never registered"}
			}
		}
	}
	for _, script := range p.cfg.Initials {
		if _, err := p.files.Locate(script, errs.ScopeDest); err != nil {
			return err
		}
	}
	return nil
}

// truncate : runs on one pinned connection so the session scoped foreign key toggle covers
// every statement. Enforcement is restored to its previous state even when a truncate fails.
func (p *Porter) truncate(ctx context.Context, tables []string) (finalErr error) {
	if len(tables) == 0 {
		return nil
	}
	p.log.Info().Strs("tables", tables).Msgf("[TRUNCATE TABLE IN %s]: %s", strings.ToUpper(p.cfg.Destination.Name), strings.Join(tables, ", "))
	wrap := func(err error) error {
		return &errs.TruncateError{Tables: tables, Err: err}
	}
	conn, err := p.dest.Conn(ctx)
	if err != nil {
		return wrap(err)
	}
	defer conn.Close()
	enforced := false
	if p.destDialect.DisableForeignKeys() != "" {
		if enforced, err = dialect.ForeignKeysEnforced(ctx, p.destDialect, conn); err != nil {
			return wrap(err)
		}
	}
	// a session that was not enforcing foreign keys is left as it was
	if enforced {
		if _, err := conn.ExecContext(ctx, p.destDialect.DisableForeignKeys()); err != nil {
			return wrap(err)
		}
		defer func() {
			if _, err := conn.ExecContext(ctx, p.destDialect.EnableForeignKeys()); err != nil {
				finalErr = multierror.Append(finalErr, wrap(err))
			}
		}()
	}
	for _, t := range tables {
		if _, err := conn.ExecContext(ctx, p.destDialect.Truncate(t)); err != nil {
			return wrap(fmt.Errorf("%s : %w", t, err))
		}
	}
	return nil
}

// migrate : before script, extract, row hook, load, after script
func (p *Porter) migrate(ctx context.Context, o config.Order) error {
	if script := o.BeforeScript(); script != "" {
		if err := p.runScript(ctx, script, "[EXECUTE SQL SCRIPT IN %s]: %s.sql"); err != nil {
			return err
		}
	}
	rs, err := p.extractor.Extract(ctx, o.Table)
	if err != nil {
		return err
	}
	if name := o.BeforeInsert(); name != "" {
		if err := rs.Each(p.hooks[name]); err != nil {
			return fmt.Errorf("before_insert %s on %s : %w", name, o.Table, err)
		}
	}
	n, err := p.loader.Load(ctx, rs, o.Table)
	if err != nil {
		return err
	}
	if script := o.AfterScript(); script != "" {
		if err := p.runScript(ctx, script, "[EXECUTE SQL SCRIPT IN %s]: %s.sql"); err != nil {
			return err
		}
	}
	p.log.Info().Str("table", o.Table).Int("rows_written", n).Msg("unit complete")
	return nil
}

func (p *Porter) runInitials(ctx context.Context) error {
	for _, script := range p.cfg.Initials {
		if err := p.runScript(ctx, script, "[EXECUTE INITIAL SQL SCRIPT IN %s]: %s.sql"); err != nil {
			return err
		}
	}
	return nil
}

// runScript : executes the whole destination script in one statement call
func (p *Porter) runScript(ctx context.Context, name string, msg string) error {
	_, body, err := p.files.Read(name, errs.ScopeDest)
	if err != nil {
		return err
	}
	p.log.Info().Str("script", name).Msgf(msg, strings.ToUpper(p.cfg.Destination.Name), name)
	if _, err := p.dest.ExecContext(ctx, body); err != nil {
		return &errs.ScriptExecutionError{Script: name, Err: err}
	}
	return nil
}

// onFailure : database failures persist progress so far, setup errors leave the checkpoint alone
func (p *Porter) onFailure(ctx context.Context, err error) {
	if !errs.IsDatabaseFailure(err) {
		p.log.Error().Err(err).Msg("run aborted")
		return
	}
	cp := &state.Checkpoint{RunID: p.runID, Keys: p.completed.Sorted()}
	if saveErr := p.state.Save(ctx, cp); saveErr != nil {
		p.log.Error().Err(saveErr).Msg("could not persist checkpoint")
	}
	p.log.Error().Err(err).Int("completed_units", len(cp.Keys)).Msg("run aborted, checkpoint saved")
}

// Close : releases every connection the porter opened
func (p *Porter) Close() error {
	var finalErr error
	if p.sources != nil {
		if err := p.sources.Close(); err != nil {
			finalErr = multierror.Append(finalErr, err)
		}
	}
	if p.dest != nil {
		if err := p.dest.Close(); err != nil {
			finalErr = multierror.Append(finalErr, fmt.Errorf("destination : %w", err))
		}
	}
	if c, ok := p.state.(io.Closer); ok {
		if err := c.Close(); err != nil {
			finalErr = multierror.Append(finalErr, fmt.Errorf("checkpoint : %w", err))
		}
	}
	return finalErr
}

func dedupe(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}
