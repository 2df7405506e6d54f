package backup

import (
	"log/slog"

	"github.com/thoreinstein/rbak/internal/logging"
)

// Manager runs one backup: it resolves the source, dispatches on its kind
// and copies it.
type Manager struct {
	fileExt        string
	dirSuffix      string
	overwrite      bool
	unsupported    UnsupportedPolicy
	followSymlinks bool
	dryRun         bool
	logger         *slog.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithFileExtension sets the extension used for file backups.
func WithFileExtension(ext string) Option {
	return func(m *Manager) {
		m.fileExt = ext
	}
}

// WithDirSuffix sets the suffix appended to directory backups.
func WithDirSuffix(suffix string) Option {
	return func(m *Manager) {
		m.dirSuffix = suffix
	}
}

// WithOverwrite allows replacing an existing backup.
func WithOverwrite(overwrite bool) Option {
	return func(m *Manager) {
		m.overwrite = overwrite
	}
}

// WithUnsupported sets the policy for symlinks and special files in trees.
func WithUnsupported(p UnsupportedPolicy) Option {
	return func(m *Manager) {
		if p != "" {
			m.unsupported = p
		}
	}
}

// WithFollowSymlinks makes directory backups follow symlinks, with cycle
// detection.
func WithFollowSymlinks(follow bool) Option {
	return func(m *Manager) {
		m.followSymlinks = follow
	}
}

// WithDryRun makes the Manager resolve targets without writing anything.
func WithDryRun(dryRun bool) Option {
	return func(m *Manager) {
		m.dryRun = dryRun
	}
}

// WithLogger sets the logger for the Manager and its Copier.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// NewManager creates a new backup Manager with the given options.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		fileExt:     DefaultFileExtension,
		dirSuffix:   DefaultDirSuffix,
		unsupported: UnsupportedSkip,
		logger:      logging.NewDiscard(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Result is the outcome of one Manager invocation.
type Result struct {
	// Target is the resolved backup.
	Target *Target

	// Outcome describes what was copied. It is nil for dry runs.
	Outcome *Outcome

	// DryRun is true when nothing was written.
	DryRun bool
}

// Resolver returns a Resolver configured like the Manager.
func (m *Manager) Resolver() *Resolver {
	return NewResolver(m.fileExt, m.dirSuffix, m.overwrite)
}

// Copier returns a Copier configured like the Manager.
func (m *Manager) Copier() *Copier {
	return NewCopier(
		WithCopyLogger(m.logger),
		WithReplace(m.overwrite),
		WithUnsupportedPolicy(m.unsupported),
		WithSymlinkFollowing(m.followSymlinks),
	)
}

// Backup backs up source, whatever its kind.
func (m *Manager) Backup(source string) (*Result, error) {
	target, err := m.Resolver().Resolve(source)
	if err != nil {
		return nil, err
	}
	return m.run(target)
}

// BackupFile backs up the regular file source to <name>.<ext>.
func (m *Manager) BackupFile(source string) (*Result, error) {
	return m.backupAs(source, KindFile)
}

// BackupDir backs up the directory source to <name><suffix>.
//
// When the copy fails partway the returned Result still carries the partial
// Outcome and the error is a *CopyError with Partial set.
func (m *Manager) BackupDir(source string) (*Result, error) {
	return m.backupAs(source, KindDirectory)
}

func (m *Manager) backupAs(source string, kind Kind) (*Result, error) {
	target, err := m.Resolver().ResolveAs(source, kind)
	if err != nil {
		return nil, err
	}
	return m.run(target)
}

func (m *Manager) run(target *Target) (*Result, error) {
	log := m.logger.With("kind", target.Kind.String())
	log.Info("backing up", "src", target.Source, "dst", target.Destination, "replace", target.Replace)

	result := &Result{Target: target, DryRun: m.dryRun}
	if m.dryRun {
		return result, nil
	}

	c := m.Copier()
	var err error
	switch target.Kind {
	case KindFile:
		result.Outcome, err = c.CopyFile(target.Source, target.Destination)
	default:
		result.Outcome, err = c.CopyTree(target.Source, target.Destination)
	}
	if err != nil {
		return result, err
	}

	log.Info("backup complete",
		"dst", target.Destination,
		"files", result.Outcome.Files,
		"dirs", result.Outcome.Dirs,
		"bytes", result.Outcome.Bytes,
		"skipped", len(result.Outcome.Skipped))
	return result, nil
}
