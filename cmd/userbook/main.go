package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-isatty"

	"github.com/smileynet/userbook"
	"github.com/smileynet/userbook/internal/config"
	"github.com/smileynet/userbook/internal/form"
	"github.com/smileynet/userbook/internal/kv"
	"github.com/smileynet/userbook/internal/logr"
	"github.com/smileynet/userbook/internal/photo"
	"github.com/smileynet/userbook/internal/record"
	"github.com/smileynet/userbook/internal/userstore"
	"github.com/smileynet/userbook/internal/validate"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// closeTimeout bounds how long shutdown waits for queued snapshots.
const closeTimeout = 10 * time.Second

// Globals holds flags shared by every command.
type Globals struct {
	Config    string `help:"Extra config file layered over the defaults." type:"path" placeholder:"PATH"`
	Ephemeral bool   `help:"Keep users in memory only; nothing is read or written."`
}

// CLI is the top-level command structure for userbook.
type CLI struct {
	Globals

	Version kong.VersionFlag `help:"Show version." short:"V"`
	Tui     TuiCmd           `cmd:"" default:"1" help:"Open the interactive user form (default)."`
	List    ListCmd          `cmd:"" help:"List saved users."`
	Add     AddCmd           `cmd:"" help:"Add a user."`
	Edit    EditCmd          `cmd:"" help:"Edit a saved user."`
	Rm      RmCmd            `cmd:"" help:"Remove a saved user."`
	Export  ExportCmd        `cmd:"" help:"Print the stored user list as JSON."`
	Init    InitCmd          `cmd:"" help:"Write a starter config to .userbook/config.yaml."`
}

// loadConfig loads layered config from user and project paths, an optional
// explicit file, and env overrides.
func loadConfig(g *Globals) (*config.Config, error) {
	paths := []string{
		os.ExpandEnv("$HOME/.config/userbook/config.yaml"),
		".userbook/config.yaml",
	}
	if g.Config != "" {
		paths = append(paths, g.Config)
	}
	cfg, err := config.LoadLayered(paths...)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if g.Ephemeral {
		cfg.Storage.Backend = kv.BackendMemory
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// session is an opened store plus everything that must be released with it.
type session struct {
	store   *userstore.Store
	closers []io.Closer
}

// openSession opens the configured storage backend and a store over it.
// The store is not loaded.
func openSession(cfg *config.Config, log logr.Logger, opts ...userstore.Option) (*session, error) {
	storage, closer, err := kv.Open(cfg.Storage.Backend, cfg.Storage.Path)
	if err != nil {
		return nil, err
	}
	opts = append([]userstore.Option{
		userstore.WithKey(cfg.Storage.Key),
		userstore.WithLogger(log.WithName("userstore")),
	}, opts...)
	return &session{
		store:   userstore.New(storage, opts...),
		closers: []io.Closer{closer},
	}, nil
}

// close stops the store, then releases storage and log handles in order.
func (s *session) close() error {
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()
	errs := []error{s.store.Close(ctx)}
	for _, c := range s.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

// withCLIStore runs fn against a loaded, synchronously persisting store,
// logging to stderr.
func withCLIStore(g *Globals, fn func(s *userstore.Store) error) (err error) {
	cfg, err := loadConfig(g)
	if err != nil {
		return err
	}
	log, err := logr.New(os.Stderr, logr.Config{Verbosity: cfg.Log.Verbosity, Format: cfg.Log.Format})
	if err != nil {
		return err
	}
	sess, err := openSession(cfg, log, userstore.WithSyncPersist())
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sess.close(); err == nil {
			err = cerr
		}
	}()
	if err := loadUsers(context.Background(), sess.store); err != nil {
		return err
	}
	return fn(sess.store)
}

// loadUsers reads the stored list and fails when the slot could not be read,
// so no command writes over records it never saw.
func loadUsers(ctx context.Context, s *userstore.Store) error {
	s.Load(ctx)
	if err := s.LoadErr(); err != nil {
		return fmt.Errorf("loading users: %w", err)
	}
	return nil
}

// checkSaved reports a failed write of the last mutation.
func checkSaved(s *userstore.Store) error {
	if err := s.SaveErr(); err != nil {
		return fmt.Errorf("saving users: %w", err)
	}
	return nil
}

// photoArg turns a --photo value into a URI. Plain paths become file URIs.
func photoArg(v string) (string, error) {
	if v == "" || strings.Contains(v, "://") {
		return v, nil
	}
	uri, _, err := photo.FileURI(v)
	return uri, err
}

// --- tui ---

// TuiCmd opens the interactive form.
type TuiCmd struct {
	Theme string `help:"Override ui.theme (light or dark)."`
}

// teaRunner abstracts Bubble Tea program execution for testing.
type teaRunner interface {
	Run() (tea.Model, error)
}

// Run builds real dependencies and launches the form.
func (c *TuiCmd) Run(g *Globals) error {
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return fmt.Errorf("tui: requires a terminal (TTY)")
	}

	cfg, err := loadConfig(g)
	if err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	if c.Theme != "" {
		cfg.UI.Theme = c.Theme
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("tui: %w", err)
		}
	}

	// The form owns the terminal, so logs go to a file.
	log, logFile, err := logr.NewFile(cfg.Log.Path, logr.Config{Verbosity: cfg.Log.Verbosity, Format: cfg.Log.Format})
	if err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	sess, err := openSession(cfg, log)
	if err != nil {
		logFile.Close()
		return fmt.Errorf("tui: %w", err)
	}
	sess.closers = append(sess.closers, logFile)

	m := form.NewModel(sess.store,
		form.WithPicker(photo.NewDirPicker(cfg.Photo.LibraryDir, cfg.Photo.CameraCommand)),
		form.WithTheme(form.ThemeByName(cfg.UI.Theme)),
	)
	prog := tea.NewProgram(m, tea.WithAltScreen())

	runErr := c.run(true, prog)
	if err := sess.close(); err != nil && runErr == nil {
		return fmt.Errorf("tui: %w", err)
	}
	return runErr
}

// run executes the tea program, enabling testable wiring.
func (c *TuiCmd) run(isTTY bool, prog teaRunner) error {
	if !isTTY {
		return fmt.Errorf("tui: requires a terminal (TTY)")
	}
	_, err := prog.Run()
	return err
}

// --- list ---

// ListCmd prints saved users.
type ListCmd struct{}

// Run executes the list command.
func (c *ListCmd) Run(g *Globals) error {
	return withCLIStore(g, func(s *userstore.Store) error {
		return c.run(os.Stdout, s)
	})
}

func (c *ListCmd) run(w io.Writer, s *userstore.Store) error {
	users := s.Users()
	if len(users) == 0 {
		_, _ = fmt.Fprintln(w, "No users yet")
		return nil
	}
	t := table.New().
		Border(lipgloss.HiddenBorder()).
		Headers("ID", "NAME", "EMAIL", "PHONE", "PHOTO")
	for _, u := range users {
		t.Row(u.ID, u.Name, u.Email, u.Phone, u.Photo())
	}
	_, _ = fmt.Fprintln(w, t.Render())
	return nil
}

// --- add ---

// AddCmd adds one user.
type AddCmd struct {
	Name  string `help:"Display name."`
	Email string `help:"Email address."`
	Phone string `help:"Phone number, digits with optional leading +."`
	Photo string `help:"Photo file path or URI."`
}

// Run executes the add command.
func (c *AddCmd) Run(g *Globals) error {
	return withCLIStore(g, func(s *userstore.Store) error {
		return c.run(os.Stdout, s)
	})
}

func (c *AddCmd) run(w io.Writer, s *userstore.Store) error {
	uri, err := photoArg(c.Photo)
	if err != nil {
		return fmt.Errorf("add: %w", err)
	}
	f, err := validate.Form(c.Name, c.Email, c.Phone, uri)
	if err != nil {
		return fmt.Errorf("add: %w", err)
	}
	u := s.Add(f)
	if err := checkSaved(s); err != nil {
		return fmt.Errorf("add: %w", err)
	}
	_, _ = fmt.Fprintln(w, u.ID)
	return nil
}

// --- edit ---

// EditCmd replaces fields of a saved user. Unset flags keep current values.
type EditCmd struct {
	ID      string  `arg:"" help:"User ID."`
	Name    *string `help:"New display name."`
	Email   *string `help:"New email address."`
	Phone   *string `help:"New phone number."`
	Photo   *string `help:"New photo file path or URI." xor:"photo"`
	NoPhoto bool    `help:"Remove the photo." xor:"photo"`
}

// Run executes the edit command.
func (c *EditCmd) Run(g *Globals) error {
	return withCLIStore(g, func(s *userstore.Store) error {
		return c.run(os.Stdout, s)
	})
}

func (c *EditCmd) run(w io.Writer, s *userstore.Store) error {
	cur, ok := s.Get(c.ID)
	if !ok {
		return fmt.Errorf("edit: %s: %w", c.ID, userstore.ErrNotFound)
	}

	name, email, phone, uri := cur.Name, cur.Email, cur.Phone, cur.Photo()
	override(&name, c.Name)
	override(&email, c.Email)
	override(&phone, c.Phone)
	if c.Photo != nil {
		p, err := photoArg(*c.Photo)
		if err != nil {
			return fmt.Errorf("edit: %w", err)
		}
		uri = p
	}
	if c.NoPhoto {
		uri = ""
	}

	f, err := validate.Form(name, email, phone, uri)
	if err != nil {
		return fmt.Errorf("edit: %w", err)
	}
	if err := s.Update(c.ID, f); err != nil {
		return fmt.Errorf("edit: %w", err)
	}
	if err := checkSaved(s); err != nil {
		return fmt.Errorf("edit: %w", err)
	}
	_, _ = fmt.Fprintln(w, c.ID)
	return nil
}

func override(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

// --- rm ---

// RmCmd removes a saved user.
type RmCmd struct {
	ID string `arg:"" help:"User ID."`
}

// Run executes the rm command.
func (c *RmCmd) Run(g *Globals) error {
	return withCLIStore(g, func(s *userstore.Store) error {
		return c.run(os.Stdout, s)
	})
}

func (c *RmCmd) run(w io.Writer, s *userstore.Store) error {
	if err := s.Remove(c.ID); err != nil {
		return fmt.Errorf("rm: %w", err)
	}
	if err := checkSaved(s); err != nil {
		return fmt.Errorf("rm: %w", err)
	}
	_, _ = fmt.Fprintf(w, "removed %s\n", c.ID)
	return nil
}

// --- export ---

// ExportCmd prints the stored snapshot.
type ExportCmd struct {
	Output string `help:"Write to a file instead of stdout." short:"o" type:"path"`
}

// Run executes the export command.
func (c *ExportCmd) Run(g *Globals) error {
	return withCLIStore(g, func(s *userstore.Store) error {
		if c.Output == "" {
			return c.run(os.Stdout, s)
		}
		f, err := os.Create(c.Output)
		if err != nil {
			return fmt.Errorf("export: %w", err)
		}
		if err := c.run(f, s); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	})
}

func (c *ExportCmd) run(w io.Writer, s *userstore.Store) error {
	data, err := record.EncodeSnapshot(s.Users())
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if _, err := fmt.Fprintf(w, "%s\n", data); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	return nil
}

// --- init ---

// InitCmd writes the embedded starter config.
type InitCmd struct {
	Path  string `help:"Where to write the config." default:".userbook/config.yaml" type:"path"`
	Force bool   `help:"Overwrite an existing file."`
}

// Run executes the init command.
func (c *InitCmd) Run() error {
	return c.run(os.Stdout)
}

func (c *InitCmd) run(w io.Writer) error {
	if !c.Force {
		if _, err := os.Stat(c.Path); err == nil {
			return fmt.Errorf("init: %s already exists (use --force to overwrite)", c.Path)
		}
	}
	data, err := fs.ReadFile(userbook.Templates, userbook.ConfigTemplate)
	if err != nil {
		return fmt.Errorf("init: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(c.Path), 0o755); err != nil {
		return fmt.Errorf("init: %w", err)
	}
	if err := os.WriteFile(c.Path, data, 0o644); err != nil {
		return fmt.Errorf("init: %w", err)
	}
	_, _ = fmt.Fprintf(w, "wrote %s\n", c.Path)
	return nil
}

// Exit codes.
const (
	exitSuccess = 0
	exitInput   = 1
	exitSetup   = 2
)

// exitCode maps an error to the appropriate exit code.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var ve *validate.Error
	if errors.As(err, &ve) {
		return exitInput
	}
	if errors.Is(err, userstore.ErrNotFound) {
		return exitInput
	}
	return exitSetup
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("userbook"),
		kong.Description("Keep a small list of users with name, email, phone and photo."),
		kong.Vars{"version": version + " " + commit + " " + date},
		kong.Bind(&cli.Globals),
	)
	err := ctx.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(exitCode(err))
	}
}
