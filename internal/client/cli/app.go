package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/dmitrijs2005/leadgrid/internal/client/config"
	"github.com/dmitrijs2005/leadgrid/internal/client/export"
	"github.com/dmitrijs2005/leadgrid/internal/client/grid"
	"github.com/dmitrijs2005/leadgrid/internal/client/metrics"
	"github.com/dmitrijs2005/leadgrid/internal/client/models"
	"github.com/dmitrijs2005/leadgrid/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/leadgrid/internal/client/services"
	"github.com/dmitrijs2005/leadgrid/internal/logging"
	"github.com/jonboulle/clockwork"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// Pinger reports whether the backend is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Uploader stores an export and returns a link to it.
type Uploader interface {
	NewKey() string
	Upload(ctx context.Context, key string, body io.Reader) (string, error)
}

// StatsSource exposes the client's counters.
type StatsSource interface {
	Counters() ([]metrics.Sample, error)
}

// Deps are the collaborators the App is built from.
type Deps struct {
	Config   *config.Config
	Session  services.Session
	Leads    services.LeadService
	Rows     *grid.RowModel
	Exporter *export.Exporter
	// NewUploader is called on the first "export s3"; nil disables it.
	NewUploader func(ctx context.Context) (Uploader, error)
	Stats       StatsSource
	Pinger      Pinger
	Identity    metadata.Repository
	Clock       clockwork.Clock
	Logger      logging.Logger
	In          io.Reader
	Out         io.Writer
}

type App struct {
	config      *config.Config
	session     services.Session
	leads       services.LeadService
	rows        *grid.RowModel
	exporter    *export.Exporter
	newUploader func(ctx context.Context) (Uploader, error)
	uploader    Uploader
	stats       StatsSource
	pinger      Pinger
	identity    metadata.Repository
	clock       clockwork.Clock
	log         logging.Logger
	reader      *bufio.Reader
	out         io.Writer

	mu      sync.Mutex
	mode    Mode
	user    string
	page    int
	current []models.Lead

	unsubscribe []func()
}

// New builds an App and subscribes it to session and lead changes.
// Successful lead mutations refresh the row model. Call Close to unsubscribe.
func New(d Deps) *App {
	a := &App{
		config:      d.Config,
		session:     d.Session,
		leads:       d.Leads,
		rows:        d.Rows,
		exporter:    d.Exporter,
		newUploader: d.NewUploader,
		stats:       d.Stats,
		pinger:      d.Pinger,
		identity:    d.Identity,
		clock:       d.Clock,
		log:         d.Logger,
		reader:      bufio.NewReader(d.In),
		out:         d.Out,
		mode:        ModeOnline,
		user:        signedInAs(d.Session.State()),
	}
	if a.clock == nil {
		a.clock = clockwork.NewRealClock()
	}
	if a.log == nil {
		a.log = logging.Discard()
	}
	if a.out == nil {
		a.out = io.Discard
	}

	a.unsubscribe = append(a.unsubscribe,
		a.leads.Subscribe(a.onMutation),
		a.session.Subscribe(a.onSessionChange),
	)
	return a
}

func (a *App) Close() {
	for _, fn := range a.unsubscribe {
		fn()
	}
	a.unsubscribe = nil
}

func (a *App) onMutation(m services.Mutation) {
	ctx := context.Background()
	a.log.Debug(ctx, "lead changed, refreshing grid", "kind", string(m.Kind), "id", m.ID.String())
	if _, err := a.rows.Refresh(ctx); err != nil {
		a.log.Warn(ctx, "grid refresh failed", "error", err)
	}
}

// onSessionChange drops every cached page when the signed-in user goes away
// or changes, whether they logged out or the backend rejected the session.
// Bootstrap ending anonymous keeps the snapshots for offline viewing.
func (a *App) onSessionChange(st services.State) {
	next := signedInAs(st)
	a.mu.Lock()
	left := a.user != "" && a.user != next
	a.user = next
	a.mu.Unlock()

	if left {
		a.dropPages(context.Background())
	}
}

// signedInAs is the email of the authenticated user, or "" for anyone else.
func signedInAs(st services.State) string {
	if st.Status != services.Authenticated || st.Identity == nil {
		return ""
	}
	return st.Identity.Email
}

func (a *App) dropPages(ctx context.Context) {
	a.mu.Lock()
	a.page = 0
	a.current = nil
	a.mu.Unlock()

	if err := a.rows.Reset(ctx); err != nil {
		a.log.Warn(ctx, "failed to drop cached pages", "error", err)
	}
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *App) Mode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()

	if changed {
		a.log.Info(context.Background(), "connectivity changed", "mode", string(mode))
		a.printf("Switched to %s mode\n", mode)
	}
}

func (a *App) isLoggedIn() bool {
	return a.session.State().Status == services.Authenticated
}

func (a *App) getStatus() string {
	s := ""
	if st := a.session.State(); st.Identity != nil {
		s = st.Identity.Email + " "
	}
	s += string(a.Mode())
	return fmt.Sprintf("(%s)", s)
}

// Run bootstraps the session, starts the connectivity watcher and blocks in
// the REPL until the user exits or ctx is done.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.println("Lead grid CLI (type 'help' for commands)")

	if err := a.pinger.Ping(ctx); err != nil {
		a.setMode(ModeOffline)
	}

	st := a.session.Bootstrap(ctx)
	a.greet(ctx, st)

	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	runREPL(ctx, a, a.getStatus, a.reader)
}

func (a *App) greet(ctx context.Context, st services.State) {
	if st.Status == services.Authenticated {
		a.printf("Signed in as %s\n", st.Identity.Email)
		return
	}
	if a.Mode() == ModeOffline && a.identity != nil {
		if u, err := metadata.LoadIdentity(ctx, a.identity); err == nil && u != nil {
			a.printf("Backend unreachable. Last signed in as %s; cached pages are available.\n", u.Email)
			return
		}
	}
	a.println("Not signed in. Use 'login' or 'register'.")
}
