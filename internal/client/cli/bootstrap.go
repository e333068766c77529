package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"

	"github.com/dmitrijs2005/leadgrid/internal/client/client"
	"github.com/dmitrijs2005/leadgrid/internal/client/config"
	"github.com/dmitrijs2005/leadgrid/internal/client/export"
	"github.com/dmitrijs2005/leadgrid/internal/client/grid"
	"github.com/dmitrijs2005/leadgrid/internal/client/metrics"
	"github.com/dmitrijs2005/leadgrid/internal/client/repositories/blocks"
	"github.com/dmitrijs2005/leadgrid/internal/client/repositories/cookies"
	"github.com/dmitrijs2005/leadgrid/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/leadgrid/internal/client/services"
	"github.com/dmitrijs2005/leadgrid/internal/cryptox"
	"github.com/dmitrijs2005/leadgrid/internal/logging"
	"github.com/jonboulle/clockwork"
)

// NewApp wires the production App from cfg: the local database, the sealed
// cookie jar, the HTTP transport with metrics, the session and the grid.
// The returned func releases everything NewApp opened.
func NewApp(ctx context.Context, cfg *config.Config, in io.Reader, out io.Writer) (*App, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	fail := func(err error) (*App, func(), error) {
		cleanup()
		return nil, nil, err
	}

	logOut := io.Writer(os.Stderr)
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return fail(fmt.Errorf("open log file: %w", err))
		}
		closers = append(closers, func() { _ = f.Close() })
		logOut = f
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat, logOut)

	db, err := client.InitDatabase(ctx, cfg.DatabasePath)
	if err != nil {
		return fail(fmt.Errorf("db init error: %w", err))
	}
	closers = append(closers, func() { _ = db.Close() })

	secret, err := loadSecret(ctx, cfg.KeyPath, db, logger)
	if err != nil {
		return fail(err)
	}
	sealer, err := cryptox.NewSealerForPurpose(secret, "cookies")
	clear(secret)
	if err != nil {
		return fail(fmt.Errorf("cookie sealer: %w", err))
	}

	jar, err := client.NewPersistentJar(ctx, cfg.BaseURL, cookies.NewSQLiteRepository(db, sealer), logger)
	if err != nil {
		return fail(fmt.Errorf("cookie jar: %w", err))
	}

	m := metrics.New()
	opts := []client.Option{
		client.WithTransport(m.RoundTripper(http.DefaultTransport)),
		client.WithLogger(logger),
	}
	if cfg.RequestTimeout > 0 {
		opts = append(opts, client.WithTimeout(cfg.RequestTimeout))
	}
	c, err := client.NewHTTPClient(cfg.BaseURL, jar, opts...)
	if err != nil {
		return fail(err)
	}
	closers = append(closers, func() { _ = c.Close() })

	identity := metadata.NewSQLiteRepository(db)
	session := services.NewSession(c,
		services.WithSessionLogger(logger),
		services.WithIdentityCache(identity),
	)
	c.SetUnauthorizedHook(session.Expire)

	source := grid.NewDataSource(c, logger)
	rows := grid.NewRowModel(source,
		grid.WithBlockSize(cfg.PageSize),
		grid.WithBlockStore(blocks.NewSQLiteRepository(db, clockwork.NewRealClock())),
		grid.WithObserver(m),
		grid.WithLogger(logger),
	)

	app := New(Deps{
		Config:   cfg,
		Session:  session,
		Leads:    services.NewLeadService(c, logger),
		Rows:     rows,
		Exporter: export.NewExporter(source, cfg.PageSize),
		NewUploader: func(ctx context.Context) (Uploader, error) {
			u, err := export.NewS3Uploader(ctx, cfg.S3())
			if err != nil {
				return nil, err
			}
			return u, nil
		},
		Stats:    m,
		Pinger:   c,
		Identity: identity,
		Logger:   logger,
		In:       in,
		Out:      out,
	})
	closers = append(closers, app.Close)

	return app, cleanup, nil
}

// loadSecret reads the device secret, creating it on first use. Data sealed
// or cached under an earlier secret cannot be read with a new one, so the
// local tables are emptied whenever the secret is generated.
func loadSecret(ctx context.Context, path string, db *sql.DB, logger logging.Logger) ([]byte, error) {
	_, statErr := os.Stat(path)
	fresh := errors.Is(statErr, fs.ErrNotExist)

	secret, err := cryptox.LoadOrCreateSecret(path)
	if err != nil {
		return nil, fmt.Errorf("device secret: %w", err)
	}

	if fresh {
		logger.Info(ctx, "new device secret, wiping local data", "path", path)
		if err := client.WipeLocalData(ctx, db); err != nil {
			return nil, fmt.Errorf("wipe local data: %w", err)
		}
	}
	return secret, nil
}
