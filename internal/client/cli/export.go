package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/leadgrid/internal/client/services"
)

// Export writes the filtered grid as CSV to a local file ("export" or
// "export file <path>") or to the configured bucket ("export s3").
func (a *App) Export(ctx context.Context, args []string) error {
	if err := a.requireLogin(); err != nil {
		return err
	}

	target := "file"
	if len(args) > 0 {
		target = args[0]
	}

	switch target {
	case "file":
		path := "leads-" + a.clock.Now().Format("20060102-150405") + ".csv"
		if len(args) > 1 {
			path = args[1]
		}
		return a.exportFile(ctx, path)
	case "s3":
		return a.exportS3(ctx)
	default:
		a.println("Usage: export [file <path>|s3]")
		return fmt.Errorf("unknown export target %q", target)
	}
}

func (a *App) exportFile(ctx context.Context, path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		a.printf("Export failed: %v\n", err)
		return err
	}

	n, err := a.exporter.WriteCSV(ctx, f, a.rows.Filters())
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		a.printf("Export failed: %s\n", services.DisplayMessage(err))
		return err
	}

	a.printf("Exported %d leads to %s\n", n, path)
	return nil
}

func (a *App) exportS3(ctx context.Context) error {
	up, err := a.s3()
	if err != nil {
		a.printf("S3 export unavailable: %v\n", err)
		return err
	}

	var buf bytes.Buffer
	n, err := a.exporter.WriteCSV(ctx, &buf, a.rows.Filters())
	if err != nil {
		a.printf("Export failed: %s\n", services.DisplayMessage(err))
		return err
	}

	key := up.NewKey()
	link, err := up.Upload(ctx, key, &buf)
	if err != nil {
		a.log.Error(ctx, "s3 upload failed", "key", key, "error", err)
		a.printf("Upload failed: %v\n", err)
		return err
	}

	a.printf("Exported %d leads to %s\n", n, key)
	a.printf("Download link: %s\n", link)
	return nil
}

func (a *App) s3() (Uploader, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.uploader != nil {
		return a.uploader, nil
	}
	if a.newUploader == nil {
		return nil, fmt.Errorf("no bucket configured")
	}
	up, err := a.newUploader(context.Background())
	if err != nil {
		return nil, err
	}
	a.uploader = up
	return up, nil
}

// Stats prints the request and cache counters gathered so far.
func (a *App) Stats(ctx context.Context) error {
	if a.stats == nil {
		a.println("Metrics are disabled.")
		return nil
	}
	samples, err := a.stats.Counters()
	if err != nil {
		a.log.Warn(ctx, "failed to gather metrics", "error", err)
		return err
	}
	a.println(renderStats(samples))
	return nil
}
