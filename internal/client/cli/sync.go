package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/wordmaster/internal/client/services"
)

func formatWatermark(ts int64) string {
	if ts <= 0 {
		return "never"
	}
	return time.Unix(ts, 0).Local().Format("2006-01-02 15:04:05")
}

// Sync runs one synchronization with the server and reports its direction.
func (a *App) Sync(ctx context.Context) error {
	printlnFn(mutedStyle.Render("Syncing..."))

	res, err := a.syncService.Sync(ctx)
	if err != nil {
		return err
	}

	switch res.Action {
	case services.ActionDownloaded:
		if s := a.currentSession(); s != nil {
			if err := a.authService.EnsureMirrored(ctx, s); err != nil {
				return err
			}
		}
		printlnFn(okStyle.Render(fmt.Sprintf("Downloaded server data (version %s)", formatWatermark(res.Timestamp))))
	case services.ActionUploaded:
		printlnFn(okStyle.Render(fmt.Sprintf("Uploaded local data (version %s)", formatWatermark(res.Timestamp))))
	default:
		printlnFn("Already up to date")
	}
	return nil
}
