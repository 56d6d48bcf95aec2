// Package export пишет суточную сводку в CSV раз в день.
package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/robfig/cron/v3"
)

type ClickCounter interface {
	CountClicksBetween(ctx context.Context, action string, from, to time.Time) (int64, error)
}

type UserCounter interface {
	CountNewBetween(ctx context.Context, from, to time.Time) (int64, error)
}

type Exporter struct {
	path   string
	clicks ClickCounter
	users  UserCounter
	now    func() time.Time
}

func NewExporter(path string, clicks ClickCounter, users UserCounter) *Exporter {
	return &Exporter{
		path:   path,
		clicks: clicks,
		users:  users,
		now:    time.Now,
	}
}

// Schedule registers the daily run at 00:05 UTC, matching the report time
// of the previous reporting pipeline. Errors are logged, never fatal.
func (e *Exporter) Schedule(c *cron.Cron) error {
	_, err := c.AddFunc("5 0 * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := e.Run(ctx); err != nil {
			log.Printf("daily export failed: %v", err)
		}
	})
	return err
}

// Run appends yesterday's row: date, new users, redirect clicks, view clicks.
func (e *Exporter) Run(ctx context.Context) error {
	to := e.now().UTC().Truncate(24 * time.Hour)
	from := to.AddDate(0, 0, -1)

	newUsers, err := e.users.CountNewBetween(ctx, from, to)
	if err != nil {
		return fmt.Errorf("count new users: %w", err)
	}

	redirects, err := e.clicks.CountClicksBetween(ctx, "redirect", from, to)
	if err != nil {
		return fmt.Errorf("count redirects: %w", err)
	}

	views, err := e.clicks.CountClicksBetween(ctx, "view", from, to)
	if err != nil {
		return fmt.Errorf("count views: %w", err)
	}

	f, err := os.OpenFile(e.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open export file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat export file: %w", err)
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write([]string{"date", "new_users", "redirect_clicks", "view_clicks"}); err != nil {
			return err
		}
	}

	row := []string{
		from.Format("2006-01-02"),
		strconv.FormatInt(newUsers, 10),
		strconv.FormatInt(redirects, 10),
		strconv.FormatInt(views, 10),
	}
	if err := w.Write(row); err != nil {
		return err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}

	log.Printf("daily export written: %v", row)
	return nil
}
