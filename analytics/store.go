package analytics

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"
)

const dayLayout = "2006-01-02"

// Store keeps daily view counters in a SQLite database.
type Store struct {
	db *sql.DB
}

// NewStore creates the counter table in db if needed.
func NewStore(db *sql.DB) (*Store, error) {
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		return nil, fmt.Errorf("ensure analytics schema: %w", err)
	}
	return s, nil
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS page_views (
    day TEXT NOT NULL,
    path TEXT NOT NULL,
    referrer TEXT NOT NULL DEFAULT '',
    device TEXT NOT NULL DEFAULT '',
    bot TEXT NOT NULL DEFAULT '',
    views INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (day, path, referrer, device, bot)
);
CREATE INDEX IF NOT EXISTS page_views_day ON page_views (day);
`)
	return err
}

// Record counts one view.
func (s *Store) Record(ctx context.Context, v View) error {
	at := v.At
	if at.IsZero() {
		at = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO page_views (day, path, referrer, device, bot, views) VALUES (?, ?, ?, ?, ?, 1)
ON CONFLICT (day, path, referrer, device, bot) DO UPDATE SET views = views + 1`,
		at.UTC().Format(dayLayout), v.Path, v.Referrer, v.Device, v.Bot)
	if err != nil {
		return fmt.Errorf("record view: %w", err)
	}
	return nil
}

// Summary aggregates the last days days up to now. Lists hold at most limit
// entries.
func (s *Store) Summary(ctx context.Context, days, limit int, now time.Time) (*Summary, error) {
	from := now.UTC().AddDate(0, 0, -(days - 1)).Format(dayLayout)
	sum := &Summary{Days: days}

	err := s.db.QueryRowContext(ctx, `
SELECT COALESCE(SUM(CASE WHEN bot = '' THEN views END), 0),
       COALESCE(SUM(CASE WHEN bot != '' THEN views END), 0)
FROM page_views WHERE day >= ?`, from).Scan(&sum.Views, &sum.BotViews)
	if err != nil {
		return nil, fmt.Errorf("count views: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT path, SUM(views) AS n FROM page_views
WHERE day >= ? AND bot = ''
GROUP BY path ORDER BY n DESC, path LIMIT ?`, from, limit)
	if err != nil {
		return nil, fmt.Errorf("top pages: %w", err)
	}
	for rows.Next() {
		var ps PageStat
		if err := rows.Scan(&ps.Path, &ps.Views); err != nil {
			rows.Close()
			return nil, err
		}
		sum.TopPages = append(sum.TopPages, ps)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	dims := []struct {
		column string
		where  string
		dst    *[]DimensionStat
	}{
		{"referrer", "bot = '' AND referrer != ''", &sum.Referrers},
		{"device", "bot = ''", &sum.Devices},
		{"bot", "bot != ''", &sum.Bots},
	}
	for _, d := range dims {
		// column and where are constants from the table above.
		q := fmt.Sprintf(`SELECT %s, SUM(views) AS n FROM page_views
WHERE day >= ? AND %s GROUP BY %s ORDER BY n DESC, %s LIMIT ?`, d.column, d.where, d.column, d.column)
		stats, err := s.dimension(ctx, q, from, limit)
		if err != nil {
			return nil, fmt.Errorf("%s breakdown: %w", d.column, err)
		}
		*d.dst = stats
	}

	daily, err := s.dimension(ctx, `SELECT day, SUM(views) FROM page_views
WHERE day >= ? AND bot = '' GROUP BY day ORDER BY day LIMIT ?`, from, days)
	if err != nil {
		return nil, fmt.Errorf("daily views: %w", err)
	}
	sum.Daily = fillDays(daily, now, days)
	return sum, nil
}

func (s *Store) dimension(ctx context.Context, q string, args ...any) ([]DimensionStat, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []DimensionStat
	for rows.Next() {
		var d DimensionStat
		if err := rows.Scan(&d.Name, &d.Count); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// fillDays returns one entry per day, oldest first, with zeros for days
// without views.
func fillDays(sparse []DimensionStat, now time.Time, days int) []DailyView {
	counts := make(map[string]int, len(sparse))
	for _, d := range sparse {
		counts[d.Name] = d.Count
	}
	out := make([]DailyView, 0, days)
	for i := days - 1; i >= 0; i-- {
		day := now.UTC().AddDate(0, 0, -i).Format(dayLayout)
		out = append(out, DailyView{Date: day, Views: counts[day]})
	}
	return out
}

// Cleanup removes counters older than retentionDays.
func (s *Store) Cleanup(ctx context.Context, retentionDays int) (int64, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays).Format(dayLayout)
	res, err := s.db.ExecContext(ctx, `DELETE FROM page_views WHERE day < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("cleanup page_views: %w", err)
	}
	return res.RowsAffected()
}

// StartCleanupScheduler runs Cleanup every interval. Returns a stop function.
func (s *Store) StartCleanupScheduler(retentionDays int, interval time.Duration, logf func(format string, args ...any)) func() {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-ticker.C:
				if _, err := s.Cleanup(context.Background(), retentionDays); err != nil {
					logf("analytics cleanup: %v", err)
				}
			case <-done:
				ticker.Stop()
				return
			}
		}
	}()

	var once sync.Once
	return func() { once.Do(func() { close(done) }) }
}
