package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/serroba/shortlink/internal/analytics"
	"github.com/serroba/shortlink/internal/shortener"
)

const clickColumns = `id::text, short_url_id::text, code, ip_address, browser, operating_system, device_type,
	referrer, clicked_at`

// sortColumns whitelists ORDER BY targets; user input never reaches the query text.
var sortColumns = map[analytics.SortField]string{
	analytics.SortClickedAt:       "clicked_at",
	analytics.SortBrowser:         "browser",
	analytics.SortOperatingSystem: "operating_system",
	analytics.SortDeviceType:      "device_type",
	analytics.SortReferrer:        "referrer",
	analytics.SortIPAddress:       "ip_address",
}

// PostgresClickStore is a PostgreSQL implementation of analytics.Store.
type PostgresClickStore struct {
	pool *pgxpool.Pool
}

// NewPostgresClickStore creates a new PostgreSQL-backed click store.
func NewPostgresClickStore(pool *pgxpool.Pool) *PostgresClickStore {
	return &PostgresClickStore{pool: pool}
}

func (p *PostgresClickStore) SaveClick(ctx context.Context, click *analytics.ClickEvent) error {
	query := `
		INSERT INTO click_events
			(id, short_url_id, code, ip_address, browser, operating_system, device_type, referrer, clicked_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := p.pool.Exec(ctx, query,
		click.ID,
		click.ShortURLID,
		string(click.Code),
		click.IPAddress,
		click.Browser,
		click.OperatingSystem,
		click.DeviceType,
		click.Referrer,
		click.ClickedAt,
	)

	return mapWriteError(err)
}

func (p *PostgresClickStore) CountClicks(ctx context.Context, shortURLID string) (int64, error) {
	var count int64

	err := p.pool.QueryRow(ctx, `SELECT COUNT(*) FROM click_events WHERE short_url_id = $1`, shortURLID).
		Scan(&count)

	return count, err
}

func (p *PostgresClickStore) FindClicks(
	ctx context.Context,
	filter analytics.ClickFilter,
) (shortener.Page[analytics.ClickEvent], error) {
	var empty shortener.Page[analytics.ClickEvent]

	req := filter.Page.Normalize()
	where, args := clickPredicates(filter)

	var total int64

	if err := p.pool.QueryRow(ctx, `SELECT COUNT(*) FROM click_events WHERE `+where, args...).
		Scan(&total); err != nil {
		return empty, err
	}

	query := fmt.Sprintf(`SELECT %s FROM click_events WHERE %s ORDER BY %s LIMIT $%d OFFSET $%d`,
		clickColumns, where, clickOrder(filter.SortBy, filter.Order), len(args)+1, len(args)+2)

	rows, err := p.pool.Query(ctx, query, append(args, req.Size, req.Offset())...)
	if err != nil {
		return empty, err
	}

	clicks, err := pgx.CollectRows(rows, scanClick)
	if err != nil {
		return empty, err
	}

	return shortener.NewPage(clicks, req, total), nil
}

func (p *PostgresClickStore) CountByDay(
	ctx context.Context,
	shortURLID string,
	from, to time.Time,
	loc *time.Location,
	order analytics.SortOrder,
) ([]analytics.DayCount, error) {
	where, args := clickPredicates(analytics.ClickFilter{ShortURLID: shortURLID, From: from, To: to})
	args = append(args, loc.String())

	direction := "DESC"
	if order == analytics.SortAsc {
		direction = "ASC"
	}

	query := fmt.Sprintf(`
		SELECT to_char(clicked_at AT TIME ZONE $%d, 'YYYY-MM-DD') AS day, COUNT(*)
		FROM click_events
		WHERE %s
		GROUP BY day
		ORDER BY day %s
	`, len(args), where, direction)

	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (analytics.DayCount, error) {
		var day analytics.DayCount
		err := row.Scan(&day.Date, &day.Count)

		return day, err
	})
}

func (p *PostgresClickStore) TopEntries(ctx context.Context, limit int, activeOnly bool) ([]analytics.CodeCount, error) {
	state := ""
	if activeOnly {
		state = `WHERE s.state = 'ACTIVE'`
	}

	query := fmt.Sprintf(`
		SELECT s.id::text, s.code, COUNT(*) AS clicks
		FROM click_events c
		JOIN short_urls s ON s.id = c.short_url_id
		%s
		GROUP BY s.id, s.code
		ORDER BY clicks DESC, s.code, s.id
		LIMIT $1
	`, state)

	rows, err := p.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (analytics.CodeCount, error) {
		var (
			top  analytics.CodeCount
			code string
		)

		err := row.Scan(&top.ShortURLID, &code, &top.Count)
		top.Code = shortener.Code(code)

		return top, err
	})
}

// clickPredicates renders the filter as a WHERE body with positional args starting at $1.
func clickPredicates(filter analytics.ClickFilter) (string, []any) {
	clauses := []string{"short_url_id = $1"}
	args := []any{filter.ShortURLID}

	add := func(clause string, arg any) {
		args = append(args, arg)
		clauses = append(clauses, fmt.Sprintf(clause, len(args)))
	}

	if !filter.From.IsZero() {
		add("clicked_at >= $%d", filter.From)
	}

	if !filter.To.IsZero() {
		add("clicked_at <= $%d", filter.To)
	}

	// strpos keeps '%' and '_' in user input literal.
	if filter.Browser != "" {
		add("strpos(lower(browser), lower($%d)) > 0", filter.Browser)
	}

	if filter.OperatingSystem != "" {
		add("strpos(lower(operating_system), lower($%d)) > 0", filter.OperatingSystem)
	}

	if filter.DeviceType != "" {
		add("strpos(lower(device_type), lower($%d)) > 0", filter.DeviceType)
	}

	return strings.Join(clauses, " AND "), args
}

func clickOrder(field analytics.SortField, order analytics.SortOrder) string {
	column, ok := sortColumns[field]
	if !ok {
		column = sortColumns[analytics.SortClickedAt]
	}

	direction := "DESC"
	if order == analytics.SortAsc {
		direction = "ASC"
	}

	if column == "clicked_at" {
		return fmt.Sprintf("clicked_at %s, id", direction)
	}

	return fmt.Sprintf("%s %s, clicked_at DESC, id", column, direction)
}

func scanClick(row pgx.CollectableRow) (analytics.ClickEvent, error) {
	var (
		click analytics.ClickEvent
		code  string
	)

	err := row.Scan(
		&click.ID,
		&click.ShortURLID,
		&code,
		&click.IPAddress,
		&click.Browser,
		&click.OperatingSystem,
		&click.DeviceType,
		&click.Referrer,
		&click.ClickedAt,
	)
	click.Code = shortener.Code(code)

	return click, err
}

// Compile-time check.
var _ analytics.Store = (*PostgresClickStore)(nil)
