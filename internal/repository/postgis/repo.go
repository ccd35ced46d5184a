package postgis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/kailas-cloud/retailerdir/internal/domain"
	"github.com/kailas-cloud/retailerdir/internal/domain/geo"
	domret "github.com/kailas-cloud/retailerdir/internal/domain/retailer"
	"github.com/kailas-cloud/retailerdir/internal/domain/search/filter"
	"github.com/kailas-cloud/retailerdir/internal/domain/search/result"
)

const uniqueViolation = "23505"

// querier is the subset of *pgxpool.Pool used by the repository (ISP).
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repo implements usecase/retailer.Repository on PostgreSQL + PostGIS.
type Repo struct {
	db querier
}

// New creates a PostGIS-backed retailer repository.
func New(db querier) *Repo {
	return &Repo{db: db}
}

// Create inserts a retailer. A duplicate name maps to domain.ErrAlreadyExists.
func (r *Repo) Create(ctx context.Context, ret domret.Retailer) error {
	pos := ret.Position()
	_, err := r.db.Exec(ctx, `
		INSERT INTO retailers (id, name, category, phone, address, location, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, ST_SetSRID(ST_MakePoint($6, $7), 4326)::geography, $8, $9)`,
		ret.ID(), ret.Name(), string(ret.Category()), ret.Phone(), ret.Address(),
		pos.Lng(), pos.Lat(), ret.CreatedAt(), ret.UpdatedAt(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		return fmt.Errorf("insert retailer %s: %w", ret.ID(), err)
	}
	return nil
}

// Get returns a retailer by ID.
func (r *Repo) Get(ctx context.Context, id string) (domret.Retailer, error) {
	row := r.db.QueryRow(ctx, "SELECT "+selectColumns+" FROM retailers WHERE id = $1", id)
	ret, err := scanRetailer(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domret.Retailer{}, domain.ErrNotFound
	}
	if err != nil {
		return domret.Retailer{}, fmt.Errorf("get retailer %s: %w", id, err)
	}
	return ret, nil
}

// CountExact counts retailers matching the name/category predicate.
func (r *Repo) CountExact(ctx context.Context, p filter.Predicate) (int, error) {
	q, a := countExactSQL(p)
	return r.count(ctx, "count exact", q, a)
}

// PageExact returns one page of matching retailers, newest first.
func (r *Repo) PageExact(ctx context.Context, p filter.Predicate, offset, limit int) ([]domret.Retailer, error) {
	q, a := pageExactSQL(p, offset, limit)
	rows, err := r.db.Query(ctx, q, a...)
	if err != nil {
		return nil, fmt.Errorf("page exact: %w", err)
	}
	defer rows.Close()

	var out []domret.Retailer
	for rows.Next() {
		ret, err := scanRetailer(rows)
		if err != nil {
			return nil, fmt.Errorf("page exact: scan: %w", err)
		}
		out = append(out, ret)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("page exact: rows: %w", err)
	}
	return out, nil
}

// CountByProximity counts matching retailers within radiusMeters of center.
func (r *Repo) CountByProximity(
	ctx context.Context, center geo.Point, radiusMeters *float64, p filter.Predicate,
) (int, error) {
	q, a := countProximitySQL(center, radiusMeters, p)
	return r.count(ctx, "count by proximity", q, a)
}

// SearchByProximity returns one page of matching retailers, nearest first.
func (r *Repo) SearchByProximity(
	ctx context.Context, center geo.Point, radiusMeters *float64, p filter.Predicate, offset, limit int,
) ([]result.Item, error) {
	q, a := searchProximitySQL(center, radiusMeters, p, offset, limit)
	rows, err := r.db.Query(ctx, q, a...)
	if err != nil {
		return nil, fmt.Errorf("search by proximity: %w", err)
	}
	defer rows.Close()

	var out []result.Item
	for rows.Next() {
		var meters float64
		ret, err := scanRetailer(rows, &meters)
		if err != nil {
			return nil, fmt.Errorf("search by proximity: scan: %w", err)
		}
		out = append(out, result.NewProximityItem(ret, meters))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("search by proximity: rows: %w", err)
	}
	return out, nil
}

func (r *Repo) count(ctx context.Context, op, q string, a args) (int, error) {
	var n int64
	if err := r.db.QueryRow(ctx, q, a...).Scan(&n); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(n), nil
}

// scanRetailer scans selectColumns followed by any extra destinations.
func scanRetailer(row pgx.Row, extra ...any) (domret.Retailer, error) {
	var (
		id, name, category, phone, address string
		lng, lat                           float64
		createdAt, updatedAt               time.Time
	)
	dest := append([]any{&id, &name, &category, &phone, &address, &lng, &lat, &createdAt, &updatedAt}, extra...)
	if err := row.Scan(dest...); err != nil {
		return domret.Retailer{}, err
	}
	return domret.Reconstruct(
		id, name, domret.Category(category), phone, address,
		geo.Reconstruct(lng, lat), createdAt.UTC(), updatedAt.UTC(),
	), nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
