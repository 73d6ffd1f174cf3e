// Package repository persists barcode records in SQL. SQLite (embedded,
// pure Go) is the default backend; PostgreSQL is used when a DSN is given.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/atinyakov/barcoder/internal/models"
	"github.com/atinyakov/barcoder/internal/storage"
)

// Dialect selects the SQL backend.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

const table = "barcodes"

var columns = []string{
	"id", "barcode_id", "barcode_data", "barcode_type", "source",
	"product_name", "product_id", "price", "location_x", "location_y", "location_z",
	"category", "created_at", "file_path", "metadata",
}

var sqlitePragmas = []string{
	"journal_mode(WAL)",
	"synchronous(NORMAL)",
	"busy_timeout(5000)",
	"foreign_keys(OFF)",
	"temp_store(MEMORY)",
}

// InitDB opens the database, checks connectivity and applies migrations.
func InitDB(d Dialect, dsn string, logger *zap.Logger) (*sql.DB, error) {
	db, err := open(d, dsn)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", d, err)
	}

	if err := Migrate(db, d); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("database ready", zap.String("dialect", string(d)))
	return db, nil
}

func open(d Dialect, dsn string) (*sql.DB, error) {
	switch d {
	case DialectPostgres:
		db, err := sql.Open("pgx", dsn)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		return db, nil

	case DialectSQLite:
		if dir := filepath.Dir(dsn); dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, fmt.Errorf("create db dir: %w", err)
			}
		}
		db, err := sql.Open("sqlite", sqliteDSN(dsn))
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		// a single writer connection avoids SQLITE_BUSY between pool members
		db.SetMaxOpenConns(1)
		return db, nil

	default:
		return nil, fmt.Errorf("unsupported dialect %q", d)
	}
}

func sqliteDSN(path string) string {
	q := url.Values{}
	for _, p := range sqlitePragmas {
		q.Add("_pragma", p)
	}
	return "file:" + path + "?" + q.Encode()
}

// BarcodeRepository is the SQL implementation of the record repository.
type BarcodeRepository struct {
	db     *sql.DB
	sb     sq.StatementBuilderType
	logger *zap.Logger
}

func CreateBarcodeRepository(db *sql.DB, d Dialect, logger *zap.Logger) *BarcodeRepository {
	var format sq.PlaceholderFormat = sq.Question
	if d == DialectPostgres {
		format = sq.Dollar
	}

	return &BarcodeRepository{
		db:     db,
		sb:     sq.StatementBuilder.PlaceholderFormat(format),
		logger: logger,
	}
}

// Insert writes r and sets r.ID. A barcode_id collision yields models.ErrDuplicateID.
func (r *BarcodeRepository) Insert(ctx context.Context, rec *storage.BarcodeRecord) error {
	q := r.sb.
		Insert(table).
		Columns(columns[1:]...).
		Values(
			rec.BarcodeID, rec.Data, rec.Type, rec.Source,
			rec.ProductName, rec.ProductID, rec.Price, rec.LocationX, rec.LocationY, rec.LocationZ,
			rec.Category, rec.CreatedAt.UTC(), rec.FilePath, rec.Metadata,
		).
		Suffix("RETURNING id")

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return err
	}

	if err := r.db.QueryRowContext(ctx, sqlStr, args...).Scan(&rec.ID); err != nil {
		if isUniqueViolation(err) {
			r.logger.Warn("duplicate barcode id", zap.String("barcode_id", rec.BarcodeID))
			return fmt.Errorf("%w: %s", models.ErrDuplicateID, rec.BarcodeID)
		}
		return fmt.Errorf("insert barcode: %w", err)
	}

	return nil
}

// ListAll returns every record, newest first.
func (r *BarcodeRepository) ListAll(ctx context.Context) ([]storage.BarcodeRecord, error) {
	return r.query(ctx, r.selectAll())
}

func (r *BarcodeRepository) FindByID(ctx context.Context, barcodeID string) (*storage.BarcodeRecord, error) {
	q := r.sb.
		Select(columns...).
		From(table).
		Where(sq.Eq{"barcode_id": barcodeID})

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}

	rec, err := scanRecord(r.db.QueryRowContext(ctx, sqlStr, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", models.ErrNotFound, barcodeID)
		}
		return nil, fmt.Errorf("find barcode: %w", err)
	}
	return rec, nil
}

func (r *BarcodeRepository) FindDataByID(ctx context.Context, barcodeID string) (*storage.BarcodeData, error) {
	q := r.sb.
		Select("barcode_id", "barcode_data", "barcode_type", "metadata", "created_at", "source").
		From(table).
		Where(sq.Eq{"barcode_id": barcodeID})

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}

	var d storage.BarcodeData
	err = r.db.QueryRowContext(ctx, sqlStr, args...).Scan(
		&d.BarcodeID, &d.Data, &d.Type, &d.Metadata, &d.CreatedAt, &d.Source,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", models.ErrNotFound, barcodeID)
		}
		return nil, fmt.Errorf("find barcode data: %w", err)
	}
	return &d, nil
}

func (r *BarcodeRepository) PingContext(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Stats counts records by type, source and category.
func (r *BarcodeRepository) Stats(ctx context.Context) (*models.Stats, error) {
	stats := &models.Stats{}

	q := r.sb.Select("COUNT(*)").From(table)
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}
	if err := r.db.QueryRowContext(ctx, sqlStr, args...).Scan(&stats.Total); err != nil {
		return nil, fmt.Errorf("count barcodes: %w", err)
	}

	if stats.ByType, err = r.countBy(ctx, "barcode_type"); err != nil {
		return nil, err
	}
	if stats.BySource, err = r.countBy(ctx, "source"); err != nil {
		return nil, err
	}
	if stats.ByCategory, err = r.countBy(ctx, "category"); err != nil {
		return nil, err
	}
	return stats, nil
}

func (r *BarcodeRepository) countBy(ctx context.Context, column string) (map[string]int, error) {
	key := fmt.Sprintf("COALESCE(%s, '%s')", column, storage.UncategorizedKey)

	q := r.sb.
		Select(key, "COUNT(*)").
		From(table).
		GroupBy(key)

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("count by %s: %w", column, err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			k string
			n int
		)
		if err := rows.Scan(&k, &n); err != nil {
			return nil, err
		}
		counts[k] = n
	}
	return counts, rows.Err()
}

// likeEscaper makes LIKE wildcards in a search query match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Search matches query case-insensitively against product name, product id
// and barcode id, newest first.
func (r *BarcodeRepository) Search(ctx context.Context, query string, limit int) ([]storage.BarcodeRecord, error) {
	pattern := "%" + likeEscaper.Replace(strings.ToLower(query)) + "%"

	q := r.selectAll().Where(sq.Or{
		sq.Expr(`LOWER(product_name) LIKE ? ESCAPE '\'`, pattern),
		sq.Expr(`LOWER(product_id) LIKE ? ESCAPE '\'`, pattern),
		sq.Expr(`LOWER(barcode_id) LIKE ? ESCAPE '\'`, pattern),
	})
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}

	return r.query(ctx, q)
}

// DeleteCreatedBefore removes records created strictly before t and returns them.
func (r *BarcodeRepository) DeleteCreatedBefore(ctx context.Context, t time.Time) ([]storage.BarcodeRecord, error) {
	cutoff := sq.Lt{"created_at": t.UTC()}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	sqlStr, args, err := r.selectAll().Where(cutoff).ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := tx.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("select expired: %w", err)
	}
	deleted, err := scanRecords(rows)
	if err != nil {
		return nil, err
	}

	sqlStr, args, err = r.sb.Delete(table).Where(cutoff).ToSql()
	if err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, sqlStr, args...); err != nil {
		return nil, fmt.Errorf("delete expired: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	r.logger.Info("expired barcodes deleted", zap.Int("count", len(deleted)), zap.Time("before", t))
	return deleted, nil
}

func (r *BarcodeRepository) Close() error {
	return r.db.Close()
}

func (r *BarcodeRepository) selectAll() sq.SelectBuilder {
	return r.sb.
		Select(columns...).
		From(table).
		OrderBy("created_at DESC", "id DESC")
}

func (r *BarcodeRepository) query(ctx context.Context, q sq.SelectBuilder) ([]storage.BarcodeRecord, error) {
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("query barcodes: %w", err)
	}
	return scanRecords(rows)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (*storage.BarcodeRecord, error) {
	var rec storage.BarcodeRecord
	err := s.Scan(
		&rec.ID, &rec.BarcodeID, &rec.Data, &rec.Type, &rec.Source,
		&rec.ProductName, &rec.ProductID, &rec.Price, &rec.LocationX, &rec.LocationY, &rec.LocationZ,
		&rec.Category, &rec.CreatedAt, &rec.FilePath, &rec.Metadata,
	)
	if err != nil {
		return nil, err
	}
	rec.CreatedAt = rec.CreatedAt.UTC()
	return &rec, nil
}

func scanRecords(rows *sql.Rows) ([]storage.BarcodeRecord, error) {
	defer rows.Close()

	records := make([]storage.BarcodeRecord, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgerrcode.UniqueViolation
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return false
}
