package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"app-hub/internal/domain"

	"github.com/aws/aws-xray-sdk-go/xray"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// DB wraps the shared connection pool used by every repository.
type DB struct {
	conn *sqlx.DB
}

// Open connects through the X-Ray SQL wrapper so each query is traced as a subsegment.
func Open(ctx context.Context, dsn string) (*DB, error) {
	if dsn == "" {
		return nil, errors.New("database DSN is empty")
	}
	raw, err := xray.SQLContext("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	conn := sqlx.NewDb(raw, "postgres")
	conn.SetMaxOpenConns(20)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := conn.PingContext(pingCtx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &DB{conn: conn}, nil
}

// NewFromSQL wraps an already opened handle.
func NewFromSQL(db *sql.DB) *DB {
	return &DB{conn: sqlx.NewDb(db, "postgres")}
}

func (db *DB) Healthy(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

func (db *DB) Close() error {
	return db.conn.Close()
}

// withTx commits when fn succeeds and rolls back on any error.
func (db *DB) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// translate maps driver errors onto domain sentinels.
func translate(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case uniqueViolation:
			return fmt.Errorf("%s: %w", op, domain.ErrConflict)
		case foreignKeyViolation:
			return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

func requireAffected(op string, res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}
	return nil
}

func likePattern(search string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.TrimSpace(search)) + "%"
}

// whereBuilder accumulates numbered predicates in the style of $1, $2, ...
type whereBuilder struct {
	conditions []string
	args       []any
}

func (w *whereBuilder) next(value any) string {
	w.args = append(w.args, value)
	return fmt.Sprintf("$%d", len(w.args))
}

func (w *whereBuilder) add(condition string) {
	w.conditions = append(w.conditions, condition)
}

func (w *whereBuilder) clause() string {
	if len(w.conditions) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conditions, " AND ")
}

// setBuilder accumulates SET assignments for partial updates.
type setBuilder struct {
	assignments []string
	args        []any
}

func (s *setBuilder) set(column string, value any) {
	s.args = append(s.args, value)
	s.assignments = append(s.assignments, fmt.Sprintf("%s = $%d", column, len(s.args)))
}

func (s *setBuilder) statement(table string, id int64) (string, []any) {
	args := append(s.args, id)
	return fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d", table, strings.Join(s.assignments, ", "), len(args)), args
}
