package postgres

import (
	"context"
	"time"

	"app-hub/internal/domain"

	"github.com/jmoiron/sqlx"
)

const userColumns = `id, full_name, email, hashed_password, role, created_at, updated_at`

type UserRepository struct{ db *DB }

func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user domain.User) (domain.User, error) {
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	err := r.db.conn.QueryRowxContext(ctx,
		`INSERT INTO users (full_name, email, hashed_password, role, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		user.FullName, user.Email, user.HashedPassword, user.Role, user.CreatedAt, user.UpdatedAt,
	).Scan(&user.ID)
	if err != nil {
		return domain.User{}, translate("insert user", err)
	}
	return user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, userID int64) (domain.User, error) {
	var user domain.User
	err := r.db.conn.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE id = $1`, userID)
	if err != nil {
		return domain.User{}, translate("get user", err)
	}
	return user, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	var user domain.User
	err := r.db.conn.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	if err != nil {
		return domain.User{}, translate("get user by email", err)
	}
	return user, nil
}

func (r *UserRepository) List(ctx context.Context, filter domain.UserFilter) ([]domain.User, error) {
	var w whereBuilder
	if filter.Search != "" {
		p := w.next(likePattern(filter.Search))
		w.add("(full_name ILIKE " + p + " OR email ILIKE " + p + ")")
	}
	users := []domain.User{}
	err := r.db.conn.SelectContext(ctx, &users, `SELECT `+userColumns+` FROM users`+w.clause()+` ORDER BY full_name, id`, w.args...)
	if err != nil {
		return nil, translate("list users", err)
	}
	return users, nil
}

func (r *UserRepository) Update(ctx context.Context, userID int64, patch domain.UserPatch) (domain.User, error) {
	if patch.Empty() {
		return r.GetByID(ctx, userID)
	}
	var s setBuilder
	if patch.FullName != nil {
		s.set("full_name", *patch.FullName)
	}
	if patch.Role != nil {
		s.set("role", *patch.Role)
	}
	s.set("updated_at", time.Now().UTC())
	query, args := s.statement("users", userID)

	var user domain.User
	if err := r.db.conn.GetContext(ctx, &user, query+` RETURNING `+userColumns, args...); err != nil {
		return domain.User{}, translate("update user", err)
	}
	return user, nil
}

// Delete removes grants, detaches authored tickets and removes the user as one unit.
func (r *UserRepository) Delete(ctx context.Context, userID int64) error {
	return r.db.withTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM user_application_access WHERE user_id = $1`, userID); err != nil {
			return translate("delete user grants", err)
		}
		if _, err := tx.ExecContext(ctx, `UPDATE tickets SET created_by = NULL WHERE created_by = $1`, userID); err != nil {
			return translate("detach user tickets", err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, userID)
		if err != nil {
			return translate("delete user", err)
		}
		return requireAffected("delete user", res)
	})
}
