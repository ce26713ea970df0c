package postgres

import (
	"context"
	"time"

	"app-hub/internal/domain"
)

const grantColumns = `id, user_id, application_id, permission_level, created_at, updated_at`

type GrantRepository struct{ db *DB }

func NewGrantRepository(db *DB) *GrantRepository {
	return &GrantRepository{db: db}
}

// Create relies on uix_user_app and the foreign keys so concurrent duplicates
// resolve to exactly one row and the loser gets ErrConflict.
func (r *GrantRepository) Create(ctx context.Context, grant domain.Grant) (domain.Grant, error) {
	now := time.Now().UTC()
	grant.CreatedAt = now
	grant.UpdatedAt = now
	err := r.db.conn.QueryRowxContext(ctx,
		`INSERT INTO user_application_access (user_id, application_id, permission_level, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		grant.UserID, grant.ApplicationID, grant.PermissionLevel, grant.CreatedAt, grant.UpdatedAt,
	).Scan(&grant.ID)
	if err != nil {
		return domain.Grant{}, translate("insert grant", err)
	}
	return grant, nil
}

func (r *GrantRepository) GetByID(ctx context.Context, grantID int64) (domain.Grant, error) {
	var grant domain.Grant
	if err := r.db.conn.GetContext(ctx, &grant, `SELECT `+grantColumns+` FROM user_application_access WHERE id = $1`, grantID); err != nil {
		return domain.Grant{}, translate("get grant", err)
	}
	return grant, nil
}

func (r *GrantRepository) GetByUserAndApp(ctx context.Context, userID, appID int64) (domain.Grant, error) {
	var grant domain.Grant
	err := r.db.conn.GetContext(ctx, &grant,
		`SELECT `+grantColumns+` FROM user_application_access WHERE user_id = $1 AND application_id = $2`, userID, appID)
	if err != nil {
		return domain.Grant{}, translate("get grant for pair", err)
	}
	return grant, nil
}

func (r *GrantRepository) List(ctx context.Context) ([]domain.Grant, error) {
	grants := []domain.Grant{}
	if err := r.db.conn.SelectContext(ctx, &grants, `SELECT `+grantColumns+` FROM user_application_access ORDER BY id`); err != nil {
		return nil, translate("list grants", err)
	}
	return grants, nil
}

func (r *GrantRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Grant, error) {
	grants := []domain.Grant{}
	err := r.db.conn.SelectContext(ctx, &grants,
		`SELECT `+grantColumns+` FROM user_application_access WHERE user_id = $1 ORDER BY id`, userID)
	if err != nil {
		return nil, translate("list user grants", err)
	}
	return grants, nil
}

func (r *GrantRepository) UpdateLevel(ctx context.Context, grantID int64, level domain.PermissionLevel) (domain.Grant, error) {
	var grant domain.Grant
	err := r.db.conn.GetContext(ctx, &grant,
		`UPDATE user_application_access SET permission_level = $1, updated_at = $2 WHERE id = $3 RETURNING `+grantColumns,
		level, time.Now().UTC(), grantID)
	if err != nil {
		return domain.Grant{}, translate("update grant", err)
	}
	return grant, nil
}

func (r *GrantRepository) Delete(ctx context.Context, grantID int64) error {
	res, err := r.db.conn.ExecContext(ctx, `DELETE FROM user_application_access WHERE id = $1`, grantID)
	if err != nil {
		return translate("delete grant", err)
	}
	return requireAffected("delete grant", res)
}
