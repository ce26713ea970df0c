package postgres

import (
	"context"
	"time"

	"app-hub/internal/domain"

	"github.com/jmoiron/sqlx"
)

const applicationSelect = `SELECT a.id, a.name, a.category, a.owner_user_id, COALESCE(u.email, '') AS owner_email,
	a.status, a.created_at, a.updated_at
	FROM applications a LEFT JOIN users u ON u.id = a.owner_user_id`

type ApplicationRepository struct{ db *DB }

func NewApplicationRepository(db *DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

func (r *ApplicationRepository) CreateWithOwnerGrant(ctx context.Context, app domain.Application) (domain.Application, error) {
	now := time.Now().UTC()
	err := r.db.withTx(ctx, func(tx *sqlx.Tx) error {
		err := tx.QueryRowxContext(ctx,
			`INSERT INTO applications (name, category, owner_user_id, status, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
			app.Name, app.Category, app.OwnerUserID, app.Status, now, now,
		).Scan(&app.ID)
		if err != nil {
			return translate("insert application", err)
		}
		if app.OwnerUserID == nil {
			return nil
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO user_application_access (user_id, application_id, permission_level, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5)`,
			*app.OwnerUserID, app.ID, domain.PermissionAdmin, now, now,
		)
		return translate("insert owner grant", err)
	})
	if err != nil {
		return domain.Application{}, err
	}
	return r.GetByID(ctx, app.ID)
}

func (r *ApplicationRepository) GetByID(ctx context.Context, appID int64) (domain.Application, error) {
	var app domain.Application
	if err := r.db.conn.GetContext(ctx, &app, applicationSelect+` WHERE a.id = $1`, appID); err != nil {
		return domain.Application{}, translate("get application", err)
	}
	return app, nil
}

func (r *ApplicationRepository) List(ctx context.Context, filter domain.ApplicationFilter) ([]domain.Application, error) {
	var w whereBuilder
	if filter.VisibleTo != nil {
		p := w.next(*filter.VisibleTo)
		w.add("(a.owner_user_id = " + p + " OR EXISTS (SELECT 1 FROM user_application_access g WHERE g.application_id = a.id AND g.user_id = " + p + "))")
	}
	if filter.Category != "" {
		w.add("a.category = " + w.next(filter.Category))
	}
	if filter.Status != "" {
		w.add("a.status = " + w.next(filter.Status))
	}
	if filter.Search != "" {
		p := w.next(likePattern(filter.Search))
		w.add("(a.name ILIKE " + p + " OR u.email ILIKE " + p + ")")
	}
	apps := []domain.Application{}
	if err := r.db.conn.SelectContext(ctx, &apps, applicationSelect+w.clause()+` ORDER BY a.name`, w.args...); err != nil {
		return nil, translate("list applications", err)
	}
	return apps, nil
}

func (r *ApplicationRepository) Update(ctx context.Context, appID int64, patch domain.ApplicationPatch) (domain.Application, error) {
	if patch.Empty() {
		return r.GetByID(ctx, appID)
	}
	var s setBuilder
	if patch.Name != nil {
		s.set("name", *patch.Name)
	}
	if patch.Category != nil {
		s.set("category", *patch.Category)
	}
	if patch.Status != nil {
		s.set("status", *patch.Status)
	}
	s.set("updated_at", time.Now().UTC())
	query, args := s.statement("applications", appID)

	res, err := r.db.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return domain.Application{}, translate("update application", err)
	}
	if err := requireAffected("update application", res); err != nil {
		return domain.Application{}, err
	}
	return r.GetByID(ctx, appID)
}

// Delete relies on ON DELETE CASCADE for grants and tickets.
func (r *ApplicationRepository) Delete(ctx context.Context, appID int64) error {
	res, err := r.db.conn.ExecContext(ctx, `DELETE FROM applications WHERE id = $1`, appID)
	if err != nil {
		return translate("delete application", err)
	}
	return requireAffected("delete application", res)
}
