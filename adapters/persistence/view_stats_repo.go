package persistence

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/khoahotran/portli/internal/domain/analytics"
	"github.com/khoahotran/portli/pkg/apperror"
	"github.com/khoahotran/portli/pkg/logger"
)

type postgresViewStatsRepo struct {
	db     *pgxpool.Pool
	logger logger.Logger
}

func NewPostgresViewStatsRepo(db *pgxpool.Pool, logger logger.Logger) analytics.Repository {
	return &postgresViewStatsRepo{db: db, logger: logger}
}

var psqlViews = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

func (r *postgresViewStatsRepo) IncrementDaily(ctx context.Context, username string, day time.Time) error {
	sql, args, err := psqlViews.Insert("portfolio_view_stats").
		Columns("username", "day", "views", "updated_at").
		Values(username, analytics.Day(day), 1, sq.Expr("NOW()")).
		Suffix("ON CONFLICT (username, day) DO UPDATE SET views = portfolio_view_stats.views + 1, updated_at = NOW()").
		ToSql()
	if err != nil {
		return apperror.NewInternal("failed to build view stats upsert", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		r.logger.Error("Failed to upsert view stats", err, zap.String("username", username))
		return apperror.NewInternal("failed to upsert view stats", err)
	}
	return nil
}

func (r *postgresViewStatsRepo) ListDaily(ctx context.Context, username string, since time.Time) ([]analytics.DailyViews, error) {
	sql, args, err := psqlViews.Select("username", "day", "views").
		From("portfolio_view_stats").
		Where(sq.Eq{"username": username}).
		Where(sq.GtOrEq{"day": analytics.Day(since)}).
		OrderBy("day ASC").
		ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build view stats query", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, apperror.NewInternal("failed to query view stats", err)
	}
	defer rows.Close()

	out := make([]analytics.DailyViews, 0)
	for rows.Next() {
		var dv analytics.DailyViews
		if err := rows.Scan(&dv.Username, &dv.Day, &dv.Views); err != nil {
			return nil, apperror.NewInternal("failed to scan view stats row", err)
		}
		out = append(out, dv)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewInternal("error iterating view stats rows", err)
	}
	return out, nil
}
