package portfolio

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/khoahotran/portli/internal/domain/analytics"
	"github.com/khoahotran/portli/internal/domain/portfolio"
	"github.com/khoahotran/portli/internal/domain/session"
	"github.com/khoahotran/portli/pkg/logger"
)

var tracer = otel.Tracer("portfolio_usecase")

type GetDashboardUseCase struct {
	gateway  portfolio.Gateway
	sessions *session.Provider
	counter  analytics.Counter
	history  analytics.Repository
	logger   logger.Logger
	now      func() time.Time
}

// dashboardHistoryDays is how many calendar days of views the dashboard lists.
const dashboardHistoryDays = 7

// NewGetDashboardUseCase accepts a nil counter and a nil history; the view
// total is then 0 and the daily list is empty.
func NewGetDashboardUseCase(gateway portfolio.Gateway, sessions *session.Provider, counter analytics.Counter, history analytics.Repository, log logger.Logger) *GetDashboardUseCase {
	return &GetDashboardUseCase{
		gateway:  gateway,
		sessions: sessions,
		counter:  counter,
		history:  history,
		logger:   log,
		now:      time.Now,
	}
}

type DashboardOutput struct {
	User      session.User
	Portfolio *portfolio.Document // nil when the user has none
	Views     int64
	Daily     []analytics.DailyViews
}

// Execute fetches the portfolio once. Any fetch failure is shown as "no
// portfolio yet" rather than as an error.
func (uc *GetDashboardUseCase) Execute(ctx context.Context, clientID string) (*DashboardOutput, error) {
	ctx, span := tracer.Start(ctx, "GetDashboard")
	defer span.End()

	s, ok, err := uc.sessions.Load(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("load session failed: %w", err)
	}
	out := &DashboardOutput{}
	if ok {
		out.User = s.User
	}

	doc, err := uc.gateway.GetUserPortfolio(ctx)
	if err != nil {
		span.RecordError(err)
		uc.logger.Warn("Failed to fetch portfolio for dashboard", zap.String("username", out.User.Username), zap.Error(err))
		return out, nil
	}
	if !doc.Exists() {
		return out, nil
	}
	out.Portfolio = doc

	if uc.counter != nil && doc.Username != "" {
		views, err := uc.counter.Total(ctx, doc.Username)
		if err != nil {
			uc.logger.Warn("Failed to read view counter", zap.String("username", doc.Username), zap.Error(err))
		}
		out.Views = views
	}

	if uc.history != nil && doc.Username != "" {
		since := analytics.Day(uc.now()).AddDate(0, 0, -(dashboardHistoryDays - 1))
		daily, err := uc.history.ListDaily(ctx, doc.Username, since)
		if err != nil {
			uc.logger.Warn("Failed to read daily views", zap.String("username", doc.Username), zap.Error(err))
		}
		out.Daily = daily
	}
	return out, nil
}
