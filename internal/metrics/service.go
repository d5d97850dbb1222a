package metrics

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/jecaicedo27/toppingfrozen-backend/internal/orders"
	"github.com/jecaicedo27/toppingfrozen-backend/pkg/db/models"
	"github.com/jecaicedo27/toppingfrozen-backend/pkg/errors"
	"github.com/jecaicedo27/toppingfrozen-backend/pkg/logger"
)

const dayFormat = "2006-01-02"

// ServiceParams groups dependencies for the metrics service.
type ServiceParams struct {
	Repo   Repository
	Orders orders.Repository
	Logger *logger.Logger
	Now    func() time.Time
}

// Service produces the day-by-day operational summary and accepts the
// manual counter upserts.
type Service struct {
	repo   Repository
	orders orders.Repository
	logger *logger.Logger
	now    func() time.Time
}

// NewService builds a metrics service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, stderrors.New("repo is required")
	}
	if params.Orders == nil {
		return nil, stderrors.New("orders repo is required")
	}
	if params.Logger == nil {
		return nil, stderrors.New("logger is required")
	}
	now := params.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Service{repo: params.Repo, orders: params.Orders, logger: params.Logger, now: now}, nil
}

// Summary walks every day of the range, zero-filling days without rows and
// merging manual counters with the system order counts.
func (s *Service) Summary(ctx context.Context, query RangeQuery) (*Summary, error) {
	from, to, err := s.resolveRange(query)
	if err != nil {
		return nil, err
	}

	manual, err := s.repo.FindRange(ctx, from, to)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "loading daily metrics")
	}
	manualByDay := make(map[string]models.DailyMetric, len(manual))
	for _, row := range manual {
		manualByDay[row.Date.Format(dayFormat)] = row
	}

	counts, err := s.orders.CountCreatedBetween(ctx, from, to)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "counting orders per day")
	}
	ordersByDay := make(map[string]int, len(counts))
	for _, row := range counts {
		ordersByDay[row.Day] = row.Total
	}

	summary := &Summary{
		From: from.Format(dayFormat),
		To:   to.AddDate(0, 0, -1).Format(dayFormat),
	}
	for day := from; day.Before(to); day = day.AddDate(0, 0, 1) {
		key := day.Format(dayFormat)
		entry := DaySummary{Date: key, OrdersSystemCount: ordersByDay[key]}
		if row, ok := manualByDay[key]; ok {
			entry.ChatsStart = row.ChatsStart
			entry.ChatsEnd = row.ChatsEnd
			entry.ChatsCount = row.ChatsCount
			entry.OrdersManualCount = row.OrdersManualCount
		}
		summary.Days = append(summary.Days, entry)
		summary.Totals.ChatsCount += entry.ChatsCount
		summary.Totals.OrdersManualCount += entry.OrdersManualCount
		summary.Totals.OrdersSystemCount += entry.OrdersSystemCount
	}
	return summary, nil
}

// Update upserts one day's manual counters. chats_count is stored as
// end minus start; operators sometimes reset the counter mid-day, so a
// negative result is kept as-is rather than clamped.
func (s *Service) Update(ctx context.Context, input UpdateInput) (*models.DailyMetric, error) {
	if input.Date.IsZero() {
		return nil, errors.New(errors.CodeValidation, "date is required")
	}
	if input.ChatsStart < 0 || input.ChatsEnd < 0 || input.OrdersManualCount < 0 {
		return nil, errors.New(errors.CodeValidation, "counters must not be negative")
	}

	day := time.Date(input.Date.Year(), input.Date.Month(), input.Date.Day(), 0, 0, 0, 0, time.UTC)
	metric := &models.DailyMetric{
		Date:              day,
		ChatsStart:        input.ChatsStart,
		ChatsEnd:          input.ChatsEnd,
		ChatsCount:        input.ChatsEnd - input.ChatsStart,
		OrdersManualCount: input.OrdersManualCount,
	}
	if err := s.repo.Upsert(ctx, metric); err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "upserting daily metric")
	}

	ctx = s.logger.WithFields(ctx, map[string]any{
		"date":        day.Format(dayFormat),
		"chats_count": metric.ChatsCount,
	})
	s.logger.Info(ctx, "daily metric updated")
	return metric, nil
}

func (s *Service) resolveRange(query RangeQuery) (time.Time, time.Time, error) {
	if query.StartDate != nil || query.EndDate != nil {
		if query.StartDate == nil || query.EndDate == nil {
			return time.Time{}, time.Time{}, errors.New(errors.CodeValidation,
				"startDate and endDate must be provided together")
		}
		from := truncateDay(*query.StartDate)
		to := truncateDay(*query.EndDate).AddDate(0, 0, 1)
		if !from.Before(to) {
			return time.Time{}, time.Time{}, errors.New(errors.CodeValidation,
				"startDate must not be after endDate")
		}
		return from, to, nil
	}

	now := s.now()
	year, month := now.Year(), int(now.Month())
	if query.Year != 0 {
		year = query.Year
	}
	if query.Month != 0 {
		if query.Month < 1 || query.Month > 12 {
			return time.Time{}, time.Time{}, errors.New(errors.CodeValidation, "month must be 1-12")
		}
		month = query.Month
	}

	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(0, 1, 0), nil
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
