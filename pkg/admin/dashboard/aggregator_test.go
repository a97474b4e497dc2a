package dashboard

import (
	"context"
	"testing"
	"time"

	"ai-chat-be/internal/pkg/logger"
	"ai-chat-be/internal/repository/contract"
	"ai-chat-be/internal/repository/unitofwork"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Stubs embed the interfaces and override only what the aggregator
// touches. Anything else panics, which is what we want in a test.

type stubUserRepo struct {
	contract.UserRepository
	monthly []contract.MonthlyCount
	yearly  []contract.YearlyCount
}

func (r *stubUserRepo) MonthlyNewUsers(_ context.Context, _ int) ([]contract.MonthlyCount, error) {
	return r.monthly, nil
}

func (r *stubUserRepo) YearlyNewUsers(_ context.Context) ([]contract.YearlyCount, error) {
	return r.yearly, nil
}

type stubSessionRepo struct {
	contract.ChatSessionRepository
	total int64
	today int64
}

func (r *stubSessionRepo) CountDistinctUsers(_ context.Context) (int64, error) {
	return r.total, nil
}

func (r *stubSessionRepo) CountDistinctUsersSince(_ context.Context, _ time.Time) (int64, error) {
	return r.today, nil
}

type stubUow struct {
	unitofwork.UnitOfWork
	users    contract.UserRepository
	sessions contract.ChatSessionRepository
}

func (u *stubUow) UserRepository() contract.UserRepository               { return u.users }
func (u *stubUow) ChatSessionRepository() contract.ChatSessionRepository { return u.sessions }

type nopLogger struct{}

func (nopLogger) Debug(string, string, map[string]interface{}) {}
func (nopLogger) Info(string, string, map[string]interface{})  {}
func (nopLogger) Warn(string, string, map[string]interface{})  {}
func (nopLogger) Error(string, string, map[string]interface{}) {}
func (nopLogger) Sync() error                                  { return nil }
func (nopLogger) GetLogs(string, int, int) ([]logger.LogEntry, error) {
	return nil, nil
}
func (nopLogger) GetLogById(string) (*logger.LogEntry, error) { return nil, nil }

func TestChatUsers(t *testing.T) {
	uow := &stubUow{sessions: &stubSessionRepo{total: 120, today: 7}}
	agg := NewAggregator(nopLogger{})

	stats, err := agg.ChatUsers(context.Background(), uow)
	require.NoError(t, err)
	assert.Equal(t, int64(120), stats.TotalChatUsers)
	assert.Equal(t, int64(7), stats.TodayChatUsers)

	// Second call is served from cache even if the store changed
	uow.sessions = &stubSessionRepo{total: 999}
	again, err := agg.ChatUsers(context.Background(), uow)
	require.NoError(t, err)
	assert.Equal(t, int64(120), again.TotalChatUsers)
}

func TestMonthlyGrowth(t *testing.T) {
	uow := &stubUow{users: &stubUserRepo{
		monthly: []contract.MonthlyCount{
			{Month: 1, Count: 10},
			{Month: 2, Count: 5},
			{Month: 4, Count: 25},
		},
		yearly: []contract.YearlyCount{
			{Year: 2024, Count: 100},
			{Year: 2025, Count: 40},
		},
	}}
	agg := NewAggregator(nopLogger{})

	resp, err := agg.MonthlyGrowth(context.Background(), uow, 2025)
	require.NoError(t, err)
	require.Len(t, resp.Months, 12)

	// Cumulative carries in the 100 signups from 2024
	assert.Equal(t, 110, resp.Months[0].Cumulative)
	assert.Equal(t, 10.0, resp.Months[0].GrowthRate)
	assert.Equal(t, 115, resp.Months[1].Cumulative)
	assert.Equal(t, 140, resp.Months[3].Cumulative)
	assert.Equal(t, 140, resp.Months[11].Cumulative)

	assert.Equal(t, 40, resp.TotalNewUsers)
	assert.Equal(t, "April", resp.HighestMonth)
	assert.Equal(t, "March", resp.LowestMonth)
	assert.InDelta(t, 3.33, resp.MonthlyAverage, 0.001)
}

func TestYearlyGrowth(t *testing.T) {
	uow := &stubUow{users: &stubUserRepo{
		yearly: []contract.YearlyCount{
			{Year: 2023, Count: 50},
			{Year: 2024, Count: 100},
			{Year: 2025, Count: 50},
		},
	}}
	agg := NewAggregator(nopLogger{})

	resp, err := agg.YearlyGrowth(context.Background(), uow)
	require.NoError(t, err)
	require.Len(t, resp.Years, 3)

	assert.Equal(t, 50, resp.Years[0].Cumulative)
	assert.Equal(t, 0.0, resp.Years[0].GrowthRate)
	assert.Equal(t, 150, resp.Years[1].Cumulative)
	assert.Equal(t, 200.0, resp.Years[1].GrowthRate)
	assert.Equal(t, 200, resp.Years[2].Cumulative)

	assert.Equal(t, 200, resp.TotalUsers)
	assert.Equal(t, 2024, resp.BestYear)
	assert.InDelta(t, 66.67, resp.YearlyAverage, 0.001)
	// 50 -> 200 over two years is exactly 100% per year
	assert.InDelta(t, 100.0, resp.CompoundAnnual, 0.001)
}

func TestYearlyGrowthEmptyHistory(t *testing.T) {
	uow := &stubUow{users: &stubUserRepo{}}
	agg := NewAggregator(nopLogger{})

	resp, err := agg.YearlyGrowth(context.Background(), uow)
	require.NoError(t, err)
	assert.Empty(t, resp.Years)
	assert.Equal(t, 0.0, resp.CompoundAnnual)
}
