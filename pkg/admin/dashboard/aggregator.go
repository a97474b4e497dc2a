package dashboard

import (
	"context"
	"fmt"
	"math"
	"time"

	"ai-chat-be/internal/dto"
	"ai-chat-be/internal/pkg/logger"
	"ai-chat-be/internal/repository/unitofwork"

	gocache "github.com/patrickmn/go-cache"
)

const statsCacheTTL = 5 * time.Minute

var monthNames = []string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// Aggregator computes dashboard statistics. Results are cached briefly
// since the queries scan whole tables.
type Aggregator struct {
	logger logger.ILogger
	cache  *gocache.Cache
}

func NewAggregator(logger logger.ILogger) *Aggregator {
	return &Aggregator{
		logger: logger,
		cache:  gocache.New(statsCacheTTL, 10*time.Minute),
	}
}

// ChatUsers reports how many distinct users ever opened a chat and how
// many did so today.
func (a *Aggregator) ChatUsers(ctx context.Context, uow unitofwork.UnitOfWork) (*dto.ChatUsersStats, error) {
	if cached, found := a.cache.Get("chat_users"); found {
		return cached.(*dto.ChatUsersStats), nil
	}

	total, err := uow.ChatSessionRepository().CountDistinctUsers(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	today, err := uow.ChatSessionRepository().CountDistinctUsersSince(ctx, startOfDay)
	if err != nil {
		return nil, err
	}

	stats := &dto.ChatUsersStats{
		TotalChatUsers: total,
		TodayChatUsers: today,
	}
	a.cache.Set("chat_users", stats, statsCacheTTL)
	return stats, nil
}

// MonthlyGrowth breaks one year of signups down per month, with the
// running total carried in from earlier years.
func (a *Aggregator) MonthlyGrowth(ctx context.Context, uow unitofwork.UnitOfWork, year int) (*dto.MonthlyGrowthResponse, error) {
	cacheKey := fmt.Sprintf("monthly_growth:%d", year)
	if cached, found := a.cache.Get(cacheKey); found {
		return cached.(*dto.MonthlyGrowthResponse), nil
	}

	monthly, err := uow.UserRepository().MonthlyNewUsers(ctx, year)
	if err != nil {
		return nil, err
	}

	yearly, err := uow.UserRepository().YearlyNewUsers(ctx)
	if err != nil {
		return nil, err
	}

	base := 0
	for _, y := range yearly {
		if y.Year < year {
			base += y.Count
		}
	}

	counts := make([]int, 12)
	for _, m := range monthly {
		if m.Month >= 1 && m.Month <= 12 {
			counts[m.Month-1] = m.Count
		}
	}

	resp := &dto.MonthlyGrowthResponse{Year: year, Months: make([]dto.MonthlyGrowthPoint, 12)}
	cumulative := base
	totalNew := 0
	highest, lowest := 0, 0
	for i, count := range counts {
		prev := cumulative
		cumulative += count
		totalNew += count

		rate := 0.0
		if prev > 0 {
			rate = round2(float64(count) / float64(prev) * 100)
		}
		resp.Months[i] = dto.MonthlyGrowthPoint{
			Month:      monthNames[i],
			NewUsers:   count,
			Cumulative: cumulative,
			GrowthRate: rate,
		}

		if count > counts[highest] {
			highest = i
		}
		if count < counts[lowest] {
			lowest = i
		}
	}

	resp.TotalNewUsers = totalNew
	resp.HighestMonth = monthNames[highest]
	resp.LowestMonth = monthNames[lowest]
	resp.MonthlyAverage = round2(float64(totalNew) / 12)

	a.cache.Set(cacheKey, resp, statsCacheTTL)
	return resp, nil
}

// YearlyGrowth summarizes signups per year including the compound
// annual growth rate across the whole history.
func (a *Aggregator) YearlyGrowth(ctx context.Context, uow unitofwork.UnitOfWork) (*dto.YearlyGrowthResponse, error) {
	if cached, found := a.cache.Get("yearly_growth"); found {
		return cached.(*dto.YearlyGrowthResponse), nil
	}

	yearly, err := uow.UserRepository().YearlyNewUsers(ctx)
	if err != nil {
		return nil, err
	}

	resp := &dto.YearlyGrowthResponse{Years: make([]dto.YearlyGrowthPoint, 0, len(yearly))}
	if len(yearly) == 0 {
		a.cache.Set("yearly_growth", resp, statsCacheTTL)
		return resp, nil
	}

	cumulative := 0
	bestIdx := 0
	total := 0
	for i, y := range yearly {
		prev := cumulative
		cumulative += y.Count
		total += y.Count

		rate := 0.0
		if prev > 0 {
			rate = round2(float64(y.Count) / float64(prev) * 100)
		}
		resp.Years = append(resp.Years, dto.YearlyGrowthPoint{
			Year:       y.Year,
			NewUsers:   y.Count,
			Cumulative: cumulative,
			GrowthRate: rate,
		})

		if y.Count > yearly[bestIdx].Count {
			bestIdx = i
		}
	}

	resp.TotalUsers = total
	resp.BestYear = yearly[bestIdx].Year
	resp.YearlyAverage = round2(float64(total) / float64(len(yearly)))

	// CAGR over the span needs at least two years and a non-zero start
	first := resp.Years[0].Cumulative
	last := resp.Years[len(resp.Years)-1].Cumulative
	span := resp.Years[len(resp.Years)-1].Year - resp.Years[0].Year
	if span > 0 && first > 0 {
		resp.CompoundAnnual = round2((math.Pow(float64(last)/float64(first), 1/float64(span)) - 1) * 100)
	}

	a.cache.Set("yearly_growth", resp, statsCacheTTL)
	return resp, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
