package dto

type ChatUsersStats struct {
	TotalChatUsers int64 `json:"total_chat_users"`
	TodayChatUsers int64 `json:"today_chat_users"`
}

type MonthlyGrowthPoint struct {
	Month      string  `json:"month"`
	NewUsers   int     `json:"new_users"`
	Cumulative int     `json:"cumulative"`
	GrowthRate float64 `json:"growth_rate"`
}

type MonthlyGrowthResponse struct {
	Year           int                  `json:"year"`
	Months         []MonthlyGrowthPoint `json:"months"`
	TotalNewUsers  int                  `json:"total_new_users"`
	HighestMonth   string               `json:"highest_month"`
	LowestMonth    string               `json:"lowest_month"`
	MonthlyAverage float64              `json:"monthly_average"`
}

type YearlyGrowthPoint struct {
	Year       int     `json:"year"`
	NewUsers   int     `json:"new_users"`
	Cumulative int     `json:"cumulative"`
	GrowthRate float64 `json:"growth_rate"`
}

type YearlyGrowthResponse struct {
	Years          []YearlyGrowthPoint `json:"years"`
	TotalUsers     int                 `json:"total_users"`
	BestYear       int                 `json:"best_year"`
	YearlyAverage  float64             `json:"yearly_average"`
	CompoundAnnual float64             `json:"compound_annual_growth_rate"`
}
