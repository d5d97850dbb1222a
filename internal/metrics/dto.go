package metrics

import "time"

// RangeQuery selects the window for the daily summary. Month/Year pick a
// calendar month; explicit StartDate/EndDate override them. Empty query
// defaults to the current month.
type RangeQuery struct {
	Month     int
	Year      int
	StartDate *time.Time
	EndDate   *time.Time
}

// DaySummary is one zero-filled day in the metrics walk.
type DaySummary struct {
	Date              string `json:"date"`
	ChatsStart        int    `json:"chats_start"`
	ChatsEnd          int    `json:"chats_end"`
	ChatsCount        int    `json:"chats_count"`
	OrdersManualCount int    `json:"orders_manual_count"`
	OrdersSystemCount int    `json:"orders_system_count"`
}

// SummaryTotals aggregates the range.
type SummaryTotals struct {
	ChatsCount        int `json:"chats_count"`
	OrdersManualCount int `json:"orders_manual_count"`
	OrdersSystemCount int `json:"orders_system_count"`
}

// Summary is the full day-by-day report.
type Summary struct {
	From   string        `json:"from"`
	To     string        `json:"to"`
	Days   []DaySummary  `json:"days"`
	Totals SummaryTotals `json:"totals"`
}

// UpdateInput upserts one day's manual counters.
type UpdateInput struct {
	Date              time.Time
	ChatsStart        int
	ChatsEnd          int
	OrdersManualCount int
}
