// Package models defines the domain types for BotUI.
package models

import "time"

// Memory is the full record behind one entry of the memories journal.
// EventDate uses the YYYY-MM-DD solar calendar form. UpdatedAt is the
// authority for cache-freshness comparisons.
type Memory struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Text        string    `json:"text,omitempty"`
	EventDate   string    `json:"eventDate"`
	ImageBase64 string    `json:"imageBase64,omitempty"`
	IsDeleted   bool      `json:"isDeleted"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// MemorySummary is the lightweight representation returned by list
// operations: enough to order and display a row, no payload.
type MemorySummary struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	EventDate string    `json:"eventDate"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// LunarEvent is one occurrence of a recurring lunar-calendar anniversary,
// projected onto the solar calendar. Entries are derived from a raw text
// block every time it is parsed; they carry no identity of their own.
type LunarEvent struct {
	LunarDate string `json:"lunarDate"` // "d/m"
	SolarDate string `json:"solarDate"` // "d/m" of this occurrence
	EventName string `json:"eventName"`
	DaysLeft  int    `json:"daysLeft"` // signed, negative = past
	DaysText  string `json:"daysText"`
}

// Reminder is one parsed reminder entry from the remote endpoint.
type Reminder struct {
	ID         int    `json:"id"`
	Person     string `json:"person"`
	Content    string `json:"content"`
	Time       string `json:"time"`
	RepeatType string `json:"repeatType"`
	RawText    string `json:"rawText"`
}
