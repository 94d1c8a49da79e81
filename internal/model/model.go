// Package model defines the core domain types for the DJ booking calendar.
package model

import "time"

// Defaults applied to fields a client leaves out when creating an event.
const (
	DefaultCurrency = "EUR"
	DefaultStatus   = StatusConfirmed
	DefaultType     = "club"
)

// Status values the summary endpoints care about. Any other string is
// accepted and stored as-is.
const (
	StatusConfirmed = "confirmed"
	StatusPending   = "pending"
)

// Event is a single booked gig.
type Event struct {
	ID            int64     `json:"id"`
	Title         string    `json:"title"`
	Date          string    `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime     string    `json:"startTime" validate:"required,datetime=15:04"`
	EndTime       string    `json:"endTime" validate:"omitempty,datetime=15:04"`
	VenueName     string    `json:"venueName"`
	VenueAddress  string    `json:"venueAddress"`
	Fee           float64   `json:"fee"`
	Currency      string    `json:"currency" validate:"len=3"`
	Status        string    `json:"status"`
	Type          string    `json:"type"`
	Notes         string    `json:"notes"`
	TechEquipment string    `json:"techEquipment"`
	TechSetup     string    `json:"techSetup"`
	TechPlaylist  string    `json:"techPlaylist"`
	TechSetupTime *int      `json:"techSetupTime"`
	TechNotes     string    `json:"techNotes"`
	CreatedAt     time.Time `json:"createdAt"`
}

// NewEvent returns an event with every optional field at its default.
func NewEvent() *Event {
	return &Event{
		Currency: DefaultCurrency,
		Status:   DefaultStatus,
		Type:     DefaultType,
	}
}

// Clone returns a deep copy so callers can mutate it without touching the
// original.
func (e *Event) Clone() *Event {
	c := *e
	if e.TechSetupTime != nil {
		v := *e.TechSetupTime
		c.TechSetupTime = &v
	}
	return &c
}

// EventFilter narrows a listing. Empty fields do not filter.
type EventFilter struct {
	Search string
	Type   string
	Status string
}

// Stats holds the aggregate counters shown on the dashboard.
type Stats struct {
	TotalEvents     int     `json:"total_events"`
	ConfirmedEvents int     `json:"confirmed_events"`
	PendingEvents   int     `json:"pending_events"`
	TotalRevenue    float64 `json:"total_revenue"`
}

// TypeRevenue is the confirmed revenue for one event type.
type TypeRevenue struct {
	Type    string  `json:"type"`
	Revenue float64 `json:"revenue"`
	Count   int     `json:"count"`
}

// MonthTotal is a raw per-month aggregate keyed by "YYYY-MM".
type MonthTotal struct {
	Key     string
	Revenue float64
	Count   int
}

// MonthlyRevenue is one labelled bucket of the analytics window.
type MonthlyRevenue struct {
	Month       string  `json:"month"`
	Year        int     `json:"year"`
	MonthNumber int     `json:"month_number"`
	Revenue     float64 `json:"revenue"`
	Count       int     `json:"count"`
}

// Analytics groups the revenue breakdowns.
type Analytics struct {
	MonthlyRevenue []MonthlyRevenue `json:"monthly_revenue"`
	RevenueByType  []TypeRevenue    `json:"revenue_by_type"`
}

// ErrorResponse is the JSON envelope for every failed request.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// EventsResponse wraps a listing.
type EventsResponse struct {
	Success bool    `json:"success"`
	Events  []Event `json:"events"`
}

// EventResponse wraps a single created or updated event.
type EventResponse struct {
	Success bool   `json:"success"`
	Event   *Event `json:"event"`
}

// MessageResponse carries a human readable confirmation.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// StatsResponse wraps Stats.
type StatsResponse struct {
	Success bool  `json:"success"`
	Stats   Stats `json:"stats"`
}

// AnalyticsResponse wraps Analytics.
type AnalyticsResponse struct {
	Success   bool      `json:"success"`
	Analytics Analytics `json:"analytics"`
}

// HealthResponse is returned by the liveness probe.
type HealthResponse struct {
	Success bool   `json:"success"`
	Status  string `json:"status"`
}
