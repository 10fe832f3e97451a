package model

import "time"

// Event is a calendar entry as the backend returns it. Start and End are
// kept as the raw strings the backend sent; the backend has emitted several
// shapes over time, so they are parsed on use and never trusted as
// structured data.
type Event struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	Start string `json:"start"`
	End   string `json:"end"`
}

// CreateEvent is the payload for creating an event. Start and End must be in
// transport format ("2024-01-23T06:00:00+08:00").
type CreateEvent struct {
	Title string `json:"title"`
	Start string `json:"start"`
	End   string `json:"end"`
}

// EventForm is the edit form the agenda view binds: a date plus HH:MM start
// and end times on that date.
type EventForm struct {
	Title     string `json:"title" validate:"required"`
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime string `json:"startTime" validate:"required,datetime=15:04"`
	EndTime   string `json:"endTime" validate:"required,datetime=15:04"`
}

// Expense is a recorded farm expense.
type Expense struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Cost        float64 `json:"cost"`
	CreatedAt   string  `json:"createdAt"`
}

type CreateExpense struct {
	Name        string  `json:"name" validate:"required"`
	Description string  `json:"description"`
	Cost        float64 `json:"cost" validate:"gte=0"`
}

// Sale is one egg sales transaction.
type Sale struct {
	ID           int     `json:"id"`
	TransactedBy string  `json:"transactedBy"`
	EggSize      string  `json:"eggSize"`
	Quantity     int     `json:"quantity"`
	TotalSales   float64 `json:"totalSales"`
	CreatedAt    string  `json:"createdAt"`
}

type CreateSale struct {
	TransactedBy string  `json:"transactedBy" validate:"required"`
	EggSize      string  `json:"eggSize" validate:"required,oneof=Small Medium Large"`
	Quantity     int     `json:"quantity" validate:"gte=0,lte=100"`
	TotalSales   float64 `json:"totalSales" validate:"gte=0"`
}

// Egg is an inventory record of one harvest.
type Egg struct {
	ID          int    `json:"id"`
	HarvestBy   string `json:"harvestBy"`
	EggSize     string `json:"eggSize"`
	EggCount    int    `json:"eggCount"`
	HarvestTime string `json:"harvestTime"`
}

type CreateEgg struct {
	HarvestBy string `json:"harvestBy" validate:"required"`
	EggSize   string `json:"eggSize" validate:"required,oneof=Small Medium Large"`
	EggCount  int    `json:"eggCount" validate:"gte=0,lte=100"`
}

// Order is a customer egg order.
type Order struct {
	ID           int    `json:"id"`
	CustomerName string `json:"customerName"`
	EggSize      string `json:"eggSize"`
	Quantity     int    `json:"quantity"`
	CreatedAt    string `json:"createdAt"`
}

type CreateOrder struct {
	CustomerName string `json:"customerName" validate:"required"`
	EggSize      string `json:"eggSize" validate:"required,oneof=Small Medium Large"`
	Quantity     int    `json:"quantity" validate:"gt=0"`
}

// Notification is a message shown in the notification menu.
type Notification struct {
	ID        int    `json:"id"`
	Message   string `json:"message"`
	IsRead    bool   `json:"isRead"`
	CreatedAt string `json:"createdAt"`
}

// Occurrence is a single concrete instance of a (possibly recurring) entry,
// after recurrence expansion and timezone normalization.
type Occurrence struct {
	SourceID string // feed or task ID
	UID      string // iCalendar UID or task ID

	// InstanceKey uniquely identifies a single occurrence of a recurring
	// entry, derived from the local start time.
	InstanceKey string

	Summary     string
	Description string
	Location    string

	AllDay bool

	// Start / End are in the farm's home timezone.
	Start time.Time
	End   time.Time
}
