package contract

import (
	"strings"
	"time"
)

// ReservationStatus is the lifecycle state of a reservation. Chat tools never
// hard-delete a reservation; cancellation is a status transition.
type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "pending"
	ReservationConfirmed ReservationStatus = "confirmed"
	ReservationCancelled ReservationStatus = "cancelled"
	ReservationCompleted ReservationStatus = "completed"
)

// MealStatus tracks kitchen progress of a single meal, independent of the
// parent reservation's status.
type MealStatus string

const (
	MealPending    MealStatus = "pending"
	MealUpcoming   MealStatus = "upcoming"
	MealInProgress MealStatus = "in-progress"
	MealUrgent     MealStatus = "urgent"
	MealCompleted  MealStatus = "completed"
)

type Meal struct {
	Name     string     `json:"name"`
	PrepTime int        `json:"prepTime"`
	Status   MealStatus `json:"status"`
}

type Customer struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	PhoneNumber string `json:"phoneNumber"`
}

// Reservation is the normalized in-memory shape. Time is the zero time.Time
// when the stored value could not be parsed; callers must treat that as
// "invalid", never as the epoch.
type Reservation struct {
	ID           string            `json:"id"`
	CustomerID   string            `json:"customerId"`
	CustomerName string            `json:"customerName"`
	Table        string            `json:"table"`
	Time         time.Time         `json:"time"`
	People       int               `json:"people"`
	Meals        []Meal            `json:"meals"`
	Status       ReservationStatus `json:"status"`
}

// HasValidTime reports whether the reservation's time survived normalization.
func (r Reservation) HasValidTime() bool {
	return !r.Time.IsZero()
}

type Table struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	People int    `json:"people"`
}

// UnassignedTableID is the sole failure signal of a table assignment attempt.
const UnassignedTableID = "-1"

// TableAssignment is the transient result of trying to seat a party at a
// time. It is produced per attempt and never persisted.
type TableAssignment struct {
	TableID string `json:"id"`
	Message string `json:"message"`
}

func (a TableAssignment) Assigned() bool {
	return a.TableID != UnassignedTableID && strings.TrimSpace(a.TableID) != ""
}

// ReservationUpdate is a partial patch; nil fields are left untouched.
type ReservationUpdate struct {
	CustomerID   *string
	CustomerName *string
	Table        *string
	Time         *time.Time
	People       *int
	Meals        *[]Meal
	Status       *ReservationStatus
}

// IsEmpty reports whether the patch would change nothing.
func (u ReservationUpdate) IsEmpty() bool {
	return u.CustomerID == nil && u.CustomerName == nil && u.Table == nil &&
		u.Time == nil && u.People == nil && u.Meals == nil && u.Status == nil
}

// ToolResult is the outcome of one bound tool execution. Result carries the
// human-readable confirmation; Error carries the human-readable failure.
// Exactly one of the two is set.
type ToolResult struct {
	Tool   string `json:"tool"`
	Result string `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// ChatUser identifies the sender of an inbound transport event.
type ChatUser struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	PhoneNumber string `json:"phoneNumber"`
}
