package contract

import (
	"context"
	"time"
)

// Repository is the typed CRUD and query façade over the document datastore.
// Implementations apply the same normalization on every read path so stored
// and retrieved shapes never silently diverge.
type Repository interface {
	CustomerByPhone(ctx context.Context, phoneNumber string) (*Customer, error)
	CustomerByName(ctx context.Context, name string) (*Customer, error)
	CreateCustomer(ctx context.Context, c Customer) (string, error)

	ReservationByID(ctx context.Context, id string) (*Reservation, error)
	ReservationsByCustomer(ctx context.Context, customerID string) ([]Reservation, error)
	AllReservations(ctx context.Context) ([]Reservation, error)
	ReservationsByTimeRange(ctx context.Context, start, end time.Time) ([]Reservation, error)
	CreateReservation(ctx context.Context, r Reservation) (string, error)
	UpdateReservation(ctx context.Context, id string, patch ReservationUpdate) error
	DeleteReservation(ctx context.Context, id string) error

	// AllTables returns tables ordered by ascending seating capacity.
	AllTables(ctx context.Context) ([]Table, error)
	CreateTable(ctx context.Context, t Table) (string, error)
	UpdateTable(ctx context.Context, t Table) error
	DeleteTable(ctx context.Context, id string) error
}

// ToolExecutor runs one bound tool by name. Unknown names fail with
// ErrUnknownTool; every other failure is folded into the ToolResult so the
// dialogue can continue.
type ToolExecutor func(ctx context.Context, tool string, args map[string]any) (ToolResult, error)
