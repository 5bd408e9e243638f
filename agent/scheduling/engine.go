// Package scheduling holds the reservation decision logic: operating-hours
// validation, overlap detection, and first-fit table assignment. Failures
// are reported as structured results so the dialogue layer can relay them
// verbatim; nothing here mutates state.
package scheduling

import (
	"context"
	"fmt"
	"sort"
	"time"

	contractx "github.com/lazarovttac/messirve-prototype/agent/contract"
)

const (
	// ReservationWindow is the span a booking occupies from its start time.
	ReservationWindow = 3 * time.Hour

	openingHour = 9
	closingHour = 22
)

// ValidationResult reports whether a requested window is bookable and, when
// it is not, a human-readable reason the model can relay to the customer.
type ValidationResult struct {
	IsValid bool
	Message string
}

type Engine struct {
	repo contractx.Repository
}

func NewEngine(repo contractx.Repository) *Engine {
	return &Engine{repo: repo}
}

// ValidateReservationWindow checks operating hours and the customer's own
// non-cancelled reservations for a conflict with [start, start+3h).
func (e *Engine) ValidateReservationWindow(ctx context.Context, start time.Time, customerID string) (ValidationResult, error) {
	if hour := start.Hour(); hour < openingHour || hour >= closingHour {
		return ValidationResult{
			Message: "Reservations are only available between 9:00 AM and 10:00 PM.",
		}, nil
	}

	end := start.Add(ReservationWindow)
	if end.Hour() >= closingHour || end.Day() != start.Day() {
		return ValidationResult{
			Message: "This reservation would end after closing time. Please pick an earlier hour.",
		}, nil
	}

	existing, err := e.repo.ReservationsByCustomer(ctx, customerID)
	if err != nil {
		return ValidationResult{}, fmt.Errorf("load customer reservations: %w", err)
	}

	for _, res := range existing {
		if res.Status == contractx.ReservationCancelled || !res.HasValidTime() {
			continue
		}
		if overlaps(start, end, res.Time, res.Time.Add(ReservationWindow)) {
			return ValidationResult{
				Message: "You already have a reservation during this time. Please pick a different time.",
			}, nil
		}
	}

	return ValidationResult{IsValid: true, Message: "The time slot is available."}, nil
}

// AssignTable finds the first table, in ascending capacity order, that seats
// the party and is free for the window starting at t. Double-booking uses
// the same interval-overlap test as window validation, so two overlapping
// but not identical reservations can never claim one table.
func (e *Engine) AssignTable(ctx context.Context, t time.Time, partySize int) (contractx.TableAssignment, error) {
	tables, err := e.repo.AllTables(ctx)
	if err != nil {
		return contractx.TableAssignment{}, fmt.Errorf("load tables: %w", err)
	}
	reservations, err := e.repo.AllReservations(ctx)
	if err != nil {
		return contractx.TableAssignment{}, fmt.Errorf("load reservations: %w", err)
	}

	// The repository orders tables by capacity already; keep the invariant
	// locally so the first-fit tie-break stays deterministic.
	sort.SliceStable(tables, func(i, j int) bool { return tables[i].People < tables[j].People })

	start, end := t, t.Add(ReservationWindow)
	booked := make(map[string]struct{}, len(reservations))
	for _, res := range reservations {
		if res.Status == contractx.ReservationCancelled || !res.HasValidTime() {
			continue
		}
		if overlaps(start, end, res.Time, res.Time.Add(ReservationWindow)) {
			booked[res.Table] = struct{}{}
		}
	}

	for _, table := range tables {
		if _, taken := booked[table.ID]; taken {
			continue
		}
		if partySize <= table.People {
			return contractx.TableAssignment{TableID: table.ID}, nil
		}
	}

	return contractx.TableAssignment{
		TableID: contractx.UnassignedTableID,
		Message: "no table available for that time and party size",
	}, nil
}

// overlaps reports whether [s1,e1) and [s2,e2) intersect.
func overlaps(s1, e1, s2, e2 time.Time) bool {
	return s1.Before(e2) && s2.Before(e1)
}
