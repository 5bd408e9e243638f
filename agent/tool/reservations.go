package tool

import (
	"context"
	"errors"
	"fmt"
	"strings"

	contractx "github.com/lazarovttac/messirve-prototype/agent/contract"
	schedulingx "github.com/lazarovttac/messirve-prototype/agent/scheduling"
)

// boundTools carries the per-customer scope shared by every bound operation.
type boundTools struct {
	repo       contractx.Repository
	engine     *schedulingx.Engine
	customerID string
}

func (b *boundTools) create(ctx context.Context, args map[string]any) (string, error) {
	rawTime, err := stringArg(args, "time")
	if err != nil {
		return err.Error(), nil
	}
	customerName, err := stringArg(args, "customerName")
	if err != nil {
		return err.Error(), nil
	}
	people, err := intArg(args, "people")
	if err != nil {
		return err.Error(), nil
	}
	if people <= 0 {
		return "The number of people must be a positive number.", nil
	}
	meals, err := mealsArg(args, "meals", false)
	if err != nil {
		return err.Error(), nil
	}

	at, ok := parseTime(rawTime)
	if !ok {
		return "The provided date and time is not valid.", nil
	}

	validation, err := b.engine.ValidateReservationWindow(ctx, at, b.customerID)
	if err != nil {
		return "", err
	}
	if !validation.IsValid {
		return validation.Message, nil
	}

	assignment, err := b.engine.AssignTable(ctx, at, people)
	if err != nil {
		return "", err
	}
	if !assignment.Assigned() {
		return assignment.Message, nil
	}

	trimmedName := strings.TrimSpace(customerName)
	id, err := b.repo.CreateReservation(ctx, contractx.Reservation{
		CustomerID:   b.customerID,
		CustomerName: trimmedName,
		Table:        assignment.TableID,
		Time:         at,
		People:       people,
		Meals:        meals,
		Status:       contractx.ReservationPending,
	})
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(
		"Reservation %s created for %s (%d people) on %s at table %s.",
		id, trimmedName, people, at.Format("Monday, 2 January 2006 15:04"), assignment.TableID,
	), nil
}

func (b *boundTools) addMeal(ctx context.Context, args map[string]any) (string, error) {
	id, err := stringArg(args, "reservationId")
	if err != nil {
		return err.Error(), nil
	}
	meal, err := mealArg(args, "meal")
	if err != nil {
		return err.Error(), nil
	}

	reservation, err := b.repo.ReservationByID(ctx, id)
	if err != nil {
		if errors.Is(err, contractx.ErrNotFound) {
			return "Reservation not found.", nil
		}
		return "", err
	}

	meals := append(reservation.Meals, meal)
	if err := b.repo.UpdateReservation(ctx, id, contractx.ReservationUpdate{Meals: &meals}); err != nil {
		return "", err
	}
	return fmt.Sprintf("Dish '%s' added to your reservation.", meal.Name), nil
}

// cancel is idempotent: cancelling an already-cancelled reservation succeeds
// silently.
func (b *boundTools) cancel(ctx context.Context, args map[string]any) (string, error) {
	id, err := stringArg(args, "reservationId")
	if err != nil {
		return err.Error(), nil
	}

	status := contractx.ReservationCancelled
	if err := b.repo.UpdateReservation(ctx, id, contractx.ReservationUpdate{Status: &status}); err != nil {
		if errors.Is(err, contractx.ErrNotFound) {
			return "Reservation not found.", nil
		}
		return "", err
	}
	return "Your reservation has been cancelled.", nil
}

func (b *boundTools) status(ctx context.Context, args map[string]any) (string, error) {
	id, err := stringArg(args, "reservationId")
	if err != nil {
		return err.Error(), nil
	}

	reservation, err := b.repo.ReservationByID(ctx, id)
	if err != nil {
		if errors.Is(err, contractx.ErrNotFound) {
			return "Reservation not found.", nil
		}
		return "", err
	}

	when := "an unknown time"
	if reservation.HasValidTime() {
		when = reservation.Time.Format("Monday, 2 January 2006 15:04")
	}
	return fmt.Sprintf(
		"The reservation for %s at table %s is currently '%s'.",
		when, reservation.Table, reservation.Status,
	), nil
}

func (b *boundTools) changeTime(ctx context.Context, args map[string]any) (string, error) {
	id, err := stringArg(args, "reservationId")
	if err != nil {
		return err.Error(), nil
	}
	rawTime, err := stringArg(args, "newTime")
	if err != nil {
		return err.Error(), nil
	}

	at, ok := parseTime(rawTime)
	if !ok {
		return "The provided date and time is not valid.", nil
	}

	validation, err := b.engine.ValidateReservationWindow(ctx, at, b.customerID)
	if err != nil {
		return "", err
	}
	if !validation.IsValid {
		return validation.Message, nil
	}

	reservation, err := b.repo.ReservationByID(ctx, id)
	if err != nil {
		if errors.Is(err, contractx.ErrNotFound) {
			return "Reservation not found.", nil
		}
		return "", err
	}

	// Re-run assignment for the existing party size at the new time.
	assignment, err := b.engine.AssignTable(ctx, at, reservation.People)
	if err != nil {
		return "", err
	}
	if !assignment.Assigned() {
		return assignment.Message, nil
	}

	if err := b.repo.UpdateReservation(ctx, id, contractx.ReservationUpdate{
		Time:  &at,
		Table: &assignment.TableID,
	}); err != nil {
		return "", err
	}

	return fmt.Sprintf(
		"Reservation time changed to %s at table %s.",
		at.Format("Monday, 2 January 2006 15:04"), assignment.TableID,
	), nil
}

func (b *boundTools) updateDetails(ctx context.Context, args map[string]any) (string, error) {
	id, err := stringArg(args, "reservationId")
	if err != nil {
		return err.Error(), nil
	}

	var patch contractx.ReservationUpdate
	if name, ok := optionalStringArg(args, "customerName"); ok && strings.TrimSpace(name) != "" {
		trimmed := strings.TrimSpace(name)
		patch.CustomerName = &trimmed
	}
	if people, ok, perr := optionalIntArg(args, "people"); perr != nil {
		return perr.Error(), nil
	} else if ok && people > 0 {
		patch.People = &people
	}

	if patch.IsEmpty() {
		return "Nothing to update.", nil
	}

	if err := b.repo.UpdateReservation(ctx, id, patch); err != nil {
		if errors.Is(err, contractx.ErrNotFound) {
			return "Reservation not found.", nil
		}
		return "", err
	}
	return "Reservation details updated.", nil
}

func (b *boundTools) replaceMeals(ctx context.Context, args map[string]any) (string, error) {
	id, err := stringArg(args, "reservationId")
	if err != nil {
		return err.Error(), nil
	}
	meals, err := mealsArg(args, "meals", true)
	if err != nil {
		return err.Error(), nil
	}

	if _, err := b.repo.ReservationByID(ctx, id); err != nil {
		if errors.Is(err, contractx.ErrNotFound) {
			return "Reservation not found.", nil
		}
		return "", err
	}

	if err := b.repo.UpdateReservation(ctx, id, contractx.ReservationUpdate{Meals: &meals}); err != nil {
		return "", err
	}
	return "The meals of the reservation have been updated.", nil
}
