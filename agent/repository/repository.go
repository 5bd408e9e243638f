// Package repository is the typed façade over the document datastore for
// customers, reservations, and tables. Stored documents are schemaless;
// every read goes through the same normalization so heterogeneous stored
// shapes resolve to one strict in-memory shape.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	contractx "github.com/lazarovttac/messirve-prototype/agent/contract"
	docstorex "github.com/lazarovttac/messirve-prototype/pkg/docstore"
)

const (
	collectionCustomers    = "customers"
	collectionReservations = "reservations"
	collectionTables       = "tables"
)

type Repository struct {
	customers    docstorex.Collection
	reservations docstorex.Collection
	tables       docstorex.Collection
}

func New(store docstorex.Store) *Repository {
	return &Repository{
		customers:    store.Collection(collectionCustomers),
		reservations: store.Collection(collectionReservations),
		tables:       store.Collection(collectionTables),
	}
}

/* -------------------------------- Customers ------------------------------ */

func (r *Repository) CustomerByPhone(ctx context.Context, phoneNumber string) (*contractx.Customer, error) {
	return r.findCustomer(ctx, "phoneNumber", NormalizePhone(phoneNumber))
}

func (r *Repository) CustomerByName(ctx context.Context, name string) (*contractx.Customer, error) {
	return r.findCustomer(ctx, "name", strings.TrimSpace(name))
}

func (r *Repository) findCustomer(ctx context.Context, field, value string) (*contractx.Customer, error) {
	docs, err := r.customers.Query(ctx, docstorex.Query{
		Filters: []docstorex.Filter{{Field: field, Op: docstorex.OpEq, Value: value}},
	})
	if err != nil {
		return nil, wrapRepoErr(err, "find customer by %s", field)
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("%w: customer %s=%s", contractx.ErrNotFound, field, value)
	}
	customer := normalizeCustomer(docs[0].ID, docs[0].Data)
	return &customer, nil
}

func (r *Repository) CreateCustomer(ctx context.Context, c contractx.Customer) (string, error) {
	id, err := r.customers.Add(ctx, map[string]any{
		"name":        strings.TrimSpace(c.Name),
		"phoneNumber": NormalizePhone(c.PhoneNumber),
	})
	if err != nil {
		return "", wrapRepoErr(err, "create customer")
	}
	return id, nil
}

/* ------------------------------ Reservations ----------------------------- */

func (r *Repository) ReservationByID(ctx context.Context, id string) (*contractx.Reservation, error) {
	doc, err := r.reservations.Get(ctx, id)
	if err != nil {
		if errors.Is(err, docstorex.ErrDocNotFound) {
			return nil, fmt.Errorf("%w: reservation id=%s", contractx.ErrNotFound, id)
		}
		return nil, wrapRepoErr(err, "get reservation id=%s", id)
	}
	res := normalizeReservation(id, doc)
	return &res, nil
}

func (r *Repository) ReservationsByCustomer(ctx context.Context, customerID string) ([]contractx.Reservation, error) {
	docs, err := r.reservations.Query(ctx, docstorex.Query{
		Filters: []docstorex.Filter{{Field: "customerId", Op: docstorex.OpEq, Value: customerID}},
	})
	if err != nil {
		return nil, wrapRepoErr(err, "reservations by customer=%s", customerID)
	}
	return normalizeReservations(docs), nil
}

func (r *Repository) AllReservations(ctx context.Context) ([]contractx.Reservation, error) {
	docs, err := r.reservations.Query(ctx, docstorex.Query{})
	if err != nil {
		return nil, wrapRepoErr(err, "all reservations")
	}
	return normalizeReservations(docs), nil
}

func (r *Repository) ReservationsByTimeRange(ctx context.Context, start, end time.Time) ([]contractx.Reservation, error) {
	docs, err := r.reservations.Query(ctx, docstorex.Query{
		Filters: []docstorex.Filter{
			{Field: "time", Op: docstorex.OpGte, Value: start},
			{Field: "time", Op: docstorex.OpLte, Value: end},
		},
		OrderBy: []docstorex.Order{{Field: "time"}},
	})
	if err != nil {
		return nil, wrapRepoErr(err, "reservations in range")
	}
	return normalizeReservations(docs), nil
}

func (r *Repository) CreateReservation(ctx context.Context, res contractx.Reservation) (string, error) {
	if res.Status == "" {
		res.Status = contractx.ReservationPending
	}
	id, err := r.reservations.Add(ctx, reservationDoc(res))
	if err != nil {
		return "", wrapRepoErr(err, "create reservation")
	}
	return id, nil
}

func (r *Repository) UpdateReservation(ctx context.Context, id string, patch contractx.ReservationUpdate) error {
	fields := make(map[string]any)
	if patch.CustomerID != nil {
		fields["customerId"] = *patch.CustomerID
	}
	if patch.CustomerName != nil {
		fields["customerName"] = strings.TrimSpace(*patch.CustomerName)
	}
	if patch.Table != nil {
		fields["table"] = *patch.Table
	}
	if patch.Time != nil {
		fields["time"] = patch.Time.UTC().Format(time.RFC3339Nano)
	}
	if patch.People != nil {
		fields["people"] = *patch.People
	}
	if patch.Status != nil {
		fields["status"] = string(*patch.Status)
	}
	if patch.Meals != nil {
		fields["meals"] = mealDocs(*patch.Meals)
	}
	if len(fields) == 0 {
		return nil
	}

	if err := r.reservations.Update(ctx, id, fields); err != nil {
		if errors.Is(err, docstorex.ErrDocNotFound) {
			return fmt.Errorf("%w: reservation id=%s", contractx.ErrNotFound, id)
		}
		return wrapRepoErr(err, "update reservation id=%s", id)
	}
	return nil
}

func (r *Repository) DeleteReservation(ctx context.Context, id string) error {
	if err := r.reservations.Delete(ctx, id); err != nil {
		if errors.Is(err, docstorex.ErrDocNotFound) {
			return fmt.Errorf("%w: reservation id=%s", contractx.ErrNotFound, id)
		}
		return wrapRepoErr(err, "delete reservation id=%s", id)
	}
	return nil
}

/* --------------------------------- Tables -------------------------------- */

func (r *Repository) AllTables(ctx context.Context) ([]contractx.Table, error) {
	docs, err := r.tables.Query(ctx, docstorex.Query{
		OrderBy: []docstorex.Order{{Field: "people", Numeric: true}},
	})
	if err != nil {
		return nil, wrapRepoErr(err, "all tables")
	}

	tables := make([]contractx.Table, 0, len(docs))
	for _, doc := range docs {
		tables = append(tables, normalizeTable(doc.ID, doc.Data))
	}
	return tables, nil
}

func (r *Repository) CreateTable(ctx context.Context, t contractx.Table) (string, error) {
	id, err := r.tables.Add(ctx, tableDoc(t))
	if err != nil {
		return "", wrapRepoErr(err, "create table")
	}
	return id, nil
}

func (r *Repository) UpdateTable(ctx context.Context, t contractx.Table) error {
	if strings.TrimSpace(t.ID) == "" {
		return fmt.Errorf("%w: table id is required", contractx.ErrValidation)
	}
	if err := r.tables.Set(ctx, t.ID, tableDoc(t)); err != nil {
		return wrapRepoErr(err, "update table id=%s", t.ID)
	}
	return nil
}

func (r *Repository) DeleteTable(ctx context.Context, id string) error {
	if err := r.tables.Delete(ctx, id); err != nil {
		if errors.Is(err, docstorex.ErrDocNotFound) {
			return fmt.Errorf("%w: table id=%s", contractx.ErrNotFound, id)
		}
		return wrapRepoErr(err, "delete table id=%s", id)
	}
	return nil
}

/* -------------------------------- Encoding ------------------------------- */

func reservationDoc(res contractx.Reservation) map[string]any {
	doc := map[string]any{
		"customerId":   res.CustomerID,
		"customerName": strings.TrimSpace(res.CustomerName),
		"table":        res.Table,
		"people":       res.People,
		"meals":        mealDocs(res.Meals),
		"status":       string(res.Status),
	}
	if res.HasValidTime() {
		doc["time"] = res.Time.UTC().Format(time.RFC3339Nano)
	} else {
		doc["time"] = nil
	}
	return doc
}

func mealDocs(meals []contractx.Meal) []any {
	out := make([]any, 0, len(meals))
	for _, m := range meals {
		status := m.Status
		if status == "" {
			status = contractx.MealPending
		}
		out = append(out, map[string]any{
			"name":     m.Name,
			"prepTime": m.PrepTime,
			"status":   string(status),
		})
	}
	return out
}

func tableDoc(t contractx.Table) map[string]any {
	return map[string]any{
		"name":   strings.TrimSpace(t.Name),
		"people": t.People,
	}
}

func wrapRepoErr(err error, format string, args ...any) error {
	wrapped := fmt.Errorf("%w: %s: %v", contractx.ErrRepository, fmt.Sprintf(format, args...), err)
	log.Error().Err(err).Msg(wrapped.Error())
	return wrapped
}
