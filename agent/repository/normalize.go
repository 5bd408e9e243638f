package repository

import (
	"strconv"
	"strings"
	"time"

	contractx "github.com/lazarovttac/messirve-prototype/agent/contract"
	docstorex "github.com/lazarovttac/messirve-prototype/pkg/docstore"
)

// Stored documents may carry people as a string or a number, meals as a
// missing field, and time in several representations. Normalization is the
// single place those shapes collapse to the strict contract types; it is
// applied on every read path.

func normalizeReservations(docs []docstorex.Document) []contractx.Reservation {
	out := make([]contractx.Reservation, 0, len(docs))
	for _, doc := range docs {
		out = append(out, normalizeReservation(doc.ID, doc.Data))
	}
	return out
}

func normalizeReservation(id string, data map[string]any) contractx.Reservation {
	status := contractx.ReservationStatus(asString(data["status"]))
	if status == "" {
		status = contractx.ReservationPending
	}

	return contractx.Reservation{
		ID:           id,
		CustomerID:   asString(data["customerId"]),
		CustomerName: strings.TrimSpace(asString(data["customerName"])),
		Table:        asString(data["table"]),
		Time:         coerceTime(data["time"]),
		People:       coercePeople(data["people"]),
		Meals:        coerceMeals(data["meals"]),
		Status:       status,
	}
}

func normalizeCustomer(id string, data map[string]any) contractx.Customer {
	return contractx.Customer{
		ID:          id,
		Name:        strings.TrimSpace(asString(data["name"])),
		PhoneNumber: strings.TrimSpace(asString(data["phoneNumber"])),
	}
}

func normalizeTable(id string, data map[string]any) contractx.Table {
	return contractx.Table{
		ID:     id,
		Name:   asString(data["name"]),
		People: coercePeople(data["people"]),
	}
}

// coercePeople accepts a stored string or number; anything else is 0.
func coercePeople(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int32:
		return int(n)
	case int64:
		return int(n)
	case float32:
		return int(n)
	case float64:
		return int(n)
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0
		}
		return parsed
	default:
		return 0
	}
}

// coerceMeals returns an empty list for a missing or non-sequence field.
func coerceMeals(v any) []contractx.Meal {
	items, ok := v.([]any)
	if !ok {
		return []contractx.Meal{}
	}

	meals := make([]contractx.Meal, 0, len(items))
	for _, item := range items {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		status := contractx.MealStatus(asString(entry["status"]))
		if status == "" {
			status = contractx.MealPending
		}
		meals = append(meals, contractx.Meal{
			Name:     asString(entry["name"]),
			PrepTime: coercePeople(entry["prepTime"]),
			Status:   status,
		})
	}
	return meals
}

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

// coerceTime accepts a native time, an RFC 3339-ish string, or a unix-epoch
// number from the datastore. Unparseable values become the zero time, the
// explicit invalid sentinel.
func coerceTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		trimmed := strings.TrimSpace(t)
		for _, layout := range timeLayouts {
			if parsed, err := time.Parse(layout, trimmed); err == nil {
				return parsed
			}
		}
		return time.Time{}
	case float64:
		return time.Unix(int64(t), 0).UTC()
	case int64:
		return time.Unix(t, 0).UTC()
	default:
		return time.Time{}
	}
}

func asString(v any) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return s
}
