// Package prompt builds the per-turn system instruction from the embedded
// chat template: restaurant facts, the localized current date/time, and the
// requesting customer's live reservation listing.
package prompt

import (
	_ "embed"
	"fmt"
	"strings"
	"time"

	contractx "github.com/lazarovttac/messirve-prototype/agent/contract"
	restaurantx "github.com/lazarovttac/messirve-prototype/agent/restaurant"
)

//go:embed template/chat.md
var chatTemplateRaw string

const dateTimeLayout = "Monday, 2 January 2006 15:04 MST"

// BuildSystemInstruction substitutes live values into the chat template.
// The reservation snapshot is recomputed by the caller on every turn so the
// model never sees stale state.
func BuildSystemInstruction(rc restaurantx.Config, now time.Time, reservations []contractx.Reservation) string {
	replacer := strings.NewReplacer(
		"{{restaurantName}}", rc.Name,
		"{{address}}", rc.Address,
		"{{mapsURL}}", rc.MapsURL,
		"{{description}}", rc.Description,
		"{{menuURL}}", rc.MenuURL,
		"{{menu}}", formatMenu(rc.Menu),
		"{{currentDateTime}}", now.Format(dateTimeLayout),
		"{{reservations}}", FormatReservations(reservations),
	)
	return strings.TrimSpace(replacer.Replace(chatTemplateRaw))
}

func formatMenu(items []restaurantx.MenuItem) string {
	if len(items) == 0 {
		return "(menu not available)"
	}
	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, fmt.Sprintf("- %s: %s", item.Name, item.Description))
	}
	return strings.Join(lines, "\n")
}

// FormatReservations renders the structured listing shown to the model:
// id, time, name, party size, table, status, and meals per reservation.
func FormatReservations(reservations []contractx.Reservation) string {
	if len(reservations) == 0 {
		return "(no current reservations)"
	}

	blocks := make([]string, 0, len(reservations))
	for _, r := range reservations {
		when := "(invalid time)"
		if r.HasValidTime() {
			when = r.Time.Format(dateTimeLayout)
		}

		meals := "(no meals)"
		if len(r.Meals) > 0 {
			names := make([]string, 0, len(r.Meals))
			for _, m := range r.Meals {
				names = append(names, m.Name)
			}
			meals = strings.Join(names, ", ")
		}

		blocks = append(blocks, fmt.Sprintf(
			"ID: %s\n  Date: %s\n  Under the name of: %s\n  Number of people: %d\n  Table: %s\n  Status: %s\n  Dishes: %s",
			r.ID, when, r.CustomerName, r.People, r.Table, r.Status, meals,
		))
	}
	return strings.Join(blocks, "\n---\n")
}
