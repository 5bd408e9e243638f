package tool

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	contractx "github.com/lazarovttac/messirve-prototype/agent/contract"
	repositoryx "github.com/lazarovttac/messirve-prototype/agent/repository"
	schedulingx "github.com/lazarovttac/messirve-prototype/agent/scheduling"
	docstorex "github.com/lazarovttac/messirve-prototype/pkg/docstore"
)

func newTestExecutor(t *testing.T, customerID string) (contractx.ToolExecutor, contractx.Repository) {
	t.Helper()

	repo := repositoryx.New(docstorex.NewMemoryStore())
	engine := schedulingx.NewEngine(repo)
	binder, err := NewBinder(repo, engine)
	if err != nil {
		t.Fatalf("new binder: %v", err)
	}
	return binder.Bind(customerID), repo
}

func mustTable(t *testing.T, repo contractx.Repository, name string, people int) string {
	t.Helper()

	id, err := repo.CreateTable(context.Background(), contractx.Table{Name: name, People: people})
	if err != nil {
		t.Fatalf("create table: %v", err)
	}
	return id
}

func runTool(t *testing.T, exec contractx.ToolExecutor, name string, args map[string]any) contractx.ToolResult {
	t.Helper()

	res, err := exec(context.Background(), name, args)
	if err != nil {
		t.Fatalf("execute %s: %v", name, err)
	}
	return res
}

func TestDispatchCoversEveryDeclaration(t *testing.T) {
	t.Parallel()

	if len(Declarations()) != len(Names()) {
		t.Fatalf("declarations (%d) and names (%d) out of sync", len(Declarations()), len(Names()))
	}
	for _, name := range Names() {
		if _, ok := dispatch[name]; !ok {
			t.Fatalf("tool %q declared but not dispatched", name)
		}
	}
}

func TestUnknownToolFailsLoudly(t *testing.T) {
	t.Parallel()

	exec, _ := newTestExecutor(t, "c1")

	_, err := exec(context.Background(), "book_flight", nil)
	if !errors.Is(err, contractx.ErrUnknownTool) {
		t.Fatalf("expected ErrUnknownTool, got %v", err)
	}
}

func TestCreateReservationHappyPath(t *testing.T) {
	t.Parallel()

	exec, repo := newTestExecutor(t, "c1")
	tableID := mustTable(t, repo, "Patio", 4)

	res := runTool(t, exec, ToolCreateReservation, map[string]any{
		"time":         "2026-09-12T20:00",
		"customerName": "  Carlos  ",
		"people":       float64(3),
		"meals": []any{
			map[string]any{"name": "Bife de chorizo", "prepTime": float64(25)},
		},
	})
	if res.Error != "" {
		t.Fatalf("unexpected tool error: %q", res.Error)
	}
	if !strings.Contains(res.Result, tableID) {
		t.Fatalf("confirmation should name the table, got %q", res.Result)
	}

	all, err := repo.AllReservations(context.Background())
	if err != nil {
		t.Fatalf("all reservations: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected one reservation, got %d", len(all))
	}
	got := all[0]
	if got.CustomerID != "c1" || got.CustomerName != "Carlos" || got.Table != tableID {
		t.Fatalf("unexpected reservation: %+v", got)
	}
	if got.Status != contractx.ReservationPending {
		t.Fatalf("new reservations start pending, got %q", got.Status)
	}
	if len(got.Meals) != 1 || got.Meals[0].Status != contractx.MealPending {
		t.Fatalf("meal should default to pending: %+v", got.Meals)
	}
}

func TestCreateReservationRejections(t *testing.T) {
	t.Parallel()

	exec, repo := newTestExecutor(t, "c1")
	mustTable(t, repo, "Bar", 2)

	cases := []struct {
		name    string
		args    map[string]any
		wantMsg string
	}{
		{
			"missing name",
			map[string]any{"time": "2026-09-12T20:00", "people": float64(2)},
			"customerName",
		},
		{
			"unparseable time",
			map[string]any{"time": "next friday", "customerName": "Ana", "people": float64(2)},
			"not valid",
		},
		{
			"outside opening hours",
			map[string]any{"time": "2026-09-12T07:00", "customerName": "Ana", "people": float64(2)},
			"between 9:00 AM and 10:00 PM",
		},
		{
			"zero people",
			map[string]any{"time": "2026-09-12T20:00", "customerName": "Ana", "people": float64(0)},
			"positive number",
		},
		{
			"party too large",
			map[string]any{"time": "2026-09-12T12:00", "customerName": "Ana", "people": float64(8)},
			"no table available",
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			res := runTool(t, exec, ToolCreateReservation, tc.args)
			if res.Error != "" {
				t.Fatalf("rejection should be a result, not an error: %q", res.Error)
			}
			if !strings.Contains(res.Result, tc.wantMsg) {
				t.Fatalf("expected %q in %q", tc.wantMsg, res.Result)
			}
		})
	}

	all, err := repo.AllReservations(context.Background())
	if err != nil {
		t.Fatalf("all reservations: %v", err)
	}
	if len(all) != 0 {
		t.Fatalf("rejected creates must not persist, got %d reservations", len(all))
	}
}

func TestCancelReservationIdempotent(t *testing.T) {
	t.Parallel()

	exec, repo := newTestExecutor(t, "c1")
	mustTable(t, repo, "Bar", 2)

	create := runTool(t, exec, ToolCreateReservation, map[string]any{
		"time": "2026-09-12T12:00", "customerName": "Ana", "people": float64(2),
	})
	if create.Error != "" {
		t.Fatalf("create failed: %q", create.Error)
	}
	all, _ := repo.AllReservations(context.Background())
	id := all[0].ID

	first := runTool(t, exec, ToolCancelReservation, map[string]any{"reservationId": id})
	second := runTool(t, exec, ToolCancelReservation, map[string]any{"reservationId": id})
	if first.Result != second.Result {
		t.Fatalf("cancel is not idempotent: %q vs %q", first.Result, second.Result)
	}

	got, err := repo.ReservationByID(context.Background(), id)
	if err != nil {
		t.Fatalf("reservation by id: %v", err)
	}
	if got.Status != contractx.ReservationCancelled {
		t.Fatalf("expected cancelled, got %q", got.Status)
	}

	missing := runTool(t, exec, ToolCancelReservation, map[string]any{"reservationId": "nope"})
	if missing.Result != "Reservation not found." {
		t.Fatalf("unexpected missing-id message: %q", missing.Result)
	}
}

func TestChangeReservationTimeReassignsTable(t *testing.T) {
	t.Parallel()

	exec, repo := newTestExecutor(t, "c1")
	small := mustTable(t, repo, "Bar", 2)
	large := mustTable(t, repo, "Patio", 6)

	runTool(t, exec, ToolCreateReservation, map[string]any{
		"time": "2026-09-12T12:00", "customerName": "Ana", "people": float64(2),
	})
	all, _ := repo.AllReservations(context.Background())
	id := all[0].ID
	if all[0].Table != small {
		t.Fatalf("expected initial assignment to %s, got %s", small, all[0].Table)
	}

	// Another party takes the small table at the new time.
	if _, err := repo.CreateReservation(context.Background(), contractx.Reservation{
		CustomerID: "c2", CustomerName: "Beto", Table: small,
		Time: time.Date(2026, time.September, 12, 18, 0, 0, 0, time.UTC), People: 2,
	}); err != nil {
		t.Fatalf("seed competitor: %v", err)
	}

	res := runTool(t, exec, ToolChangeReservationTime, map[string]any{
		"reservationId": id, "newTime": "2026-09-12T18:00",
	})
	if res.Error != "" {
		t.Fatalf("unexpected tool error: %q", res.Error)
	}

	got, err := repo.ReservationByID(context.Background(), id)
	if err != nil {
		t.Fatalf("reservation by id: %v", err)
	}
	if got.Table != large {
		t.Fatalf("expected reassignment to %s, got %s", large, got.Table)
	}
	if got.Time.Hour() != 18 {
		t.Fatalf("time not updated: %v", got.Time)
	}
}

func TestUpdateReservationDetailsPartialPatch(t *testing.T) {
	t.Parallel()

	exec, repo := newTestExecutor(t, "c1")
	mustTable(t, repo, "Patio", 6)

	runTool(t, exec, ToolCreateReservation, map[string]any{
		"time": "2026-09-12T12:00", "customerName": "Ana", "people": float64(2),
	})
	all, _ := repo.AllReservations(context.Background())
	id := all[0].ID

	res := runTool(t, exec, ToolUpdateReservationInfo, map[string]any{
		"reservationId": id, "people": float64(4),
	})
	if res.Error != "" {
		t.Fatalf("unexpected tool error: %q", res.Error)
	}

	got, _ := repo.ReservationByID(context.Background(), id)
	if got.People != 4 {
		t.Fatalf("people not updated: %d", got.People)
	}
	if got.CustomerName != "Ana" {
		t.Fatalf("untouched name changed: %q", got.CustomerName)
	}

	empty := runTool(t, exec, ToolUpdateReservationInfo, map[string]any{"reservationId": id})
	if empty.Result != "Nothing to update." {
		t.Fatalf("expected no-op message, got %q", empty.Result)
	}
}

func TestMealTools(t *testing.T) {
	t.Parallel()

	exec, repo := newTestExecutor(t, "c1")
	mustTable(t, repo, "Patio", 6)

	runTool(t, exec, ToolCreateReservation, map[string]any{
		"time": "2026-09-12T12:00", "customerName": "Ana", "people": float64(2),
	})
	all, _ := repo.AllReservations(context.Background())
	id := all[0].ID

	add := runTool(t, exec, ToolAddMealToReservation, map[string]any{
		"reservationId": id,
		"meal":          map[string]any{"name": "Flan casero", "prepTime": float64(10)},
	})
	if add.Error != "" {
		t.Fatalf("add meal: %q", add.Error)
	}

	got, _ := repo.ReservationByID(context.Background(), id)
	if len(got.Meals) != 1 || got.Meals[0].Name != "Flan casero" {
		t.Fatalf("meal not appended: %+v", got.Meals)
	}

	replace := runTool(t, exec, ToolUpdateMealsReservation, map[string]any{
		"reservationId": id,
		"meals": []any{
			map[string]any{"name": "Ravioles de verdura", "prepTime": float64(15)},
			map[string]any{"name": "Milanesa napolitana", "prepTime": float64(20), "status": "in-progress"},
		},
	})
	if replace.Error != "" {
		t.Fatalf("replace meals: %q", replace.Error)
	}

	got, _ = repo.ReservationByID(context.Background(), id)
	if len(got.Meals) != 2 {
		t.Fatalf("meals not replaced: %+v", got.Meals)
	}
	if got.Meals[1].Status != contractx.MealInProgress {
		t.Fatalf("explicit meal status lost: %+v", got.Meals[1])
	}

	nameless := runTool(t, exec, ToolUpdateMealsReservation, map[string]any{
		"reservationId": id,
		"meals":         []any{map[string]any{"prepTime": float64(5)}},
	})
	if !strings.Contains(nameless.Result, "needs a name") {
		t.Fatalf("expected validation message, got %q", nameless.Result)
	}
}

func TestGetReservationStatus(t *testing.T) {
	t.Parallel()

	exec, repo := newTestExecutor(t, "c1")
	tableID := mustTable(t, repo, "Patio", 6)

	runTool(t, exec, ToolCreateReservation, map[string]any{
		"time": "2026-09-12T12:00", "customerName": "Ana", "people": float64(2),
	})
	all, _ := repo.AllReservations(context.Background())
	id := all[0].ID

	res := runTool(t, exec, ToolGetReservationStatus, map[string]any{"reservationId": id})
	if res.Error != "" {
		t.Fatalf("status: %q", res.Error)
	}
	if !strings.Contains(res.Result, tableID) || !strings.Contains(res.Result, "pending") {
		t.Fatalf("status should carry table and state, got %q", res.Result)
	}
}
