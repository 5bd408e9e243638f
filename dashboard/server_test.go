package dashboard

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	contractx "github.com/lazarovttac/messirve-prototype/agent/contract"
	repositoryx "github.com/lazarovttac/messirve-prototype/agent/repository"
	docstorex "github.com/lazarovttac/messirve-prototype/pkg/docstore"
)

func newTestServer(t *testing.T) (*Server, contractx.Repository) {
	t.Helper()

	repo := repositoryx.New(docstorex.NewMemoryStore())
	srv, err := New(Config{Addr: ":0", AllowOrigins: []string{"*"}}, repo)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	return srv, repo
}

func doRequest(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	srv.http.Handler.ServeHTTP(rec, req)
	return rec
}

func seedReservation(t *testing.T, repo contractx.Repository, name string, at time.Time) string {
	t.Helper()

	id, err := repo.CreateReservation(context.Background(), contractx.Reservation{
		CustomerID:   "c1",
		CustomerName: name,
		Table:        "t1",
		Time:         at,
		People:       2,
		Meals:        []contractx.Meal{{Name: "Flan casero", PrepTime: 10}},
	})
	if err != nil {
		t.Fatalf("seed reservation: %v", err)
	}
	return id
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)
	rec := doRequest(t, srv, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz status = %d", rec.Code)
	}
}

func TestListReservations(t *testing.T) {
	t.Parallel()

	srv, repo := newTestServer(t)
	day := func(d, hour int) time.Time {
		return time.Date(2026, time.September, d, hour, 0, 0, 0, time.UTC)
	}
	seedReservation(t, repo, "Ana", day(10, 12))
	inRange := seedReservation(t, repo, "Beto", day(12, 20))
	seedReservation(t, repo, "Carla", day(14, 12))

	rec := doRequest(t, srv, http.MethodGet, "/api/reservations", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d: %s", rec.Code, rec.Body.String())
	}
	var all []reservationView
	if err := json.Unmarshal(rec.Body.Bytes(), &all); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 reservations, got %d", len(all))
	}

	rec = doRequest(t, srv, http.MethodGet, "/api/reservations?from=2026-09-12&to=2026-09-13", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("range status = %d: %s", rec.Code, rec.Body.String())
	}
	var ranged []reservationView
	if err := json.Unmarshal(rec.Body.Bytes(), &ranged); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(ranged) != 1 || ranged[0].ID != inRange {
		t.Fatalf("expected only %s in range, got %#v", inRange, ranged)
	}

	rec = doRequest(t, srv, http.MethodGet, "/api/reservations?from=not-a-date", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad range status = %d", rec.Code)
	}
}

func TestGetAndDeleteReservation(t *testing.T) {
	t.Parallel()

	srv, repo := newTestServer(t)
	id := seedReservation(t, repo, "Ana", time.Date(2026, 9, 12, 20, 0, 0, 0, time.UTC))

	rec := doRequest(t, srv, http.MethodGet, "/api/reservations/"+id, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}
	var view reservationView
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if view.ID != id || view.Time == nil {
		t.Fatalf("unexpected view: %+v", view)
	}

	rec = doRequest(t, srv, http.MethodGet, "/api/reservations/missing", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing get status = %d", rec.Code)
	}

	rec = doRequest(t, srv, http.MethodDelete, "/api/reservations/"+id, "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rec.Code)
	}
	rec = doRequest(t, srv, http.MethodDelete, "/api/reservations/"+id, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("double delete status = %d", rec.Code)
	}
}

func TestInvalidTimeRendersAsNull(t *testing.T) {
	t.Parallel()

	srv, repo := newTestServer(t)
	id, err := repo.CreateReservation(context.Background(), contractx.Reservation{
		CustomerID:   "c1",
		CustomerName: "Ana",
		People:       2,
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	rec := doRequest(t, srv, http.MethodGet, "/api/reservations/"+id, "")
	var raw map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &raw); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if v, ok := raw["time"]; !ok || v != nil {
		t.Fatalf("invalid time should serialize as null, got %v", v)
	}
}

func TestUpdateReservationMeals(t *testing.T) {
	t.Parallel()

	srv, repo := newTestServer(t)
	id := seedReservation(t, repo, "Ana", time.Date(2026, 9, 12, 20, 0, 0, 0, time.UTC))

	body := `{"meals":[{"name":"Flan casero","prepTime":10,"status":"in-progress"},{"name":"Ravioles de verdura","prepTime":15}]}`
	rec := doRequest(t, srv, http.MethodPut, "/api/reservations/"+id+"/meals", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("update meals status = %d: %s", rec.Code, rec.Body.String())
	}

	got, err := repo.ReservationByID(context.Background(), id)
	if err != nil {
		t.Fatalf("reservation by id: %v", err)
	}
	if len(got.Meals) != 2 {
		t.Fatalf("meals not replaced: %+v", got.Meals)
	}
	if got.Meals[0].Status != contractx.MealInProgress || got.Meals[1].Status != contractx.MealPending {
		t.Fatalf("statuses wrong: %+v", got.Meals)
	}

	rec = doRequest(t, srv, http.MethodPut, "/api/reservations/"+id+"/meals", `{"meals":[{"prepTime":5}]}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("nameless meal status = %d", rec.Code)
	}

	rec = doRequest(t, srv, http.MethodPut, "/api/reservations/missing/meals", body)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing reservation status = %d", rec.Code)
	}
}

func TestTableCRUD(t *testing.T) {
	t.Parallel()

	srv, repo := newTestServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/api/tables", `{"name":"Patio","people":6}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", rec.Code, rec.Body.String())
	}
	var created contractx.Table
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.ID == "" {
		t.Fatal("created table should carry its id")
	}

	rec = doRequest(t, srv, http.MethodPost, "/api/tables", `{"name":"Broken"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("zero-capacity create status = %d", rec.Code)
	}

	rec = doRequest(t, srv, http.MethodPut, "/api/tables/"+created.ID, `{"name":"Patio Grande","people":8}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d: %s", rec.Code, rec.Body.String())
	}

	tables, err := repo.AllTables(context.Background())
	if err != nil {
		t.Fatalf("all tables: %v", err)
	}
	if len(tables) != 1 || tables[0].Name != "Patio Grande" || tables[0].People != 8 {
		t.Fatalf("update not applied: %+v", tables)
	}

	rec = doRequest(t, srv, http.MethodGet, "/api/tables", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}

	rec = doRequest(t, srv, http.MethodDelete, "/api/tables/"+created.ID, "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rec.Code)
	}
	rec = doRequest(t, srv, http.MethodDelete, "/api/tables/"+created.ID, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("double delete status = %d", rec.Code)
	}
}
