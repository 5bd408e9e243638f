package dashboard

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	contractx "github.com/lazarovttac/messirve-prototype/agent/contract"
)

// reservationView is the wire shape; the zero invalid-time sentinel becomes
// an explicit null.
type reservationView struct {
	ID           string           `json:"id"`
	CustomerID   string           `json:"customerId"`
	CustomerName string           `json:"customerName"`
	Table        string           `json:"table"`
	Time         *time.Time       `json:"time"`
	People       int              `json:"people"`
	Meals        []contractx.Meal `json:"meals"`
	Status       string           `json:"status"`
}

func toView(r contractx.Reservation) reservationView {
	v := reservationView{
		ID:           r.ID,
		CustomerID:   r.CustomerID,
		CustomerName: r.CustomerName,
		Table:        r.Table,
		People:       r.People,
		Meals:        r.Meals,
		Status:       string(r.Status),
	}
	if r.HasValidTime() {
		t := r.Time
		v.Time = &t
	}
	return v
}

func (s *Server) listReservations(c *gin.Context) {
	fromRaw := strings.TrimSpace(c.Query("from"))
	toRaw := strings.TrimSpace(c.Query("to"))

	var (
		reservations []contractx.Reservation
		err          error
	)
	if fromRaw != "" || toRaw != "" {
		from, parseErr := parseQueryTime(fromRaw, time.Time{})
		if parseErr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid 'from' timestamp"})
			return
		}
		to, parseErr := parseQueryTime(toRaw, from.AddDate(1, 0, 0))
		if parseErr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid 'to' timestamp"})
			return
		}
		reservations, err = s.repo.ReservationsByTimeRange(c.Request.Context(), from, to)
	} else {
		reservations, err = s.repo.AllReservations(c.Request.Context())
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	views := make([]reservationView, 0, len(reservations))
	for _, r := range reservations {
		views = append(views, toView(r))
	}
	c.JSON(http.StatusOK, views)
}

func (s *Server) getReservation(c *gin.Context) {
	r, err := s.repo.ReservationByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, contractx.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "reservation not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, toView(*r))
}

func (s *Server) deleteReservation(c *gin.Context) {
	if err := s.repo.DeleteReservation(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, contractx.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "reservation not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

type updateMealsRequest struct {
	Meals []contractx.Meal `json:"meals" binding:"required"`
}

// updateReservationMeals replaces the meal list wholesale; the kitchen
// panel sends the full list back with updated statuses.
func (s *Server) updateReservationMeals(c *gin.Context) {
	var req updateMealsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	for i := range req.Meals {
		if strings.TrimSpace(req.Meals[i].Name) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "meal name is required"})
			return
		}
		if req.Meals[i].Status == "" {
			req.Meals[i].Status = contractx.MealPending
		}
	}

	id := c.Param("id")
	patch := contractx.ReservationUpdate{Meals: &req.Meals}
	if err := s.repo.UpdateReservation(c.Request.Context(), id, patch); err != nil {
		if errors.Is(err, contractx.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "reservation not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	r, err := s.repo.ReservationByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, toView(*r))
}

func (s *Server) listTables(c *gin.Context) {
	tables, err := s.repo.AllTables(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, tables)
}

type tableRequest struct {
	Name   string `json:"name" binding:"required"`
	People int    `json:"people" binding:"required,gt=0"`
}

func (s *Server) createTable(c *gin.Context) {
	var req tableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	id, err := s.repo.CreateTable(c.Request.Context(), contractx.Table{
		Name:   req.Name,
		People: req.People,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, contractx.Table{ID: id, Name: req.Name, People: req.People})
}

func (s *Server) updateTable(c *gin.Context) {
	var req tableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	table := contractx.Table{ID: c.Param("id"), Name: req.Name, People: req.People}
	if err := s.repo.UpdateTable(c.Request.Context(), table); err != nil {
		if errors.Is(err, contractx.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "table not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, table)
}

func (s *Server) deleteTable(c *gin.Context) {
	if err := s.repo.DeleteTable(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, contractx.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "table not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func parseQueryTime(raw string, fallback time.Time) (time.Time, error) {
	if raw == "" {
		return fallback, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}
