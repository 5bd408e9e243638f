// Package tool declares the reservation operations the language model may
// request and binds them to a concrete, customer-scoped executor. The
// declarations are the contract the model uses to decide when and how to
// call a tool; they are exposed exactly as declared here.
package tool

import (
	"github.com/cloudwego/eino/schema"
)

const (
	ToolCreateReservation      = "create_reservation"
	ToolAddMealToReservation   = "add_meal_to_reservation"
	ToolCancelReservation      = "cancel_reservation"
	ToolGetReservationStatus   = "get_reservation_status"
	ToolChangeReservationTime  = "change_reservation_time"
	ToolUpdateReservationInfo  = "update_reservation_details"
	ToolUpdateMealsReservation = "update_meals_in_reservation"
)

// Names lists every declared tool, in catalog order.
func Names() []string {
	return []string{
		ToolCreateReservation,
		ToolAddMealToReservation,
		ToolCancelReservation,
		ToolGetReservationStatus,
		ToolChangeReservationTime,
		ToolUpdateReservationInfo,
		ToolUpdateMealsReservation,
	}
}

func mealParam() *schema.ParameterInfo {
	return &schema.ParameterInfo{
		Type: schema.Object,
		SubParams: map[string]*schema.ParameterInfo{
			"name":     {Type: schema.String, Desc: "Dish name", Required: true},
			"prepTime": {Type: schema.Number, Desc: "Preparation time in minutes", Required: true},
			"status":   {Type: schema.String, Desc: "Meal status", Required: true},
		},
	}
}

// Declarations returns the static, customer-agnostic tool list shown to the
// language model.
func Declarations() []*schema.ToolInfo {
	return []*schema.ToolInfo{
		{
			Name: ToolCreateReservation,
			Desc: "Create a new reservation for a customer (may include meals).",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"time":         {Type: schema.String, Desc: "Reservation date and time (ISO string)", Required: true},
				"customerName": {Type: schema.String, Desc: "Name the reservation is under", Required: true},
				"people":       {Type: schema.Number, Desc: "Number of people", Required: true},
				"meals": {
					Type:     schema.Array,
					Desc:     "Optional list of dishes",
					ElemInfo: mealParam(),
				},
			}),
		},
		{
			Name: ToolAddMealToReservation,
			Desc: "Add a meal to an existing reservation.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"reservationId": {Type: schema.String, Desc: "Reservation ID", Required: true},
				"meal":          mealRequired(),
			}),
		},
		{
			Name: ToolCancelReservation,
			Desc: "Cancel an existing reservation.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"reservationId": {Type: schema.String, Desc: "Reservation ID", Required: true},
			}),
		},
		{
			Name: ToolGetReservationStatus,
			Desc: "Get the status of a reservation.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"reservationId": {Type: schema.String, Desc: "Reservation ID", Required: true},
			}),
		},
		{
			Name: ToolChangeReservationTime,
			Desc: "Change the time of an existing reservation.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"reservationId": {Type: schema.String, Desc: "Reservation ID", Required: true},
				"newTime":       {Type: schema.String, Desc: "New reservation time (ISO string)", Required: true},
			}),
		},
		{
			Name: ToolUpdateReservationInfo,
			Desc: "Update the name or the party size of an existing reservation.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"reservationId": {Type: schema.String, Desc: "Reservation ID", Required: true},
				"customerName":  {Type: schema.String, Desc: "New name (optional)"},
				"people":        {Type: schema.Number, Desc: "New number of people (optional)"},
			}),
		},
		{
			Name: ToolUpdateMealsReservation,
			Desc: "Replace the full meal list of an existing reservation.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"reservationId": {Type: schema.String, Desc: "Reservation ID", Required: true},
				"meals": {
					Type:     schema.Array,
					Desc:     "New list of dishes",
					Required: true,
					ElemInfo: mealParam(),
				},
			}),
		},
	}
}

func mealRequired() *schema.ParameterInfo {
	p := mealParam()
	p.Required = true
	p.Desc = "Dish to add"
	return p
}
