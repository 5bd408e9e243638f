package tool

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	contractx "github.com/lazarovttac/messirve-prototype/agent/contract"
)

// Model-issued arguments are validated here, before any business logic
// runs. Failures read as plain sentences because they go straight back into
// the dialogue.

func stringArg(args map[string]any, key string) (string, error) {
	v, ok := args[key]
	if !ok {
		return "", fmt.Errorf("The field '%s' is required.", key)
	}
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("The field '%s' must be a non-empty text value.", key)
	}
	return s, nil
}

func optionalStringArg(args map[string]any, key string) (string, bool) {
	s, ok := args[key].(string)
	return s, ok
}

func intArg(args map[string]any, key string) (int, error) {
	v, ok := args[key]
	if !ok {
		return 0, fmt.Errorf("The field '%s' is required.", key)
	}
	n, ok := toInt(v)
	if !ok {
		return 0, fmt.Errorf("The field '%s' must be a number.", key)
	}
	return n, nil
}

func optionalIntArg(args map[string]any, key string) (int, bool, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return 0, false, nil
	}
	n, cast := toInt(v)
	if !cast {
		return 0, false, fmt.Errorf("The field '%s' must be a number.", key)
	}
	return n, true, nil
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	case json.Number:
		parsed, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return int(parsed), true
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

func mealArg(args map[string]any, key string) (contractx.Meal, error) {
	v, ok := args[key]
	if !ok {
		return contractx.Meal{}, fmt.Errorf("The field '%s' is required.", key)
	}
	meals, err := decodeMeals([]any{v}, key)
	if err != nil {
		return contractx.Meal{}, err
	}
	return meals[0], nil
}

func mealsArg(args map[string]any, key string, required bool) ([]contractx.Meal, error) {
	v, ok := args[key]
	if !ok || v == nil {
		if required {
			return nil, fmt.Errorf("The field '%s' is required.", key)
		}
		return []contractx.Meal{}, nil
	}
	items, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("The field '%s' must be a list of dishes.", key)
	}
	return decodeMeals(items, key)
}

func decodeMeals(items []any, key string) ([]contractx.Meal, error) {
	raw, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("The field '%s' must be a list of dishes.", key)
	}
	var meals []contractx.Meal
	if err := json.Unmarshal(raw, &meals); err != nil {
		return nil, fmt.Errorf("The field '%s' must be a list of dishes.", key)
	}
	for i := range meals {
		if strings.TrimSpace(meals[i].Name) == "" {
			return nil, fmt.Errorf("Every dish in '%s' needs a name.", key)
		}
		if meals[i].PrepTime < 0 {
			return nil, fmt.Errorf("Preparation time cannot be negative.")
		}
		if meals[i].Status == "" {
			meals[i].Status = contractx.MealPending
		}
	}
	return meals, nil
}

var acceptedTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

// parseTime accepts RFC 3339 and a couple of common shorthand layouts the
// model tends to emit.
func parseTime(raw string) (time.Time, bool) {
	trimmed := strings.TrimSpace(raw)
	for _, layout := range acceptedTimeLayouts {
		if parsed, err := time.Parse(layout, trimmed); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}
