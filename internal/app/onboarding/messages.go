package onboarding

import (
	"fmt"
	"github.com/go-playground/validator/v10"
	"reflect"
	"strings"
)

var labels = map[string]string{
	"first_name":            "First name",
	"last_name":             "Last name",
	"birth_date":            "Birth date",
	"gender":                "Gender",
	"height":                "Height",
	"weight":                "Weight",
	"experience_level":      "Experience level",
	"main_sport":            "Main sport",
	"training_frequency":    "Training frequency",
	"weekly_goal_hours":     "Weekly goal",
	"preferred_days":        "Preferred days",
	"resting_heart_rate":    "Resting heart rate",
	"max_heart_rate":        "Max heart rate",
	"run_pace":              "Run pace",
	"ftp":                   "FTP",
	"swim_pace":             "Swim pace",
	"strength_level":        "Strength level",
	"preferred_sports":      "Preferred sports",
	"goal_type":             "Goal type",
	"goal_title":            "Goal title",
	"goal_date":             "Goal date",
	"goal_time_target":      "Time target",
	"goal_weight_target":    "Target weight",
	"goal_description":      "Description",
	"timezone":              "Timezone",
	"notifications_enabled": "Notifications",
	"injuries":              "Injuries",
	"language":              "Language",
	"unit_system":           "Unit system",
	"email":                 "Email",
	"password":              "Password",
	"refresh_token":         "Refresh token",
}

var units = map[string]string{
	"height":             "cm",
	"weight":             "kg",
	"goal_weight_target": "kg",
	"weekly_goal_hours":  "hours",
	"resting_heart_rate": "bpm",
	"max_heart_rate":     "bpm",
	"run_pace":           "sec/km",
	"ftp":                "watts",
	"swim_pace":          "sec/100m",
}

var overrides = map[string]string{
	"preferred_days.required": "Select at least one day",
	"preferred_days.min":      "Select at least one day",
	"goal_time_target.hms":    "Format must be HH:MM:SS",
	"email.email":             "Invalid email address",
}

func label(field string) string {
	if l, ok := labels[field]; ok {
		return l
	}
	return strings.ReplaceAll(field, "_", " ")
}

// message renders a validation failure. A nil error renders the required message.
func message(field string, fe validator.FieldError) string {
	name := label(field)
	if fe == nil {
		return name + " is required"
	}

	if m, ok := overrides[field+"."+fe.Tag()]; ok {
		return m
	}

	switch fe.Tag() {
	case "required":
		return name + " is required"
	case "min":
		return fmt.Sprintf("%s must be at least %s", name, bound(field, fe))
	case "max":
		return fmt.Sprintf("%s must be at most %s", name, bound(field, fe))
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", name, strings.Join(strings.Fields(fe.Param()), ", "))
	case "datetime":
		return name + " must be a date in YYYY-MM-DD format"
	case "hms":
		return "Format must be HH:MM:SS"
	case "timezone":
		return name + " must be a valid IANA time zone"
	case "unique":
		return name + " must not contain duplicates"
	case "email":
		return "Invalid email address"
	default:
		return name + " is invalid"
	}
}

func bound(field string, fe validator.FieldError) string {
	switch fe.Kind() {
	case reflect.String:
		return fe.Param() + " characters"
	case reflect.Slice, reflect.Array, reflect.Map:
		return fe.Param() + " items"
	}
	if unit, ok := units[field]; ok {
		return fe.Param() + " " + unit
	}
	return fe.Param()
}
