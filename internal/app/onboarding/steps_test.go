package onboarding

import (
	"errors"
	"github.com/burenotti/go_endurance_backend/internal/domain/profile"
	"github.com/samber/lo"
	"reflect"
	"testing"
)

func basicStep() *BasicStep {
	return &BasicStep{
		FirstName:       "Jo",
		LastName:        "Do",
		BirthDate:       "1990-05-01",
		Gender:          profile.GenderFemale,
		Height:          lo.ToPtr(170.0),
		Weight:          lo.ToPtr(60.0),
		ExperienceLevel: profile.ExperienceBeginner,
		MainSport:       profile.SportRunning,
	}
}

func fieldErrors(t *testing.T, err error) FieldErrors {
	t.Helper()
	var fe FieldErrors
	if !errors.As(err, &fe) {
		t.Fatalf("expected FieldErrors, got %v", err)
	}
	return fe
}

func TestBasicStepBounds(t *testing.T) {
	v := NewValidator("UTC")

	tests := []struct {
		name   string
		height float64
		weight float64
		field  string
		msg    string
	}{
		{"height too low", 99, 60, "height", "Height must be at least 100 cm"},
		{"height too high", 251, 60, "height", "Height must be at most 250 cm"},
		{"weight too low", 170, 29, "weight", "Weight must be at least 30 kg"},
		{"weight too high", 170, 301, "weight", "Weight must be at most 300 kg"},
		{"lower bounds", 100, 30, "", ""},
		{"upper bounds", 250, 300, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := basicStep()
			in.Height = &tt.height
			in.Weight = &tt.weight

			p, err := in.Validate(v, profile.Patch{})
			if tt.field == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if *p.Height != tt.height || *p.Weight != tt.weight {
					t.Errorf("patch = %v %v", *p.Height, *p.Weight)
				}
				return
			}
			if got := fieldErrors(t, err)[tt.field]; got != tt.msg {
				t.Errorf("message = %q, want %q", got, tt.msg)
			}
		})
	}
}

func TestBasicStepRequired(t *testing.T) {
	v := NewValidator("UTC")
	in := basicStep()
	in.FirstName = "   "
	in.Height = nil
	in.Gender = ""

	_, err := in.Validate(v, profile.Patch{})
	fe := fieldErrors(t, err)
	want := map[string]string{
		"first_name": "First name is required",
		"height":     "Height is required",
		"gender":     "Gender is required",
	}
	for field, msg := range want {
		if fe[field] != msg {
			t.Errorf("%s = %q, want %q", field, fe[field], msg)
		}
	}
}

func TestTrainingStepSportGating(t *testing.T) {
	v := NewValidator("UTC")
	step := func() *TrainingStep {
		return &TrainingStep{
			TrainingFrequency: lo.ToPtr(4),
			WeeklyGoalHours:   lo.ToPtr(6.0),
			PreferredDays:     []profile.Weekday{profile.Monday, profile.Thursday},
			RestingHeartRate:  lo.ToPtr(55),
			MaxHeartRate:      lo.ToPtr(190),
			RunPace:           lo.ToPtr(300),
			FTP:               lo.ToPtr(250),
			SwimPace:          lo.ToPtr(120),
			StrengthLevel:     lo.ToPtr(profile.StrengthHeavy),
		}
	}

	tests := []struct {
		sport    profile.Sport
		run      bool
		ftp      bool
		swim     bool
		strength bool
	}{
		{profile.SportRunning, true, false, false, false},
		{profile.SportCycling, false, true, false, false},
		{profile.SportSwimming, false, false, true, false},
		{profile.SportTriathlon, true, true, true, false},
		{profile.SportFitness, false, false, false, true},
		{profile.SportOther, false, false, false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.sport), func(t *testing.T) {
			known := profile.Patch{Details: profile.Details{MainSport: lo.ToPtr(tt.sport)}}
			p, err := step().Validate(v, known)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if (p.RunPace != nil) != tt.run || (p.FTP != nil) != tt.ftp ||
				(p.SwimPace != nil) != tt.swim || (p.StrengthLevel != nil) != tt.strength {
				t.Errorf("run=%v ftp=%v swim=%v strength=%v", p.RunPace, p.FTP, p.SwimPace, p.StrengthLevel)
			}
		})
	}
}

func TestTrainingStepIgnoresIrrelevantOutOfRange(t *testing.T) {
	v := NewValidator("UTC")
	in := &TrainingStep{
		TrainingFrequency: lo.ToPtr(4),
		WeeklyGoalHours:   lo.ToPtr(6.0),
		PreferredDays:     []profile.Weekday{profile.Sunday},
		RestingHeartRate:  lo.ToPtr(55),
		MaxHeartRate:      lo.ToPtr(190),
		RunPace:           lo.ToPtr(100),
	}

	fitness := profile.Patch{Details: profile.Details{MainSport: lo.ToPtr(profile.SportFitness)}}
	if _, err := in.Validate(v, fitness); err != nil {
		t.Fatalf("run pace must be ignored for fitness: %v", err)
	}

	running := profile.Patch{Details: profile.Details{MainSport: lo.ToPtr(profile.SportRunning)}}
	_, err := in.Validate(v, running)
	if got := fieldErrors(t, err)["run_pace"]; got != "Run pace must be at least 180 sec/km" {
		t.Errorf("run_pace = %q", got)
	}
}

func TestTrainingStepPreferredDays(t *testing.T) {
	v := NewValidator("UTC")
	base := TrainingStep{
		TrainingFrequency: lo.ToPtr(4),
		WeeklyGoalHours:   lo.ToPtr(6.0),
		RestingHeartRate:  lo.ToPtr(55),
		MaxHeartRate:      lo.ToPtr(190),
	}

	tests := []struct {
		name string
		days []profile.Weekday
		msg  string
	}{
		{"absent", nil, "Select at least one day"},
		{"empty", []profile.Weekday{}, "Select at least one day"},
		{"unknown day", []profile.Weekday{"someday"}, "Preferred days must be one of: monday, tuesday, wednesday, thursday, friday, saturday, sunday"},
		{"duplicate", []profile.Weekday{profile.Monday, profile.Monday}, "Preferred days must not contain duplicates"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := base
			in.PreferredDays = tt.days
			_, err := in.Validate(v, profile.Patch{})
			if got := fieldErrors(t, err)["preferred_days"]; got != tt.msg {
				t.Errorf("preferred_days = %q, want %q", got, tt.msg)
			}
		})
	}
}

func TestGoalStepTimeTarget(t *testing.T) {
	v := NewValidator("UTC")
	step := func(goal profile.GoalType, target string) *GoalStep {
		return &GoalStep{
			GoalType:        goal,
			GoalTitle:       "Marathon",
			GoalDate:        "2027-04-10",
			GoalTimeTarget:  target,
			GoalDescription: "Sub four hours in Paris",
		}
	}

	p, err := step(profile.GoalCompetition, "11:00:00").Validate(v, profile.Patch{})
	if err != nil {
		t.Fatalf("11:00:00 rejected: %v", err)
	}
	if p.GoalTimeTarget == nil || *p.GoalTimeTarget != "11:00:00" {
		t.Errorf("time target = %v", p.GoalTimeTarget)
	}

	_, err = step(profile.GoalCompetition, "1:99:00").Validate(v, profile.Patch{})
	if got := fieldErrors(t, err)["goal_time_target"]; got != "Format must be HH:MM:SS" {
		t.Errorf("goal_time_target = %q", got)
	}

	p, err = step(profile.GoalWellness, "1:99:00").Validate(v, profile.Patch{})
	if err != nil {
		t.Fatalf("time target must be ignored for wellness: %v", err)
	}
	if p.GoalTimeTarget != nil {
		t.Errorf("time target kept for wellness goal")
	}
}

func TestGoalStepWeightTarget(t *testing.T) {
	v := NewValidator("UTC")
	in := &GoalStep{
		GoalType:         profile.GoalWeightLoss,
		GoalTitle:        "Lighter",
		GoalDate:         "2027-01-01",
		GoalWeightTarget: lo.ToPtr(65.0),
		GoalDescription:  "Lose five kilos",
	}

	p, err := in.Validate(v, profile.Patch{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.GoalWeightTarget == nil || *p.GoalWeightTarget != 65 {
		t.Errorf("weight target = %v", p.GoalWeightTarget)
	}

	in.GoalType = profile.GoalPerformance
	if p, _ := in.Validate(v, profile.Patch{}); p.GoalWeightTarget != nil {
		t.Errorf("weight target kept for performance goal")
	}

	in.GoalType = profile.GoalWeightLoss
	in.GoalDescription = "short"
	_, err = in.Validate(v, profile.Patch{})
	if got := fieldErrors(t, err)["goal_description"]; got != "Description must be at least 10 characters" {
		t.Errorf("goal_description = %q", got)
	}
}

func TestPreferencesStepDefaults(t *testing.T) {
	v := NewValidator("Europe/Paris")
	in := &PreferencesStep{Injuries: profile.ParseInjuries("knee, shoulder, ")}

	p, err := in.Validate(v, profile.Patch{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if *p.Language != profile.LanguageEnglish || *p.UnitSystem != profile.UnitsMetric {
		t.Errorf("language = %s units = %s", *p.Language, *p.UnitSystem)
	}
	if *p.Timezone != "Europe/Paris" {
		t.Errorf("timezone = %s", *p.Timezone)
	}
	if !*p.NotificationsEnabled || *p.DeviceLinked || *p.CoachMode {
		t.Errorf("flags = %v %v %v", *p.NotificationsEnabled, *p.DeviceLinked, *p.CoachMode)
	}
	if !reflect.DeepEqual(p.Injuries, profile.Injuries{"knee", "shoulder"}) {
		t.Errorf("injuries = %#v", p.Injuries)
	}
}

func TestPreferencesStepRejects(t *testing.T) {
	v := NewValidator("UTC")

	tests := []struct {
		name  string
		in    PreferencesStep
		field string
	}{
		{"timezone", PreferencesStep{Timezone: "Mars/Olympus"}, "timezone"},
		{"local timezone", PreferencesStep{Timezone: "Local"}, "timezone"},
		{"language", PreferencesStep{Language: "de"}, "language"},
		{"units", PreferencesStep{UnitSystem: "astronomical"}, "unit_system"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.in.Validate(v, profile.Patch{})
			if _, ok := fieldErrors(t, err)[tt.field]; !ok {
				t.Errorf("expected error on %s, got %v", tt.field, err)
			}
		})
	}
}

func TestValidatePatch(t *testing.T) {
	v := NewValidator("UTC")

	tests := []struct {
		name  string
		patch profile.Patch
		field string
	}{
		{"empty", profile.Patch{}, ""},
		{"valid height", profile.Patch{Details: profile.Details{Height: lo.ToPtr(180.0)}}, ""},
		{"height", profile.Patch{Details: profile.Details{Height: lo.ToPtr(99.0)}}, "height"},
		{"blank name", profile.Patch{FirstName: lo.ToPtr("  ")}, "first_name"},
		{"gender", profile.Patch{Details: profile.Details{Gender: lo.ToPtr(profile.Gender("robot"))}}, "gender"},
		{"goal date", profile.Patch{Details: profile.Details{GoalDate: lo.ToPtr("10/04/2027")}}, "goal_date"},
		{"time target", profile.Patch{Details: profile.Details{GoalTimeTarget: lo.ToPtr("1:99:00")}}, "goal_time_target"},
		{"day", profile.Patch{Details: profile.Details{PreferredDays: []profile.Weekday{"noday"}}}, "preferred_days"},
		{"blank goal title", profile.Patch{Details: profile.Details{GoalTitle: lo.ToPtr("   ")}}, "goal_title"},
		{"blank description", profile.Patch{Details: profile.Details{GoalDescription: lo.ToPtr("          ")}}, "goal_description"},
		{"padded short description", profile.Patch{Details: profile.Details{GoalDescription: lo.ToPtr("   short    ")}}, "goal_description"},
		{"padded description", profile.Patch{Details: profile.Details{GoalDescription: lo.ToPtr("  Run a sub three marathon ")}}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidatePatch(tt.patch)
			if tt.field == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if _, ok := fieldErrors(t, err)[tt.field]; !ok {
				t.Errorf("expected error on %s, got %v", tt.field, err)
			}
		})
	}
}

func TestParseSection(t *testing.T) {
	for step := StepBasic; step <= StepPreferences; step++ {
		got, err := ParseSection(step.Section())
		if err != nil || got != step {
			t.Errorf("ParseSection(%q) = %d, %v", step.Section(), got, err)
		}
	}
	if _, err := ParseSection("billing"); !errors.Is(err, ErrInvalidSection) {
		t.Errorf("unknown section: err = %v", err)
	}
	if _, err := NewStepInput(5); !errors.Is(err, ErrInvalidStep) {
		t.Errorf("step 5: err = %v", err)
	}
}
