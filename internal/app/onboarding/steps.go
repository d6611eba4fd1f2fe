package onboarding

import (
	"errors"
	"fmt"
	"github.com/burenotti/go_endurance_backend/internal/domain/profile"
	"github.com/samber/lo"
	"strings"
)

var (
	ErrInvalidStep    = errors.New("invalid onboarding step")
	ErrInvalidSection = errors.New("invalid profile section")
)

type Step int

const (
	StepBasic Step = iota + 1
	StepTraining
	StepGoal
	StepPreferences
)

const TotalSteps = int(StepPreferences)

var sections = map[Step]string{
	StepBasic:       "basic",
	StepTraining:    "sports",
	StepGoal:        "goals",
	StepPreferences: "preferences",
}

func (s Step) Valid() bool {
	return s >= StepBasic && s <= StepPreferences
}

// Section is the profile editor tab backed by the step.
func (s Step) Section() string {
	return sections[s]
}

func ParseSection(section string) (Step, error) {
	for step, name := range sections {
		if name == section {
			return step, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidSection, section)
}

// StepInput is the raw form data of one wizard step or editor section.
type StepInput interface {
	Step() Step
	// Validate checks the input against the data collected so far and
	// returns the patch it contributes.
	Validate(v *Validator, known profile.Patch) (profile.Patch, error)
}

// NewStepInput returns an empty input for the step, ready to be decoded into.
func NewStepInput(step Step) (StepInput, error) {
	switch step {
	case StepBasic:
		return &BasicStep{}, nil
	case StepTraining:
		return &TrainingStep{}, nil
	case StepGoal:
		return &GoalStep{}, nil
	case StepPreferences:
		return &PreferencesStep{}, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrInvalidStep, step)
	}
}

type BasicStep struct {
	FirstName       string                  `json:"first_name" validate:"required,max=100"`
	LastName        string                  `json:"last_name" validate:"required,max=100"`
	BirthDate       string                  `json:"birth_date" validate:"required,datetime=2006-01-02"`
	Gender          profile.Gender          `json:"gender" validate:"required,oneof=male female other"`
	Height          *float64                `json:"height" validate:"required,min=100,max=250"`
	Weight          *float64                `json:"weight" validate:"required,min=30,max=300"`
	ExperienceLevel profile.ExperienceLevel `json:"experience_level" validate:"required,oneof=beginner intermediate advanced"`
	MainSport       profile.Sport           `json:"main_sport" validate:"required,oneof=running cycling swimming triathlon fitness other"`
}

func (s *BasicStep) Step() Step { return StepBasic }

func (s *BasicStep) Validate(v *Validator, _ profile.Patch) (profile.Patch, error) {
	in := *s
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.BirthDate = strings.TrimSpace(in.BirthDate)

	if err := v.Struct(in); err != nil {
		return profile.Patch{}, err
	}

	return profile.Patch{
		FirstName: &in.FirstName,
		LastName:  &in.LastName,
		Details: profile.Details{
			BirthDate:       &in.BirthDate,
			Gender:          &in.Gender,
			Height:          in.Height,
			Weight:          in.Weight,
			ExperienceLevel: &in.ExperienceLevel,
			MainSport:       &in.MainSport,
		},
	}, nil
}

type TrainingStep struct {
	TrainingFrequency *int                   `json:"training_frequency" validate:"required,min=1,max=14"`
	WeeklyGoalHours   *float64               `json:"weekly_goal_hours" validate:"required,min=1,max=40"`
	PreferredDays     []profile.Weekday      `json:"preferred_days" validate:"required,min=1,unique,dive,oneof=monday tuesday wednesday thursday friday saturday sunday"`
	RestingHeartRate  *int                   `json:"resting_heart_rate" validate:"required,min=30,max=100"`
	MaxHeartRate      *int                   `json:"max_heart_rate" validate:"required,min=100,max=220"`
	RunPace           *int                   `json:"run_pace" validate:"omitempty,min=180,max=600"`
	FTP               *int                   `json:"ftp" validate:"omitempty,min=50,max=500"`
	SwimPace          *int                   `json:"swim_pace" validate:"omitempty,min=60,max=300"`
	StrengthLevel     *profile.StrengthLevel `json:"strength_level" validate:"omitempty,oneof=light moderate heavy"`
	PreferredSports   []string               `json:"preferred_sports" validate:"omitempty,max=10,dive,max=50"`
}

func (s *TrainingStep) Step() Step { return StepTraining }

// Validate drops the sport metrics that do not apply to the main sport
// already collected, then checks what remains.
func (s *TrainingStep) Validate(v *Validator, known profile.Patch) (profile.Patch, error) {
	in := *s

	var sport profile.Sport
	if known.MainSport != nil {
		sport = *known.MainSport
	}
	if !sport.Runs() {
		in.RunPace = nil
	}
	if !sport.Rides() {
		in.FTP = nil
	}
	if !sport.Swims() {
		in.SwimPace = nil
	}
	if !sport.Lifts() || (in.StrengthLevel != nil && *in.StrengthLevel == "") {
		in.StrengthLevel = nil
	}
	if in.PreferredSports != nil {
		in.PreferredSports = lo.FilterMap(in.PreferredSports, func(s string, _ int) (string, bool) {
			s = strings.TrimSpace(s)
			return s, s != ""
		})
	}

	if err := v.Struct(in); err != nil {
		return profile.Patch{}, err
	}

	return profile.Patch{
		Details: profile.Details{
			TrainingFrequency: in.TrainingFrequency,
			WeeklyGoalHours:   in.WeeklyGoalHours,
			PreferredDays:     in.PreferredDays,
			RestingHeartRate:  in.RestingHeartRate,
			MaxHeartRate:      in.MaxHeartRate,
			RunPace:           in.RunPace,
			FTP:               in.FTP,
			SwimPace:          in.SwimPace,
			StrengthLevel:     in.StrengthLevel,
			PreferredSports:   in.PreferredSports,
		},
	}, nil
}

type GoalStep struct {
	GoalType         profile.GoalType `json:"goal_type" validate:"required,oneof=competition weight_loss performance wellness"`
	GoalTitle        string           `json:"goal_title" validate:"required,max=200"`
	GoalDate         string           `json:"goal_date" validate:"required,datetime=2006-01-02"`
	GoalTimeTarget   string           `json:"goal_time_target" validate:"omitempty,hms"`
	GoalWeightTarget *float64         `json:"goal_weight_target" validate:"omitempty,min=30,max=300"`
	GoalDescription  string           `json:"goal_description" validate:"required,min=10,max=2000"`
}

func (s *GoalStep) Step() Step { return StepGoal }

func (s *GoalStep) Validate(v *Validator, _ profile.Patch) (profile.Patch, error) {
	in := *s
	in.GoalTitle = strings.TrimSpace(in.GoalTitle)
	in.GoalDate = strings.TrimSpace(in.GoalDate)
	in.GoalTimeTarget = strings.TrimSpace(in.GoalTimeTarget)
	in.GoalDescription = strings.TrimSpace(in.GoalDescription)

	if in.GoalType != profile.GoalCompetition {
		in.GoalTimeTarget = ""
	}
	if in.GoalType != profile.GoalWeightLoss {
		in.GoalWeightTarget = nil
	}

	if err := v.Struct(in); err != nil {
		return profile.Patch{}, err
	}

	p := profile.Patch{
		Details: profile.Details{
			GoalType:         &in.GoalType,
			GoalTitle:        &in.GoalTitle,
			GoalDate:         &in.GoalDate,
			GoalWeightTarget: in.GoalWeightTarget,
			GoalDescription:  &in.GoalDescription,
		},
	}
	if in.GoalTimeTarget != "" {
		p.GoalTimeTarget = &in.GoalTimeTarget
	}
	return p, nil
}

type PreferencesStep struct {
	Language             profile.Language   `json:"language" validate:"required,oneof=en fr"`
	UnitSystem           profile.UnitSystem `json:"unit_system" validate:"required,oneof=metric imperial"`
	Timezone             string             `json:"timezone" validate:"required,timezone"`
	NotificationsEnabled *bool              `json:"notifications_enabled" validate:"required"`
	Injuries             profile.Injuries   `json:"injuries" validate:"max=20,dive,max=100"`
	DeviceLinked         *bool              `json:"device_linked"`
	CoachMode            *bool              `json:"coach_mode"`
}

func (s *PreferencesStep) Step() Step { return StepPreferences }

// Validate fills the form defaults for absent values before checking them.
// Absent injuries stay absent so that saving the section keeps the stored list.
func (s *PreferencesStep) Validate(v *Validator, _ profile.Patch) (profile.Patch, error) {
	in := *s
	in.Timezone = strings.TrimSpace(in.Timezone)

	if in.Language == "" {
		in.Language = profile.LanguageEnglish
	}
	if in.UnitSystem == "" {
		in.UnitSystem = profile.UnitsMetric
	}
	if in.Timezone == "" {
		in.Timezone = v.DefaultTimezone
	}
	if in.NotificationsEnabled == nil {
		in.NotificationsEnabled = lo.ToPtr(true)
	}
	if in.DeviceLinked == nil {
		in.DeviceLinked = lo.ToPtr(false)
	}
	if in.CoachMode == nil {
		in.CoachMode = lo.ToPtr(false)
	}
	if in.Injuries != nil {
		in.Injuries = in.Injuries.Clean()
	}

	if err := v.Struct(in); err != nil {
		return profile.Patch{}, err
	}

	return profile.Patch{
		Details: profile.Details{
			Language:             &in.Language,
			UnitSystem:           &in.UnitSystem,
			Timezone:             &in.Timezone,
			NotificationsEnabled: in.NotificationsEnabled,
			Injuries:             in.Injuries,
			DeviceLinked:         in.DeviceLinked,
			CoachMode:            in.CoachMode,
		},
	}, nil
}
