package profile

import (
	"bytes"
	"encoding/json"
	"github.com/samber/lo"
	"strings"
)

// Details holds every profile attribute collected after registration.
// A nil pointer or slice means the value is absent.
type Details struct {
	BirthDate       *string          `json:"birth_date,omitempty" bson:"birth_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Gender          *Gender          `json:"gender,omitempty" bson:"gender,omitempty" validate:"omitempty,oneof=male female other"`
	Height          *float64         `json:"height,omitempty" bson:"height,omitempty" validate:"omitempty,min=100,max=250"`
	Weight          *float64         `json:"weight,omitempty" bson:"weight,omitempty" validate:"omitempty,min=30,max=300"`
	ExperienceLevel *ExperienceLevel `json:"experience_level,omitempty" bson:"experience_level,omitempty" validate:"omitempty,oneof=beginner intermediate advanced"`
	MainSport       *Sport           `json:"main_sport,omitempty" bson:"main_sport,omitempty" validate:"omitempty,oneof=running cycling swimming triathlon fitness other"`

	TrainingFrequency *int           `json:"training_frequency,omitempty" bson:"training_frequency,omitempty" validate:"omitempty,min=1,max=14"`
	WeeklyGoalHours   *float64       `json:"weekly_goal_hours,omitempty" bson:"weekly_goal_hours,omitempty" validate:"omitempty,min=1,max=40"`
	PreferredDays     []Weekday      `json:"preferred_days,omitempty" bson:"preferred_days,omitempty" validate:"omitempty,unique,dive,oneof=monday tuesday wednesday thursday friday saturday sunday"`
	RestingHeartRate  *int           `json:"resting_heart_rate,omitempty" bson:"resting_heart_rate,omitempty" validate:"omitempty,min=30,max=100"`
	MaxHeartRate      *int           `json:"max_heart_rate,omitempty" bson:"max_heart_rate,omitempty" validate:"omitempty,min=100,max=220"`
	RunPace           *int           `json:"run_pace,omitempty" bson:"run_pace,omitempty" validate:"omitempty,min=180,max=600"`
	FTP               *int           `json:"ftp,omitempty" bson:"ftp,omitempty" validate:"omitempty,min=50,max=500"`
	SwimPace          *int           `json:"swim_pace,omitempty" bson:"swim_pace,omitempty" validate:"omitempty,min=60,max=300"`
	StrengthLevel     *StrengthLevel `json:"strength_level,omitempty" bson:"strength_level,omitempty" validate:"omitempty,oneof=light moderate heavy"`
	PreferredSports   []string       `json:"preferred_sports,omitempty" bson:"preferred_sports,omitempty" validate:"omitempty,max=10,dive,max=50"`

	GoalType         *GoalType `json:"goal_type,omitempty" bson:"goal_type,omitempty" validate:"omitempty,oneof=competition weight_loss performance wellness"`
	GoalTitle        *string   `json:"goal_title,omitempty" bson:"goal_title,omitempty" validate:"omitempty,max=200"`
	GoalDate         *string   `json:"goal_date,omitempty" bson:"goal_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	GoalTimeTarget   *string   `json:"goal_time_target,omitempty" bson:"goal_time_target,omitempty" validate:"omitempty,hms"`
	GoalWeightTarget *float64  `json:"goal_weight_target,omitempty" bson:"goal_weight_target,omitempty" validate:"omitempty,min=30,max=300"`
	GoalDescription  *string   `json:"goal_description,omitempty" bson:"goal_description,omitempty" validate:"omitempty,min=10,max=2000"`

	Timezone             *string     `json:"timezone,omitempty" bson:"timezone,omitempty" validate:"omitempty,timezone"`
	NotificationsEnabled *bool       `json:"notifications_enabled,omitempty" bson:"notifications_enabled,omitempty"`
	Injuries             Injuries    `json:"injuries,omitzero" bson:"injuries" validate:"omitempty,max=20,dive,max=100"`
	DeviceLinked         *bool       `json:"device_linked,omitempty" bson:"device_linked,omitempty"`
	CoachMode            *bool       `json:"coach_mode,omitempty" bson:"coach_mode,omitempty"`
	Language             *Language   `json:"language,omitempty" bson:"language,omitempty" validate:"omitempty,oneof=en fr"`
	UnitSystem           *UnitSystem `json:"unit_system,omitempty" bson:"unit_system,omitempty" validate:"omitempty,oneof=metric imperial"`
}

// Merge copies every value present in o over d.
func (d *Details) Merge(o Details) {
	pick(&d.BirthDate, o.BirthDate)
	pick(&d.Gender, o.Gender)
	pick(&d.Height, o.Height)
	pick(&d.Weight, o.Weight)
	pick(&d.ExperienceLevel, o.ExperienceLevel)
	pick(&d.MainSport, o.MainSport)

	pick(&d.TrainingFrequency, o.TrainingFrequency)
	pick(&d.WeeklyGoalHours, o.WeeklyGoalHours)
	pickSlice(&d.PreferredDays, o.PreferredDays)
	pick(&d.RestingHeartRate, o.RestingHeartRate)
	pick(&d.MaxHeartRate, o.MaxHeartRate)
	pick(&d.RunPace, o.RunPace)
	pick(&d.FTP, o.FTP)
	pick(&d.SwimPace, o.SwimPace)
	pick(&d.StrengthLevel, o.StrengthLevel)
	pickSlice(&d.PreferredSports, o.PreferredSports)

	pick(&d.GoalType, o.GoalType)
	pick(&d.GoalTitle, o.GoalTitle)
	pick(&d.GoalDate, o.GoalDate)
	pick(&d.GoalTimeTarget, o.GoalTimeTarget)
	pick(&d.GoalWeightTarget, o.GoalWeightTarget)
	pick(&d.GoalDescription, o.GoalDescription)

	pick(&d.Timezone, o.Timezone)
	pick(&d.NotificationsEnabled, o.NotificationsEnabled)
	if o.Injuries != nil {
		d.Injuries = o.Injuries
	}
	pick(&d.DeviceLinked, o.DeviceLinked)
	pick(&d.CoachMode, o.CoachMode)
	pick(&d.Language, o.Language)
	pick(&d.UnitSystem, o.UnitSystem)
}

// Normalize trims text values, drops the blank ones and cleans injuries if present.
func (d Details) Normalize() Details {
	d.BirthDate = clean(d.BirthDate)
	d.Gender = clean(d.Gender)
	d.ExperienceLevel = clean(d.ExperienceLevel)
	d.MainSport = clean(d.MainSport)
	d.StrengthLevel = clean(d.StrengthLevel)
	d.GoalType = clean(d.GoalType)
	d.GoalTitle = clean(d.GoalTitle)
	d.GoalDate = clean(d.GoalDate)
	d.GoalTimeTarget = clean(d.GoalTimeTarget)
	d.GoalDescription = clean(d.GoalDescription)
	d.Timezone = clean(d.Timezone)
	d.Language = clean(d.Language)
	d.UnitSystem = clean(d.UnitSystem)
	if d.Injuries != nil {
		d.Injuries = d.Injuries.Clean()
	}
	if d.PreferredSports != nil {
		d.PreferredSports = lo.FilterMap(d.PreferredSports, func(s string, _ int) (string, bool) {
			s = strings.TrimSpace(s)
			return s, s != ""
		})
	}
	return d
}

// Prune drops the sport metrics and goal targets that do not apply to the
// main sport and goal type. Unknown discriminators leave their fields alone.
func (d *Details) Prune() {
	if d.MainSport != nil {
		sport := *d.MainSport
		if !sport.Runs() {
			d.RunPace = nil
		}
		if !sport.Rides() {
			d.FTP = nil
		}
		if !sport.Swims() {
			d.SwimPace = nil
		}
		if !sport.Lifts() {
			d.StrengthLevel = nil
		}
	}

	if d.GoalType != nil {
		if *d.GoalType != GoalCompetition {
			d.GoalTimeTarget = nil
		}
		if *d.GoalType != GoalWeightLoss {
			d.GoalWeightTarget = nil
		}
	}
}

func (d *Details) missing() []string {
	var fields []string
	add := func(absent bool, field string) {
		if absent {
			fields = append(fields, field)
		}
	}
	add(d.BirthDate == nil, "birth_date")
	add(d.Gender == nil, "gender")
	add(d.Height == nil, "height")
	add(d.Weight == nil, "weight")
	add(d.ExperienceLevel == nil, "experience_level")
	add(d.MainSport == nil, "main_sport")
	add(d.TrainingFrequency == nil, "training_frequency")
	add(d.WeeklyGoalHours == nil, "weekly_goal_hours")
	add(len(d.PreferredDays) == 0, "preferred_days")
	add(d.RestingHeartRate == nil, "resting_heart_rate")
	add(d.MaxHeartRate == nil, "max_heart_rate")
	add(d.GoalType == nil, "goal_type")
	add(d.GoalTitle == nil, "goal_title")
	add(d.GoalDate == nil, "goal_date")
	add(d.GoalDescription == nil, "goal_description")
	add(d.Timezone == nil, "timezone")
	add(d.NotificationsEnabled == nil, "notifications_enabled")
	add(d.Language == nil, "language")
	add(d.UnitSystem == nil, "unit_system")
	return fields
}

// Patch is a partial profile: the payload produced by onboarding steps and
// accepted by profile updates.
type Patch struct {
	FirstName *string `json:"first_name,omitempty" validate:"omitempty,max=100"`
	LastName  *string `json:"last_name,omitempty" validate:"omitempty,max=100"`
	Details
}

func (p *Patch) Merge(o Patch) {
	pick(&p.FirstName, o.FirstName)
	pick(&p.LastName, o.LastName)
	p.Details.Merge(o.Details)
}

func (p Patch) Normalize() Patch {
	p.FirstName = clean(p.FirstName)
	p.LastName = clean(p.LastName)
	p.Details = p.Details.Normalize()
	return p
}

// Missing lists the mandatory onboarding fields absent from the patch.
func (p Patch) Missing() []string {
	var fields []string
	if p.FirstName == nil || *p.FirstName == "" {
		fields = append(fields, "first_name")
	}
	if p.LastName == nil || *p.LastName == "" {
		fields = append(fields, "last_name")
	}
	return append(fields, p.Details.missing()...)
}

// Injuries is an ordered list of free-text injuries. When decoded from JSON it
// accepts either an array or a comma-separated string.
type Injuries []string

// ParseInjuries splits comma-separated text into a trimmed list without empty entries.
func ParseInjuries(text string) Injuries {
	return Injuries(strings.Split(text, ",")).Clean()
}

// Clean trims every entry and drops the empty ones. The result is never nil.
func (i Injuries) Clean() Injuries {
	out := make(Injuries, 0, len(i))
	for _, s := range i {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func (i *Injuries) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*i = nil
		return nil
	case len(data) > 0 && data[0] == '"':
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		*i = ParseInjuries(text)
		return nil
	default:
		var list []string
		if err := json.Unmarshal(data, &list); err != nil {
			return err
		}
		*i = list
		return nil
	}
}

func pick[T any](dst **T, src *T) {
	if src != nil {
		*dst = src
	}
}

func pickSlice[T any](dst *[]T, src []T) {
	if src != nil {
		*dst = src
	}
}

// clean trims v and returns nil when nothing is left.
func clean[T ~string](v *T) *T {
	if v == nil {
		return nil
	}
	t := T(strings.TrimSpace(string(*v)))
	if t == "" {
		return nil
	}
	return &t
}
