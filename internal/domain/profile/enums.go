package profile

import "github.com/samber/lo"

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

var Genders = []Gender{GenderMale, GenderFemale, GenderOther}

func (g Gender) Valid() bool { return lo.Contains(Genders, g) }

type ExperienceLevel string

const (
	ExperienceBeginner     ExperienceLevel = "beginner"
	ExperienceIntermediate ExperienceLevel = "intermediate"
	ExperienceAdvanced     ExperienceLevel = "advanced"
)

var ExperienceLevels = []ExperienceLevel{ExperienceBeginner, ExperienceIntermediate, ExperienceAdvanced}

func (l ExperienceLevel) Valid() bool { return lo.Contains(ExperienceLevels, l) }

type Sport string

const (
	SportRunning   Sport = "running"
	SportCycling   Sport = "cycling"
	SportSwimming  Sport = "swimming"
	SportTriathlon Sport = "triathlon"
	SportFitness   Sport = "fitness"
	SportOther     Sport = "other"
)

var Sports = []Sport{SportRunning, SportCycling, SportSwimming, SportTriathlon, SportFitness, SportOther}

func (s Sport) Valid() bool { return lo.Contains(Sports, s) }

// Runs reports whether run pace is relevant for the sport.
func (s Sport) Runs() bool { return s == SportRunning || s == SportTriathlon }

// Rides reports whether FTP is relevant for the sport.
func (s Sport) Rides() bool { return s == SportCycling || s == SportTriathlon }

// Swims reports whether swim pace is relevant for the sport.
func (s Sport) Swims() bool { return s == SportSwimming || s == SportTriathlon }

// Lifts reports whether strength level is relevant for the sport.
func (s Sport) Lifts() bool { return s == SportFitness }

type StrengthLevel string

const (
	StrengthLight    StrengthLevel = "light"
	StrengthModerate StrengthLevel = "moderate"
	StrengthHeavy    StrengthLevel = "heavy"
)

var StrengthLevels = []StrengthLevel{StrengthLight, StrengthModerate, StrengthHeavy}

func (l StrengthLevel) Valid() bool { return lo.Contains(StrengthLevels, l) }

type GoalType string

const (
	GoalCompetition GoalType = "competition"
	GoalWeightLoss  GoalType = "weight_loss"
	GoalPerformance GoalType = "performance"
	GoalWellness    GoalType = "wellness"
)

var GoalTypes = []GoalType{GoalCompetition, GoalWeightLoss, GoalPerformance, GoalWellness}

func (t GoalType) Valid() bool { return lo.Contains(GoalTypes, t) }

type Weekday string

const (
	Monday    Weekday = "monday"
	Tuesday   Weekday = "tuesday"
	Wednesday Weekday = "wednesday"
	Thursday  Weekday = "thursday"
	Friday    Weekday = "friday"
	Saturday  Weekday = "saturday"
	Sunday    Weekday = "sunday"
)

var Weekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

func (d Weekday) Valid() bool { return lo.Contains(Weekdays, d) }

type Language string

const (
	LanguageEnglish Language = "en"
	LanguageFrench  Language = "fr"
)

var Languages = []Language{LanguageEnglish, LanguageFrench}

func (l Language) Valid() bool { return lo.Contains(Languages, l) }

type UnitSystem string

const (
	UnitsMetric   UnitSystem = "metric"
	UnitsImperial UnitSystem = "imperial"
)

var UnitSystems = []UnitSystem{UnitsMetric, UnitsImperial}

func (u UnitSystem) Valid() bool { return lo.Contains(UnitSystems, u) }
