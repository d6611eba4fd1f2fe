package profilestorage

import (
	"context"
	"database/sql"
	"errors"
	"github.com/burenotti/go_endurance_backend/internal/adapter/storage"
	"github.com/burenotti/go_endurance_backend/internal/adapter/storage/pgutil"
	"github.com/burenotti/go_endurance_backend/internal/domain"
	"github.com/burenotti/go_endurance_backend/internal/domain/profile"
	"github.com/leporo/sqlf"
)

type PostgresStorage struct {
	db   sqlf.Executor
	seen storage.Seen[*profile.Profile]
}

func NewPostgresStorage(db sqlf.Executor) *PostgresStorage {
	return &PostgresStorage{
		db: db,
	}
}

func (s *PostgresStorage) Add(ctx context.Context, p *profile.Profile) error {
	q := sqlf.InsertInto("profiles").
		Set("profile_id", p.ID).
		Set("email", p.Email).
		Set("created_at", p.CreatedAt)

	q, err := setDetails(q, p)
	if err != nil {
		return storage.InternalError(err)
	}

	if _, err := q.ExecAndClose(ctx, s.db); err != nil {
		if pgutil.ViolatesConstraint(err, "profiles_pkey") || pgutil.ViolatesConstraint(err, "profiles_email_key") {
			return profile.ErrProfileExists
		}
		return storage.InternalError(err)
	}

	s.seen.Mark(p.ID, p)
	return nil
}

func (s *PostgresStorage) GetByID(ctx context.Context, id string) (*profile.Profile, error) {
	var (
		p                      profile.Profile
		days, injuries, sports *string
	)

	q := sqlf.From("profiles").
		Where("profile_id = ?", id).
		Select("profile_id").To(&p.ID).
		Select("email").To(&p.Email).
		Select("first_name").To(&p.FirstName).
		Select("last_name").To(&p.LastName).
		Select("birth_date").To(&p.BirthDate).
		Select("gender").To(&p.Gender).
		Select("height").To(&p.Height).
		Select("weight").To(&p.Weight).
		Select("experience_level").To(&p.ExperienceLevel).
		Select("main_sport").To(&p.MainSport).
		Select("training_frequency").To(&p.TrainingFrequency).
		Select("weekly_goal_hours").To(&p.WeeklyGoalHours).
		Select("preferred_days").To(&days).
		Select("resting_heart_rate").To(&p.RestingHeartRate).
		Select("max_heart_rate").To(&p.MaxHeartRate).
		Select("run_pace").To(&p.RunPace).
		Select("ftp").To(&p.FTP).
		Select("swim_pace").To(&p.SwimPace).
		Select("strength_level").To(&p.StrengthLevel).
		Select("preferred_sports").To(&sports).
		Select("goal_type").To(&p.GoalType).
		Select("goal_title").To(&p.GoalTitle).
		Select("goal_date").To(&p.GoalDate).
		Select("goal_time_target").To(&p.GoalTimeTarget).
		Select("goal_weight_target").To(&p.GoalWeightTarget).
		Select("goal_description").To(&p.GoalDescription).
		Select("timezone").To(&p.Timezone).
		Select("notifications_enabled").To(&p.NotificationsEnabled).
		Select("injuries").To(&injuries).
		Select("device_linked").To(&p.DeviceLinked).
		Select("coach_mode").To(&p.CoachMode).
		Select("language").To(&p.Language).
		Select("unit_system").To(&p.UnitSystem).
		Select("created_at").To(&p.CreatedAt).
		Select("updated_at").To(&p.UpdatedAt).
		Select("onboarding_completed").To(&p.OnboardingCompleted)

	if err := q.QueryRowAndClose(ctx, s.db); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, profile.ErrProfileNotFound
		}
		return nil, storage.InternalError(err)
	}

	var err error
	if p.PreferredDays, err = pgutil.FromJSONB[profile.Weekday](days); err != nil {
		return nil, storage.InternalError(err)
	}
	if p.PreferredSports, err = pgutil.FromJSONB[string](sports); err != nil {
		return nil, storage.InternalError(err)
	}
	list, err := pgutil.FromJSONB[string](injuries)
	if err != nil {
		return nil, storage.InternalError(err)
	}
	p.Injuries = profile.Injuries(list).Clean()

	out := &p
	s.seen.Mark(out.ID, out)
	return out, nil
}

// Persist writes every editable column. Concurrent saves are last write wins.
func (s *PostgresStorage) Persist(ctx context.Context, p *profile.Profile) error {
	q := sqlf.Update("profiles").
		Where("profile_id = ?", p.ID).
		Set("updated_at", p.UpdatedAt).
		Set("onboarding_completed", p.OnboardingCompleted)

	q, err := setDetails(q, p)
	if err != nil {
		return storage.InternalError(err)
	}

	res, err := q.ExecAndClose(ctx, s.db)
	if err := pgutil.AssertUpdated(res, err, profile.ErrProfileNotFound); err != nil {
		return err
	}

	s.seen.Mark(p.ID, p)
	return nil
}

func (s *PostgresStorage) CollectEvents() []domain.Event {
	return s.seen.Collect()
}

func (s *PostgresStorage) Close() error {
	s.seen.Clear()
	return nil
}

func setDetails(q *sqlf.Stmt, p *profile.Profile) (*sqlf.Stmt, error) {
	days, err := pgutil.JSONB(p.PreferredDays)
	if err != nil {
		return nil, err
	}
	sports, err := pgutil.JSONB(p.PreferredSports)
	if err != nil {
		return nil, err
	}
	injuries := p.Injuries
	if injuries == nil {
		injuries = profile.Injuries{}
	}
	injuriesJSON, err := pgutil.JSONB(injuries)
	if err != nil {
		return nil, err
	}

	return q.
		Set("first_name", p.FirstName).
		Set("last_name", p.LastName).
		Set("birth_date", p.BirthDate).
		Set("gender", p.Gender).
		Set("height", p.Height).
		Set("weight", p.Weight).
		Set("experience_level", p.ExperienceLevel).
		Set("main_sport", p.MainSport).
		Set("training_frequency", p.TrainingFrequency).
		Set("weekly_goal_hours", p.WeeklyGoalHours).
		Set("preferred_days", days).
		Set("resting_heart_rate", p.RestingHeartRate).
		Set("max_heart_rate", p.MaxHeartRate).
		Set("run_pace", p.RunPace).
		Set("ftp", p.FTP).
		Set("swim_pace", p.SwimPace).
		Set("strength_level", p.StrengthLevel).
		Set("preferred_sports", sports).
		Set("goal_type", p.GoalType).
		Set("goal_title", p.GoalTitle).
		Set("goal_date", p.GoalDate).
		Set("goal_time_target", p.GoalTimeTarget).
		Set("goal_weight_target", p.GoalWeightTarget).
		Set("goal_description", p.GoalDescription).
		Set("timezone", p.Timezone).
		Set("notifications_enabled", p.NotificationsEnabled).
		Set("injuries", injuriesJSON).
		Set("device_linked", p.DeviceLinked).
		Set("coach_mode", p.CoachMode).
		Set("language", p.Language).
		Set("unit_system", p.UnitSystem), nil
}
