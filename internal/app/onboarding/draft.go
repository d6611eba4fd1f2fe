package onboarding

import (
	"github.com/burenotti/go_endurance_backend/internal/domain/profile"
)

// Draft is the merge engine state of one user's wizard.
type Draft struct {
	Step Step          `json:"step"`
	Data profile.Patch `json:"data"`
}

func NewDraft() *Draft {
	return &Draft{Step: StepBasic}
}

// Advance merges the step output into the collected data and moves to the next step.
// Metrics and targets left over from an earlier sport or goal type are dropped.
func (d *Draft) Advance(p profile.Patch) {
	d.Data.Merge(p)
	d.Data.Prune()
	if d.Step < StepPreferences {
		d.Step++
	}
}

// Retreat moves one step back. Collected data is kept.
func (d *Draft) Retreat() {
	if d.Step > StepBasic {
		d.Step--
	}
}

// Finalize merges the last step and returns the normalized payload to persist.
// It fails with *profile.IncompleteError when a mandatory field was never collected.
func (d *Draft) Finalize(last profile.Patch) (profile.Patch, error) {
	d.Data.Merge(last)
	d.Data.Prune()

	payload := d.Data.Normalize()
	if payload.Injuries == nil {
		payload.Injuries = profile.Injuries{}
	}

	if missing := payload.Missing(); len(missing) != 0 {
		return payload, &profile.IncompleteError{Missing: missing}
	}
	return payload, nil
}
