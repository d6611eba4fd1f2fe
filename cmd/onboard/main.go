// Command onboard registers an athlete against a running server and walks
// the onboarding wizard with the answers from a JSON file.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"github.com/burenotti/go_endurance_backend/internal/adapter/client"
	"github.com/burenotti/go_endurance_backend/internal/app/onboarding"
	"github.com/burenotti/go_endurance_backend/internal/app/session"
	"github.com/burenotti/go_endurance_backend/internal/domain/auth"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

type athlete struct {
	Email       string                     `json:"email"`
	Password    string                     `json:"password"`
	FirstName   string                     `json:"first_name"`
	LastName    string                     `json:"last_name"`
	Basic       onboarding.BasicStep       `json:"basic"`
	Training    onboarding.TrainingStep    `json:"training"`
	Goal        onboarding.GoalStep        `json:"goal"`
	Preferences onboarding.PreferencesStep `json:"preferences"`
}

func (a *athlete) steps() []onboarding.StepInput {
	return []onboarding.StepInput{&a.Basic, &a.Training, &a.Goal, &a.Preferences}
}

func main() {
	var (
		baseURL string
		file    string
	)
	flag.StringVar(&baseURL, "url", "http://localhost:8080", "server base url")
	flag.StringVar(&file, "file", "athlete.json", "path to the athlete answers")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, baseURL, file, logger); err != nil {
		logger.Error("onboarding failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, baseURL, file string, logger *slog.Logger) error {
	data, err := os.ReadFile(file)
	if err != nil {
		return err
	}
	var a athlete
	if err := json.Unmarshal(data, &a); err != nil {
		return fmt.Errorf("parse %s: %w", file, err)
	}

	c := client.New(baseURL)
	controller := session.NewController(c, session.NewStore(), logger)

	err = controller.Register(ctx, a.Email, a.Password, a.FirstName, a.LastName)
	if errors.Is(err, auth.ErrUserEmailDuplicate) {
		logger.Info("account exists, logging in", "email", a.Email)
		err = controller.Login(ctx, a.Email, a.Password)
	}
	if err != nil {
		return err
	}
	defer func() {
		if err := controller.Logout(context.Background()); err != nil {
			logger.Warn("logout failed", "error", err)
		}
	}()

	if controller.State().Profile.OnboardingCompleted {
		logger.Info("onboarding already completed")
		return printProfile(controller)
	}

	draft, err := c.Draft(ctx)
	if err != nil {
		return err
	}

	for _, step := range a.steps()[draft.Step-1:] {
		d, _, err := c.SubmitStep(ctx, step)
		if err != nil {
			var fields onboarding.FieldErrors
			if errors.As(err, &fields) {
				for field, msg := range fields {
					logger.Error("invalid answer", "step", step.Step(), "field", field, "message", msg)
				}
			}
			return fmt.Errorf("step %d: %w", step.Step(), err)
		}
		if d != nil {
			logger.Info("step saved", "next", d.Step, "of", onboarding.TotalSteps)
		}
	}

	if err := controller.FetchCurrent(ctx); err != nil {
		return err
	}
	return printProfile(controller)
}

func printProfile(controller *session.Controller) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(controller.State().Profile)
}
