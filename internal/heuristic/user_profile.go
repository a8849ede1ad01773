package heuristic

import (
	"context"
	"fmt"
	"time"

	"github.com/nao1215/ghbuster/internal/model"
)

// Identifiers of the profile detectors.
const (
	IDJustJoined          = "user.just_joined"
	IDMissingCommonFields = "user.missing_common_fields"
)

// JustJoinedThresholdDays is the account age below which a user is
// considered new.
const JustJoinedThresholdDays = 7

const day = 24 * time.Hour

// daysSince returns the number of whole days between t and now.
func daysSince(t, now time.Time) int {
	return int(now.Sub(t) / day)
}

// JustJoined triggers for accounts younger than JustJoinedThresholdDays.
type JustJoined struct {
	descriptor
}

// NewJustJoined creates the detector.
func NewJustJoined() *JustJoined {
	return &JustJoined{descriptor{
		id:          IDJustJoined,
		name:        "User recently joined GitHub",
		description: fmt.Sprintf("The GitHub user joined the platform less than %d days ago.", JustJoinedThresholdDays),
		kind:        model.TargetUser,
	}}
}

// Evaluate implements Heuristic.
func (h *JustJoined) Evaluate(ctx context.Context, env *Env, target model.TargetSpec) (model.Result, error) {
	user, err := env.Client.User(ctx, target.Username())
	if err != nil {
		return model.Result{}, err
	}
	if user.CreatedAt == nil {
		return model.Passed(), nil
	}

	days := daysSince(*user.CreatedAt, env.now())
	if days >= JustJoinedThresholdDays {
		return model.Passed(), nil
	}
	return model.Triggered(fmt.Sprintf("User %s joined GitHub on %s (%d days ago).",
		target.Username(), user.CreatedAt.UTC().Format(time.DateOnly), days)), nil
}

// MissingCommonFields triggers when a profile has none of name, company,
// bio and location.
type MissingCommonFields struct {
	descriptor
}

// NewMissingCommonFields creates the detector.
func NewMissingCommonFields() *MissingCommonFields {
	return &MissingCommonFields{descriptor{
		id:          IDMissingCommonFields,
		name:        "User has none of the common profile fields set",
		description: "Detects when a GitHub is missing a number of highly-common fields (name, company, bio, location) in their profile.",
		kind:        model.TargetUser,
	}}
}

// Evaluate implements Heuristic.
func (h *MissingCommonFields) Evaluate(ctx context.Context, env *Env, target model.TargetSpec) (model.Result, error) {
	user, err := env.Client.User(ctx, target.Username())
	if err != nil {
		return model.Result{}, err
	}
	for _, field := range []string{user.Name, user.Company, user.Bio, user.Location} {
		if field != "" {
			return model.Passed(), nil
		}
	}
	return model.Triggered(fmt.Sprintf("User %s has none of the common fields (name, company, bio, location) set.",
		target.Username())), nil
}
