package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/eaas-dev/eaas-backend/internal/logger"
	"github.com/eaas-dev/eaas-backend/internal/store"
	"github.com/eaas-dev/eaas-backend/internal/types"
)

const profileKeyPrefix = "eaas_profile:"

// ProfileService holds per-user profile overrides separately from the
// identity record so they survive sign-out in the simulated regime.
type ProfileService interface {
	Get(ctx context.Context, userID string) *types.Profile
	Save(ctx context.Context, userID string, update types.Profile) (*types.Profile, error)
}

type profileService struct {
	kv  store.KV
	log *logger.Logger
	now func() time.Time
}

func NewProfileService(kv store.KV, log *logger.Logger) ProfileService {
	return &profileService{
		kv:  kv,
		log: log.With("service", "ProfileService"),
		now: time.Now,
	}
}

func (ps *profileService) Get(ctx context.Context, userID string) *types.Profile {
	raw, ok, err := ps.kv.Get(ctx, profileKeyPrefix+userID)
	if err != nil {
		ps.log.Warn("Profile read failed", "user_id", userID, "error", err)
		return nil
	}
	if !ok {
		return nil
	}
	var p types.Profile
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		ps.log.Warn("Profile record unparseable, ignoring", "user_id", userID, "error", err)
		return nil
	}
	return &p
}

// Save merges non-empty fields of the update into the stored profile.
func (ps *profileService) Save(ctx context.Context, userID string, update types.Profile) (*types.Profile, error) {
	current := ps.Get(ctx, userID)
	if current == nil {
		current = &types.Profile{UserID: userID}
	}
	if update.Name != "" {
		current.Name = update.Name
	}
	if update.Bio != "" {
		current.Bio = update.Bio
	}
	if update.AvatarURL != "" {
		current.AvatarURL = update.AvatarURL
	}
	if len(update.Preferences) > 0 {
		current.Preferences = update.Preferences
	}
	current.UpdatedAt = types.Timestamp(ps.now())

	raw, err := json.Marshal(current)
	if err != nil {
		return nil, err
	}
	if err := ps.kv.Set(ctx, profileKeyPrefix+userID, string(raw)); err != nil {
		ps.log.Warn("Profile write failed", "user_id", userID, "error", err)
		return nil, err
	}
	return current, nil
}
