package voice

import (
	"errors"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/widescopeindustries/ai-receptionist/internal/models"
	"github.com/widescopeindustries/ai-receptionist/pkg/logger"
)

// ProfileResolver maps a called number to its receptionist profile,
// with a short-lived cache so profile edits land without a restart.
type ProfileResolver struct {
	db    *gorm.DB
	cache *expirable.LRU[string, *models.ReceptionistProfile]
}

// NewProfileResolver creates a resolver over the profile table
func NewProfileResolver(db *gorm.DB) *ProfileResolver {
	return &ProfileResolver{
		db:    db,
		cache: expirable.NewLRU[string, *models.ReceptionistProfile](256, nil, 5*time.Minute),
	}
}

// Resolve returns the profile for a called number, or nil when no row
// matches. A nil profile means the processor falls back to its defaults.
func (r *ProfileResolver) Resolve(calledNumber string) *models.ReceptionistProfile {
	if calledNumber == "" {
		return nil
	}

	if profile, ok := r.cache.Get(calledNumber); ok {
		return profile
	}

	profile, err := models.GetProfileByNumber(r.db, calledNumber)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// fall back to the catch-all profile
		profile, err = models.GetProfileByNumber(r.db, "default")
	}
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Error("profile lookup failed",
				zap.String("calledNumber", calledNumber),
				zap.Error(err))
		}
		return nil
	}

	r.cache.Add(calledNumber, profile)
	return profile
}
