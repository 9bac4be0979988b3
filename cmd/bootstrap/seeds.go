package bootstrap

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/widescopeindustries/ai-receptionist/internal/models"
	"github.com/widescopeindustries/ai-receptionist/pkg/config"
	"github.com/widescopeindustries/ai-receptionist/pkg/logger"
	"github.com/widescopeindustries/ai-receptionist/pkg/voice"
)

type SeedService struct {
	db *gorm.DB
}

func (s *SeedService) SeedAll() error {
	return s.seedDefaultProfile()
}

// seedDefaultProfile creates the demo receptionist so a fresh install
// answers calls before any tenant is configured
func (s *SeedService) seedDefaultProfile() error {
	var existing models.ReceptionistProfile
	result := s.db.Where("phone_number = ?", "default").First(&existing)
	if result.Error == nil {
		logger.Info("default receptionist profile already exists, skipping seed")
		return nil
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check existing profile: %w", result.Error)
	}

	greeting := voice.DefaultGreeting
	if config.GlobalConfig.Conversation.Greeting != "" {
		greeting = config.GlobalConfig.Conversation.Greeting
	}

	profile := &models.ReceptionistProfile{
		PhoneNumber: "default",
		BusinessID:  "widescope",
		Name:        "AI Always Answer",
		Voice:       "Polly.Danielle-Neural",
		Language:    "en-US",
		Greeting:    greeting,
		NotifyEmail: config.GlobalConfig.Services.NotifyEmail,
		Enabled:     true,
	}
	if err := models.CreateProfile(s.db, profile); err != nil {
		return fmt.Errorf("failed to create default profile: %w", err)
	}

	logger.Info("default receptionist profile seeded",
		zap.String("name", profile.Name),
		zap.String("voice", profile.Voice))
	return nil
}
