package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/widescopeindustries/ai-receptionist/pkg/constants"
	"gorm.io/gorm"
)

// ReceptionistProfile per-number receptionist configuration.
// A call routes to the profile whose PhoneNumber matches the called number.
type ReceptionistProfile struct {
	ID        string     `json:"id" gorm:"type:varchar(64);primaryKey"`
	CreatedAt time.Time  `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt time.Time  `json:"updatedAt" gorm:"autoUpdateTime"`
	DeletedAt *time.Time `json:"-" gorm:"index"`

	PhoneNumber string `json:"phoneNumber" gorm:"size:32;uniqueIndex;not null"`
	BusinessID  string `json:"businessId" gorm:"size:64;index"`
	Name        string `json:"name" gorm:"size:128"`

	Voice    string `json:"voice" gorm:"size:64;default:'Polly.Danielle-Neural'"`
	Language string `json:"language" gorm:"size:16;default:'en-US'"`

	Greeting     string `json:"greeting" gorm:"type:text"`
	SystemPrompt string `json:"systemPrompt" gorm:"type:text"`

	NotifyEmail string `json:"notifyEmail" gorm:"size:256"`

	// EnabledActions comma separated action names, empty means all
	EnabledActions string `json:"enabledActions" gorm:"size:256"`

	Enabled bool `json:"enabled" gorm:"default:true"`
}

// TableName get tables
func (ReceptionistProfile) TableName() string {
	return constants.TABLE_RECEPTIONIST_PROFILES
}

// ActionEnabled reports whether the named action may run for this profile
func (p *ReceptionistProfile) ActionEnabled(kind string) bool {
	if p.EnabledActions == "" {
		return true
	}
	for _, name := range strings.Split(p.EnabledActions, ",") {
		if strings.TrimSpace(name) == kind {
			return true
		}
	}
	return false
}

// GetProfileByNumber looks up the enabled profile for a called number
func GetProfileByNumber(db *gorm.DB, phoneNumber string) (*ReceptionistProfile, error) {
	var profile ReceptionistProfile
	err := db.Where("phone_number = ? AND enabled = ?", phoneNumber, true).First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// CreateProfile creates a receptionist profile
func CreateProfile(db *gorm.DB, profile *ReceptionistProfile) error {
	if profile.ID == "" {
		profile.ID = uuid.New().String()
	}
	return db.Create(profile).Error
}
