package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/widescopeindustries/ai-receptionist/pkg/constants"
	"gorm.io/gorm"
)

// LeadStatus lead pipeline status
type LeadStatus string

const (
	LeadStatusNew       LeadStatus = "new"
	LeadStatusContacted LeadStatus = "contacted"
	LeadStatusConverted LeadStatus = "converted"
)

// InterestLevel caller interest classification. Best-effort: derived from
// keyword matching on free speech, never treated as validated data.
type InterestLevel string

const (
	InterestUnknown InterestLevel = "unknown"
	InterestMedium  InterestLevel = "medium"
	InterestHigh    InterestLevel = "high"
)

// Lead prospect record, one per caller phone number
type Lead struct {
	ID        string     `json:"id" gorm:"type:varchar(64);primaryKey"`
	CreatedAt time.Time  `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt time.Time  `json:"updatedAt" gorm:"autoUpdateTime"`
	DeletedAt *time.Time `json:"-" gorm:"index"`

	Phone         string        `json:"phone" gorm:"size:32;uniqueIndex;not null"`
	Name          string        `json:"name,omitempty" gorm:"size:128"`
	Email         string        `json:"email,omitempty" gorm:"size:256"`
	Company       string        `json:"company,omitempty" gorm:"size:256"`
	InterestLevel InterestLevel `json:"interestLevel" gorm:"size:16;default:'unknown'"`
	Notes         string        `json:"notes,omitempty" gorm:"type:text"`
	Status        LeadStatus    `json:"status" gorm:"size:16;default:'new';index"`
	BusinessID    string        `json:"businessId" gorm:"size:64;index"`
}

// TableName get tables
func (Lead) TableName() string {
	return constants.TABLE_LEADS
}

// GetOrCreateLeadByPhone returns the lead for a phone number, creating it on first contact
func GetOrCreateLeadByPhone(db *gorm.DB, phone, businessID string) (*Lead, error) {
	var lead Lead
	err := db.Where("phone = ?", phone).First(&lead).Error
	if err == nil {
		return &lead, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	lead = Lead{
		ID:            uuid.New().String(),
		Phone:         phone,
		InterestLevel: InterestUnknown,
		Status:        LeadStatusNew,
		BusinessID:    businessID,
	}
	if err := db.Create(&lead).Error; err != nil {
		return nil, err
	}
	return &lead, nil
}

// GetLeadByID gets a lead by id
func GetLeadByID(db *gorm.DB, id string) (*Lead, error) {
	var lead Lead
	err := db.Where("id = ?", id).First(&lead).Error
	if err != nil {
		return nil, err
	}
	return &lead, nil
}

// UpdateLeadFields applies a partial update to a lead
func UpdateLeadFields(db *gorm.DB, id string, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	return db.Model(&Lead{}).Where("id = ?", id).Updates(fields).Error
}

// UpdateLeadStatus updates a lead's pipeline status
func UpdateLeadStatus(db *gorm.DB, id string, status LeadStatus) error {
	return db.Model(&Lead{}).Where("id = ?", id).Update("status", status).Error
}

// GetLeads lists leads, optionally filtered by status
func GetLeads(db *gorm.DB, status LeadStatus, limit int) ([]Lead, error) {
	var leads []Lead
	query := db.Order("created_at DESC")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&leads).Error
	return leads, err
}

// CountLeads counts leads, optionally filtered by status
func CountLeads(db *gorm.DB, status LeadStatus) (int64, error) {
	var count int64
	query := db.Model(&Lead{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	err := query.Count(&count).Error
	return count, err
}
