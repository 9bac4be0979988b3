package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/widescopeindustries/ai-receptionist/pkg/constants"
	"gorm.io/gorm"
)

// Call outcome tags written at session end
const (
	OutcomeAppointmentBooked = "Appointment Booked"
	OutcomeSetupLinkSent     = "Setup Link Sent"
	OutcomeCompleted         = "Completed"
	OutcomeFailed            = "Failed"
)

// TranscriptMessage one line of a call transcript
type TranscriptMessage struct {
	Speaker   string    `json:"speaker"` // "caller" or "assistant"
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// TranscriptLog ordered call transcript, stored as a JSON column
type TranscriptLog []TranscriptMessage

// Value implements the driver.Valuer interface
func (tl TranscriptLog) Value() (driver.Value, error) {
	if len(tl) == 0 {
		return nil, nil
	}
	return json.Marshal(tl)
}

// Scan implements the sql.Scanner interface
func (tl *TranscriptLog) Scan(value interface{}) error {
	if value == nil {
		*tl = make(TranscriptLog, 0)
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		*tl = make(TranscriptLog, 0)
		return nil
	}
	if len(bytes) == 0 {
		*tl = make(TranscriptLog, 0)
		return nil
	}
	return json.Unmarshal(bytes, tl)
}

// CallRecord one row per phone call
type CallRecord struct {
	ID        string     `json:"id" gorm:"type:varchar(64);primaryKey"`
	CreatedAt time.Time  `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt time.Time  `json:"updatedAt" gorm:"autoUpdateTime"`
	DeletedAt *time.Time `json:"-" gorm:"index"`

	CallSID    string `json:"callSid" gorm:"column:call_sid;size:128;uniqueIndex;not null"` // telephony platform call id
	LeadID     string `json:"leadId,omitempty" gorm:"size:64;index"`
	BusinessID string `json:"businessId" gorm:"size:64;index"`

	FromNumber string `json:"fromNumber,omitempty" gorm:"size:32;index"`
	ToNumber   string `json:"toNumber,omitempty" gorm:"size:32;index"`

	DurationSeconds int           `json:"durationSeconds" gorm:"default:0"`
	TurnCount       int           `json:"turnCount" gorm:"default:0"`
	Transcript      TranscriptLog `json:"transcript" gorm:"type:json"`
	Outcome         string        `json:"outcome,omitempty" gorm:"size:64"`

	Lead Lead `json:"lead,omitempty" gorm:"foreignKey:LeadID"`
}

// TableName get tables
func (CallRecord) TableName() string {
	return constants.TABLE_CALL_RECORDS
}

// CreateCallRecord creates a call record at call start
func CreateCallRecord(db *gorm.DB, record *CallRecord) error {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	return db.Create(record).Error
}

// GetCallRecordBySID gets a call record by the platform call id
func GetCallRecordBySID(db *gorm.DB, callSID string) (*CallRecord, error) {
	var record CallRecord
	err := db.Where("call_sid = ?", callSID).First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// UpdateCallRecordFields applies a partial update to a call record by call id
func UpdateCallRecordFields(db *gorm.DB, callSID string, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	return db.Model(&CallRecord{}).Where("call_sid = ?", callSID).Updates(fields).Error
}

// GetRecentCallRecords lists the most recent calls
func GetRecentCallRecords(db *gorm.DB, limit int) ([]CallRecord, error) {
	var records []CallRecord
	query := db.Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&records).Error
	return records, err
}

// CountCallRecords counts all calls
func CountCallRecords(db *gorm.DB) (int64, error) {
	var count int64
	err := db.Model(&CallRecord{}).Count(&count).Error
	return count, err
}
