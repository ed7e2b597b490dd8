package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/storefront/backend/internal/domain/integration"
)

// IntegrationModel is the persistence model for the Integration domain entity.
type IntegrationModel struct {
	BaseModel
	BranchID uuid.UUID                `gorm:"type:uuid;not null;index"`
	Name     string                   `gorm:"type:varchar(100);not null"`
	Kind     integration.ProviderKind `gorm:"type:varchar(20);not null"`
	BaseURL  string                   `gorm:"type:varchar(500);not null"`

	APIKeyEncrypted    string `gorm:"type:text"`
	APISecretEncrypted string `gorm:"type:text"`

	MappingConfig string `gorm:"type:jsonb"`

	Frequency integration.SyncFrequency `gorm:"type:varchar(10);not null;default:'daily'"`
	AutoSync  bool                      `gorm:"not null;default:true;index"`

	LastSyncAt      *time.Time             `gorm:""`
	LastSyncStatus  integration.SyncStatus `gorm:"type:varchar(10);not null;default:'pending'"`
	LastSyncMessage string                 `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (IntegrationModel) TableName() string {
	return "integrations"
}

// ToDomain converts the persistence model to a domain Integration entity.
func (m *IntegrationModel) ToDomain() *integration.Integration {
	integ := &integration.Integration{
		BaseEntity:         m.BaseModel.ToDomain(),
		BranchID:           m.BranchID,
		Name:               m.Name,
		Kind:               m.Kind,
		BaseURL:            m.BaseURL,
		APIKeyEncrypted:    m.APIKeyEncrypted,
		APISecretEncrypted: m.APISecretEncrypted,
		Frequency:          m.Frequency,
		AutoSync:           m.AutoSync,
		LastSyncAt:         m.LastSyncAt,
		LastSyncStatus:     m.LastSyncStatus,
		LastSyncMessage:    m.LastSyncMessage,
	}
	if m.MappingConfig != "" && m.MappingConfig != "null" {
		var cfg integration.MappingConfig
		if err := json.Unmarshal([]byte(m.MappingConfig), &cfg); err == nil {
			integ.MappingConfig = &cfg
		}
	}
	return integ
}

// FromDomain populates the persistence model from a domain Integration entity.
func (m *IntegrationModel) FromDomain(i *integration.Integration) {
	m.FromDomainBaseEntity(i.BaseEntity)
	m.BranchID = i.BranchID
	m.Name = i.Name
	m.Kind = i.Kind
	m.BaseURL = i.BaseURL
	m.APIKeyEncrypted = i.APIKeyEncrypted
	m.APISecretEncrypted = i.APISecretEncrypted
	m.Frequency = i.Frequency
	m.AutoSync = i.AutoSync
	m.LastSyncAt = i.LastSyncAt
	m.LastSyncStatus = i.LastSyncStatus
	m.LastSyncMessage = i.LastSyncMessage

	if i.MappingConfig != nil {
		if raw, err := json.Marshal(i.MappingConfig); err == nil {
			m.MappingConfig = string(raw)
		}
	} else {
		m.MappingConfig = ""
	}
}

// IntegrationModelFromDomain creates a new persistence model from a domain Integration entity.
func IntegrationModelFromDomain(i *integration.Integration) *IntegrationModel {
	m := &IntegrationModel{}
	m.FromDomain(i)
	return m
}
