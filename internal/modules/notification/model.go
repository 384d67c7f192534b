package notification

import (
	"time"

	"github.com/google/uuid"
)

// Type classifies what a notification is about.
type Type string

const (
	TypeNewJob        Type = "new_job"
	TypePaymentUpdate Type = "payment_update"
	TypeStatusChange  Type = "status_change"
	TypeLowStock      Type = "low_stock"
	TypeSystem        Type = "system"
	TypeAlert         Type = "alert"
)

func (t Type) Valid() bool {
	switch t {
	case TypeNewJob, TypePaymentUpdate, TypeStatusChange, TypeLowStock, TypeSystem, TypeAlert:
		return true
	}
	return false
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// EntityType names the record a notification points at.
type EntityType string

const (
	EntityJob       EntityType = "job"
	EntityPayment   EntityType = "payment"
	EntityInventory EntityType = "inventory"
	EntityCustomer  EntityType = "customer"
	EntityUser      EntityType = "user"
)

func (e EntityType) Valid() bool {
	switch e {
	case EntityJob, EntityPayment, EntityInventory, EntityCustomer, EntityUser:
		return true
	}
	return false
}

// DefaultExpiry is how long a notification stays listed.
const DefaultExpiry = 30 * 24 * time.Hour

// Notification is one admin's copy of an event.
type Notification struct {
	ID                uuid.UUID   `json:"id"`
	UserID            uuid.UUID   `json:"user_id"`
	Title             string      `json:"title"`
	Message           string      `json:"message"`
	Type              Type        `json:"type"`
	RelatedEntityType *EntityType `json:"related_entity_type,omitempty"`
	RelatedEntityID   *uuid.UUID  `json:"related_entity_id,omitempty"`
	IsRead            bool        `json:"is_read"`
	Priority          Priority    `json:"priority"`
	ActionURL         *string     `json:"action_url,omitempty"`
	CreatedAt         time.Time   `json:"created_at"`
	ExpiresAt         *time.Time  `json:"expires_at,omitempty"`
}

// CreateRequest describes a notification to fan out to every active admin.
type CreateRequest struct {
	Title             string     `json:"title"`
	Message           string     `json:"message"`
	Type              Type       `json:"type"`
	RelatedEntityType EntityType `json:"related_entity_type,omitempty"`
	RelatedEntityID   *uuid.UUID `json:"related_entity_id,omitempty"`
	Priority          Priority   `json:"priority,omitempty"`
	ActionURL         string     `json:"action_url,omitempty"`
}

// Payload is what connected admins receive over the realtime channel.
type Payload struct {
	Title             string     `json:"title"`
	Message           string     `json:"message"`
	Type              Type       `json:"type"`
	Priority          Priority   `json:"priority"`
	RelatedEntityType EntityType `json:"related_entity_type,omitempty"`
	RelatedEntityID   *uuid.UUID `json:"related_entity_id,omitempty"`
	Recipients        int        `json:"recipients"`
	CreatedAt         time.Time  `json:"created_at"`
}

// Recipient is an active admin able to receive notifications and email.
type Recipient struct {
	UserID uuid.UUID
	Name   string
	Email  string
}

type ListOptions struct {
	Limit      int
	UnreadOnly bool
}
