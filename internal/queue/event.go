// Package queue defines the audit event payload and the consumer that
// writes delivered events to the audit log.
package queue

import (
	"time"

	"github.com/google/uuid"
)

// Audit actions.
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// AuditEvent records one successful mutation of a user, role or
// application. At is RFC 3339 UTC.
type AuditEvent struct {
	EventID    string `json:"event_id"`
	Action     string `json:"action"`
	Resource   string `json:"resource"`
	ResourceID int64  `json:"resource_id"`
	ActorID    int64  `json:"actor_id"`
	At         string `json:"at"`
}

// NewAuditEvent stamps a fresh id and the current time.
func NewAuditEvent(action, resource string, resourceID, actorID int64) AuditEvent {
	return AuditEvent{
		EventID:    uuid.NewString(),
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
		ActorID:    actorID,
		At:         time.Now().UTC().Format(time.RFC3339),
	}
}
