package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EventCategory classifies audit events by their primary purpose.
// This enables different retention policies and routing per sink.
type EventCategory string

const (
	// CategoryCompliance covers token issuance and changes to sale rules.
	// These are kept for as long as the collection exists.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers rejected attempts worth alerting on
	// (unauthorized admin calls, proof failures, rate limiting).
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers routine activity that can be sampled.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	ID        uuid.UUID     `json:"id"`
	Category  EventCategory `json:"category"`
	Timestamp time.Time     `json:"timestamp"`
	Action    string        `json:"action"`
	// Actor is the caller identity (hex address) that triggered the event.
	Actor string `json:"actor"`
	// Subject names what the event is about: a setting, a phase, a root.
	Subject   string `json:"subject,omitempty"`
	Decision  string `json:"decision,omitempty"`
	Reason    string `json:"reason,omitempty"`
	Quantity  uint64 `json:"quantity,omitempty"`
	RequestID string `json:"request_id,omitempty"`
	ClientIP  string `json:"client_ip,omitempty"`
	Device    string `json:"device,omitempty"`
}

type AuditEvent string

const (
	EventMintSucceeded     AuditEvent = "mint_succeeded"
	EventMintRejected      AuditEvent = "mint_rejected"
	EventSaleConfigChanged AuditEvent = "sale_config_changed"
	EventWhitelistPublish  AuditEvent = "whitelist_published"
	EventRateLimitExceeded AuditEvent = "rate_limit_exceeded"
	EventProofServed       AuditEvent = "whitelist_proof_served"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventMintSucceeded:     CategoryCompliance,
	EventSaleConfigChanged: CategoryCompliance,
	EventWhitelistPublish:  CategoryCompliance,

	EventMintRejected:      CategorySecurity,
	EventRateLimitExceeded: CategorySecurity,

	EventProofServed: CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
}

// Lister reads back events for one actor. Only the memory store implements
// it; streaming sinks are write-only.
type Lister interface {
	ListByActor(ctx context.Context, actor string) ([]Event, error)
}
