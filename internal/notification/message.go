// Package notification publishes participation changes to Kafka and consumes
// them to drop stale query cache entries.
package notification

import (
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeEventCreated        Type = "event.created"
	TypeEventUpdated        Type = "event.updated"
	TypeEventDeleted        Type = "event.deleted"
	TypeRegistrationCreated Type = "registration.created"
	TypeRegistrationRemoved Type = "registration.removed"
	TypeAssignmentApproved  Type = "assignment.approved"
	TypeProductRejected     Type = "product.rejected"
)

// Message is the JSON value written to the participation topic.
type Message struct {
	ID         string    `json:"id"`
	Type       Type      `json:"type"`
	EventID    uint      `json:"event_id"`
	DesignerID *uint     `json:"designer_id,omitempty"`
	BoutiqueID *uint     `json:"boutique_id,omitempty"`
	ProductID  *uint     `json:"product_id,omitempty"`
	ActorID    uint      `json:"actor_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewMessage stamps a message with a fresh id and the current time.
func NewMessage(t Type, eventID, actorID uint) Message {
	return Message{
		ID:         uuid.NewString(),
		Type:       t,
		EventID:    eventID,
		ActorID:    actorID,
		OccurredAt: time.Now().UTC(),
	}
}

func (m Message) WithParticipant(designerID, boutiqueID *uint) Message {
	m.DesignerID = designerID
	m.BoutiqueID = boutiqueID
	return m
}

func (m Message) WithProduct(productID uint) Message {
	m.ProductID = &productID
	return m
}
