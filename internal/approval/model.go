// Package approval turns pending designer products into event assignments.
package approval

import (
	"errors"

	"github.com/morpheus-mall/mall-backend/internal/domain"
	"github.com/morpheus-mall/mall-backend/internal/event"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrProductNotPending = errors.New("product is not awaiting approval")
	ErrDesignerMismatch  = errors.New("product belongs to another designer")
	ErrAlreadyAssigned   = errors.New("product already assigned for this event")
	ErrMissingEventID    = errors.New("event_id is required")
)

// AssignmentRequest asks to place a designer's product in a boutique for an event.
type AssignmentRequest struct {
	EventID    uint `json:"event_id" binding:"required"`
	DesignerID uint `json:"designer_id" binding:"required"`
	BoutiqueID uint `json:"boutique_id" binding:"required"`
	ProductID  uint `json:"product_id" binding:"required"`
}

type RejectRequest struct {
	Reason string `json:"reason"`
}

// PendingProduct is a product awaiting approval with its designer's name.
type PendingProduct struct {
	domain.Product
	DesignerName string `json:"designer_name"`
}

// RuleError carries a failed registration check. The handler answers 422
// with the reason code.
type RuleError struct {
	Result event.ValidationResult
}

func (e *RuleError) Error() string {
	return "registration check failed: " + e.Result.Message
}
