package approval

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/morpheus-mall/mall-backend/internal/auditlog"
	"github.com/morpheus-mall/mall-backend/internal/cache"
	"github.com/morpheus-mall/mall-backend/internal/domain"
	"github.com/morpheus-mall/mall-backend/internal/event"
	"github.com/morpheus-mall/mall-backend/internal/notification"
)

// Validator is the registration check an approval must pass.
type Validator interface {
	Validate(ctx context.Context, eventID uint, designerID, boutiqueID *uint) (event.ValidationResult, error)
}

type Service interface {
	ApproveAssignment(ctx context.Context, req AssignmentRequest, actorID uint, ip string) (*domain.RegistrationRecord, error)
	ListPending(ctx context.Context, eventID uint) ([]PendingProduct, error)
	Reject(ctx context.Context, productID uint, reason string, actorID uint, ip string) error
}

type service struct {
	repo      Repository
	validator Validator
	auditSvc  auditlog.Service
	publisher notification.Publisher
	cache     *cache.Cache
}

func NewService(repo Repository, validator Validator, auditSvc auditlog.Service, publisher notification.Publisher, c *cache.Cache) Service {
	return &service{
		repo:      repo,
		validator: validator,
		auditSvc:  auditSvc,
		publisher: publisher,
		cache:     c,
	}
}

// ApproveAssignment checks that the designer and boutique hold a complete
// registration for the event, then records the product under it. The new
// assignment takes the registration's mall.
func (s *service) ApproveAssignment(ctx context.Context, req AssignmentRequest, actorID uint, ip string) (*domain.RegistrationRecord, error) {
	details := map[string]interface{}{
		"designer_id": req.DesignerID,
		"boutique_id": req.BoutiqueID,
		"product_id":  req.ProductID,
	}
	eventID := req.EventID
	fail := func(err error) (*domain.RegistrationRecord, error) {
		details["error"] = err.Error()
		s.audit(ctx, actorID, &eventID, "ASSIGNMENT_APPROVED", details, ip, auditlog.StatusFailure)
		return nil, err
	}

	product, err := s.repo.FindProduct(ctx, req.ProductID)
	if err != nil {
		return fail(err)
	}
	if product.DesignerID != req.DesignerID {
		return fail(ErrDesignerMismatch)
	}
	if product.Status != domain.ProductPending {
		details["status"] = product.Status
		return fail(ErrProductNotPending)
	}

	designerID, boutiqueID := req.DesignerID, req.BoutiqueID
	res, err := s.validator.Validate(ctx, req.EventID, &designerID, &boutiqueID)
	if err != nil {
		return fail(err)
	}
	if !res.IsValid {
		details["reason"] = string(res.Reason)
		return fail(&RuleError{Result: res})
	}

	productID := req.ProductID
	rec := &domain.RegistrationRecord{
		EventID:    req.EventID,
		DesignerID: &designerID,
		BoutiqueID: &boutiqueID,
		MallID:     res.Registration.MallID,
		ProductID:  &productID,
	}
	if err := s.repo.Approve(ctx, rec); err != nil {
		return fail(err)
	}

	details["mall_id"] = *rec.MallID
	s.audit(ctx, actorID, &eventID, "ASSIGNMENT_APPROVED", details, ip, auditlog.StatusSuccess)
	s.changed(ctx, notification.NewMessage(notification.TypeAssignmentApproved, eventID, actorID).
		WithParticipant(&designerID, &boutiqueID).
		WithProduct(productID))
	return rec, nil
}

func (s *service) ListPending(ctx context.Context, eventID uint) ([]PendingProduct, error) {
	if eventID == 0 {
		return nil, ErrMissingEventID
	}
	return s.repo.ListPending(ctx, eventID)
}

// Reject marks a pending product rejected. Rejections are not tied to an
// event, so the message carries event id 0.
func (s *service) Reject(ctx context.Context, productID uint, reason string, actorID uint, ip string) error {
	details := map[string]interface{}{
		"product_id": productID,
		"reason":     reason,
	}

	product, err := s.repo.FindProduct(ctx, productID)
	if err == nil && product.Status != domain.ProductPending {
		err = ErrProductNotPending
	}
	if err == nil {
		err = s.repo.SetStatus(ctx, productID, domain.ProductPending, domain.ProductRejected)
	}
	if err != nil {
		details["error"] = err.Error()
		s.audit(ctx, actorID, nil, "PRODUCT_REJECTED", details, ip, auditlog.StatusFailure)
		return err
	}

	designerID := product.DesignerID
	s.audit(ctx, actorID, nil, "PRODUCT_REJECTED", details, ip, auditlog.StatusSuccess)
	msg := notification.NewMessage(notification.TypeProductRejected, 0, actorID).WithProduct(productID)
	msg.DesignerID = &designerID
	notification.PublishQuietly(ctx, s.publisher, msg)
	return nil
}

func (s *service) audit(ctx context.Context, actorID uint, eventID *uint, action string, details map[string]interface{}, ip, status string) {
	if s.auditSvc == nil {
		return
	}
	if err := s.auditSvc.LogAction(ctx, &actorID, eventID, action, details, ip, status); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("action", action).Msg("audit log write failed")
	}
}

// changed drops cached event pages, whose assignment counts moved, and
// announces the assignment.
func (s *service) changed(ctx context.Context, msg notification.Message) {
	if _, err := s.cache.InvalidateOperation(ctx, event.OpFetchEvents); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("cache invalidation failed")
	}
	notification.PublishQuietly(ctx, s.publisher, msg)
}
