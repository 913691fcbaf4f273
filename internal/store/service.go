package store

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"

	"github.com/morpheus-mall/mall-backend/internal/auth"
	"github.com/morpheus-mall/mall-backend/internal/cache"
	"github.com/morpheus-mall/mall-backend/internal/domain"
	"github.com/morpheus-mall/mall-backend/internal/tracing"
)

// Cache operation names, also used by the invalidation consumer.
const (
	OpListStores = "list_stores"
	OpListMalls  = "list_malls"
)

// DesignerResolver maps a login account to its designer profile.
type DesignerResolver interface {
	ResolveAccount(ctx context.Context, accountID uint) (*domain.Designer, error)
}

type Service interface {
	ListStores(ctx context.Context, q StoreQuery) ([]Store, error)
	ListMalls(ctx context.Context) ([]domain.Mall, error)
}

type service struct {
	repo      Repository
	designers DesignerResolver
	cache     *cache.Cache
}

func NewService(repo Repository, designers DesignerResolver, c *cache.Cache) Service {
	return &service{repo: repo, designers: designers, cache: c}
}

// ListStores returns the boutiques visible to the caller's role. Unknown roles
// and unresolvable store admins get an empty list, never an error.
func (s *service) ListStores(ctx context.Context, q StoreQuery) ([]Store, error) {
	ctx, span := tracing.Tracer().Start(ctx, "store.ListStores")
	defer span.End()
	span.SetAttributes(attribute.String("role", q.Role))

	switch q.Role {
	case auth.RoleAdmin, auth.RoleStoreAdmin:
	default:
		return []Store{}, nil
	}

	return cache.Remember(ctx, s.cache, OpListStores, q, func(ctx context.Context) ([]Store, error) {
		if q.Role == auth.RoleAdmin {
			return s.listForAdmin(ctx, q)
		}
		return s.listForStoreAdmin(ctx, q)
	})
}

func (s *service) listForAdmin(ctx context.Context, q StoreQuery) ([]Store, error) {
	boutiques, err := s.repo.ListBoutiques(ctx, q.MallID)
	if err != nil {
		return nil, fmt.Errorf("list boutiques: %w", err)
	}

	var records []domain.RegistrationRecord
	if q.EventID != nil {
		records, err = s.repo.EventRecords(ctx, *q.EventID)
		if err != nil {
			return nil, fmt.Errorf("load registrations of event %d: %w", *q.EventID, err)
		}
	}

	stores := make([]Store, 0, len(boutiques))
	for _, b := range boutiques {
		st := fromBoutique(b)
		if reg, ok := domain.FindCompleteRegistration(records, b.ID); ok {
			st.annotate(reg.Designer)
		}
		stores = append(stores, st)
	}
	return stores, nil
}

func (s *service) listForStoreAdmin(ctx context.Context, q StoreQuery) ([]Store, error) {
	logger := zerolog.Ctx(ctx)
	if q.EventID == nil {
		logger.Debug().Uint("user_id", q.UserID).Msg("store listing without event for store admin")
		return []Store{}, nil
	}

	d, err := s.designers.ResolveAccount(ctx, q.UserID)
	if err != nil {
		logger.Warn().Err(err).Uint("user_id", q.UserID).Msg("could not resolve designer for account")
		return []Store{}, nil
	}

	ids, err := s.repo.DesignerBoutiqueIDs(ctx, *q.EventID, d.ID)
	if err != nil {
		return nil, fmt.Errorf("load boutiques of designer %d: %w", d.ID, err)
	}
	boutiques, err := s.repo.ListBoutiquesByIDs(ctx, ids, q.MallID)
	if err != nil {
		return nil, fmt.Errorf("list boutiques: %w", err)
	}

	stores := make([]Store, 0, len(boutiques))
	for _, b := range boutiques {
		st := fromBoutique(b)
		st.annotate(d)
		stores = append(stores, st)
	}
	return stores, nil
}

func (s *service) ListMalls(ctx context.Context) ([]domain.Mall, error) {
	return cache.Remember(ctx, s.cache, OpListMalls, struct{}{}, func(ctx context.Context) ([]domain.Mall, error) {
		malls, err := s.repo.ListMalls(ctx)
		if err != nil {
			return nil, fmt.Errorf("list malls: %w", err)
		}
		return malls, nil
	})
}
