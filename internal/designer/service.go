package designer

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/morpheus-mall/mall-backend/internal/domain"
)

var (
	ErrDesignerNotFound = errors.New("designer not found")
	ErrPaletteTooLarge  = fmt.Errorf("palette holds at most %d colors", domain.MaxPaletteColors)
	ErrInvalidColor     = errors.New("invalid palette color")
)

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

type Service interface {
	GetDesigner(ctx context.Context, id uint) (*domain.Designer, error)
	// ResolveAccount maps a login account to its designer.
	ResolveAccount(ctx context.Context, accountID uint) (*domain.Designer, error)
	ListDesigners(ctx context.Context, search string, page, limit int) ([]domain.Designer, int64, error)
	UpdatePalette(ctx context.Context, accountID uint, palette []domain.PaletteColor) (*domain.Designer, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) GetDesigner(ctx context.Context, id uint) (*domain.Designer, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) ResolveAccount(ctx context.Context, accountID uint) (*domain.Designer, error) {
	if accountID == 0 {
		return nil, ErrDesignerNotFound
	}
	return s.repo.FindByAccountID(ctx, accountID)
}

func (s *service) ListDesigners(ctx context.Context, search string, page, limit int) ([]domain.Designer, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.repo.List(ctx, strings.TrimSpace(search), limit, (page-1)*limit)
}

// UpdatePalette replaces the palette of the caller's own designer profile.
func (s *service) UpdatePalette(ctx context.Context, accountID uint, palette []domain.PaletteColor) (*domain.Designer, error) {
	normalized, err := NormalizePalette(palette)
	if err != nil {
		return nil, err
	}

	d, err := s.ResolveAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdatePalette(ctx, d.ID, normalized); err != nil {
		return nil, fmt.Errorf("update palette of designer %d: %w", d.ID, err)
	}
	d.Palette = normalized
	return d, nil
}

// NormalizePalette checks the color count and hex codes and fills in the rgb
// triple from the hex code.
func NormalizePalette(palette []domain.PaletteColor) ([]domain.PaletteColor, error) {
	if len(palette) > domain.MaxPaletteColors {
		return nil, ErrPaletteTooLarge
	}

	out := make([]domain.PaletteColor, 0, len(palette))
	for _, c := range palette {
		name := strings.TrimSpace(c.Name)
		if name == "" || !hexColor.MatchString(c.Hex) {
			return nil, fmt.Errorf("%w: %q %q", ErrInvalidColor, c.Name, c.Hex)
		}
		hex := strings.ToUpper(c.Hex)
		v, _ := strconv.ParseUint(hex[1:], 16, 32)
		out = append(out, domain.PaletteColor{
			Name: name,
			Hex:  hex,
			RGB:  fmt.Sprintf("rgb(%d, %d, %d)", v>>16&0xFF, v>>8&0xFF, v&0xFF),
		})
	}
	return out, nil
}
