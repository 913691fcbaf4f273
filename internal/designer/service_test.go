package designer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/morpheus-mall/mall-backend/internal/domain"
)

type memRepo struct {
	designers map[uint]*domain.Designer
}

func (m *memRepo) FindByID(_ context.Context, id uint) (*domain.Designer, error) {
	d, ok := m.designers[id]
	if !ok {
		return nil, ErrDesignerNotFound
	}
	cp := *d
	return &cp, nil
}

func (m *memRepo) FindByAccountID(_ context.Context, accountID uint) (*domain.Designer, error) {
	for _, d := range m.designers {
		if d.AccountID == accountID {
			cp := *d
			return &cp, nil
		}
	}
	return nil, ErrDesignerNotFound
}

func (m *memRepo) List(_ context.Context, _ string, limit, offset int) ([]domain.Designer, int64, error) {
	var out []domain.Designer
	for _, d := range m.designers {
		out = append(out, *d)
	}
	return out, int64(len(out)), nil
}

func (m *memRepo) UpdatePalette(_ context.Context, id uint, palette []domain.PaletteColor) error {
	d, ok := m.designers[id]
	if !ok {
		return ErrDesignerNotFound
	}
	d.Palette = palette
	return nil
}

func newRepo() *memRepo {
	return &memRepo{designers: map[uint]*domain.Designer{
		10: {ID: 10, AccountID: 100, Name: "Iris Vale", Brand: "Vale", Email: "iris@vale.studio"},
	}}
}

func TestNormalizePalette(t *testing.T) {
	tests := []struct {
		name    string
		in      []domain.PaletteColor
		wantErr error
		wantRGB []string
	}{
		{
			name:    "fills rgb",
			in:      []domain.PaletteColor{{Name: "Ink", Hex: "#1a2b3c"}, {Name: "Sand", Hex: "#FFFFFF"}},
			wantRGB: []string{"rgb(26, 43, 60)", "rgb(255, 255, 255)"},
		},
		{name: "empty palette", in: nil, wantRGB: []string{}},
		{
			name: "too many colors",
			in: []domain.PaletteColor{
				{Name: "a", Hex: "#000000"}, {Name: "b", Hex: "#000000"},
				{Name: "c", Hex: "#000000"}, {Name: "d", Hex: "#000000"},
			},
			wantErr: ErrPaletteTooLarge,
		},
		{name: "bad hex", in: []domain.PaletteColor{{Name: "Ink", Hex: "1a2b3c"}}, wantErr: ErrInvalidColor},
		{name: "missing name", in: []domain.PaletteColor{{Hex: "#1a2b3c"}}, wantErr: ErrInvalidColor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizePalette(tt.in)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			rgb := make([]string, 0, len(got))
			for _, c := range got {
				rgb = append(rgb, c.RGB)
			}
			assert.Equal(t, tt.wantRGB, rgb)
		})
	}
}

func TestUpdatePalette(t *testing.T) {
	repo := newRepo()
	svc := NewService(repo)

	d, err := svc.UpdatePalette(context.Background(), 100, []domain.PaletteColor{{Name: "Ink", Hex: "#1a2b3c"}})
	require.NoError(t, err)
	assert.Equal(t, "#1A2B3C", d.Palette[0].Hex)
	assert.Len(t, repo.designers[10].Palette, 1)

	_, err = svc.UpdatePalette(context.Background(), 555, nil)
	assert.ErrorIs(t, err, ErrDesignerNotFound)
}

func TestResolveAccount(t *testing.T) {
	svc := NewService(newRepo())

	d, err := svc.ResolveAccount(context.Background(), 100)
	require.NoError(t, err)
	assert.Equal(t, uint(10), d.ID)

	_, err = svc.ResolveAccount(context.Background(), 0)
	assert.ErrorIs(t, err, ErrDesignerNotFound)
}

func TestHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewHandler(NewService(newRepo()))

	withUser := func(id uint) gin.HandlerFunc {
		return func(c *gin.Context) { c.Set("user_id", id) }
	}

	t.Run("me", func(t *testing.T) {
		r := gin.New()
		r.GET("/designers/me", withUser(100), h.GetMe)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/designers/me", nil))
		require.Equal(t, http.StatusOK, w.Code)
		var d domain.Designer
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &d))
		assert.Equal(t, "Iris Vale", d.Name)
	})

	t.Run("me without designer profile", func(t *testing.T) {
		r := gin.New()
		r.GET("/designers/me", withUser(7), h.GetMe)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/designers/me", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("palette too large", func(t *testing.T) {
		r := gin.New()
		r.PUT("/designers/me/palette", withUser(100), h.UpdateMyPalette)
		body := `{"colors":[{"name":"a","hex":"#000000"},{"name":"b","hex":"#000000"},{"name":"c","hex":"#000000"},{"name":"d","hex":"#000000"}]}`
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/designers/me/palette", strings.NewReader(body)))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("bad id", func(t *testing.T) {
		r := gin.New()
		r.GET("/designers/:id", h.GetDesigner)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/designers/abc", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
