package store

import "github.com/morpheus-mall/mall-backend/internal/domain"

// Store is a boutique as shown in the store listing. DesignerName and
// DesignerContact are only set when a complete registration for the requested
// event links a designer to the boutique.
type Store struct {
	ID              uint    `json:"id"`
	Name            string  `json:"name"`
	Address         string  `json:"address"`
	MallID          *uint   `json:"mall_id"`
	MallName        string  `json:"mall_name,omitempty"`
	DesignerID      *uint   `json:"designer_id,omitempty"`
	DesignerName    *string `json:"designer_name,omitempty"`
	DesignerContact *string `json:"designer_contact,omitempty"`
}

// StoreQuery selects the stores visible to a caller.
type StoreQuery struct {
	EventID *uint  `json:"event_id"`
	MallID  *uint  `json:"mall_id"`
	Role    string `json:"role"`
	UserID  uint   `json:"user_id"`
}

func fromBoutique(b domain.Boutique) Store {
	s := Store{
		ID:      b.ID,
		Name:    b.Name,
		Address: b.Address,
		MallID:  b.MallID,
	}
	if b.Mall != nil {
		s.MallName = b.Mall.Name
	}
	return s
}

func (s *Store) annotate(d *domain.Designer) {
	if d == nil {
		return
	}
	id, name, contact := d.ID, d.Name, d.Contact()
	s.DesignerID = &id
	s.DesignerName = &name
	if contact != "" {
		s.DesignerContact = &contact
	}
}
