package postgres

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"shoptogether/pkg/domain"
	"time"

	"github.com/google/uuid"
)

type PgProduct struct {
	ID          uuid.UUID `db:"id"          goqu:"skipinsert"`
	Name        string    `db:"name"`
	Description string    `db:"description"`
	Category    string    `db:"category"`
	PriceCents  int64     `db:"price_cents"`
	Stock       int       `db:"stock"`
	ImageURL    string    `db:"image_url"`

	CreatedAt time.Time `db:"created_at" goqu:"skipinsert"`
	UpdatedAt time.Time `db:"updated_at" goqu:"skipinsert"`
}

func (p *PgProduct) ToDomain() domain.Product {
	return domain.Product{
		ID:          domain.ProductID(p.ID),
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		PriceCents:  p.PriceCents,
		Stock:       p.Stock,
		ImageURL:    p.ImageURL,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func (p *PgProduct) FromDomain(in domain.Product) {
	*p = PgProduct{
		ID:          uuid.UUID(in.ID),
		Name:        in.Name,
		Description: in.Description,
		Category:    in.Category,
		PriceCents:  in.PriceCents,
		Stock:       in.Stock,
		ImageURL:    in.ImageURL,
	}
}

func pgProductsToDomain(rows []PgProduct) []domain.Product {
	out := make([]domain.Product, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].ToDomain())
	}

	return out
}

type PgUser struct {
	ID           uuid.UUID     `db:"id"               goqu:"skipinsert"`
	Name         string        `db:"name"`
	Email        string        `db:"email"`
	PasswordHash string        `db:"password_hash"`
	FamilyID     uuid.NullUUID `db:"family_id"        goqu:"skipinsert"`
	JoinedAt     sql.NullTime  `db:"family_joined_at" goqu:"skipinsert"`

	CreatedAt time.Time `db:"created_at" goqu:"skipinsert"`
	UpdatedAt time.Time `db:"updated_at" goqu:"skipinsert"`
}

func (p *PgUser) ToDomain() domain.User {
	u := domain.User{
		ID:           domain.UserID(p.ID),
		Name:         p.Name,
		Email:        p.Email,
		PasswordHash: p.PasswordHash,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
	if p.FamilyID.Valid {
		fid := domain.FamilyID(p.FamilyID.UUID)
		u.FamilyID = &fid
	}

	return u
}

func (p *PgUser) FromDomain(in domain.User) {
	*p = PgUser{
		ID:           uuid.UUID(in.ID),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: in.PasswordHash,
	}
}

type PgFamily struct {
	ID      uuid.UUID `db:"id"       goqu:"skipinsert"`
	Name    string    `db:"name"`
	OwnerID uuid.UUID `db:"owner_id"`

	CreatedAt time.Time `db:"created_at" goqu:"skipinsert"`
}

func (p *PgFamily) ToDomain(members []uuid.UUID) domain.Family {
	f := domain.Family{
		ID:        domain.FamilyID(p.ID),
		Name:      p.Name,
		OwnerID:   domain.UserID(p.OwnerID),
		Members:   make([]domain.UserID, 0, len(members)),
		CreatedAt: p.CreatedAt,
	}
	for _, m := range members {
		f.Members = append(f.Members, domain.UserID(m))
	}

	return f
}

type PgOrder struct {
	ID         uuid.UUID       `db:"id"          goqu:"skipinsert"`
	Number     int64           `db:"number"`
	UserID     uuid.UUID       `db:"user_id"`
	FamilyID   uuid.NullUUID   `db:"family_id"`
	Items      json.RawMessage `db:"items"`
	TotalCents int64           `db:"total_cents"`
	Status     string          `db:"status"`

	CreatedAt time.Time `db:"created_at" goqu:"skipinsert"`
	UpdatedAt time.Time `db:"updated_at" goqu:"skipinsert"`
}

func (p *PgOrder) ToDomain() (*domain.Order, error) {
	var items []domain.OrderItem
	if err := json.Unmarshal(p.Items, &items); err != nil {
		return nil, fmt.Errorf("could not unmarshal order items: %w", err)
	}

	o := &domain.Order{
		ID:         domain.OrderID(p.ID),
		Number:     p.Number,
		UserID:     domain.UserID(p.UserID),
		Items:      items,
		TotalCents: p.TotalCents,
		Status:     domain.OrderStatus(p.Status),
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
	if p.FamilyID.Valid {
		fid := domain.FamilyID(p.FamilyID.UUID)
		o.FamilyID = &fid
	}

	return o, nil
}

func (p *PgOrder) FromDomain(in domain.Order) error {
	items := in.Items
	if items == nil {
		items = []domain.OrderItem{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("could not marshal order items: %w", err)
	}

	*p = PgOrder{
		ID:         uuid.UUID(in.ID),
		Number:     in.Number,
		UserID:     uuid.UUID(in.UserID),
		Items:      raw,
		TotalCents: in.TotalCents,
		Status:     string(in.Status),
	}
	if in.FamilyID != nil {
		p.FamilyID = uuid.NullUUID{UUID: uuid.UUID(*in.FamilyID), Valid: true}
	}

	return nil
}

func pgOrdersToDomain(rows []PgOrder) ([]domain.Order, error) {
	out := make([]domain.Order, 0, len(rows))
	for i := range rows {
		o, err := rows[i].ToDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}

	return out, nil
}
