package support

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrTicketNotFound = errors.New("support ticket not found")

type Repository interface {
	Create(ctx context.Context, ticket *SupportTicket) error
	GetByID(ctx context.Context, id uuid.UUID) (*SupportTicket, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]SupportTicket, error)
	ListByStatus(ctx context.Context, status TicketStatus) ([]SupportTicket, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, ticket *SupportTicket) error {
	return r.db.WithContext(ctx).Create(ticket).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*SupportTicket, error) {
	var ticket SupportTicket
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&ticket).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTicketNotFound
		}
		return nil, err
	}
	return &ticket, nil
}

func (r *repository) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]SupportTicket, error) {
	var tickets []SupportTicket
	err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Find(&tickets).Error
	return tickets, err
}

func (r *repository) ListByStatus(ctx context.Context, status TicketStatus) ([]SupportTicket, error) {
	var tickets []SupportTicket
	db := r.db.WithContext(ctx)
	if status != "" {
		db = db.Where("status = ?", status)
	}
	err := db.Order("created_at ASC").Find(&tickets).Error
	return tickets, err
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	result := r.db.WithContext(ctx).Model(&SupportTicket{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTicketNotFound
	}
	return nil
}
