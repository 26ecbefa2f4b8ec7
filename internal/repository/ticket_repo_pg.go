package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"biliticket/admission/internal/model"
)

type pgTicketRepository struct {
	db *gorm.DB
}

func NewPGTicketRepository(db *gorm.DB) TicketRepository {
	return &pgTicketRepository{db: db}
}

func (r *pgTicketRepository) CreateIfAbsent(ctx context.Context, ticket *model.Ticket) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "booking_id"}},
			DoNothing: true,
		}).
		Create(ticket)
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			return false, ErrDuplicate
		}
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *pgTicketRepository) GetByBookingID(ctx context.Context, bookingID uuid.UUID) (*model.Ticket, error) {
	var ticket model.Ticket
	if err := r.db.WithContext(ctx).First(&ticket, "booking_id = ?", bookingID).Error; err != nil {
		return nil, notFound(err)
	}
	return &ticket, nil
}

func (r *pgTicketRepository) GetByToken(ctx context.Context, token string) (*model.Ticket, error) {
	var ticket model.Ticket
	if err := r.db.WithContext(ctx).First(&ticket, "token = ?", token).Error; err != nil {
		return nil, notFound(err)
	}
	return &ticket, nil
}

func (r *pgTicketRepository) MarkScanned(ctx context.Context, token string, at time.Time, operator string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Ticket{}).
		Where("token = ? AND scanned_at IS NULL", token).
		Updates(map[string]interface{}{
			"scanned_at": at,
			"scanned_by": operator,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
