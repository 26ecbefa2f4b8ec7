package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"biliticket/admission/internal/model"
)

type pgBookingRepository struct {
	db *gorm.DB
}

func NewPGBookingRepository(db *gorm.DB) BookingRepository {
	return &pgBookingRepository{db: db}
}

func (r *pgBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	if err := r.db.WithContext(ctx).Create(booking).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *pgBookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	var booking model.Booking
	if err := r.db.WithContext(ctx).First(&booking, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &booking, nil
}

func (r *pgBookingRepository) FindActive(ctx context.Context, eventID, email string) (*model.Booking, error) {
	var booking model.Booking
	err := r.db.WithContext(ctx).
		Where("event_id = ? AND user_email = ? AND status <> ?", eventID, email, model.BookingStatusCancelled).
		First(&booking).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &booking, nil
}

func (r *pgBookingRepository) CancelActive(ctx context.Context, eventID, email string, at time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&model.Booking{}).
		Where("event_id = ? AND user_email = ? AND status <> ?", eventID, email, model.BookingStatusCancelled).
		Updates(map[string]interface{}{
			"status":     model.BookingStatusCancelled,
			"updated_at": at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
