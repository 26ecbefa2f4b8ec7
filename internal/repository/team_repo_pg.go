package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"biliticket/admission/internal/model"
)

type pgTeamRepository struct {
	db *gorm.DB
}

func NewPGTeamRepository(db *gorm.DB) TeamRepository {
	return &pgTeamRepository{db: db}
}

func (r *pgTeamRepository) Create(ctx context.Context, team *model.Team) error {
	team.MemberCount = len(team.Members)
	// Members are inserted explicitly: gorm's association save would turn a
	// membership conflict into a silent ON CONFLICT DO NOTHING.
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(team).Error; err != nil {
			return err
		}
		for i := range team.Members {
			team.Members[i].TeamID = team.ID
			if err := tx.Create(&team.Members[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err == nil {
		return nil
	}
	if pgErr, ok := pgError(err); ok && pgErr.Code == pgUniqueViolation {
		if pgErr.ConstraintName == teamCodeIndex {
			return ErrDuplicateCode
		}
		return ErrDuplicate
	}
	return err
}

func (r *pgTeamRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Team, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *pgTeamRepository) GetByCode(ctx context.Context, code string) (*model.Team, error) {
	return r.first(ctx, "code = ?", code)
}

func (r *pgTeamRepository) GetByMember(ctx context.Context, eventID, email string) (*model.Team, error) {
	var member model.TeamMember
	err := r.db.WithContext(ctx).
		Where("event_id = ? AND email = ?", eventID, email).
		First(&member).Error
	if err != nil {
		return nil, notFound(err)
	}
	return r.GetByID(ctx, member.TeamID)
}

// AddMember bumps member_count with a conditional UPDATE and inserts the
// member row in the same transaction. The UPDATE takes the team row lock, so
// concurrent joiners queue behind it and re-check the count after commit.
func (r *pgTeamRepository) AddMember(ctx context.Context, teamID uuid.UUID, member *model.TeamMember, maxSize int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Team{}).
			Where("id = ? AND member_count < ?", teamID, maxSize).
			Updates(map[string]interface{}{
				"member_count": gorm.Expr("member_count + 1"),
				"updated_at":   member.JoinedAt,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&model.Team{}).Where("id = ?", teamID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return ErrNotFound
			}
			return ErrCapacityReached
		}

		member.TeamID = teamID
		if member.EventID == "" {
			if err := tx.Model(&model.Team{}).Where("id = ?", teamID).Pluck("event_id", &member.EventID).Error; err != nil {
				return err
			}
		}
		if err := tx.Create(member).Error; err != nil {
			switch {
			case isUniqueViolation(err):
				return ErrDuplicate
			case isForeignKeyViolation(err):
				return ErrNotFound
			}
			return err
		}
		return nil
	})
}

func (r *pgTeamRepository) RemoveMember(ctx context.Context, teamID uuid.UUID, email string, at time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("team_id = ? AND email = ?", teamID, email).Delete(&model.TeamMember{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.Model(&model.Team{}).
			Where("id = ?", teamID).
			Updates(map[string]interface{}{
				"member_count": gorm.Expr("member_count - 1"),
				"updated_at":   at,
			}).Error
	})
}

func (r *pgTeamRepository) Delete(ctx context.Context, teamID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("team_id = ?", teamID).Delete(&model.TeamMember{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.Team{}, "id = ?", teamID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (r *pgTeamRepository) first(ctx context.Context, query string, args ...interface{}) (*model.Team, error) {
	var team model.Team
	err := r.db.WithContext(ctx).
		Preload("Members", func(db *gorm.DB) *gorm.DB {
			return db.Order("joined_at ASC, id ASC")
		}).
		Where(query, args...).
		First(&team).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &team, nil
}
