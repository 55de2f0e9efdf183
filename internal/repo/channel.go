package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/teamchat/internal/models"
)

func (r *GormRepo) ChannelByID(ctx context.Context, id uint) (*models.Channel, error) {
	var ch models.Channel
	if err := r.DB.WithContext(ctx).First(&ch, id).Error; err != nil {
		return nil, mapErr(err)
	}
	return &ch, nil
}

func (r *GormRepo) ChannelByName(ctx context.Context, teamID uint, name string) (*models.Channel, error) {
	var ch models.Channel
	if err := r.DB.WithContext(ctx).
		Where("team_id = ? AND name = ?", teamID, name).
		Order("id ASC").
		First(&ch).Error; err != nil {
		return nil, mapErr(err)
	}
	return &ch, nil
}

func (r *GormRepo) ChannelTeamID(ctx context.Context, channelID uint) (uint, error) {
	ch, err := r.ChannelByID(ctx, channelID)
	if err != nil {
		return 0, err
	}
	return ch.TeamID, nil
}

// CreateChannel inserts the channel and, for private channels, its member
// rows in one transaction.
func (r *GormRepo) CreateChannel(ctx context.Context, ch *models.Channel, memberIDs []uint) error {
	if ch.UUID == "" {
		ch.UUID = uuid.NewString()
	}
	return mapErr(r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(ch).Error; err != nil {
			return err
		}
		if len(memberIDs) == 0 {
			return nil
		}
		rows := make([]models.ChannelMember, 0, len(memberIDs))
		for _, id := range memberIDs {
			rows = append(rows, models.ChannelMember{ChannelID: ch.ID, UserID: id})
		}
		return tx.Create(&rows).Error
	}))
}

// VisibleChannels returns the team's public channels plus the private ones
// userID belongs to.
func (r *GormRepo) VisibleChannels(ctx context.Context, teamID, userID uint) ([]models.Channel, error) {
	db := r.DB.WithContext(ctx)
	var channels []models.Channel
	err := db.
		Where("team_id = ?", teamID).
		Where("public = ? OR id IN (?)", true, channelsOf(db, userID)).
		Order("id ASC").
		Find(&channels).Error
	if err != nil {
		return nil, err
	}
	return channels, nil
}

func channelsOf(db *gorm.DB, userID uint) *gorm.DB {
	return db.Model(&models.ChannelMember{}).Select("channel_id").Where("user_id = ?", userID)
}

// CanReadChannel reports whether the channel is public or userID is one of
// its members. An unknown channel reports false.
func (r *GormRepo) CanReadChannel(ctx context.Context, channelID, userID uint) (bool, error) {
	db := r.DB.WithContext(ctx)
	var count int64
	err := db.Model(&models.Channel{}).
		Where("id = ?", channelID).
		Where("public = ? OR id IN (?)", true, channelsOf(db, userID)).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
