package repo

import (
	"context"

	"github.com/Skotchmaster/teamchat/internal/models"
)

func (r *GormRepo) CreateMessage(ctx context.Context, m *models.Message) error {
	return r.DB.WithContext(ctx).Create(m).Error
}

func (r *GormRepo) Messages(ctx context.Context, channelID uint, offset, limit int) ([]models.Message, error) {
	var msgs []models.Message
	if err := r.DB.WithContext(ctx).
		Where("channel_id = ?", channelID).
		Order("created_at ASC, id ASC").
		Offset(offset).
		Limit(limit).
		Find(&msgs).Error; err != nil {
		return nil, err
	}
	return msgs, nil
}

func (r *GormRepo) CreateDirectMessage(ctx context.Context, m *models.DirectMessage) error {
	return r.DB.WithContext(ctx).Create(m).Error
}

// DirectMessages returns the conversation between a and b inside the team.
func (r *GormRepo) DirectMessages(ctx context.Context, teamID, a, b uint, offset, limit int) ([]models.DirectMessage, error) {
	var msgs []models.DirectMessage
	if err := r.DB.WithContext(ctx).
		Where("team_id = ?", teamID).
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)", a, b, b, a).
		Order("created_at ASC, id ASC").
		Offset(offset).
		Limit(limit).
		Find(&msgs).Error; err != nil {
		return nil, err
	}
	return msgs, nil
}
