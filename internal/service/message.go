package service

import (
	"context"
	"strings"

	"github.com/Skotchmaster/teamchat/internal/logging"
	"github.com/Skotchmaster/teamchat/internal/models"
	"github.com/Skotchmaster/teamchat/internal/mykafka"
	"github.com/Skotchmaster/teamchat/internal/repo"
	"github.com/Skotchmaster/teamchat/internal/util"
)

const maxMessageLength = 4000

type MessageIndexer interface {
	IndexMessage(ctx context.Context, msg models.Message) error
	SearchMessages(ctx context.Context, channelID uint, query string, from, size int) (int64, []models.Message, error)
}

type MessageNotifier interface {
	NotifyMessage(ctx context.Context, msg models.Message)
}

type MessageService struct {
	Repo   *repo.GormRepo
	Events EventPublisher

	// Index and Notifier are optional.
	Index    MessageIndexer
	Notifier MessageNotifier
}

type SearchResult struct {
	Total    int64
	Messages []models.Message
}

func checkText(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", validationError("message text is required")
	}
	if len(text) > maxMessageLength {
		return "", validationError("message is too long")
	}
	return text, nil
}

func (s *MessageService) Messages(ctx context.Context, channelID uint, page, size int) ([]models.Message, error) {
	from, limit := util.Calculate(page, size)
	return s.Repo.Messages(ctx, channelID, from, limit)
}

// CreateMessage stores the message, then indexes, broadcasts and publishes
// it. Only the store write can fail the call.
func (s *MessageService) CreateMessage(ctx context.Context, userID, channelID uint, text string) (*models.Message, error) {
	l := logging.FromContext(ctx).With("svc", "message.create", "channel_id", channelID, "user_id", userID)

	text, err := checkText(text)
	if err != nil {
		return nil, err
	}

	msg := &models.Message{Text: text, UserID: userID, ChannelID: channelID}
	if err := s.Repo.CreateMessage(ctx, msg); err != nil {
		l.Error("create_message_failed", "status", 500, "error", err)
		return nil, err
	}

	if s.Index != nil {
		if err := s.Index.IndexMessage(ctx, *msg); err != nil {
			l.Warn("index_message_failed", "message_id", msg.ID, "error", err)
		}
	}
	if s.Notifier != nil {
		s.Notifier.NotifyMessage(ctx, *msg)
	}
	publish(ctx, s.Events, mykafka.TopicMessageEvents, channelID, "message_created", map[string]any{
		"message_id": msg.ID,
		"channel_id": channelID,
		"user_id":    userID,
	})
	return msg, nil
}

func (s *MessageService) DirectMessages(ctx context.Context, teamID, me, other uint, page, size int) ([]models.DirectMessage, error) {
	from, limit := util.Calculate(page, size)
	return s.Repo.DirectMessages(ctx, teamID, me, other, from, limit)
}

func (s *MessageService) CreateDirectMessage(ctx context.Context, senderID, receiverID, teamID uint, text string) (*models.DirectMessage, error) {
	l := logging.FromContext(ctx).With("svc", "message.create_direct", "team_id", teamID, "user_id", senderID)

	text, err := checkText(text)
	if err != nil {
		return nil, err
	}

	dm := &models.DirectMessage{Text: text, SenderID: senderID, ReceiverID: receiverID, TeamID: teamID}
	if err := s.Repo.CreateDirectMessage(ctx, dm); err != nil {
		l.Error("create_direct_message_failed", "status", 500, "error", err)
		return nil, err
	}

	publish(ctx, s.Events, mykafka.TopicMessageEvents, teamID, "direct_message_created", map[string]any{
		"message_id":  dm.ID,
		"team_id":     teamID,
		"sender_id":   senderID,
		"receiver_id": receiverID,
	})
	return dm, nil
}

func (s *MessageService) Search(ctx context.Context, channelID uint, query string, page, size int) (SearchResult, error) {
	if s.Index == nil {
		return SearchResult{}, ErrSearchDisabled
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return SearchResult{Messages: []models.Message{}}, nil
	}

	from, limit := util.Calculate(page, size)
	total, msgs, err := s.Index.SearchMessages(ctx, channelID, query, from, limit)
	if err != nil {
		logging.FromContext(ctx).Error("search_messages_failed", "channel_id", channelID, "error", err)
		return SearchResult{}, err
	}
	return SearchResult{Total: total, Messages: msgs}, nil
}
