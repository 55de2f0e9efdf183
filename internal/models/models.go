package models

import "time"

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UUID         string    `gorm:"uniqueIndex;not null"     json:"uuid"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	PhoneNumber  string    `json:"phone_number"`
	Username     string    `gorm:"uniqueIndex;not null"     json:"username"`
	Email        string    `gorm:"uniqueIndex;not null"     json:"email"`
	PasswordHash string    `gorm:"column:password;not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Team struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"                json:"id"`
	UUID      string    `gorm:"uniqueIndex;not null"                    json:"uuid"`
	Name      string    `gorm:"not null;uniqueIndex:idx_team_name_owner" json:"name"`
	Owner     uint      `gorm:"not null;uniqueIndex:idx_team_name_owner" json:"owner"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Channel.Public has no gorm default so an explicit false survives Create.
type Channel struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UUID      string    `gorm:"uniqueIndex;not null"     json:"uuid"`
	Name      string    `gorm:"not null"                 json:"name"`
	Public    bool      `gorm:"not null"                 json:"public"`
	TeamID    uint      `gorm:"index;not null"           json:"team_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ChannelMember struct {
	ChannelID uint      `gorm:"primaryKey" json:"channel_id"`
	UserID    uint      `gorm:"primaryKey" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

type Member struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"                  json:"id"`
	TeamID    uint      `gorm:"not null;uniqueIndex:idx_member_team_user" json:"team_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_member_team_user" json:"user_id"`
	Admin     bool      `gorm:"not null"                                  json:"admin"`
	CreatedAt time.Time `json:"created_at"`
}

type Message struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Text      string    `gorm:"not null"                 json:"text"`
	UserID    uint      `gorm:"index;not null"           json:"user_id"`
	ChannelID uint      `gorm:"index;not null"           json:"channel_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type DirectMessage struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Text       string    `gorm:"not null"                 json:"text"`
	SenderID   uint      `gorm:"index;not null"           json:"sender_id"`
	ReceiverID uint      `gorm:"index;not null"           json:"receiver_id"`
	TeamID     uint      `gorm:"index;not null"           json:"team_id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// All lists every model for AutoMigrate.
func All() []any {
	return []any{
		&User{},
		&Team{},
		&Channel{},
		&ChannelMember{},
		&Member{},
		&Message{},
		&DirectMessage{},
	}
}
