package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/teamchat/internal/models"
)

const DefaultChannelName = "general"

func (r *GormRepo) TeamExists(ctx context.Context, name string, owner uint) (bool, error) {
	var count int64
	if err := r.DB.WithContext(ctx).Model(&models.Team{}).
		Where("name = ? AND owner = ?", name, owner).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ProvisionTeam creates the team, its public default channel and the
// owner's admin membership in one transaction.
func (r *GormRepo) ProvisionTeam(ctx context.Context, owner uint, name string) (*models.Team, *models.Channel, error) {
	team := models.Team{UUID: uuid.NewString(), Name: name, Owner: owner}
	channel := models.Channel{UUID: uuid.NewString(), Name: DefaultChannelName, Public: true}

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&team).Error; err != nil {
			return err
		}

		channel.TeamID = team.ID
		if err := tx.Create(&channel).Error; err != nil {
			return err
		}

		return tx.Create(&models.Member{TeamID: team.ID, UserID: owner, Admin: true}).Error
	})
	if err != nil {
		return nil, nil, mapErr(err)
	}
	return &team, &channel, nil
}

func (r *GormRepo) TeamByID(ctx context.Context, id uint) (*models.Team, error) {
	var team models.Team
	if err := r.DB.WithContext(ctx).First(&team, id).Error; err != nil {
		return nil, mapErr(err)
	}
	return &team, nil
}

const teamsForUserSQL = `
SELECT t.*
FROM teams AS t
JOIN members AS m ON m.team_id = t.id
WHERE m.user_id = ?
ORDER BY m.created_at ASC, m.id ASC
`

// TeamsForUser lists the user's teams in the order they were joined.
func (r *GormRepo) TeamsForUser(ctx context.Context, userID uint) ([]models.Team, error) {
	var teams []models.Team
	if err := r.DB.WithContext(ctx).Raw(teamsForUserSQL, userID).Scan(&teams).Error; err != nil {
		return nil, err
	}
	return teams, nil
}

// FirstTeamForUser returns the team of the user's earliest membership, or
// ErrNotFound when the user belongs to no team.
func (r *GormRepo) FirstTeamForUser(ctx context.Context, userID uint) (*models.Team, error) {
	var teams []models.Team
	if err := r.DB.WithContext(ctx).Raw(teamsForUserSQL+"LIMIT 1", userID).Scan(&teams).Error; err != nil {
		return nil, err
	}
	if len(teams) == 0 {
		return nil, ErrNotFound
	}
	return &teams[0], nil
}

func (r *GormRepo) Member(ctx context.Context, teamID, userID uint) (*models.Member, error) {
	var m models.Member
	if err := r.DB.WithContext(ctx).
		Where("team_id = ? AND user_id = ?", teamID, userID).
		First(&m).Error; err != nil {
		return nil, mapErr(err)
	}
	return &m, nil
}

func (r *GormRepo) CountTeamMembers(ctx context.Context, teamID uint, userIDs []uint) (int64, error) {
	if len(userIDs) == 0 {
		return 0, nil
	}
	var count int64
	if err := r.DB.WithContext(ctx).Model(&models.Member{}).
		Where("team_id = ? AND user_id IN ?", teamID, userIDs).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormRepo) IsTeamMember(ctx context.Context, teamID, userID uint) (bool, error) {
	n, err := r.CountTeamMembers(ctx, teamID, []uint{userID})
	return n > 0, err
}

func (r *GormRepo) AddMember(ctx context.Context, teamID, userID uint, admin bool) error {
	return mapErr(r.DB.WithContext(ctx).Create(&models.Member{TeamID: teamID, UserID: userID, Admin: admin}).Error)
}

const teamMembersSQL = `
SELECT u.*
FROM users AS u
JOIN members AS m ON m.user_id = u.id
WHERE m.team_id = ?
ORDER BY m.created_at ASC, m.id ASC
`

func (r *GormRepo) TeamMembers(ctx context.Context, teamID uint) ([]models.User, error) {
	var users []models.User
	if err := r.DB.WithContext(ctx).Raw(teamMembersSQL, teamID).Scan(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

const directMessagePartnersSQL = `
SELECT DISTINCT u.id, u.uuid, u.username, u.email, u.first_name, u.last_name, u.phone_number
FROM users AS u
JOIN direct_messages AS dm ON u.id = dm.sender_id OR u.id = dm.receiver_id
WHERE dm.team_id = ? AND (dm.sender_id = ? OR dm.receiver_id = ?) AND u.id <> ?
ORDER BY u.username
`

// DirectMessagePartners lists the users userID has exchanged direct
// messages with inside the team.
func (r *GormRepo) DirectMessagePartners(ctx context.Context, teamID, userID uint) ([]models.User, error) {
	var users []models.User
	if err := r.DB.WithContext(ctx).
		Raw(directMessagePartnersSQL, teamID, userID, userID, userID).
		Scan(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}
