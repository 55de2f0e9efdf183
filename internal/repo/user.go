package repo

import (
	"context"

	"github.com/Skotchmaster/teamchat/internal/models"
)

type ProfileUpdate struct {
	Username    string
	FirstName   string
	LastName    string
	PhoneNumber string
}

func (r *GormRepo) CreateUser(ctx context.Context, u *models.User) error {
	return mapErr(r.DB.WithContext(ctx).Create(u).Error)
}

func (r *GormRepo) userBy(ctx context.Context, column string, value any) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where(column+" = ?", value).First(&user).Error; err != nil {
		return nil, mapErr(err)
	}
	return &user, nil
}

func (r *GormRepo) UserByID(ctx context.Context, id uint) (*models.User, error) {
	return r.userBy(ctx, "id", id)
}

func (r *GormRepo) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.userBy(ctx, "email", email)
}

func (r *GormRepo) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.userBy(ctx, "username", username)
}

func (r *GormRepo) Users(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.DB.WithContext(ctx).Order("id ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// UsersByIDs returns the users keyed by id; missing ids are absent.
func (r *GormRepo) UsersByIDs(ctx context.Context, ids []uint) (map[uint]models.User, error) {
	out := make(map[uint]models.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var users []models.User
	if err := r.DB.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	for _, u := range users {
		out[u.ID] = u
	}
	return out, nil
}

func (r *GormRepo) userFieldTaken(ctx context.Context, column, value string, exceptID uint) (bool, error) {
	var count int64
	q := r.DB.WithContext(ctx).Model(&models.User{}).Where(column+" = ?", value)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormRepo) UsernameTaken(ctx context.Context, username string, exceptID uint) (bool, error) {
	return r.userFieldTaken(ctx, "username", username, exceptID)
}

func (r *GormRepo) EmailTaken(ctx context.Context, email string) (bool, error) {
	return r.userFieldTaken(ctx, "email", email, 0)
}

// UpdateProfile writes every field, including empty strings.
func (r *GormRepo) UpdateProfile(ctx context.Context, id uint, p ProfileUpdate) error {
	res := r.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(map[string]any{
		"username":     p.Username,
		"first_name":   p.FirstName,
		"last_name":    p.LastName,
		"phone_number": p.PhoneNumber,
	})
	if res.Error != nil {
		return mapErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormRepo) UpdatePasswordHash(ctx context.Context, id uint, passwordHash string) error {
	res := r.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("password", passwordHash)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
