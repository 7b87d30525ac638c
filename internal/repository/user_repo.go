package repository

import (
	"Trendspotter/internal/model"
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepo interface {
	GetUser(ctx context.Context, id uint64) (*model.User, error)
	GetOrCreateUser(ctx context.Context, id uint64) (*model.User, error)
	GetUserForUpdate(ctx context.Context, id uint64) (*model.User, error)
	GetUsersByIDs(ctx context.Context, ids []uint64) ([]*model.User, error)
	GetTopUsers(ctx context.Context, limit int) ([]*model.User, error)

	CompareAndSwapPoints(ctx context.Context, id, version uint64, points int) (bool, error)
	CompareAndSwapStreak(ctx context.Context, id, version uint64, streak int, date string) (bool, error)
	IncrCounters(ctx context.Context, id uint64, deltas map[string]int) error
	RecordDecidedVotes(ctx context.Context, ids []uint64, correct bool) error
}

// counterColumns 允许通过 IncrCounters 自增的列
var counterColumns = map[string]struct{}{
	"trends_spotted":    {},
	"validated_trends":  {},
	"validations_count": {},
	"referrals_count":   {},
}

var ErrUnknownCounter = errors.New("unknown counter column")

type userRepoImpl struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) UserRepo {
	return &userRepoImpl{db: db}
}

func (s *userRepoImpl) GetUser(ctx context.Context, id uint64) (*model.User, error) {
	var user model.User
	err := conn(ctx, s.db).Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// GetOrCreateUser 首次产生声望行为时创建聚合行
func (s *userRepoImpl) GetOrCreateUser(ctx context.Context, id uint64) (*model.User, error) {
	db := conn(ctx, s.db)
	err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&model.User{ID: id}).Error
	if err != nil {
		return nil, err
	}
	var user model.User
	if err = db.Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserForUpdate 当前读，事务内配合 CAS 使用
func (s *userRepoImpl) GetUserForUpdate(ctx context.Context, id uint64) (*model.User, error) {
	var user model.User
	err := conn(ctx, s.db).Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (s *userRepoImpl) GetUsersByIDs(ctx context.Context, ids []uint64) ([]*model.User, error) {
	users := make([]*model.User, 0, len(ids))
	if len(ids) == 0 {
		return users, nil
	}
	result := conn(ctx, s.db).Where("id IN ?", ids).Find(&users)
	if result.Error != nil {
		return nil, result.Error
	}
	return users, nil
}

func (s *userRepoImpl) GetTopUsers(ctx context.Context, limit int) ([]*model.User, error) {
	users := make([]*model.User, 0, limit)
	result := conn(ctx, s.db).
		Where("points > 0").
		Order("points DESC").
		Order("id ASC").
		Limit(limit).
		Find(&users)
	if result.Error != nil {
		return nil, result.Error
	}
	return users, nil
}

// CompareAndSwapPoints 版本号一致时才写入新的积分总数
func (s *userRepoImpl) CompareAndSwapPoints(ctx context.Context, id, version uint64, points int) (bool, error) {
	result := conn(ctx, s.db).Model(&model.User{}).
		Where("id = ? AND version = ?", id, version).
		Updates(map[string]interface{}{
			"points":  points,
			"version": gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// CompareAndSwapStreak 版本号一致时才写入连续天数与最近活跃日
func (s *userRepoImpl) CompareAndSwapStreak(ctx context.Context, id, version uint64, streak int, date string) (bool, error) {
	result := conn(ctx, s.db).Model(&model.User{}).
		Where("id = ? AND version = ?", id, version).
		Updates(map[string]interface{}{
			"streak_days":        streak,
			"last_activity_date": date,
			"version":            gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// IncrCounters 服务端原子自增计数列
func (s *userRepoImpl) IncrCounters(ctx context.Context, id uint64, deltas map[string]int) error {
	updates := make(map[string]interface{}, len(deltas)+1)
	for col, delta := range deltas {
		if _, ok := counterColumns[col]; !ok {
			return ErrUnknownCounter
		}
		updates[col] = gorm.Expr(col+" + ?", delta)
	}
	updates["version"] = gorm.Expr("version + 1")
	return conn(ctx, s.db).Model(&model.User{}).Where("id = ?", id).Updates(updates).Error
}

// RecordDecidedVotes 趋势定论后批量更新投票者的准确率
func (s *userRepoImpl) RecordDecidedVotes(ctx context.Context, ids []uint64, correct bool) error {
	if len(ids) == 0 {
		return nil
	}
	db := conn(ctx, s.db)
	updates := map[string]interface{}{
		"decided_validations": gorm.Expr("decided_validations + 1"),
		"version":             gorm.Expr("version + 1"),
	}
	if correct {
		updates["correct_validations"] = gorm.Expr("correct_validations + 1")
	}
	if err := db.Model(&model.User{}).Where("id IN ?", ids).Updates(updates).Error; err != nil {
		return err
	}
	return db.Model(&model.User{}).Where("id IN ?", ids).
		Update("accuracy_score", gorm.Expr("CASE WHEN decided_validations > 0 THEN correct_validations * 1.0 / decided_validations ELSE 0 END")).Error
}
