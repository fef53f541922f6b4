package repository

import (
	"app/internal/domain/model"
	domainrepo "app/internal/repository"
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

type bookmarkGormRepository struct {
	db *gorm.DB
}

// DI
func NewBookmarkGormRepository(db *gorm.DB) domainrepo.BookmarkRepository {
	return &bookmarkGormRepository{db: db}
}

// Create はブックマークを1件作成。
// (user_id, github_repo_id)のunique違反はErrDuplicateに変換する。
func (r *bookmarkGormRepository) Create(ctx context.Context, b *model.Bookmark) error {
	if err := r.db.WithContext(ctx).Create(b).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domainrepo.ErrDuplicate
		}
		return err
	}
	return nil
}

// CreateBatch はインポート分を1トランザクションでまとめて作成。
// 途中で失敗したら全件ロールバック。
func (r *bookmarkGormRepository) CreateBatch(ctx context.Context, bs []*model.Bookmark) error {
	if len(bs) == 0 {
		return nil
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, b := range bs {
			if err := tx.Create(b).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return domainrepo.ErrDuplicate
				}
				return err
			}
		}
		return nil
	})
}

// full_nameで1件取得
func (r *bookmarkGormRepository) FindByFullName(ctx context.Context, fullName string, userID string) (*model.Bookmark, error) {
	var b model.Bookmark

	err := r.db.WithContext(ctx).
		Where("full_name = ? AND user_id = ?", fullName, userID).
		First(&b).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &b, nil
}

// GitHubリポジトリIDで1件取得
func (r *bookmarkGormRepository) FindByRepoID(ctx context.Context, repoID int64, userID string) (*model.Bookmark, error) {
	var b model.Bookmark

	err := r.db.WithContext(ctx).
		Where("github_repo_id = ? AND user_id = ?", repoID, userID).
		First(&b).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &b, nil
}

// List は本人のブックマークを新しい順（id降順＝作成順の代理）で返す。
func (r *bookmarkGormRepository) List(ctx context.Context, userID string, page int, perPage int) ([]model.Bookmark, int64, error) {
	var items []model.Bookmark
	var total int64

	tx := r.db.WithContext(ctx).Model(&model.Bookmark{}).Where("user_id = ?", userID)

	//total（件数）
	if err := tx.Count(&total).Error; err != nil {
		return []model.Bookmark{}, 0, err
	}

	if page < 1 {
		page = 1
	}
	offset := (page - 1) * perPage

	err := tx.Order("created_at desc").Order("id desc").
		Offset(offset).Limit(perPage).
		Find(&items).Error
	if err != nil {
		return []model.Bookmark{}, 0, err
	}

	return items, total, nil
}

// Delete は本人のブックマークを削除。0件更新は「対象がない」。
func (r *bookmarkGormRepository) Delete(ctx context.Context, bookmarkID string, userID string) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", bookmarkID, userID).
		Delete(&model.Bookmark{})

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domainrepo.ErrNotFound
	}
	return nil
}

// CountByDate は日別の件数を昇順で返す。
// endはその日の最後の瞬間まで含める（呼び出し側で調整済みの時刻が渡る）。
func (r *bookmarkGormRepository) CountByDate(ctx context.Context, userID string, start *time.Time, end *time.Time) ([]domainrepo.DateCount, error) {
	rows := []domainrepo.DateCount{}

	tx := r.db.WithContext(ctx).Model(&model.Bookmark{}).
		Select("DATE(created_at) AS date, COUNT(*) AS count").
		Where("user_id = ?", userID)

	if start != nil {
		tx = tx.Where("created_at >= ?", *start)
	}
	if end != nil {
		tx = tx.Where("created_at <= ?", *end)
	}

	err := tx.Group("DATE(created_at)").
		Order("DATE(created_at) asc").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	return rows, nil
}

// 総件数
func (r *bookmarkGormRepository) CountTotal(ctx context.Context, userID string) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&model.Bookmark{}).
		Where("user_id = ?", userID).
		Count(&total).Error
	return total, err
}

// 指定範囲の件数
func (r *bookmarkGormRepository) CountBetween(ctx context.Context, userID string, start time.Time, end time.Time) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&model.Bookmark{}).
		Where("user_id = ? AND created_at >= ? AND created_at <= ?", userID, start, end).
		Count(&total).Error
	return total, err
}
