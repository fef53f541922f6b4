package repository

import (
	"app/internal/domain/model"
	"context"
	"time"
)

// 日別の件数
type DateCount struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// ブックマークの保存・取得・集計を約束
type BookmarkRepository interface {
	//新規作成。ユニーク制約違反はErrDuplicate。
	Create(ctx context.Context, b *model.Bookmark) error
	//複数件を1トランザクションでまとめて作成。
	CreateBatch(ctx context.Context, bs []*model.Bookmark) error
	// full_nameで1件取得。見つからない場合は(nil, nil)。
	FindByFullName(ctx context.Context, fullName string, userID string) (*model.Bookmark, error)
	// GitHubリポジトリIDでブックマーク済みか確認。済みならbookmark IDを返す。
	FindByRepoID(ctx context.Context, repoID int64, userID string) (*model.Bookmark, error)
	//新しい順でページング取得＋総件数
	List(ctx context.Context, userID string, page int, perPage int) ([]model.Bookmark, int64, error)
	//本人のブックマークを削除。対象なしはErrNotFound。
	Delete(ctx context.Context, bookmarkID string, userID string) error
	//日別件数（start/endはnil可、endはその日の最後まで含む）
	CountByDate(ctx context.Context, userID string, start *time.Time, end *time.Time) ([]DateCount, error)
	//総件数
	CountTotal(ctx context.Context, userID string) (int64, error)
	//指定範囲の件数（今日の件数などに使う）
	CountBetween(ctx context.Context, userID string, start time.Time, end time.Time) (int64, error)
}
