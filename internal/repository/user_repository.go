package repository

import (
	"app/internal/domain/model"
	"context"
	"errors"
)

// 対象の行が存在しないを統一
var ErrNotFound = errors.New("not found")

// ユニーク制約違反
var ErrDuplicate = errors.New("duplicate")

// 保存・取得を約束
type UserRepository interface {
	//新規ユーザー作成
	Create(ctx context.Context, user *model.User) error
	// IDからユーザーを1件取得する。見つからない場合は(nil, nil)。
	FindByID(ctx context.Context, userID string) (*model.User, error)
	//メールからユーザーを一件取得する。
	FindByEmail(ctx context.Context, email string) (*model.User, error)
}
