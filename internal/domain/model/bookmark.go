package model

import "time"

// Bookmarkはユーザーが保存したGitHubリポジトリ。
// (user_id, github_repo_id)はDB制約でユニーク。
type Bookmark struct {
	ID             string    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID         string    `gorm:"type:uuid;not null;index;uniqueIndex:idx_user_github_repo" json:"user_id"`
	GitHubRepoID   int64     `gorm:"column:github_repo_id;not null;uniqueIndex:idx_user_github_repo" json:"repo_id"`
	RepoName       string    `gorm:"type:varchar(255);not null" json:"repo_name"`
	FullName       string    `gorm:"type:varchar(255);not null;index" json:"full_name"`
	OwnerName      string    `gorm:"type:varchar(255);not null" json:"owner_name"`
	OwnerID        int64     `gorm:"not null" json:"owner_id"`
	OwnerAvatarURL string    `gorm:"type:varchar(500)" json:"owner_avatar_url"`
	OwnerURL       string    `gorm:"type:varchar(500)" json:"owner_url"`
	RepoURL        string    `gorm:"type:varchar(500)" json:"repo_url"`
	Description    string    `gorm:"type:text" json:"description"`
	CreatedAt      time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
