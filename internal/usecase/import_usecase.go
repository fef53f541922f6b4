package usecase

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

// CSVインポートの結果レポート
type ImportResult struct {
	TotalProcessed    int      `json:"total_processed"`
	SuccessfulImports int      `json:"successful_imports"`
	FailedImports     int      `json:"failed_imports"`
	Errors            []string `json:"errors"`
}

var githubURLPattern = regexp.MustCompile(`github\.com/([^/]+)/([^/]+)`)

// ExtractOwnerRepo はGitHub URLまたは"owner/repo"形式から"owner/repo"を取り出す。
// どちらでもなければ空文字を返す。
func ExtractOwnerRepo(raw string) string {
	if m := githubURLPattern.FindStringSubmatch(raw); m != nil {
		return m[1] + "/" + m[2]
	}

	parts := strings.Split(raw, "/")
	if len(parts) == 2 {
		owner := strings.TrimSpace(parts[0])
		repoName := strings.TrimSpace(parts[1])
		if owner != "" && repoName != "" {
			return owner + "/" + repoName
		}
	}

	return ""
}

// Import はCSVを1行ずつ検証してブックマークへ取り込む。
// 各行の失敗は致命ではなく、レポートに積んで続行する。
// stagedの書き込みは最後に1トランザクションでまとめてコミットする。
func (u *BookmarkUsecase) Import(ctx context.Context, userID string, file io.Reader) (ImportResult, error) {
	if userID == "" {
		return ImportResult{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return ImportResult{}, NewHTTPError(http.StatusBadRequest, "invalid csv")
	}

	res := ImportResult{
		TotalProcessed: len(rows),
		Errors:         []string{},
	}

	staged := []*model.Bookmark{}
	stagedRaw := []string{}                  // エラーメッセージ用に元の文字列を控える
	stagedFullNames := map[string]struct{}{} // 同一バッチ内の重複も弾く

	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		raw := strings.TrimSpace(row[0])
		if raw == "" {
			continue
		}

		// ヘッダー行（先頭セルが"url"）はスキップ
		if strings.EqualFold(raw, "url") {
			continue
		}

		ownerRepo := ExtractOwnerRepo(raw)
		if ownerRepo == "" {
			res.FailedImports++
			res.Errors = append(res.Errors, fmt.Sprintf("invalid URL format: %s", raw))
			continue
		}

		// GitHub APIで実在を検証
		info, found, err := u.gh.FetchByOwnerRepo(ctx, ownerRepo)
		if err != nil || !found {
			res.FailedImports++
			res.Errors = append(res.Errors, fmt.Sprintf("repo not found on GitHub: %s", raw))
			continue
		}

		//重複チェック（DBの状態＋このバッチで先にstagedした分）
		if _, ok := stagedFullNames[info.FullName]; ok {
			res.FailedImports++
			res.Errors = append(res.Errors, fmt.Sprintf("bookmark already exists for %s", raw))
			continue
		}
		existing, err := u.bookmarks.FindByFullName(ctx, info.FullName, userID)
		if err != nil {
			res.FailedImports++
			res.Errors = append(res.Errors, fmt.Sprintf("failed to save bookmark for %s: %v", raw, err))
			continue
		}
		if existing != nil {
			res.FailedImports++
			res.Errors = append(res.Errors, fmt.Sprintf("bookmark already exists for %s", raw))
			continue
		}

		staged = append(staged, u.buildBookmark(info, userID))
		stagedRaw = append(stagedRaw, raw)
		stagedFullNames[info.FullName] = struct{}{}
		res.SuccessfulImports++
	}

	//まとめてコミット。失敗したら全行ロールバックなので、成功扱いを取り消す。
	if err := u.bookmarks.CreateBatch(ctx, staged); err != nil {
		reason := "db error"
		if errors.Is(err, repo.ErrDuplicate) {
			reason = "duplicate"
		}

		res.SuccessfulImports = 0
		res.FailedImports += len(staged)
		for _, raw := range stagedRaw {
			res.Errors = append(res.Errors, fmt.Sprintf("failed to save bookmark for %s: %s", raw, reason))
		}
	}

	return res, nil
}
