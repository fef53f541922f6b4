package main

import (
	"log/slog"
	"os"
	"time"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/github"
	"app/internal/handler"
	"app/internal/infra/db"
	infraRepo "app/internal/infra/repository"
	"app/internal/server"
	"app/internal/token"
	"app/internal/usecase"
	"app/internal/validator"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

type uuidGenerator struct{}

func (g *uuidGenerator) NewID() string {
	return uuid.NewString()
}

type realClock struct{}

func (c *realClock) Now() time.Time {
	return time.Now()
}

func main() {
	//.envは無くてもよい（本番は環境変数から）
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	//DB接続
	gormDB, err := db.Connect(cfg)
	if err != nil {
		logger.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Bookmark{},
	); err != nil {
		logger.Error("failed to migrate", "error", err)
		os.Exit(1)
	}

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	bookmarkRepo := infraRepo.NewBookmarkGormRepository(gormDB)

	//usecaseに渡す部品
	idGen := &uuidGenerator{}
	clock := &realClock{}

	//bcrypt（会員登録：Hash / ログイン：Verify）
	hasher := usecase.NewBcryptPasswordHasher(0)
	verifier := usecase.NewBcryptPasswordVerifier()

	//JWT（access/refresh）
	tokens := token.NewService(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL, clock)

	//GitHub client
	ghClient := github.NewClient(cfg.GitHubAPIBaseURL, logger)

	//Usecase生成
	authUC := usecase.NewAuthUsecase(
		userRepo,
		validator.NewAuthValidator(userRepo),
		hasher,
		verifier,
		tokens,
		idGen,
		clock,
	)
	bookmarkUC := usecase.NewBookmarkUsecase(bookmarkRepo, ghClient, idGen, clock)
	searchUC := usecase.NewSearchUsecase(ghClient, bookmarkRepo)

	//Handler生成
	authH := handler.NewAuthHandler(authUC, cfg.CookieSecure)
	bookmarkH := handler.NewBookmarkHandler(bookmarkUC)
	githubH := handler.NewGitHubHandler(searchUC)

	//Server起動
	e := server.New(cfg, tokens, authH, bookmarkH, githubH)

	addr := ":" + cfg.Port
	logger.Info("starting server", "addr", addr, "env", cfg.GoEnv)
	if err := e.Start(addr); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
