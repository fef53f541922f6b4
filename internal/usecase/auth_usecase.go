package usecase

import (
	"context"
	"errors"
	"net/http"
	"time"

	"app/internal/domain/model"
	"app/internal/repository"
	"app/internal/token"

	"golang.org/x/crypto/bcrypt"
)

// usecaseがValidatorInterfaceに依存する約束
type AuthValidator interface {
	ValidateRegister(ctx context.Context, name string, email string, password string) error
	ValidateLogin(ctx context.Context, email string, password string) error
}

// JWTを発行・検証する約束
type TokenService interface {
	IssueAccess(subject string) (string, time.Time, error)
	IssueRefresh(subject string) (string, time.Time, error)
	Verify(raw string, expectedType token.Type) (string, error)
}

// 平文パスワードからハッシュへ。
type PasswordHasher interface {
	Hash(plain string) (string, error)
}

// 入力パスワードと保存したハッシュを比べる約束
type PasswordVerifier interface {
	Verify(plain string, hashed string) bool
}

// UUID 等のIDを作る約束
type IDGenerator interface {
	NewID() string
}

// 現在の時間
type Clock interface {
	Now() time.Time
}

// bcryptハッシュ化
type BcryptPasswordHasher struct {
	cost int
}

// DI
func NewBcryptPasswordHasher(cost int) *BcryptPasswordHasher {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	return &BcryptPasswordHasher{cost}
}

// bcryptでハッシュ化。salt込みなので同じ入力でも毎回違う出力になる。
func (h *BcryptPasswordHasher) Hash(plain string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", err
	}

	return string(hashedBytes), nil
}

// bcryptハッシュと平文を比較
type BcryptPasswordVerifier struct{}

// DI
func NewBcryptPasswordVerifier() *BcryptPasswordVerifier {
	return &BcryptPasswordVerifier{}
}

// 平文(plain)をbcryptで比較
func (v *BcryptPasswordVerifier) Verify(plain string, hashed string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
	return err == nil
}

// API返却用のユーザー
type UserDTO struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// handlerがCookieに詰めるためのtokenペア
type TokenPair struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

type LoginInput struct {
	Email    string
	Password string
}

type AuthUsecase struct {
	users     repository.UserRepository
	validator AuthValidator
	hasher    PasswordHasher
	verifier  PasswordVerifier
	tokens    TokenService
	idGen     IDGenerator
	clock     Clock
}

// DI
func NewAuthUsecase(
	users repository.UserRepository,
	validator AuthValidator,
	hasher PasswordHasher,
	verifier PasswordVerifier,
	tokens TokenService,
	idGen IDGenerator,
	clock Clock,
) *AuthUsecase {
	return &AuthUsecase{
		users:     users,
		validator: validator,
		hasher:    hasher,
		verifier:  verifier,
		tokens:    tokens,
		idGen:     idGen,
		clock:     clock,
	}
}

// Register は会員登録を実行してtokenペアを発行する。
func (u *AuthUsecase) Register(ctx context.Context, in RegisterInput) (UserDTO, TokenPair, error) {
	//入力検証（validatorに寄せる）
	if err := u.validator.ValidateRegister(ctx, in.Name, in.Email, in.Password); err != nil {
		return UserDTO{}, TokenPair{}, NewHTTPError(http.StatusBadRequest, err.Error())
	}

	//パスワードは必ずハッシュ化して保存（平文保存しない）
	hashed, err := u.hasher.Hash(in.Password)
	if err != nil {
		return UserDTO{}, TokenPair{}, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	user := &model.User{
		ID:           u.idGen.NewID(),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hashed,
		IsActive:     true,
		CreatedAt:    u.clock.Now(),
	}

	//保存（email重複はDBのuniqueで確定的に弾く）
	if err := u.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return UserDTO{}, TokenPair{}, NewHTTPError(http.StatusBadRequest, "email already registered")
		}
		return UserDTO{}, TokenPair{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	pair, err := u.issuePair(user.ID)
	if err != nil {
		return UserDTO{}, TokenPair{}, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return toUserDTO(user), pair, nil
}

// Login はログインを実行してtokenペアを発行する。
func (u *AuthUsecase) Login(ctx context.Context, in LoginInput) (UserDTO, TokenPair, error) {
	if err := u.validator.ValidateLogin(ctx, in.Email, in.Password); err != nil {
		return UserDTO{}, TokenPair{}, NewHTTPError(http.StatusBadRequest, err.Error())
	}

	//emailでユーザー取得
	user, err := u.users.FindByEmail(ctx, in.Email)
	if err != nil {
		return UserDTO{}, TokenPair{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//存在しない・停止済み・パスワード不一致は全部同じ401
	if user == nil || !user.IsActive {
		return UserDTO{}, TokenPair{}, NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}
	if ok := u.verifier.Verify(in.Password, user.PasswordHash); !ok {
		return UserDTO{}, TokenPair{}, NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}

	pair, err := u.issuePair(user.ID)
	if err != nil {
		return UserDTO{}, TokenPair{}, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return toUserDTO(user), pair, nil
}

// Refresh はrefresh tokenを検証して新しいtokenペアを発行する。
func (u *AuthUsecase) Refresh(ctx context.Context, refreshToken string) (UserDTO, TokenPair, error) {
	if refreshToken == "" {
		return UserDTO{}, TokenPair{}, NewHTTPError(http.StatusUnauthorized, "missing refresh token")
	}

	userID, err := u.tokens.Verify(refreshToken, token.TypeRefresh)
	if err != nil {
		return UserDTO{}, TokenPair{}, NewHTTPError(http.StatusUnauthorized, tokenErrorMessage(err))
	}

	//ユーザーがまだ有効か確認してから再発行する
	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		return UserDTO{}, TokenPair{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if user == nil || !user.IsActive {
		return UserDTO{}, TokenPair{}, NewHTTPError(http.StatusUnauthorized, "invalid user")
	}

	pair, err := u.issuePair(user.ID)
	if err != nil {
		return UserDTO{}, TokenPair{}, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return toUserDTO(user), pair, nil
}

// Me はgateが解決したsubjectのプロフィールを返す。
func (u *AuthUsecase) Me(ctx context.Context, userID string) (UserDTO, error) {
	if userID == "" {
		return UserDTO{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		return UserDTO{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if user == nil {
		return UserDTO{}, NewHTTPError(http.StatusNotFound, "user not found")
	}

	return toUserDTO(user), nil
}

func (u *AuthUsecase) issuePair(userID string) (TokenPair, error) {
	access, accessExp, err := u.tokens.IssueAccess(userID)
	if err != nil {
		return TokenPair{}, err
	}

	refresh, refreshExp, err := u.tokens.IssueRefresh(userID)
	if err != nil {
		return TokenPair{}, err
	}

	return TokenPair{
		AccessToken:      access,
		AccessExpiresAt:  accessExp,
		RefreshToken:     refresh,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// token検証エラーをclient向けメッセージへ
func tokenErrorMessage(err error) string {
	switch {
	case errors.Is(err, token.ErrExpired):
		return "token expired"
	case errors.Is(err, token.ErrTypeMismatch):
		return "invalid token type"
	default:
		return "invalid token"
	}
}

// model.UserをAPI返却用DTOに変換。
func toUserDTO(u *model.User) UserDTO {
	return UserDTO{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}
