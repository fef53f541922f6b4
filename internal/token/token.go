package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenの種類（access/refresh）
type Type string

const (
	TypeAccess  Type = "access"
	TypeRefresh Type = "refresh"
)

var (
	//401 期限切れ
	ErrExpired = errors.New("token expired")
	//401 署名・構造が不正
	ErrInvalid = errors.New("token invalid")
	//401 typeが期待と違う（refreshをaccessとして使うなど）
	ErrTypeMismatch = errors.New("token type mismatch")
)

// 現在の時間
type Clock interface {
	Now() time.Time
}

// ServiceはJWTの発行と検証を行う。
// HS256の共有シークレット方式。tokenはステートレスで失効リストは持たない。
type Service struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	clock      Clock
}

// DI
func NewService(secret string, accessTTL time.Duration, refreshTTL time.Duration, clock Clock) *Service {
	return &Service{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		clock:      clock,
	}
}

// IssueAccess はaccess tokenを発行する。
func (s *Service) IssueAccess(subject string) (string, time.Time, error) {
	return s.issue(subject, TypeAccess, s.accessTTL)
}

// IssueRefresh はrefresh tokenを発行する。
func (s *Service) IssueRefresh(subject string) (string, time.Time, error) {
	return s.issue(subject, TypeRefresh, s.refreshTTL)
}

func (s *Service) issue(subject string, typ Type, ttl time.Duration) (string, time.Time, error) {
	now := s.clock.Now()
	expiresAt := now.Add(ttl)

	claims := jwt.MapClaims{
		"sub":  subject,
		"type": string(typ),
		"iat":  now.Unix(),
		"exp":  expiresAt.Unix(),
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}

// Verify は署名・期限・typeを検証してsubjectを返す。
// expectedTypeが空なら種類は問わない。
func (s *Service) Verify(raw string, expectedType Type) (string, error) {
	parser := jwt.NewParser(jwt.WithTimeFunc(s.clock.Now))

	tok, err := parser.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil {
		//期限切れだけは区別する
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrExpired
		}
		return "", ErrInvalid
	}
	if tok == nil || !tok.Valid {
		return "", ErrInvalid
	}

	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalid
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", ErrInvalid
	}

	typ, _ := claims["type"].(string)
	if expectedType != "" && Type(typ) != expectedType {
		return "", ErrTypeMismatch
	}

	return sub, nil
}
