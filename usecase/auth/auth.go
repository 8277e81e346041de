package auth

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/choreboard/backend/domain"
	"github.com/choreboard/backend/repository"
)

type UseCase struct {
	members  repository.MemberRepository
	sessions repository.SessionRepository
	secret   []byte
	issuer   string
	logger   *zap.Logger
}

// LoginResult pairs a cached session with the signed token the client
// presents on subsequent requests.
type LoginResult struct {
	Session *domain.Session `json:"session"`
	Token   string          `json:"token"`
}

func New(members repository.MemberRepository, sessions repository.SessionRepository, secret, issuer string, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		members:  members,
		sessions: sessions,
		secret:   []byte(secret),
		issuer:   issuer,
		logger:   logger,
	}
}

func (uc *UseCase) CreateSession(ctx context.Context, memberID string, ttl time.Duration) (*LoginResult, error) {
	member, err := uc.members.GetByID(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if !member.IsActiveMember() {
		return nil, domain.ErrUnauthorized
	}

	session := &domain.Session{
		ID:        uuid.NewString(),
		MemberID:  memberID,
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(ttl),
	}

	if err := uc.sessions.Save(ctx, session); err != nil {
		return nil, err
	}

	token, err := uc.signToken(member, session)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "sign token", err)
	}
	return &LoginResult{Session: session, Token: token}, nil
}

func (uc *UseCase) GetSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	session, err := uc.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.IsExpired(time.Now()) {
		_ = uc.sessions.Delete(ctx, sessionID)
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

func (uc *UseCase) RefreshSession(ctx context.Context, sessionID string, ttl time.Duration) (*LoginResult, error) {
	session, err := uc.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	member, err := uc.members.GetByID(ctx, session.MemberID)
	if err != nil {
		return nil, err
	}
	if !member.IsActiveMember() {
		return nil, domain.ErrUnauthorized
	}
	if err := uc.sessions.Extend(ctx, sessionID, int(ttl.Seconds())); err != nil {
		return nil, err
	}
	session.ExpiresAt = time.Now().Add(ttl)

	token, err := uc.signToken(member, session)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "sign token", err)
	}
	return &LoginResult{Session: session, Token: token}, nil
}

func (uc *UseCase) RevokeSession(ctx context.Context, sessionID string) error {
	return uc.sessions.Delete(ctx, sessionID)
}

func (uc *UseCase) signToken(member *domain.Member, session *domain.Session) (string, error) {
	claims := jwt.MapClaims{
		"member_id":  member.ID,
		"family_id":  member.FamilyID,
		"session_id": session.ID,
		"iss":        uc.issuer,
		"iat":        session.CreatedAt.Unix(),
		"exp":        session.ExpiresAt.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(uc.secret)
}
