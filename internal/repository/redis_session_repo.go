package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hitoshi/contentguard/internal/model"
)

// sessionKeyPrefix はRedis上のセッションキーの名前空間。
const sessionKeyPrefix = "cg:session:"

// RedisSessionRepo はRedisを使用したセッションリポジトリ。
// キーTTLをセッション期限に合わせるため、期限切れセッションは
// Redis側で自動失効し、FindByTokenは自然にnilを返す
// （purge-on-readの削除ステップはストア側で満たされる）。
type RedisSessionRepo struct {
	client redis.UniversalClient
}

// NewRedisSessionRepo はRedisSessionRepoを生成する。
func NewRedisSessionRepo(client redis.UniversalClient) *RedisSessionRepo {
	return &RedisSessionRepo{client: client}
}

// redisSession はRedisに保存するセッションのJSON表現。
type redisSession struct {
	UserID    string    `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

func sessionKey(token string) string {
	return sessionKeyPrefix + token
}

// Create はセッションを作成する。TTLは期限までの残り時間に設定する。
func (r *RedisSessionRepo) Create(ctx context.Context, session *model.Session) error {
	data, err := json.Marshal(redisSession{
		UserID:    session.UserID,
		ExpiresAt: session.ExpiresAt,
		CreatedAt: session.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		// 既に期限切れのセッションは保存しない（次のFindByTokenでnot-foundになる）
		return nil
	}

	if err := r.client.Set(ctx, sessionKey(session.Token), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// FindByToken は指定トークンのセッションを取得する。見つからない場合はnilを返す。
func (r *RedisSessionRepo) FindByToken(ctx context.Context, token string) (*model.Session, error) {
	data, err := r.client.Get(ctx, sessionKey(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}

	var rs redisSession
	if err := json.Unmarshal(data, &rs); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}

	return &model.Session{
		UserID:    rs.UserID,
		Token:     token,
		ExpiresAt: rs.ExpiresAt,
		CreatedAt: rs.CreatedAt,
	}, nil
}

// DeleteByToken は指定トークンのセッションを削除する。
// 対象が存在しない場合もエラーにならない（冪等）。
func (r *RedisSessionRepo) DeleteByToken(ctx context.Context, token string) error {
	if err := r.client.Del(ctx, sessionKey(token)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// compile-time interface check
var _ SessionRepository = (*RedisSessionRepo)(nil)
