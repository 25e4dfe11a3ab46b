// Package auth はセッション認証とアイデンティティ解決を提供する。
//
// トークンの発行は外部IdPの責務で、本パッケージは事前発行された
// 不透明トークンをセッションレコードに対応付けるだけを行う。
// 期待される失敗（トークン無し・期限切れ・孤立セッション）はエラーではなく
// (nil, nil) のセンチネルで報告し、ストア障害のみをエラーとして返す。
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/contentguard/internal/model"
	"github.com/hitoshi/contentguard/internal/repository"
)

// MetricsRecorder は認証結果のメトリクス記録インターフェース。
type MetricsRecorder interface {
	RecordAuthSuccess()
	RecordAuthFailure(reason string)
	RecordSessionPurged()
}

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	SessionTTL time.Duration // 新規セッションの有効期間
}

// Service はセッション認証に関するビジネスロジックを提供する。
type Service struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	metrics     MetricsRecorder
	config      ServiceConfig
}

// NewService はServiceを生成する。metricsはnilを許容する。
func NewService(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	metrics MetricsRecorder,
	config ServiceConfig,
) *Service {
	return &Service{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		metrics:     metrics,
		config:      config,
	}
}

// HandOffInput は外部IdPが検証済みのアイデンティティとトークンのハンドオフ内容。
type HandOffInput struct {
	ID           string
	Email        string
	Name         string
	Picture      string
	SessionToken string
}

// HandOff は外部IdPからのアイデンティティハンドオフを処理し、セッションを永続化する。
// 未登録ユーザーの場合はusersレコードを作成する。
// 登録済みユーザーの場合は既存レコードをそのまま使い、ペイロードの
// フィールド差分（メール変更等）は無視する。
// セッションは重複排除せず常に新規作成する（複数同時セッションを許容）。
func (s *Service) HandOff(ctx context.Context, input HandOffInput) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, input.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if user == nil {
		now := time.Now().UTC()
		user = &model.User{
			ID:        input.ID,
			Email:     input.Email,
			Name:      input.Name,
			Picture:   input.Picture,
			CreatedAt: now,
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		slog.Info("new user created",
			slog.String("user_id", user.ID),
			slog.String("email", user.Email),
		)
	} else {
		slog.Info("existing user logged in",
			slog.String("user_id", user.ID),
		)
	}

	now := time.Now().UTC()
	session := &model.Session{
		UserID:    input.ID,
		Token:     input.SessionToken,
		ExpiresAt: now.Add(s.config.SessionTTL),
		CreatedAt: now,
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return user, nil
}

// Resolve はトークンから現在のユーザーを解決する。
// 解決できない場合は (nil, nil) を返す。エラーはストア障害のみ。
//
// アルゴリズム:
//  1. トークンが空なら参照なしでnil
//  2. セッション参照。見つからなければnil
//  3. 期限をUTCに正規化して比較。期限切れならセッションを削除してnil
//     （purge-on-read。二度目の参照はステップ2で失敗する）
//  4. ユーザー参照。見つからなければnil。孤立セッションの原因は
//     期限ではなく外部のデータ不整合のため、ここではpurgeしない
//
// リクエストごとの呼び出しで安全: セッション読み取り1回、条件付き削除1回、
// ユーザー読み取り1回が上限。
func (s *Service) Resolve(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		s.recordFailure("token_absent")
		return nil, nil
	}

	session, err := s.sessionRepo.FindByToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	if session == nil {
		s.recordFailure("session_not_found")
		return nil, nil
	}

	// タイムゾーン情報なしで保存された期限に備えてUTCへ正規化して比較する
	expiresAt := session.ExpiresAt.UTC()
	if expiresAt.Before(time.Now().UTC()) {
		if err := s.sessionRepo.DeleteByToken(ctx, token); err != nil {
			return nil, fmt.Errorf("failed to purge expired session: %w", err)
		}
		if s.metrics != nil {
			s.metrics.RecordSessionPurged()
		}
		s.recordFailure("session_expired")
		slog.Info("expired session purged",
			slog.String("user_id", session.UserID),
		)
		return nil, nil
	}

	user, err := s.userRepo.FindByID(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		s.recordFailure("orphaned_session")
		slog.Warn("session references missing user",
			slog.String("user_id", session.UserID),
		)
		return nil, nil
	}

	if s.metrics != nil {
		s.metrics.RecordAuthSuccess()
	}
	return user, nil
}

// Logout はトークンに対応するセッションを破棄する。
// トークンが空、またはセッションが既に存在しない場合も成功扱い（冪等）。
func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	if err := s.sessionRepo.DeleteByToken(ctx, token); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	slog.Info("user logged out")
	return nil
}

func (s *Service) recordFailure(reason string) {
	if s.metrics != nil {
		s.metrics.RecordAuthFailure(reason)
	}
}
