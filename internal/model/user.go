// Package model はドメインモデルを定義する。
package model

import "time"

// User はテイクダウン請求を行うクライアントユーザーを表す。
// IDは外部IdPが発行する不透明な識別子で、作成後は変更されない。
type User struct {
	ID        string
	Email     string
	Name      string
	Picture   string // アバター画像URL（任意）
	CreatedAt time.Time
}

// Session はユーザーのログインセッションを表す。
// Tokenは外部IdPが事前発行する不透明なベアラートークンで、
// セッションの主キーかつ資格情報として機能する。
// 同一ユーザーが複数の同時セッションを持つことを許容する。
type Session struct {
	UserID    string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
}
