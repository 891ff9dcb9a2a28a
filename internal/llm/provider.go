// Package llm は生成AIプロバイダ（OpenAI / Anthropic / Gemini）を
// 単一のインターフェースに抽象化します。呼び出し側はプロンプトと
// 期待するJSONスキーマを渡し、検証済みのJSONを受け取ります。
package llm

import (
	"context"
	"encoding/json"
)

// Provider は生成AIとのやり取りの中心となる抽象です。
type Provider interface {
	// Generate はプロンプトを送信し、構造化されたレスポンスを返します。
	// Request.Schema が設定されている場合、レスポンスはそのスキーマに
	// 適合するJSONであることが検証されます。
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID は設定されているモデル識別子を返します。
	ModelID() string
}

// Request は生成AIに送る内容です。
type Request struct {
	// System はシステムプロンプト（役割と制約の指定）です。
	System string

	// Messages は会話履歴です。単発生成の場合はユーザーメッセージ1件。
	Messages []Message

	// Schema はレスポンスが従うべきJSONスキーマです。
	// 設定されている場合、プロバイダの構造化出力機構を使用します。
	Schema *Schema

	// MaxTokens はレスポンスの最大トークン数です。
	MaxTokens int

	// Temperature はランダム性の度合いです (0.0 - 1.0)。
	Temperature float64
}

// Message は会話内の1メッセージです。
type Message struct {
	Role    Role
	Content string
}

// Role はメッセージ送信者の役割です。
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema は生成AIに要求するJSON構造の定義です。
type Schema struct {
	// Name はスキーマの識別子です (ケバブケース、例: "exercise-item")。
	Name string

	// Description はこのスキーマが表すものの説明です。
	Description string

	// Definition はJSONスキーマ定義です。
	Definition map[string]any
}

// Response は生成AIの出力です。
type Response struct {
	// Content は生成された出力です。Schema指定時は検証済みJSON。
	Content json.RawMessage

	// Usage はこのリクエストのトークン消費量です。
	Usage Usage

	// Model は実際にリクエストを処理したモデルです。
	Model string

	// StopReason は生成が停止した理由です ("end", "max_tokens", "error")。
	StopReason string
}

// Usage は1リクエストのトークン消費量です。
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
