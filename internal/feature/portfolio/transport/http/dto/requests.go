// Package dto はportfolioフィーチャーのHTTPトランスポート層のデータ転送オブジェクトを定義します。
package dto

import "github.com/shopspring/decimal"

// TradeReq は/buyと/sellエンドポイントのリクエストボディを表します。
// sharesは文字列でも数値でも受け付けます（例: "10" または 10）。
// 値の範囲チェックはユースケース側のコマンド検証で行います。
type TradeReq struct {
	Symbol string          `json:"symbol" binding:"required"`
	Shares decimal.Decimal `json:"shares"`
}

// DepositReq は/depositエンドポイントのリクエストボディを表します。
type DepositReq struct {
	Amount decimal.Decimal `json:"amount"`
}
