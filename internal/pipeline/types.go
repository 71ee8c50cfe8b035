// =============================================================================
// types.go - データ構造定義
// =============================================================================
//
// このファイルはFuel Relayシステム全体で使用するデータ構造（型）を定義します。
//
// 【このファイルで定義している型】
//   - Announcement: 燃料価格発表記事の候補
//   - PriceReport:  下流APIに送信する価格レポート
//   - FuelType:     燃料ラベルと正規コードの対応
//
// =============================================================================
package pipeline

import "time"

// -----------------------------------------------------------------------------
// Announcement - 燃料価格発表記事の候補
// -----------------------------------------------------------------------------
//
// WAM検索結果ページ（またはRSSフィード）から取得した記事カードを表します。
// 最新の1件が選択された後は破棄される一時的なデータです。
//
// 【フィールドの説明】
//   Title:       記事タイトル（原文）
//   DateText:    カードに表示されていた日付文字列（原文のまま）
//   URL:         記事URL（絶対URLに解決済み）
//   PublishedAt: DateTextをパースした公開日時（パース不能な場合はゼロ値）
//
type Announcement struct {
	Title       string    `json:"title"`                 // 記事タイトル
	DateText    string    `json:"date"`                  // 日付文字列（原文）
	URL         string    `json:"url"`                   // 記事URL
	PublishedAt time.Time `json:"publishedAt,omitempty"` // パース済み公開日時
}

// -----------------------------------------------------------------------------
// PriceReport - 下流APIに送信する価格レポート
// -----------------------------------------------------------------------------
//
// 抽出した燃料価格と抽出日時、固定のソースラベルをまとめたペイロード。
// このシステムが生成する唯一の成果物で、POSTでのみ永続化されます。
//
// 【不変条件】Pricesが空のレポートは生成も送信もされない
//
type PriceReport struct {
	Prices map[string]float64 `json:"prices"` // 正規コード -> 価格（AED/リットル）
	Date   string             `json:"date"`   // 抽出日時（RFC3339、UTC）
	Source string             `json:"source"` // 固定ソースラベル
}

// FuelType は記事本文中の燃料ラベルと下流システムの正規コードの対応
//
// 例: Label="special 95", Code="PETROL"
type FuelType struct {
	Label string // 記事中に現れる小文字ラベル
	Code  string // 下流APIが期待する正規コード
}
