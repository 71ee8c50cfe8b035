// =============================================================================
// config.go - パイプライン設定
// =============================================================================
//
// このファイルはHTTP設定・価格抽出パラメータ・燃料種マッピングを定義します。
//
// 【設定グループ】
//   - SourceConfig:  HTTPリクエスト設定（User-Agent、タイムアウト、共有クライアント）
//   - ExtractConfig: 価格抽出ヒューリスティックのパラメータ
//   - DefaultFuelTypes: 燃料ラベル -> 正規コードの固定マッピング
//
// =============================================================================
package pipeline

import (
	"net/http"
	"time"
)

// =============================================================================
// 既定URL
// =============================================================================

const (
	// WAMSearchURL はWAM（Emirates News Agency）の燃料価格検索ページ
	WAMSearchURL = "https://wam.ae/en/search?query=fuel+prices"

	// WAMFeedURL は検索ページが構造変更された場合のフォールバック用RSSフィード
	WAMFeedURL = "https://wam.ae/en/rss"

	// WAMBaseURL は相対リンクを絶対URLに解決する際のオリジン
	WAMBaseURL = "https://wam.ae"

	// DefaultAppURL はPOST先のベースURL（APP_URL未設定時のデフォルト）
	DefaultAppURL = "http://localhost:5000"

	// ReportSource はPriceReportに付与する固定ソースラベル
	ReportSource = "WAM (Emirates News Agency)"
)

// =============================================================================
// HTTP設定
// =============================================================================

// SourceConfig はHTTPリクエスト時の設定を保持
type SourceConfig struct {
	UserAgent string        // HTTPリクエスト時のUser-Agentヘッダー
	Timeout   time.Duration // HTTPリクエストのタイムアウト時間
	Client    *http.Client  // 共有HTTPクライアント（コネクションプーリング有効）
}

// DefaultSourceConfig はデフォルトのHTTP設定を返す
func DefaultSourceConfig() SourceConfig {
	timeout := 30 * time.Second // 30秒タイムアウト（WAMは時間帯によって遅い）
	return SourceConfig{
		UserAgent: "Mozilla/5.0 (compatible; fuel-relay/1.0; +https://example.invalid)",
		Timeout:   timeout,
		Client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// =============================================================================
// 価格抽出パラメータ
// =============================================================================

// ExtractConfig は価格抽出ヒューリスティックのパラメータを保持
//
// 元のスクレイピング対象（WAMの英文記事）に合わせた値がデフォルト。
// テストや別サイト対応のために調整可能なパラメータとして公開している。
type ExtractConfig struct {
	// Window は燃料ラベル出現位置から走査する文字数
	Window int

	// CurrencyMarker は価格の直前に現れる通貨マーカー（小文字）
	CurrencyMarker string

	// MarkerSkip はマーカー先頭から数値走査開始位置までのオフセット
	MarkerSkip int

	// MarkerSpan は走査開始位置から切り出す文字数
	MarkerSpan int
}

// DefaultExtractConfig はWAM記事向けのデフォルト抽出パラメータを返す
func DefaultExtractConfig() ExtractConfig {
	return ExtractConfig{
		Window:         100,
		CurrencyMarker: "aed",
		MarkerSkip:     3, // len("aed")
		MarkerSpan:     7,
	}
}

// =============================================================================
// 燃料種マッピング
// =============================================================================

// DefaultFuelTypes は記事中のラベルと下流APIの正規コードの対応表を返す
//
// 【重要】グローバル変数ではなく関数で返す。呼び出しごとに新しいスライスを
// 返すため、テストで別マッピングを渡しても互いに影響しない。
func DefaultFuelTypes() []FuelType {
	return []FuelType{
		{Label: "special 95", Code: "PETROL"},
		{Label: "super 98", Code: "SUPER"},
		{Label: "e-plus 91", Code: "EPLUS"},
		{Label: "diesel", Code: "DIESEL"},
	}
}
