// =============================================================================
// run.go - パイプライン全体の制御フロー
// =============================================================================
//
// このファイルはスクレイピングから送信までの各ステージを順番に実行します。
// CLI（cmd/scraper）とLambda（cmd/lambda/scrape）の両方から呼ばれます。
//
// 【ステージ】
//   1. 検索ページ取得 -> 発表記事の選択（sources_wam.go）
//   2. 記事ページ取得 -> 本文抽出（article.go）
//   3. 価格抽出 -> レポート生成（prices.go）
//   4. 下流APIへPOST（publish.go）
//
// どのステージの失敗も即座に実行を打ち切る。後退遷移・リトライ・
// ステージ間の並行実行はない（月1回のバッチ実行を想定した完全逐次処理）。
// 同時実行の調整も行わない。スケジューラ側で重複起動しない前提。
//
// =============================================================================
package pipeline

import (
	"context"
	"fmt"
)

// RunConfig は1回のスクレイピング実行の設定を保持する
type RunConfig struct {
	// SearchURL は検索結果ページURL（通常はWAMSearchURL）
	SearchURL string

	// FeedURL はフォールバック用RSSフィードURL（空でフォールバック無効）
	FeedURL string

	// AppURL は下流APIのベースURL
	AppURL string

	// DryRun がtrueの場合、抽出まで行いPOSTをスキップする
	DryRun bool

	// Source はHTTP設定
	Source SourceConfig

	// Extract は価格抽出パラメータ
	Extract ExtractConfig

	// Fuels はラベル -> 正規コードのマッピング
	Fuels []FuelType
}

// DefaultRunConfig は本番のWAMスクレイピング用のデフォルト設定を返す
func DefaultRunConfig() RunConfig {
	return RunConfig{
		SearchURL: WAMSearchURL,
		FeedURL:   WAMFeedURL,
		AppURL:    DefaultAppURL,
		Source:    DefaultSourceConfig(),
		Extract:   DefaultExtractConfig(),
		Fuels:     DefaultFuelTypes(),
	}
}

// RunResult は1回の実行の成果物を保持する
type RunResult struct {
	Report       *PriceReport // 送信済み（DryRun時は送信予定だった）レポート
	Announcement Announcement // 価格の出典となった発表記事
}

// Run はパイプライン全体を1回実行する
//
// 失敗時はどのステージで失敗したかが判別できるラップ済みエラーを返す。
// 「記事なし」「価格なし」はErrNoAnnouncement / ErrNoPricesとして
// transport errorと区別できる。
func Run(ctx context.Context, cfg RunConfig) (*RunResult, error) {
	infof("starting WAM fuel price scrape")

	// --- 1) 発表記事の検出 ---
	ann, err := DiscoverAnnouncement(cfg.SearchURL, cfg.FeedURL, cfg.Source)
	if err != nil {
		return nil, err
	}
	infof("latest announcement: %q (%s)", ann.Title, ann.DateText)

	// --- 2) 本文抽出 ---
	articleText, err := FetchArticleText(ann.URL, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("extracting content from %s: %w", ann.URL, err)
	}

	// --- 3) 価格抽出 ---
	prices := ExtractPrices(articleText, cfg.Fuels, cfg.Extract)
	report, err := BuildReport(prices)
	if err != nil {
		return nil, err
	}

	result := &RunResult{Report: report, Announcement: ann}

	// --- 4) 送信 ---
	if cfg.DryRun {
		infof("dry run: skipping publish (%d fuel types extracted)", len(report.Prices))
		return result, nil
	}

	publisher := NewPublisher(cfg.AppURL, cfg.Source)
	if err := publisher.Publish(ctx, report); err != nil {
		return nil, err
	}

	return result, nil
}
