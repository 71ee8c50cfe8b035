// =============================================================================
// config.go - CLI設定
// =============================================================================
//
// このファイルはCLIフラグの解析と設定管理を行います。
//
// =============================================================================
package main

import (
	"flag"
	"os"

	"fuel-relay/internal/pipeline"
)

// ScraperConfig はCLI実行の全設定を保持する
type ScraperConfig struct {
	// SearchURL は検索結果ページURL（テスト時にフィクスチャへ差し替え可能）
	SearchURL string

	// FeedURL はフォールバック用RSSフィードURL（空でフォールバック無効）
	FeedURL string

	// AppURL は下流APIのベースURL（デフォルトは環境変数APP_URL）
	AppURL string

	// DryRun がtrueの場合、POSTせずレポートをstdoutに出力するだけ
	DryRun bool

	// NotionClip がtrueの場合、送信後にNotionデータベースへ記録
	NotionClip bool
}

// ParseFlags はCLIフラグを解析してScraperConfigを返す
func ParseFlags() *ScraperConfig {
	cfg := &ScraperConfig{}

	flag.StringVar(&cfg.SearchURL, "searchURL", pipeline.WAMSearchURL, "WAM search results page URL")
	flag.StringVar(&cfg.FeedURL, "feedURL", pipeline.WAMFeedURL, "fallback RSS feed URL (empty to disable)")
	flag.StringVar(&cfg.AppURL, "appURL", envOrDefault("APP_URL", pipeline.DefaultAppURL), "downstream API base URL")
	flag.BoolVar(&cfg.DryRun, "dryRun", false, "extract prices and print the report without POSTing")
	flag.BoolVar(&cfg.NotionClip, "notionClip", false, "clip the published report to a Notion database")

	flag.Parse()
	return cfg
}

// envOrDefault は環境変数の値を返す（未設定時はデフォルト値）
func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
