// =============================================================================
// main.go - Fuel Relay スクレイパーのエントリーポイント
// =============================================================================
//
// このプログラムはWAM（Emirates News Agency）から最新の燃料価格発表を
// スクレイピングし、抽出した価格を下流APIに送信するバッチジョブです。
// 毎月1日にcron等の外部スケジューラから起動される想定です。
//
// =============================================================================
// 【処理フロー】
// =============================================================================
//
//   ┌─────────────┐    ┌─────────────┐    ┌─────────────┐
//   │  1. 設定    │ -> │  2. 検出    │ -> │  3. 抽出    │
//   │  読み込み   │    │  検索ページ │    │  本文+価格  │
//   └─────────────┘    └─────────────┘    └─────────────┘
//          │                  │                  │
//          v                  v                  v
//   .env読み込み        キーワード一致の      100文字ウィンドウの
//   CLIフラグ解析       最新記事を選択        価格ヒューリスティック
//
//   ┌─────────────┐    ┌─────────────┐
//   │  4. 送信    │ -> │  5. 記録    │
//   │  JSON POST  │    │  Notion(任意)│
//   └─────────────┘    └─────────────┘
//
// =============================================================================
// 【終了コード】
// =============================================================================
//
//   0 - 価格レポートの抽出と送信に成功（-dryRun時は抽出に成功）
//   1 - いずれかのステージで失敗（記事なし・価格なし・HTTP失敗を含む）
//
// =============================================================================
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv" // .env ファイル読み込み

	"fuel-relay/internal/pipeline"
)

func main() {
	// .env ファイルから環境変数を読み込み
	// ファイルが存在しない場合はログを出力するが、処理は続行する
	if err := godotenv.Load(); err != nil {
		fmt.Fprintf(os.Stderr, "INFO: .env file not loaded: %v (using environment variables only)\n", err)
	}

	cfg := ParseFlags()

	runCfg := pipeline.DefaultRunConfig()
	runCfg.SearchURL = cfg.SearchURL
	runCfg.FeedURL = cfg.FeedURL
	runCfg.AppURL = cfg.AppURL
	runCfg.DryRun = cfg.DryRun

	ctx := context.Background()

	result, err := pipeline.Run(ctx, runCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}

	// stdoutはレポートJSON専用（ログはstderr）
	if err := pipeline.WriteJSONToStdout(result.Report); err != nil {
		fmt.Fprintf(os.Stderr, "WARN: writing report to stdout: %v\n", err)
	}

	// --- Notionへの記録（任意） ---
	// 記録の失敗は警告のみで、終了コードには影響しない
	if cfg.NotionClip && !cfg.DryRun {
		clipper, err := pipeline.NewReportClipper(os.Getenv("NOTION_TOKEN"), os.Getenv("NOTION_DATABASE_ID"))
		if err != nil {
			fmt.Fprintf(os.Stderr, "WARN: Notion clipper not configured: %v\n", err)
		} else if err := clipper.ClipReport(ctx, result.Report, result.Announcement.URL); err != nil {
			fmt.Fprintf(os.Stderr, "WARN: failed to clip report to Notion: %v\n", err)
		}
	}
}
