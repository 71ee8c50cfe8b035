// =============================================================================
// Lambda: scrape-fuel-prices
// =============================================================================
//
// WAMから最新の燃料価格発表をスクレイピングし、下流APIに送信するLambda関数。
// EventBridgeの月次スケジュール（毎月1日 6:00）から起動される想定。
//
// 環境変数:
//   - APP_URL:            下流APIのベースURL (デフォルト: http://localhost:5000)
//   - SEARCH_URL:         検索ページURL上書き (任意、デフォルトはWAM検索ページ)
//   - FEED_URL:           フォールバックRSSフィード上書き (任意)
//   - NOTION_TOKEN:       Notion API Token (任意、設定時のみ記録)
//   - NOTION_DATABASE_ID: NotionデータベースID (任意)
//   - EMAIL_FROM:         エラー通知メール送信元 (任意)
//   - EMAIL_PASSWORD:     Gmailアプリパスワード (任意)
//   - EMAIL_TO:           エラー通知メール送信先 (任意)
//
// =============================================================================
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"fuel-relay/internal/pipeline"
)

// LambdaConfig は環境変数から読み込む設定
type LambdaConfig struct {
	AppURL           string
	SearchURL        string
	FeedURL          string
	NotionToken      string
	NotionDatabaseID string
	EmailFrom        string // エラー通知用（任意）
	EmailPassword    string // エラー通知用（任意）
	EmailTo          string // エラー通知用（任意）
}

// Response はLambdaレスポンス
type Response struct {
	StatusCode int                `json:"statusCode"`
	Message    string             `json:"message"`
	Prices     map[string]float64 `json:"prices,omitempty"`
	ArticleURL string             `json:"articleUrl,omitempty"`
}

// Handler はLambdaのメインハンドラー
func Handler(ctx context.Context, event interface{}) (Response, error) {
	log.Println("Starting scrape-fuel-prices Lambda...")

	cfg := loadConfig()
	log.Printf("Config: appURL=%s, searchURL=%s", cfg.AppURL, cfg.SearchURL)

	runCfg := pipeline.DefaultRunConfig()
	runCfg.AppURL = cfg.AppURL
	if cfg.SearchURL != "" {
		runCfg.SearchURL = cfg.SearchURL
	}
	if cfg.FeedURL != "" {
		runCfg.FeedURL = cfg.FeedURL
	}

	result, err := pipeline.Run(ctx, runCfg)
	if err != nil {
		log.Printf("Error scraping fuel prices: %v", err)
		sendFailureNotification(cfg, err)
		return Response{StatusCode: 500, Message: err.Error()}, err
	}

	log.Printf("Published %d fuel prices from %s", len(result.Report.Prices), result.Announcement.URL)

	// Notionへの記録（任意）。失敗しても実行結果は変えない
	if cfg.NotionToken != "" && cfg.NotionDatabaseID != "" {
		clipper, err := pipeline.NewReportClipper(cfg.NotionToken, cfg.NotionDatabaseID)
		if err != nil {
			log.Printf("Warning: Notion clipper not configured: %v", err)
		} else if err := clipper.ClipReport(ctx, result.Report, result.Announcement.URL); err != nil {
			log.Printf("Warning: failed to clip report to Notion: %v", err)
		}
	}

	return Response{
		StatusCode: 200,
		Message:    fmt.Sprintf("Successfully published %d fuel prices", len(result.Report.Prices)),
		Prices:     result.Report.Prices,
		ArticleURL: result.Announcement.URL,
	}, nil
}

// loadConfig は環境変数から設定を読み込む
func loadConfig() LambdaConfig {
	appURL := os.Getenv("APP_URL")
	if appURL == "" {
		appURL = pipeline.DefaultAppURL
	}

	return LambdaConfig{
		AppURL:           appURL,
		SearchURL:        os.Getenv("SEARCH_URL"),
		FeedURL:          os.Getenv("FEED_URL"),
		NotionToken:      os.Getenv("NOTION_TOKEN"),
		NotionDatabaseID: os.Getenv("NOTION_DATABASE_ID"),
		EmailFrom:        os.Getenv("EMAIL_FROM"),
		EmailPassword:    os.Getenv("EMAIL_PASSWORD"),
		EmailTo:          os.Getenv("EMAIL_TO"),
	}
}

// sendFailureNotification はエラー通知メールを送信する
// EMAIL_FROM, EMAIL_PASSWORD, EMAIL_TO が設定されている場合のみ送信
func sendFailureNotification(cfg LambdaConfig, runErr error) {
	if cfg.EmailFrom == "" || cfg.EmailPassword == "" || cfg.EmailTo == "" {
		log.Println("Email env vars not set, skipping error notification email")
		return
	}

	sender, err := pipeline.NewEmailSender(cfg.EmailFrom, cfg.EmailPassword, cfg.EmailTo)
	if err != nil {
		log.Printf("Failed to create email sender: %v", err)
		return
	}

	if err := sender.SendFailureAlert(runErr); err != nil {
		log.Printf("Failed to send error notification email: %v", err)
	} else {
		log.Println("Error notification email sent")
	}
}

func main() {
	lambda.Start(Handler)
}
