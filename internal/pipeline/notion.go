// =============================================================================
// notion.go - Notion監査ログ
// =============================================================================
//
// このファイルは送信済みのPriceReportをNotionデータベースに記録する
// オプション機能を提供します。月次の価格履歴を人間が確認するための
// 監査ログであり、記録の失敗は実行結果（終了コード）に影響しません。
//
// 【必要な環境変数】
//   NOTION_TOKEN       - Notion Integration Token
//   NOTION_DATABASE_ID - 記録先データベースID
//
// =============================================================================
package pipeline

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jomei/notionapi"
)

// ReportClipper はPriceReportのNotion記録を担当する
type ReportClipper struct {
	client *notionapi.Client
	dbID   notionapi.DatabaseID
}

// NewReportClipper は新しいReportClipperを作成する
func NewReportClipper(token, databaseID string) (*ReportClipper, error) {
	if token == "" {
		return nil, fmt.Errorf("NOTION_TOKEN is required")
	}
	if databaseID == "" {
		return nil, fmt.Errorf("NOTION_DATABASE_ID is required")
	}

	return &ReportClipper{
		client: notionapi.NewClient(notionapi.Token(token)),
		dbID:   notionapi.DatabaseID(databaseID),
	}, nil
}

// ClipReport はPriceReportをデータベースの1行として追加する
//
// 引数:
//
//	report:     送信済みのレポート
//	articleURL: 価格の出典となった発表記事URL
func (rc *ReportClipper) ClipReport(ctx context.Context, report *PriceReport, articleURL string) error {
	title := fmt.Sprintf("Fuel prices %s", time.Now().UTC().Format("2006-01"))

	properties := notionapi.Properties{
		"Title": notionapi.TitleProperty{
			Type: notionapi.PropertyTypeTitle,
			Title: []notionapi.RichText{
				{
					Text: &notionapi.Text{
						Content: title,
					},
				},
			},
		},
		"URL": notionapi.URLProperty{
			Type: notionapi.PropertyTypeURL,
			URL:  articleURL,
		},
		"Source": notionapi.SelectProperty{
			Type: notionapi.PropertyTypeSelect,
			Select: notionapi.Option{
				Name: report.Source,
			},
		},
		"Prices": notionapi.RichTextProperty{
			Type: notionapi.PropertyTypeRichText,
			RichText: []notionapi.RichText{
				{
					Text: &notionapi.Text{
						Content: formatPricesSummary(report.Prices),
					},
				},
			},
		},
		"Extracted": notionapi.RichTextProperty{
			Type: notionapi.PropertyTypeRichText,
			RichText: []notionapi.RichText{
				{
					Text: &notionapi.Text{
						Content: report.Date,
					},
				},
			},
		},
	}

	pageRequest := &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			Type:       notionapi.ParentTypeDatabaseID,
			DatabaseID: rc.dbID,
		},
		Properties: properties,
	}

	if _, err := rc.client.Page.Create(ctx, pageRequest); err != nil {
		return fmt.Errorf("failed to clip price report: %w", err)
	}

	return nil
}

// formatPricesSummary は価格マップを "DIESEL 2.80, PETROL 2.72" 形式に整形する
//
// マップの反復順はランダムなので、コード順にソートして出力を安定させる。
func formatPricesSummary(prices map[string]float64) string {
	codes := make([]string, 0, len(prices))
	for code := range prices {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	parts := make([]string, 0, len(codes))
	for _, code := range codes {
		parts = append(parts, fmt.Sprintf("%s %.2f", code, prices[code]))
	}
	return strings.Join(parts, ", ")
}
