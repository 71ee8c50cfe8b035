// =============================================================================
// publish.go - 価格レポートの送信
// =============================================================================
//
// このファイルはPriceReportをJSONとして下流API
// （{APP_URL}/api/fuel-types/update）にPOSTします。
//
// 【契約】
//   - Content-Type: application/json、タイムアウト30秒
//   - 2xxレスポンス = 成功（ボディは無視）
//   - transport error / タイムアウト / 非2xx = 失敗（リトライなし）
//
// =============================================================================
package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// updatePath は下流APIの燃料価格更新エンドポイント
const updatePath = "/api/fuel-types/update"

// Publisher はPriceReportの下流API送信を担当する
type Publisher struct {
	endpoint string
	client   *http.Client
}

// NewPublisher は新しいPublisherを作成する
//
// 引数:
//
//	appURL: 下流APIのベースURL（例: "http://localhost:5000"）
//	cfg:    HTTP設定（共有クライアントとタイムアウトを使用）
func NewPublisher(appURL string, cfg SourceConfig) *Publisher {
	return &Publisher{
		endpoint: strings.TrimRight(appURL, "/") + updatePath,
		client:   cfg.Client,
	}
}

// Publish はPriceReportをJSONとしてPOSTする
//
// 空のレポートはネットワークに触れる前にエラーにする
// （BuildReportが空マップを拒否するため通常は到達しない）。
func (p *Publisher) Publish(ctx context.Context, report *PriceReport) error {
	if report == nil || len(report.Prices) == 0 {
		return fmt.Errorf("refusing to publish empty price report")
	}

	body, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshaling price report: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("request creation failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("posting to %s: %w", p.endpoint, err)
	}
	defer resp.Body.Close()

	// レスポンスボディはステータス確認以外に使わないが、
	// コネクション再利用のため読み捨てる
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("POST %s: status %s", p.endpoint, resp.Status)
	}

	infof("published price report to %s (%d fuel types)", p.endpoint, len(report.Prices))
	return nil
}
