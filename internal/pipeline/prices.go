// =============================================================================
// prices.go - 燃料価格の抽出
// =============================================================================
//
// このファイルは記事本文から燃料種ごとの価格を抽出するヒューリスティックを
// 提供します。
//
// 【抽出手順】（燃料種ごとに独立して実行）
//   1. 小文字化した本文からラベル（例: "special 95"）の初出位置を探す
//      見つからなければその燃料種はスキップ（結果マップにキーなし）
//   2. 出現位置からWindow文字（デフォルト100）のウィンドウを切り出す
//   3. 第1ヒューリスティック: ウィンドウ内の通貨マーカー "aed" の直後を
//      走査し、"."を除くと数字のみになる最初のトークンをパース
//   4. 第2ヒューリスティック: 3が失敗した場合、`数字[.,]数字` パターンの
//      最初の一致をパース（カンマは小数点に正規化）
//   5. 正の数値が得られた場合のみ正規コードで記録する
//
// 【0円価格の扱い】
//   ちょうど0の価格は「見つからなかった」として破棄する。下流APIは0を
//   不正値として扱うため、パース失敗と同じ扱いにしている。
//
// =============================================================================
package pipeline

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ErrNoPrices は記事本文からどの燃料価格も抽出できなかったことを示す
var ErrNoPrices = errors.New("no fuel prices extracted")

// reDecimalNumber は "3.14" や "2,80" のような小数パターンに一致する
var reDecimalNumber = regexp.MustCompile(`\d+[.,]\d+`)

// ExtractPrices は記事本文から燃料種ごとの価格を抽出する
//
// 【引数】
//   - articleText: 記事本文（段落連結済みのテキストブロック）
//   - fuels:       ラベル -> 正規コードのマッピング（通常はDefaultFuelTypes()）
//   - cfg:         ウィンドウ幅などの抽出パラメータ
//
// 【戻り値】
//   正規コード -> 価格のマップ。価格を回収できた燃料種のキーのみ含まれる
//   （キーがない = 見つからなかった。0やnullのエントリは作らない）。
//   1つの燃料種の抽出失敗は他の燃料種に影響しない。
func ExtractPrices(articleText string, fuels []FuelType, cfg ExtractConfig) map[string]float64 {
	prices := make(map[string]float64)
	textLower := strings.ToLower(articleText)

	for _, fuel := range fuels {
		pos := strings.Index(textLower, fuel.Label)
		if pos < 0 {
			debugf("label %q not found in article text", fuel.Label)
			continue
		}

		// ラベル出現位置からWindow文字を走査対象にする
		end := pos + cfg.Window
		if end > len(textLower) {
			end = len(textLower)
		}
		window := textLower[pos:end]

		price, found := extractPriceNearMarker(window, cfg)
		if !found {
			price, found = extractPriceByPattern(window)
		}

		// 0はパース失敗と同じ「見つからなかった」扱い
		if found && price > 0 {
			prices[fuel.Code] = price
			infof("found price for %s: %.2f AED", fuel.Code, price)
		} else if found {
			warnf("discarding non-positive price %.2f for %s", price, fuel.Code)
		}
	}

	return prices
}

// extractPriceNearMarker は通貨マーカー直後のトークンから価格を取り出す
//
// マーカー（"aed"）の初出位置からMarkerSkip文字進めた位置を起点に
// MarkerSpan文字を切り出し、空白で分割した最初の数値トークンをパースする。
// トークンは "." を除去した残りがすべて数字の場合のみ数値とみなす
// （"2.72" -> "272" で判定が通る。"2,80" はこのヒューリスティックでは拾わない）。
func extractPriceNearMarker(window string, cfg ExtractConfig) (float64, bool) {
	markerPos := strings.Index(window, cfg.CurrencyMarker)
	if markerPos < 0 {
		return 0, false
	}

	start := markerPos + cfg.MarkerSkip
	if start >= len(window) {
		return 0, false
	}
	end := start + cfg.MarkerSpan
	if end > len(window) {
		end = len(window)
	}

	segment := strings.TrimSpace(window[start:end])
	for _, token := range strings.Fields(segment) {
		if !isDecimalToken(token) {
			continue
		}
		price, err := strconv.ParseFloat(token, 64)
		if err != nil {
			warnf("failed to parse price token %q: %v", token, err)
			continue
		}
		return price, true
	}
	return 0, false
}

// extractPriceByPattern はウィンドウ内の最初の小数パターンをパースする
//
// カンマ区切りの小数（例: "2,80"）は小数点に正規化する。
func extractPriceByPattern(window string) (float64, bool) {
	match := reDecimalNumber.FindString(window)
	if match == "" {
		return 0, false
	}
	price, err := strconv.ParseFloat(strings.ReplaceAll(match, ",", "."), 64)
	if err != nil {
		warnf("failed to parse price pattern %q: %v", match, err)
		return 0, false
	}
	return price, true
}

// isDecimalToken はトークンが「"."を除くと数字のみ」かどうかを判定する
func isDecimalToken(token string) bool {
	digits := strings.ReplaceAll(token, ".", "")
	if digits == "" {
		return false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// BuildReport は抽出結果からPriceReportを組み立てる
//
// 価格マップが空の場合はErrNoPricesを返す（空のレポートは生成しない）。
// Dateはレポート生成時刻（発表記事の日付ではない）。
func BuildReport(prices map[string]float64) (*PriceReport, error) {
	if len(prices) == 0 {
		return nil, ErrNoPrices
	}
	return &PriceReport{
		Prices: prices,
		Date:   time.Now().UTC().Format(time.RFC3339),
		Source: ReportSource,
	}, nil
}
