// =============================================================================
// article.go - 記事本文の抽出
// =============================================================================
//
// このファイルは選択された発表記事ページから本文テキストを抽出します。
//
// 【対応フォーマット】
//   - HTML: .article-body コンテナ内の<p>要素を連結（goquery）
//   - PDF:  リンク先がPDF公報の場合、全ページのプレーンテキストを抽出
//           （ledongthuc/pdf）
//
// =============================================================================
package pipeline

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ledongthuc/pdf"
)

// ErrNoContent は記事ページに本文コンテナが見つからなかったことを示す
var ErrNoContent = errors.New("no article content found")

// FetchArticleText は記事URLから本文テキストを取得する
//
// レスポンスのContent-Type（またはURL拡張子）がPDFの場合はPDFテキスト抽出、
// それ以外はHTMLとして.article-bodyコンテナから段落を抽出する。
//
// 【エラー】
//   - transport error / 非2xx: そのまま返す
//   - .article-body が存在しない: ErrNoContent
//   - コンテナはあるが段落が空: 空文字列を返す（エラーではない）
func FetchArticleText(articleURL string, cfg SourceConfig) (string, error) {
	client := cfg.Client
	req, err := http.NewRequest("GET", articleURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", cfg.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/pdf")

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching article %s: %w", articleURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("GET %s: status %s", articleURL, resp.Status)
	}

	if isPDFResponse(articleURL, resp) {
		return extractTextFromPDF(resp.Body)
	}
	return extractArticleBody(resp.Body)
}

// isPDFResponse はレスポンスがPDF公報かどうかを判定する
func isPDFResponse(articleURL string, resp *http.Response) bool {
	ct := resp.Header.Get("Content-Type")
	if strings.Contains(ct, "application/pdf") {
		return true
	}
	u := articleURL
	if idx := strings.IndexAny(u, "?#"); idx > 0 {
		u = u[:idx]
	}
	return strings.HasSuffix(strings.ToLower(u), ".pdf")
}

// extractArticleBody はHTMLから.article-body内の段落テキストを抽出する
//
// 各段落をトリムし、単一スペースで連結した1つのテキストブロックを返す。
func extractArticleBody(body io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return "", fmt.Errorf("parse HTML failed: %w", err)
	}

	container := doc.Find(".article-body").First()
	if container.Length() == 0 {
		return "", ErrNoContent
	}

	var paragraphs []string
	container.Find("p").Each(func(_ int, p *goquery.Selection) {
		text := strings.TrimSpace(p.Text())
		if text != "" {
			paragraphs = append(paragraphs, text)
		}
	})

	text := strings.Join(paragraphs, " ")
	debugf("extracted %d paragraphs (%d chars)", len(paragraphs), len(text))
	return text, nil
}

// extractTextFromPDF はPDF公報から全ページのプレーンテキストを抽出する
func extractTextFromPDF(body io.Reader) (string, error) {
	// Read PDF content into memory
	pdfData, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("failed to read PDF: %w", err)
	}

	reader := bytes.NewReader(pdfData)
	pdfReader, err := pdf.NewReader(reader, int64(len(pdfData)))
	if err != nil {
		return "", fmt.Errorf("failed to parse PDF: %w", err)
	}

	// Extract text from all pages
	var textBuilder strings.Builder
	numPages := pdfReader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := pdfReader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		textBuilder.WriteString(text)
		textBuilder.WriteString("\n")
	}

	result := strings.TrimSpace(textBuilder.String())
	if result == "" {
		return "", ErrNoContent
	}
	return normalizeWhitespace(result), nil
}
