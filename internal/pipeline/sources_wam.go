// =============================================================================
// sources_wam.go - WAM（Emirates News Agency）発表記事の検出
// =============================================================================
//
// このファイルはWAMの検索結果ページから燃料価格発表記事を検出するロジックを
// 提供します。goquery ライブラリを使用してHTML構造から記事カードを抽出します。
//
// 【処理の流れ】
//   1. 検索結果ページを取得（.search-results .card）
//   2. カードからタイトル・日付・リンクを抽出（欠損カードは破棄）
//   3. タイトルのキーワードでフィルタ（燃料価格 AND 発表/設定）
//   4. 公開日の降順でソートし、最新の1件を選択
//
// 【フォールバック】
//   検索ページがカードを1件も返さない場合（構造変更・空レスポンス）、
//   RSSフィード（gofeed）から同じフィルタで候補を探す。
//
// =============================================================================
package pipeline

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
)

// ErrNoAnnouncement は燃料価格発表記事が見つからなかったことを示す
//
// フェッチ失敗（transport error）とは区別される。記事はあるがキーワードに
// 一致しない場合もこのエラーになる。
var ErrNoAnnouncement = errors.New("no fuel price announcement found")

// タイトルフィルタ用キーワード
//
// topicKeywords のいずれか AND actionKeywords のいずれかを含むタイトルのみ
// 燃料価格発表記事として扱う（単純な部分文字列一致、小文字で比較）。
var (
	topicKeywords  = []string{"fuel price", "petrol price"}
	actionKeywords = []string{"announce", "set"}
)

// announcementDateLayouts はカードの日付文字列をパースする際に試すフォーマット群
//
// WAMはページ改修のたびに日付表記が変わるため、代表的なフォーマットを
// 順に試す。どれにも一致しない場合はDateText（原文）の辞書順比較に落ちる。
var announcementDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"02/01/2006",
	"Jan 2, 2006",
	"2 Jan 2006",
}

// IsFuelPriceAnnouncement はタイトルが燃料価格発表のものかを判定する
func IsFuelPriceAnnouncement(title string) bool {
	t := strings.ToLower(title)
	return containsAny(t, topicKeywords) && containsAny(t, actionKeywords)
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

// parseAnnouncementDate はカードの日付文字列をパースする
//
// 戻り値の2番目はパース成功フラグ。失敗してもエラーにはせず、
// 選択時に原文の辞書順比較へフォールバックする。
func parseAnnouncementDate(dateText string) (time.Time, bool) {
	s := strings.TrimSpace(dateText)
	for _, layout := range announcementDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// fetchDoc は指定URLからHTMLドキュメントを取得してgoqueryでパース
//
// ブロッキング回避のため、ブラウザ風のヘッダーを設定する。
// 200番台以外のステータスはエラー。
func fetchDoc(u string, cfg SourceConfig) (*goquery.Document, error) {
	client := cfg.Client // 共有HTTPクライアントを使用
	req, err := http.NewRequest("GET", u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", cfg.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("GET %s: status %s", u, resp.Status)
	}
	return goquery.NewDocumentFromReader(resp.Body)
}

// parseSearchCards は検索結果ページから記事カードを抽出する
//
// タイトル・日付・リンクのいずれかが欠けているカードは破棄する。
// この段階ではキーワードフィルタは適用しない（全カードを返す）。
func parseSearchCards(doc *goquery.Document) []Announcement {
	var cards []Announcement

	doc.Find(".search-results .card").Each(func(_ int, card *goquery.Selection) {
		title := strings.TrimSpace(card.Find(".card-title").First().Text())
		dateText := strings.TrimSpace(card.Find(".item-date").First().Text())
		href, _ := card.Find("a").First().Attr("href")
		href = strings.TrimSpace(href)

		// 3要素すべて揃っていないカードは除外
		if title == "" || dateText == "" || href == "" {
			return
		}

		pubTime, _ := parseAnnouncementDate(dateText)
		cards = append(cards, Announcement{
			Title:       title,
			DateText:    dateText,
			URL:         resolveURL(WAMBaseURL, href),
			PublishedAt: pubTime,
		})
	})

	debugf("parsed %d search cards", len(cards))
	return cards
}

// fetchRSSFeed は指定URLからRSS/Atomフィードを取得してパース
func fetchRSSFeed(feedURL string, cfg SourceConfig) (*gofeed.Feed, error) {
	client := cfg.Client
	req, err := http.NewRequest("GET", feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("request creation failed: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	fp := gofeed.NewParser()
	feed, err := fp.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("RSS parse failed: %w", err)
	}

	return feed, nil
}

// collectAnnouncementsFeed はRSSフィードから記事候補を収集する
//
// 検索ページのフォールバックとして使用。フィードアイテムをAnnouncementに
// 変換して返す（キーワードフィルタは適用しない）。
func collectAnnouncementsFeed(feedURL string, cfg SourceConfig) ([]Announcement, error) {
	feed, err := fetchRSSFeed(feedURL, cfg)
	if err != nil {
		return nil, err
	}

	out := make([]Announcement, 0, len(feed.Items))
	for _, item := range feed.Items {
		title := strings.TrimSpace(item.Title)
		link := strings.TrimSpace(item.Link)
		if title == "" || link == "" {
			continue
		}

		ann := Announcement{
			Title: title,
			URL:   resolveURL(WAMBaseURL, link),
		}
		if item.PublishedParsed != nil {
			ann.PublishedAt = *item.PublishedParsed
			ann.DateText = item.PublishedParsed.Format(time.RFC3339)
		} else {
			ann.DateText = strings.TrimSpace(item.Published)
			ann.PublishedAt, _ = parseAnnouncementDate(ann.DateText)
		}
		if ann.DateText == "" {
			continue
		}
		out = append(out, ann)
	}

	debugf("collected %d feed items from %s", len(out), feedURL)
	return out, nil
}

// SelectLatestAnnouncement はキーワードに一致する候補から最新の1件を選ぶ
//
// 【ソート順】
//   - 日付がパースできた候補同士: 公開日時の降順
//   - 両方パース不能: 日付文字列（原文）の辞書順降順
//   - パースできた候補はパース不能な候補より前
//
// 原文文字列の辞書順比較は日付フォーマットが揃っている場合のみ正しいが、
// パース不能な場合の最後の手段として残している。
func SelectLatestAnnouncement(candidates []Announcement) (Announcement, error) {
	var matched []Announcement
	for _, c := range candidates {
		if IsFuelPriceAnnouncement(c.Title) {
			matched = append(matched, c)
		}
	}

	if len(matched) == 0 {
		return Announcement{}, ErrNoAnnouncement
	}

	sort.SliceStable(matched, func(i, j int) bool {
		pi, pj := !matched[i].PublishedAt.IsZero(), !matched[j].PublishedAt.IsZero()
		switch {
		case pi && pj:
			return matched[i].PublishedAt.After(matched[j].PublishedAt)
		case pi != pj:
			return pi // パース済みを優先
		default:
			return matched[i].DateText > matched[j].DateText
		}
	})

	latest := matched[0]
	debugf("selected announcement: %q (%s)", latest.Title, latest.DateText)
	return latest, nil
}

// DiscoverAnnouncement は検索ページ（とRSSフォールバック）から最新の
// 燃料価格発表記事を検出する
//
// 【引数】
//   - searchURL: 検索結果ページURL（通常はWAMSearchURL）
//   - feedURL:   フォールバック用フィードURL（空文字列でフォールバック無効）
//   - cfg:       HTTP設定
//
// 【エラー】
//   - 検索ページのフェッチ失敗: transport errorをそのまま返す（フォールバックしない）
//   - カードが1件もない: フィードを試す
//   - キーワード一致なし: ErrNoAnnouncement
func DiscoverAnnouncement(searchURL, feedURL string, cfg SourceConfig) (Announcement, error) {
	doc, err := fetchDoc(searchURL, cfg)
	if err != nil {
		return Announcement{}, fmt.Errorf("fetching WAM search page: %w", err)
	}

	cards := parseSearchCards(doc)
	if len(cards) == 0 && feedURL != "" {
		// 検索ページの構造変更や空レスポンスに備えたフォールバック
		warnf("no cards on search page, falling back to RSS feed")
		cards, err = collectAnnouncementsFeed(feedURL, cfg)
		if err != nil {
			warnf("RSS fallback failed: %v", err)
			return Announcement{}, ErrNoAnnouncement
		}
	}

	return SelectLatestAnnouncement(cards)
}
