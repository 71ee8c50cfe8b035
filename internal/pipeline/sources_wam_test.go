package pipeline

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// searchCard はテスト用の検索結果カードHTMLを組み立てる
func searchCard(title, date, href string) string {
	var sb strings.Builder
	sb.WriteString(`<div class="card">`)
	if title != "" {
		sb.WriteString(`<h3 class="card-title">` + title + `</h3>`)
	}
	if date != "" {
		sb.WriteString(`<span class="item-date">` + date + `</span>`)
	}
	if href != "" {
		sb.WriteString(`<a href="` + href + `">Read more</a>`)
	}
	sb.WriteString(`</div>`)
	return sb.String()
}

func searchPage(cards ...string) string {
	return `<html><body><div class="search-results">` +
		strings.Join(cards, "\n") +
		`</div></body></html>`
}

func TestIsFuelPriceAnnouncement(t *testing.T) {
	tests := []struct {
		title string
		want  bool
	}{
		{"Fuel prices announced for next month", true},
		{"UAE petrol prices set for August", true},
		{"FUEL PRICE ANNOUNCEMENT", true},
		{"Fuel prices for August", false},           // 動詞キーワードなし
		{"Ministers announce new trade policy", false}, // トピックキーワードなし
		{"Unrelated news", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsFuelPriceAnnouncement(tt.title), "title %q", tt.title)
	}
}

func TestParseSearchCards_DiscardsIncomplete(t *testing.T) {
	doc := mustParseHTML(t, searchPage(
		searchCard("Fuel prices announced", "2024-06-30", "/en/article/1"),
		searchCard("Fuel prices announced", "", "/en/article/2"),  // 日付なし
		searchCard("", "2024-06-30", "/en/article/3"),             // タイトルなし
		searchCard("Fuel prices announced", "2024-06-30", ""),     // リンクなし
	))

	cards := parseSearchCards(doc)

	require.Len(t, cards, 1)
	assert.Equal(t, "Fuel prices announced", cards[0].Title)
}

func TestParseSearchCards_ResolvesRelativeLinks(t *testing.T) {
	doc := mustParseHTML(t, searchPage(
		searchCard("Fuel prices announced", "2024-06-30", "/en/article/fuel-july"),
		searchCard("Fuel prices set", "2024-05-31", "https://other.example/abs"),
	))

	cards := parseSearchCards(doc)

	require.Len(t, cards, 2)
	assert.Equal(t, "https://wam.ae/en/article/fuel-july", cards[0].URL)
	assert.Equal(t, "https://other.example/abs", cards[1].URL) // 絶対URLはそのまま
}

func TestSelectLatestAnnouncement_KeywordFilterBeforeDate(t *testing.T) {
	// 無関係な記事の方が新しくても、キーワード一致が先に適用される
	candidates := []Announcement{
		mustAnnouncement("Fuel prices announced for next month", "2024-06-30"),
		mustAnnouncement("Unrelated news", "2024-07-01"),
	}

	latest, err := SelectLatestAnnouncement(candidates)
	require.NoError(t, err)
	assert.Equal(t, "Fuel prices announced for next month", latest.Title)
}

func TestSelectLatestAnnouncement_MostRecentWins(t *testing.T) {
	candidates := []Announcement{
		mustAnnouncement("Fuel prices announced for June", "2024-05-31"),
		mustAnnouncement("Fuel prices announced for July", "2024-06-30"),
	}

	latest, err := SelectLatestAnnouncement(candidates)
	require.NoError(t, err)
	assert.Equal(t, "Fuel prices announced for July", latest.Title)
}

func TestSelectLatestAnnouncement_MixedDateFormats(t *testing.T) {
	// フォーマットが揃っていなくてもパース済み日時で比較される
	// （辞書順なら "30/06/2024" > "01/07/2024" で古い方が勝ってしまう）
	candidates := []Announcement{
		mustAnnouncement("Fuel prices set for July", "30/06/2024"),
		mustAnnouncement("Fuel prices set for August", "01/07/2024"),
	}

	latest, err := SelectLatestAnnouncement(candidates)
	require.NoError(t, err)
	assert.Equal(t, "Fuel prices set for August", latest.Title)
}

func TestSelectLatestAnnouncement_UnparsedDatesLexicographic(t *testing.T) {
	// どのフォーマットにも一致しない日付は原文の辞書順降順で比較される
	candidates := []Announcement{
		mustAnnouncement("Fuel prices announced (older)", "cycle-2024-06"),
		mustAnnouncement("Fuel prices announced (newer)", "cycle-2024-07"),
	}
	require.True(t, candidates[0].PublishedAt.IsZero())

	latest, err := SelectLatestAnnouncement(candidates)
	require.NoError(t, err)
	assert.Equal(t, "Fuel prices announced (newer)", latest.Title)
}

func TestSelectLatestAnnouncement_ParsedBeforeUnparsed(t *testing.T) {
	candidates := []Announcement{
		mustAnnouncement("Fuel prices announced (undated)", "cycle-2099"),
		mustAnnouncement("Fuel prices announced (dated)", "2024-06-30"),
	}

	latest, err := SelectLatestAnnouncement(candidates)
	require.NoError(t, err)
	assert.Equal(t, "Fuel prices announced (dated)", latest.Title)
}

func TestSelectLatestAnnouncement_NoMatch(t *testing.T) {
	candidates := []Announcement{
		mustAnnouncement("Unrelated news", "2024-07-01"),
	}

	_, err := SelectLatestAnnouncement(candidates)
	assert.ErrorIs(t, err, ErrNoAnnouncement)
}

func TestDiscoverAnnouncement_SearchPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, searchPage(
			searchCard("Fuel prices announced for July", "2024-06-30", "/en/article/fuel-july"),
			searchCard("Unrelated news", "2024-07-01", "/en/article/other"),
		))
	}))
	defer srv.Close()

	ann, err := DiscoverAnnouncement(srv.URL, "", DefaultSourceConfig())
	require.NoError(t, err)

	assert.Equal(t, "Fuel prices announced for July", ann.Title)
	assert.Equal(t, "https://wam.ae/en/article/fuel-july", ann.URL)
}

func TestDiscoverAnnouncement_FetchErrorIsNotNoAnnouncement(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := DiscoverAnnouncement(srv.URL, "", DefaultSourceConfig())
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNoAnnouncement))
}

func TestDiscoverAnnouncement_NoMatchingCards(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, searchPage(
			searchCard("Unrelated news", "2024-07-01", "/en/article/other"),
		))
	}))
	defer srv.Close()

	_, err := DiscoverAnnouncement(srv.URL, "", DefaultSourceConfig())
	assert.ErrorIs(t, err, ErrNoAnnouncement)
}

func TestDiscoverAnnouncement_FeedFallback(t *testing.T) {
	// 検索ページがカードを1件も返さない場合、RSSフィードから探す
	searchSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html><body><p>page under maintenance</p></body></html>")
	}))
	defer searchSrv.Close()

	feedSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>WAM</title>
<item><title>Fuel prices announced for July</title><link>https://wam.ae/en/article/fuel-july</link><pubDate>Sun, 30 Jun 2024 08:00:00 +0000</pubDate></item>
<item><title>Unrelated news</title><link>https://wam.ae/en/article/other</link><pubDate>Mon, 01 Jul 2024 08:00:00 +0000</pubDate></item>
</channel></rss>`)
	}))
	defer feedSrv.Close()

	ann, err := DiscoverAnnouncement(searchSrv.URL, feedSrv.URL, DefaultSourceConfig())
	require.NoError(t, err)

	assert.Equal(t, "Fuel prices announced for July", ann.Title)
	assert.Equal(t, "https://wam.ae/en/article/fuel-july", ann.URL)
	assert.Equal(t, time.Date(2024, 6, 30, 8, 0, 0, 0, time.UTC), ann.PublishedAt.UTC())
}

// -----------------------------------------------------------------------------
// テストヘルパー
// -----------------------------------------------------------------------------

func mustParseHTML(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func mustAnnouncement(title, dateText string) Announcement {
	pubTime, _ := parseAnnouncementDate(dateText)
	return Announcement{
		Title:       title,
		DateText:    dateText,
		URL:         "https://wam.ae/en/article/x",
		PublishedAt: pubTime,
	}
}
