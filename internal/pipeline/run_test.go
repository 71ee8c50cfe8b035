package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newScrapeFixture は検索ページ・記事ページ・下流APIの3サーバーを立てて
// テスト用のRunConfigを返す
func newScrapeFixture(t *testing.T, articleHTML string, apiStatus int) (RunConfig, *int64, *PriceReport) {
	t.Helper()

	articleSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, articleHTML)
	}))
	t.Cleanup(articleSrv.Close)

	searchSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, searchPage(
			searchCard("Fuel prices announced for next month", "2024-06-30", articleSrv.URL+"/en/article/fuel-july"),
			searchCard("Unrelated news", "2024-07-01", articleSrv.URL+"/en/article/other"),
		))
	}))
	t.Cleanup(searchSrv.Close)

	var apiCalls int64
	var received PriceReport
	apiSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&apiCalls, 1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/fuel-types/update", r.URL.Path)
		_ = json.NewDecoder(r.Body).Decode(&received)
		w.WriteHeader(apiStatus)
	}))
	t.Cleanup(apiSrv.Close)

	cfg := DefaultRunConfig()
	cfg.SearchURL = searchSrv.URL
	cfg.FeedURL = "" // フォールバック無効（フィクスチャを単純に保つ）
	cfg.AppURL = apiSrv.URL
	return cfg, &apiCalls, &received
}

const fuelArticleHTML = `<html><body>
	<div class="article-body">
		<p>The committee has announced the fuel prices for next month.</p>
		<p>Special 95 will cost AED 2.72 per litre while diesel AED 2.80 per litre.</p>
	</div>
</body></html>`

func TestRun_EndToEnd(t *testing.T) {
	cfg, apiCalls, received := newScrapeFixture(t, fuelArticleHTML, http.StatusOK)

	result, err := Run(context.Background(), cfg)
	require.NoError(t, err)

	assert.Equal(t, map[string]float64{"PETROL": 2.72, "DIESEL": 2.80}, result.Report.Prices)
	assert.Equal(t, ReportSource, result.Report.Source)
	assert.Equal(t, "Fuel prices announced for next month", result.Announcement.Title)

	assert.EqualValues(t, 1, *apiCalls)
	assert.Equal(t, result.Report.Prices, received.Prices)
}

func TestRun_DownstreamFailure(t *testing.T) {
	// 抽出に成功しても下流APIが500を返せば実行全体は失敗
	cfg, apiCalls, _ := newScrapeFixture(t, fuelArticleHTML, http.StatusInternalServerError)

	_, err := Run(context.Background(), cfg)
	require.Error(t, err)
	assert.EqualValues(t, 1, *apiCalls)
}

func TestRun_NoPricesSkipsPublish(t *testing.T) {
	// 価格が1つも抽出できない場合、POSTは一切行われない
	noPriceHTML := `<html><body>
		<div class="article-body">
			<p>Fuel demand continued to rise across the country.</p>
		</div>
	</body></html>`
	cfg, apiCalls, _ := newScrapeFixture(t, noPriceHTML, http.StatusOK)

	_, err := Run(context.Background(), cfg)
	require.ErrorIs(t, err, ErrNoPrices)
	assert.EqualValues(t, 0, *apiCalls)
}

func TestRun_NoContentSkipsPublish(t *testing.T) {
	cfg, apiCalls, _ := newScrapeFixture(t, `<html><body><p>no container</p></body></html>`, http.StatusOK)

	_, err := Run(context.Background(), cfg)
	require.ErrorIs(t, err, ErrNoContent)
	assert.EqualValues(t, 0, *apiCalls)
}

func TestRun_DryRun(t *testing.T) {
	cfg, apiCalls, _ := newScrapeFixture(t, fuelArticleHTML, http.StatusOK)
	cfg.DryRun = true

	result, err := Run(context.Background(), cfg)
	require.NoError(t, err)

	assert.Equal(t, 2.72, result.Report.Prices["PETROL"])
	assert.EqualValues(t, 0, *apiCalls) // dry runではPOSTしない
}

func TestRun_NoAnnouncement(t *testing.T) {
	searchSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, searchPage(
			searchCard("Unrelated news", "2024-07-01", "/en/article/other"),
		))
	}))
	defer searchSrv.Close()

	cfg := DefaultRunConfig()
	cfg.SearchURL = searchSrv.URL
	cfg.FeedURL = ""

	_, err := Run(context.Background(), cfg)
	assert.ErrorIs(t, err, ErrNoAnnouncement)
}
