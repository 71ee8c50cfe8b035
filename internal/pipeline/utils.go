package pipeline

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strings"
)

func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// resolveURL は相対URLを絶対URLに変換
//
// ベースURLと相対URL（href）から完全な絶対URLを生成する。
// 既に絶対URLの場合はそのまま返す。
func resolveURL(baseURL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return ""
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	// 相対URLを絶対URLに解決
	return base.ResolveReference(u).String()
}

// WriteJSONToStdout はPriceReportなどをインデント付きJSONで標準出力に書き出す
//
// stdoutはJSON専用（ログはstderr）なので、パイプでjqなどに渡せる。
func WriteJSONToStdout(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func warnf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "WARN: "+format+"\n", args...)
}

func infof(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "INFO: "+format+"\n", args...)
}

func errorf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "ERROR: "+format+"\n", args...)
}

func debugf(format string, args ...any) {
	if os.Getenv("DEBUG_SCRAPING") != "" {
		fmt.Fprintf(os.Stderr, "[DEBUG] "+format+"\n", args...)
	}
}
