package site

import (
	"net/url"
	"strings"

	"github.com/hitoshi/sitetrack/internal/model"
)

// NormalizeURL は入力URLをホスト名（小文字）のみに正規化する。
// スキームが省略された場合はhttp://を補って解析する。
func NormalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", model.NewInvalidURLError("URLが空です")
	}
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", model.NewInvalidURLError(err.Error())
	}

	host := strings.TrimSuffix(strings.ToLower(u.Hostname()), ".")
	if host == "" {
		return "", model.NewInvalidURLError("ホスト名がありません")
	}
	return host, nil
}
