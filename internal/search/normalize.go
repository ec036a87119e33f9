package search

import (
	"math"
	"regexp"
	"strings"
)

var (
	brTagRe     = regexp.MustCompile(`(?i)<br\s*/?>`)
	markupTagRe = regexp.MustCompile(`</?[^>]+>`)
)

// stripMarkup 清洗自由文本描述：<br> 折叠为换行，其余标记整体移除
func stripMarkup(s string) string {
	if s == "" {
		return ""
	}
	s = brTagRe.ReplaceAllString(s, "\n")
	s = markupTagRe.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// normalizeRating 将 0-100 刻度的评分换算为 0-10 刻度，保留一位小数。
// 缺失评分归一化为 nil，绝不为 0。
func normalizeRating(raw *float64) *float64 {
	if raw == nil {
		return nil
	}
	v := math.Round(*raw) / 10
	return &v
}

// intRating int 评分的便捷转换（AniList averageScore）
func intRating(raw *int) *float64 {
	if raw == nil {
		return nil
	}
	f := float64(*raw)
	return normalizeRating(&f)
}
