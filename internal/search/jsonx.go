package search

import (
	"encoding/json"
	"strings"
)

// extractJSONArray 从模型输出中截取第一个 JSON 数组子串。
// 这是容错逻辑：模型可能在数组前后夹杂解释性文本，或在数组内插入换行。
// 任何解析失败都返回空串，由调用方视为“无标签”。
func extractJSONArray(s string) string {
	raw := strings.TrimSpace(s)
	start := strings.Index(raw, "[")
	if start < 0 {
		return ""
	}
	end := strings.Index(raw[start:], "]")
	if end < 0 {
		return ""
	}
	raw = raw[start : start+end+1]

	// 去掉模型插入的换行，避免破坏字符串字面量
	raw = strings.ReplaceAll(raw, "\r", "")
	raw = strings.ReplaceAll(raw, "\n", "")
	return raw
}

// extractJSONObject 从模型输出中截取第一个完整 JSON 对象子串
func extractJSONObject(s string) string {
	raw := strings.TrimSpace(s)
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return ""
	}
	return raw[start : end+1]
}

// decodeTagArray 解析标签数组；失败时返回空集而非报错
func decodeTagArray(raw string) []string {
	if raw == "" {
		return []string{}
	}
	var tags []string
	if err := json.Unmarshal([]byte(raw), &tags); err != nil {
		return []string{}
	}
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}
