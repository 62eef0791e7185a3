// IEEE OUI 注册表解析
// 支持 oui.txt 中的 "(hex)" 与 "(base 16)" 两种行格式
package oui

import (
	"sort"
	"strings"

	"switchmap/internal/pkg/utils"
)

// Entry 一条厂商前缀
type Entry struct {
	Prefix       string // 6位小写十六进制
	Organization string
}

// ParseFile 读取并解析 oui.txt
func ParseFile(path string) ([]Entry, error) {
	lines, err := utils.ReadFileLines(path)
	if err != nil {
		return nil, err
	}
	return Parse(lines), nil
}

// Parse 解析注册表行，同一前缀以首次出现为准，结果按前缀排序
func Parse(lines []string) []Entry {
	seen := make(map[string]string)
	for _, line := range lines {
		prefix, org, ok := parseLine(line)
		if !ok {
			continue
		}
		if _, exists := seen[prefix]; !exists {
			seen[prefix] = org
		}
	}

	entries := make([]Entry, 0, len(seen))
	for prefix, org := range seen {
		entries = append(entries, Entry{Prefix: prefix, Organization: org})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Prefix < entries[j].Prefix
	})
	return entries
}

// parseLine 解析单行，例如:
// 00-00-0C   (hex)		Cisco Systems, Inc
// 00000C     (base 16)		Cisco Systems, Inc
func parseLine(line string) (string, string, bool) {
	for _, marker := range []string{"(hex)", "(base 16)"} {
		idx := strings.Index(line, marker)
		if idx < 0 {
			continue
		}
		raw := strings.TrimSpace(line[:idx])
		raw = strings.ToLower(strings.ReplaceAll(raw, "-", ""))
		org := strings.TrimSpace(line[idx+len(marker):])
		if len(raw) != 6 || !isHex(raw) || org == "" {
			return "", "", false
		}
		return raw, org, true
	}
	return "", "", false
}

func isHex(s string) bool {
	for _, c := range s {
		if !strings.ContainsRune("0123456789abcdef", c) {
			return false
		}
	}
	return true
}
