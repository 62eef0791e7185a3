// 文件处理工具包
// 提供按行读取、暂存目录扫描、存在性判断等操作
package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ReadFileLines 从文件读取内容返回列表
// 去掉空行与 # 开头的注释行
func ReadFileLines(filePath string) ([]string, error) {
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("file not found: %s", filePath)
	}

	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filePath, err)
	}

	lines := strings.Split(string(content), "\n")

	result := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(strings.TrimSuffix(line, "\r"))
		if line != "" && !strings.HasPrefix(line, "#") {
			result = append(result, line)
		}
	}

	return result, nil
}

// ListFiles 列出目录下指定扩展名的普通文件(不递归)，按文件名排序
func ListFiles(dir, ext string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ext) {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// FileExists 判断文件是否存在
func FileExists(filePath string) bool {
	if filePath == "" {
		return false
	}
	_, err := os.Stat(filePath)
	return err == nil
}
