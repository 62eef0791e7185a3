// 版本信息，构建时通过 -ldflags "-X switchmap/internal/pkg/version.GitCommit=..." 注入
package version

import (
	"fmt"
	"runtime"
)

var (
	Version   = "0.4.0" // 版本号 -- 发布时候更新版本号
	BuildTime string
	GitCommit string
	GoVersion = runtime.Version()
)

// GetVersion 返回版本号
func GetVersion() string {
	return Version
}

// GetFullVersion 返回带提交号的版本信息
func GetFullVersion() string {
	if GitCommit == "" {
		return Version
	}
	return fmt.Sprintf("%s (%s)", Version, GitCommit)
}
