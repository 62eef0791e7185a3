/*
 * @description: Cobra Root Command 定义
 */

package main

import (
	"fmt"
	"io"
	"os"

	"switchmap/internal/config"
	"switchmap/internal/pkg/logger"
	"switchmap/internal/pkg/utils"

	"github.com/joho/godotenv"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	cfgPath  string
	cfgEnv   string
	envFile  string
	logLevel string

	// appConfig 由 PersistentPreRunE 加载，子命令直接使用
	appConfig *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "switchmap",
	Short: "switchmap 网络拓扑入库工具",
	Long: `switchmap 读取轮询器写入暂存目录的设备快照 (YAML)，
把设备、接口、VLAN、MAC、IP 及其关联对账写入数据库。

示例:
  1.执行一次入库
	switchmap ingest --env prod
  2.以守护进程运行 (定时 + 目录监听)
	switchmap daemon --config /etc/switchmap
  3.按保留策略清理旧事件
	switchmap purge
`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" {
			return nil
		}
		return initRuntimeConfig()
	},
}

// Execute 执行根命令
func Execute() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "\n[FATAL] switchmap crashed unexpectedly: %v\n", r)
			os.Exit(1)
		}
	}()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "配置目录或文件路径 (默认: ./configs)")
	rootCmd.PersistentFlags().StringVar(&cfgEnv, "env", "", "运行环境 (dev, test, prod)，默认读取 SWITCHMAP_ENV")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", ".env 文件路径")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "日志级别 (debug, info, warn, error)")

	rootCmd.AddCommand(newIngestCmd())
	rootCmd.AddCommand(newDaemonCmd())
	rootCmd.AddCommand(newPurgeCmd())
	rootCmd.AddCommand(newVersionCmd())
}

// initRuntimeConfig 加载 .env、配置文件并初始化日志
func initRuntimeConfig() error {
	if utils.FileExists(envFile) {
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	cfg, err := config.LoadConfig(cfgPath, cfgEnv)
	if err != nil {
		return err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}

	if _, err := logger.InitLogger(&cfg.Log); err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}

	switch cfg.Log.Level {
	case "debug":
		pterm.EnableDebugMessages()
	case "warn", "error", "fatal":
		pterm.DisableDebugMessages()
		pterm.Info = *pterm.Info.WithWriter(io.Discard)
	default:
		pterm.DisableDebugMessages()
	}

	appConfig = cfg
	return nil
}
