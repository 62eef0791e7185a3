package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"switchmap/internal/app/ingester"
	"switchmap/internal/config"
	"switchmap/internal/pkg/logger"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func newDaemonCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "daemon",
		Short: "以守护进程方式运行",
		Long: `按 ingest.schedule 定时入库；ingest.watch 开启时暂存目录出现新快照也会触发。
server.enabled 开启时提供 /healthz 与 /status。配置文件修改后自动重载日志参数。`,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := ingester.NewRuntime(appConfig)
			if err != nil {
				return err
			}
			defer rt.Close()

			d := ingester.NewDaemon(rt)
			if err := d.Start(context.Background()); err != nil {
				return err
			}

			watcher, err := config.NewConfigWatcher(cfgPath, config.GetEnv(), appConfig)
			if err == nil {
				watcher.AddCallback(d.OnConfigReload)
				if werr := watcher.Start(); werr != nil {
					logger.Warnf("Config watcher disabled: %v", werr)
				} else {
					defer watcher.Stop()
				}
			}

			pterm.Info.Printf("switchmap daemon running (schedule %s)\n", appConfig.Ingest.Schedule)

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			<-quit
			pterm.Info.Println("Shutting down switchmap daemon...")

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := d.Stop(ctx); err != nil {
				return fmt.Errorf("daemon forced to shutdown: %w", err)
			}
			return nil
		},
	}
}
