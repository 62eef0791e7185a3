package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"switchmap/internal/app/ingester"
	"switchmap/internal/service/topology/ingest"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func newIngestCmd() *cobra.Command {
	var (
		directory string
		serial    bool
		noPurge   bool
	)

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "执行一次入库",
		Long:  "处理暂存目录中的全部快照，成功后推进 Root 并按配置清理旧事件。",
		RunE: func(cmd *cobra.Command, args []string) error {
			if directory != "" {
				appConfig.Ingest.Directory = directory
			}
			if noPurge {
				appConfig.Ingest.Purge = false
			}

			var opts []ingest.Option
			if serial {
				opts = append(opts, ingest.WithExecutor(ingest.SerialExecutor{}))
			}
			rt, err := ingester.NewRuntime(appConfig, opts...)
			if err != nil {
				return err
			}
			defer rt.Close()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			spinner, _ := pterm.DefaultSpinner.Start("Ingesting snapshots from " + appConfig.Ingest.Directory)
			report, err := rt.Ingester.Run(ctx)
			if spinner != nil {
				_ = spinner.Stop()
			}

			switch {
			case errors.Is(err, ingest.ErrNoFiles):
				pterm.Warning.Println("No snapshot files found")
				return nil
			case errors.Is(err, ingest.ErrSkipped):
				pterm.Warning.Printf("Skip marker present: %s\n", appConfig.Ingest.SkipFilePath())
				return nil
			case report == nil:
				return err
			}

			if rerr := renderReport(report); rerr != nil {
				return rerr
			}
			return err
		},
	}

	cmd.Flags().StringVarP(&directory, "directory", "d", "", "暂存目录 (覆盖 ingest.directory)")
	cmd.Flags().BoolVar(&serial, "serial", false, "串行处理 (忽略 ingest.multiprocessing)")
	cmd.Flags().BoolVar(&noPurge, "no-purge", false, "本次不清理旧事件")
	return cmd
}

// renderReport 输出每个文件的处理结果与汇总
func renderReport(report *ingest.Report) error {
	data := pterm.TableData{{"File", "Host", "Zone", "State", "Error"}}
	for _, f := range report.Files {
		data = append(data, []string{filepath.Base(f.Path), f.Hostname, f.Zone, string(f.State), f.Error})
	}
	if err := pterm.DefaultTable.WithHasHeader(true).WithBoxed(false).WithData(data).Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	summary := fmt.Sprintf("event=%d done=%d skipped=%d failed=%d root=%d purged=%d (%s)",
		report.EventID, report.Done, report.Skipped, report.Failed, report.RootEvent, report.Purged, report.Duration())
	if report.Failed > 0 {
		pterm.Warning.Println(summary)
	} else {
		pterm.Success.Println(summary)
	}
	return nil
}
