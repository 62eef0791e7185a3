package main

import (
	"context"

	"switchmap/internal/app/ingester"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func newPurgeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "purge",
		Short: "按保留策略清理旧事件",
		Long:  "保留初始化事件、Root 指向的事件与最近两个事件，其余事件及其下属数据全部删除。",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := ingester.NewRuntime(appConfig)
			if err != nil {
				return err
			}
			defer rt.Close()

			purged, err := rt.Store.Events.Purge(context.Background())
			if err != nil {
				return err
			}
			pterm.Success.Printf("Purged %d events\n", purged)
			return nil
		},
	}
}
