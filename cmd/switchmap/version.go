package main

import (
	"fmt"

	"switchmap/internal/pkg/version"

	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "显示版本信息",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("switchmap %s\n", version.GetFullVersion())
			fmt.Printf("Build Time: %s\n", version.BuildTime)
			fmt.Printf("Go Version: %s\n", version.GoVersion)
		},
	}
}
