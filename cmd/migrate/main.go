/*
数据库迁移工具

创建拓扑表结构、写入初始化行 (事件/根指针/未知厂商)，可选导入 IEEE oui.txt。

用法:

	migrate -env=test
	migrate -env=prod -oui=/var/lib/switchmap/oui.txt
	migrate -env=dev -drop   # 先删除全部拓扑表 (危险操作)
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"switchmap/internal/config"
	model "switchmap/internal/model/topology"
	"switchmap/internal/pkg/database"
	"switchmap/internal/pkg/logger"
	"switchmap/internal/pkg/oui"
	repo "switchmap/internal/repo/mysql/topology"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// MigrateOptions 迁移选项
type MigrateOptions struct {
	Environment string // 环境标识: test, dev, prod
	ConfigPath  string // 配置目录或文件
	DropFirst   bool   // 是否先删除表
	OuiFile     string // IEEE oui.txt 路径
}

func main() {
	opts := parseFlags()

	cfg, err := config.LoadConfig(opts.ConfigPath, opts.Environment)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logManager, err := logger.InitLogger(&cfg.Log)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}

	entry := logManager.GetLogger().WithFields(logrus.Fields{
		"path":        "cmd/migrate",
		"environment": opts.Environment,
		"driver":      cfg.Database.Driver,
		"drop_first":  opts.DropFirst,
	})
	entry.Info("Starting database migration")

	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		entry.WithField("error", err.Error()).Fatal("Failed to connect database")
	}

	if err := performMigration(context.Background(), db, cfg, opts); err != nil {
		entry.WithField("error", err.Error()).Fatal("Database migration failed")
	}

	entry.Info("Database migration completed")
}

// parseFlags 解析命令行参数
func parseFlags() *MigrateOptions {
	opts := &MigrateOptions{}

	flag.StringVar(&opts.Environment, "env", "", "环境标识 (development, test, production)，默认读取 SWITCHMAP_ENV")
	flag.StringVar(&opts.ConfigPath, "config", "", "配置目录或文件路径 (默认: ./configs)")
	flag.BoolVar(&opts.DropFirst, "drop", false, "是否先删除全部拓扑表（危险操作）")
	flag.StringVar(&opts.OuiFile, "oui", "", "导入 IEEE oui.txt 厂商前缀文件")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "switchmap 数据库迁移工具\n\n")
		fmt.Fprintf(os.Stderr, "用法: %s [选项]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "选项:\n")
		flag.PrintDefaults()
	}

	flag.Parse()
	return opts
}

// performMigration 删除(可选) -> 建表 -> 初始化行 -> 导入厂商前缀(可选)
func performMigration(ctx context.Context, db *gorm.DB, cfg *config.Config, opts *MigrateOptions) error {
	if opts.DropFirst {
		if err := repo.DropAll(db); err != nil {
			return fmt.Errorf("drop tables: %w", err)
		}
		logger.LogSystemEvent("migrate", "drop", "topology tables dropped", logrus.WarnLevel, nil)
	}

	if err := repo.AutoMigrate(db); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	store := repo.NewStore(db, cfg.Ingest.BatchSize)
	if err := store.Events.Bootstrap(ctx); err != nil {
		return err
	}

	if opts.OuiFile == "" {
		return nil
	}
	n, err := importOui(ctx, store, opts.OuiFile)
	if err != nil {
		return fmt.Errorf("import oui: %w", err)
	}
	logger.LogSystemEvent("migrate", "oui", "oui prefixes imported", logrus.InfoLevel, map[string]interface{}{
		"file":    opts.OuiFile,
		"entries": n,
	})
	return nil
}

// importOui 解析 oui.txt 并按前缀写入或更新厂商名称
func importOui(ctx context.Context, store *repo.Store, path string) (int, error) {
	entries, err := oui.ParseFile(path)
	if err != nil {
		return 0, err
	}

	rows := make([]*model.Oui, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, &model.Oui{Oui: e.Prefix, Organization: e.Organization, Enabled: 1})
	}
	if err := store.Ouis.UpsertOuis(ctx, rows); err != nil {
		return 0, err
	}
	return len(rows), nil
}
