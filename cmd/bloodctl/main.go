package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"lifeblood/backend/config"
	"lifeblood/backend/internal/repository"
	"lifeblood/backend/pkg/database"
	applogger "lifeblood/backend/pkg/logger"
)

// App 运维命令共享的依赖
type App struct {
	cfg    *config.Config
	db     *gorm.DB
	sqlDB  *sql.DB
	repo   *repository.Repository
	logger *zap.Logger
	ctx    context.Context
}

var (
	configPath string
	app        *App
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "bloodctl",
		Short:         "LifeBlood 运维工具",
		Long:          `数据库迁移、旧版浏览器数据导入与用血申请导出。`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			closeApp()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "配置文件路径（默认查找 ./config/config.yaml）")

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(rollbackCmd())
	rootCmd.AddCommand(importLegacyCmd())
	rootCmd.AddCommand(exportRequestsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		closeApp()
		os.Exit(1)
	}
}

// initApp 加载配置、初始化日志并连接数据库
func initApp() error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		return fmt.Errorf("初始化日志失败: %w", err)
	}

	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		return fmt.Errorf("数据库连接失败: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("获取底层 sql.DB 失败: %w", err)
	}

	app = &App{
		cfg:    cfg,
		db:     db,
		sqlDB:  sqlDB,
		repo:   repository.NewRepository(db),
		logger: logger,
		ctx:    context.Background(),
	}
	return nil
}

func closeApp() {
	if app == nil {
		return
	}
	if app.sqlDB != nil {
		app.sqlDB.Close()
	}
	app.logger.Sync()
	app = nil
}
