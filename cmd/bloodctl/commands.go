package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"lifeblood/backend/internal/service"
	"lifeblood/backend/pkg/database"
	"lifeblood/backend/pkg/legacy"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "执行全部未应用的数据库迁移",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return database.RunMigrations(app.sqlDB, app.logger)
		},
	}
}

func rollbackCmd() *cobra.Command {
	var steps int
	cmd := &cobra.Command{
		Use:   "rollback",
		Short: "回滚最近的数据库迁移",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if steps <= 0 {
				return fmt.Errorf("--steps 必须大于 0")
			}
			return database.RollbackMigrations(app.sqlDB, steps, app.logger)
		},
	}
	cmd.Flags().IntVar(&steps, "steps", 1, "回滚步数")
	return cmd
}

func importLegacyCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "import-legacy",
		Short: "导入旧版浏览器 localStorage 导出的 JSON 数据",
		Long: `读取浏览器 localStorage 导出文件（bloodDonationUsers、bloodRequests、
bloodDonationAppointments、bloodDonationNotifications、bloodDonationTopDonors 等键），
在单个事务中写入数据库。已存在的账号与排行榜条目会被跳过，可重复执行。`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(file)
			if err != nil {
				return fmt.Errorf("打开导出文件失败: %w", err)
			}
			defer f.Close()

			dump, err := legacy.Parse(f)
			if err != nil {
				return err
			}

			if err := database.RunMigrations(app.sqlDB, app.logger); err != nil {
				return err
			}

			svc := service.NewLegacyImportService(app.cfg, app.repo, app.logger)
			result, err := svc.Import(app.ctx, dump)
			if err != nil {
				return err
			}

			fmt.Printf("\n导入完成:\n")
			fmt.Printf("  献血者:   %d\n", result.Donors)
			fmt.Printf("  医院员工: %d\n", result.Staff)
			fmt.Printf("  用血申请: %d\n", result.Requests)
			fmt.Printf("  预约:     %d\n", result.Appointments)
			fmt.Printf("  通知:     %d\n", result.Notifications)
			fmt.Printf("  排行榜:   %d\n", result.TopDonors)
			fmt.Printf("  跳过:     %d\n", result.Skipped)
			for _, w := range result.Warnings {
				fmt.Printf("  - %s\n", w)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "导出文件路径（JSON）")
	cmd.MarkFlagRequired("file")
	return cmd
}

func exportRequestsCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export-requests",
		Short: "导出全部用血申请为 Excel",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := service.NewExportService(app.cfg, app.repo, app.logger)
			buf, filename, err := svc.ExportRequests(app.ctx)
			if err != nil {
				return err
			}
			if out == "" {
				out = filename
			}
			if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("写入文件失败: %w", err)
			}
			fmt.Printf("已导出到 %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "输出文件路径（默认使用生成的文件名）")
	return cmd
}
