package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/eslsoft/shelfd/internal/adapter/repository"
	"github.com/eslsoft/shelfd/internal/infrastructure/config"
	"github.com/eslsoft/shelfd/internal/infrastructure/database"
	"github.com/eslsoft/shelfd/internal/infrastructure/server"
	"github.com/eslsoft/shelfd/internal/usecase"
)

const (
	exportOutputKey = "export.output"
	exportUserKey   = "export.user"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a user's reading records as CSV",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		ctx := cmd.Context()

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		logger, err := server.NewLogger(cfg)
		if err != nil {
			return err
		}

		userID := viper.GetInt64(exportUserKey)
		if userID <= 0 {
			return fmt.Errorf("a positive --user id is required")
		}
		outputPath := viper.GetString(exportOutputKey)

		writer := cmd.OutOrStdout()
		if outputPath != "" && outputPath != "-" {
			if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
				return fmt.Errorf("create output directory: %w", err)
			}
			file, openErr := os.Create(outputPath)
			if openErr != nil {
				return fmt.Errorf("create output file: %w", openErr)
			}
			defer func() {
				if cerr := file.Close(); cerr != nil && err == nil {
					err = cerr
				}
			}()
			writer = file
		}

		pool, cleanup, err := database.NewConnection(cfg)
		if err != nil {
			return fmt.Errorf("db connect: %w", err)
		}
		defer cleanup()

		authors := repository.NewAuthorRepository(pool)
		works := repository.NewWorkRepository(pool)
		records := repository.NewRecordRepository(pool)
		matcher := usecase.NewMatcher(logger)
		reconciler := usecase.NewReconciler(authors, works, matcher, usecase.PolicyStrict, logger)
		recordSvc := usecase.NewRecordService(records)
		importer := usecase.NewImportService(reconciler, recordSvc, records, authors, works, logger)

		if err := importer.ExportAll(ctx, userID, writer); err != nil {
			return fmt.Errorf("export: %w", err)
		}

		if outputPath == "" || outputPath == "-" {
			return nil
		}
		cmd.Printf("exported records to %s\n", outputPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringP("output", "o", "", "output file path, use - for stdout")
	exportCmd.Flags().Int64P("user", "u", 0, "user id to export records for")

	bindFlagToViper(exportOutputKey, exportCmd.Flags().Lookup("output"))
	bindFlagToViper(exportUserKey, exportCmd.Flags().Lookup("user"))
}
