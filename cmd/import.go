package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/eslsoft/shelfd/internal/adapter/repository"
	"github.com/eslsoft/shelfd/internal/entity"
	"github.com/eslsoft/shelfd/internal/infrastructure/config"
	"github.com/eslsoft/shelfd/internal/infrastructure/database"
	"github.com/eslsoft/shelfd/internal/infrastructure/server"
	"github.com/eslsoft/shelfd/internal/usecase"
)

const (
	importInputKey  = "import.input"
	importUserKey   = "import.user"
	importLangKey   = "import.language"
	importPolicyKey = "import.policy"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import reading records from a CSV export",
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

		inputPath := viper.GetString(importInputKey)
		userID := viper.GetInt64(importUserKey)
		if userID <= 0 {
			return fmt.Errorf("a positive --user id is required")
		}
		lang := entity.ParseLanguage(viper.GetString(importLangKey))
		if lang == entity.LanguageUnspecified {
			lang = entity.ParseLanguage(cfg.Catalog.Language)
		}
		policy := viper.GetString(importPolicyKey)
		if policy == "" {
			policy = cfg.Catalog.Policy
		}

		reader := cmd.InOrStdin()
		if inputPath != "" && inputPath != "-" {
			file, openErr := os.Open(filepath.Clean(inputPath))
			if openErr != nil {
				return fmt.Errorf("open input file: %w", openErr)
			}
			defer func() {
				if cerr := file.Close(); cerr != nil && err == nil {
					err = cerr
				}
			}()
			reader = file
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
		reconciler := usecase.NewReconciler(authors, works, matcher, usecase.ParsePolicy(policy), logger)
		recordSvc := usecase.NewRecordService(records)
		importer := usecase.NewImportService(reconciler, recordSvc, records, authors, works, logger)

		report, err := importer.ImportBatch(ctx, reader, userID, usecase.DefaultFieldMapping(), lang)
		if err != nil {
			return fmt.Errorf("import: %w", err)
		}

		cmd.Printf("imported %d of %d rows\n", report.Imported, report.Total)
		for _, outcome := range report.Outcomes {
			if !outcome.Imported {
				cmd.Printf("line %d skipped: %s\n", outcome.Line, outcome.Reason)
				continue
			}
			if outcome.Warning != "" {
				cmd.Printf("line %d imported with warning: %s\n", outcome.Line, outcome.Warning)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringP("input", "i", "", "CSV file path, use - for stdin")
	importCmd.Flags().Int64P("user", "u", 0, "user id to import records for")
	importCmd.Flags().String("lang", "", "language of the import file (en, de, fr, es)")
	importCmd.Flags().String("policy", "", "unmatched-entry policy: strict or create")

	bindFlagToViper(importInputKey, importCmd.Flags().Lookup("input"))
	bindFlagToViper(importUserKey, importCmd.Flags().Lookup("user"))
	bindFlagToViper(importLangKey, importCmd.Flags().Lookup("lang"))
	bindFlagToViper(importPolicyKey, importCmd.Flags().Lookup("policy"))
}
