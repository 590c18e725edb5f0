package cmd

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/cobra"

	"github.com/eslsoft/shelfd/internal/entity"
	"github.com/eslsoft/shelfd/internal/infrastructure/config"
	"github.com/eslsoft/shelfd/internal/infrastructure/database"
)

// dbInitCmd applies schema migrations, then optionally seeds the catalog
// from a sqlite snapshot. Note: go-sqlite3 needs CGO_ENABLED=1 builds.
var dbInitCmd = &cobra.Command{
	Use:   "db-init",
	Short: "Apply database migrations and optionally seed the catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		seedPath, _ := cmd.Flags().GetString("seed")
		batch, _ := cmd.Flags().GetInt("batch")

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()
		if err := database.RunMigrations(ctx, cfg); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
		cmd.Println("database migrations applied")

		if seedPath == "" {
			return nil
		}
		return seedCatalog(cmd.Context(), cmd, cfg, seedPath, batch)
	},
}

func init() {
	rootCmd.AddCommand(dbInitCmd)
	dbInitCmd.Flags().String("seed", "", "path to a sqlite catalog snapshot (catalog(author, title, language, isbn, is_main))")
	dbInitCmd.Flags().Int("batch", 500, "work insert batch size")
}

type seedRow struct {
	Author   string
	Title    string
	Language entity.Language
	ISBN     string
	IsMain   bool
}

type seedAuthor struct {
	Name  string
	Works []seedRow
}

// seedKey mirrors the normalized key behind the unique catalog indexes.
func seedKey(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// groupSeedRows groups works under their author, preserving first-seen
// author order and dropping blank or duplicate (author, title) rows.
func groupSeedRows(rows []seedRow) []seedAuthor {
	index := make(map[string]int)
	seen := make(map[string]struct{})
	var authors []seedAuthor
	for _, row := range rows {
		authorKey := seedKey(row.Author)
		titleKey := seedKey(row.Title)
		if authorKey == "" || titleKey == "" {
			continue
		}
		pairKey := authorKey + "\x00" + titleKey
		if _, dup := seen[pairKey]; dup {
			continue
		}
		seen[pairKey] = struct{}{}

		i, ok := index[authorKey]
		if !ok {
			i = len(authors)
			index[authorKey] = i
			authors = append(authors, seedAuthor{Name: row.Author})
		}
		authors[i].Works = append(authors[i].Works, row)
	}
	return authors
}

func seedCatalog(ctx context.Context, cmd *cobra.Command, cfg *config.Config, path string, batchSize int) error {
	start := time.Now()

	sqldb, err := sql.Open("sqlite3", path)
	if err != nil {
		return fmt.Errorf("open sqlite snapshot: %w", err)
	}
	defer sqldb.Close()

	rows, err := sqldb.QueryContext(ctx, `SELECT author, title, COALESCE(language, 'en'), COALESCE(isbn, ''), COALESCE(is_main, 0) FROM catalog`)
	if err != nil {
		return fmt.Errorf("read catalog snapshot: %w", err)
	}
	defer rows.Close()

	var seed []seedRow
	for rows.Next() {
		var (
			row    seedRow
			lang   string
			isMain int
		)
		if err := rows.Scan(&row.Author, &row.Title, &lang, &row.ISBN, &isMain); err != nil {
			return err
		}
		row.Language = entity.NormalizeLanguage(entity.ParseLanguage(lang))
		row.IsMain = isMain != 0
		seed = append(seed, row)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL())
	if err != nil {
		return err
	}
	defer pool.Close()

	total := 0
	for _, author := range groupSeedRows(seed) {
		inserted, err := seedAuthorWorks(ctx, pool, author, batchSize)
		if err != nil {
			return fmt.Errorf("seed author %q: %w", author.Name, err)
		}
		total += inserted
	}

	cmd.Printf("seeded %d works in %s\n", total, time.Since(start).Round(time.Millisecond))
	return nil
}

func seedAuthorWorks(ctx context.Context, pool *pgxpool.Pool, author seedAuthor, batchSize int) (int, error) {
	lang := entity.DefaultLanguage
	if len(author.Works) > 0 {
		lang = author.Works[0].Language
	}
	name, err := localizedJSON(lang, author.Name)
	if err != nil {
		return 0, err
	}

	var authorID int64
	const authorSQL = `
		INSERT INTO authors (name, name_key)
		VALUES ($1, $2)
		ON CONFLICT (name_key) DO UPDATE SET updated_at = NOW()
		RETURNING id`
	if err := pool.QueryRow(ctx, authorSQL, name, seedKey(author.Name)).Scan(&authorID); err != nil {
		return 0, err
	}

	const workSQL = `
		INSERT INTO works (author_id, title, isbn, is_main_work, title_key)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (author_id, title_key) DO NOTHING`

	total := 0
	for offset := 0; offset < len(author.Works); offset += batchSize {
		end := offset + batchSize
		if end > len(author.Works) {
			end = len(author.Works)
		}
		b := &pgx.Batch{}
		for _, work := range author.Works[offset:end] {
			title, err := localizedJSON(work.Language, work.Title)
			if err != nil {
				return total, err
			}
			b.Queue(workSQL, authorID, title, work.ISBN, work.IsMain, seedKey(work.Title))
		}
		br := pool.SendBatch(ctx, b)
		for i := 0; i < b.Len(); i++ {
			if _, err := br.Exec(); err != nil {
				br.Close()
				return total, err
			}
		}
		if err := br.Close(); err != nil {
			return total, err
		}
		total += end - offset
	}
	return total, nil
}

func localizedJSON(lang entity.Language, value string) ([]byte, error) {
	text := make(map[string]string, 2)
	for l, v := range entity.NewLocalizedString(lang, value) {
		text[l.Code()] = v
	}
	return json.Marshal(text)
}
