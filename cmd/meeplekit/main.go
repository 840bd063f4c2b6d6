package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/rushteam/meeplekit/config"
	"github.com/rushteam/meeplekit/core"
	"github.com/rushteam/meeplekit/embed"
	"github.com/rushteam/meeplekit/feature"
	"github.com/rushteam/meeplekit/recommend"
	"github.com/rushteam/meeplekit/store"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	var err error
	switch os.Args[1] {
	case "train":
		err = runTrain(os.Args[2:])
	case "recommend":
		err = runRecommend(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: meeplekit <command> [flags]

commands:
  train       从游戏目录训练嵌入并发布一个 run
  recommend   基于最新 run 执行一次推荐查询`)
}

func newLogger(cfg config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	var logger zerolog.Logger
	if cfg.Pretty {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		logger = zerolog.New(os.Stderr)
	}
	return logger.Level(level).With().Timestamp().Logger()
}

func runTrain(args []string) error {
	fs := flag.NewFlagSet("train", flag.ExitOnError)
	configPath := fs.String("config", "config.yaml", "配置文件路径")
	gamesPath := fs.String("games", "", "游戏目录 JSON 文件（摄取层产出）")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *gamesPath == "" {
		return fmt.Errorf("-games is required")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	logger := newLogger(cfg.Logging)

	games, err := loadGames(*gamesPath)
	if err != nil {
		return err
	}
	logger.Info().Int("games", len(games)).Str("source", *gamesPath).Msg("catalog loaded")

	builder, err := feature.NewBuilder(cfg.Feature)
	if err != nil {
		return err
	}
	matrix, report, err := builder.Build(games)
	if err != nil {
		return err
	}
	for _, entry := range report.Filters {
		logger.Debug().
			Str("filter", entry.Name).
			Int("removed", entry.Removed).
			Float64("removal_rate", entry.RemovalRate).
			Msg("filter applied")
	}

	trainer, err := embed.NewTrainer(cfg.Embed, logger)
	if err != nil {
		return err
	}
	ctx := context.Background()
	result, err := trainer.Train(ctx, matrix, report.SourceRows)
	if err != nil {
		return err
	}

	runStore, err := store.NewFilesystemRunStore(cfg.Store.RunDir)
	if err != nil {
		return err
	}
	if err := runStore.SaveRun(ctx, result.Metadata, result.Entries, result.Model); err != nil {
		return err
	}
	if err := runStore.SetLatest(ctx, result.Metadata.RunID); err != nil {
		return err
	}
	logger.Info().Str("run_id", result.Metadata.RunID).Str("dir", cfg.Store.RunDir).Msg("run published")

	if cfg.Store.Redis.Addr != "" {
		redisStore, err := store.NewRedisCatalogStore(cfg.Store.Redis.Addr, cfg.Store.Redis.DB, cfg.Store.Redis.Prefix)
		if err != nil {
			return err
		}
		defer redisStore.Close()
		if err := redisStore.Publish(ctx, result.Metadata, result.Entries); err != nil {
			return err
		}
		logger.Info().Str("addr", cfg.Store.Redis.Addr).Msg("run published to redis")
	}
	return nil
}

func runRecommend(args []string) error {
	fs := flag.NewFlagSet("recommend", flag.ExitOnError)
	configPath := fs.String("config", "config.yaml", "配置文件路径")
	liked := fs.String("liked", "", "喜欢的游戏标识，逗号分隔")
	players := fs.Int("players", 0, "本次人数（0 不过滤）")
	minutes := fs.Int("minutes", 0, "可用时长分钟（0 不过滤）")
	amount := fs.Int("amount", 0, "返回条数（0 取配置默认）")
	mode := fs.String("mode", "reference", "解释方式: reference / feature")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *liked == "" {
		return fmt.Errorf("-liked is required")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	logger := newLogger(cfg.Logging)

	ctx := context.Background()
	runStore, err := store.NewFilesystemRunStore(cfg.Store.RunDir)
	if err != nil {
		return err
	}
	meta, entries, err := runStore.LoadLatest(ctx)
	if err != nil {
		return err
	}
	logger.Info().Str("run_id", meta.RunID).Int("entries", len(entries)).Msg("catalog loaded")

	handle := store.NewHandle(store.NewMemoryCatalog(*meta, entries))
	recommender, err := recommend.New(cfg, handle, logger)
	if err != nil {
		return err
	}

	results, err := recommender.Recommend(ctx, recommend.Query{
		LikedIDs:         strings.Split(*liked, ","),
		Players:          *players,
		AvailableMinutes: *minutes,
		Amount:           *amount,
		Mode:             core.ExplainMode(*mode),
	})
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}

func loadGames(path string) ([]core.Game, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var games []core.Game
	if err := json.Unmarshal(data, &games); err != nil {
		return nil, fmt.Errorf("parse games file: %w", err)
	}
	return games, nil
}
