package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"

	"teamtask/internal/core/config"
	"teamtask/internal/core/database"
	"teamtask/internal/core/logger"
	"teamtask/internal/repo"
)

const usage = `usage: admin <command> [flags]

commands:
  migrate        create or update the users/tasks schema
  clear -yes     delete every task and user
`

func main() {
	_ = godotenv.Load()
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	cmd, args := os.Args[1], os.Args[2:]

	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	cfgPath := fs.String("config", os.Getenv("CONFIG_PATH"), "config file path")
	yes := fs.Bool("yes", false, "confirm destructive commands")
	_ = fs.Parse(args)

	cfg := config.Load(*cfgPath)
	log, cleanup := logger.New(logger.Options{Level: cfg.Log.Level, JSON: cfg.Log.JSON})
	defer cleanup()

	// 维护命令不限制连接池，单连接足够
	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		MaxOpenConns:       1,
		MaxIdleConns:       1,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
		LogWriter:          logger.ToWriter(log.Named("gorm"), zapcore.WarnLevel),
	})
	if err != nil {
		log.Fatal("db open", zap.Error(err))
	}
	log.Info("database connected", zap.String("driver", cfg.DB.Driver))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := run(ctx, cmd, *yes, db, log); err != nil {
		log.Error("admin command failed", zap.String("cmd", cmd), zap.Error(err))
		cleanup()
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd string, yes bool, db *gorm.DB, log *zap.Logger) error {
	switch cmd {
	case "migrate":
		if err := repo.AutoMigrate(db.WithContext(ctx)); err != nil {
			return err
		}
		log.Info("migrate done")
		return nil
	case "clear":
		if !yes {
			return fmt.Errorf("clear deletes all data, re-run with -yes")
		}
		res, err := repo.Clear(ctx, db)
		if err != nil {
			return err
		}
		log.Info("database cleared", zap.Int64("tasks", res.Tasks), zap.Int64("users", res.Users))
		return nil
	}
	return fmt.Errorf("unknown command %q\n%s", cmd, usage)
}
