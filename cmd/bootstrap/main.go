// bootstrap 初始化数据库表结构
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/VenkataAditya897/vizzy-conversational/internal/config"
	"github.com/VenkataAditya897/vizzy-conversational/internal/domain/entity"
	"github.com/VenkataAditya897/vizzy-conversational/internal/infrastructure/persistence/postgres"
	"github.com/VenkataAditya897/vizzy-conversational/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "配置文件目录")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Observability.Logging.Level, cfg.Observability.Logging.Format)
	ctx := context.Background()

	db, err := postgres.NewClient(&cfg.Database.Postgres)
	if err != nil {
		logger.Fatal(ctx, "连接数据库失败", err)
	}

	err = db.AutoMigrate(
		&entity.User{},
		&entity.Conversation{},
		&entity.Message{},
		&entity.ConversationState{},
		&entity.UserMemory{},
		&entity.Asset{},
	)
	if err != nil {
		logger.Fatal(ctx, "迁移表结构失败", err)
	}

	logger.Info(ctx, "表结构迁移完成")
}
