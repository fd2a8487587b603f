//go:build wireinject
// +build wireinject

package wire

import (
	"github.com/google/wire"

	"github.com/VenkataAditya897/vizzy-conversational/internal/application/auth"
	"github.com/VenkataAditya897/vizzy-conversational/internal/application/chat"
	"github.com/VenkataAditya897/vizzy-conversational/internal/application/generation"
	"github.com/VenkataAditya897/vizzy-conversational/internal/application/history"
	"github.com/VenkataAditya897/vizzy-conversational/internal/application/memory"
	"github.com/VenkataAditya897/vizzy-conversational/internal/application/planning"
	"github.com/VenkataAditya897/vizzy-conversational/internal/config"
	"github.com/VenkataAditya897/vizzy-conversational/internal/infrastructure/llm"
	"github.com/VenkataAditya897/vizzy-conversational/internal/infrastructure/media"
	"github.com/VenkataAditya897/vizzy-conversational/internal/infrastructure/persistence/postgres"
	redisinfra "github.com/VenkataAditya897/vizzy-conversational/internal/infrastructure/persistence/redis"
	"github.com/VenkataAditya897/vizzy-conversational/internal/interfaces/http/handler"
	"github.com/VenkataAditya897/vizzy-conversational/internal/interfaces/http/router"
)

// InitializeApp 装配应用
func InitializeApp(cfg *config.Config) (*App, func(), error) {
	wire.Build(
		ProvidePostgresConfig,
		ProvideRedisConfig,
		ProvideLLMConfig,
		ProvideStorageConfig,
		ProvideMediaConfig,
		ProvideJWTConfig,
		ProvideJWTManager,
		ProvideRateLimiter,
		ProvideHistoryService,
		wire.Bind(new(chat.HistoryProvider), new(*history.Service)),
		ProvideMemoryService,
		wire.Bind(new(chat.PreferenceStore), new(*memory.Service)),
		ProvideDispatcher,
		wire.Bind(new(chat.Dispatcher), new(*generation.Dispatcher)),
		ProvideAssetDir,

		postgres.NewClient,
		postgres.NewTxManager,
		postgres.NewUserRepository,
		postgres.NewConversationRepository,
		postgres.NewMessageRepository,
		postgres.NewConversationStateRepository,
		postgres.NewUserMemoryRepository,
		postgres.NewAssetRepository,

		redisinfra.NewClient,
		redisinfra.NewCache,

		llm.NewFactory,
		wire.Bind(new(planning.ChatModelFactory), new(*llm.Factory)),
		planning.NewPlanner,
		wire.Bind(new(chat.TurnPlanner), new(*planning.Planner)),
		planning.NewIntentClassifier,
		wire.Bind(new(chat.MediaClassifier), new(*planning.IntentClassifier)),

		media.NewLocalStore,

		auth.NewService,
		chat.NewOrchestrator,
		chat.NewConversationService,

		handler.NewHealthHandler,
		handler.NewAuthHandler,
		handler.NewChatHandler,
		handler.NewConversationHandler,
		handler.NewMemoryHandler,
		handler.NewAssetHandler,
		handler.NewUploadHandler,
		wire.Struct(new(router.Handlers), "*"),
		router.New,

		wire.Struct(new(App), "*"),
	)
	return nil, nil, nil
}
