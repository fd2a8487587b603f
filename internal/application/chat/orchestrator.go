// Package chat 实现回合编排：协商状态机的核心流程
package chat

import (
	"context"
	"strings"

	"github.com/VenkataAditya897/vizzy-conversational/internal/application/generation"
	"github.com/VenkataAditya897/vizzy-conversational/internal/application/memory"
	"github.com/VenkataAditya897/vizzy-conversational/internal/config"
	"github.com/VenkataAditya897/vizzy-conversational/internal/domain/entity"
	"github.com/VenkataAditya897/vizzy-conversational/internal/domain/repository"
	wfmodel "github.com/VenkataAditya897/vizzy-conversational/internal/workflow/model"
	apperrors "github.com/VenkataAditya897/vizzy-conversational/pkg/errors"
	"github.com/VenkataAditya897/vizzy-conversational/pkg/logger"
	"github.com/VenkataAditya897/vizzy-conversational/pkg/metrics"
)

// TurnRequest 一轮对话的输入
type TurnRequest struct {
	UserID string
	// ConversationID 为空时开启新会话
	ConversationID string
	Message        string
	ImageURLs      []string
}

// TurnResult 一轮对话的输出
//
// Type 为 question 时 Question 非空；为 final 时 FinalPrompt 非空，
// Generation 携带本次派发的产物。
type TurnResult struct {
	ConversationID string                     `json:"conversation_id"`
	Type           string                     `json:"type"`
	Question       string                     `json:"question,omitempty"`
	DraftPrompt    string                     `json:"draft_prompt,omitempty"`
	FinalPrompt    string                     `json:"final_prompt,omitempty"`
	MediaType      entity.MediaType           `json:"media_type,omitempty"`
	Generation     *generation.DispatchResult `json:"generation,omitempty"`
}

// TurnPlanner 规划器端口
type TurnPlanner interface {
	Plan(ctx context.Context, input *wfmodel.PlannerInput) (*wfmodel.PlannerResult, error)
}

// MediaClassifier 媒体类型分类端口
type MediaClassifier interface {
	Classify(ctx context.Context, input *wfmodel.IntentInput) *wfmodel.IntentResult
}

// HistoryProvider 历史窗口端口
type HistoryProvider interface {
	Window(ctx context.Context, conversationID string) ([]wfmodel.HistoryMessage, error)
}

// PreferenceStore 偏好记忆端口
type PreferenceStore interface {
	PreferencesBlock(ctx context.Context, userID string) (string, error)
	Append(ctx context.Context, userID string, entries []memory.Entry) error
}

// Dispatcher 生成派发端口
type Dispatcher interface {
	Dispatch(ctx context.Context, req *generation.DispatchRequest) (*generation.DispatchResult, error)
}

// Orchestrator 回合编排器
//
// 每轮流程: 校验输入 -> 事务一落库用户消息并取上下文 ->
// 事务外调用规划器 -> question 形态覆盖写协商状态，
// final 形态先清状态、记忆最终提示词、再分类并派发生成。
type Orchestrator struct {
	tx            repository.Transactor
	conversations repository.ConversationRepository
	messages      repository.MessageRepository
	states        repository.ConversationStateRepository

	planner    TurnPlanner
	intent     MediaClassifier
	history    HistoryProvider
	memory     PreferenceStore
	dispatcher Dispatcher

	mediaCfg *config.MediaConfig
}

// NewOrchestrator 创建回合编排器
func NewOrchestrator(
	tx repository.Transactor,
	conversations repository.ConversationRepository,
	messages repository.MessageRepository,
	states repository.ConversationStateRepository,
	planner TurnPlanner,
	intent MediaClassifier,
	historySvc HistoryProvider,
	memorySvc PreferenceStore,
	dispatcher Dispatcher,
	mediaCfg *config.MediaConfig,
) *Orchestrator {
	return &Orchestrator{
		tx:            tx,
		conversations: conversations,
		messages:      messages,
		states:        states,
		planner:       planner,
		intent:        intent,
		history:       historySvc,
		memory:        memorySvc,
		dispatcher:    dispatcher,
		mediaCfg:      mediaCfg,
	}
}

// turnContext 事务一采集的回合上下文
type turnContext struct {
	conversation *entity.Conversation
	state        *entity.ConversationState
	window       []wfmodel.HistoryMessage
}

// RunTurn 执行一轮对话
func (o *Orchestrator) RunTurn(ctx context.Context, req *TurnRequest) (*TurnResult, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" && len(req.ImageURLs) == 0 {
		return nil, apperrors.Validation("消息内容与参考图不能同时为空")
	}

	// 事务一: 锁定会话、取历史与协商状态、落库用户消息
	tc := &turnContext{}
	err := o.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		conv, err := o.prepareConversation(txCtx, req, message)
		if err != nil {
			return err
		}
		tc.conversation = conv

		state, err := o.states.GetByConversation(txCtx, conv.ID)
		if err != nil {
			return err
		}
		tc.state = state

		window, err := o.history.Window(txCtx, conv.ID)
		if err != nil {
			return err
		}
		tc.window = window

		return o.messages.Create(txCtx, &entity.Message{
			ConversationID: conv.ID,
			Role:           entity.RoleUser,
			Content:        message,
			ImageURLs:      req.ImageURLs,
		})
	})
	if err != nil {
		return nil, err
	}

	ctx = logger.WithContext(ctx, logger.ConversationIDKey, tc.conversation.ID)

	// 事务外: 偏好块与规划。LLM 调用不持有数据库事务。
	preferences, err := o.memory.PreferencesBlock(ctx, req.UserID)
	if err != nil {
		logger.Warn(ctx, "加载偏好块失败，本轮不注入偏好", "error", err)
		preferences = ""
	}

	draft, pendingQuestion := "", ""
	if tc.state != nil {
		draft = tc.state.DraftPrompt
		pendingQuestion = tc.state.PendingQuestion()
	}

	result, err := o.planner.Plan(ctx, &wfmodel.PlannerInput{
		UserMessage:      message,
		ImageURLs:        req.ImageURLs,
		DraftPrompt:      draft,
		PendingQuestion:  pendingQuestion,
		PreferencesBlock: preferences,
		History:          tc.window,
	})
	if err != nil {
		return nil, err
	}

	if result.IsFinal() {
		return o.finishTurn(ctx, req, tc, result)
	}
	return o.questionTurn(ctx, message, tc, result)
}

// prepareConversation 锁定既有会话或开启新会话
func (o *Orchestrator) prepareConversation(ctx context.Context, req *TurnRequest, message string) (*entity.Conversation, error) {
	if req.ConversationID == "" {
		conv := &entity.Conversation{
			UserID: req.UserID,
			Title:  deriveTitle(message),
		}
		if err := o.conversations.Create(ctx, conv); err != nil {
			return nil, err
		}
		return conv, nil
	}

	conv, err := o.conversations.GetByIDForUpdate(ctx, req.ConversationID)
	if err != nil {
		return nil, err
	}
	if conv.UserID != req.UserID {
		return nil, apperrors.New(apperrors.CodeForbidden, "无权访问该会话")
	}
	return conv, nil
}

// questionTurn 澄清问题形态: 覆盖写入协商状态并落库助手消息
//
// 草稿按 规划器草稿 -> 既有草稿 -> 本轮原始消息 的顺序回退，
// 保证协商中的会话始终有可演进的草稿。
func (o *Orchestrator) questionTurn(ctx context.Context, message string, tc *turnContext, result *wfmodel.PlannerResult) (*TurnResult, error) {
	draft := result.DraftPrompt
	if draft == "" && tc.state != nil {
		draft = tc.state.DraftPrompt
	}
	if draft == "" {
		draft = message
	}

	err := o.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		err := o.states.Upsert(txCtx, &entity.ConversationState{
			ConversationID:   tc.conversation.ID,
			UserID:           tc.conversation.UserID,
			DraftPrompt:      draft,
			PendingQuestions: []string{result.Question()},
		})
		if err != nil {
			return err
		}
		return o.messages.Create(txCtx, &entity.Message{
			ConversationID: tc.conversation.ID,
			Role:           entity.RoleAssistant,
			Content:        result.Question(),
		})
	})
	if err != nil {
		return nil, err
	}

	if tc.state == nil {
		metrics.ActiveNegotiations.Inc()
	}

	return &TurnResult{
		ConversationID: tc.conversation.ID,
		Type:           wfmodel.PlannerTypeQuestion,
		Question:       result.Question(),
		DraftPrompt:    draft,
	}, nil
}

// finishTurn 最终形态: 先清除协商状态，记忆偏好，再派发生成
//
// 状态清除先于派发提交，派发失败也不会把会话留在半完成的协商里；
// 用户重试会从干净状态开始。
func (o *Orchestrator) finishTurn(ctx context.Context, req *TurnRequest, tc *turnContext, result *wfmodel.PlannerResult) (*TurnResult, error) {
	err := o.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := o.states.DeleteByConversation(txCtx, tc.conversation.ID); err != nil {
			return err
		}
		return o.messages.Create(txCtx, &entity.Message{
			ConversationID: tc.conversation.ID,
			Role:           entity.RoleAssistant,
			Content:        result.FinalPrompt,
		})
	})
	if err != nil {
		return nil, err
	}

	if tc.state != nil {
		metrics.ActiveNegotiations.Dec()
	}

	// 最终提示词与本轮参考图沉淀为偏好记忆，失败只降级不中断派发
	if err := o.memory.Append(ctx, req.UserID, o.memoryEntries(tc.conversation.ID, result, req.ImageURLs)); err != nil {
		logger.Warn(ctx, "追加偏好记忆失败", "error", err)
	}

	intent := o.classify(ctx, req, tc)
	mediaType := entity.MediaTypeImage
	model := o.mediaCfg.Image.Model
	if intent.OutputType == wfmodel.IntentOutputVideo {
		mediaType = entity.MediaTypeVideo
		model = o.mediaCfg.Video.Model
	}

	sourceImage := ""
	if intent.Mode == wfmodel.IntentModeTransform && len(req.ImageURLs) > 0 {
		sourceImage = req.ImageURLs[0]
	}

	dispatch, err := o.dispatcher.Dispatch(ctx, &generation.DispatchRequest{
		UserID:         req.UserID,
		ConversationID: tc.conversation.ID,
		MediaType:      mediaType,
		Mode:           intent.Mode,
		Prompt:         result.FinalPrompt,
		SourceImageURL: sourceImage,
		NumOutputs:     result.NumOutputs,
		AspectRatio:    result.AspectRatio,
		VideoSeconds:   intent.VideoSeconds,
		Model:          model,
	})
	if err != nil {
		return nil, err
	}

	return &TurnResult{
		ConversationID: tc.conversation.ID,
		Type:           wfmodel.PlannerTypeFinal,
		FinalPrompt:    result.FinalPrompt,
		MediaType:      mediaType,
		Generation:     dispatch,
	}, nil
}

// memoryEntries 组装本轮沉淀的偏好: 最终提示词一条文本，参考图逐条图片
func (o *Orchestrator) memoryEntries(conversationID string, result *wfmodel.PlannerResult, imageURLs []string) []memory.Entry {
	entries := []memory.Entry{{
		ConversationID: conversationID,
		Type:           entity.MemoryTypeText,
		Text:           result.FinalPrompt,
	}}
	for _, url := range imageURLs {
		entries = append(entries, memory.Entry{
			ConversationID: conversationID,
			Type:           entity.MemoryTypeImage,
			ImageURL:       url,
		})
	}
	return entries
}

// classify 判定输出形态，不可判定时回落为图片生成
func (o *Orchestrator) classify(ctx context.Context, req *TurnRequest, tc *turnContext) *wfmodel.IntentResult {
	intent := o.intent.Classify(ctx, &wfmodel.IntentInput{
		UserMessage: req.Message,
		HasImage:    len(req.ImageURLs) > 0,
		History:     tc.window,
	})
	if intent.Invalid() {
		logger.Debug(ctx, "意图不可判定，回落为图片生成", "reason", intent.ErrorMessage)
		intent.OutputType = wfmodel.IntentOutputImage
		intent.Mode = wfmodel.IntentModeGenerate
	}
	return intent
}

// deriveTitle 从首条消息截取会话标题
func deriveTitle(message string) string {
	title := strings.TrimSpace(message)
	if title == "" {
		return "新的创作"
	}
	runes := []rune(title)
	if len(runes) > 40 {
		return string(runes[:40])
	}
	return title
}
