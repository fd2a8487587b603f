package chat

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VenkataAditya897/vizzy-conversational/internal/application/generation"
	"github.com/VenkataAditya897/vizzy-conversational/internal/application/memory"
	"github.com/VenkataAditya897/vizzy-conversational/internal/config"
	"github.com/VenkataAditya897/vizzy-conversational/internal/domain/entity"
	"github.com/VenkataAditya897/vizzy-conversational/internal/domain/repository"
	wfmodel "github.com/VenkataAditya897/vizzy-conversational/internal/workflow/model"
	apperrors "github.com/VenkataAditya897/vizzy-conversational/pkg/errors"
)

// ---- fakes ----

type fakeTx struct{}

func (fakeTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeConvRepo struct {
	convs map[string]*entity.Conversation
}

func newFakeConvRepo() *fakeConvRepo {
	return &fakeConvRepo{convs: map[string]*entity.Conversation{}}
}

func (r *fakeConvRepo) Create(_ context.Context, conv *entity.Conversation) error {
	if conv.ID == "" {
		conv.ID = uuid.NewString()
	}
	r.convs[conv.ID] = conv
	return nil
}

func (r *fakeConvRepo) GetByID(_ context.Context, id string) (*entity.Conversation, error) {
	conv, ok := r.convs[id]
	if !ok {
		return nil, apperrors.ErrConversationNotFound
	}
	return conv, nil
}

func (r *fakeConvRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.Conversation, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeConvRepo) ListByUser(context.Context, string, *repository.Pagination) (*repository.PagedResult[entity.Conversation], error) {
	return nil, nil
}

func (r *fakeConvRepo) Update(_ context.Context, conv *entity.Conversation) error {
	r.convs[conv.ID] = conv
	return nil
}

func (r *fakeConvRepo) Delete(_ context.Context, id string) error {
	delete(r.convs, id)
	return nil
}

type fakeMsgRepo struct {
	msgs []entity.Message
}

func (r *fakeMsgRepo) Create(_ context.Context, msg *entity.Message) error {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	r.msgs = append(r.msgs, *msg)
	return nil
}

func (r *fakeMsgRepo) ListRecent(_ context.Context, conversationID string, limit int) ([]entity.Message, error) {
	var out []entity.Message
	for _, m := range r.msgs {
		if m.ConversationID == conversationID {
			out = append(out, m)
		}
	}
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (r *fakeMsgRepo) ListByConversation(context.Context, string, *repository.Pagination) (*repository.PagedResult[entity.Message], error) {
	return nil, nil
}

func (r *fakeMsgRepo) DeleteByConversation(_ context.Context, conversationID string) error {
	var kept []entity.Message
	for _, m := range r.msgs {
		if m.ConversationID != conversationID {
			kept = append(kept, m)
		}
	}
	r.msgs = kept
	return nil
}

type fakeStateRepo struct {
	states map[string]*entity.ConversationState
}

func newFakeStateRepo() *fakeStateRepo {
	return &fakeStateRepo{states: map[string]*entity.ConversationState{}}
}

func (r *fakeStateRepo) Upsert(_ context.Context, state *entity.ConversationState) error {
	if existing, ok := r.states[state.ConversationID]; ok {
		existing.DraftPrompt = state.DraftPrompt
		existing.PendingQuestions = state.PendingQuestions
		return nil
	}
	if state.ID == "" {
		state.ID = uuid.NewString()
	}
	r.states[state.ConversationID] = state
	return nil
}

func (r *fakeStateRepo) GetByConversation(_ context.Context, conversationID string) (*entity.ConversationState, error) {
	return r.states[conversationID], nil
}

func (r *fakeStateRepo) DeleteByConversation(_ context.Context, conversationID string) error {
	delete(r.states, conversationID)
	return nil
}

type fakePlanner struct {
	result *wfmodel.PlannerResult
	err    error
	gotIn  *wfmodel.PlannerInput
}

func (p *fakePlanner) Plan(_ context.Context, input *wfmodel.PlannerInput) (*wfmodel.PlannerResult, error) {
	p.gotIn = input
	return p.result, p.err
}

type fakeClassifier struct {
	result *wfmodel.IntentResult
	gotIn  *wfmodel.IntentInput
}

func (c *fakeClassifier) Classify(_ context.Context, input *wfmodel.IntentInput) *wfmodel.IntentResult {
	c.gotIn = input
	if c.result == nil {
		return &wfmodel.IntentResult{
			OutputType: wfmodel.IntentOutputImage,
			Mode:       wfmodel.IntentModeGenerate,
		}
	}
	return c.result
}

type fakeHistory struct {
	window []wfmodel.HistoryMessage
}

func (h *fakeHistory) Window(context.Context, string) ([]wfmodel.HistoryMessage, error) {
	return h.window, nil
}

type fakePreferences struct {
	block    string
	appended []memory.Entry
	err      error
}

func (p *fakePreferences) PreferencesBlock(context.Context, string) (string, error) {
	return p.block, nil
}

func (p *fakePreferences) Append(_ context.Context, _ string, entries []memory.Entry) error {
	if p.err != nil {
		return p.err
	}
	p.appended = append(p.appended, entries...)
	return nil
}

type fakeDispatcher struct {
	got         *generation.DispatchRequest
	err         error
	stateAtCall *entity.ConversationState
	stateRepo   *fakeStateRepo
}

func (d *fakeDispatcher) Dispatch(_ context.Context, req *generation.DispatchRequest) (*generation.DispatchResult, error) {
	d.got = req
	if d.stateRepo != nil {
		d.stateAtCall = d.stateRepo.states[req.ConversationID]
	}
	if d.err != nil {
		return nil, d.err
	}
	return &generation.DispatchResult{
		BatchID: "batch-1",
		Assets: []entity.Asset{
			{URL: "/assets/a.png", Status: entity.AssetStatusCompleted},
		},
	}, nil
}

// ---- helpers ----

type testEnv struct {
	orch       *Orchestrator
	convs      *fakeConvRepo
	msgs       *fakeMsgRepo
	states     *fakeStateRepo
	planner    *fakePlanner
	classifier *fakeClassifier
	prefs      *fakePreferences
	dispatcher *fakeDispatcher
}

func newTestEnv(result *wfmodel.PlannerResult, plannerErr error) *testEnv {
	env := &testEnv{
		convs:      newFakeConvRepo(),
		msgs:       &fakeMsgRepo{},
		states:     newFakeStateRepo(),
		planner:    &fakePlanner{result: result, err: plannerErr},
		classifier: &fakeClassifier{},
		prefs:      &fakePreferences{},
		dispatcher: &fakeDispatcher{},
	}
	env.dispatcher.stateRepo = env.states
	env.orch = NewOrchestrator(
		fakeTx{},
		env.convs,
		env.msgs,
		env.states,
		env.planner,
		env.classifier,
		&fakeHistory{},
		env.prefs,
		env.dispatcher,
		&config.MediaConfig{
			Image: config.ImageProviderConfig{Model: "gpt-image-1"},
			Video: config.VideoProviderConfig{Model: "sora-1.0"},
		},
	)
	return env
}

func questionResult(q, draft string) *wfmodel.PlannerResult {
	r := &wfmodel.PlannerResult{
		Type:        wfmodel.PlannerTypeQuestion,
		Questions:   []string{q},
		DraftPrompt: draft,
	}
	_ = r.Normalize()
	return r
}

func finalResult(prompt string) *wfmodel.PlannerResult {
	r := &wfmodel.PlannerResult{
		Type:        wfmodel.PlannerTypeFinal,
		FinalPrompt: prompt,
	}
	_ = r.Normalize()
	return r
}

// ---- tests ----

func TestRunTurnRejectsEmptyInput(t *testing.T) {
	env := newTestEnv(questionResult("q", "d"), nil)

	_, err := env.orch.RunTurn(context.Background(), &TurnRequest{
		UserID:  "user-1",
		Message: "   ",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))

	// 校验失败不应产生任何落库
	assert.Empty(t, env.msgs.msgs)
	assert.Empty(t, env.convs.convs)
}

func TestRunTurnAcceptsImageOnlyInput(t *testing.T) {
	env := newTestEnv(questionResult("要什么风格?", "基于参考图的生成"), nil)

	result, err := env.orch.RunTurn(context.Background(), &TurnRequest{
		UserID:    "user-1",
		Message:   "",
		ImageURLs: []string{"https://example.com/ref.png"},
	})
	require.NoError(t, err)
	assert.Equal(t, wfmodel.PlannerTypeQuestion, result.Type)
	require.NotNil(t, env.planner.gotIn)
	assert.Equal(t, []string{"https://example.com/ref.png"}, env.planner.gotIn.ImageURLs)
}

func TestRunTurnQuestionCreatesConversationAndState(t *testing.T) {
	env := newTestEnv(questionResult("偏写实还是插画?", "一张狐狸海报"), nil)

	result, err := env.orch.RunTurn(context.Background(), &TurnRequest{
		UserID:  "user-1",
		Message: "帮我画一张狐狸海报",
	})
	require.NoError(t, err)

	assert.Equal(t, wfmodel.PlannerTypeQuestion, result.Type)
	assert.Equal(t, "偏写实还是插画?", result.Question)
	assert.Equal(t, "一张狐狸海报", result.DraftPrompt)
	assert.NotEmpty(t, result.ConversationID)

	// 用户消息和助手问题各落库一条
	require.Len(t, env.msgs.msgs, 2)
	assert.Equal(t, entity.RoleUser, env.msgs.msgs[0].Role)
	assert.Equal(t, "帮我画一张狐狸海报", env.msgs.msgs[0].Content)
	assert.Equal(t, entity.RoleAssistant, env.msgs.msgs[1].Role)
	assert.Equal(t, "偏写实还是插画?", env.msgs.msgs[1].Content)

	// 协商状态记录了草稿与待答问题
	state := env.states.states[result.ConversationID]
	require.NotNil(t, state)
	assert.Equal(t, "一张狐狸海报", state.DraftPrompt)
	assert.Equal(t, []string{"偏写实还是插画?"}, state.PendingQuestions)
}

func TestRunTurnQuestionOverwritesDraft(t *testing.T) {
	env := newTestEnv(questionResult("第一问", "草稿 v1"), nil)

	first, err := env.orch.RunTurn(context.Background(), &TurnRequest{
		UserID:  "user-1",
		Message: "画只猫",
	})
	require.NoError(t, err)

	env.planner.result = questionResult("第二问", "草稿 v2")
	_, err = env.orch.RunTurn(context.Background(), &TurnRequest{
		UserID:         "user-1",
		ConversationID: first.ConversationID,
		Message:        "要水彩的",
	})
	require.NoError(t, err)

	state := env.states.states[first.ConversationID]
	require.NotNil(t, state)
	assert.Equal(t, "草稿 v2", state.DraftPrompt)
	assert.Equal(t, []string{"第二问"}, state.PendingQuestions)
	// 上一轮的草稿和问题注入了本轮规划输入
	assert.Equal(t, "草稿 v1", env.planner.gotIn.DraftPrompt)
	assert.Equal(t, "第一问", env.planner.gotIn.PendingQuestion)
}

func TestRunTurnQuestionDraftFallback(t *testing.T) {
	// 规划器没给草稿，第一轮回退到用户原始消息
	env := newTestEnv(questionResult("第一问", ""), nil)

	first, err := env.orch.RunTurn(context.Background(), &TurnRequest{
		UserID:  "user-1",
		Message: "画只猫",
	})
	require.NoError(t, err)

	state := env.states.states[first.ConversationID]
	require.NotNil(t, state)
	assert.Equal(t, "画只猫", state.DraftPrompt)

	// 后续轮规划器仍没给草稿，保留既有草稿而不是覆盖为新消息
	env.planner.result = questionResult("第二问", "")
	_, err = env.orch.RunTurn(context.Background(), &TurnRequest{
		UserID:         "user-1",
		ConversationID: first.ConversationID,
		Message:        "要水彩的",
	})
	require.NoError(t, err)

	state = env.states.states[first.ConversationID]
	require.NotNil(t, state)
	assert.Equal(t, "画只猫", state.DraftPrompt)
}

func TestRunTurnFinalClearsStateBeforeDispatch(t *testing.T) {
	env := newTestEnv(questionResult("q", "草稿"), nil)

	first, err := env.orch.RunTurn(context.Background(), &TurnRequest{
		UserID:  "user-1",
		Message: "画只猫",
	})
	require.NoError(t, err)
	require.NotNil(t, env.states.states[first.ConversationID])

	env.planner.result = finalResult("a watercolor cat, soft light")
	result, err := env.orch.RunTurn(context.Background(), &TurnRequest{
		UserID:         "user-1",
		ConversationID: first.ConversationID,
		Message:        "就这样吧",
	})
	require.NoError(t, err)

	assert.Equal(t, wfmodel.PlannerTypeFinal, result.Type)
	assert.Equal(t, "a watercolor cat, soft light", result.FinalPrompt)
	require.NotNil(t, result.Generation)
	assert.Equal(t, "batch-1", result.Generation.BatchID)

	// 派发时协商状态已被清除
	assert.Nil(t, env.dispatcher.stateAtCall)
	assert.Nil(t, env.states.states[first.ConversationID])

	// 派发参数带上了默认值
	require.NotNil(t, env.dispatcher.got)
	assert.Equal(t, wfmodel.DefaultNumOutputs, env.dispatcher.got.NumOutputs)
	assert.Equal(t, wfmodel.DefaultAspectRatio, env.dispatcher.got.AspectRatio)
	assert.Equal(t, entity.MediaTypeImage, env.dispatcher.got.MediaType)
}

func TestRunTurnFinalStateStaysClearedOnDispatchFailure(t *testing.T) {
	env := newTestEnv(finalResult("a cat"), nil)
	env.dispatcher.err = apperrors.New(apperrors.CodeGenerationFailed, "provider down")

	result, err := env.orch.RunTurn(context.Background(), &TurnRequest{
		UserID:  "user-1",
		Message: "画只猫，就按默认来",
	})
	require.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeGenerationFailed))

	// 派发失败后状态保持已清除，重试从干净状态开始
	for _, conv := range env.convs.convs {
		assert.Nil(t, env.states.states[conv.ID])
	}
}

func TestRunTurnFinalAppendsMemory(t *testing.T) {
	env := newTestEnv(finalResult("a watercolor cat"), nil)

	result, err := env.orch.RunTurn(context.Background(), &TurnRequest{
		UserID:    "user-1",
		Message:   "画只猫",
		ImageURLs: []string{"https://example.com/ref.png"},
	})
	require.NoError(t, err)

	// 最终提示词沉淀为文本记忆，参考图沉淀为图片记忆
	require.Len(t, env.prefs.appended, 2)
	text := env.prefs.appended[0]
	assert.Equal(t, entity.MemoryTypeText, text.Type)
	assert.Equal(t, "a watercolor cat", text.Text)
	assert.Equal(t, result.ConversationID, text.ConversationID)

	image := env.prefs.appended[1]
	assert.Equal(t, entity.MemoryTypeImage, image.Type)
	assert.Equal(t, "https://example.com/ref.png", image.ImageURL)
	assert.Equal(t, result.ConversationID, image.ConversationID)
}

func TestRunTurnQuestionDoesNotAppendMemory(t *testing.T) {
	env := newTestEnv(questionResult("q", "草稿"), nil)

	_, err := env.orch.RunTurn(context.Background(), &TurnRequest{
		UserID:  "user-1",
		Message: "画只猫",
	})
	require.NoError(t, err)
	assert.Empty(t, env.prefs.appended)
}

func TestRunTurnMemoryFailureDoesNotBlockDispatch(t *testing.T) {
	env := newTestEnv(finalResult("a cat"), nil)
	env.prefs.err = errors.New("memory store down")

	result, err := env.orch.RunTurn(context.Background(), &TurnRequest{
		UserID:  "user-1",
		Message: "画只猫",
	})
	require.NoError(t, err)
	require.NotNil(t, result.Generation)
	assert.Equal(t, "batch-1", result.Generation.BatchID)
}

func TestRunTurnVideoIntent(t *testing.T) {
	env := newTestEnv(finalResult("a timelapse of clouds"), nil)
	seconds := 8
	env.classifier.result = &wfmodel.IntentResult{
		OutputType:   wfmodel.IntentOutputVideo,
		Mode:         wfmodel.IntentModeGenerate,
		VideoSeconds: &seconds,
	}

	_, err := env.orch.RunTurn(context.Background(), &TurnRequest{
		UserID:  "user-1",
		Message: "来一段延时云海",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.MediaTypeVideo, env.dispatcher.got.MediaType)
	assert.Equal(t, "sora-1.0", env.dispatcher.got.Model)
	require.NotNil(t, env.dispatcher.got.VideoSeconds)
	assert.Equal(t, 8, *env.dispatcher.got.VideoSeconds)
}

func TestRunTurnTransformModeCarriesSourceImage(t *testing.T) {
	env := newTestEnv(finalResult("restyle the photo as watercolor"), nil)
	env.classifier.result = &wfmodel.IntentResult{
		OutputType: wfmodel.IntentOutputImage,
		Mode:       wfmodel.IntentModeTransform,
	}

	_, err := env.orch.RunTurn(context.Background(), &TurnRequest{
		UserID:    "user-1",
		Message:   "把这张照片改成水彩风",
		ImageURLs: []string{"https://example.com/photo.png"},
	})
	require.NoError(t, err)
	assert.Equal(t, wfmodel.IntentModeTransform, env.dispatcher.got.Mode)
	assert.Equal(t, "https://example.com/photo.png", env.dispatcher.got.SourceImageURL)
	// 分类器拿到了本轮带图的信号
	require.NotNil(t, env.classifier.gotIn)
	assert.True(t, env.classifier.gotIn.HasImage)
}

func TestRunTurnInvalidIntentFallsBackToImage(t *testing.T) {
	env := newTestEnv(finalResult("a cat"), nil)
	env.classifier.result = &wfmodel.IntentResult{
		OutputType:   wfmodel.IntentOutputInvalid,
		ErrorMessage: "not a generation request",
	}

	_, err := env.orch.RunTurn(context.Background(), &TurnRequest{
		UserID:  "user-1",
		Message: "画只猫",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.MediaTypeImage, env.dispatcher.got.MediaType)
	assert.Equal(t, wfmodel.IntentModeGenerate, env.dispatcher.got.Mode)
}

func TestRunTurnPlannerErrorKeepsUserMessage(t *testing.T) {
	env := newTestEnv(nil, apperrors.New(apperrors.CodeProviderTransient, "rate limited"))

	_, err := env.orch.RunTurn(context.Background(), &TurnRequest{
		UserID:  "user-1",
		Message: "画只猫",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeProviderTransient))

	// 用户消息已落库，但没有助手消息也没有状态写入
	require.Len(t, env.msgs.msgs, 1)
	assert.Equal(t, entity.RoleUser, env.msgs.msgs[0].Role)
	assert.Empty(t, env.states.states)
}

func TestRunTurnRejectsForeignConversation(t *testing.T) {
	env := newTestEnv(questionResult("q", "d"), nil)

	first, err := env.orch.RunTurn(context.Background(), &TurnRequest{
		UserID:  "owner",
		Message: "画只猫",
	})
	require.NoError(t, err)

	_, err = env.orch.RunTurn(context.Background(), &TurnRequest{
		UserID:         "intruder",
		ConversationID: first.ConversationID,
		Message:        "继续",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeForbidden))
}

func TestRunTurnUnknownConversation(t *testing.T) {
	env := newTestEnv(questionResult("q", "d"), nil)

	_, err := env.orch.RunTurn(context.Background(), &TurnRequest{
		UserID:         "user-1",
		ConversationID: uuid.NewString(),
		Message:        "继续",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeConversationNotFound))
}

func TestRunTurnInjectsPreferencesBlock(t *testing.T) {
	env := newTestEnv(questionResult("q", "d"), nil)
	env.prefs.block = "Known user preferences:\n- 喜欢水彩\n"

	_, err := env.orch.RunTurn(context.Background(), &TurnRequest{
		UserID:  "user-1",
		Message: "画只猫",
	})
	require.NoError(t, err)
	assert.Equal(t, env.prefs.block, env.planner.gotIn.PreferencesBlock)
}

func TestDeriveTitle(t *testing.T) {
	assert.Equal(t, "画只猫", deriveTitle("画只猫"))
	assert.Equal(t, "新的创作", deriveTitle("   "))

	long := make([]rune, 0, 80)
	for i := 0; i < 80; i++ {
		long = append(long, '猫')
	}
	title := deriveTitle(string(long))
	assert.Equal(t, 40, len([]rune(title)))
}

func TestRunTurnPropagatesNonAppErrors(t *testing.T) {
	env := newTestEnv(nil, errors.New("boom"))

	_, err := env.orch.RunTurn(context.Background(), &TurnRequest{
		UserID:  "user-1",
		Message: "画只猫",
	})
	require.Error(t, err)
}
