package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/VenkataAditya897/vizzy-conversational/pkg/errors"
)

func TestPlannerResultNormalizeQuestion(t *testing.T) {
	t.Run("多个问题截断到一条", func(t *testing.T) {
		r := &PlannerResult{
			Type:      PlannerTypeQuestion,
			Questions: []string{"风格偏写实还是插画?", "要什么配色?", "横版还是竖版?"},
		}
		require.NoError(t, r.Normalize())
		assert.Equal(t, []string{"风格偏写实还是插画?"}, r.Questions)
	})

	t.Run("question 形态强制清空 final_prompt", func(t *testing.T) {
		r := &PlannerResult{
			Type:        PlannerTypeQuestion,
			Questions:   []string{"要几张?"},
			FinalPrompt: "a cat",
		}
		require.NoError(t, r.Normalize())
		assert.Empty(t, r.FinalPrompt)
	})

	t.Run("空白问题被过滤", func(t *testing.T) {
		r := &PlannerResult{
			Type:      PlannerTypeQuestion,
			Questions: []string{"  ", "什么场景?"},
		}
		require.NoError(t, r.Normalize())
		assert.Equal(t, []string{"什么场景?"}, r.Questions)
	})

	t.Run("没有可用问题时兜底为默认问题", func(t *testing.T) {
		r := &PlannerResult{Type: PlannerTypeQuestion, Questions: []string{"  "}}
		require.NoError(t, r.Normalize())
		assert.Equal(t, []string{DefaultQuestion}, r.Questions)
	})

	t.Run("草稿去除首尾空白", func(t *testing.T) {
		r := &PlannerResult{
			Type:        PlannerTypeQuestion,
			Questions:   []string{"什么风格?"},
			DraftPrompt: "  一张猫的海报  ",
		}
		require.NoError(t, r.Normalize())
		assert.Equal(t, "一张猫的海报", r.DraftPrompt)
	})
}

func TestPlannerResultNormalizeFinal(t *testing.T) {
	t.Run("final 形态强制清空问题列表", func(t *testing.T) {
		r := &PlannerResult{
			Type:        PlannerTypeFinal,
			FinalPrompt: "a watercolor fox in an autumn forest",
			Questions:   []string{"残留的问题"},
		}
		require.NoError(t, r.Normalize())
		assert.Nil(t, r.Questions)
		assert.True(t, r.IsFinal())
	})

	t.Run("final_prompt 空白视为协议错误", func(t *testing.T) {
		r := &PlannerResult{Type: PlannerTypeFinal, FinalPrompt: "   "}
		err := r.Normalize()
		assert.True(t, apperrors.IsCode(err, apperrors.CodeProtocol))
	})
}

func TestPlannerResultNormalizeType(t *testing.T) {
	t.Run("缺少 type", func(t *testing.T) {
		r := &PlannerResult{}
		assert.True(t, apperrors.IsCode(r.Normalize(), apperrors.CodeProtocol))
	})

	t.Run("非法 type", func(t *testing.T) {
		r := &PlannerResult{Type: "chat"}
		assert.True(t, apperrors.IsCode(r.Normalize(), apperrors.CodeProtocol))
	})
}

func TestPlannerResultNormalizeDefaults(t *testing.T) {
	r := &PlannerResult{
		Type:        PlannerTypeFinal,
		FinalPrompt: "a cat",
	}
	require.NoError(t, r.Normalize())
	assert.Equal(t, DefaultNumOutputs, r.NumOutputs)
	assert.Equal(t, DefaultAspectRatio, r.AspectRatio)

	r2 := &PlannerResult{
		Type:        PlannerTypeFinal,
		FinalPrompt: "a cat",
		NumOutputs:  2,
		AspectRatio: "16:9",
	}
	require.NoError(t, r2.Normalize())
	assert.Equal(t, 2, r2.NumOutputs)
	assert.Equal(t, "16:9", r2.AspectRatio)
}

func TestIntentResultNormalizeOutputType(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"image", IntentOutputImage},
		{"VIDEO", IntentOutputVideo},
		{" Image ", IntentOutputImage},
		{"audio", IntentOutputInvalid},
		{"", IntentOutputInvalid},
	}
	for _, tc := range cases {
		r := &IntentResult{OutputType: tc.in}
		r.Normalize()
		assert.Equal(t, tc.want, r.OutputType, "input %q", tc.in)
	}
}

func TestIntentResultNormalizeMode(t *testing.T) {
	r := &IntentResult{OutputType: "image", Mode: "Transform"}
	r.Normalize()
	assert.Equal(t, IntentModeTransform, r.Mode)

	r2 := &IntentResult{OutputType: "image", Mode: "edit"}
	r2.Normalize()
	assert.Equal(t, IntentModeGenerate, r2.Mode)
}

func TestIntentResultNormalizeClamps(t *testing.T) {
	r := &IntentResult{OutputType: "image", NumOutputs: 9, AspectRatio: "21:9"}
	r.Normalize()
	assert.Equal(t, 4, r.NumOutputs)
	assert.Equal(t, DefaultAspectRatio, r.AspectRatio)

	r2 := &IntentResult{OutputType: "image", NumOutputs: 0, AspectRatio: "4:5"}
	r2.Normalize()
	assert.Equal(t, 1, r2.NumOutputs)
	assert.Equal(t, "4:5", r2.AspectRatio)
}

func TestIntentResultNormalizeVideoSeconds(t *testing.T) {
	long := 30
	r := &IntentResult{OutputType: "video", VideoSeconds: &long}
	r.Normalize()
	require.NotNil(t, r.VideoSeconds)
	assert.Equal(t, MaxVideoSeconds, *r.VideoSeconds)

	short := 2
	r2 := &IntentResult{OutputType: "video", VideoSeconds: &short}
	r2.Normalize()
	require.NotNil(t, r2.VideoSeconds)
	assert.Equal(t, MinVideoSeconds, *r2.VideoSeconds)

	leak := 8
	r3 := &IntentResult{OutputType: "image", VideoSeconds: &leak}
	r3.Normalize()
	assert.Nil(t, r3.VideoSeconds)
}
