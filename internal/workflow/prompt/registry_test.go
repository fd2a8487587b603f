package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetKnownTemplates(t *testing.T) {
	for _, name := range []string{PlannerV1, VisionPlannerV1, IntentV1} {
		tpl, err := Get(name)
		require.NoError(t, err, "template %s", name)
		assert.NotEmpty(t, tpl)
	}
}

func TestGetUnknownTemplate(t *testing.T) {
	_, err := Get("no_such_template")
	require.Error(t, err)
}

// 规划器策略的关键条款必须出现在两个规划模板里：
// 提示词覆盖主体/环境/光线/氛围/构图/风格，正文排除技术元数据，
// 确认与否从对话语境判断而不做关键词匹配。
func TestPlannerTemplatesCarryPromptPolicy(t *testing.T) {
	for _, name := range []string{PlannerV1, VisionPlannerV1} {
		tpl, err := Get(name)
		require.NoError(t, err)

		for _, clause := range []string{
			"subject, environment, lighting, mood, composition, and style",
			"resolution, camera specs, aspect ratio",
			"never by matching specific keywords",
			"ONE clarifying question",
		} {
			assert.Contains(t, tpl, clause, "template %s", name)
		}
	}
}
