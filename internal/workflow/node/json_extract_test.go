package node

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/VenkataAditya897/vizzy-conversational/pkg/errors"
)

func TestExtractJSON(t *testing.T) {
	t.Run("纯 JSON", func(t *testing.T) {
		out, err := ExtractJSON(`{"type":"final"}`)
		require.NoError(t, err)
		assert.Equal(t, `{"type":"final"}`, out)
	})

	t.Run("markdown 代码块", func(t *testing.T) {
		out, err := ExtractJSON("```json\n{\"type\":\"question\"}\n```")
		require.NoError(t, err)
		assert.Equal(t, `{"type":"question"}`, out)
	})

	t.Run("前后夹杂解释文字", func(t *testing.T) {
		out, err := ExtractJSON("Here is the result:\n{\"a\":1}\nHope this helps!")
		require.NoError(t, err)
		assert.Equal(t, `{"a":1}`, out)
	})

	t.Run("嵌套对象取到最外层", func(t *testing.T) {
		out, err := ExtractJSON(`{"a":{"b":2}}`)
		require.NoError(t, err)
		assert.Equal(t, `{"a":{"b":2}}`, out)
	})

	t.Run("空输出", func(t *testing.T) {
		_, err := ExtractJSON("   ")
		assert.True(t, apperrors.IsCode(err, apperrors.CodeProtocol))
	})

	t.Run("不含 JSON", func(t *testing.T) {
		_, err := ExtractJSON("I cannot help with that.")
		assert.True(t, apperrors.IsCode(err, apperrors.CodeProtocol))
	})
}
