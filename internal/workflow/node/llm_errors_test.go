package node

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/VenkataAditya897/vizzy-conversational/pkg/errors"
)

func TestIsTransientProviderError(t *testing.T) {
	transient := []error{
		errors.New("429 Too Many Requests"),
		errors.New("Rate limit exceeded for gpt-4o"),
		errors.New("Incorrect API key provided"),
		errors.New("dial tcp: connection refused"),
		errors.New("request timed out"),
		errors.New("503 Service Unavailable"),
		context.DeadlineExceeded,
	}
	for _, err := range transient {
		assert.True(t, IsTransientProviderError(err), "expected transient: %v", err)
	}

	assert.False(t, IsTransientProviderError(nil))
	assert.False(t, IsTransientProviderError(errors.New("invalid request: prompt too long")))
}

func TestClassifyProviderError(t *testing.T) {
	assert.NoError(t, ClassifyProviderError(nil))

	err := ClassifyProviderError(errors.New("rate limit exceeded"))
	assert.True(t, apperrors.IsCode(err, apperrors.CodeProviderTransient))

	err = ClassifyProviderError(errors.New("model refused"))
	assert.True(t, apperrors.IsCode(err, apperrors.CodeProtocol))

	// 已归类的错误不再二次包装
	orig := apperrors.Protocol("bad payload")
	assert.Equal(t, orig, ClassifyProviderError(orig))
}

func TestIsResponseFormatUnsupported(t *testing.T) {
	assert.True(t, IsResponseFormatUnsupported(errors.New("Unknown parameter: 'response_format'")))
	assert.True(t, IsResponseFormatUnsupported(errors.New("json_schema is not supported by this model")))
	assert.False(t, IsResponseFormatUnsupported(errors.New("rate limit")))
	assert.False(t, IsResponseFormatUnsupported(nil))
}
