// internal/common/errors/errors_test.go
package errors

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStandardError_IsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("create site: %w", NewSiteExistsError("/tmp/x"))

	assert.True(t, stderrors.Is(err, ErrSiteExists))
	assert.False(t, stderrors.Is(err, ErrSiteNotFound))
	assert.Equal(t, ErrCodeSiteExists, CodeOf(err))
}

func TestStandardError_UnwrapsCause(t *testing.T) {
	err := NewConfigLoadError("./config.json", fs.ErrNotExist)

	assert.True(t, stderrors.Is(err, fs.ErrNotExist))
	assert.True(t, err.Retryable)
	assert.Equal(t, "./config.json", err.Metadata["source"])
	assert.Contains(t, err.Error(), "CONFIG_LOAD_FAILED")
}

func TestCodeOf_PlainError(t *testing.T) {
	assert.Equal(t, ErrorCode(""), CodeOf(stderrors.New("plain")))
	assert.Equal(t, ErrorCode(""), CodeOf(nil))
}

func TestGetErrorCategory(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want string
	}{
		{ErrCodeConfigLoadFailed, "LOAD"},
		{ErrCodeConfigParseFailed, "LOAD"},
		{ErrCodeMissingConfigSource, "LOAD"},
		{ErrCodeInvalidMode, "LOAD"},
		{ErrCodeMissingContainer, "CONTAINER"},
		{ErrCodeTemplateNotFound, "LOOKUP"},
		{ErrCodeTemplateExists, "LOOKUP"},
		{ErrCodeSiteExists, "SITE"},
		{ErrCodePublishFailed, "SITE"},
		{ErrorCode("SOMETHING_ELSE"), "OTHER"},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, GetErrorCategory(tt.code))
		})
	}
}

func TestWithMetadata(t *testing.T) {
	err := NewTemplateNotFoundError("bakery").WithMetadata("available", 8)
	assert.Equal(t, 8, err.Metadata["available"])
	assert.Equal(t, "templateId: bakery", err.Details)
}
