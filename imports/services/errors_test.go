package services

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"org-registry-backend/db/models"

	"github.com/stretchr/testify/assert"
)

func TestRootMessageUnwrapsToInnermostCause(t *testing.T) {
	root := errors.New("connection refused")
	wrapped := fmt.Errorf("line 3: %w", &TransactionError{Reason: "insert failed", Err: root})

	assert.Equal(t, "connection refused", RootMessage(wrapped))
}

func TestRootMessageWithoutCauseChain(t *testing.T) {
	assert.Equal(t, "import file parse failed: file is empty", RootMessage(&ParseError{Reason: "file is empty"}))
	assert.Equal(t, "", RootMessage(nil))
}

func TestTruncateErrorMessage(t *testing.T) {
	short := "something broke"
	assert.Equal(t, short, TruncateErrorMessage(short))

	long := strings.Repeat("x", models.ErrorMessageMaxLen+500)
	truncated := TruncateErrorMessage(long)
	assert.Len(t, truncated, models.ErrorMessageMaxLen)

	exact := strings.Repeat("y", models.ErrorMessageMaxLen)
	assert.Equal(t, exact, TruncateErrorMessage(exact))
}

func TestTruncateErrorMessageKeepsValidUTF8(t *testing.T) {
	// Cyrillic runes are two bytes each; an offset ASCII prefix puts the byte
	// limit in the middle of a rune.
	long := "x" + strings.Repeat("ж", models.ErrorMessageMaxLen)
	truncated := TruncateErrorMessage(long)

	assert.True(t, utf8.ValidString(truncated))
	assert.LessOrEqual(t, len(truncated), models.ErrorMessageMaxLen)
	assert.True(t, strings.HasPrefix(long, truncated))
}

func TestStorageErrorMessage(t *testing.T) {
	err := &StorageError{Op: "upload", Key: "abc_file.csv", Err: errors.New("minio down")}
	assert.Contains(t, err.Error(), "upload")
	assert.Contains(t, err.Error(), "abc_file.csv")
	assert.Equal(t, "minio down", RootMessage(err))
}
