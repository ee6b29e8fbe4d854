package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// setupTestDB 每个测试用独立的 sqlite 文件，互不串数据。
func setupTestDB(t *testing.T) {
	t.Helper()
	err := InitDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
}
