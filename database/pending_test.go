package database

import (
	"testing"
	"time"

	"peipao-bot/database/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitPendingActivationOverwrites(t *testing.T) {
	setupTestDB(t)

	require.NoError(t, SubmitPendingActivation("ABC123", "U1"))
	// 同一末五码再次提交，后写者覆盖
	require.NoError(t, SubmitPendingActivation("ABC123", "U2"))

	records, err := ListRecentPendingActivations(10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "ABC123", records[0].AccountRef)
	assert.Equal(t, "U2", records[0].UserId)
}

func TestApprovePendingActivationPopsOnce(t *testing.T) {
	setupTestDB(t)

	require.NoError(t, SubmitPendingActivation("ABC123", "U1"))

	userId, err := ApprovePendingActivation("ABC123")
	require.NoError(t, err)
	assert.Equal(t, "U1", userId)

	// 第二次审批同一笔必须拿到 not-found，不能重复弹出
	_, err = ApprovePendingActivation("ABC123")
	assert.ErrorIs(t, err, ErrNotFound)

	records, err := ListRecentPendingActivations(10)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestApprovePendingActivationUnknownRef(t *testing.T) {
	setupTestDB(t)

	_, err := ApprovePendingActivation("NOPE")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListRecentPendingActivationsOrder(t *testing.T) {
	setupTestDB(t)

	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	for i, ref := range []string{"A", "B", "C"} {
		record := &model.PendingActivation{
			AccountRef: ref,
			UserId:     "U" + ref,
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, GetDB().Create(record).Error)
	}

	records, err := ListRecentPendingActivations(2)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "C", records[0].AccountRef)
	assert.Equal(t, "B", records[1].AccountRef)
}
