package frame

import (
	"context"
	"testing"

	"github.com/Regyyyy/gamify-oss-app-sub000/hook"
	"github.com/Regyyyy/gamify-oss-app-sub000/model"
	"github.com/Regyyyy/gamify-oss-app-sub000/store"
	"github.com/Regyyyy/gamify-oss-app-sub000/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	return NewService(store.New(db, 0), nil, testutil.Logger()), db
}

func unlock(t *testing.T, svc *Service, userID, frameID int64) bool {
	t.Helper()
	var inserted bool
	err := svc.store.Transaction(context.Background(), func(tx *store.Store) error {
		var err error
		inserted, err = svc.Unlock(context.Background(), tx, userID, frameID)
		return err
	})
	require.NoError(t, err)
	return inserted
}

func activeCount(t *testing.T, db *gorm.DB, userID int64) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&model.UserAvatarFrame{}).
		Where("user_id = ? AND is_used = ?", userID, true).Count(&n).Error)
	return n
}

func TestUnlock_InsertsUnequippedOnce(t *testing.T) {
	svc, db := newService(t)
	u := testutil.NewUser(t, db, "alice", 0, 1)

	assert.True(t, unlock(t, svc, u.ID, 2))
	assert.False(t, unlock(t, svc, u.ID, 2))

	var rows []model.UserAvatarFrame
	require.NoError(t, db.Where("user_id = ?", u.ID).Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.False(t, rows[0].IsUsed)
}

func TestUnlock_DefaultFrameIsImplicit(t *testing.T) {
	svc, db := newService(t)
	u := testutil.NewUser(t, db, "bob", 0, 1)
	assert.False(t, unlock(t, svc, u.ID, model.DefaultFrameID))
}

func TestUnlock_UnknownFrame(t *testing.T) {
	svc, db := newService(t)
	u := testutil.NewUser(t, db, "carol", 0, 1)
	err := svc.store.Transaction(context.Background(), func(tx *store.Store) error {
		_, err := svc.Unlock(context.Background(), tx, u.ID, 999)
		return err
	})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSetActive_NotUnlocked(t *testing.T) {
	svc, db := newService(t)
	u := testutil.NewUser(t, db, "dave", 0, 1)
	err := svc.SetActive(context.Background(), u.ID, 3)
	assert.ErrorIs(t, err, ErrNotUnlocked)
}

func TestSetActive_SwitchKeepsSingleActive(t *testing.T) {
	svc, db := newService(t)
	u := testutil.NewUser(t, db, "erin", 0, 1)
	unlock(t, svc, u.ID, 2)
	unlock(t, svc, u.ID, 3)
	ctx := context.Background()

	require.NoError(t, svc.SetActive(ctx, u.ID, 2))
	assert.Equal(t, int64(1), activeCount(t, db, u.ID))
	active, err := svc.Active(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), active)

	require.NoError(t, svc.SetActive(ctx, u.ID, 3))
	assert.Equal(t, int64(1), activeCount(t, db, u.ID))
	active, _ = svc.Active(ctx, u.ID)
	assert.Equal(t, int64(3), active)
}

func TestSetActive_DefaultClearsAll(t *testing.T) {
	svc, db := newService(t)
	u := testutil.NewUser(t, db, "frank", 0, 1)
	unlock(t, svc, u.ID, 4)
	ctx := context.Background()

	require.NoError(t, svc.SetActive(ctx, u.ID, 4))
	require.NoError(t, svc.SetActive(ctx, u.ID, model.DefaultFrameID))
	assert.Equal(t, int64(0), activeCount(t, db, u.ID))

	active, err := svc.Active(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultFrameID, active)
}

func TestSetActive_FailedSwitchKeepsCurrent(t *testing.T) {
	svc, db := newService(t)
	u := testutil.NewUser(t, db, "gina", 0, 1)
	unlock(t, svc, u.ID, 2)
	ctx := context.Background()
	require.NoError(t, svc.SetActive(ctx, u.ID, 2))

	assert.ErrorIs(t, svc.SetActive(ctx, u.ID, 5), ErrNotUnlocked)
	active, _ := svc.Active(ctx, u.ID)
	assert.Equal(t, int64(2), active)
}

func TestSetActive_SequenceInvariant(t *testing.T) {
	svc, db := newService(t)
	u := testutil.NewUser(t, db, "henry", 0, 1)
	for _, f := range []int64{2, 3, 4} {
		unlock(t, svc, u.ID, f)
	}
	ctx := context.Background()
	for _, f := range []int64{2, 4, 1, 3, 3, 5, 2, 1, 4} {
		_ = svc.SetActive(ctx, u.ID, f)
		assert.LessOrEqual(t, activeCount(t, db, u.ID), int64(1))
	}
}

func TestList_DefaultFirstAndActiveFlag(t *testing.T) {
	svc, db := newService(t)
	u := testutil.NewUser(t, db, "ivy", 0, 1)
	ctx := context.Background()

	list, err := svc.List(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, model.DefaultFrameID, list[0].ID)
	assert.True(t, list[0].Active)

	unlock(t, svc, u.ID, 3)
	require.NoError(t, svc.SetActive(ctx, u.ID, 3))
	list, err = svc.List(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.False(t, list[0].Active)
	assert.Equal(t, int64(3), list[1].ID)
	assert.True(t, list[1].Active)
}

func TestNotifyUnlocked_FiresHook(t *testing.T) {
	db := testutil.SetupTestDB(t)
	hc := hook.NewHookCenter(nil)
	svc := NewService(store.New(db, 0), hc, testutil.Logger())

	var got []Unlocked
	hc.Register(hook.OnFrameUnlocked, 0, "test", func(_ context.Context, _ string, d interface{}) (interface{}, error) {
		got = append(got, d.(Unlocked))
		return d, nil
	})
	svc.NotifyUnlocked(context.Background(), 7, 4)
	require.Len(t, got, 1)
	assert.Equal(t, Unlocked{UserID: 7, FrameID: 4}, got[0])
}
