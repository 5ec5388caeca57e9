package quest

import (
	"context"
	"errors"
	"testing"

	"github.com/Regyyyy/gamify-oss-app-sub000/game/xp"
	"github.com/Regyyyy/gamify-oss-app-sub000/hook"
	"github.com/Regyyyy/gamify-oss-app-sub000/model"
	"github.com/Regyyyy/gamify-oss-app-sub000/store"
	"github.com/Regyyyy/gamify-oss-app-sub000/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type recordingRules struct {
	calls [][2]int64
	grant []int64
	err   error
}

func (r *recordingRules) OnQuestCompleted(_ context.Context, userID, questID int64) ([]int64, error) {
	r.calls = append(r.calls, [2]int64{userID, questID})
	return r.grant, r.err
}

func setup(t *testing.T, rules Rules) (*Service, *gorm.DB, *hook.HookCenter) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	st := store.New(db, 0)
	hc := hook.NewHookCenter(testutil.Logger())
	ledger := xp.NewLedger(st, nil, hc, testutil.Logger())
	return NewService(st, ledger, rules, hc, testutil.Logger()), db, hc
}

func userXP(t *testing.T, db *gorm.DB, id int64) int64 {
	t.Helper()
	var u model.User
	require.NoError(t, db.First(&u, id).Error)
	return u.XP
}

func TestTake_CreatesOnce(t *testing.T) {
	svc, db, _ := setup(t, nil)
	u := testutil.NewUser(t, db, "alice", 0, 1)
	ctx := context.Background()

	created, err := svc.Take(ctx, u.ID, 1)
	require.NoError(t, err)
	assert.True(t, created)
	created, err = svc.Take(ctx, u.ID, 1)
	require.NoError(t, err)
	assert.False(t, created)

	var n int64
	db.Model(&model.TakenQuest{}).Where("user_id = ?", u.ID).Count(&n)
	assert.Equal(t, int64(1), n)
}

func TestTake_UnknownQuest(t *testing.T) {
	svc, db, _ := setup(t, nil)
	u := testutil.NewUser(t, db, "bob", 0, 1)
	_, err := svc.Take(context.Background(), u.ID, 999)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSubmit_FirstGrantsXPAndRunsRules(t *testing.T) {
	rules := &recordingRules{grant: []int64{1}}
	svc, db, _ := setup(t, rules)
	u := testutil.NewUser(t, db, "carol", 0, 1)

	c, err := svc.Submit(context.Background(), u.ID, 1, []string{"uploads/1.png"})
	require.NoError(t, err)
	assert.True(t, c.First)
	require.NotNil(t, c.XP)
	assert.Equal(t, xp.SourceQuestDirect, c.XP.Source)
	assert.Equal(t, int64(50), c.XP.NewXP)
	assert.Equal(t, []int64{1}, c.Achievements)
	assert.Equal(t, [][2]int64{{u.ID, 1}}, rules.calls)
	assert.Equal(t, int64(50), userXP(t, db, u.ID))
}

func TestSubmit_WithoutTakeCreatesRow(t *testing.T) {
	svc, db, _ := setup(t, nil)
	u := testutil.NewUser(t, db, "dave", 0, 1)
	_, err := svc.Submit(context.Background(), u.ID, 3, []string{"a.png"})
	require.NoError(t, err)

	var tq model.TakenQuest
	require.NoError(t, db.Where("user_id = ? AND quest_id = ?", u.ID, 3).First(&tq).Error)
	assert.True(t, tq.Completed())
	assert.NotNil(t, tq.SubmittedAt)
}

func TestSubmit_ResubmissionOnlyUpdatesPayload(t *testing.T) {
	rules := &recordingRules{}
	svc, db, _ := setup(t, rules)
	u := testutil.NewUser(t, db, "erin", 0, 1)
	ctx := context.Background()

	_, err := svc.Take(ctx, u.ID, 2)
	require.NoError(t, err)
	_, err = svc.Submit(ctx, u.ID, 2, []string{"first.png"})
	require.NoError(t, err)
	c, err := svc.Submit(ctx, u.ID, 2, []string{"second.png", "third.png"})
	require.NoError(t, err)

	assert.False(t, c.First)
	assert.Nil(t, c.XP)
	assert.Len(t, rules.calls, 1)
	assert.Equal(t, int64(50), userXP(t, db, u.ID))

	var tq model.TakenQuest
	require.NoError(t, db.Where("user_id = ? AND quest_id = ?", u.ID, 2).First(&tq).Error)
	assert.JSONEq(t, `["second.png","third.png"]`, string(tq.Submission))
}

func TestSubmit_EmptyImages(t *testing.T) {
	svc, db, _ := setup(t, nil)
	u := testutil.NewUser(t, db, "frank", 0, 1)
	_, err := svc.Submit(context.Background(), u.ID, 1, nil)
	assert.ErrorIs(t, err, ErrEmptySubmission)
}

func TestSubmit_UnknownQuest(t *testing.T) {
	svc, db, _ := setup(t, nil)
	u := testutil.NewUser(t, db, "gina", 0, 1)
	_, err := svc.Submit(context.Background(), u.ID, 999, []string{"x.png"})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSubmit_UnknownUserRollsBack(t *testing.T) {
	svc, db, _ := setup(t, nil)
	_, err := svc.Submit(context.Background(), 9999, 1, []string{"x.png"})
	assert.ErrorIs(t, err, store.ErrNotFound)

	var n int64
	db.Model(&model.TakenQuest{}).Where("user_id = ?", 9999).Count(&n)
	assert.Equal(t, int64(0), n)
}

func TestSubmit_RuleFailureDoesNotFailSubmission(t *testing.T) {
	rules := &recordingRules{err: errors.New("rules down")}
	svc, db, _ := setup(t, rules)
	u := testutil.NewUser(t, db, "henry", 0, 1)

	c, err := svc.Submit(context.Background(), u.ID, 1, []string{"x.png"})
	require.NoError(t, err)
	assert.True(t, c.First)
	assert.Equal(t, int64(50), userXP(t, db, u.ID))
}

func TestSubmit_FiresCompletionHook(t *testing.T) {
	svc, db, hc := setup(t, nil)
	u := testutil.NewUser(t, db, "ivy", 0, 1)
	var got []Completion
	hc.Register(hook.OnQuestCompleted, 0, "test", func(_ context.Context, _ string, d interface{}) (interface{}, error) {
		got = append(got, d.(Completion))
		return d, nil
	})
	ctx := context.Background()
	_, _ = svc.Submit(ctx, u.ID, 4, []string{"a.png"})
	_, _ = svc.Submit(ctx, u.ID, 4, []string{"b.png"})
	require.Len(t, got, 1)
	assert.Equal(t, int64(4), got[0].QuestID)
}

func TestList_MarksTakenAndCompleted(t *testing.T) {
	svc, db, _ := setup(t, nil)
	u := testutil.NewUser(t, db, "jack", 0, 1)
	ctx := context.Background()
	_, _ = svc.Take(ctx, u.ID, 1)
	_, _ = svc.Submit(ctx, u.ID, 2, []string{"a.png"})

	list, err := svc.List(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, list, 7)
	assert.True(t, list[0].Taken)
	assert.False(t, list[0].Completed)
	assert.True(t, list[1].Taken)
	assert.True(t, list[1].Completed)
	assert.False(t, list[2].Taken)
}
