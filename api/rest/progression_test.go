package rest_test

import (
	"net/http"
	"testing"

	"github.com/Regyyyy/gamify-oss-app-sub000/model"
	"github.com/Regyyyy/gamify-oss-app-sub000/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuests_List(t *testing.T) {
	s := newTestServer(t)
	u := testutil.NewUser(t, s.db, "alice", 0, 1)
	tok := s.login(t, u)

	w := s.do(http.MethodGet, "/api/quests", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Quests []struct {
			ID        int64 `json:"id"`
			Taken     bool  `json:"taken"`
			Completed bool  `json:"completed"`
		} `json:"quests"`
	}
	decode(t, w, &resp)
	require.Len(t, resp.Quests, 7)
	assert.Equal(t, int64(1), resp.Quests[0].ID)
	assert.False(t, resp.Quests[0].Taken)
}

func TestQuests_RequiresAuth(t *testing.T) {
	s := newTestServer(t)
	w := s.do(http.MethodGet, "/api/quests", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestQuests_Take(t *testing.T) {
	s := newTestServer(t)
	tok := s.login(t, testutil.NewUser(t, s.db, "alice", 0, 1))

	w := s.do(http.MethodPost, "/api/quests/2/take", tok, nil)
	assert.Equal(t, http.StatusCreated, w.Code)
	w = s.do(http.MethodPost, "/api/quests/2/take", tok, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = s.do(http.MethodPost, "/api/quests/999/take", tok, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = s.do(http.MethodPost, "/api/quests/abc/take", tok, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestQuests_SubmitGrantsXPOnce(t *testing.T) {
	s := newTestServer(t)
	u := testutil.NewUser(t, s.db, "alice", 0, 1)
	tok := s.login(t, u)

	w := s.do(http.MethodPost, "/api/quests/1/submit", tok, map[string]interface{}{"images": []string{"uploads/a.png"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		First bool `json:"first"`
		XP    struct {
			NewXP int64 `json:"new_xp"`
		} `json:"xp"`
		Achievements []int64 `json:"achievements"`
	}
	decode(t, w, &resp)
	assert.True(t, resp.First)
	assert.Equal(t, int64(50), resp.XP.NewXP)
	assert.Contains(t, resp.Achievements, int64(1))

	w = s.do(http.MethodPost, "/api/quests/1/submit", tok, map[string]interface{}{"images": []string{"uploads/b.png"}})
	require.Equal(t, http.StatusOK, w.Code)
	resp.First = true
	decode(t, w, &resp)
	assert.False(t, resp.First)

	xp, lvl := userXP(t, s.db, u.ID)
	assert.Equal(t, int64(50), xp)
	assert.Equal(t, 1, lvl)
}

func TestQuests_SubmitValidation(t *testing.T) {
	s := newTestServer(t)
	tok := s.login(t, testutil.NewUser(t, s.db, "alice", 0, 1))

	w := s.do(http.MethodPost, "/api/quests/1/submit", tok, map[string]interface{}{"images": []string{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = s.do(http.MethodPost, "/api/quests/999/submit", tok, map[string]interface{}{"images": []string{"a.png"}})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAchievements_ClaimFlow(t *testing.T) {
	s := newTestServer(t)
	u := testutil.NewUser(t, s.db, "alice", 0, 1)
	tok := s.login(t, u)

	w := s.do(http.MethodPost, "/api/quests/1/submit", tok, map[string]interface{}{"images": []string{"a.png"}})
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/api/achievements", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Achievements []struct {
			ID     int64  `json:"id"`
			Status string `json:"status"`
		} `json:"achievements"`
	}
	decode(t, w, &list)
	statuses := map[int64]string{}
	for _, a := range list.Achievements {
		statuses[a.ID] = a.Status
	}
	assert.Equal(t, model.AwardCompleted, statuses[1])

	w = s.do(http.MethodPost, "/api/achievements/1/claim", tok, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var claim struct {
		XPGranted int64 `json:"xp_granted"`
		XP        struct {
			NewXP int64 `json:"new_xp"`
		} `json:"xp"`
	}
	decode(t, w, &claim)
	assert.Equal(t, int64(25), claim.XPGranted)
	assert.Equal(t, int64(75), claim.XP.NewXP)

	w = s.do(http.MethodPost, "/api/achievements/1/claim", tok, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAchievements_ClaimErrors(t *testing.T) {
	s := newTestServer(t)
	tok := s.login(t, testutil.NewUser(t, s.db, "alice", 0, 1))

	w := s.do(http.MethodPost, "/api/achievements/999/claim", tok, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = s.do(http.MethodPost, "/api/achievements/2/claim", tok, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	w = s.do(http.MethodPost, "/api/achievements/0/claim", tok, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFrames_UnlockAndEquip(t *testing.T) {
	s := newTestServer(t)
	u := testutil.NewUser(t, s.db, "alice", 0, 1)
	tok := s.login(t, u)

	w := s.do(http.MethodPut, "/api/frames/active", tok, map[string]int64{"frame_id": 2})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Alone on the board, the first XP puts alice on every podium step.
	w = s.do(http.MethodPost, "/api/quests/1/submit", tok, map[string]interface{}{"images": []string{"a.png"}})
	require.Equal(t, http.StatusOK, w.Code)
	w = s.do(http.MethodPost, "/api/achievements/7/claim", tok, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var claim struct {
		FrameGranted *int64 `json:"frame_granted"`
	}
	decode(t, w, &claim)
	require.NotNil(t, claim.FrameGranted)
	assert.Equal(t, int64(2), *claim.FrameGranted)

	// Unlocked but not equipped.
	w = s.do(http.MethodGet, "/api/me", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var me struct {
		ActiveFrame int64 `json:"active_frame"`
	}
	decode(t, w, &me)
	assert.Equal(t, model.DefaultFrameID, me.ActiveFrame)

	w = s.do(http.MethodPut, "/api/frames/active", tok, map[string]int64{"frame_id": 2})
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/api/frames", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var frames struct {
		Frames []struct {
			ID     int64 `json:"id"`
			Active bool  `json:"active"`
		} `json:"frames"`
	}
	decode(t, w, &frames)
	require.Len(t, frames.Frames, 2)
	assert.Equal(t, model.DefaultFrameID, frames.Frames[0].ID)
	assert.False(t, frames.Frames[0].Active)
	assert.Equal(t, int64(2), frames.Frames[1].ID)
	assert.True(t, frames.Frames[1].Active)

	w = s.do(http.MethodPut, "/api/frames/active", tok, map[string]int64{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProfile_Me(t *testing.T) {
	s := newTestServer(t)
	u := testutil.NewUser(t, s.db, "alice", 210, 2)
	testutil.NewUser(t, s.db, "bob", 500, 3)
	tok := s.login(t, u)

	w := s.do(http.MethodGet, "/api/me", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var me struct {
		Username string `json:"username"`
		Progress struct {
			Level int   `json:"level"`
			XP    int64 `json:"xp"`
		} `json:"progress"`
		Rank int `json:"rank"`
	}
	decode(t, w, &me)
	assert.Equal(t, "alice", me.Username)
	assert.Equal(t, 2, me.Progress.Level)
	assert.Equal(t, int64(210), me.Progress.XP)
	assert.Equal(t, 2, me.Rank)
}

func TestLeaderboard_TopAndMe(t *testing.T) {
	s := newTestServer(t)
	alice := testutil.NewUser(t, s.db, "alice", 300, 2)
	bob := testutil.NewUser(t, s.db, "bob", 300, 2)
	carol := testutil.NewUser(t, s.db, "carol", 0, 1)

	w := s.do(http.MethodGet, "/api/leaderboard?limit=1", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var top struct {
		Ranking []struct {
			Rank   int   `json:"rank"`
			UserID int64 `json:"user_id"`
		} `json:"ranking"`
	}
	decode(t, w, &top)
	require.Len(t, top.Ranking, 1)
	assert.Equal(t, alice.ID, top.Ranking[0].UserID)

	w = s.do(http.MethodGet, "/api/leaderboard/me", s.login(t, bob), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var rank struct {
		Rank int `json:"rank"`
	}
	decode(t, w, &rank)
	assert.Equal(t, 2, rank.Rank)

	w = s.do(http.MethodGet, "/api/leaderboard/me", s.login(t, carol), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
