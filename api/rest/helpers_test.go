package rest_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/Regyyyy/gamify-oss-app-sub000/api/rest"
	"github.com/Regyyyy/gamify-oss-app-sub000/cache"
	"github.com/Regyyyy/gamify-oss-app-sub000/config"
	"github.com/Regyyyy/gamify-oss-app-sub000/game/progression"
	mw "github.com/Regyyyy/gamify-oss-app-sub000/middleware"
	"github.com/Regyyyy/gamify-oss-app-sub000/model"
	"github.com/Regyyyy/gamify-oss-app-sub000/scheduler"
	"github.com/Regyyyy/gamify-oss-app-sub000/store"
	"github.com/Regyyyy/gamify-oss-app-sub000/testutil"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testAdminKey = "admin-secret"

type testServer struct {
	r      *gin.Engine
	engine *progression.Engine
	db     *gorm.DB
	cache  cache.Cache
	sched  *scheduler.Scheduler
	sec    config.SecurityConfig
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	return newTestServerWith(t, config.SecurityConfig{JWTSecret: "test-secret", JWTTTLH: time.Hour})
}

func newTestServerWith(t *testing.T, sec config.SecurityConfig) *testServer {
	t.Helper()
	db := testutil.SetupTestDB(t)
	c := testutil.SetupTestCache(t)
	logger := testutil.Logger()
	e := progression.New(progression.Deps{
		Store:  store.New(db, 0),
		Cache:  c,
		Config: config.ProgressionConfig{LeaderboardSize: 50, LeaderboardTTL: time.Minute},
		Logger: logger,
	})
	sched := scheduler.New(logger)
	t.Cleanup(sched.Stop)
	r := rest.NewRouter(rest.RouterDeps{
		Engine:    e,
		Cache:     c,
		Scheduler: sched,
		Server:    config.ServerConfig{AdminKey: testAdminKey},
		Security:  sec,
		Logger:    logger,
	})
	return &testServer{r: r, engine: e, db: db, cache: c, sched: sched, sec: sec}
}

// login issues a session token for u without going through bcrypt.
func (s *testServer) login(t *testing.T, u *model.User) string {
	t.Helper()
	tok, err := mw.GenerateToken(u.ID, u.Role, s.sec.JWTSecret, s.sec.JWTTTLH)
	require.NoError(t, err)
	require.NoError(t, s.cache.Set(context.Background(), mw.SessionKey(tok), "1", s.sec.JWTTTLH))
	return tok
}

// do sends a request. headers are alternating name/value pairs.
func (s *testServer) do(method, path, token string, body interface{}, headers ...string) *httptest.ResponseRecorder {
	var rd *bytes.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	s.r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func userXP(t *testing.T, db *gorm.DB, id int64) (int64, int) {
	t.Helper()
	var u model.User
	require.NoError(t, db.First(&u, id).Error)
	return u.XP, u.Level
}

func itoa(id int64) string { return strconv.FormatInt(id, 10) }
