package http

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"millionaire-service/internal/app"
	"millionaire-service/internal/domain"
	"millionaire-service/internal/infra/memory"
	"millionaire-service/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testApp struct {
	server *httptest.Server
	store  *memory.Store
	auth   *app.AuthService
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	var questions []domain.Question
	for level := domain.MinLevel; level <= domain.MaxLevel; level++ {
		questions = append(questions, domain.Question{
			ID:      fmt.Sprintf("q%02d", level),
			Level:   level,
			Text:    fmt.Sprintf("Question for level %d", level),
			Answer1: "right",
			Answer2: "wrong two",
			Answer3: "wrong three",
			Answer4: "wrong four",
		})
	}
	store := memory.NewStore()
	bank := memory.NewQuestionBank(questions...)
	auth := app.NewAuthService(store, app.AuthConfig{Secret: "secret", HashCost: bcrypt.MinCost}, nil)
	games := app.NewGameService(store, memory.NewQuestionRepository(bank, time.Minute),
		app.WithRand(rand.New(rand.NewSource(1))))

	router, err := NewRouter(Deps{
		Games:   games,
		Users:   app.NewUserService(store, store),
		Auth:    auth,
		Flashes: memory.NewFlashStore(time.Minute),
		Metrics: metrics.New("millionaire_test"),
	})
	require.NoError(t, err)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return &testApp{server: server, store: store, auth: auth}
}

type browser struct {
	t      *testing.T
	base   string
	client *http.Client
}

func (a *testApp) browser(t *testing.T) *browser {
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &browser{
		t:    t,
		base: a.server.URL,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// signedIn registers a user and returns a browser carrying its session.
func (a *testApp) signedIn(t *testing.T, name string) (*browser, *domain.User) {
	b := a.browser(t)
	resp := b.post("/users", url.Values{"name": {name}, "email": {strings.ToLower(name) + "@example.com"}, "password": {"secret1"}})
	require.Equal(t, http.StatusFound, resp.StatusCode)
	user, err := a.store.GetUserByEmail(context.Background(), strings.ToLower(name)+"@example.com")
	require.NoError(t, err)
	return b, user
}

func (b *browser) get(path string) (*http.Response, string) {
	resp, err := b.client.Get(b.base + path)
	require.NoError(b.t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(b.t, err)
	return resp, string(body)
}

func (b *browser) post(path string, form url.Values) *http.Response {
	return b.send(http.MethodPost, path, form)
}

func (b *browser) send(method, path string, form url.Values) *http.Response {
	req, err := http.NewRequest(method, b.base+path, strings.NewReader(form.Encode()))
	require.NoError(b.t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := b.client.Do(req)
	require.NoError(b.t, err)
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return resp
}

func location(t *testing.T, resp *http.Response) string {
	t.Helper()
	require.Equal(t, http.StatusFound, resp.StatusCode)
	return resp.Header.Get("Location")
}

func (a *testApp) startGame(t *testing.T, b *browser) *domain.Game {
	t.Helper()
	loc := location(t, b.post("/games", nil))
	require.True(t, strings.HasPrefix(loc, "/games/"), loc)
	game, err := a.store.GetGame(context.Background(), strings.TrimPrefix(loc, "/games/"))
	require.NoError(t, err)
	return game
}

func (a *testApp) reload(t *testing.T, id string) *domain.Game {
	t.Helper()
	game, err := a.store.GetGame(context.Background(), id)
	require.NoError(t, err)
	return game
}

func TestAnonymousIsSentToSignIn(t *testing.T) {
	a := newTestApp(t)
	b := a.browser(t)

	for _, req := range []struct{ method, path string }{
		{http.MethodPost, "/games"},
		{http.MethodGet, "/games/any"},
		{http.MethodPut, "/games/any/answer"},
		{http.MethodPut, "/games/any/take_money"},
		{http.MethodPut, "/games/any/help"},
	} {
		resp := b.send(req.method, req.path, nil)
		assert.Equal(t, "/users/sign_in", location(t, resp), req.path)
	}

	_, body := b.get("/users/sign_in")
	assert.Contains(t, body, "You need to sign in or sign up before continuing.")
}

func TestCreateAndShowGame(t *testing.T) {
	a := newTestApp(t)
	b, user := a.signedIn(t, "Alice")

	game := a.startGame(t, b)
	assert.Equal(t, user.ID, game.UserID)
	assert.False(t, game.Finished())

	resp, body := b.get("/games/" + game.ID)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Question for level 0")
	assert.Contains(t, body, "Good luck!")
}

func TestSecondGameRedirectsToUnfinished(t *testing.T) {
	a := newTestApp(t)
	b, user := a.signedIn(t, "Alice")
	game := a.startGame(t, b)

	assert.Equal(t, "/games/"+game.ID, location(t, b.post("/games", nil)))
	_, body := b.get("/games/" + game.ID)
	assert.Contains(t, body, "You have an unfinished game.")

	games, err := a.store.ListByUser(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Len(t, games, 1)
}

func TestAlienGameIsRejected(t *testing.T) {
	a := newTestApp(t)
	owner, _ := a.signedIn(t, "Alice")
	game := a.startGame(t, owner)
	alien, _ := a.signedIn(t, "Bob")

	assert.Equal(t, "/", location(t, alien.send(http.MethodGet, "/games/"+game.ID, nil)))
	_, body := alien.get("/")
	assert.Contains(t, body, "This is not your game!")

	key := game.CurrentGameQuestion().CorrectAnswerKey()
	assert.Equal(t, "/", location(t, alien.send(http.MethodPut, "/games/"+game.ID+"/answer", url.Values{"letter": {key}})))
	assert.Equal(t, "/", location(t, alien.send(http.MethodPut, "/games/"+game.ID+"/take_money", nil)))
	assert.Equal(t, 0, a.reload(t, game.ID).CurrentLevel)
	assert.False(t, a.reload(t, game.ID).Finished())
}

func TestCorrectAnswerRedirectsToGameWithoutFlash(t *testing.T) {
	a := newTestApp(t)
	b, _ := a.signedIn(t, "Alice")
	game := a.startGame(t, b)
	_, _ = b.get("/games/" + game.ID) // consume the start notice

	key := game.CurrentGameQuestion().CorrectAnswerKey()
	resp := b.send(http.MethodPut, "/games/"+game.ID+"/answer", url.Values{"letter": {key}})
	assert.Equal(t, "/games/"+game.ID, location(t, resp))

	_, body := b.get("/games/" + game.ID)
	assert.NotContains(t, body, `class="flash`)
	assert.Contains(t, body, "Question for level 1")
}

func TestWrongAnswerFinishesGame(t *testing.T) {
	a := newTestApp(t)
	b, user := a.signedIn(t, "Alice")
	game := a.startGame(t, b)

	resp := b.post("/games/"+game.ID+"/answer", url.Values{"letter": {"f"}})
	assert.Equal(t, "/users/"+user.ID, location(t, resp))

	reloaded := a.reload(t, game.ID)
	assert.Equal(t, domain.StatusFail, reloaded.Status())

	_, body := b.get("/users/" + user.ID)
	assert.Contains(t, body, "Game over")
	assert.Contains(t, body, "lost")

	// Finished games cannot be played on.
	resp = b.post("/games/"+game.ID+"/answer", url.Values{"letter": {"a"}})
	assert.Equal(t, "/users/"+user.ID, location(t, resp))
	assert.Equal(t, "/users/"+user.ID, location(t, b.send(http.MethodGet, "/games/"+game.ID, nil)))
}

func TestTakeMoney(t *testing.T) {
	a := newTestApp(t)
	b, user := a.signedIn(t, "Alice")
	game := a.startGame(t, b)

	for i := 0; i < 2; i++ {
		key := a.reload(t, game.ID).CurrentGameQuestion().CorrectAnswerKey()
		b.send(http.MethodPut, "/games/"+game.ID+"/answer", url.Values{"letter": {key}})
	}
	resp := b.send(http.MethodPut, "/games/"+game.ID+"/take_money", nil)
	assert.Equal(t, "/users/"+user.ID, location(t, resp))

	reloaded := a.reload(t, game.ID)
	assert.Equal(t, domain.StatusMoney, reloaded.Status())
	assert.Equal(t, int64(200), reloaded.Prize)

	stored, err := a.store.GetUser(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(200), stored.Balance)

	_, body := b.get("/users/" + user.ID)
	assert.Contains(t, body, "You took the money: 200 ₽.")
	assert.Contains(t, body, "took the money")
}

func TestHelp(t *testing.T) {
	a := newTestApp(t)
	b, _ := a.signedIn(t, "Alice")
	game := a.startGame(t, b)

	resp := b.send(http.MethodPut, "/games/"+game.ID+"/help", url.Values{"help_type": {"audience_help"}})
	assert.Equal(t, "/games/"+game.ID, location(t, resp))
	assert.True(t, a.reload(t, game.ID).HelpsUsed.Has(domain.HelpAudience))
	_, body := b.get("/games/" + game.ID)
	assert.Contains(t, body, "You used a hint: Audience.")
	assert.Contains(t, body, "help-audience")

	resp = b.send(http.MethodPut, "/games/"+game.ID+"/help", url.Values{"help_type": {"audience_help"}})
	assert.Equal(t, "/games/"+game.ID, location(t, resp))
	_, body = b.get("/games/" + game.ID)
	assert.Contains(t, body, "This hint is not available.")

	b.send(http.MethodPut, "/games/"+game.ID+"/help", url.Values{"help_type": {"nonsense"}})
	reloaded := a.reload(t, game.ID)
	assert.Len(t, reloaded.HelpsUsed, 1)
	assert.False(t, reloaded.Finished())
}

func TestProfileEditLinkOnlyForOwner(t *testing.T) {
	a := newTestApp(t)
	owner, user := a.signedIn(t, "Alice")
	game := a.startGame(t, owner)
	owner.send(http.MethodPut, "/games/"+game.ID+"/help", url.Values{"help_type": {"fifty_fifty"}})

	_, body := owner.get("/users/" + user.ID)
	assert.Contains(t, body, "Change name and password")
	assert.Contains(t, body, "in progress")
	assert.Contains(t, body, "<td>50/50</td>")

	visitor, _ := a.signedIn(t, "Bob")
	resp, body := visitor.get("/users/" + user.ID)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Alice")
	assert.NotContains(t, body, "Change name and password")

	resp, _ = visitor.get("/users/missing")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSignInAndEditAccount(t *testing.T) {
	a := newTestApp(t)
	_, user := a.signedIn(t, "Alice")

	b := a.browser(t)
	resp := b.post("/users/sign_in", url.Values{"email": {"alice@example.com"}, "password": {"wrong"}})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = b.post("/users/sign_in", url.Values{"email": {"alice@example.com"}, "password": {"secret1"}})
	assert.Equal(t, "/", location(t, resp))

	resp = b.post("/users/edit", url.Values{"name": {"Alicia"}})
	assert.Equal(t, "/users/"+user.ID, location(t, resp))
	_, body := b.get("/users/" + user.ID)
	assert.Contains(t, body, "Alicia")

	resp = b.post("/users/sign_out", nil)
	assert.Equal(t, "/", location(t, resp))
	assert.Equal(t, "/users/sign_in", location(t, b.send(http.MethodGet, "/users/edit", nil)))
}

func TestLeaderboardAndHealth(t *testing.T) {
	a := newTestApp(t)
	_, _ = a.signedIn(t, "Alice")
	b := a.browser(t)

	resp, body := b.get("/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Alice")

	resp, body = b.get("/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body)

	resp, body = b.get("/metrics")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "millionaire_test_http_requests_total")
}

func TestFormatPrize(t *testing.T) {
	cases := map[int64]string{
		0:       "0 ₽",
		100:     "100 ₽",
		1000:    "1 000 ₽",
		32000:   "32 000 ₽",
		125000:  "125 000 ₽",
		1000000: "1 000 000 ₽",
	}
	for amount, want := range cases {
		assert.Equal(t, want, FormatPrize(amount))
	}
}
