package http

import (
	"fmt"
	"html/template"
	"net/http"
	"time"

	"millionaire-service/internal/app"
	"millionaire-service/internal/logger"
	"millionaire-service/internal/metrics"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Deps are the collaborators of the HTTP layer.
type Deps struct {
	Games   *app.GameService
	Users   *app.UserService
	Auth    *app.AuthService
	Flashes app.FlashStore
	Log     *logger.Logger
	Metrics *metrics.Metrics

	AllowedOrigins []string
	// SecureCookies marks the session cookies Secure; enable behind TLS.
	SecureCookies bool
	TokenTTL      time.Duration
}

// Handler serves the HTML pages and the live game channel.
type Handler struct {
	Deps
	ws *WSHandler
}

// NewRouter builds the gin engine with every route of the service.
func NewRouter(deps Deps) (*gin.Engine, error) {
	if deps.Log == nil {
		deps.Log = logger.Discard()
	}
	if deps.TokenTTL <= 0 {
		deps.TokenTTL = 24 * time.Hour
	}
	tmpl, err := template.New("").Funcs(templateFuncs).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	h := &Handler{Deps: deps}
	h.ws = NewWSHandler(deps.Games, deps.Log)

	router := gin.New()
	router.SetHTMLTemplate(tmpl)
	router.Use(gin.Recovery(), requestLogger(deps.Log), observe(deps.Metrics))
	if len(deps.AllowedOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     deps.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	router.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	if deps.Metrics != nil {
		router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	pages := router.Group("/", h.session(), h.authenticate())
	{
		pages.GET("/", h.leaderboard)

		pages.GET("/users/sign_up", h.signUpForm)
		pages.POST("/users", h.signUp)
		pages.GET("/users/sign_in", h.signInForm)
		pages.POST("/users/sign_in", h.signIn)
		pages.POST("/users/sign_out", h.signOut)
		pages.GET("/users/:id", h.profile)

		authed := pages.Group("/", h.requireUser())
		{
			authed.GET("/users/edit", h.editAccountForm)
			authed.POST("/users/edit", h.editAccount)
			authed.PUT("/users/edit", h.editAccount)

			authed.POST("/games", h.createGame)
			authed.GET("/games/:id", h.showGame)
			for _, register := range []func(string, ...gin.HandlerFunc) gin.IRoutes{authed.PUT, authed.POST} {
				register("/games/:id/answer", h.answer)
				register("/games/:id/take_money", h.takeMoney)
				register("/games/:id/help", h.help)
			}
			authed.GET("/ws/games/:id", h.ws.ServeGame)
		}
	}

	router.NoRoute(h.session(), h.authenticate(), func(c *gin.Context) {
		h.render(c, http.StatusNotFound, "error.html", gin.H{"Message": "Page not found"})
	})
	return router, nil
}
