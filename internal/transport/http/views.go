package http

import (
	"embed"
	"html/template"
	"strconv"
	"strings"
	"time"

	"millionaire-service/internal/domain"

	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var templatesFS embed.FS

var templateFuncs = template.FuncMap{
	"prize": FormatPrize,
	"date":  FormatDate,
	"upper": strings.ToUpper,
	"inc":   func(i int) int { return i + 1 },
}

// FormatPrize renders an amount with space-grouped thousands: 1 000 000 ₽.
func FormatPrize(amount int64) string {
	digits := strconv.FormatInt(amount, 10)
	sign := ""
	if amount < 0 {
		sign, digits = "-", digits[1:]
	}
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return sign + b.String() + " ₽"
}

func FormatDate(t time.Time) string {
	return t.Format("02 Jan, 15:04")
}

// render adds the signed-in user and pending flashes to data.
func (h *Handler) render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["CurrentUser"] = currentUser(c)
	data["Flashes"] = h.popFlashes(c)
	c.HTML(status, name, data)
}

func (h *Handler) flash(c *gin.Context, kind domain.FlashKind, message string) {
	sid := c.GetString(ctxSessionID)
	if sid == "" || h.Flashes == nil {
		return
	}
	if err := h.Flashes.Push(c.Request.Context(), sid, domain.Flash{Kind: kind, Message: message}); err != nil {
		h.Log.Entry().WithError(err).Warn("store flash")
	}
}

func (h *Handler) popFlashes(c *gin.Context) []domain.Flash {
	sid := c.GetString(ctxSessionID)
	if sid == "" || h.Flashes == nil {
		return nil
	}
	flashes, err := h.Flashes.Pop(c.Request.Context(), sid)
	if err != nil {
		h.Log.Entry().WithError(err).Warn("load flashes")
	}
	return flashes
}

type variantView struct {
	Key  string
	Text string
}

type ladderRow struct {
	Level     int
	Prize     int64
	Fireproof bool
	Current   bool
}

type helpView struct {
	Kind  domain.HelpKind
	Label string
	Used  bool
}

// gameView is what the game page needs to draw the current question.
type gameView struct {
	Game     *domain.Game
	Question *domain.GameQuestion
	Variants []variantView
	Ladder   []ladderRow
	Helps    []helpView
	Deadline time.Time
}

func newGameView(game *domain.Game) gameView {
	view := gameView{Game: game, Deadline: game.CreatedAt.Add(domain.TimeLimit)}
	if gq := game.CurrentGameQuestion(); gq != nil {
		view.Question = gq
		variants := gq.Variants()
		for _, key := range gq.VisibleKeys() {
			view.Variants = append(view.Variants, variantView{Key: key, Text: variants[key]})
		}
	}
	for level := domain.MaxLevel; level >= domain.MinLevel; level-- {
		view.Ladder = append(view.Ladder, ladderRow{
			Level:     level,
			Prize:     domain.Prize(level),
			Fireproof: domain.IsFireproof(level),
			Current:   level == game.CurrentLevel,
		})
	}
	for _, kind := range domain.HelpKinds {
		view.Helps = append(view.Helps, helpView{Kind: kind, Label: kind.Label(), Used: game.HelpsUsed.Has(kind)})
	}
	return view
}

type gameRowView struct {
	Game       domain.Game
	Status     domain.Status
	FiftyFifty bool
	Audience   bool
	FriendCall bool
}

func newGameRows(games []domain.Game) []gameRowView {
	rows := make([]gameRowView, 0, len(games))
	for _, g := range games {
		rows = append(rows, gameRowView{
			Game:       g,
			Status:     g.Status(),
			FiftyFifty: g.HelpsUsed.Has(domain.HelpFiftyFifty),
			Audience:   g.HelpsUsed.Has(domain.HelpAudience),
			FriendCall: g.HelpsUsed.Has(domain.HelpFriendCall),
		})
	}
	return rows
}
