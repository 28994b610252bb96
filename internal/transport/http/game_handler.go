package http

import (
	"errors"
	"fmt"
	"net/http"

	"millionaire-service/internal/domain"

	"github.com/gin-gonic/gin"
)

func gamePath(id string) string {
	return "/games/" + id
}

func profilePath(user *domain.User) string {
	return "/users/" + user.ID
}

func (h *Handler) createGame(c *gin.Context) {
	user := currentUser(c)
	game, err := h.Games.CreateGame(c.Request.Context(), user.ID)

	var inProgress *domain.GameInProgressError
	switch {
	case errors.As(err, &inProgress):
		h.flash(c, domain.FlashAlert, "You have an unfinished game.")
		c.Redirect(http.StatusFound, gamePath(inProgress.GameID))
	case errors.Is(err, domain.ErrNoQuestionsForLevel):
		h.flash(c, domain.FlashAlert, "The question bank is not ready yet, try again later.")
		c.Redirect(http.StatusFound, profilePath(user))
	case err != nil:
		h.internalError(c, err)
	default:
		h.flash(c, domain.FlashNotice, fmt.Sprintf("Game started at %s, you have %d minutes. Good luck!",
			FormatDate(game.CreatedAt), int(domain.TimeLimit.Minutes())))
		c.Redirect(http.StatusFound, gamePath(game.ID))
	}
}

func (h *Handler) showGame(c *gin.Context) {
	user := currentUser(c)
	game, err := h.Games.Game(c.Request.Context(), user.ID, c.Param("id"))
	if err != nil {
		h.gameError(c, err)
		return
	}
	if game.Finished() {
		h.flash(c, domain.FlashAlert, "This game is over.")
		c.Redirect(http.StatusFound, profilePath(user))
		return
	}
	h.render(c, http.StatusOK, "game.html", gin.H{"View": newGameView(game)})
}

func (h *Handler) answer(c *gin.Context) {
	user := currentUser(c)
	game, outcome, err := h.Games.Answer(c.Request.Context(), user.ID, c.Param("id"), c.PostForm("letter"))
	if err != nil {
		h.gameError(c, err)
		return
	}
	if !outcome.Finished {
		c.Redirect(http.StatusFound, gamePath(game.ID))
		return
	}

	switch game.Status() {
	case domain.StatusWon:
		h.flash(c, domain.FlashNotice, "Congratulations! You won "+FormatPrize(game.Prize)+"!")
	case domain.StatusTimeout:
		h.flash(c, domain.FlashAlert, "Time is up. Your prize is "+FormatPrize(game.Prize)+".")
	default:
		h.flash(c, domain.FlashAlert, fmt.Sprintf("The correct answer was %s: %s. Game over, your prize is %s.",
			outcome.CorrectKey, outcome.CorrectAnswer, FormatPrize(game.Prize)))
	}
	c.Redirect(http.StatusFound, profilePath(user))
}

func (h *Handler) takeMoney(c *gin.Context) {
	user := currentUser(c)
	game, err := h.Games.TakeMoney(c.Request.Context(), user.ID, c.Param("id"))
	if err != nil {
		h.gameError(c, err)
		return
	}
	if game.Status() == domain.StatusTimeout {
		h.flash(c, domain.FlashAlert, "Time is up. Your prize is "+FormatPrize(game.Prize)+".")
	} else {
		h.flash(c, domain.FlashWarning, "You took the money: "+FormatPrize(game.Prize)+".")
	}
	c.Redirect(http.StatusFound, profilePath(user))
}

func (h *Handler) help(c *gin.Context) {
	user := currentUser(c)
	kind := c.PostForm("help_type")
	game, err := h.Games.UseHelp(c.Request.Context(), user.ID, c.Param("id"), kind)
	if err != nil {
		h.gameError(c, err)
		return
	}
	h.flash(c, domain.FlashInfo, "You used a hint: "+domain.HelpKind(kind).Label()+".")
	c.Redirect(http.StatusFound, gamePath(game.ID))
}

// gameError turns a game use case error into a redirect with an alert.
func (h *Handler) gameError(c *gin.Context, err error) {
	user := currentUser(c)
	switch {
	case errors.Is(err, domain.ErrForbidden):
		h.flash(c, domain.FlashAlert, "This is not your game!")
		c.Redirect(http.StatusFound, "/")
	case errors.Is(err, domain.ErrGameNotFound):
		h.notFound(c)
	case errors.Is(err, domain.ErrGameFinished):
		h.flash(c, domain.FlashAlert, "This game is over.")
		c.Redirect(http.StatusFound, profilePath(user))
	case errors.Is(err, domain.ErrInvalidHelp), errors.Is(err, domain.ErrHelpAlreadyUsed):
		h.flash(c, domain.FlashAlert, "This hint is not available.")
		c.Redirect(http.StatusFound, gamePath(c.Param("id")))
	default:
		h.internalError(c, err)
	}
}
