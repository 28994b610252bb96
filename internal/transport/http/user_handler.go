package http

import (
	"errors"
	"net/http"

	"millionaire-service/internal/app"
	"millionaire-service/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type signUpForm struct {
	Name     string `form:"name"`
	Email    string `form:"email"`
	Password string `form:"password"`
}

type accountForm struct {
	Name     string `form:"name"`
	Password string `form:"password"`
}

func (h *Handler) leaderboard(c *gin.Context) {
	users, err := h.Users.Leaderboard(c.Request.Context())
	if err != nil {
		h.internalError(c, err)
		return
	}
	h.render(c, http.StatusOK, "leaderboard.html", gin.H{"Users": users})
}

func (h *Handler) profile(c *gin.Context) {
	profile, err := h.Users.Profile(c.Request.Context(), c.Param("id"))
	if errors.Is(err, domain.ErrUserNotFound) {
		h.notFound(c)
		return
	}
	if err != nil {
		h.internalError(c, err)
		return
	}
	viewer := currentUser(c)
	h.render(c, http.StatusOK, "profile.html", gin.H{
		"Profile": profile,
		"Games":   newGameRows(profile.Games),
		"IsOwner": viewer != nil && viewer.ID == profile.User.ID,
	})
}

func (h *Handler) signUpForm(c *gin.Context) {
	h.render(c, http.StatusOK, "sign_up.html", nil)
}

func (h *Handler) signUp(c *gin.Context) {
	var form signUpForm
	_ = c.ShouldBind(&form)
	user, token, err := h.Auth.Register(c.Request.Context(), app.RegisterInput{
		Name:     form.Name,
		Email:    form.Email,
		Password: form.Password,
	})
	if err != nil {
		var verrs validator.ValidationErrors
		switch {
		case errors.Is(err, domain.ErrEmailTaken), errors.As(err, &verrs):
			h.render(c, http.StatusUnprocessableEntity, "sign_up.html", gin.H{"Error": formError(err), "Form": form})
		default:
			h.internalError(c, err)
		}
		return
	}
	h.setAuthCookie(c, token)
	h.flash(c, domain.FlashNotice, "Welcome! You have signed up successfully.")
	c.Redirect(http.StatusFound, "/users/"+user.ID)
}

func (h *Handler) signInForm(c *gin.Context) {
	h.render(c, http.StatusOK, "sign_in.html", nil)
}

func (h *Handler) signIn(c *gin.Context) {
	email := c.PostForm("email")
	_, token, err := h.Auth.Login(c.Request.Context(), email, c.PostForm("password"))
	if errors.Is(err, domain.ErrInvalidCredentials) {
		h.render(c, http.StatusUnauthorized, "sign_in.html", gin.H{"Error": "Invalid email or password.", "Email": email})
		return
	}
	if err != nil {
		h.internalError(c, err)
		return
	}
	h.setAuthCookie(c, token)
	h.flash(c, domain.FlashNotice, "Signed in successfully.")
	c.Redirect(http.StatusFound, "/")
}

func (h *Handler) signOut(c *gin.Context) {
	h.clearAuthCookie(c)
	h.flash(c, domain.FlashNotice, "Signed out successfully.")
	c.Redirect(http.StatusFound, "/")
}

func (h *Handler) editAccountForm(c *gin.Context) {
	h.render(c, http.StatusOK, "edit_account.html", nil)
}

func (h *Handler) editAccount(c *gin.Context) {
	var form accountForm
	_ = c.ShouldBind(&form)
	user := currentUser(c)
	updated, err := h.Auth.UpdateAccount(c.Request.Context(), user.ID, app.AccountInput{
		Name:     form.Name,
		Password: form.Password,
	})
	if err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			h.render(c, http.StatusUnprocessableEntity, "edit_account.html", gin.H{"Error": formError(err)})
			return
		}
		h.internalError(c, err)
		return
	}
	h.flash(c, domain.FlashNotice, "Your account has been updated.")
	c.Redirect(http.StatusFound, "/users/"+updated.ID)
}

func formError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fe.Field() + " can't be blank"
	case "email":
		return "Email is invalid"
	case "min":
		return fe.Field() + " is too short (minimum is " + fe.Param() + " characters)"
	case "max":
		return fe.Field() + " is too long (maximum is " + fe.Param() + " characters)"
	}
	return fe.Field() + " is invalid"
}

func (h *Handler) notFound(c *gin.Context) {
	h.render(c, http.StatusNotFound, "error.html", gin.H{"Message": "Page not found"})
}

func (h *Handler) internalError(c *gin.Context, err error) {
	_ = c.Error(err)
	h.render(c, http.StatusInternalServerError, "error.html", gin.H{"Message": "Something went wrong"})
}
