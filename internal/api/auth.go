package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	appctx "github.com/vocalearn/backend/internal/context"
	"github.com/vocalearn/backend/internal/dal"
)

type (
	AuthDependencies struct {
		Repo             dal.Repository
		JWTProcessor     *JWTProcessor
		CookiesProcessor *CookiesProcessor
		Logger           *slog.Logger
	}

	AuthHandler struct {
		repo             dal.Repository
		jwtProcessor     *JWTProcessor
		cookiesProcessor *CookiesProcessor

		log *slog.Logger
	}

	registerRequest struct {
		Username  string `json:"username" validate:"required,min=3,max=64"`
		Password  string `json:"password" validate:"required,min=8,max=72"`
		FirstName string `json:"firstname"`
		LastName  string `json:"lastname"`
	}

	loginRequest struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	statusResponse struct {
		Authenticated bool   `json:"authenticated"`
		Username      string `json:"username,omitempty"`
		Permission    string `json:"permission,omitempty"`
	}
)

func NewAuthHandler(deps AuthDependencies) *AuthHandler {
	return &AuthHandler{
		repo:             deps.Repo,
		jwtProcessor:     deps.JWTProcessor,
		cookiesProcessor: deps.CookiesProcessor,

		log: deps.Logger,
	}
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		h.log.DebugContext(c.Request().Context(), "failed to bind request", "error", err)
		return c.JSON(http.StatusBadRequest, BadRequestError)
	}

	if err := c.Validate(&req); err != nil {
		h.log.DebugContext(c.Request().Context(), "failed to validate request", "error", err)
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.log.ErrorContext(c.Request().Context(), "failed to hash password", "error", err)
		return c.JSON(http.StatusInternalServerError, InternalServerError)
	}

	err = h.repo.Transact(c.Request().Context(), func(r dal.Repository) error {
		if err := r.CreateAccount(c.Request().Context(), dal.Account{
			Username:     req.Username,
			PasswordHash: string(hash),
			Permission:   dal.PermissionUser,
		}); err != nil {
			return err
		}
		return r.SaveProfile(c.Request().Context(), dal.Profile{
			Username:  req.Username,
			FirstName: req.FirstName,
			LastName:  req.LastName,
		})
	})
	if err != nil {
		if errors.Is(err, dal.ErrDuplicate) {
			return c.JSON(http.StatusConflict, ErrorResponse{Message: "username is already taken"})
		}
		h.log.ErrorContext(c.Request().Context(), "failed to create account", "error", err)
		return c.JSON(http.StatusInternalServerError, InternalServerError)
	}

	return h.issueAccessCookie(c, req.Username, dal.PermissionUser)
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		h.log.DebugContext(c.Request().Context(), "failed to bind request", "error", err)
		return c.JSON(http.StatusBadRequest, BadRequestError)
	}

	if err := c.Validate(&req); err != nil {
		h.log.DebugContext(c.Request().Context(), "failed to validate request", "error", err)
		return err
	}

	account, err := h.repo.FindAccount(c.Request().Context(), req.Username)
	if err != nil {
		if errors.Is(err, dal.ErrNotFound) {
			return c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "wrong username or password"})
		}
		h.log.ErrorContext(c.Request().Context(), "failed to find account", "error", err)
		return c.JSON(http.StatusInternalServerError, InternalServerError)
	}

	if err = bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.Password)); err != nil {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "wrong username or password"})
	}

	return h.issueAccessCookie(c, account.Username, account.Permission)
}

func (h *AuthHandler) Status(c echo.Context) error {
	var res statusResponse

	token, ok := h.cookiesProcessor.GetAccessToken(c)
	if !ok {
		return c.JSON(http.StatusOK, res)
	}

	username, permission, err := h.jwtProcessor.ParseAccessToken(token)
	if err != nil {
		h.log.DebugContext(c.Request().Context(), "failed to parse access token", "error", err)
		return c.JSON(http.StatusOK, res)
	}

	res.Authenticated = true
	res.Username = username
	res.Permission = permission
	return c.JSON(http.StatusOK, res)
}

func (h *AuthHandler) LogOut(c echo.Context) error {
	c.SetCookie(h.cookiesProcessor.ExpireAccessTokenCookie())
	return c.JSON(http.StatusOK, nil)
}

func (h *AuthHandler) Info(c echo.Context) error {
	user := appctx.MustUserFromContext(c.Request().Context())
	return c.JSON(http.StatusOK, echo.Map{
		"username":   user.Username,
		"permission": user.Permission,
	})
}

func (h *AuthHandler) issueAccessCookie(c echo.Context, username, permission string) error {
	token, err := h.jwtProcessor.ToAccessToken(username, permission)
	if err != nil {
		h.log.ErrorContext(c.Request().Context(), "failed to create access token", "error", err)
		return c.JSON(http.StatusInternalServerError, InternalServerError)
	}
	c.SetCookie(h.cookiesProcessor.NewAccessTokenCookie(token))

	return c.JSON(http.StatusOK, statusResponse{
		Authenticated: true,
		Username:      username,
		Permission:    permission,
	})
}
