package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"teamtask/internal/domain"
	"teamtask/internal/service"
	httpez "teamtask/internal/transport/http/ez"
	mdw "teamtask/internal/transport/http/middleware"
)

type TokenIssuer interface {
	Issue(uid string) (string, error)
}

type AuthHandler struct {
	users  *service.UserService
	tokens TokenIssuer
}

func NewAuthHandler(users *service.UserService, tokens TokenIssuer) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens}
}

type registerIn struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type loginIn struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionOut struct {
	User  *domain.User `json:"user"`
	Token string       `json:"token"`
}

func (h *AuthHandler) Priority() int { return 10 }

// MountPublic /auth/register 与 /auth/login 不需要登录
func (h *AuthHandler) MountPublic(g *gin.RouterGroup) {
	ez := httpez.New(g)

	httpez.RegisterAction(ez, httpez.Action[registerIn, sessionOut]{
		Method: http.MethodPost,
		Path:   "/auth/register",
		Binder: httpez.BindJSON,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, in *registerIn) (sessionOut, error) {
			u, err := h.users.Register(c.Request.Context(), service.RegisterInput{
				Name: in.Name, Email: in.Email, Password: in.Password, Role: in.Role,
			})
			if err != nil {
				return sessionOut{}, err
			}
			return h.session(u)
		},
	})

	httpez.RegisterAction(ez, httpez.Action[loginIn, sessionOut]{
		Method: http.MethodPost,
		Path:   "/auth/login",
		Binder: httpez.BindJSON,
		Handler: func(c *gin.Context, in *loginIn) (sessionOut, error) {
			u, err := h.users.VerifyCredentials(c.Request.Context(), in.Email, in.Password)
			if err != nil {
				return sessionOut{}, err
			}
			return h.session(u)
		},
	})
}

// MountAPI /auth/me 需要登录
func (h *AuthHandler) MountAPI(g *gin.RouterGroup) {
	httpez.RegisterAction(httpez.New(g), httpez.Action[struct{}, *domain.User]{
		Method: http.MethodGet,
		Path:   "/auth/me",
		Binder: httpez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.User, error) {
			return h.users.Get(c.Request.Context(), c.GetString(mdw.KeyUserID))
		},
	})
}

func (h *AuthHandler) session(u *domain.User) (sessionOut, error) {
	tok, err := h.tokens.Issue(u.ID)
	if err != nil {
		return sessionOut{}, httpez.Internal("issue token failed", err)
	}
	return sessionOut{User: u, Token: tok}, nil
}
