package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"teamtask/internal/domain"
	"teamtask/internal/service"
	httpez "teamtask/internal/transport/http/ez"
)

// UserHandler 团队成员查询，只挂在经理分组下
type UserHandler struct {
	users *service.UserService
}

func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

func (h *UserHandler) Priority() int { return 30 }

func (h *UserHandler) MountManager(g *gin.RouterGroup) {
	ez := httpez.New(g)

	httpez.RegisterAction(ez, httpez.Action[struct{}, []domain.User]{
		Method: http.MethodGet,
		Path:   "/users",
		Binder: httpez.BindNone,
		Auth:   true,
		Roles:  []domain.Role{domain.RoleManager},
		Handler: func(c *gin.Context, _ *struct{}) ([]domain.User, error) {
			return h.users.List(c.Request.Context())
		},
	})

	httpez.RegisterAction(ez, httpez.Action[struct{}, *domain.User]{
		Method: http.MethodGet,
		Path:   "/users/:id",
		Binder: httpez.BindNone,
		Auth:   true,
		Roles:  []domain.Role{domain.RoleManager},
		Handler: func(c *gin.Context, _ *struct{}) (*domain.User, error) {
			return h.users.Get(c.Request.Context(), c.Param("id"))
		},
	})
}
