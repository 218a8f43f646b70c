package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"teamtask/internal/domain"
	"teamtask/internal/service"
	httpez "teamtask/internal/transport/http/ez"
	mdw "teamtask/internal/transport/http/middleware"
)

type TaskHandler struct {
	tasks *service.TaskService
}

func NewTaskHandler(tasks *service.TaskService) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

type listTasksQ struct {
	Status string `form:"status"`
}

type createTaskIn struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	AssignedTo  string `json:"assignedTo"`
}

// 指针字段：未出现的字段保持原值
type updateTaskIn struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	AssignedTo  *string `json:"assignedTo"`
}

type deletedOut struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

func (h *TaskHandler) Priority() int { return 20 }

// caller 由 AuthJWT 写入；缺失说明路由没挂鉴权
func caller(c *gin.Context) (domain.Principal, error) {
	p, ok := mdw.Caller(c)
	if !ok {
		return domain.Principal{}, domain.ErrUnauthenticated
	}
	return p, nil
}

func (h *TaskHandler) MountAPI(g *gin.RouterGroup) {
	ez := httpez.New(g)

	httpez.RegisterAction(ez, httpez.Action[listTasksQ, []domain.Task]{
		Method: http.MethodGet,
		Path:   "/tasks",
		Binder: httpez.BindQuery,
		Auth:   true,
		Handler: func(c *gin.Context, in *listTasksQ) ([]domain.Task, error) {
			p, err := caller(c)
			if err != nil {
				return nil, err
			}
			return h.tasks.List(c.Request.Context(), p, in.Status)
		},
	})

	// gin 静态段 stats 优先于 :id 匹配
	httpez.RegisterAction(ez, httpez.Action[struct{}, domain.StatusCounts]{
		Method: http.MethodGet,
		Path:   "/tasks/stats",
		Binder: httpez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (domain.StatusCounts, error) {
			p, err := caller(c)
			if err != nil {
				return domain.StatusCounts{}, err
			}
			return h.tasks.Stats(c.Request.Context(), p)
		},
	})

	httpez.RegisterAction(ez, httpez.Action[struct{}, *domain.Task]{
		Method: http.MethodGet,
		Path:   "/tasks/:id",
		Binder: httpez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.Task, error) {
			p, err := caller(c)
			if err != nil {
				return nil, err
			}
			return h.tasks.Get(c.Request.Context(), p, c.Param("id"))
		},
	})

	httpez.RegisterAction(ez, httpez.Action[createTaskIn, *domain.Task]{
		Method: http.MethodPost,
		Path:   "/tasks",
		Binder: httpez.BindJSON,
		Auth:   true,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, in *createTaskIn) (*domain.Task, error) {
			p, err := caller(c)
			if err != nil {
				return nil, err
			}
			return h.tasks.Create(c.Request.Context(), p, domain.NewTask{
				Title:       in.Title,
				Description: in.Description,
				Status:      in.Status,
				AssignedTo:  in.AssignedTo,
			})
		},
	})

	httpez.RegisterAction(ez, httpez.Action[updateTaskIn, *domain.Task]{
		Method: http.MethodPut,
		Path:   "/tasks/:id",
		Binder: httpez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, in *updateTaskIn) (*domain.Task, error) {
			p, err := caller(c)
			if err != nil {
				return nil, err
			}
			return h.tasks.Update(c.Request.Context(), p, c.Param("id"), domain.TaskPatch{
				Title:       in.Title,
				Description: in.Description,
				Status:      in.Status,
				AssignedTo:  in.AssignedTo,
			})
		},
	})

	// 角色判断在策略表里，先于存在性检查
	httpez.RegisterAction(ez, httpez.Action[struct{}, deletedOut]{
		Method: http.MethodDelete,
		Path:   "/tasks/:id",
		Binder: httpez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (deletedOut, error) {
			p, err := caller(c)
			if err != nil {
				return deletedOut{}, err
			}
			id := c.Param("id")
			if err := h.tasks.Delete(c.Request.Context(), p, id); err != nil {
				return deletedOut{}, err
			}
			return deletedOut{ID: id, Message: "Task removed"}, nil
		},
	})
}
