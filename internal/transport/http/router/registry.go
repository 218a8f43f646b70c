package router

import (
	"sort"
	"sync"

	"github.com/gin-gonic/gin"
)

// 模块可实现其中任意几个接口，按分组挂载
type PublicModule interface{ MountPublic(*gin.RouterGroup) }   // /api，无需登录
type APIModule interface{ MountAPI(*gin.RouterGroup) }         // /api，需登录
type ManagerModule interface{ MountManager(*gin.RouterGroup) } // /api，需登录 + manager

// 可选：实现该接口可控制挂载顺序（数值越小越先挂）
// 不实现则默认 100
type prioritizer interface{ Priority() int }

// Registry 每个 engine 一份，不再使用包级全局列表
type Registry struct {
	mu         sync.RWMutex
	publicMods []PublicModule
	apiMods    []APIModule
	mgrMods    []ManagerModule
}

// Register 统一注册入口：根据类型断言分发到各分组
func (r *Registry) Register(mods ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, mod := range mods {
		if m, ok := mod.(PublicModule); ok {
			r.publicMods = append(r.publicMods, m)
		}
		if m, ok := mod.(APIModule); ok {
			r.apiMods = append(r.apiMods, m)
		}
		if m, ok := mod.(ManagerModule); ok {
			r.mgrMods = append(r.mgrMods, m)
		}
	}
}

func (r *Registry) MountPublic(g *gin.RouterGroup) {
	r.mu.RLock()
	mods := append([]PublicModule(nil), r.publicMods...)
	r.mu.RUnlock()
	for _, m := range byPriority(mods) {
		m.MountPublic(g)
	}
}

func (r *Registry) MountAPI(g *gin.RouterGroup) {
	r.mu.RLock()
	mods := append([]APIModule(nil), r.apiMods...)
	r.mu.RUnlock()
	for _, m := range byPriority(mods) {
		m.MountAPI(g)
	}
}

func (r *Registry) MountManager(g *gin.RouterGroup) {
	r.mu.RLock()
	mods := append([]ManagerModule(nil), r.mgrMods...)
	r.mu.RUnlock()
	for _, m := range byPriority(mods) {
		m.MountManager(g)
	}
}

func byPriority[M any](mods []M) []M {
	sort.SliceStable(mods, func(i, j int) bool {
		return priorityOf(mods[i]) < priorityOf(mods[j])
	})
	return mods
}

func priorityOf(v any) int {
	if p, ok := v.(prioritizer); ok {
		return p.Priority()
	}
	return 100
}
