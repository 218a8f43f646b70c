package repo

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"teamtask/internal/core/database"
	"teamtask/internal/domain"
	"teamtask/pkg/utils"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.NewGorm(database.Opts{
		Driver:       "sqlite",
		DSN:          "file:" + utils.NewID() + "?mode=memory&cache=shared&_pragma=foreign_keys(1)",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
		LogLevel:     "silent",
	})
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func seedUser(t *testing.T, r *UserRepo, name string, role domain.Role) *domain.User {
	t.Helper()
	u := &domain.User{ID: utils.NewID(), Name: name, Email: name + "@example.com", PasswordHash: "x", Role: role}
	require.NoError(t, r.Create(context.Background(), u))
	return u
}

func TestUserRepoCreateFind(t *testing.T) {
	ctx := context.Background()
	r := NewUserRepo(newTestDB(t))

	u := seedUser(t, r, "alice", domain.RoleManager)
	assert.False(t, u.CreatedAt.IsZero())

	got, err := r.FindByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "alice@example.com", got.Email)
	assert.Equal(t, domain.RoleManager, got.Role)
	assert.Equal(t, "x", got.PasswordHash)

	got, err = r.FindByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, u.ID, got.ID)

	// 大小写敏感
	got, err = r.FindByEmail(ctx, "ALICE@example.com")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = r.FindByID(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestUserRepoDuplicateEmail(t *testing.T) {
	r := NewUserRepo(newTestDB(t))
	seedUser(t, r, "bob", domain.RoleUser)

	dup := &domain.User{ID: utils.NewID(), Name: "bob2", Email: "bob@example.com", PasswordHash: "x", Role: domain.RoleUser}
	assert.ErrorIs(t, r.Create(context.Background(), dup), domain.ErrDuplicateEmail)

	// 只差大小写的 email 是不同账号
	upper := &domain.User{ID: utils.NewID(), Name: "bob3", Email: "BOB@example.com", PasswordHash: "x", Role: domain.RoleUser}
	assert.NoError(t, r.Create(context.Background(), upper))
}

func TestUserRepoList(t *testing.T) {
	r := NewUserRepo(newTestDB(t))
	seedUser(t, r, "carol", domain.RoleUser)
	seedUser(t, r, "alice", domain.RoleManager)

	us, err := r.List(context.Background())
	require.NoError(t, err)
	require.Len(t, us, 2)
	assert.Equal(t, "alice", us[0].Name)
	assert.Equal(t, "carol", us[1].Name)
}

func TestTaskRepoCRUD(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	users := NewUserRepo(db)
	tasks := NewTaskRepo(db)
	u := seedUser(t, users, "dave", domain.RoleUser)

	tk := &domain.Task{ID: utils.NewID(), Title: "write docs", Description: "d", Status: domain.StatusTodo, AssignedTo: u.ID}
	require.NoError(t, tasks.Create(ctx, tk))
	assert.Equal(t, domain.Assignee{ID: u.ID, Name: "dave", Email: "dave@example.com"}, tk.Assignee)
	assert.False(t, tk.CreatedAt.IsZero())

	got, err := tasks.FindByID(ctx, tk.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "write docs", got.Title)
	assert.Equal(t, "dave", got.Assignee.Name)

	before := got.UpdatedAt
	time.Sleep(5 * time.Millisecond)
	got.Status = domain.StatusCompleted
	require.NoError(t, tasks.Update(ctx, got))
	assert.Equal(t, domain.StatusCompleted, got.Status)
	assert.True(t, got.UpdatedAt.After(before))

	require.NoError(t, tasks.Delete(ctx, tk.ID))
	assert.ErrorIs(t, tasks.Delete(ctx, tk.ID), domain.ErrNotFound)
	assert.ErrorIs(t, tasks.Update(ctx, got), domain.ErrNotFound)

	got, err = tasks.FindByID(ctx, tk.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestTaskRepoLongTitle(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	u := seedUser(t, NewUserRepo(db), "lena", domain.RoleUser)
	tasks := NewTaskRepo(db)

	title := strings.Repeat("t", 300)
	tk := &domain.Task{ID: utils.NewID(), Title: title, Status: domain.StatusTodo, AssignedTo: u.ID}
	require.NoError(t, tasks.Create(ctx, tk))

	got, err := tasks.FindByID(ctx, tk.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, title, got.Title)
}

// 模拟 MySQL 默认行为：值未改变时 RowsAffected 为 0
func TestTaskRepoUpdateUnchangedRowIsNotMissing(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	require.NoError(t, db.Callback().Update().After("gorm:update").Register("test:changed_rows_only", func(tx *gorm.DB) {
		tx.RowsAffected = 0
	}))
	u := seedUser(t, NewUserRepo(db), "omar", domain.RoleUser)
	tasks := NewTaskRepo(db)

	tk := &domain.Task{ID: utils.NewID(), Title: "same", Status: domain.StatusTodo, AssignedTo: u.ID}
	require.NoError(t, tasks.Create(ctx, tk))
	require.NoError(t, tasks.Update(ctx, tk))
	assert.Equal(t, "same", tk.Title)

	missing := &domain.Task{ID: "missing", Title: "x", Status: domain.StatusTodo, AssignedTo: u.ID}
	assert.ErrorIs(t, tasks.Update(ctx, missing), domain.ErrNotFound)
}

func TestEmailCollationSQL(t *testing.T) {
	assert.Empty(t, emailCollationSQL("sqlite"))
	assert.Empty(t, emailCollationSQL("postgres"))
	assert.Contains(t, emailCollationSQL("mysql"), "COLLATE utf8mb4_bin")
}

func TestTaskRepoForeignKey(t *testing.T) {
	tasks := NewTaskRepo(newTestDB(t))
	tk := &domain.Task{ID: utils.NewID(), Title: "orphan", Status: domain.StatusTodo, AssignedTo: "nobody"}
	assert.Error(t, tasks.Create(context.Background(), tk))
}

func TestTaskRepoListAndCount(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	users := NewUserRepo(db)
	tasks := NewTaskRepo(db)
	a := seedUser(t, users, "erin", domain.RoleUser)
	b := seedUser(t, users, "frank", domain.RoleUser)

	for _, seed := range []struct {
		owner  string
		status domain.Status
	}{
		{a.ID, domain.StatusTodo},
		{a.ID, domain.StatusCompleted},
		{b.ID, domain.StatusInProgress},
		{b.ID, domain.StatusTodo},
		{b.ID, domain.StatusTodo},
	} {
		require.NoError(t, tasks.Create(ctx, &domain.Task{ID: utils.NewID(), Title: "t", Status: seed.status, AssignedTo: seed.owner}))
	}

	all, err := tasks.List(ctx, domain.TaskFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 5)
	seen := map[string]bool{}
	for _, tk := range all {
		assert.False(t, seen[tk.ID])
		seen[tk.ID] = true
		assert.NotEmpty(t, tk.Assignee.Name)
	}

	mine, err := tasks.List(ctx, domain.TaskFilter{AssignedTo: a.ID})
	require.NoError(t, err)
	assert.Len(t, mine, 2)
	for _, tk := range mine {
		assert.Equal(t, a.ID, tk.AssignedTo)
	}

	todo, err := tasks.List(ctx, domain.TaskFilter{AssignedTo: b.ID, Status: domain.StatusTodo})
	require.NoError(t, err)
	assert.Len(t, todo, 2)

	counts, err := tasks.CountByStatus(ctx, domain.TaskFilter{})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCounts{Total: 5, Todo: 3, InProgress: 1, Completed: 1}, counts)

	counts, err = tasks.CountByStatus(ctx, domain.TaskFilter{AssignedTo: a.ID})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCounts{Total: 2, Todo: 1, Completed: 1}, counts)
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	users := NewUserRepo(db)
	u := seedUser(t, users, "gina", domain.RoleUser)
	require.NoError(t, NewTaskRepo(db).Create(ctx, &domain.Task{ID: utils.NewID(), Title: "t", Status: domain.StatusTodo, AssignedTo: u.ID}))

	res, err := Clear(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, ClearResult{Users: 1, Tasks: 1}, res)

	us, err := users.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, us)
}
