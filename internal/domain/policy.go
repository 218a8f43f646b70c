package domain

type Operation string

const (
	OpListTasks        Operation = "task.list"
	OpReadTask         Operation = "task.read"
	OpCreateTask       Operation = "task.create"
	OpUpdateTaskStatus Operation = "task.update.status"
	OpUpdateTaskFields Operation = "task.update.fields"
	OpDeleteTask       Operation = "task.delete"
)

// Scope is how far an operation reaches for a given role.
type Scope uint8

const (
	ScopeNone Scope = iota
	// ScopeOwn limits the operation to tasks assigned (or being assigned) to the caller.
	ScopeOwn
	ScopeAny
)

// Policy is the capability table (operation, role) -> scope. Missing entries deny.
type Policy map[Operation]map[Role]Scope

// DefaultPolicy matches the behaviour clients rely on today: anyone may create,
// and an assignee may patch every field of their own task.
var DefaultPolicy = Policy{
	OpListTasks:        {RoleManager: ScopeAny, RoleUser: ScopeOwn},
	OpReadTask:         {RoleManager: ScopeAny, RoleUser: ScopeOwn},
	OpCreateTask:       {RoleManager: ScopeAny, RoleUser: ScopeAny},
	OpUpdateTaskStatus: {RoleManager: ScopeAny, RoleUser: ScopeOwn},
	OpUpdateTaskFields: {RoleManager: ScopeAny, RoleUser: ScopeOwn},
	OpDeleteTask:       {RoleManager: ScopeAny},
}

// StrictPolicy aligns the server with the UI: users create only for themselves
// and may change nothing but the status of their own tasks.
var StrictPolicy = Policy{
	OpListTasks:        {RoleManager: ScopeAny, RoleUser: ScopeOwn},
	OpReadTask:         {RoleManager: ScopeAny, RoleUser: ScopeOwn},
	OpCreateTask:       {RoleManager: ScopeAny, RoleUser: ScopeOwn},
	OpUpdateTaskStatus: {RoleManager: ScopeAny, RoleUser: ScopeOwn},
	OpUpdateTaskFields: {RoleManager: ScopeAny},
	OpDeleteTask:       {RoleManager: ScopeAny},
}

func (p Policy) Scope(op Operation, role Role) Scope {
	return p[op][role]
}

// Allow decides a single operation; owned reports whether the caller is the assignee.
func (p Policy) Allow(op Operation, role Role, owned bool) bool {
	switch p.Scope(op, role) {
	case ScopeAny:
		return true
	case ScopeOwn:
		return owned
	}
	return false
}
