package rbac

import "fmt"

const (
	PermissionCreateProject   = "project:create"
	PermissionReadProject     = "project:read"
	PermissionUpdateProject   = "project:update"
	PermissionUpdateMilestone = "milestone:update"
	PermissionToggleChecklist = "checklist:toggle"
	PermissionReadPerformance = "performance:read"
	PermissionReadAnyMember   = "performance:read_any"
	PermissionRequestReview   = "peer_review:create"
	PermissionReplayOutbox    = "outbox:replay"
	PermissionReadMembers     = "member:read"
	PermissionReadMentoring   = "mentoring:read"
	PermissionWriteMentoring  = "mentoring:write"
)

const (
	RoleMember    = "member"
	RoleProfessor = "professor"
)

var memberPermissions = []string{
	PermissionCreateProject,
	PermissionReadProject,
	PermissionUpdateProject,
	PermissionUpdateMilestone,
	PermissionToggleChecklist,
	PermissionReadPerformance,
	PermissionRequestReview,
	PermissionReadMembers,
	PermissionReadMentoring,
	PermissionWriteMentoring,
}

var rolePermissions = map[string][]string{
	RoleMember: memberPermissions,
	RoleProfessor: append(append([]string{}, memberPermissions...),
		PermissionReadAnyMember,
		PermissionReplayOutbox,
	),
}

// NormalizeRole maps an empty or unknown role claim to RoleMember.
func NormalizeRole(role string) string {
	if _, ok := rolePermissions[role]; ok {
		return role
	}
	return RoleMember
}

func HasPermission(role, permission string) bool {
	for _, p := range rolePermissions[NormalizeRole(role)] {
		if p == permission {
			return true
		}
	}
	return false
}

func CheckPermission(role, permission string) error {
	if !HasPermission(role, permission) {
		return &PermissionDeniedError{Role: role, Permission: permission}
	}
	return nil
}

type PermissionDeniedError struct {
	Role       string
	Permission string
}

func (e *PermissionDeniedError) Error() string {
	return fmt.Sprintf("role %q lacks permission %q", e.Role, e.Permission)
}
