package staff

// Principal identifies the authenticated caller.
type Principal struct {
	UserID string
	Email  string
}

// User is an assignable team member from the staff directory.
type User struct {
	ID       string
	Email    string
	FullName string
	Role     string
}

// AssignableRoles are the directory roles offered in assignment selectors.
var AssignableRoles = map[string]struct{}{
	"datametrics": {},
	"admin":       {},
}

func IsAssignableRole(role string) bool {
	_, ok := AssignableRoles[role]
	return ok
}
