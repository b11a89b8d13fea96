package auth

// Role is the access level attached to an identity. Levels are strictly
// ordered; a higher role can do everything a lower one can.
type Role string

const (
	RolePublic    Role = "public"
	RoleVolunteer Role = "volunteer"
	RoleAdmin     Role = "admin"
)

var roleRank = map[Role]int{
	RolePublic:    0,
	RoleVolunteer: 1,
	RoleAdmin:     2,
}

// CheckRole reports whether held satisfies required. Unknown roles rank
// below public, so a garbage role never grants access.
func CheckRole(held, required Role) bool {
	heldRank, ok := roleRank[held]
	if !ok {
		heldRank = -1
	}
	requiredRank, ok := roleRank[required]
	if !ok {
		return false
	}
	return heldRank >= requiredRank
}
