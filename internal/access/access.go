// Package access holds the pure permission rules used by the HTTP gates.
package access

import "github.com/ahmetcoskunkizilkaya/foodgram/internal/models"

// CanMutate reports whether a user with role may change a resource.
// Owners always can; admins can change anything.
func CanMutate(role models.Role, isOwner bool) bool {
	return isOwner || role == models.RoleAdmin
}

// IsSafeMethod reports whether method only reads state.
func IsSafeMethod(method string) bool {
	switch method {
	case "GET", "HEAD", "OPTIONS":
		return true
	}
	return false
}
