package access

import (
	"testing"

	"github.com/ahmetcoskunkizilkaya/foodgram/internal/models"
)

func TestCanMutate(t *testing.T) {
	tests := []struct {
		role    models.Role
		isOwner bool
		want    bool
	}{
		{models.RoleUser, true, true},
		{models.RoleUser, false, false},
		{models.RoleModerator, false, false},
		{models.RoleModerator, true, true},
		{models.RoleAdmin, false, true},
		{models.RoleAdmin, true, true},
		{"", false, false},
	}
	for _, tt := range tests {
		if got := CanMutate(tt.role, tt.isOwner); got != tt.want {
			t.Errorf("CanMutate(%q, %v) = %v, want %v", tt.role, tt.isOwner, got, tt.want)
		}
	}
}

func TestIsSafeMethod(t *testing.T) {
	for _, m := range []string{"GET", "HEAD", "OPTIONS"} {
		if !IsSafeMethod(m) {
			t.Errorf("IsSafeMethod(%s) = false", m)
		}
	}
	for _, m := range []string{"POST", "PATCH", "PUT", "DELETE"} {
		if IsSafeMethod(m) {
			t.Errorf("IsSafeMethod(%s) = true", m)
		}
	}
}
