package auth

import (
	"fmt"
	"go-blog-app/internal/logger"

	"github.com/casbin/casbin/v2"
)

// SeedDefaultPolicies ensures the application has a baseline set of
// authorization rules. Each policy is checked before insertion, so the
// operation is idempotent and safe on every start.
func SeedDefaultPolicies(e casbin.IEnforcer, log logger.Logger) {
	log.Info("Seeding default authorization policies...")

	policies := [][]string{
		// Readers browse topics and redeem reveal tokens without an account.
		{"anonymous", "/subjects", "GET"},
		{"anonymous", "/tags", "GET"},
		{"anonymous", "/topics/*", "GET"},
		{"anonymous", "/protected-content", "POST"},
		{"anonymous", "/admin/login", "POST"},

		// Admins author content and manage their own account.
		{"admin", "/admin/logout", "POST"},
		{"admin", "/admin/password", "POST"},
		{"admin", "/admin/topics", "POST"},
		{"admin", "/admin/topics/*", "POST"},
		{"admin", "/admin/subjects", "POST"},
		{"admin", "/admin/subjects/*", "POST"},
		{"admin", "/admin/tags/*", "POST"},

		// Only sys accounts manage other admin accounts.
		{"sys", "/admin/admins", "POST"},
		{"sys", "/admin/admins/*", "POST"},
	}
	for _, p := range policies {
		if has, _ := e.HasPolicy(p); !has {
			if _, err := e.AddPolicy(p); err != nil {
				log.Error(err, fmt.Sprintf("Failed to add policy %v", p))
			}
		}
	}

	// Role inheritance: admin extends anonymous, sys extends admin.
	roles := [][2]string{
		{"admin", "anonymous"},
		{"sys", "admin"},
	}
	for _, r := range roles {
		if has, _ := e.HasRoleForUser(r[0], r[1]); !has {
			if _, err := e.AddRoleForUser(r[0], r[1]); err != nil {
				log.Error(err, fmt.Sprintf("Failed to add role %s -> %s", r[0], r[1]))
			}
		}
	}
	log.Info("Policy seeding complete.")
}
