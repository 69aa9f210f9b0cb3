package account_test

import (
	"testing"

	"activityflow/account"
	"activityflow/authority"

	. "github.com/onsi/gomega"
)

func TestHashSha256(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should be deterministic and hex encoded", func(t *testing.T) {
		Expect(account.HashSha256("abc123")).To(Equal(account.HashSha256("abc123")))
		Expect(account.HashSha256("abc123")).To(
			Equal("6ca13d52ca70c883e0f0bb101e425a89e8624de51db2d2392593af6a84118090"))
		Expect(account.HashSha256("abc123")).ToNot(Equal(account.HashSha256("abc124")))
	})
}

func TestPermsOfRole(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should map roles to permissions", func(t *testing.T) {
		Expect(account.PermsOfRole(account.RoleAdmin)).To(Equal(authority.Permissions{
			account.SystemAdminPermission.ID, account.SystemViewPermission.ID,
			account.FormManagePermission.ID, account.FormViewPermission.ID}))
		Expect(account.PermsOfRole(account.RoleTeacher)).To(Equal(authority.Permissions{account.FormViewPermission.ID}))
		Expect(account.PermsOfRole(account.RoleStudent)).To(Equal(authority.Permissions{}))
		Expect(account.PermsOfRole("unknown")).To(Equal(authority.Permissions{}))
	})
}

func TestUserInfoDisplayName(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should fall back to email when name is empty", func(t *testing.T) {
		u := account.UserInfo{Name: "ann", Email: "ann@test.edu"}
		Expect(u.DisplayName()).To(Equal("ann"))
		u.Name = ""
		Expect(u.DisplayName()).To(Equal("ann@test.edu"))
	})
}
