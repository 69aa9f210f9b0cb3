package session

import (
	"context"
	"time"

	"activityflow/authority"

	"github.com/fundwit/go-commons/types"
)

type Session struct {
	Token    string                `json:"token"`
	Identity Identity              `json:"identity"`
	Perms    authority.Permissions `json:"perms"`
	Tenant   string                `json:"tenant"`

	SigningTime time.Time `json:"-"`

	Context context.Context `json:"-"`
}

type Identity struct {
	ID    types.ID `json:"id"`
	Name  string   `json:"name"`
	Email string   `json:"email"`
}

func (s *Session) Clone() Session {
	c := *s
	perms := make(authority.Permissions, len(s.Perms))
	copy(perms, s.Perms)
	c.Perms = perms
	return c
}
