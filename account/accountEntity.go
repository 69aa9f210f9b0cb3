package account

import (
	"activityflow/authority"
	"activityflow/domain"

	"github.com/fundwit/go-commons/types"
)

const (
	RoleAdmin   = "admin"
	RoleTeacher = "teacher"
	RoleStudent = "student"
)

// UniversityDegreeExternal marks placeholder teacher accounts provisioned
// for external co-masterminds referenced only by email.
const UniversityDegreeExternal = "mastermind"

var (
	SystemAdminPermission = authority.Permission{ID: "system.admin", Name: "system administration"}
	SystemViewPermission  = authority.Permission{ID: "system.view", Name: "system view"}
	FormManagePermission  = authority.Permission{ID: "form.manage", Name: "form management"}
	FormViewPermission    = authority.Permission{ID: "form.view", Name: "form view"}
)

func PermsOfRole(role string) authority.Permissions {
	switch role {
	case RoleAdmin:
		return authority.Permissions{SystemAdminPermission.ID, SystemViewPermission.ID, FormManagePermission.ID, FormViewPermission.ID}
	case RoleTeacher:
		return authority.Permissions{FormViewPermission.ID}
	default:
		return authority.Permissions{}
	}
}

type User struct {
	ID   types.ID `json:"id" gorm:"primary_key"`
	Name string   `json:"name"`

	Email  string `json:"email" gorm:"unique_index:uni_user_email"`
	Secret string `json:"-"`

	Role             string `json:"role"`
	UniversityDegree string `json:"universityDegree,omitempty"`
	Matriculation    string `json:"matriculation,omitempty"`

	InstituteID types.ID `json:"instituteId"`

	IsExternal bool `json:"isExternal"`
	Active     bool `json:"active"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6)"`
}

func (r *User) TableName() string {
	return "users"
}

func (u *User) Brief() domain.UserBrief {
	return domain.UserBrief{ID: u.ID, Name: u.Name, Email: u.Email, Matriculation: u.Matriculation}
}

type UserInfo struct {
	ID            types.ID `json:"id"`
	Name          string   `json:"name"`
	Email         string   `json:"email"`
	Role          string   `json:"role"`
	Matriculation string   `json:"matriculation,omitempty"`
	IsExternal    bool     `json:"isExternal"`
}

func (u *UserInfo) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

type UserCreation struct {
	Name   string `json:"name" binding:"required"`
	Email  string `json:"email" binding:"required,email"`
	Secret string `json:"secret" binding:"required"`
	Role   string `json:"role" binding:"required,oneof=admin teacher student"`

	Matriculation string   `json:"matriculation"`
	InstituteID   types.ID `json:"instituteId"`
}

type UserQuery struct {
	domain.PageQuery

	Name  string `form:"name"`
	Email string `form:"email"`
	Role  string `form:"role"`
}

type UserList struct {
	Users      []UserInfo        `json:"users"`
	Pagination domain.Pagination `json:"pagination"`
}
