package domain

import (
	"github.com/fundwit/go-commons/types"
)

const (
	FormTypeCreated     = "created"
	FormTypeInteraction = "interaction"
	FormTypeEvaluated   = "evaluated"
)

const (
	PredefinedTeachers    = "teachers"
	PredefinedStudents    = "students"
	PredefinedInstitution = "institution"
)

type Form struct {
	ID          types.ID `json:"id" gorm:"primary_key"`
	Name        string   `json:"name"`
	Slug        string   `json:"slug" gorm:"unique_index:uni_form_slug"`
	Description string   `json:"description" sql:"type:TEXT"`

	Type          string `json:"type"`
	InitialStatus string `json:"initialStatus"`
	Active        bool   `json:"active"`

	// PeriodOpen may be absent, PeriodClose bounds public resolution.
	PeriodOpen  *types.Timestamp `json:"periodOpen" sql:"type:DATETIME(6)"`
	PeriodClose *types.Timestamp `json:"periodClose" sql:"type:DATETIME(6)"`

	// WorkflowID names the workflow draft lineage committed activities run.
	WorkflowID types.ID `json:"workflowId"`

	// PublishedDraftID is the form draft currently served by slug lookup.
	PublishedDraftID types.ID `json:"publishedDraftId"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6)"`
}

func (r *Form) TableName() string {
	return "forms"
}

type FormBrief struct {
	ID   types.ID `json:"id"`
	Name string   `json:"name"`
	Slug string   `json:"slug"`
}

type FormDetail struct {
	Form
	Published *FormDraft `json:"published"`
}

type FormQuery struct {
	PageQuery

	Types  []string `form:"type"`
	Active *bool    `form:"active"`
	Name   string   `form:"name"`
	Slug   string   `form:"slug"`
}
