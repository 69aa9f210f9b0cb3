package domain

import (
	"activityflow/domain/state"

	"github.com/fundwit/go-commons/types"
)

const (
	ActivityStateCreated    = "created"
	ActivityStateProcessing = "processing"
	ActivityStateFinished   = "finished"
)

// ActivityLifecycle walks forward only.
var ActivityLifecycle = state.NewStateMachine(
	state.State{Name: ActivityStateCreated, Order: 1},
	state.State{Name: ActivityStateProcessing, Order: 2},
	state.State{Name: ActivityStateFinished, Order: 3},
)

const (
	AcceptedPending  = "pending"
	AcceptedAccepted = "accepted"
	AcceptedRejected = "rejected"
)

type Activity struct {
	ID          types.ID `json:"id" gorm:"primary_key"`
	Name        string   `json:"name"`
	Description string   `json:"description" sql:"type:TEXT"`
	Protocol    string   `json:"protocol" gorm:"index:idx_activity_protocol"`

	FormID      types.ID `json:"formId" gorm:"index:idx_activity_form"`
	FormDraftID types.ID `json:"formDraftId"`

	State string `json:"state" gorm:"index:idx_activity_state"`

	// Status is the display status mutated by change_status steps.
	Status string `json:"status"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6)"`
}

func (r *Activity) TableName() string {
	return "activities"
}

type ActivityUser struct {
	ActivityID types.ID `json:"activityId" gorm:"primary_key;auto_increment:false"`
	UserID     types.ID `json:"userId" gorm:"primary_key;auto_increment:false"`
	Ord        int      `json:"ord"`
}

func (r *ActivityUser) TableName() string {
	return "activity_users"
}

type ActivityMastermind struct {
	ActivityID types.ID `json:"activityId" gorm:"primary_key;auto_increment:false"`
	UserID     types.ID `json:"userId" gorm:"primary_key;auto_increment:false"`
	Accepted   string   `json:"accepted"`

	// Sub marks co-masterminds.
	Sub bool `json:"sub" gorm:"primary_key;auto_increment:false"`
}

func (r *ActivityMastermind) TableName() string {
	return "activity_masterminds"
}

// ActivityWorkflow binds a snapshot of a workflow draft to an activity.
// The snapshot is a copy taken at commit time, later edits of the draft
// do not reach in-flight activities. Rows are append-only.
type ActivityWorkflow struct {
	ID         types.ID `json:"id" gorm:"primary_key"`
	ActivityID types.ID `json:"activityId" gorm:"index:idx_activity_workflow"`

	WorkflowDraftID types.ID         `json:"workflowDraftId"`
	Snapshot        WorkflowSnapshot `json:"workflowDraft" sql:"type:MEDIUMTEXT"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6)"`
}

func (r *ActivityWorkflow) TableName() string {
	return "activity_workflows"
}

const (
	StepStatusIdle       = "idle"
	StepStatusInProgress = "in_progress"
	StepStatusFinished   = "finished"
	StepStatusError      = "error"
)

type ActivityWorkflowStep struct {
	ID                 types.ID `json:"id" gorm:"primary_key"`
	ActivityWorkflowID types.ID `json:"activityWorkflowId" gorm:"index:idx_workflow_step"`

	StepID string   `json:"stepId"`
	Step   StepNode `json:"step" sql:"type:TEXT"`
	Status string   `json:"status"`
	Ord    int      `json:"ord"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6)"`
	FinishTime types.Timestamp `json:"finishTime" sql:"type:DATETIME(6)"`
}

func (r *ActivityWorkflowStep) TableName() string {
	return "activity_workflow_steps"
}

type UserBrief struct {
	ID            types.ID `json:"id"`
	Name          string   `json:"name"`
	Email         string   `json:"email"`
	Matriculation string   `json:"matriculation"`
}

type MastermindBrief struct {
	User     UserBrief `json:"user"`
	Accepted string    `json:"accepted"`
}

type ActivityWorkflowDetail struct {
	ActivityWorkflow
	Steps []ActivityWorkflowStep `json:"steps"`
}

type ActivityDetail struct {
	Activity

	Users          []UserBrief       `json:"users"`
	Masterminds    []MastermindBrief `json:"masterminds"`
	SubMasterminds []MastermindBrief `json:"subMasterminds"`

	Form      FormBrief                `json:"form"`
	Workflows []ActivityWorkflowDetail `json:"workflows"`
}

type ActivityQuery struct {
	PageQuery

	State string `form:"state"`
	Name  string `form:"name"`
}
