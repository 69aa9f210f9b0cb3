package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/fundwit/go-commons/types"
)

// StartStepID is the id of the entry node every runnable graph carries.
const StartStepID = "start"

const (
	StepTypeChangeStatus = "change_status"
	StepTypeSendEmail    = "send_email"
	StepTypeSwapWorkflow = "swap_workflow"
	StepTypeInteraction  = "interaction"
	StepTypeEvaluated    = "evaluated"
	StepTypeConditional  = "conditional"
)

var stepTypes = map[string]bool{
	StepTypeChangeStatus: true,
	StepTypeSendEmail:    true,
	StepTypeSwapWorkflow: true,
	StepTypeInteraction:  true,
	StepTypeEvaluated:    true,
	StepTypeConditional:  true,
}

func IsKnownStepType(t string) bool {
	return stepTypes[t]
}

// StepNext names the outgoing edges of a node. Alternate is only taken
// by conditional and evaluated nodes. An empty Default ends the walk.
type StepNext struct {
	Default   string `json:"default,omitempty"`
	Alternate string `json:"alternate,omitempty"`
}

type StepData map[string]interface{}

type StepNode struct {
	ID   string   `json:"id"`
	Type string   `json:"type"`
	Name string   `json:"name"`
	Data StepData `json:"data,omitempty"`
	Next StepNext `json:"next"`
}

func (t StepNode) Value() (driver.Value, error) {
	jsonBytes, err := json.Marshal(&t)
	if err != nil {
		return nil, err
	}
	return string(jsonBytes), nil
}

func (t *StepNode) Scan(v interface{}) error {
	jsonString, ok := v.(string)
	if !ok {
		jsonByte, ok := v.([]byte)
		if !ok {
			return fmt.Errorf("type is neither string nor []byte: %T %v", v, v)
		}
		jsonString = string(jsonByte)
	}
	return json.Unmarshal([]byte(jsonString), t)
}

type StepList []StepNode

func (t StepList) Value() (driver.Value, error) {
	jsonBytes, err := json.Marshal(&t)
	if err != nil {
		return nil, err
	}
	return string(jsonBytes), nil
}

func (t *StepList) Scan(v interface{}) error {
	jsonString, ok := v.(string)
	if !ok {
		jsonByte, ok := v.([]byte)
		if !ok {
			return fmt.Errorf("type is neither string nor []byte: %T %v", v, v)
		}
		jsonString = string(jsonByte)
	}
	return json.Unmarshal([]byte(jsonString), t)
}

func (t StepList) FindStart() (StepNode, bool) {
	return t.FindStep(StartStepID)
}

func (t StepList) FindStep(id string) (StepNode, bool) {
	for _, s := range t {
		if s.ID == id {
			return s, true
		}
	}
	return StepNode{}, false
}

// WorkflowDraft is a version of an authored step graph. Exactly one node
// carries the id "start". Once snapshotted onto an activity the graph
// is immutable.
type WorkflowDraft struct {
	ID         types.ID `json:"id" gorm:"primary_key"`
	WorkflowID types.ID `json:"parent" gorm:"index:idx_workflow_draft_workflow"`
	Version    int      `json:"version"`
	Status     string   `json:"status"`

	Steps StepList `json:"steps" sql:"type:MEDIUMTEXT"`

	OwnerID    types.ID        `json:"owner"`
	CreateTime types.Timestamp `json:"createdAt" sql:"type:DATETIME(6)"`
}

func (r *WorkflowDraft) TableName() string {
	return "workflow_drafts"
}

// WorkflowSnapshot is the commit time copy of a workflow draft embedded
// in an activity_workflows row.
type WorkflowSnapshot struct {
	WorkflowDraftID types.ID `json:"workflowDraftId"`
	Version         int      `json:"version"`
	Steps           StepList `json:"steps"`
}

func (t WorkflowSnapshot) Value() (driver.Value, error) {
	jsonBytes, err := json.Marshal(&t)
	if err != nil {
		return nil, err
	}
	return string(jsonBytes), nil
}

func (t *WorkflowSnapshot) Scan(v interface{}) error {
	jsonString, ok := v.(string)
	if !ok {
		jsonByte, ok := v.([]byte)
		if !ok {
			return fmt.Errorf("type is neither string nor []byte: %T %v", v, v)
		}
		jsonString = string(jsonByte)
	}
	return json.Unmarshal([]byte(jsonString), t)
}
