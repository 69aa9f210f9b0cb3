package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/fundwit/go-commons/types"
)

const (
	DraftStatusDraft     = "draft"
	DraftStatusPublished = "published"
)

const (
	FieldTypeText        = "text"
	FieldTypeTextArea    = "textarea"
	FieldTypeNumber      = "number"
	FieldTypeDate        = "date"
	FieldTypeSelect      = "select"
	FieldTypeMultiSelect = "multiselect"
	FieldTypeFile        = "file"
	FieldTypeEmail       = "email"
)

type FieldOption struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

type Field struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Label    string `json:"label"`
	Required bool   `json:"required"`
	Visible  bool   `json:"visible"`

	// System fields are injected by form templates, not authored.
	System bool `json:"system"`

	// Predefined names a live option source: teachers, students, institution.
	Predefined string `json:"predefined,omitempty"`

	Value   string        `json:"value,omitempty"`
	Options []FieldOption `json:"options,omitempty"`
}

type FieldList []Field

func (t FieldList) Value() (driver.Value, error) {
	jsonBytes, err := json.Marshal(&t)
	if err != nil {
		return nil, err
	}
	return string(jsonBytes), nil
}

func (t *FieldList) Scan(v interface{}) error {
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

// FormDraft is a version of a form's field schema. At most one draft
// of a form is published at a time.
type FormDraft struct {
	ID      types.ID `json:"id" gorm:"primary_key"`
	FormID  types.ID `json:"parent" gorm:"index:idx_form_draft_form"`
	Version int      `json:"version"`
	Status  string   `json:"status"`

	Fields FieldList `json:"fields" sql:"type:MEDIUMTEXT"`

	OwnerID    types.ID        `json:"owner"`
	CreateTime types.Timestamp `json:"createdAt" sql:"type:DATETIME(6)"`
}

func (r *FormDraft) TableName() string {
	return "form_drafts"
}
