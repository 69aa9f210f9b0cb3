package activity

import (
	"activityflow/bizerror"
	"activityflow/domain"
	"activityflow/domain/flowdraft"
	"activityflow/event"
	"activityflow/idgen"
	"activityflow/persistence"
	"activityflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
)

type StepAdvance struct {
	// Decision picks the branch on conditional steps, default when empty.
	Decision string `json:"decision" binding:"omitempty,oneof=default alternate"`
}

// StepNotifyFunc delivers step mails, wired at bootstrap. Delivery is
// best effort and runs after the advancing transaction commits.
var StepNotifyFunc func(detail *domain.ActivityDetail, step domain.StepNode, s *session.Session) error

// AdvanceActivityStep finishes the current step of the newest workflow
// of a processing activity, applies the step's effect and schedules the
// follow-up step. An empty follow-up edge finishes the activity.
func AdvanceActivityStep(id types.ID, c *StepAdvance, s *session.Session) (*domain.ActivityDetail, error) {
	db, err := persistence.ActiveDataSourceManager.GormDB(s.Context, s.Tenant)
	if err != nil {
		return nil, err
	}

	var detail *domain.ActivityDetail
	var ev *event.EventRecord
	var mailStep *domain.StepNode
	err = db.Transaction(func(tx *gorm.DB) error {
		record := domain.Activity{}
		if err := tx.Where("id = ?", id).First(&record).Error; err != nil {
			if gorm.IsRecordNotFoundError(err) {
				return bizerror.ErrActivityNotFound
			}
			return err
		}
		if record.State != domain.ActivityStateProcessing {
			return bizerror.ErrStateInvalid
		}

		workflow := domain.ActivityWorkflow{}
		if err := tx.Where("activity_id = ?", id).Order("create_time DESC, id DESC").First(&workflow).Error; err != nil {
			if gorm.IsRecordNotFoundError(err) {
				return bizerror.ErrStepNotAdvanceable
			}
			return err
		}
		current := domain.ActivityWorkflowStep{}
		if err := tx.Where("activity_workflow_id = ?", workflow.ID).Order("ord DESC").First(&current).Error; err != nil {
			if gorm.IsRecordNotFoundError(err) {
				return bizerror.ErrStepNotAdvanceable
			}
			return err
		}
		if current.Status != domain.StepStatusIdle && current.Status != domain.StepStatusInProgress {
			return bizerror.ErrStepNotAdvanceable
		}

		// interaction and evaluated nodes wait for outside input: the
		// first advance parks them, the next one carries the outcome
		if current.Status == domain.StepStatusIdle && stepAwaitsInput(current.Step.Type) {
			if err := tx.Model(&domain.ActivityWorkflowStep{}).Where("id = ?", current.ID).
				Update("status", domain.StepStatusInProgress).Error; err != nil {
				return err
			}
			var err error
			detail, err = loadActivityDetail(id, tx)
			return err
		}

		if err := applyStepEffect(&record, current.Step, tx); err != nil {
			return err
		}
		if current.Step.Type == domain.StepTypeSendEmail {
			node := current.Step
			mailStep = &node
		}

		if err := tx.Model(&domain.ActivityWorkflowStep{}).Where("id = ?", current.ID).
			Update(map[string]interface{}{
				"status": domain.StepStatusFinished, "finish_time": types.CurrentTimestamp(),
			}).Error; err != nil {
			return err
		}

		advancedTo := current.Step.Next.Default
		if current.Step.Type == domain.StepTypeSwapWorkflow {
			if err := swapWorkflow(&record, current.Step, tx); err != nil {
				return err
			}
			advancedTo = domain.StartStepID
		} else {
			if c.Decision == "alternate" && (current.Step.Type == domain.StepTypeConditional ||
				current.Step.Type == domain.StepTypeEvaluated) {
				advancedTo = current.Step.Next.Alternate
			}
			nextId := advancedTo
			if nextId == "" {
				if err := tx.Model(&domain.Activity{}).Where("id = ?", id).
					Update("state", domain.ActivityStateFinished).Error; err != nil {
					return err
				}
			} else {
				next, found := workflow.Snapshot.Steps.FindStep(nextId)
				if !found {
					return bizerror.ErrUnknownStep
				}
				if err := tx.Create(&domain.ActivityWorkflowStep{
					ID: idgen.NextID(activityIdWorker), ActivityWorkflowID: workflow.ID,
					StepID: next.ID, Step: next, Status: domain.StepStatusIdle, Ord: current.Ord + 1,
					CreateTime: types.CurrentTimestamp(),
				}).Error; err != nil {
					return err
				}
			}
		}

		var err error
		ev, err = event.CreateEvent(SourceTypeActivity, id, describeActivity(&record),
			event.EventCategoryStepAdvanced, []event.UpdatedProperty{{
				PropertyName: "step", OldValue: current.StepID, NewValue: advancedTo,
			}}, s, tx)
		if err != nil {
			return err
		}

		detail, err = loadActivityDetail(id, tx)
		return err
	})
	if err != nil {
		return nil, err
	}

	if mailStep != nil && StepNotifyFunc != nil {
		if err := StepNotifyFunc(detail, *mailStep, s); err != nil {
			logrus.Warnf("step mail delivery failed for activity %d: %v\n", detail.ID, err)
		}
	}
	if ev != nil && event.InvokeHandlersFunc != nil {
		event.InvokeHandlersFunc(ev)
	}
	return detail, nil
}

func stepAwaitsInput(stepType string) bool {
	return stepType == domain.StepTypeInteraction || stepType == domain.StepTypeEvaluated
}

func applyStepEffect(record *domain.Activity, step domain.StepNode, tx *gorm.DB) error {
	switch step.Type {
	case domain.StepTypeChangeStatus:
		status, _ := step.Data["status"].(string)
		if status == "" {
			return bizerror.ErrInvalidWorkflow
		}
		return tx.Model(&domain.Activity{}).Where("id = ?", record.ID).Update("status", status).Error
	case domain.StepTypeSendEmail, domain.StepTypeSwapWorkflow, domain.StepTypeInteraction,
		domain.StepTypeEvaluated, domain.StepTypeConditional:
		return nil
	}
	return bizerror.ErrUnknownStepType
}

// swapWorkflow appends the published draft of the step's target workflow
// and parks its start step idle.
func swapWorkflow(record *domain.Activity, step domain.StepNode, tx *gorm.DB) error {
	raw, _ := step.Data["workflow"].(string)
	if raw == "" {
		return bizerror.ErrInvalidWorkflow
	}
	workflowId, err := types.ParseID(raw)
	if err != nil {
		return bizerror.ErrInvalidWorkflow
	}

	published, err := flowdraft.FindPublished(workflowId, tx)
	if err != nil {
		return err
	}
	start, found := published.Steps.FindStart()
	if !found {
		return bizerror.ErrInvalidWorkflow
	}

	workflow := domain.ActivityWorkflow{
		ID: idgen.NextID(activityIdWorker), ActivityID: record.ID,
		WorkflowDraftID: published.ID,
		Snapshot: domain.WorkflowSnapshot{
			WorkflowDraftID: published.ID, Version: published.Version, Steps: published.Steps,
		},
		CreateTime: types.CurrentTimestamp(),
	}
	if err := tx.Create(&workflow).Error; err != nil {
		return err
	}
	return tx.Create(&domain.ActivityWorkflowStep{
		ID: idgen.NextID(activityIdWorker), ActivityWorkflowID: workflow.ID,
		StepID: start.ID, Step: start, Status: domain.StepStatusIdle, Ord: 0,
		CreateTime: types.CurrentTimestamp(),
	}).Error
}
