package activity

import (
	"activityflow/account"
	"activityflow/bizerror"
	"activityflow/domain"
	"activityflow/domain/flowdraft"
	"activityflow/event"
	"activityflow/idgen"
	"activityflow/persistence"
	"activityflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

type SubMastermindRef struct {
	ID    types.ID `json:"id"`
	Name  string   `json:"name"`
	Email string   `json:"email" binding:"omitempty,email"`
}

type ActivityCommit struct {
	Name        string `json:"name"`
	Description string `json:"description"`

	Users          []types.ID         `json:"users" binding:"required"`
	SubMasterminds []SubMastermindRef `json:"subMasterminds"`
}

// CommitActivity moves a created activity into processing. Sub-mastermind
// and user references are resolved first, then the published workflow of
// the backing form is snapshotted onto the activity with its start step
// set idle. All of it happens in one transaction, a failed commit leaves
// the activity untouched.
func CommitActivity(id types.ID, c *ActivityCommit, s *session.Session) (*domain.ActivityDetail, error) {
	db, err := persistence.ActiveDataSourceManager.GormDB(s.Context, s.Tenant)
	if err != nil {
		return nil, err
	}

	var detail *domain.ActivityDetail
	var ev *event.EventRecord
	err = db.Transaction(func(tx *gorm.DB) error {
		record := domain.Activity{}
		if err := tx.Where("id = ?", id).First(&record).Error; err != nil {
			if gorm.IsRecordNotFoundError(err) {
				return bizerror.ErrActivityNotFound
			}
			return err
		}
		if !domain.ActivityLifecycle.CanTransit(record.State, domain.ActivityStateProcessing) {
			return bizerror.ErrActivityNotCommittable
		}

		subMasterminds, err := resolveSubMasterminds(c.SubMasterminds, tx)
		if err != nil {
			return err
		}
		students, err := resolveUsers(c.Users, tx)
		if err != nil {
			return err
		}

		form := domain.Form{}
		if err := tx.Where("id = ?", record.FormID).First(&form).Error; err != nil {
			if gorm.IsRecordNotFoundError(err) {
				return bizerror.ErrFormNotFound
			}
			return err
		}
		published, err := flowdraft.FindPublished(form.WorkflowID, tx)
		if err != nil {
			return err
		}
		start, found := published.Steps.FindStart()
		if !found {
			return bizerror.ErrInvalidWorkflow
		}

		changes := map[string]interface{}{"state": domain.ActivityStateProcessing}
		if c.Name != "" {
			changes["name"] = c.Name
		}
		if c.Description != "" {
			changes["description"] = c.Description
		}
		if err := tx.Model(&domain.Activity{}).Where("id = ?", id).Update(changes).Error; err != nil {
			return err
		}

		if err := tx.Where("activity_id = ?", id).Delete(&domain.ActivityUser{}).Error; err != nil {
			return err
		}
		for i, u := range students {
			if err := tx.Create(&domain.ActivityUser{ActivityID: id, UserID: u.ID, Ord: i}).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("activity_id = ? AND sub = ?", id, true).Delete(&domain.ActivityMastermind{}).Error; err != nil {
			return err
		}
		for _, u := range subMasterminds {
			if err := tx.Create(&domain.ActivityMastermind{
				ActivityID: id, UserID: u.ID, Accepted: domain.AcceptedPending, Sub: true,
			}).Error; err != nil {
				return err
			}
		}

		workflow := domain.ActivityWorkflow{
			ID: idgen.NextID(activityIdWorker), ActivityID: id,
			WorkflowDraftID: published.ID,
			Snapshot: domain.WorkflowSnapshot{
				WorkflowDraftID: published.ID, Version: published.Version, Steps: published.Steps,
			},
			CreateTime: types.CurrentTimestamp(),
		}
		if err := tx.Create(&workflow).Error; err != nil {
			return err
		}
		if err := tx.Create(&domain.ActivityWorkflowStep{
			ID: idgen.NextID(activityIdWorker), ActivityWorkflowID: workflow.ID,
			StepID: start.ID, Step: start, Status: domain.StepStatusIdle, Ord: 0,
			CreateTime: types.CurrentTimestamp(),
		}).Error; err != nil {
			return err
		}

		ev, err = event.CreateEvent(SourceTypeActivity, id, describeActivity(&record),
			event.EventCategoryCommitted, []event.UpdatedProperty{{
				PropertyName: "state", OldValue: record.State, NewValue: domain.ActivityStateProcessing,
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

	if event.InvokeHandlersFunc != nil {
		event.InvokeHandlersFunc(ev)
	}
	return detail, nil
}

// resolveSubMasterminds maps each reference to a user row. A reference
// carrying an id must match an existing user. A reference without an id
// names an external teacher by email, provisioned on first sight.
func resolveSubMasterminds(refs []SubMastermindRef, tx *gorm.DB) ([]account.User, error) {
	users := make([]account.User, 0, len(refs))
	seen := map[types.ID]bool{}
	for _, ref := range refs {
		var user *account.User
		if ref.ID != 0 {
			found := account.User{}
			if err := tx.Where("id = ?", ref.ID).First(&found).Error; err != nil {
				if gorm.IsRecordNotFoundError(err) {
					return nil, bizerror.ErrInvalidSubMastermind
				}
				return nil, err
			}
			user = &found
		} else {
			if ref.Email == "" || ref.Name == "" {
				return nil, bizerror.ErrInvalidSubMastermind
			}
			provisioned, err := account.EnsureExternalTeacher(ref.Name, ref.Email, tx)
			if err != nil {
				return nil, err
			}
			user = provisioned
		}
		if !seen[user.ID] {
			seen[user.ID] = true
			users = append(users, *user)
		}
	}
	return users, nil
}
