package flowdraft

import (
	"activityflow/account"
	"activityflow/bizerror"
	"activityflow/domain"
	"activityflow/idgen"
	"activityflow/persistence"
	"activityflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

var (
	draftIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	CreateWorkflowDraftFunc  = CreateWorkflowDraft
	DetailWorkflowDraftFunc  = DetailWorkflowDraft
	QueryWorkflowDraftsFunc  = QueryWorkflowDrafts
	PublishWorkflowDraftFunc = PublishWorkflowDraft
)

type WorkflowDraftCreation struct {
	Steps domain.StepList `json:"steps" binding:"required"`
}

// ValidateSteps checks a graph is runnable: one start node, unique node
// ids, known node types, edges pointing at existing nodes.
func ValidateSteps(steps domain.StepList) error {
	if _, found := steps.FindStart(); !found {
		return bizerror.ErrInvalidWorkflow
	}

	ids := map[string]bool{}
	for _, s := range steps {
		if s.ID == "" || ids[s.ID] {
			return bizerror.ErrUnknownStep
		}
		ids[s.ID] = true
		if !domain.IsKnownStepType(s.Type) {
			return bizerror.ErrUnknownStepType
		}
	}
	for _, s := range steps {
		if s.Next.Default != "" && !ids[s.Next.Default] {
			return bizerror.ErrUnknownStep
		}
		if s.Next.Alternate != "" && !ids[s.Next.Alternate] {
			return bizerror.ErrUnknownStep
		}
	}
	return nil
}

func CreateWorkflowDraft(workflowID types.ID, c *WorkflowDraftCreation, s *session.Session) (*domain.WorkflowDraft, error) {
	if !s.Perms.HasPerm(account.FormManagePermission.ID) {
		return nil, bizerror.ErrForbidden
	}
	if err := ValidateSteps(c.Steps); err != nil {
		return nil, err
	}

	db, err := persistence.ActiveDataSourceManager.GormDB(s.Context, s.Tenant)
	if err != nil {
		return nil, err
	}

	record := domain.WorkflowDraft{
		ID: idgen.NextID(draftIdWorker), WorkflowID: workflowID,
		Status: domain.DraftStatusDraft, Steps: c.Steps,
		OwnerID: s.Identity.ID, CreateTime: types.CurrentTimestamp(),
	}
	err = db.Transaction(func(tx *gorm.DB) error {
		maxVersion := struct{ V int }{}
		if err := tx.Model(&domain.WorkflowDraft{}).Where("workflow_id = ?", workflowID).
			Select("COALESCE(MAX(version), 0) AS v").Scan(&maxVersion).Error; err != nil {
			return err
		}
		record.Version = maxVersion.V + 1
		return tx.Create(&record).Error
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func DetailWorkflowDraft(id types.ID, s *session.Session) (*domain.WorkflowDraft, error) {
	db, err := persistence.ActiveDataSourceManager.GormDB(s.Context, s.Tenant)
	if err != nil {
		return nil, err
	}
	record := domain.WorkflowDraft{}
	if err := db.Where("id = ?", id).First(&record).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, bizerror.ErrWorkflowDraftNotFound
		}
		return nil, err
	}
	return &record, nil
}

func QueryWorkflowDrafts(workflowID types.ID, s *session.Session) ([]domain.WorkflowDraft, error) {
	db, err := persistence.ActiveDataSourceManager.GormDB(s.Context, s.Tenant)
	if err != nil {
		return nil, err
	}
	records := []domain.WorkflowDraft{}
	if err := db.Where("workflow_id = ?", workflowID).Order("version DESC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// PublishWorkflowDraft promotes one version and demotes its published
// sibling. Committed activities keep their snapshots untouched.
func PublishWorkflowDraft(id types.ID, s *session.Session) (*domain.WorkflowDraft, error) {
	if !s.Perms.HasPerm(account.FormManagePermission.ID) {
		return nil, bizerror.ErrForbidden
	}

	db, err := persistence.ActiveDataSourceManager.GormDB(s.Context, s.Tenant)
	if err != nil {
		return nil, err
	}

	record := domain.WorkflowDraft{}
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&record).Error; err != nil {
			if gorm.IsRecordNotFoundError(err) {
				return bizerror.ErrWorkflowDraftNotFound
			}
			return err
		}
		if record.Status == domain.DraftStatusPublished {
			return bizerror.ErrDraftPublished
		}
		if err := ValidateSteps(record.Steps); err != nil {
			return err
		}

		if err := tx.Model(&domain.WorkflowDraft{}).
			Where("workflow_id = ? AND status = ?", record.WorkflowID, domain.DraftStatusPublished).
			Update("status", domain.DraftStatusDraft).Error; err != nil {
			return err
		}
		if err := tx.Model(&domain.WorkflowDraft{}).Where("id = ?", id).
			Update("status", domain.DraftStatusPublished).Error; err != nil {
			return err
		}
		record.Status = domain.DraftStatusPublished
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// FindPublished resolves the published draft of a workflow lineage.
// Runs on the caller's handle so commit can use it inside a transaction.
func FindPublished(workflowID types.ID, tx *gorm.DB) (*domain.WorkflowDraft, error) {
	record := domain.WorkflowDraft{}
	err := tx.Where("workflow_id = ? AND status = ?", workflowID, domain.DraftStatusPublished).
		First(&record).Error
	if gorm.IsRecordNotFoundError(err) {
		return nil, bizerror.ErrInvalidWorkflow
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}
