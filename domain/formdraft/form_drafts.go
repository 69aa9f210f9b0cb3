package formdraft

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

	CreateFormDraftFunc  = CreateFormDraft
	DetailFormDraftFunc  = DetailFormDraft
	QueryFormDraftsFunc  = QueryFormDrafts
	PublishFormDraftFunc = PublishFormDraft
)

type FormDraftCreation struct {
	Fields domain.FieldList `json:"fields" binding:"required"`
}

func CreateFormDraft(formID types.ID, c *FormDraftCreation, s *session.Session) (*domain.FormDraft, error) {
	if !s.Perms.HasPerm(account.FormManagePermission.ID) {
		return nil, bizerror.ErrForbidden
	}

	db, err := persistence.ActiveDataSourceManager.GormDB(s.Context, s.Tenant)
	if err != nil {
		return nil, err
	}

	record := domain.FormDraft{
		ID: idgen.NextID(draftIdWorker), FormID: formID,
		Status: domain.DraftStatusDraft, Fields: c.Fields,
		OwnerID: s.Identity.ID, CreateTime: types.CurrentTimestamp(),
	}
	err = db.Transaction(func(tx *gorm.DB) error {
		form := domain.Form{}
		if err := tx.Where("id = ?", formID).First(&form).Error; err != nil {
			if gorm.IsRecordNotFoundError(err) {
				return bizerror.ErrFormNotFound
			}
			return err
		}

		maxVersion := struct{ V int }{}
		if err := tx.Model(&domain.FormDraft{}).Where("form_id = ?", formID).
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

func DetailFormDraft(id types.ID, s *session.Session) (*domain.FormDraft, error) {
	db, err := persistence.ActiveDataSourceManager.GormDB(s.Context, s.Tenant)
	if err != nil {
		return nil, err
	}
	record := domain.FormDraft{}
	if err := db.Where("id = ?", id).First(&record).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, bizerror.ErrFormDraftNotFound
		}
		return nil, err
	}
	return &record, nil
}

func QueryFormDrafts(formID types.ID, s *session.Session) ([]domain.FormDraft, error) {
	db, err := persistence.ActiveDataSourceManager.GormDB(s.Context, s.Tenant)
	if err != nil {
		return nil, err
	}
	records := []domain.FormDraft{}
	if err := db.Where("form_id = ?", formID).Order("version DESC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// PublishFormDraft promotes one version, demotes the published sibling
// and stamps the parent form. At most one draft of a form is published.
func PublishFormDraft(id types.ID, s *session.Session) (*domain.FormDraft, error) {
	if !s.Perms.HasPerm(account.FormManagePermission.ID) {
		return nil, bizerror.ErrForbidden
	}

	db, err := persistence.ActiveDataSourceManager.GormDB(s.Context, s.Tenant)
	if err != nil {
		return nil, err
	}

	record := domain.FormDraft{}
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&record).Error; err != nil {
			if gorm.IsRecordNotFoundError(err) {
				return bizerror.ErrFormDraftNotFound
			}
			return err
		}
		if record.Status == domain.DraftStatusPublished {
			return bizerror.ErrDraftPublished
		}

		if err := tx.Model(&domain.FormDraft{}).
			Where("form_id = ? AND status = ?", record.FormID, domain.DraftStatusPublished).
			Update("status", domain.DraftStatusDraft).Error; err != nil {
			return err
		}
		if err := tx.Model(&domain.FormDraft{}).Where("id = ?", id).
			Update("status", domain.DraftStatusPublished).Error; err != nil {
			return err
		}
		if err := tx.Model(&domain.Form{}).Where("id = ?", record.FormID).
			Update("published_draft_id", record.ID).Error; err != nil {
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
