package form

import (
	"regexp"

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
	formIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	CreateFormFunc = CreateForm
	UpdateFormFunc = UpdateForm
	DetailFormFunc = DetailForm
	QueryFormsFunc = QueryForms

	slugPattern = regexp.MustCompile(`^[a-z0-9-]+$`)
)

type FormMutation struct {
	Name        string `json:"name" binding:"required" validate:"required,min=3,max=255"`
	Slug        string `json:"slug" binding:"required" validate:"required,min=3,max=30"`
	Description string `json:"description"`

	Type          string `json:"type" binding:"required" validate:"required,oneof=created interaction evaluated"`
	InitialStatus string `json:"initialStatus"`
	Active        bool   `json:"active"`

	PeriodOpen  *types.Timestamp `json:"periodOpen"`
	PeriodClose *types.Timestamp `json:"periodClose"`

	WorkflowID types.ID `json:"workflow"`
}

func (c *FormMutation) validate() error {
	if !slugPattern.MatchString(c.Slug) {
		return &bizerror.ErrBadParam{}
	}
	// created forms run a workflow and start from a named status
	if c.Type == domain.FormTypeCreated && (c.WorkflowID == 0 || c.InitialStatus == "") {
		return &bizerror.ErrBadParam{}
	}
	return nil
}

type FormList struct {
	Forms      []domain.Form     `json:"forms"`
	Pagination domain.Pagination `json:"pagination"`
}

func CreateForm(c *FormMutation, s *session.Session) (*domain.Form, error) {
	if !s.Perms.HasPerm(account.FormManagePermission.ID) {
		return nil, bizerror.ErrForbidden
	}
	if err := c.validate(); err != nil {
		return nil, err
	}

	db, err := persistence.ActiveDataSourceManager.GormDB(s.Context, s.Tenant)
	if err != nil {
		return nil, err
	}

	record := domain.Form{
		ID: idgen.NextID(formIdWorker), Name: c.Name, Slug: c.Slug, Description: c.Description,
		Type: c.Type, InitialStatus: c.InitialStatus, Active: c.Active,
		PeriodOpen: c.PeriodOpen, PeriodClose: c.PeriodClose,
		WorkflowID: c.WorkflowID, CreateTime: types.CurrentTimestamp(),
	}
	err = db.Transaction(func(tx *gorm.DB) error {
		occupied := domain.Form{}
		err := tx.Where("slug = ?", c.Slug).First(&occupied).Error
		if err == nil {
			return bizerror.ErrSlugOccupied
		}
		if !gorm.IsRecordNotFoundError(err) {
			return err
		}
		return tx.Create(&record).Error
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func UpdateForm(id types.ID, c *FormMutation, s *session.Session) (*domain.Form, error) {
	if !s.Perms.HasPerm(account.FormManagePermission.ID) {
		return nil, bizerror.ErrForbidden
	}
	if err := c.validate(); err != nil {
		return nil, err
	}

	db, err := persistence.ActiveDataSourceManager.GormDB(s.Context, s.Tenant)
	if err != nil {
		return nil, err
	}

	record := domain.Form{}
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&record).Error; err != nil {
			if gorm.IsRecordNotFoundError(err) {
				return bizerror.ErrFormNotFound
			}
			return err
		}

		if c.Slug != record.Slug {
			occupied := domain.Form{}
			err := tx.Where("slug = ? AND id != ?", c.Slug, id).First(&occupied).Error
			if err == nil {
				return bizerror.ErrSlugOccupied
			}
			if !gorm.IsRecordNotFoundError(err) {
				return err
			}
		}

		changes := map[string]interface{}{
			"name": c.Name, "slug": c.Slug, "description": c.Description,
			"type": c.Type, "initial_status": c.InitialStatus, "active": c.Active,
			"period_open": c.PeriodOpen, "period_close": c.PeriodClose,
			"workflow_id": c.WorkflowID,
		}
		if err := tx.Model(&domain.Form{}).Where("id = ?", id).Update(changes).Error; err != nil {
			return err
		}
		// query again
		return tx.Where("id = ?", id).First(&record).Error
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func DetailForm(id types.ID, s *session.Session) (*domain.FormDetail, error) {
	if !s.Perms.HasPerm(account.FormViewPermission.ID) {
		return nil, bizerror.ErrForbidden
	}

	db, err := persistence.ActiveDataSourceManager.GormDB(s.Context, s.Tenant)
	if err != nil {
		return nil, err
	}

	detail := domain.FormDetail{}
	if err := db.Where("id = ?", id).First(&detail.Form).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, bizerror.ErrFormNotFound
		}
		return nil, err
	}
	if detail.PublishedDraftID != 0 {
		published := domain.FormDraft{}
		if err := db.Where("id = ?", detail.PublishedDraftID).First(&published).Error; err == nil {
			detail.Published = &published
		} else if !gorm.IsRecordNotFoundError(err) {
			return nil, err
		}
	}
	return &detail, nil
}

func QueryForms(q *domain.FormQuery, s *session.Session) (*FormList, error) {
	if !s.Perms.HasPerm(account.FormViewPermission.ID) {
		return nil, bizerror.ErrForbidden
	}
	q.Normalize()

	db, err := persistence.ActiveDataSourceManager.GormDB(s.Context, s.Tenant)
	if err != nil {
		return nil, err
	}

	query := db.Model(&domain.Form{})
	if len(q.Types) > 0 {
		query = query.Where("type IN (?)", q.Types)
	}
	if q.Active != nil {
		query = query.Where("active = ?", *q.Active)
	}
	if q.Name != "" {
		query = query.Where("name LIKE ?", "%"+q.Name+"%")
	}
	if q.Slug != "" {
		query = query.Where("slug LIKE ?", "%"+q.Slug+"%")
	}

	total := 0
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}
	forms := []domain.Form{}
	if err := query.Order("create_time DESC").Offset(q.Skip()).Limit(q.Limit).Find(&forms).Error; err != nil {
		return nil, err
	}

	return &FormList{Forms: forms, Pagination: domain.BuildPagination(q.PageQuery, total, len(forms))}, nil
}
