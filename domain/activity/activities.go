package activity

import (
	"activityflow/account"
	"activityflow/bizerror"
	"activityflow/domain"
	"activityflow/domain/protocol"
	"activityflow/event"
	"activityflow/idgen"
	"activityflow/persistence"
	"activityflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

const SourceTypeActivity = "ACTIVITY"

var (
	activityIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	CreateActivityFunc           = CreateActivity
	DetailActivityFunc           = DetailActivity
	CommitActivityFunc           = CommitActivity
	AdvanceActivityStepFunc      = AdvanceActivityStep
	QueryMyActivitiesFunc        = QueryMyActivities
	QueryMyPendingActivitiesFunc = QueryMyPendingActivities
	RespondMastermindFunc        = RespondMastermind
	LoadActivitiesPageFunc       = LoadActivitiesPage
)

type ActivityCreation struct {
	FormID      types.ID `json:"form" binding:"required"`
	Name        string   `json:"name" binding:"required"`
	Description string   `json:"description"`

	Users       []types.ID `json:"users" binding:"required"`
	Masterminds []types.ID `json:"masterminds" binding:"required"`
}

type ActivityList struct {
	Activities []domain.ActivityDetail `json:"activities"`
	Pagination domain.Pagination       `json:"pagination"`
}

type MastermindResponse struct {
	Accepted string `json:"accepted" binding:"required,oneof=accepted rejected"`
}

// CreateActivity registers a submission of a form: state created,
// protocol assigned, masterminds attached pending.
func CreateActivity(c *ActivityCreation, s *session.Session) (*domain.ActivityDetail, error) {
	db, err := persistence.ActiveDataSourceManager.GormDB(s.Context, s.Tenant)
	if err != nil {
		return nil, err
	}

	var detail *domain.ActivityDetail
	var ev *event.EventRecord
	err = db.Transaction(func(tx *gorm.DB) error {
		form := domain.Form{}
		if err := tx.Where("id = ? AND active = ?", c.FormID, true).First(&form).Error; err != nil {
			if gorm.IsRecordNotFoundError(err) {
				return bizerror.ErrFormNotFound
			}
			return err
		}

		students, err := resolveUsers(c.Users, tx)
		if err != nil {
			return err
		}
		masterminds, err := resolveUsers(c.Masterminds, tx)
		if err != nil {
			return err
		}

		proto, err := protocol.NextProtocolFunc(tx)
		if err != nil {
			return err
		}

		record := domain.Activity{
			ID: idgen.NextID(activityIdWorker), Name: c.Name, Description: c.Description,
			Protocol: proto, FormID: form.ID, FormDraftID: form.PublishedDraftID,
			State: domain.ActivityStateCreated, Status: form.InitialStatus,
			CreateTime: types.CurrentTimestamp(),
		}
		if err := tx.Create(&record).Error; err != nil {
			return err
		}
		for i, u := range students {
			if err := tx.Create(&domain.ActivityUser{ActivityID: record.ID, UserID: u.ID, Ord: i}).Error; err != nil {
				return err
			}
		}
		for _, u := range masterminds {
			if err := tx.Create(&domain.ActivityMastermind{
				ActivityID: record.ID, UserID: u.ID, Accepted: domain.AcceptedPending, Sub: false,
			}).Error; err != nil {
				return err
			}
		}

		ev, err = event.CreateEvent(SourceTypeActivity, record.ID, record.Name, event.EventCategoryCreated, nil, s, tx)
		if err != nil {
			return err
		}

		detail, err = loadActivityDetail(record.ID, tx)
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

func DetailActivity(id types.ID, s *session.Session) (*domain.ActivityDetail, error) {
	db, err := persistence.ActiveDataSourceManager.GormDB(s.Context, s.Tenant)
	if err != nil {
		return nil, err
	}
	return loadActivityDetail(id, db)
}

func QueryMyActivities(q *domain.ActivityQuery, s *session.Session) (*ActivityList, error) {
	db, err := persistence.ActiveDataSourceManager.GormDB(s.Context, s.Tenant)
	if err != nil {
		return nil, err
	}
	q.Normalize()

	query := db.Model(&domain.Activity{}).
		Joins("JOIN activity_users ON activity_users.activity_id = activities.id").
		Where("activity_users.user_id = ?", s.Identity.ID)
	if q.State != "" {
		query = query.Where("activities.state = ?", q.State)
	}
	if q.Name != "" {
		query = query.Where("activities.name LIKE ?", "%"+q.Name+"%")
	}
	return pageActivities(query, q, db)
}

// QueryMyPendingActivities lists created activities awaiting the caller's
// mastermind or co-mastermind response.
func QueryMyPendingActivities(q *domain.ActivityQuery, s *session.Session) (*ActivityList, error) {
	db, err := persistence.ActiveDataSourceManager.GormDB(s.Context, s.Tenant)
	if err != nil {
		return nil, err
	}
	q.Normalize()

	query := db.Model(&domain.Activity{}).
		Joins("JOIN activity_masterminds ON activity_masterminds.activity_id = activities.id").
		Where("activities.state = ?", domain.ActivityStateCreated).
		Where("activity_masterminds.user_id = ? AND activity_masterminds.accepted = ?",
			s.Identity.ID, domain.AcceptedPending)
	return pageActivities(query, q, db)
}

func RespondMastermind(activityID types.ID, c *MastermindResponse, s *session.Session) (*domain.ActivityDetail, error) {
	db, err := persistence.ActiveDataSourceManager.GormDB(s.Context, s.Tenant)
	if err != nil {
		return nil, err
	}

	var detail *domain.ActivityDetail
	err = db.Transaction(func(tx *gorm.DB) error {
		activity := domain.Activity{}
		if err := tx.Where("id = ?", activityID).First(&activity).Error; err != nil {
			if gorm.IsRecordNotFoundError(err) {
				return bizerror.ErrActivityNotFound
			}
			return err
		}

		q := tx.Model(&domain.ActivityMastermind{}).
			Where("activity_id = ? AND user_id = ? AND accepted = ?", activityID, s.Identity.ID, domain.AcceptedPending).
			Update("accepted", c.Accepted)
		if q.Error != nil {
			return q.Error
		}
		if q.RowsAffected == 0 {
			return bizerror.ErrForbidden
		}

		var err error
		detail, err = loadActivityDetail(activityID, tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return detail, nil
}

// LoadActivitiesPage pages through all activities, used by index sync.
func LoadActivitiesPage(page, size int, tenant string, s *session.Session) ([]domain.ActivityDetail, error) {
	db, err := persistence.ActiveDataSourceManager.GormDB(s.Context, tenant)
	if err != nil {
		return nil, err
	}
	skip := (page - 1) * size
	if skip < 0 {
		skip = 0
	}
	records := []domain.Activity{}
	if err := db.Order("id ASC").Offset(skip).Limit(size).Find(&records).Error; err != nil {
		return nil, err
	}
	details := make([]domain.ActivityDetail, 0, len(records))
	for _, r := range records {
		detail, err := loadActivityDetail(r.ID, db)
		if err != nil {
			return nil, err
		}
		details = append(details, *detail)
	}
	return details, nil
}

func pageActivities(query *gorm.DB, q *domain.ActivityQuery, db *gorm.DB) (*ActivityList, error) {
	total := 0
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}
	records := []domain.Activity{}
	if err := query.Order("activities.create_time DESC").Offset(q.Skip()).Limit(q.Limit).Find(&records).Error; err != nil {
		return nil, err
	}

	details := make([]domain.ActivityDetail, 0, len(records))
	for _, r := range records {
		detail := domain.ActivityDetail{Activity: r}
		if err := extendActivityBriefs(&detail, db); err != nil {
			return nil, err
		}
		details = append(details, detail)
	}
	return &ActivityList{Activities: details, Pagination: domain.BuildPagination(q.PageQuery, total, len(details))}, nil
}

// resolveUsers fails when any referenced id is unknown, detected by a
// count mismatch over the deduplicated id set.
func resolveUsers(ids []types.ID, tx *gorm.DB) ([]account.User, error) {
	uniq := make([]types.ID, 0, len(ids))
	seen := map[types.ID]bool{}
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			uniq = append(uniq, id)
		}
	}

	users, err := account.FindUsersByIds(uniq, tx)
	if err != nil {
		return nil, err
	}
	if len(users) != len(uniq) {
		return nil, bizerror.ErrInvalidUserRef
	}
	return users, nil
}

func extendActivityBriefs(detail *domain.ActivityDetail, tx *gorm.DB) error {
	form := domain.Form{}
	if err := tx.Where("id = ?", detail.FormID).Select("id, name, slug").First(&form).Error; err == nil {
		detail.Form = domain.FormBrief{ID: form.ID, Name: form.Name, Slug: form.Slug}
	} else if !gorm.IsRecordNotFoundError(err) {
		return err
	}

	links := []domain.ActivityUser{}
	if err := tx.Where("activity_id = ?", detail.ID).Order("ord ASC").Find(&links).Error; err != nil {
		return err
	}
	userIds := make([]types.ID, 0, len(links))
	for _, l := range links {
		userIds = append(userIds, l.UserID)
	}
	users, err := account.FindUsersByIds(userIds, tx)
	if err != nil {
		return err
	}
	briefIndex := map[types.ID]domain.UserBrief{}
	for _, u := range users {
		briefIndex[u.ID] = u.Brief()
	}
	detail.Users = []domain.UserBrief{}
	for _, l := range links {
		if brief, found := briefIndex[l.UserID]; found {
			detail.Users = append(detail.Users, brief)
		}
	}

	detail.Masterminds = []domain.MastermindBrief{}
	detail.SubMasterminds = []domain.MastermindBrief{}
	mastermindLinks := []domain.ActivityMastermind{}
	if err := tx.Where("activity_id = ?", detail.ID).Find(&mastermindLinks).Error; err != nil {
		return err
	}
	mmIds := make([]types.ID, 0, len(mastermindLinks))
	for _, l := range mastermindLinks {
		mmIds = append(mmIds, l.UserID)
	}
	mmUsers, err := account.FindUsersByIds(mmIds, tx)
	if err != nil {
		return err
	}
	mmIndex := map[types.ID]domain.UserBrief{}
	for _, u := range mmUsers {
		mmIndex[u.ID] = u.Brief()
	}
	for _, l := range mastermindLinks {
		brief := domain.MastermindBrief{User: mmIndex[l.UserID], Accepted: l.Accepted}
		if l.Sub {
			detail.SubMasterminds = append(detail.SubMasterminds, brief)
		} else {
			detail.Masterminds = append(detail.Masterminds, brief)
		}
	}
	return nil
}

func loadActivityDetail(id types.ID, tx *gorm.DB) (*domain.ActivityDetail, error) {
	detail := domain.ActivityDetail{}
	if err := tx.Where("id = ?", id).First(&detail.Activity).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, bizerror.ErrActivityNotFound
		}
		return nil, err
	}
	if err := extendActivityBriefs(&detail, tx); err != nil {
		return nil, err
	}

	detail.Workflows = []domain.ActivityWorkflowDetail{}
	workflows := []domain.ActivityWorkflow{}
	if err := tx.Where("activity_id = ?", id).Order("create_time ASC, id ASC").Find(&workflows).Error; err != nil {
		return nil, err
	}
	for _, w := range workflows {
		steps := []domain.ActivityWorkflowStep{}
		if err := tx.Where("activity_workflow_id = ?", w.ID).Order("ord ASC").Find(&steps).Error; err != nil {
			return nil, err
		}
		detail.Workflows = append(detail.Workflows, domain.ActivityWorkflowDetail{ActivityWorkflow: w, Steps: steps})
	}
	return &detail, nil
}

func describeActivity(a *domain.Activity) string {
	return a.Protocol + " " + a.Name
}
