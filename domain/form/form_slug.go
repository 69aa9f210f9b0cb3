package form

import (
	"time"

	"activityflow/account"
	"activityflow/bizerror"
	"activityflow/domain"
	"activityflow/institute"
	"activityflow/persistence"
	"activityflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	cache "github.com/patrickmn/go-cache"
)

var (
	ResolveFormBySlugFunc = ResolveFormBySlug

	// OptionExpiration time-boxes the predefined option lists. An empty
	// cached list is recomputed on every call.
	OptionExpiration = 5 * time.Minute

	optionCache = cache.New(5*time.Minute, 1*time.Minute)
)

// ResolveFormBySlug serves the public submission surface of a form: the
// slug must name an active form with a published draft whose period
// admits now. Fields marked predefined get live option lists.
func ResolveFormBySlug(slug string, s *session.Session) (*domain.FormDetail, error) {
	db, err := persistence.ActiveDataSourceManager.GormDB(s.Context, s.Tenant)
	if err != nil {
		return nil, err
	}

	now := types.CurrentTimestamp()
	detail := domain.FormDetail{}
	err = db.Where("slug = ? AND active = ? AND published_draft_id != 0", slug, true).
		Where("(period_open IS NULL OR period_open <= ?)", now).
		Where("period_close IS NOT NULL AND period_close >= ?", now).
		First(&detail.Form).Error
	if gorm.IsRecordNotFoundError(err) {
		return nil, bizerror.ErrFormNotFound
	}
	if err != nil {
		return nil, err
	}

	published := domain.FormDraft{}
	if err := db.Where("id = ?", detail.Form.PublishedDraftID).First(&published).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, bizerror.ErrFormNotFound
		}
		return nil, err
	}

	for i := range published.Fields {
		field := &published.Fields[i]
		if field.Predefined == "" {
			continue
		}
		options, err := predefinedOptions(field.Predefined, db, s)
		if err != nil {
			return nil, err
		}
		field.Options = options
	}

	detail.Published = &published
	return &detail, nil
}

func predefinedOptions(kind string, db *gorm.DB, s *session.Session) ([]domain.FieldOption, error) {
	key := s.Tenant + "/" + kind
	if value, found := optionCache.Get(key); found {
		options := value.([]domain.FieldOption)
		if len(options) > 0 {
			return options, nil
		}
	}

	options, err := loadPredefinedOptions(kind, db)
	if err != nil {
		return nil, err
	}
	optionCache.Set(key, options, OptionExpiration)
	return options, nil
}

func loadPredefinedOptions(kind string, db *gorm.DB) ([]domain.FieldOption, error) {
	options := []domain.FieldOption{}

	if kind == domain.PredefinedInstitution {
		records := []institute.Institute{}
		if err := db.Where("active = ?", true).Order("name ASC").Find(&records).Error; err != nil {
			return nil, err
		}
		for _, r := range records {
			options = append(options, domain.FieldOption{Label: r.Name, Value: r.ID.String()})
		}
		return options, nil
	}

	role := account.RoleStudent
	if kind == domain.PredefinedTeachers {
		role = account.RoleTeacher
	}
	users := []account.User{}
	if err := db.Where("role = ? AND active = ?", role, true).Order("name ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	for _, u := range users {
		options = append(options, domain.FieldOption{Label: u.Name, Value: u.ID.String()})
	}
	return options, nil
}

// FlushOptionCache is for tests.
func FlushOptionCache() {
	optionCache.Flush()
}
