package institute

import (
	"activityflow/account"
	"activityflow/bizerror"
	"activityflow/domain"
	"activityflow/idgen"
	"activityflow/persistence"
	"activityflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/sony/sonyflake"
)

var (
	instituteIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	CreateInstituteFunc = CreateInstitute
	QueryInstitutesFunc = QueryInstitutes
)

type Institute struct {
	ID         types.ID `json:"id" gorm:"primary_key"`
	Name       string   `json:"name"`
	Acronym    string   `json:"acronym"`
	University string   `json:"university"`
	Active     bool     `json:"active"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6)"`
}

func (r *Institute) TableName() string {
	return "institutes"
}

type InstituteCreation struct {
	Name       string `json:"name" binding:"required"`
	Acronym    string `json:"acronym" binding:"required"`
	University string `json:"university" binding:"required"`
}

type InstituteQuery struct {
	domain.PageQuery

	Name string `form:"name"`
}

type InstituteList struct {
	Institutes []Institute       `json:"institutes"`
	Pagination domain.Pagination `json:"pagination"`
}

func CreateInstitute(c *InstituteCreation, s *session.Session) (*Institute, error) {
	if !s.Perms.HasPerm(account.SystemAdminPermission.ID) {
		return nil, bizerror.ErrForbidden
	}

	db, err := persistence.ActiveDataSourceManager.GormDB(s.Context, s.Tenant)
	if err != nil {
		return nil, err
	}
	record := Institute{
		ID: idgen.NextID(instituteIdWorker), Name: c.Name, Acronym: c.Acronym,
		University: c.University, Active: true, CreateTime: types.CurrentTimestamp(),
	}
	if err := db.Create(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func QueryInstitutes(q *InstituteQuery, s *session.Session) (*InstituteList, error) {
	q.Normalize()

	db, err := persistence.ActiveDataSourceManager.GormDB(s.Context, s.Tenant)
	if err != nil {
		return nil, err
	}

	query := db.Model(&Institute{})
	if q.Name != "" {
		query = query.Where("name LIKE ?", "%"+q.Name+"%")
	}

	total := 0
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}
	records := []Institute{}
	if err := query.Order("name ASC").Offset(q.Skip()).Limit(q.Limit).Find(&records).Error; err != nil {
		return nil, err
	}

	return &InstituteList{Institutes: records, Pagination: domain.BuildPagination(q.PageQuery, total, len(records))}, nil
}
