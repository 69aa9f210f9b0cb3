package account

import (
	"crypto/sha256"
	"encoding/hex"

	"activityflow/bizerror"
	"activityflow/domain"
	"activityflow/idgen"
	"activityflow/persistence"
	"activityflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/google/uuid"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

var (
	userIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	QueryUsersFunc = QueryUsers
	CreateUserFunc = CreateUser
)

func HashSha256(raw string) string {
	h := sha256.New()
	h.Write([]byte(raw))
	sum := h.Sum(nil)
	return hex.EncodeToString(sum)
}

func CreateUser(c *UserCreation, s *session.Session) (*UserInfo, error) {
	if !s.Perms.HasPerm(SystemAdminPermission.ID) {
		return nil, bizerror.ErrForbidden
	}

	db, err := persistence.ActiveDataSourceManager.GormDB(s.Context, s.Tenant)
	if err != nil {
		return nil, err
	}
	user := User{
		ID: idgen.NextID(userIdWorker), Name: c.Name, Email: c.Email, Secret: HashSha256(c.Secret),
		Role: c.Role, Matriculation: c.Matriculation, InstituteID: c.InstituteID,
		Active: true, CreateTime: types.CurrentTimestamp(),
	}
	if err := db.Create(&user).Error; err != nil {
		return nil, err
	}
	return &UserInfo{ID: user.ID, Name: user.Name, Email: user.Email, Role: user.Role,
		Matriculation: user.Matriculation, IsExternal: user.IsExternal}, nil
}

func QueryUsers(q *UserQuery, s *session.Session) (*UserList, error) {
	if !s.Perms.HasAnyPerm(SystemAdminPermission.ID, SystemViewPermission.ID) {
		return nil, bizerror.ErrForbidden
	}
	q.Normalize()

	db, err := persistence.ActiveDataSourceManager.GormDB(s.Context, s.Tenant)
	if err != nil {
		return nil, err
	}

	query := db.Model(&User{})
	if q.Name != "" {
		query = query.Where("name LIKE ?", "%"+q.Name+"%")
	}
	if q.Email != "" {
		query = query.Where("email LIKE ?", "%"+q.Email+"%")
	}
	if q.Role != "" {
		query = query.Where("role = ?", q.Role)
	}

	total := 0
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}
	users := []UserInfo{}
	if err := query.Offset(q.Skip()).Limit(q.Limit).Scan(&users).Error; err != nil {
		return nil, err
	}

	return &UserList{Users: users, Pagination: domain.BuildPagination(q.PageQuery, total, len(users))}, nil
}

// EnsureExternalTeacher resolves an external co-mastermind by email,
// provisioning a placeholder teacher account when no match exists. The
// placeholder carries a random unusable secret. Lookup is by unique
// email, a second resolution of the same address returns the first
// account instead of creating a duplicate.
func EnsureExternalTeacher(name, email string, tx *gorm.DB) (*User, error) {
	user := User{}
	err := tx.Where("email = ?", email).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if !gorm.IsRecordNotFoundError(err) {
		return nil, err
	}

	user = User{
		ID: idgen.NextID(userIdWorker), Name: name, Email: email,
		Secret:           HashSha256(uuid.New().String()),
		Role:             RoleTeacher,
		UniversityDegree: UniversityDegreeExternal,
		IsExternal:       true,
		Active:           true,
		CreateTime:       types.CurrentTimestamp(),
	}
	if err := tx.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func FindUsersByIds(ids []types.ID, tx *gorm.DB) ([]User, error) {
	users := []User{}
	if len(ids) == 0 {
		return users, nil
	}
	if err := tx.Where("id IN (?)", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func QueryAccountNames(ids []types.ID, s *session.Session) (map[types.ID]string, error) {
	if len(ids) == 0 {
		return map[types.ID]string{}, nil
	}
	db, err := persistence.ActiveDataSourceManager.GormDB(s.Context, s.Tenant)
	if err != nil {
		return nil, err
	}
	var records []UserInfo
	if err := db.Model(&User{}).Where("id IN (?)", ids).Scan(&records).Error; err != nil {
		return nil, err
	}
	result := map[types.ID]string{}
	for _, r := range records {
		result[r.ID] = r.DisplayName()
	}
	return result, nil
}
