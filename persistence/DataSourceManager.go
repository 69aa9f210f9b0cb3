package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync"
	"time"

	"activityflow/bizerror"

	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/mysql"
	cache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
	otgorm "github.com/smacker/opentracing-gorm"
)

var (
	// SourceExpiration bounds the lifetime of an idle tenant connection.
	SourceExpiration = 30 * time.Minute

	// MaxTenantSources bounds the number of live tenant connections.
	MaxTenantSources = 64

	ActiveDataSourceManager *DataSourceManager

	tenantPattern = regexp.MustCompile(`^[a-z][a-z0-9_]{0,31}$`)

	// MigrateObjects are auto migrated on the first connection of a tenant.
	// Assigned once at bootstrap, before the first request.
	MigrateObjects []interface{}
)

// DataSourceManager holds one gorm handle per tenant schema. Handles are
// created on first use, expire when idle and are closed on eviction.
type DataSourceManager struct {
	DatabaseConfig *DatabaseConfig

	mutex   sync.Mutex
	sources *cache.Cache
}

func (m *DataSourceManager) Start() error {
	sources := cache.New(SourceExpiration, 1*time.Minute)
	sources.OnEvicted(func(tenant string, value interface{}) {
		db, ok := value.(*gorm.DB)
		if !ok || db == nil {
			return
		}
		if err := db.Close(); err != nil {
			logrus.Warnf("failed to close data source of tenant %s: %v", tenant, err)
		} else {
			logrus.Infof("data source of tenant %s closed", tenant)
		}
	})
	m.sources = sources
	return nil
}

func (m *DataSourceManager) Stop() {
	if m.sources == nil {
		return
	}
	// Delete fires OnEvicted, Flush would leak the handles.
	for tenant := range m.sources.Items() {
		m.sources.Delete(tenant)
	}
	m.sources = nil
}

// GormDB returns a request scoped handle of the tenant's database,
// with the tracing span of ctx attached.
func (m *DataSourceManager) GormDB(ctx context.Context, tenant string) (*gorm.DB, error) {
	db, err := m.source(tenant)
	if err != nil {
		return nil, err
	}
	return otgorm.SetSpanToGorm(ctx, db.New()), nil
}

func (m *DataSourceManager) source(tenant string) (*gorm.DB, error) {
	if !tenantPattern.MatchString(tenant) {
		return nil, bizerror.ErrInvalidTenant
	}
	// expiration is anchored at Set time, renew it on every hit so only
	// idle tenants are evicted
	if value, found := m.sources.Get(tenant); found {
		m.sources.SetDefault(tenant, value)
		return value.(*gorm.DB), nil
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()
	if value, found := m.sources.Get(tenant); found {
		m.sources.SetDefault(tenant, value)
		return value.(*gorm.DB), nil
	}
	if m.sources.ItemCount() >= MaxTenantSources {
		return nil, fmt.Errorf("tenant data source capacity %d exceeded", MaxTenantSources)
	}

	driverArgs := m.DatabaseConfig.ArgsForTenant(tenant)
	if m.DatabaseConfig.DriverType == "mysql" {
		if err := PrepareMysqlDatabase(driverArgs); err != nil {
			return nil, err
		}
	}
	db, err := connect(m.DatabaseConfig.DriverType, driverArgs)
	if err != nil {
		return nil, err
	}
	if len(MigrateObjects) > 0 {
		if err := db.AutoMigrate(MigrateObjects...).Error; err != nil {
			db.Close()
			return nil, err
		}
	}

	m.sources.Set(tenant, db, cache.DefaultExpiration)
	logrus.Infof("data source of tenant %s connected", tenant)
	return db, nil
}

// ListTenants enumerates the tenant schemas present on the database
// service, active or not.
func (m *DataSourceManager) ListTenants() ([]string, error) {
	db, err := sql.Open(m.DatabaseConfig.DriverType, m.DatabaseConfig.ServiceArgs+"/")
	if err != nil {
		return nil, err
	}
	defer db.Close()

	prefix := m.DatabaseConfig.DatabasePrefix + "_"
	rows, err := db.Query("SHOW DATABASES LIKE ?", strings.ReplaceAll(prefix, "_", "\\_")+"%")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tenants := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		tenants = append(tenants, strings.TrimPrefix(name, prefix))
	}
	return tenants, rows.Err()
}

func connect(driverType, driverArgs string) (*gorm.DB, error) {
	db, err := gorm.Open(driverType, driverArgs)
	if err != nil {
		return nil, err
	}
	if err := db.DB().Ping(); err != nil {
		db.Close()
		return nil, err
	}
	if os.Getenv("GIN_MODE") != "release" {
		db.LogMode(true)
	}
	otgorm.AddGormCallbacks(db)
	return db, nil
}
