package testinfra

import (
	"context"
	"log"
	"os"
	"strings"

	"activityflow/persistence"

	"github.com/google/uuid"
)

type TestDatabase struct {
	DatabasePrefix string
	DS             *persistence.DataSourceManager
}

// StartMysqlTestDatabase TEST_MYSQL_SERVICE=root:root@(127.0.0.1:3306)
func StartMysqlTestDatabase(baseName string) *TestDatabase {
	mysqlSvc := os.Getenv("TEST_MYSQL_SERVICE")
	if mysqlSvc == "" {
		mysqlSvc = "root:root@(127.0.0.1:3306)"
	}
	prefix := baseName + "_test_" + strings.ReplaceAll(uuid.New().String(), "-", "")

	dbConfig := &persistence.DatabaseConfig{
		DriverType: "mysql", ServiceArgs: mysqlSvc, DatabasePrefix: prefix,
	}

	ds := &persistence.DataSourceManager{DatabaseConfig: dbConfig}
	if err := ds.Start(); err != nil {
		defer ds.Stop()
		log.Fatalf("database connection failed %v\n", err)
	}

	persistence.ActiveDataSourceManager = ds
	return &TestDatabase{DatabasePrefix: prefix, DS: ds}
}

func StopMysqlTestDatabase(testDatabase *TestDatabase) {
	if testDatabase == nil || testDatabase.DS == nil {
		return
	}

	tenants, err := testDatabase.DS.ListTenants()
	if err != nil {
		log.Println("failed to list test databases of prefix " + testDatabase.DatabasePrefix)
		testDatabase.DS.Stop()
		return
	}
	for _, tenant := range tenants {
		db, err := testDatabase.DS.GormDB(context.Background(), tenant)
		if err != nil {
			continue
		}
		name := testDatabase.DS.DatabaseConfig.DatabaseName(tenant)
		if err := db.Exec("DROP DATABASE " + name).Error; err != nil {
			log.Println("failed to drop test database: " + name)
		} else {
			log.Println("test database " + name + " dropped")
		}
	}

	testDatabase.DS.Stop()
}
