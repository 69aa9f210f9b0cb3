package persistence

import (
	"database/sql"
	"errors"
	"os"
	"strings"

	_ "github.com/go-sql-driver/mysql"
)

type DatabaseConfig struct {
	DriverType string

	// ServiceArgs addresses the database service without a schema name,
	// e.g. "root:root@(127.0.0.1:3306)". Tenant schemas are derived from it.
	ServiceArgs string

	// DatabasePrefix prefixes every tenant schema name.
	DatabasePrefix string
}

// ParseDatabaseConfigFromEnv MYSQL_SERVICE=root:root@(127.0.0.1:3306)
func ParseDatabaseConfigFromEnv() (*DatabaseConfig, error) {
	service := os.Getenv("MYSQL_SERVICE")
	if service == "" {
		return nil, errors.New("environment variable MYSQL_SERVICE is missing")
	}
	prefix := os.Getenv("DATABASE_PREFIX")
	if prefix == "" {
		prefix = "activityflow"
	}
	return &DatabaseConfig{DriverType: "mysql", ServiceArgs: service, DatabasePrefix: prefix}, nil
}

func (c *DatabaseConfig) DatabaseName(tenant string) string {
	return c.DatabasePrefix + "_" + tenant
}

func (c *DatabaseConfig) ArgsForTenant(tenant string) string {
	return c.ServiceArgs + "/" + c.DatabaseName(tenant) + "?charset=utf8mb4&parseTime=True&loc=Local&timeout=5s"
}

// PrepareMysqlDatabase creates the schema of the given DSN when absent.
func PrepareMysqlDatabase(driverArgs string) error {
	idx := strings.LastIndex(driverArgs, "/")
	if idx < 0 {
		return errors.New("invalid database driver args")
	}
	databaseName := driverArgs[idx+1:]
	if qIdx := strings.Index(databaseName, "?"); qIdx >= 0 {
		databaseName = databaseName[0:qIdx]
	}

	db, err := sql.Open("mysql", driverArgs[0:idx+1])
	if err != nil {
		return err
	}
	defer db.Close()

	_, err = db.Exec("CREATE DATABASE IF NOT EXISTS " + databaseName + " DEFAULT CHARACTER SET utf8mb4")
	return err
}
