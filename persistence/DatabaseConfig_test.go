package persistence_test

import (
	"os"
	"testing"

	"activityflow/persistence"

	. "github.com/onsi/gomega"
)

func TestParseDatabaseConfigFromEnv(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should fail without the database service address", func(t *testing.T) {
		os.Unsetenv("MYSQL_SERVICE")
		_, err := persistence.ParseDatabaseConfigFromEnv()
		Expect(err).ToNot(BeNil())
	})

	t.Run("should default the database prefix", func(t *testing.T) {
		os.Setenv("MYSQL_SERVICE", "root:root@(127.0.0.1:3306)")
		os.Unsetenv("DATABASE_PREFIX")
		defer os.Unsetenv("MYSQL_SERVICE")

		c, err := persistence.ParseDatabaseConfigFromEnv()
		Expect(err).To(BeNil())
		Expect(c.DriverType).To(Equal("mysql"))
		Expect(c.ServiceArgs).To(Equal("root:root@(127.0.0.1:3306)"))
		Expect(c.DatabasePrefix).To(Equal("activityflow"))
	})

	t.Run("should honor an explicit prefix", func(t *testing.T) {
		os.Setenv("MYSQL_SERVICE", "root:root@(127.0.0.1:3306)")
		os.Setenv("DATABASE_PREFIX", "portal")
		defer os.Unsetenv("MYSQL_SERVICE")
		defer os.Unsetenv("DATABASE_PREFIX")

		c, err := persistence.ParseDatabaseConfigFromEnv()
		Expect(err).To(BeNil())
		Expect(c.DatabasePrefix).To(Equal("portal"))
	})
}

func TestTenantSchemaNaming(t *testing.T) {
	RegisterTestingT(t)

	c := persistence.DatabaseConfig{
		DriverType: "mysql", ServiceArgs: "root:root@(127.0.0.1:3306)", DatabasePrefix: "activityflow",
	}

	t.Run("should derive the schema name from the tenant", func(t *testing.T) {
		Expect(c.DatabaseName("global")).To(Equal("activityflow_global"))
		Expect(c.DatabaseName("fmfi")).To(Equal("activityflow_fmfi"))
	})

	t.Run("should derive driver args from the tenant", func(t *testing.T) {
		Expect(c.ArgsForTenant("fmfi")).To(Equal(
			"root:root@(127.0.0.1:3306)/activityflow_fmfi?charset=utf8mb4&parseTime=True&loc=Local&timeout=5s"))
	})
}
