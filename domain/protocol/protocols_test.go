package protocol_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"activityflow/domain/protocol"
	"activityflow/session"
	"activityflow/testinfra"

	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/assert"
)

func TestNextProtocol(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should allocate consecutive protocols within a year", func(t *testing.T) {
		testDatabase := testinfra.StartMysqlTestDatabase("activityflow")
		defer testinfra.StopMysqlTestDatabase(testDatabase)

		db, err := testDatabase.DS.GormDB(context.Background(), session.DefaultTenant)
		assert.Nil(t, err)
		assert.Nil(t, db.AutoMigrate(&protocol.ProtocolSequence{}).Error)

		year := time.Now().Year()

		p, err := protocol.NextProtocol(db)
		Expect(err).To(BeNil())
		Expect(p).To(Equal(fmt.Sprintf("%d/000001", year)))

		p, err = protocol.NextProtocol(db)
		Expect(err).To(BeNil())
		Expect(p).To(Equal(fmt.Sprintf("%d/000002", year)))

		p, err = protocol.NextProtocol(db)
		Expect(err).To(BeNil())
		Expect(p).To(Equal(fmt.Sprintf("%d/000003", year)))

		seq := protocol.ProtocolSequence{}
		Expect(db.Where(&protocol.ProtocolSequence{Year: year}).First(&seq).Error).To(BeNil())
		Expect(seq.NextNumber).To(Equal(4))
	})

	t.Run("should keep independent sequences per year", func(t *testing.T) {
		testDatabase := testinfra.StartMysqlTestDatabase("activityflow")
		defer testinfra.StopMysqlTestDatabase(testDatabase)

		db, err := testDatabase.DS.GormDB(context.Background(), session.DefaultTenant)
		assert.Nil(t, err)
		assert.Nil(t, db.AutoMigrate(&protocol.ProtocolSequence{}).Error)

		lastYear := time.Now().Year() - 1
		Expect(db.Create(&protocol.ProtocolSequence{Year: lastYear, NextNumber: 55}).Error).To(BeNil())

		p, err := protocol.NextProtocol(db)
		Expect(err).To(BeNil())
		Expect(p).To(Equal(fmt.Sprintf("%d/000001", time.Now().Year())))

		seq := protocol.ProtocolSequence{}
		Expect(db.Where(&protocol.ProtocolSequence{Year: lastYear}).First(&seq).Error).To(BeNil())
		Expect(seq.NextNumber).To(Equal(55))
	})
}
