package protocol

import (
	"fmt"
	"time"

	"github.com/jinzhu/gorm"
)

// ProtocolSequence drives per-year activity protocol numbering within a
// tenant database.
type ProtocolSequence struct {
	Year       int `json:"year" gorm:"primary_key;auto_increment:false"`
	NextNumber int `json:"nextNumber"`
}

func (r *ProtocolSequence) TableName() string {
	return "protocol_sequences"
}

var NextProtocolFunc = NextProtocol

// NextProtocol allocates the next protocol of the current year, e.g.
// "2026/000042". Runs inside the caller's transaction.
func NextProtocol(tx *gorm.DB) (string, error) {
	year := time.Now().Year()

	seq := ProtocolSequence{}
	err := tx.Where(&ProtocolSequence{Year: year}).First(&seq).Error
	if gorm.IsRecordNotFoundError(err) {
		seq = ProtocolSequence{Year: year, NextNumber: 1}
		if err := tx.Create(&seq).Error; err != nil {
			return "", err
		}
	} else if err != nil {
		return "", err
	}

	number := seq.NextNumber
	db := tx.Model(&ProtocolSequence{}).Where("year = ? AND next_number = ?", year, number).
		Update("next_number", number+1)
	if db.Error != nil {
		return "", db.Error
	}
	if db.RowsAffected != 1 {
		return "", fmt.Errorf("protocol sequence of year %d is contended", year)
	}

	return fmt.Sprintf("%d/%06d", year, number), nil
}
