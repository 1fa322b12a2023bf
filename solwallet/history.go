package solwallet

import (
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"giftcards/giftprogram"
)

// CardActivity - One submitted gift card operation, kept locally so the UI
// can show history without replaying chain queries
type CardActivity struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Owner        string     `gorm:"index;size:44" json:"owner"`
	CardID       uint64     `gorm:"index" json:"card_id"`
	Operation    string     `gorm:"index;size:20" json:"operation"` // create, redeem, refund, rule_set, delete
	Merchant     string     `gorm:"size:44" json:"merchant,omitempty"`
	Amount       uint64     `json:"amount"`
	Signature    string     `gorm:"uniqueIndex;size:88" json:"signature"`
	Status       string     `gorm:"index;size:20" json:"status"` // pending, confirmed, failed
	ErrorMessage string     `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	ConfirmedAt  *time.Time `json:"confirmed_at,omitempty"`
}

func (CardActivity) TableName() string {
	return "card_activities"
}

// MigrateActivityDB - Create or update the activity schema
func MigrateActivityDB(db *gorm.DB) error {
	if err := db.AutoMigrate(&CardActivity{}); err != nil {
		return errors.Wrap(err, "failed to migrate card activity schema")
	}
	return nil
}

// RecordActivity - Persist a newly submitted operation
func (w *SolWallet) RecordActivity(activity *CardActivity) error {
	if w.db == nil {
		return errors.New("database not configured")
	}
	if activity.Status == "" {
		activity.Status = "pending"
	}
	if err := w.db.Create(activity).Error; err != nil {
		return errors.Wrap(err, "failed to record activity")
	}
	return nil
}

// MarkActivityStatus - Update an operation's outcome by signature
func (w *SolWallet) MarkActivityStatus(signature, status, errorMessage string) error {
	if w.db == nil {
		return errors.New("database not configured")
	}

	updates := map[string]interface{}{
		"status":        status,
		"error_message": errorMessage,
	}
	if status == "confirmed" || status == "finalized" {
		now := time.Now()
		updates["confirmed_at"] = &now
	}

	result := w.db.Model(&CardActivity{}).Where("signature = ?", signature).Updates(updates)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to update activity")
	}
	if result.RowsAffected == 0 {
		return errors.Errorf("no activity recorded for signature %s", signature)
	}
	return nil
}

// GetActivityHistory - An owner's operations, newest first
func (w *SolWallet) GetActivityHistory(owner string, limit int) ([]CardActivity, error) {
	if w.db == nil {
		return nil, errors.New("database not configured")
	}
	if limit <= 0 {
		limit = 20
	}

	var activities []CardActivity
	err := w.db.Where("owner = ?", owner).
		Order("created_at DESC").
		Limit(limit).
		Find(&activities).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to query activity history")
	}
	return activities, nil
}

// The wallet is the program client's activity recorder: every transaction
// the client submits lands in the history store.
var _ giftprogram.ActivityRecorder = (*SolWallet)(nil)

// OperationSubmitted - Record a just-submitted transaction as pending.
// Failures are logged, never propagated into the operation itself.
func (w *SolWallet) OperationSubmitted(activity giftprogram.Activity, signature string) {
	err := w.RecordActivity(&CardActivity{
		Owner:     activity.Owner,
		CardID:    activity.CardID,
		Operation: activity.Operation,
		Merchant:  activity.Merchant,
		Amount:    activity.Amount,
		Signature: signature,
	})
	if err != nil {
		w.log.WithError(err).WithField("signature", signature).
			Warn("failed to record submitted operation")
	}
}

// OperationResolved - Record a submitted transaction's outcome
func (w *SolWallet) OperationResolved(signature string, status giftprogram.TransactionStatus, errorMessage string) {
	if err := w.MarkActivityStatus(signature, string(status), errorMessage); err != nil {
		w.log.WithError(err).WithField("signature", signature).
			Warn("failed to record operation outcome")
	}
}
