package services

import (
	"fmt"

	"github.com/UziB26/leagueladder-sub000/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// lockForUpdate takes a row-level write lock where the dialect supports it.
// SQLite (used in tests) serializes writers on its own and rejects FOR UPDATE.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// transitionContest flips a contest's status with the previous status in the
// WHERE clause, so across service instances a concurrent transition loses the
// write instead of double-applying. staleErr is returned when another
// transaction got there first. extra columns are written in the same guarded
// update.
func transitionContest(tx *gorm.DB, contest *models.Contest, next models.ContestStatus, staleErr error, extra map[string]interface{}) error {
	if !contest.Status.CanTransitionTo(next) {
		return fmt.Errorf("invalid contest transition %s -> %s", contest.Status, next)
	}

	updates := map[string]interface{}{"status": next}
	for k, v := range extra {
		updates[k] = v
	}

	res := tx.Model(&models.Contest{}).
		Where("id = ? AND status = ?", contest.ID, contest.Status).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return staleErr
	}
	contest.Status = next
	return nil
}
