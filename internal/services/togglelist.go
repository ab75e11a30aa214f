package services

import (
	"context"
	"errors"

	"github.com/ahmetcoskunkizilkaya/foodgram/internal/metrics"
	"gorm.io/gorm"
)

// ListRules configures one per-user membership list (favorites, shopping
// cart, subscriptions). Rows are unique per (user_id, TargetColumn).
type ListRules[T any] struct {
	// Name labels metrics and logs.
	Name         string
	TargetColumn string
	NewRow       func(userID, targetID uint) *T
	TargetExists func(db *gorm.DB, targetID uint) (bool, error)
	// Check runs after the target is known to exist and before the
	// duplicate check. Nil means no extra rule.
	Check func(userID, targetID uint) error

	ErrTargetMissing  error
	ErrAlreadyPresent error
	ErrNotPresent     error
}

// ToggleList implements add/remove/contains over a membership table.
type ToggleList[T any] struct {
	db    *gorm.DB
	rules ListRules[T]
}

func NewToggleList[T any](db *gorm.DB, rules ListRules[T]) *ToggleList[T] {
	return &ToggleList[T]{db: db, rules: rules}
}

// Add inserts (userID, targetID). Failures are checked in order: missing
// target, extra rule, existing membership.
func (l *ToggleList[T]) Add(ctx context.Context, userID, targetID uint) error {
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := l.rules.TargetExists(tx, targetID)
		if err != nil {
			return err
		}
		if !ok {
			return l.rules.ErrTargetMissing
		}

		if l.rules.Check != nil {
			if err := l.rules.Check(userID, targetID); err != nil {
				return err
			}
		}

		present, err := l.contains(tx, userID, targetID)
		if err != nil {
			return err
		}
		if present {
			return l.rules.ErrAlreadyPresent
		}

		return l.insert(tx, userID, targetID)
	})
	l.record("add", err)
	return err
}

// insert creates the membership row. A unique-index violation means a
// concurrent add won the race.
func (l *ToggleList[T]) insert(db *gorm.DB, userID, targetID uint) error {
	err := db.Create(l.rules.NewRow(userID, targetID)).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return l.rules.ErrAlreadyPresent
	}
	return err
}

// Remove deletes (userID, targetID) or returns ErrNotPresent.
func (l *ToggleList[T]) Remove(ctx context.Context, userID, targetID uint) error {
	res := l.db.WithContext(ctx).
		Scopes(ForUser(userID)).
		Where(l.rules.TargetColumn+" = ?", targetID).
		Delete(new(T))

	err := res.Error
	if err == nil && res.RowsAffected == 0 {
		err = l.rules.ErrNotPresent
	}
	l.record("remove", err)
	return err
}

func (l *ToggleList[T]) Contains(ctx context.Context, userID, targetID uint) (bool, error) {
	return l.contains(l.db.WithContext(ctx), userID, targetID)
}

// Members reports which of targetIDs are in the user's list.
func (l *ToggleList[T]) Members(ctx context.Context, userID uint, targetIDs []uint) (map[uint]bool, error) {
	out := make(map[uint]bool, len(targetIDs))
	if userID == 0 || len(targetIDs) == 0 {
		return out, nil
	}
	var ids []uint
	err := l.db.WithContext(ctx).Model(new(T)).
		Scopes(ForUser(userID)).
		Where(l.rules.TargetColumn+" IN ?", targetIDs).
		Pluck(l.rules.TargetColumn, &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

// TargetsOf returns the subquery of target ids in the user's list, for use
// in filters like "recipes.id IN (?)".
func (l *ToggleList[T]) TargetsOf(db *gorm.DB, userID uint) *gorm.DB {
	return db.Session(&gorm.Session{NewDB: true}).Model(new(T)).
		Select(l.rules.TargetColumn).
		Scopes(ForUser(userID))
}

func (l *ToggleList[T]) contains(db *gorm.DB, userID, targetID uint) (bool, error) {
	var count int64
	err := db.Model(new(T)).
		Scopes(ForUser(userID)).
		Where(l.rules.TargetColumn+" = ?", targetID).
		Count(&count).Error
	return count > 0, err
}

func (l *ToggleList[T]) record(op string, err error) {
	result := "ok"
	if err != nil {
		result = CodeOf(err)
	}
	metrics.RecordListOperation(l.rules.Name, op, result)
}
