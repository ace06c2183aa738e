package utils

import (
	"context"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/go-playground/validator/v10"
	"github.com/mmdatafocus/vendex_backend/config"
)

// StartOfDay normalises t to UTC midnight of its calendar date. Truncate
// rounds against the epoch, so a timestamp carrying a non-UTC offset would
// land on the previous day.
func StartOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func ProcessValidationErrors(err error) map[string]string {

	validationErrors := err.(validator.ValidationErrors)

	errorResponse := make(map[string]string)

	for _, ve := range validationErrors {
		errorResponse[ve.Field()] = ve.Tag()
	}

	return errorResponse
}

func NewTrue() *bool {
	b := true
	return &b
}

func NewFalse() *bool {
	b := false
	return &b
}

func UniqueSlice[T comparable](slice []T) []T {
	seen := make(map[T]bool)
	unique := []T{}
	for _, elem := range slice {
		if !seen[elem] {
			seen[elem] = true
			unique = append(unique, elem)
		}
	}
	return unique
}

// safely dereference pointer of type T, nil pointer return zero value or optional default
func DereferencePtr[T any](ptr *T, defaults ...T) T {
	var defaultValue T
	if len(defaults) > 0 {
		defaultValue = defaults[0]
	}
	if ptr == nil {
		return defaultValue
	}
	return *ptr
}

// ObtainLock serializes a mutation across instances via redislock.
// The caller must Release the returned lock. A nil locker (redis not
// connected, e.g. unit tests) degrades to no locking.
func ObtainLock(ctx context.Context, lockType string, key string, moduleName string, functionName string) (*redislock.Lock, error) {
	locker := config.GetRedisLock()
	if locker == nil {
		return nil, nil
	}
	lockKey := fmt.Sprintf("%s:%s", lockType, key)
	lock, err := locker.Obtain(ctx, lockKey, 30*time.Second, nil)
	if err == redislock.ErrNotObtained {
		config.LogError(config.GetLogger(), moduleName, functionName, "could not obtain lock", lockKey, err)
		return nil, fmt.Errorf("could not obtain lock for %s", lockKey)
	} else if err != nil {
		config.LogError(config.GetLogger(), moduleName, functionName, "error obtaining lock", lockKey, err)
		return nil, err
	}
	return lock, nil
}

// ReleaseLock is a nil-safe release for locks handed out by ObtainLock.
func ReleaseLock(ctx context.Context, lock *redislock.Lock) {
	if lock == nil {
		return
	}
	_ = lock.Release(ctx)
}
