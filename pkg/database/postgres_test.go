package database

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestIsLockNotAvailable(t *testing.T) {
	assert.True(t, IsLockNotAvailable(&pq.Error{Code: "55P03"}))
	assert.True(t, IsLockNotAvailable(fmt.Errorf("lock row: %w", &pq.Error{Code: "55P03"})))
	assert.False(t, IsLockNotAvailable(&pq.Error{Code: "23505"}))
	assert.False(t, IsLockNotAvailable(errors.New("plain")))
	assert.False(t, IsLockNotAvailable(nil))
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, IsUniqueViolation(&pq.Error{Code: "23505"}))
	assert.True(t, IsUniqueViolation(fmt.Errorf("insert: %w", &pq.Error{Code: "23505"})))
	assert.False(t, IsUniqueViolation(&pq.Error{Code: "55P03"}))
	assert.False(t, IsUniqueViolation(nil))
}
