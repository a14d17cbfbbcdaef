package db

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithRetries_RetriesOnDuplicateKey(t *testing.T) {
	dup := errors.New("duplicate")
	isDup := func(err error) bool { return errors.Is(err, dup) }

	attempts := 0
	err := WithRetries(func() error {
		attempts++
		if attempts < 3 {
			return dup
		}
		return nil
	}, 3, isDup)
	assert.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestWithRetries_GivesUpAfterMaxRetries(t *testing.T) {
	dup := errors.New("duplicate")
	isDup := func(err error) bool { return errors.Is(err, dup) }

	attempts := 0
	err := WithRetries(func() error {
		attempts++
		return dup
	}, 2, isDup)
	assert.Error(t, err)
	assert.Equal(t, 3, attempts) // initial try plus two retries
}

func TestWithRetries_OtherErrorsFailFast(t *testing.T) {
	boom := errors.New("boom")
	attempts := 0
	err := WithRetries(func() error {
		attempts++
		return boom
	}, 3, func(err error) bool { return false })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, attempts)
}

func TestIsMongoDuplicateKeyError(t *testing.T) {
	assert.False(t, IsMongoDuplicateKeyError(nil))
	assert.False(t, IsMongoDuplicateKeyError(errors.New("not a mongo error")))
}
