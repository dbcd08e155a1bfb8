package request_test

import (
	"testing"
	"time"

	"go-leave/internal/request"

	"github.com/stretchr/testify/assert"
)

func TestBusinessDays(t *testing.T) {
	monday := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	friday := time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC)
	saturday := time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC)
	sunday := time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC)
	nextMonday := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)

	t.Run("monday through friday is five days", func(t *testing.T) {
		assert.Equal(t, 5, request.BusinessDays(monday, timePtr(friday)))
	})

	t.Run("nil end counts the single start day", func(t *testing.T) {
		assert.Equal(t, 1, request.BusinessDays(monday, nil))
	})

	t.Run("single weekend day counts zero", func(t *testing.T) {
		assert.Equal(t, 0, request.BusinessDays(saturday, nil))
		assert.Equal(t, 0, request.BusinessDays(sunday, nil))
	})

	t.Run("range over a weekend skips it", func(t *testing.T) {
		assert.Equal(t, 6, request.BusinessDays(friday, timePtr(nextMonday.AddDate(0, 0, 4))))
	})

	t.Run("weekend-only range counts zero", func(t *testing.T) {
		assert.Equal(t, 0, request.BusinessDays(saturday, timePtr(sunday)))
	})

	t.Run("end before start counts zero", func(t *testing.T) {
		assert.Equal(t, 0, request.BusinessDays(friday, timePtr(monday)))
	})
}
