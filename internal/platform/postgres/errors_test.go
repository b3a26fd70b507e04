package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestConstraintClassification(t *testing.T) {
	dup := fmt.Errorf("insert: %w", &pq.Error{Code: "23505"})
	assert.True(t, IsUniqueViolation(dup))
	assert.False(t, IsForeignKeyViolation(dup))

	assert.True(t, IsForeignKeyViolation(&pq.Error{Code: "23503"}))
	assert.True(t, IsCheckViolation(&pq.Error{Code: "23514"}))
	assert.False(t, IsUniqueViolation(errors.New("boom")))
}
