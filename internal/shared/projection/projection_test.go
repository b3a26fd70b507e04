package projection

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEntitiesSkipsNil(t *testing.T) {
	now := time.Now()
	first := New("a", now, now)
	second := New("b", now, now.Add(time.Minute))

	assert.Equal(t, []string{"a", "b"}, Entities([]*Projection[string]{&first, nil, &second}))
	assert.Equal(t, now.Add(time.Minute), second.Metadata.UpdatedAt)
}
