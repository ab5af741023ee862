package validation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name    string        `validate:"required"`
	Count   int           `validate:"gt=0"`
	Window  time.Duration `validate:"gt=0"`
	Backend string        `validate:"oneof=memory redis"`
}

func TestStruct_Valid(t *testing.T) {
	assert.NoError(t, Struct(sample{Name: "a", Count: 1, Window: time.Second, Backend: "redis"}))
}

func TestStruct_CollectsFields(t *testing.T) {
	err := Struct(sample{Backend: "disk"})
	require.Error(t, err)

	var verr *Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"Name", "Count", "Window", "Backend"}, verr.FieldNames())
	assert.Contains(t, err.Error(), "Name is required")
	assert.Contains(t, err.Error(), "Backend must be one of [memory redis]")
}

func TestGet_Singleton(t *testing.T) {
	assert.Same(t, Get(), Get())
}
