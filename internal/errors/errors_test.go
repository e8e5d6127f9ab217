package errors

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilderSetsFields(t *testing.T) {
	t.Parallel()

	base := NewStd("item is checked out")
	ee := New(base).
		Component("inventory").
		Category(CategoryPrecondition).
		Priority(PriorityHigh).
		Context("item_id", "abc").
		Build()

	assert.Equal(t, "item is checked out", ee.Error())
	assert.Equal(t, "inventory", ee.GetComponent())
	assert.Equal(t, string(CategoryPrecondition), ee.GetCategory())
	assert.Equal(t, PriorityHigh, ee.GetPriority())
	assert.Equal(t, "abc", ee.GetContext()["item_id"])
	assert.False(t, ee.GetTimestamp().IsZero())
	assert.ErrorIs(t, ee, base)
}

func TestInvalidPriorityFallsBackToMedium(t *testing.T) {
	t.Parallel()

	ee := Newf("boom %d", 1).Priority("urgent").Build()
	assert.Equal(t, PriorityMedium, ee.GetPriority())
	assert.Equal(t, "boom 1", ee.GetMessage())
}

func TestCategoryDetection(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want ErrorCategory
	}{
		{"not found", NewStd("firearm not found"), CategoryNotFound},
		{"constraint", NewStd("UNIQUE constraint failed: firearms.serial_number"), CategoryConflict},
		{"invalid", NewStd("invalid date"), CategoryValidation},
		{"missing file", NewStd("open x.csv: no such file or directory"), CategoryFileIO},
		{"generic", NewStd("something odd"), CategoryGeneric},
		{"wrapped enhanced", fmt.Errorf("outer: %w", New(NewStd("x")).Category(CategoryReference).Build()), CategoryReference},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ee := New(tt.err).Build()
			assert.Equal(t, tt.want, ee.Category)
		})
	}
}

func TestCategoryPredicates(t *testing.T) {
	t.Parallel()

	notFound := New(NewStd("gone")).Category(CategoryNotFound).Build()
	wrapped := fmt.Errorf("lookup: %w", notFound)

	assert.True(t, IsNotFound(wrapped))
	assert.False(t, IsPrecondition(wrapped))
	assert.True(t, IsPrecondition(New(NewStd("x")).Category(CategoryPrecondition).Build()))
	assert.True(t, IsValidation(ValidationError("bad")))
	assert.True(t, IsConflict(New(NewStd("dup")).Category(CategoryConflict).Build()))
	assert.False(t, IsNotFound(NewStd("plain")))
}

func TestFileErrorContext(t *testing.T) {
	t.Parallel()

	ee := FileError(NewStd("permission denied"), "/tmp/backup.CSV", 2048)
	require.Equal(t, CategoryFileIO, ee.Category)
	ctx := ee.GetContext()
	assert.Equal(t, "csv", ctx["file_extension"])
	assert.Equal(t, "small", ctx["file_size_category"])
}

func TestComponentLookup(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "repository", lookupComponent("github.com/tphakala/gear-tracker/internal/datastore/repository.(*firearmRepository).Create"))
	assert.Equal(t, "datastore", lookupComponent("github.com/tphakala/gear-tracker/internal/datastore.(*Store).Migrate"))
	assert.Equal(t, ComponentUnknown, lookupComponent("main.main"))
}

//nolint:paralleltest // mutates global hook registry
func TestErrorHooks(t *testing.T) {
	t.Cleanup(ClearErrorHooks)

	var mu sync.Mutex
	var seen []ErrorCategory
	AddErrorHook(func(ee *EnhancedError) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, ee.Category)
	})

	_ = New(NewStd("x")).Category(CategoryDatabase).Build()
	ClearErrorHooks()
	_ = New(NewStd("y")).Category(CategoryDatabase).Build()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []ErrorCategory{CategoryDatabase}, seen)
}
