package models

import (
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Controllers filter on group_name and field_name with raw predicates, so
// the struct fields must keep those column mappings.
func TestNameColumnsStayAligned(t *testing.T) {
	cases := []struct {
		model  any
		field  string
		column string
	}{
		{FieldGroup{}, "GroupName", "column:group_name"},
		{FieldDefinition{}, "FieldName", "column:field_name"},
	}

	for _, c := range cases {
		f, ok := reflect.TypeOf(c.model).FieldByName(c.field)
		require.True(t, ok, "%T must declare %s", c.model, c.field)
		assert.True(t, strings.Contains(f.Tag.Get("gorm"), c.column),
			"%T.%s must map to %s", c.model, c.field, c.column)
	}
}

func TestFieldGroupTableName(t *testing.T) {
	assert.Equal(t, "field_groups", FieldGroup{}.TableName())
}
