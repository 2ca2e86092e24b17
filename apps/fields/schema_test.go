package fields

import (
	"testing"

	"github.com/iesreza/stayhub-backend/apps/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func groupID(id uint) *uint { return &id }

func sampleGroups() []models.FieldGroup {
	return []models.FieldGroup{
		{ID: 2, OwnerScope: models.OwnerScopePropertyType, OwnerTypeID: 1, GroupName: "amenities", DisplayName: "Amenities", SortOrder: 1},
		{ID: 1, OwnerScope: models.OwnerScopePropertyType, OwnerTypeID: 1, GroupName: "basics", DisplayName: "Basics", SortOrder: 0},
	}
}

func sampleDefinitions() []models.FieldDefinition {
	return []models.FieldDefinition{
		{ID: 10, FieldName: "bedrooms", SortOrder: 0, GroupID: groupID(1)},
		{ID: 11, FieldName: "bathrooms", SortOrder: 1, GroupID: groupID(1)},
		{ID: 12, FieldName: "wifi", SortOrder: 0, GroupID: groupID(2)},
		{ID: 13, FieldName: "price", SortOrder: 0, Category: "pricing"},
		{ID: 14, FieldName: "notes", SortOrder: 1},
		{ID: 15, FieldName: "view", SortOrder: 0},
	}
}

func TestBuildSchemaViewOrdersGroups(t *testing.T) {
	view := BuildSchemaView(models.OwnerScopePropertyType, 1, sampleGroups(), sampleDefinitions())

	require.Len(t, view.Groups, 2)
	assert.Equal(t, "basics", view.Groups[0].Group.GroupName)
	assert.Equal(t, "amenities", view.Groups[1].Group.GroupName)

	require.Len(t, view.Groups[0].Fields, 2)
	assert.Equal(t, "bedrooms", view.Groups[0].Fields[0].FieldName)
	assert.Equal(t, "bathrooms", view.Groups[0].Fields[1].FieldName)
}

func TestBuildSchemaViewPartitionsEveryDefinitionExactlyOnce(t *testing.T) {
	defs := sampleDefinitions()
	view := BuildSchemaView(models.OwnerScopePropertyType, 1, sampleGroups(), defs)

	seen := map[uint]int{}
	for _, def := range view.Definitions() {
		seen[def.ID]++
	}

	require.Len(t, seen, len(defs))
	for _, def := range defs {
		assert.Equal(t, 1, seen[def.ID], "field %s must appear exactly once", def.FieldName)
	}
}

func TestBuildSchemaViewUngroupedCategories(t *testing.T) {
	view := BuildSchemaView(models.OwnerScopePropertyType, 1, sampleGroups(), sampleDefinitions())

	assert.Equal(t, []string{"general", "pricing"}, view.Categories)

	general := view.Ungrouped["general"]
	require.Len(t, general, 2)
	assert.Equal(t, "view", general[0].FieldName)
	assert.Equal(t, "notes", general[1].FieldName)

	pricing := view.Ungrouped["pricing"]
	require.Len(t, pricing, 1)
	assert.Equal(t, "price", pricing[0].FieldName)
}

func TestBuildSchemaViewStrandedGroupMembersFallBackToUngrouped(t *testing.T) {
	defs := []models.FieldDefinition{
		{ID: 20, FieldName: "orphaned", SortOrder: 0, GroupID: groupID(99)},
	}

	view := BuildSchemaView(models.OwnerScopeUnitType, 3, nil, defs)

	assert.Empty(t, view.Groups)
	require.Len(t, view.Ungrouped["general"], 1)
	assert.Equal(t, "orphaned", view.Ungrouped["general"][0].FieldName)
}

func TestBuildSchemaViewGroupSortTies(t *testing.T) {
	groups := []models.FieldGroup{
		{ID: 7, GroupName: "later", SortOrder: 0},
		{ID: 3, GroupName: "earlier", SortOrder: 0},
	}

	view := BuildSchemaView(models.OwnerScopePropertyType, 1, groups, nil)

	require.Len(t, view.Groups, 2)
	assert.Equal(t, "earlier", view.Groups[0].Group.GroupName)
	assert.Equal(t, "later", view.Groups[1].Group.GroupName)
}

func TestMergeUngroupedAddsCategorySections(t *testing.T) {
	view := BuildSchemaView(models.OwnerScopeUnitType, 1, sampleGroups(), sampleDefinitions())
	before := len(view.Definitions())

	shared := []models.FieldDefinition{
		{ID: 30, FieldName: "checkin_time", Category: "policies", GroupID: groupID(1)},
		{ID: 31, FieldName: "smoking", SortOrder: 1},
	}
	view.MergeUngrouped(shared)

	assert.Contains(t, view.Categories, "policies")
	require.Len(t, view.Ungrouped["policies"], 1)
	assert.Equal(t, "checkin_time", view.Ungrouped["policies"][0].FieldName)
	assert.Nil(t, view.Ungrouped["policies"][0].GroupID, "foreign group memberships do not survive the merge")

	assert.Len(t, view.Definitions(), before+len(shared))
}

func TestMergeUngroupedEmptyIsNoOp(t *testing.T) {
	view := BuildSchemaView(models.OwnerScopeUnitType, 1, nil, sampleDefinitions())
	categories := view.Categories

	view.MergeUngrouped(nil)
	assert.Equal(t, categories, view.Categories)
}

func TestSortDefinitionsDoesNotMutateInput(t *testing.T) {
	defs := []models.FieldDefinition{
		{ID: 1, FieldName: "b", SortOrder: 1},
		{ID: 2, FieldName: "a", SortOrder: 0},
	}

	sorted := sortDefinitions(defs)
	assert.Equal(t, "a", sorted[0].FieldName)
	assert.Equal(t, "b", defs[0].FieldName, "input order must survive")
}
