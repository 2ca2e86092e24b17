package fields

import (
	"fmt"
	"sort"

	"github.com/getevo/evo/v2/lib/db"
	"github.com/getevo/evo/v2/lib/log"
	"github.com/iesreza/stayhub-backend/apps/models"
	"github.com/iesreza/stayhub-backend/apps/nats"
	"github.com/iesreza/stayhub-backend/apps/redis"
)

// SchemaChangedSubject is the NATS subject schema invalidations fan out on.
const SchemaChangedSubject = "stayhub.schema.changed"

// GroupView is one field group with its member definitions in presentation
// order.
type GroupView struct {
	Group  models.FieldGroup        `json:"group"`
	Fields []models.FieldDefinition `json:"fields"`
}

// SchemaView is the grouping presentation contract handed to rendering
// callers: ordered groups plus the ungrouped definitions partitioned by
// category. The rendering layer is responsible for visual layout only.
type SchemaView struct {
	OwnerScope  string                              `json:"owner_scope"`
	OwnerTypeID uint                                `json:"owner_type_id"`
	Groups      []GroupView                         `json:"groups"`
	Ungrouped   map[string][]models.FieldDefinition `json:"ungrouped"`
	Categories  []string                            `json:"categories"`
}

// Definitions flattens the view back into schema order: grouped fields by
// group order, then ungrouped fields by category.
func (s *SchemaView) Definitions() []models.FieldDefinition {
	var defs []models.FieldDefinition
	for _, group := range s.Groups {
		defs = append(defs, group.Fields...)
	}
	for _, category := range s.Categories {
		defs = append(defs, s.Ungrouped[category]...)
	}
	return defs
}

// BuildSchemaView assembles the derived presentation view from raw rows.
// It is a pure computation: the category partition is never persisted.
func BuildSchemaView(ownerScope string, ownerTypeID uint, groups []models.FieldGroup, defs []models.FieldDefinition) SchemaView {
	sorted := make([]models.FieldGroup, len(groups))
	copy(sorted, groups)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].SortOrder != sorted[j].SortOrder {
			return sorted[i].SortOrder < sorted[j].SortOrder
		}
		// Ties break by creation order; not guaranteed stable across edits.
		return sorted[i].ID < sorted[j].ID
	})

	byGroup := make(map[uint][]models.FieldDefinition)
	var ungrouped []models.FieldDefinition
	for _, def := range sortDefinitions(defs) {
		if def.GroupID != nil {
			byGroup[*def.GroupID] = append(byGroup[*def.GroupID], def)
			continue
		}
		ungrouped = append(ungrouped, def)
	}

	view := SchemaView{
		OwnerScope:  ownerScope,
		OwnerTypeID: ownerTypeID,
		Groups:      make([]GroupView, 0, len(sorted)),
		Ungrouped:   map[string][]models.FieldDefinition{},
	}
	for _, group := range sorted {
		view.Groups = append(view.Groups, GroupView{
			Group:  group,
			Fields: byGroup[group.ID],
		})
		delete(byGroup, group.ID)
	}

	// Definitions pointing at a group of another owner type (or a deleted
	// group) fall back into the ungrouped bucket instead of disappearing.
	for _, stranded := range byGroup {
		ungrouped = append(ungrouped, stranded...)
	}

	view.Ungrouped, view.Categories = UngroupedByCategory(ungrouped)
	return view
}

// MergeUngrouped folds additional definitions into the view's ungrouped
// category sections and recomputes the category order. Callers use it to
// surface fields shared from another owner type in the same layout contract;
// group memberships of the merged definitions belong to the other owner type
// and are ignored here.
func (s *SchemaView) MergeUngrouped(defs []models.FieldDefinition) {
	if len(defs) == 0 {
		return
	}

	var all []models.FieldDefinition
	for _, category := range s.Categories {
		all = append(all, s.Ungrouped[category]...)
	}
	for _, def := range defs {
		def.GroupID = nil
		all = append(all, def)
	}
	s.Ungrouped, s.Categories = UngroupedByCategory(all)
}

// UngroupedByCategory partitions ungrouped definitions into labeled category
// sections, categories in name order and fields in schema order within each.
func UngroupedByCategory(defs []models.FieldDefinition) (map[string][]models.FieldDefinition, []string) {
	buckets := map[string][]models.FieldDefinition{}
	for _, def := range sortDefinitions(defs) {
		category := def.EffectiveCategory()
		buckets[category] = append(buckets[category], def)
	}

	categories := make([]string, 0, len(buckets))
	for category := range buckets {
		categories = append(categories, category)
	}
	sort.Strings(categories)
	return buckets, categories
}

// sortDefinitions orders definitions by sort_order then field_name without
// mutating the input.
func sortDefinitions(defs []models.FieldDefinition) []models.FieldDefinition {
	sorted := make([]models.FieldDefinition, len(defs))
	copy(sorted, defs)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].SortOrder != sorted[j].SortOrder {
			return sorted[i].SortOrder < sorted[j].SortOrder
		}
		return sorted[i].FieldName < sorted[j].FieldName
	})
	return sorted
}

// SchemaFor loads the schema view of one owner type, preferring the Redis
// cache. An open form session keeps operating on the snapshot it fetched;
// cache invalidation only affects sessions opened afterwards.
func SchemaFor(ownerScope string, ownerTypeID uint) (*SchemaView, error) {
	cacheKey := schemaCacheKey(ownerScope, ownerTypeID)

	var cached SchemaView
	if redis.FetchJSON(cacheKey, &cached) {
		return &cached, nil
	}

	var groups []models.FieldGroup
	err := db.Where("owner_scope = ? AND owner_type_id = ?", ownerScope, ownerTypeID).
		Find(&groups).Error
	if err != nil {
		return nil, err
	}

	var defs []models.FieldDefinition
	err = db.Where("owner_scope = ? AND owner_type_id = ?", ownerScope, ownerTypeID).
		Order("sort_order, field_name").Find(&defs).Error
	if err != nil {
		return nil, err
	}

	view := BuildSchemaView(ownerScope, ownerTypeID, groups, defs)
	redis.CacheJSON(cacheKey, view, redis.SchemaCacheTTL)
	return &view, nil
}

// InvalidateSchema drops the cached view and notifies other instances.
// Called on every definition or group write.
func InvalidateSchema(ownerScope string, ownerTypeID uint) {
	redis.Invalidate(schemaCacheKey(ownerScope, ownerTypeID))

	err := nats.PublishJSON(SchemaChangedSubject, map[string]any{
		"owner_scope":   ownerScope,
		"owner_type_id": ownerTypeID,
	})
	if err != nil {
		log.Debug("Schema change broadcast skipped: %v", err)
	}
}

func schemaCacheKey(ownerScope string, ownerTypeID uint) string {
	return fmt.Sprintf("schema:%s:%d", ownerScope, ownerTypeID)
}

// SubscribeSchemaChanges listens for schema invalidations published by other
// instances and drops the cache entry again. This closes the race where a
// concurrent read refilled the cache between the writer's delete and commit.
func SubscribeSchemaChanges() {
	err := nats.SubscribeJSON(SchemaChangedSubject, func(data map[string]any) {
		scope, _ := data["owner_scope"].(string)
		ownerTypeID, _ := data["owner_type_id"].(float64)
		if scope == "" || ownerTypeID <= 0 {
			return
		}
		redis.Invalidate(schemaCacheKey(scope, uint(ownerTypeID)))
	})
	if err != nil {
		log.Warning("Schema change subscription unavailable: %v", err)
	}
}
