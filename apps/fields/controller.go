package fields

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/getevo/evo/v2"
	"github.com/getevo/evo/v2/lib/db"
	"github.com/getevo/pagination"
	validator "github.com/go-playground/validator/v10"
	"github.com/iesreza/stayhub-backend/apps/models"
	"github.com/iesreza/stayhub-backend/lib/dynamicform"
	"github.com/iesreza/stayhub-backend/lib/response"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Controller struct{}

var validate = validator.New()

// FieldTypeInfo describes one catalog entry for the admin UI.
type FieldTypeInfo struct {
	TypeKey      string   `json:"type_key"`
	AcceptedKeys []string `json:"accepted_validation_keys"`
}

// ListFieldTypes returns the static field type catalog.
func (c Controller) ListFieldTypes(request *evo.Request) any {
	keys := dynamicform.TypeKeys()
	sort.Strings(keys)

	types := make([]FieldTypeInfo, 0, len(keys))
	for _, key := range keys {
		types = append(types, FieldTypeInfo{
			TypeKey:      key,
			AcceptedKeys: dynamicform.AcceptedKeys(key),
		})
	}
	return response.List(types, len(types))
}

// ListDefinitions returns field definitions with filters and pagination.
// Filters combine with AND semantics.
func (c Controller) ListDefinitions(request *evo.Request) any {
	query := db.Model(&models.FieldDefinition{})

	if scope := request.Query("owner_scope").String(); scope != "" {
		query = query.Where("owner_scope = ?", scope)
	}
	if ownerID := request.Query("owner_type_id").String(); ownerID != "" {
		query = query.Where("owner_type_id = ?", ownerID)
	}
	if search := strings.TrimSpace(request.Query("search").String()); search != "" {
		like := "%" + search + "%"
		query = query.Where("display_name LIKE ? OR field_name LIKE ?", like, like)
	}
	if required := request.Query("is_required").String(); required != "" {
		query = query.Where("is_required = ?", required == "true")
	}
	if public := request.Query("is_public").String(); public != "" {
		query = query.Where("is_public = ?", public == "true")
	}
	if typeKey := request.Query("field_type_key").String(); typeKey != "" {
		query = query.Where("field_type_key = ?", typeKey)
	}

	query = query.Order("sort_order, field_name")

	var definitions []models.FieldDefinition
	p, err := pagination.New(query, request, &definitions, pagination.Options{MaxSize: 100})
	if err != nil {
		return response.Error(response.ErrFetchDefinitions())
	}

	return response.OKWithMeta(definitions, &response.Meta{
		Page:       p.CurrentPage,
		Limit:      p.Size,
		Total:      int64(p.Records),
		TotalPages: p.Pages,
	})
}

// GetDefinition returns a single field definition by ID.
func (c Controller) GetDefinition(request *evo.Request) any {
	var definition models.FieldDefinition
	err := db.First(&definition, request.Param("id").String()).Error
	if resp := response.HandleDBError(err, request, "Field definition not found", "GetDefinition"); resp != nil {
		return resp
	}
	return response.OK(definition)
}

// DefinitionRequest is the payload for creating or updating a definition.
type DefinitionRequest struct {
	OwnerScope      string         `json:"owner_scope" validate:"required,oneof=property_type unit_type"`
	OwnerTypeID     uint           `json:"owner_type_id" validate:"required"`
	FieldName       string         `json:"field_name" validate:"required,max=100"`
	DisplayName     string         `json:"display_name" validate:"required,max=255"`
	Description     *string        `json:"description"`
	FieldTypeKey    string         `json:"field_type_key" validate:"required"`
	FieldOptions    map[string]any `json:"field_options"`
	ValidationRules map[string]any `json:"validation_rules"`
	IsRequired      bool           `json:"is_required"`
	IsSearchable    bool           `json:"is_searchable"`
	IsPublic        bool           `json:"is_public"`
	IsForUnits      bool           `json:"is_for_units"`
	SortOrder       int            `json:"sort_order"`
	Category        string         `json:"category"`
}

// CreateDefinition creates a new field definition.
func (c Controller) CreateDefinition(request *evo.Request) any {
	var req DefinitionRequest
	if err := request.BodyParser(&req); err != nil {
		return response.BadRequest(request, "Invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return response.BadRequest(request, err.Error())
	}

	// New definitions must reference a live catalog type; only stored
	// schemas referencing retired types degrade to text semantics.
	if !dynamicform.IsKnown(req.FieldTypeKey) {
		return response.Error(response.ErrUnknownFieldType)
	}
	if resp := requireSelectOptions(request, req.FieldTypeKey, req.FieldOptions); resp != nil {
		return resp
	}

	var count int64
	db.Model(&models.FieldDefinition{}).
		Where("owner_scope = ? AND owner_type_id = ? AND field_name = ?", req.OwnerScope, req.OwnerTypeID, req.FieldName).
		Count(&count)
	if count > 0 {
		return response.Error(response.ErrDuplicateFieldWithName(req.FieldName))
	}

	definition := models.FieldDefinition{
		OwnerScope:      req.OwnerScope,
		OwnerTypeID:     req.OwnerTypeID,
		FieldName:       req.FieldName,
		DisplayName:     req.DisplayName,
		Description:     req.Description,
		FieldTypeKey:    req.FieldTypeKey,
		FieldOptions:    encodeJSONMap(req.FieldOptions),
		ValidationRules: encodeJSONMap(req.ValidationRules),
		IsRequired:      req.IsRequired,
		IsSearchable:    req.IsSearchable,
		IsPublic:        req.IsPublic,
		IsForUnits:      req.IsForUnits,
		SortOrder:       req.SortOrder,
		Category:        req.Category,
	}
	if definition.Category == "" {
		definition.Category = models.DefaultFieldCategory
	}
	definition.SanitizeValidationRules()

	if err := db.Create(&definition).Error; err != nil {
		return response.Error(response.ErrDatabaseError)
	}

	InvalidateSchema(definition.OwnerScope, definition.OwnerTypeID)
	models.BroadcastWebhook(models.WebhookEventFieldDefinitionCreated, map[string]any{
		"field_id":      definition.ID,
		"field_name":    definition.FieldName,
		"owner_scope":   definition.OwnerScope,
		"owner_type_id": definition.OwnerTypeID,
	})

	return response.Created(definition)
}

// UpdateDefinition updates an existing field definition. Changing the type
// key never re-validates values persisted under the previous type.
func (c Controller) UpdateDefinition(request *evo.Request) any {
	var definition models.FieldDefinition
	err := db.First(&definition, request.Param("id").String()).Error
	if resp := response.HandleDBError(err, request, "Field definition not found", "UpdateDefinition"); resp != nil {
		return resp
	}

	var req DefinitionRequest
	if err := request.BodyParser(&req); err != nil {
		return response.BadRequest(request, "Invalid request body")
	}

	if req.FieldTypeKey != "" && !dynamicform.IsKnown(req.FieldTypeKey) {
		return response.Error(response.ErrUnknownFieldType)
	}
	if req.FieldTypeKey != "" {
		definition.FieldTypeKey = req.FieldTypeKey
	}
	if req.DisplayName != "" {
		definition.DisplayName = req.DisplayName
	}
	if req.Description != nil {
		definition.Description = req.Description
	}
	if req.FieldOptions != nil {
		if resp := requireSelectOptions(request, definition.FieldTypeKey, req.FieldOptions); resp != nil {
			return resp
		}
		definition.FieldOptions = encodeJSONMap(req.FieldOptions)
	}
	if req.ValidationRules != nil {
		definition.ValidationRules = encodeJSONMap(req.ValidationRules)
	}
	if req.Category != "" {
		definition.Category = req.Category
	}
	definition.IsRequired = req.IsRequired
	definition.IsSearchable = req.IsSearchable
	definition.IsPublic = req.IsPublic
	definition.IsForUnits = req.IsForUnits
	definition.SortOrder = req.SortOrder
	definition.SanitizeValidationRules()

	if err := db.Save(&definition).Error; err != nil {
		return response.Error(response.ErrDatabaseError)
	}

	InvalidateSchema(definition.OwnerScope, definition.OwnerTypeID)
	models.BroadcastWebhook(models.WebhookEventFieldDefinitionUpdated, map[string]any{
		"field_id":      definition.ID,
		"field_name":    definition.FieldName,
		"owner_scope":   definition.OwnerScope,
		"owner_type_id": definition.OwnerTypeID,
	})

	return response.OK(definition)
}

// DeleteDefinition removes a definition together with its stored values.
func (c Controller) DeleteDefinition(request *evo.Request) any {
	var definition models.FieldDefinition
	err := db.First(&definition, request.Param("id").String()).Error
	if resp := response.HandleDBError(err, request, "Field definition not found", "DeleteDefinition"); resp != nil {
		return resp
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("field_id = ?", definition.ID).Delete(&models.FieldValue{}).Error; err != nil {
			return err
		}
		return tx.Delete(&definition).Error
	})
	if err != nil {
		return response.Error(response.ErrDatabaseError)
	}

	InvalidateSchema(definition.OwnerScope, definition.OwnerTypeID)
	models.BroadcastWebhook(models.WebhookEventFieldDefinitionDeleted, map[string]any{
		"field_id":      definition.ID,
		"field_name":    definition.FieldName,
		"owner_scope":   definition.OwnerScope,
		"owner_type_id": definition.OwnerTypeID,
	})

	return response.Message("Field definition deleted")
}

// GetSchema returns the grouping presentation contract of one owner type.
func (c Controller) GetSchema(request *evo.Request) any {
	scope := request.Query("owner_scope").String()
	if scope != models.OwnerScopePropertyType && scope != models.OwnerScopeUnitType {
		return response.BadRequest(request, "owner_scope must be property_type or unit_type")
	}
	ownerTypeID := uint(request.Query("owner_type_id").Int())
	if ownerTypeID == 0 {
		return response.BadRequest(request, "owner_type_id is required")
	}

	view, err := SchemaFor(scope, ownerTypeID)
	if err != nil {
		return response.Error(response.ErrFetchDefinitions())
	}
	return response.OK(view)
}

// ListOrphanValues reports values whose definition no longer exists.
func (c Controller) ListOrphanValues(request *evo.Request) any {
	orphans, err := models.ListOrphanFieldValues(int(request.Query("limit").Int()))
	if err != nil {
		return response.Error(response.ErrDatabaseError)
	}
	return response.List(orphans, len(orphans))
}

// PurgeOrphanValues deletes all orphaned values immediately instead of
// waiting for the scheduled cleanup job.
func (c Controller) PurgeOrphanValues(request *evo.Request) any {
	removed, err := models.PurgeOrphanFieldValues()
	if err != nil {
		return response.Error(response.ErrDatabaseError)
	}
	return response.OK(map[string]any{"removed": removed})
}

// requireSelectOptions rejects select/multiselect definitions without a
// usable options list.
func requireSelectOptions(request *evo.Request, typeKey string, options map[string]any) any {
	if typeKey != dynamicform.TypeSelect && typeKey != dynamicform.TypeMultiselect {
		return nil
	}
	raw, ok := options["options"]
	if !ok {
		return response.BadRequest(request, "Select fields require field_options.options")
	}
	items, ok := raw.([]any)
	if !ok || len(items) == 0 {
		return response.BadRequest(request, "field_options.options must be a non-empty list")
	}
	return nil
}

func encodeJSONMap(value map[string]any) datatypes.JSON {
	if value == nil {
		return datatypes.JSON("{}")
	}
	encoded, err := json.Marshal(value)
	if err != nil {
		return datatypes.JSON("{}")
	}
	return datatypes.JSON(encoded)
}
