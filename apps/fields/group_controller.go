package fields

import (
	"github.com/getevo/evo/v2"
	"github.com/getevo/evo/v2/lib/db"
	"github.com/iesreza/stayhub-backend/apps/models"
	"github.com/iesreza/stayhub-backend/lib/response"
	"gorm.io/gorm"
)

type GroupController struct{}

// ListGroups returns the groups of one owner type in presentation order.
func (c GroupController) ListGroups(request *evo.Request) any {
	query := db.Model(&models.FieldGroup{})

	if scope := request.Query("owner_scope").String(); scope != "" {
		query = query.Where("owner_scope = ?", scope)
	}
	if ownerID := request.Query("owner_type_id").String(); ownerID != "" {
		query = query.Where("owner_type_id = ?", ownerID)
	}

	var groups []models.FieldGroup
	err := query.Order("sort_order, id").Find(&groups).Error
	if err != nil {
		return response.Error(response.ErrFetchGroups())
	}
	return response.List(groups, len(groups))
}

// GetGroup returns a single group with its member fields.
func (c GroupController) GetGroup(request *evo.Request) any {
	var group models.FieldGroup
	err := db.Preload("Fields").First(&group, request.Param("id").String()).Error
	if resp := response.HandleDBError(err, request, "Field group not found", "GetGroup"); resp != nil {
		return resp
	}
	return response.OK(group)
}

// GroupRequest is the payload for creating or updating a group.
type GroupRequest struct {
	OwnerScope          string  `json:"owner_scope" validate:"required,oneof=property_type unit_type"`
	OwnerTypeID         uint    `json:"owner_type_id" validate:"required"`
	GroupName           string  `json:"group_name" validate:"required,max=100"`
	DisplayName         string  `json:"display_name" validate:"required,max=255"`
	Description         *string `json:"description"`
	SortOrder           int     `json:"sort_order"`
	IsCollapsible       bool    `json:"is_collapsible"`
	IsExpandedByDefault bool    `json:"is_expanded_by_default"`
}

// CreateGroup creates a new field group.
func (c GroupController) CreateGroup(request *evo.Request) any {
	var req GroupRequest
	if err := request.BodyParser(&req); err != nil {
		return response.BadRequest(request, "Invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return response.BadRequest(request, err.Error())
	}

	var count int64
	db.Model(&models.FieldGroup{}).
		Where("owner_scope = ? AND owner_type_id = ? AND group_name = ?", req.OwnerScope, req.OwnerTypeID, req.GroupName).
		Count(&count)
	if count > 0 {
		return response.Conflict(request, "A group with this name already exists for the owner type")
	}

	group := models.FieldGroup{
		OwnerScope:          req.OwnerScope,
		OwnerTypeID:         req.OwnerTypeID,
		GroupName:           req.GroupName,
		DisplayName:         req.DisplayName,
		Description:         req.Description,
		SortOrder:           req.SortOrder,
		IsCollapsible:       req.IsCollapsible,
		IsExpandedByDefault: req.IsExpandedByDefault,
	}
	if err := db.Create(&group).Error; err != nil {
		return response.Error(response.ErrDatabaseError)
	}

	InvalidateSchema(group.OwnerScope, group.OwnerTypeID)
	models.BroadcastWebhook(models.WebhookEventFieldGroupCreated, map[string]any{
		"group_id":      group.ID,
		"group_name":    group.GroupName,
		"owner_scope":   group.OwnerScope,
		"owner_type_id": group.OwnerTypeID,
	})

	return response.Created(group)
}

// UpdateGroup updates group metadata. Owner scope and owner type are fixed
// at creation.
func (c GroupController) UpdateGroup(request *evo.Request) any {
	var group models.FieldGroup
	err := db.First(&group, request.Param("id").String()).Error
	if resp := response.HandleDBError(err, request, "Field group not found", "UpdateGroup"); resp != nil {
		return resp
	}

	var req GroupRequest
	if err := request.BodyParser(&req); err != nil {
		return response.BadRequest(request, "Invalid request body")
	}

	if req.GroupName != "" && req.GroupName != group.GroupName {
		var count int64
		db.Model(&models.FieldGroup{}).
			Where("owner_scope = ? AND owner_type_id = ? AND group_name = ? AND id != ?", group.OwnerScope, group.OwnerTypeID, req.GroupName, group.ID).
			Count(&count)
		if count > 0 {
			return response.Conflict(request, "A group with this name already exists for the owner type")
		}
		group.GroupName = req.GroupName
	}
	if req.DisplayName != "" {
		group.DisplayName = req.DisplayName
	}
	if req.Description != nil {
		group.Description = req.Description
	}
	group.SortOrder = req.SortOrder
	group.IsCollapsible = req.IsCollapsible
	group.IsExpandedByDefault = req.IsExpandedByDefault

	if err := db.Save(&group).Error; err != nil {
		return response.Error(response.ErrDatabaseError)
	}

	InvalidateSchema(group.OwnerScope, group.OwnerTypeID)
	models.BroadcastWebhook(models.WebhookEventFieldGroupUpdated, map[string]any{
		"group_id":      group.ID,
		"group_name":    group.GroupName,
		"owner_scope":   group.OwnerScope,
		"owner_type_id": group.OwnerTypeID,
	})

	return response.OK(group)
}

// DeleteGroup removes a group. Member definitions survive and fall back to
// the ungrouped sections of the schema view.
func (c GroupController) DeleteGroup(request *evo.Request) any {
	var group models.FieldGroup
	err := db.First(&group, request.Param("id").String()).Error
	if resp := response.HandleDBError(err, request, "Field group not found", "DeleteGroup"); resp != nil {
		return resp
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.FieldDefinition{}).
			Where("group_id = ?", group.ID).
			Update("group_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&group).Error
	})
	if err != nil {
		return response.Error(response.ErrDatabaseError)
	}

	InvalidateSchema(group.OwnerScope, group.OwnerTypeID)
	models.BroadcastWebhook(models.WebhookEventFieldGroupDeleted, map[string]any{
		"group_id":      group.ID,
		"group_name":    group.GroupName,
		"owner_scope":   group.OwnerScope,
		"owner_type_id": group.OwnerTypeID,
	})

	return response.Message("Field group deleted")
}

// AssignField places a definition into a group. A definition belongs to at
// most one group, so assigning replaces any previous membership.
func (c GroupController) AssignField(request *evo.Request) any {
	var group models.FieldGroup
	err := db.First(&group, request.Param("id").String()).Error
	if resp := response.HandleDBError(err, request, "Field group not found", "AssignField"); resp != nil {
		return resp
	}

	var definition models.FieldDefinition
	err = db.First(&definition, request.Param("field").String()).Error
	if resp := response.HandleDBError(err, request, "Field definition not found", "AssignField"); resp != nil {
		return resp
	}

	if definition.OwnerScope != group.OwnerScope || definition.OwnerTypeID != group.OwnerTypeID {
		return response.BadRequest(request, "Field and group belong to different owner types")
	}

	// Optional position within the group
	var body struct {
		SortOrder *int `json:"sort_order"`
	}
	request.BodyParser(&body)

	definition.GroupID = &group.ID
	if body.SortOrder != nil {
		definition.SortOrder = *body.SortOrder
	}
	if err := db.Save(&definition).Error; err != nil {
		return response.Error(response.ErrDatabaseError)
	}

	InvalidateSchema(group.OwnerScope, group.OwnerTypeID)
	return response.OK(definition)
}

// DetachField removes a definition from its group, returning it to the
// ungrouped sections.
func (c GroupController) DetachField(request *evo.Request) any {
	var definition models.FieldDefinition
	err := db.First(&definition, request.Param("field").String()).Error
	if resp := response.HandleDBError(err, request, "Field definition not found", "DetachField"); resp != nil {
		return resp
	}

	if definition.GroupID != nil {
		definition.GroupID = nil
		if err := db.Model(&definition).Update("group_id", nil).Error; err != nil {
			return response.Error(response.ErrDatabaseError)
		}
	}

	InvalidateSchema(definition.OwnerScope, definition.OwnerTypeID)
	return response.OK(definition)
}

// ReorderRequest carries the full desired group order for one owner type.
type ReorderRequest struct {
	OwnerScope  string `json:"owner_scope" validate:"required,oneof=property_type unit_type"`
	OwnerTypeID uint   `json:"owner_type_id" validate:"required"`
	GroupIDs    []uint `json:"group_ids" validate:"required,min=1"`
}

// ReorderGroups applies a new ordering in one transaction. Any ID that does
// not belong to the owner type rejects the whole request; partial reorders
// never happen.
func (c GroupController) ReorderGroups(request *evo.Request) any {
	var req ReorderRequest
	if err := request.BodyParser(&req); err != nil {
		return response.BadRequest(request, "Invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return response.BadRequest(request, err.Error())
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.FieldGroup{}).
			Where("owner_scope = ? AND owner_type_id = ? AND id IN ?", req.OwnerScope, req.OwnerTypeID, req.GroupIDs).
			Count(&count).Error; err != nil {
			return err
		}
		if count != int64(len(req.GroupIDs)) {
			return gorm.ErrRecordNotFound
		}

		for index, groupID := range req.GroupIDs {
			if err := tx.Model(&models.FieldGroup{}).
				Where("id = ?", groupID).
				Update("sort_order", index).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err == gorm.ErrRecordNotFound {
		return response.Error(response.ErrReorderConflict)
	}
	if err != nil {
		return response.Error(response.ErrDatabaseError)
	}

	InvalidateSchema(req.OwnerScope, req.OwnerTypeID)
	return response.Message("Group order updated")
}
