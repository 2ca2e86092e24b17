package properties

import (
	"strings"

	"github.com/getevo/evo/v2"
	"github.com/getevo/evo/v2/lib/db"
	"github.com/getevo/pagination"
	validator "github.com/go-playground/validator/v10"
	"github.com/iesreza/stayhub-backend/apps/fields"
	"github.com/iesreza/stayhub-backend/apps/models"
	"github.com/iesreza/stayhub-backend/lib/response"
	"gorm.io/gorm"
)

type Controller struct{}

var validate = validator.New()

// ListPropertyTypes returns property types with their unit types.
func (c Controller) ListPropertyTypes(request *evo.Request) any {
	query := db.Model(&models.PropertyType{}).Preload("UnitTypes")

	if enabled := request.Query("enabled").String(); enabled != "" {
		query = query.Where("enabled = ?", enabled == "true")
	}
	if search := request.Query("search").String(); search != "" {
		like := "%" + search + "%"
		query = query.Where("name LIKE ? OR display_name LIKE ?", like, like)
	}

	var types []models.PropertyType
	p, err := pagination.New(query.Order("name"), request, &types, pagination.Options{MaxSize: 100})
	if err != nil {
		return response.Error(response.ErrDatabaseError)
	}

	return response.OKWithMeta(types, &response.Meta{
		Page:       p.CurrentPage,
		Limit:      p.Size,
		Total:      int64(p.Records),
		TotalPages: p.Pages,
	})
}

// PropertyTypeRequest is the payload for creating or updating a property type.
type PropertyTypeRequest struct {
	Name        string  `json:"name" validate:"required,max=100"`
	DisplayName string  `json:"display_name" validate:"required,max=255"`
	Description *string `json:"description"`
	Icon        *string `json:"icon"`
	Enabled     *bool   `json:"enabled"`
}

// CreatePropertyType creates a new property type.
func (c Controller) CreatePropertyType(request *evo.Request) any {
	var req PropertyTypeRequest
	if err := request.BodyParser(&req); err != nil {
		return response.BadRequest(request, "Invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return response.BadRequest(request, err.Error())
	}

	name := strings.ToLower(strings.TrimSpace(req.Name))
	var count int64
	db.Model(&models.PropertyType{}).Where("name = ?", name).Count(&count)
	if count > 0 {
		return response.Conflict(request, "A property type with this name already exists")
	}

	propertyType := models.PropertyType{
		Name:        name,
		DisplayName: req.DisplayName,
		Description: req.Description,
		Icon:        req.Icon,
		Enabled:     true,
	}
	if req.Enabled != nil {
		propertyType.Enabled = *req.Enabled
	}
	if err := db.Create(&propertyType).Error; err != nil {
		return response.Error(response.ErrDatabaseError)
	}
	return response.Created(propertyType)
}

// GetPropertyType returns a property type with its unit types.
func (c Controller) GetPropertyType(request *evo.Request) any {
	var propertyType models.PropertyType
	err := db.Preload("UnitTypes").First(&propertyType, request.Param("id").String()).Error
	if resp := response.HandleDBError(err, request, "Property type not found", "GetPropertyType"); resp != nil {
		return resp
	}
	return response.OK(propertyType)
}

// UpdatePropertyType updates property type metadata. The lowercase name is
// immutable once referenced by field definitions.
func (c Controller) UpdatePropertyType(request *evo.Request) any {
	var propertyType models.PropertyType
	err := db.First(&propertyType, request.Param("id").String()).Error
	if resp := response.HandleDBError(err, request, "Property type not found", "UpdatePropertyType"); resp != nil {
		return resp
	}

	var req PropertyTypeRequest
	if err := request.BodyParser(&req); err != nil {
		return response.BadRequest(request, "Invalid request body")
	}

	if req.DisplayName != "" {
		propertyType.DisplayName = req.DisplayName
	}
	if req.Description != nil {
		propertyType.Description = req.Description
	}
	if req.Icon != nil {
		propertyType.Icon = req.Icon
	}
	if req.Enabled != nil {
		propertyType.Enabled = *req.Enabled
	}

	if err := db.Save(&propertyType).Error; err != nil {
		return response.Error(response.ErrDatabaseError)
	}
	return response.OK(propertyType)
}

// DeletePropertyType removes a property type and everything scoped to it:
// unit types, units, field definitions, groups and stored values.
func (c Controller) DeletePropertyType(request *evo.Request) any {
	var propertyType models.PropertyType
	err := db.Preload("UnitTypes").First(&propertyType, request.Param("id").String()).Error
	if resp := response.HandleDBError(err, request, "Property type not found", "DeletePropertyType"); resp != nil {
		return resp
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		for _, unitType := range propertyType.UnitTypes {
			if err := deleteUnitTypeTx(tx, &unitType); err != nil {
				return err
			}
		}
		if err := deleteOwnerSchemaTx(tx, models.OwnerScopePropertyType, propertyType.ID); err != nil {
			return err
		}
		return tx.Delete(&propertyType).Error
	})
	if err != nil {
		return response.Error(response.ErrDatabaseError)
	}

	fields.InvalidateSchema(models.OwnerScopePropertyType, propertyType.ID)
	for _, unitType := range propertyType.UnitTypes {
		fields.InvalidateSchema(models.OwnerScopeUnitType, unitType.ID)
	}
	return response.Message("Property type deleted")
}

// ListUnitTypes returns the unit types of one property type.
func (c Controller) ListUnitTypes(request *evo.Request) any {
	query := db.Model(&models.UnitType{})
	if propertyType := request.Query("property_type_id").String(); propertyType != "" {
		query = query.Where("property_type_id = ?", propertyType)
	}

	var types []models.UnitType
	err := query.Order("name").Find(&types).Error
	if err != nil {
		return response.Error(response.ErrDatabaseError)
	}
	return response.List(types, len(types))
}

// UnitTypeRequest is the payload for creating or updating a unit type.
type UnitTypeRequest struct {
	PropertyTypeID uint   `json:"property_type_id" validate:"required"`
	Name           string `json:"name" validate:"required,max=100"`
	DisplayName    string `json:"display_name" validate:"required,max=255"`
	MaxOccupancy   int    `json:"max_occupancy" validate:"omitempty,min=1"`
}

// CreateUnitType creates a new unit type under an existing property type.
func (c Controller) CreateUnitType(request *evo.Request) any {
	var req UnitTypeRequest
	if err := request.BodyParser(&req); err != nil {
		return response.BadRequest(request, "Invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return response.BadRequest(request, err.Error())
	}

	var propertyType models.PropertyType
	err := db.First(&propertyType, req.PropertyTypeID).Error
	if resp := response.HandleDBError(err, request, "Property type not found", "CreateUnitType"); resp != nil {
		return resp
	}

	unitType := models.UnitType{
		PropertyTypeID: req.PropertyTypeID,
		Name:           strings.ToLower(strings.TrimSpace(req.Name)),
		DisplayName:    req.DisplayName,
		MaxOccupancy:   req.MaxOccupancy,
	}
	if unitType.MaxOccupancy == 0 {
		unitType.MaxOccupancy = 2
	}
	if err := db.Create(&unitType).Error; err != nil {
		return response.Error(response.ErrDatabaseError)
	}
	return response.Created(unitType)
}

// UpdateUnitType updates unit type metadata.
func (c Controller) UpdateUnitType(request *evo.Request) any {
	var unitType models.UnitType
	err := db.First(&unitType, request.Param("id").String()).Error
	if resp := response.HandleDBError(err, request, "Unit type not found", "UpdateUnitType"); resp != nil {
		return resp
	}

	var req UnitTypeRequest
	if err := request.BodyParser(&req); err != nil {
		return response.BadRequest(request, "Invalid request body")
	}

	if req.DisplayName != "" {
		unitType.DisplayName = req.DisplayName
	}
	if req.MaxOccupancy > 0 {
		unitType.MaxOccupancy = req.MaxOccupancy
	}

	if err := db.Save(&unitType).Error; err != nil {
		return response.Error(response.ErrDatabaseError)
	}
	return response.OK(unitType)
}

// DeleteUnitType removes a unit type with its units, definitions, groups and
// values.
func (c Controller) DeleteUnitType(request *evo.Request) any {
	var unitType models.UnitType
	err := db.First(&unitType, request.Param("id").String()).Error
	if resp := response.HandleDBError(err, request, "Unit type not found", "DeleteUnitType"); resp != nil {
		return resp
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		return deleteUnitTypeTx(tx, &unitType)
	})
	if err != nil {
		return response.Error(response.ErrDatabaseError)
	}

	fields.InvalidateSchema(models.OwnerScopeUnitType, unitType.ID)
	return response.Message("Unit type deleted")
}

// deleteUnitTypeTx removes a unit type and everything hanging off it inside
// an existing transaction.
func deleteUnitTypeTx(tx *gorm.DB, unitType *models.UnitType) error {
	var unitIDs []uint
	if err := tx.Model(&models.Unit{}).Where("unit_type_id = ?", unitType.ID).Pluck("id", &unitIDs).Error; err != nil {
		return err
	}
	if len(unitIDs) > 0 {
		if err := tx.Where("unit_id IN ?", unitIDs).Delete(&models.FieldValue{}).Error; err != nil {
			return err
		}
		if err := tx.Where("unit_type_id = ?", unitType.ID).Delete(&models.Unit{}).Error; err != nil {
			return err
		}
	}
	if err := deleteOwnerSchemaTx(tx, models.OwnerScopeUnitType, unitType.ID); err != nil {
		return err
	}
	return tx.Delete(unitType).Error
}

// deleteOwnerSchemaTx removes the field definitions, groups and remaining
// values scoped to one owner type.
func deleteOwnerSchemaTx(tx *gorm.DB, ownerScope string, ownerTypeID uint) error {
	var fieldIDs []uint
	err := tx.Model(&models.FieldDefinition{}).
		Where("owner_scope = ? AND owner_type_id = ?", ownerScope, ownerTypeID).
		Pluck("id", &fieldIDs).Error
	if err != nil {
		return err
	}
	if len(fieldIDs) > 0 {
		if err := tx.Where("field_id IN ?", fieldIDs).Delete(&models.FieldValue{}).Error; err != nil {
			return err
		}
		if err := tx.Where("id IN ?", fieldIDs).Delete(&models.FieldDefinition{}).Error; err != nil {
			return err
		}
	}
	return tx.Where("owner_scope = ? AND owner_type_id = ?", ownerScope, ownerTypeID).
		Delete(&models.FieldGroup{}).Error
}
