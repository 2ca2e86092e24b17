package units

import (
	"github.com/getevo/evo/v2"
	"github.com/getevo/evo/v2/lib/db"
	"github.com/getevo/pagination"
	validator "github.com/go-playground/validator/v10"
	"github.com/iesreza/stayhub-backend/apps/models"
	"github.com/iesreza/stayhub-backend/lib/dynamicform"
	"github.com/iesreza/stayhub-backend/lib/response"
	"gorm.io/gorm"
)

type Controller struct{}

var validate = validator.New()

// ListUnits returns units with filters and pagination.
func (c Controller) ListUnits(request *evo.Request) any {
	query := db.Model(&models.Unit{}).Preload("UnitType")

	if unitType := request.Query("unit_type_id").String(); unitType != "" {
		query = query.Where("unit_type_id = ?", unitType)
	}
	if status := request.Query("status").String(); status != "" {
		query = query.Where("status = ?", status)
	}
	if search := request.Query("search").String(); search != "" {
		like := "%" + search + "%"
		query = query.Where("name LIKE ? OR code LIKE ?", like, like)
	}

	var units []models.Unit
	p, err := pagination.New(query.Order("code"), request, &units, pagination.Options{MaxSize: 100})
	if err != nil {
		return response.Error(response.ErrDatabaseError)
	}

	return response.OKWithMeta(units, &response.Meta{
		Page:       p.CurrentPage,
		Limit:      p.Size,
		Total:      int64(p.Records),
		TotalPages: p.Pages,
	})
}

// UnitRequest is the payload for creating or updating a unit.
type UnitRequest struct {
	UnitTypeID uint   `json:"unit_type_id" validate:"required"`
	Code       string `json:"code" validate:"required,max=50"`
	Name       string `json:"name" validate:"required,max=255"`
	Status     string `json:"status" validate:"omitempty,oneof=available occupied maintenance"`
}

// CreateUnit creates a new unit under an existing unit type.
func (c Controller) CreateUnit(request *evo.Request) any {
	var req UnitRequest
	if err := request.BodyParser(&req); err != nil {
		return response.BadRequest(request, "Invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return response.BadRequest(request, err.Error())
	}

	var unitType models.UnitType
	err := db.First(&unitType, req.UnitTypeID).Error
	if resp := response.HandleDBError(err, request, "Unit type not found", "CreateUnit"); resp != nil {
		return resp
	}

	unit := models.Unit{
		UnitTypeID: req.UnitTypeID,
		Code:       req.Code,
		Name:       req.Name,
		Status:     req.Status,
	}
	if unit.Status == "" {
		unit.Status = models.UnitStatusAvailable
	}
	if err := db.Create(&unit).Error; err != nil {
		return response.Error(response.ErrDatabaseError)
	}

	models.BroadcastWebhook(models.WebhookEventUnitCreated, map[string]any{
		"unit_id":      unit.ID,
		"code":         unit.Code,
		"unit_type_id": unit.UnitTypeID,
	})

	return response.Created(unit)
}

// GetUnit returns a single unit with its type and stored values.
func (c Controller) GetUnit(request *evo.Request) any {
	var unit models.Unit
	err := db.Preload("UnitType").Preload("Values").First(&unit, request.Param("id").String()).Error
	if resp := response.HandleDBError(err, request, "Unit not found", "GetUnit"); resp != nil {
		return resp
	}
	return response.OK(unit)
}

// UpdateUnit updates unit metadata. The unit type is fixed at creation since
// stored field values are only meaningful against its schema.
func (c Controller) UpdateUnit(request *evo.Request) any {
	var unit models.Unit
	err := db.First(&unit, request.Param("id").String()).Error
	if resp := response.HandleDBError(err, request, "Unit not found", "UpdateUnit"); resp != nil {
		return resp
	}

	var req UnitRequest
	if err := request.BodyParser(&req); err != nil {
		return response.BadRequest(request, "Invalid request body")
	}

	if req.Code != "" {
		unit.Code = req.Code
	}
	if req.Name != "" {
		unit.Name = req.Name
	}
	if req.Status != "" {
		switch req.Status {
		case models.UnitStatusAvailable, models.UnitStatusOccupied, models.UnitStatusMaintenance:
			unit.Status = req.Status
		default:
			return response.BadRequest(request, "Invalid unit status")
		}
	}

	if err := db.Save(&unit).Error; err != nil {
		return response.Error(response.ErrDatabaseError)
	}
	return response.OK(unit)
}

// DeleteUnit removes a unit together with its stored field values.
func (c Controller) DeleteUnit(request *evo.Request) any {
	var unit models.Unit
	err := db.First(&unit, request.Param("id").String()).Error
	if resp := response.HandleDBError(err, request, "Unit not found", "DeleteUnit"); resp != nil {
		return resp
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("unit_id = ?", unit.ID).Delete(&models.FieldValue{}).Error; err != nil {
			return err
		}
		return tx.Delete(&unit).Error
	})
	if err != nil {
		return response.Error(response.ErrDatabaseError)
	}
	return response.Message("Unit deleted")
}

// GetForm returns the unit's form state: schema layout plus the current
// value of every applicable field, defaults seeded for unset fields.
func (c Controller) GetForm(request *evo.Request) any {
	var unit models.Unit
	err := db.Preload("UnitType").First(&unit, request.Param("id").String()).Error
	if resp := response.HandleDBError(err, request, "Unit not found", "GetForm"); resp != nil {
		return resp
	}

	defs, view, err := loadFormDefinitions(&unit)
	if err != nil {
		return response.Error(response.ErrFetchDefinitions())
	}

	stored, err := models.ListUnitFieldValues(unit.ID)
	if err != nil {
		return response.Error(response.ErrDatabaseError)
	}

	values := initializeValues(engineDefinitions(defs), stored)
	return response.OK(UnitFormPayload{Unit: unit, Schema: view, Values: values})
}

// CommitValuesRequest carries the submitted form changes.
type CommitValuesRequest struct {
	Updates []ValueInput `json:"updates" validate:"required,min=1"`
}

// CommitValues applies submitted changes through the form engine, validates
// the resulting state and persists it. Validation failures return the full
// failure list and persist nothing.
func (c Controller) CommitValues(request *evo.Request) any {
	var unit models.Unit
	err := db.Preload("UnitType").First(&unit, request.Param("id").String()).Error
	if resp := response.HandleDBError(err, request, "Unit not found", "CommitValues"); resp != nil {
		return resp
	}

	var req CommitValuesRequest
	if err := request.BodyParser(&req); err != nil {
		return response.BadRequest(request, "Invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return response.BadRequest(request, err.Error())
	}

	defs, _, err := loadFormDefinitions(&unit)
	if err != nil {
		return response.Error(response.ErrFetchDefinitions())
	}

	stored, err := models.ListUnitFieldValues(unit.ID)
	if err != nil {
		return response.Error(response.ErrDatabaseError)
	}

	engineDefs := engineDefinitions(defs)
	values := initializeValues(engineDefs, stored)

	values, rejected := applyInputs(engineDefs, values, req.Updates)
	if rejected != nil {
		return response.Error(response.ErrInvalidFieldID)
	}

	if failures := dynamicform.Validate(engineDefs, values); len(failures) > 0 {
		return response.ValidationFailed(failures)
	}

	committed := dynamicform.Commit(values)
	err = db.Transaction(func(tx *gorm.DB) error {
		for _, def := range engineDefs {
			raw := models.EncodeFieldValue(committed[def.FieldID])
			if err := models.UpsertFieldValueTx(tx, unit.ID, def.FieldID, raw); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return response.Error(response.ErrPersistValues())
	}

	models.BroadcastWebhook(models.WebhookEventUnitValuesCommitted, map[string]any{
		"unit_id":      unit.ID,
		"unit_type_id": unit.UnitTypeID,
		"fields":       len(engineDefs),
	})

	return response.OK(committed)
}

// GetValue returns the stored value row for one field of a unit. Fields
// without a stored row are on their catalog default; those return 404 here
// and show up with the default in the form payload instead.
func (c Controller) GetValue(request *evo.Request) any {
	var unit models.Unit
	err := db.First(&unit, request.Param("id").String()).Error
	if resp := response.HandleDBError(err, request, "Unit not found", "GetValue"); resp != nil {
		return resp
	}

	fieldID := request.Param("field").Int()
	if fieldID <= 0 {
		return response.Error(response.ErrInvalidFieldID)
	}

	value, err := models.GetFieldValue(unit.ID, uint(fieldID))
	if resp := response.HandleDBError(err, request, "No stored value for this field", "GetValue"); resp != nil {
		return resp
	}
	return response.OK(value)
}

// ClearValue removes the stored value for one field. The field reverts to
// its catalog default on the next form load.
func (c Controller) ClearValue(request *evo.Request) any {
	var unit models.Unit
	err := db.First(&unit, request.Param("id").String()).Error
	if resp := response.HandleDBError(err, request, "Unit not found", "ClearValue"); resp != nil {
		return resp
	}

	fieldID := request.Param("field").Int()
	if fieldID <= 0 {
		return response.Error(response.ErrInvalidFieldID)
	}

	removed, err := models.DeleteFieldValue(unit.ID, uint(fieldID))
	if err != nil {
		return response.Error(response.ErrDatabaseError)
	}
	if removed == 0 {
		return response.NotFound(request, "No stored value for this field")
	}

	return response.Message("Value cleared")
}
