// internals/features/billing/automation/controller/automation_rule_controller.go
package controller

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/lib/pq"
	"gorm.io/gorm"

	dto "dojoku_backend/internals/features/billing/automation/dto"
	model "dojoku_backend/internals/features/billing/automation/model"
	service "dojoku_backend/internals/features/billing/automation/service"
	helper "dojoku_backend/internals/helpers"
)

type AutomationRuleController struct {
	DB *gorm.DB
}

func NewAutomationRuleController(db *gorm.DB) *AutomationRuleController {
	return &AutomationRuleController{DB: db}
}

/* ======================= TEMPLATE: CREATE ======================= */
// POST /api/a/automation/templates
func (h *AutomationRuleController) CreateTemplate(c *fiber.Ctx) error {
	dojoID, err := helper.GetDojoIDFromToken(c)
	if err != nil {
		return err
	}

	var req dto.CreateDiscountTemplateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := validator.New().Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	m := req.ToModel(dojoID)
	if err := h.DB.Create(m).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Gagal membuat template diskon")
	}

	return helper.JsonCreated(c, "Template diskon berhasil dibuat", dto.FromTemplateModel(*m))
}

/* ======================= TEMPLATE: LIST ======================= */
// GET /api/a/automation/templates
func (h *AutomationRuleController) ListTemplates(c *fiber.Ctx) error {
	dojoID, err := helper.GetDojoIDFromToken(c)
	if err != nil {
		return err
	}

	paging := helper.ResolvePaging(c, 20, 100)

	base := h.DB.Model(&model.DiscountTemplateModel{}).
		Where("discount_template_dojo_id = ?", dojoID)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	var rows []model.DiscountTemplateModel
	if err := base.
		Order("discount_template_created_at DESC").
		Limit(paging.PerPage).
		Offset(paging.Offset).
		Find(&rows).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	pg := helper.BuildPagination(total, paging.Page, paging.PerPage)
	return helper.JsonList(c, "OK", dto.FromTemplateModels(rows), &pg)
}

/* ======================= RULE: CREATE ======================= */
// POST /api/a/automation/rules
func (h *AutomationRuleController) CreateRule(c *fiber.Ctx) error {
	dojoID, err := helper.GetDojoIDFromToken(c)
	if err != nil {
		return err
	}

	var req dto.CreateAutomationRuleRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := validator.New().Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if !model.ValidEventType(req.AutomationRuleEventType) {
		return fiber.NewError(fiber.StatusBadRequest, "Tipe event tidak dikenal: "+req.AutomationRuleEventType)
	}
	// Tolak kondisi rusak sejak create, jangan tunggu batch gagal.
	if _, err := service.ParseConditions(req.AutomationRuleConditions); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	var tpl model.DiscountTemplateModel
	if err := h.DB.
		Where("discount_template_id = ? AND discount_template_dojo_id = ?", req.AutomationRuleTemplateID, dojoID).
		First(&tpl).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusBadRequest, "Template diskon tidak ditemukan")
		}
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	m := req.ToModel(dojoID)
	if err := h.DB.Create(m).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Gagal membuat aturan otomasi")
	}

	return helper.JsonCreated(c, "Aturan otomasi berhasil dibuat", dto.FromRuleModel(*m))
}

/* ======================= RULE: UPDATE ======================= */
// PATCH /api/a/automation/rules/:id
func (h *AutomationRuleController) UpdateRule(c *fiber.Ctx) error {
	dojoID, err := helper.GetDojoIDFromToken(c)
	if err != nil {
		return err
	}
	idStr := c.Params("id")
	if idStr == "" {
		return fiber.NewError(fiber.StatusBadRequest, "ID tidak boleh kosong")
	}

	var req dto.UpdateAutomationRuleRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := validator.New().Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	var curr model.AutomationRuleModel
	if err := h.DB.
		Where("automation_rule_id = ? AND automation_rule_dojo_id = ?", idStr, dojoID).
		First(&curr).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Data tidak ditemukan")
		}
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	patch := map[string]interface{}{}
	if req.AutomationRuleName != nil {
		patch["automation_rule_name"] = *req.AutomationRuleName
	}
	if len(req.AutomationRuleConditions) > 0 {
		if _, err := service.ParseConditions(req.AutomationRuleConditions); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		patch["automation_rule_conditions"] = req.AutomationRuleConditions
	}
	if req.AutomationRulePrograms != nil {
		patch["automation_rule_programs"] = pq.StringArray(req.AutomationRulePrograms)
	}
	if req.AutomationRuleMaxUsesPerStudent != nil {
		patch["automation_rule_max_uses_per_student"] = *req.AutomationRuleMaxUsesPerStudent
	}
	if req.AutomationRulePriority != nil {
		patch["automation_rule_priority"] = *req.AutomationRulePriority
	}
	if req.AutomationRuleIsActive != nil {
		patch["automation_rule_is_active"] = *req.AutomationRuleIsActive
	}
	if req.AutomationRuleValidFrom != nil {
		patch["automation_rule_valid_from"] = *req.AutomationRuleValidFrom
	}
	if req.AutomationRuleValidUntil != nil {
		patch["automation_rule_valid_until"] = *req.AutomationRuleValidUntil
	}
	if len(patch) == 0 {
		return helper.JsonOK(c, "Tidak ada perubahan", dto.FromRuleModel(curr))
	}

	if err := h.DB.Model(&model.AutomationRuleModel{}).
		Where("automation_rule_id = ? AND automation_rule_dojo_id = ?", idStr, dojoID).
		Updates(patch).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Gagal memperbarui aturan otomasi")
	}

	var updated model.AutomationRuleModel
	if err := h.DB.
		Where("automation_rule_id = ? AND automation_rule_dojo_id = ?", idStr, dojoID).
		First(&updated).Error; err != nil {
		return helper.JsonOK(c, "Aturan otomasi berhasil diperbarui", dto.FromRuleModel(curr))
	}

	return helper.JsonOK(c, "Aturan otomasi berhasil diperbarui", dto.FromRuleModel(updated))
}

/* ======================= RULE: LIST ======================= */
// GET /api/a/automation/rules?event_type=&active=
func (h *AutomationRuleController) ListRules(c *fiber.Ctx) error {
	dojoID, err := helper.GetDojoIDFromToken(c)
	if err != nil {
		return err
	}

	paging := helper.ResolvePaging(c, 20, 100)

	base := h.DB.Model(&model.AutomationRuleModel{}).
		Where("automation_rule_dojo_id = ?", dojoID)

	if et := c.Query("event_type"); et != "" {
		base = base.Where("automation_rule_event_type = ?", et)
	}
	if act := c.Query("active"); act != "" {
		base = base.Where("automation_rule_is_active = ?", act == "true" || act == "1")
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	var rows []model.AutomationRuleModel
	if err := base.
		Order("automation_rule_priority DESC, automation_rule_created_at ASC").
		Limit(paging.PerPage).
		Offset(paging.Offset).
		Find(&rows).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	pg := helper.BuildPagination(total, paging.Page, paging.PerPage)
	return helper.JsonList(c, "OK", dto.FromRuleModels(rows), &pg)
}

/* ======================= ASSIGNMENT: LIST ======================= */
// GET /api/a/automation/assignments?rule_id=&student_id=
func (h *AutomationRuleController) ListAssignments(c *fiber.Ctx) error {
	dojoID, err := helper.GetDojoIDFromToken(c)
	if err != nil {
		return err
	}

	paging := helper.ResolvePaging(c, 20, 100)

	base := h.DB.Model(&model.DiscountAssignmentModel{}).
		Where("discount_assignment_dojo_id = ?", dojoID)

	if rid := c.Query("rule_id"); rid != "" {
		base = base.Where("discount_assignment_rule_id = ?", rid)
	}
	if sid := c.Query("student_id"); sid != "" {
		base = base.Where("discount_assignment_student_id = ?", sid)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	type assignmentRow struct {
		model.DiscountAssignmentModel
		DiscountCodeCode *string `gorm:"column:discount_code_code"`
	}

	var rows []assignmentRow
	if err := base.
		Select("discount_assignments.*, discount_codes.discount_code_code").
		Joins("LEFT JOIN discount_codes ON discount_code_id = discount_assignment_code_id").
		Order("discount_assignment_created_at DESC").
		Limit(paging.PerPage).
		Offset(paging.Offset).
		Find(&rows).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	out := make([]dto.DiscountAssignmentResponse, 0, len(rows))
	for _, r := range rows {
		resp := dto.FromAssignmentModel(r.DiscountAssignmentModel)
		resp.DiscountCodeCode = r.DiscountCodeCode
		out = append(out, resp)
	}

	pg := helper.BuildPagination(total, paging.Page, paging.PerPage)
	return helper.JsonList(c, "OK", out, &pg)
}
