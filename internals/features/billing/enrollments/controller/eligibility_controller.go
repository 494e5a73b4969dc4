// internals/features/billing/enrollments/controller/eligibility_controller.go
package controller

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	dto "dojoku_backend/internals/features/billing/enrollments/dto"
	service "dojoku_backend/internals/features/billing/enrollments/service"
	smodel "dojoku_backend/internals/features/dojo/members/model"
	helper "dojoku_backend/internals/helpers"
	"dojoku_backend/internals/helpers/dates"
)

// EligibilityController menjawab "boleh latihan atau tidak" untuk
// gerbang check-in dan banner portal wali.
type EligibilityController struct {
	DB      *gorm.DB
	Service *service.EnrollmentService
}

func NewEligibilityController(db *gorm.DB) *EligibilityController {
	return &EligibilityController{DB: db, Service: service.NewEnrollmentService(db)}
}

func (h *EligibilityController) lookup(c *fiber.Ctx, dojoID, studentID uuid.UUID) (dto.EligibilityResponse, error) {
	enr, err := h.Service.FindForStudent(c.Context(), dojoID, studentID)
	if err != nil {
		return dto.EligibilityResponse{}, fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	status := service.Eligibility(enr, dates.Today())
	return dto.BuildEligibilityResponse(studentID, status, enr), nil
}

/* ======================= ADMIN ======================= */
// GET /api/a/enrollments/eligibility/:student_id
func (h *EligibilityController) GetForStudent(c *fiber.Ctx) error {
	dojoID, err := helper.GetDojoIDFromToken(c)
	if err != nil {
		return err
	}

	studentID, err := uuid.Parse(c.Params("student_id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "ID siswa tidak valid")
	}

	out, err := h.lookup(c, dojoID, studentID)
	if err != nil {
		return err
	}
	return helper.JsonOK(c, "OK", out)
}

/* ======================= USER (WALI) ======================= */
// GET /api/u/enrollments/eligibility/:student_id
// Wali hanya boleh melihat siswa dari keluarganya sendiri.
func (h *EligibilityController) GetMine(c *fiber.Ctx) error {
	dojoID, err := helper.GetDojoIDFromToken(c)
	if err != nil {
		return err
	}
	familyID, err := helper.GetFamilyIDFromToken(c)
	if err != nil {
		return err
	}

	studentID, err := uuid.Parse(c.Params("student_id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "ID siswa tidak valid")
	}

	var student smodel.StudentModel
	if err := h.DB.
		Where("student_id = ? AND student_dojo_id = ? AND student_family_id = ?", studentID, dojoID, familyID).
		First(&student).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Data tidak ditemukan")
		}
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	out, err := h.lookup(c, dojoID, studentID)
	if err != nil {
		return err
	}
	return helper.JsonOK(c, "OK", out)
}
