// internals/features/billing/automation/dto/automation_dto.go
package dto

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	m "dojoku_backend/internals/features/billing/automation/model"
	"dojoku_backend/internals/helpers/money"
)

/* =============== REQUESTS: TEMPLATE =============== */

type CreateDiscountTemplateRequest struct {
	DiscountTemplateName string `json:"discount_template_name" validate:"required,min=3"`

	DiscountTemplateKind  string `json:"discount_template_kind"  validate:"required,oneof=fixed_amount percentage"`
	DiscountTemplateValue int64  `json:"discount_template_value" validate:"required,gt=0"`

	DiscountTemplateMaxAmountCents *money.Cents `json:"discount_template_max_amount_cents" validate:"omitempty,gt=0"`

	DiscountTemplateUsageType string `json:"discount_template_usage_type" validate:"required,oneof=one_time ongoing"`
	DiscountTemplateMaxUses   *int   `json:"discount_template_max_uses"   validate:"omitempty,gt=0"`

	DiscountTemplateScope        string `json:"discount_template_scope"         validate:"required,oneof=per_student per_family"`
	DiscountTemplateApplicableTo string `json:"discount_template_applicable_to" validate:"required,oneof=training store both"`

	DiscountTemplateValidDays  *int   `json:"discount_template_valid_days"  validate:"omitempty,gt=0"`
	DiscountTemplateCodePrefix string `json:"discount_template_code_prefix" validate:"required,min=2,max=20,alphanum"`
}

func (r CreateDiscountTemplateRequest) ToModel(dojoID uuid.UUID) *m.DiscountTemplateModel {
	return &m.DiscountTemplateModel{
		DiscountTemplateDojoID:         dojoID,
		DiscountTemplateName:           r.DiscountTemplateName,
		DiscountTemplateKind:           r.DiscountTemplateKind,
		DiscountTemplateValue:          r.DiscountTemplateValue,
		DiscountTemplateMaxAmountCents: r.DiscountTemplateMaxAmountCents,
		DiscountTemplateUsageType:      r.DiscountTemplateUsageType,
		DiscountTemplateMaxUses:        r.DiscountTemplateMaxUses,
		DiscountTemplateScope:          r.DiscountTemplateScope,
		DiscountTemplateApplicableTo:   r.DiscountTemplateApplicableTo,
		DiscountTemplateValidDays:      r.DiscountTemplateValidDays,
		DiscountTemplateCodePrefix:     r.DiscountTemplateCodePrefix,
	}
}

/* =============== REQUESTS: RULE =============== */

type CreateAutomationRuleRequest struct {
	AutomationRuleName      string `json:"automation_rule_name"       validate:"required,min=3"`
	AutomationRuleEventType string `json:"automation_rule_event_type" validate:"required"`

	// Array klausa [{"field","op","value"}]; null/[] = selalu cocok.
	AutomationRuleConditions datatypes.JSON `json:"automation_rule_conditions" validate:"omitempty"`

	AutomationRuleTemplateID uuid.UUID `json:"automation_rule_template_id" validate:"required"`

	AutomationRulePrograms          []string `json:"automation_rule_programs"             validate:"omitempty,dive,min=1"`
	AutomationRuleMaxUsesPerStudent int      `json:"automation_rule_max_uses_per_student" validate:"omitempty,gte=1"`
	AutomationRulePriority          int      `json:"automation_rule_priority"             validate:"omitempty"`

	AutomationRuleValidFrom  *time.Time `json:"automation_rule_valid_from"  validate:"omitempty"`
	AutomationRuleValidUntil *time.Time `json:"automation_rule_valid_until" validate:"omitempty"`
}

func (r CreateAutomationRuleRequest) ToModel(dojoID uuid.UUID) *m.AutomationRuleModel {
	maxUses := r.AutomationRuleMaxUsesPerStudent
	if maxUses <= 0 {
		maxUses = 1
	}
	return &m.AutomationRuleModel{
		AutomationRuleDojoID:            dojoID,
		AutomationRuleName:              r.AutomationRuleName,
		AutomationRuleEventType:         r.AutomationRuleEventType,
		AutomationRuleConditions:        r.AutomationRuleConditions,
		AutomationRuleTemplateID:        r.AutomationRuleTemplateID,
		AutomationRulePrograms:          r.AutomationRulePrograms,
		AutomationRuleMaxUsesPerStudent: maxUses,
		AutomationRulePriority:          r.AutomationRulePriority,
		AutomationRuleIsActive:          true,
		AutomationRuleValidFrom:         r.AutomationRuleValidFrom,
		AutomationRuleValidUntil:        r.AutomationRuleValidUntil,
	}
}

// Update (partial)
type UpdateAutomationRuleRequest struct {
	AutomationRuleName       *string        `json:"automation_rule_name"       validate:"omitempty,min=3"`
	AutomationRuleConditions datatypes.JSON `json:"automation_rule_conditions" validate:"omitempty"`

	AutomationRulePrograms          []string `json:"automation_rule_programs"             validate:"omitempty,dive,min=1"`
	AutomationRuleMaxUsesPerStudent *int     `json:"automation_rule_max_uses_per_student" validate:"omitempty,gte=1"`
	AutomationRulePriority          *int     `json:"automation_rule_priority"             validate:"omitempty"`
	AutomationRuleIsActive          *bool    `json:"automation_rule_is_active"            validate:"omitempty"`

	AutomationRuleValidFrom  *time.Time `json:"automation_rule_valid_from"  validate:"omitempty"`
	AutomationRuleValidUntil *time.Time `json:"automation_rule_valid_until" validate:"omitempty"`
}

/* =============== REQUESTS: EVENT =============== */

type RecordEventRequest struct {
	DiscountEventType      string                 `json:"discount_event_type"       validate:"required"`
	DiscountEventStudentID *uuid.UUID             `json:"discount_event_student_id" validate:"omitempty"`
	DiscountEventFamilyID  *uuid.UUID             `json:"discount_event_family_id"  validate:"omitempty"`
	DiscountEventPayload   map[string]interface{} `json:"discount_event_payload"    validate:"omitempty"`
}

type ProcessBatchRequest struct {
	Limit int `json:"limit" validate:"omitempty,gte=1,lte=1000"`
}

/* =============== RESPONSES =============== */

type DiscountTemplateResponse struct {
	DiscountTemplateID             uuid.UUID    `json:"discount_template_id"`
	DiscountTemplateName           string       `json:"discount_template_name"`
	DiscountTemplateKind           string       `json:"discount_template_kind"`
	DiscountTemplateValue          int64        `json:"discount_template_value"`
	DiscountTemplateMaxAmountCents *money.Cents `json:"discount_template_max_amount_cents,omitempty"`
	DiscountTemplateUsageType      string       `json:"discount_template_usage_type"`
	DiscountTemplateMaxUses        *int         `json:"discount_template_max_uses,omitempty"`
	DiscountTemplateScope          string       `json:"discount_template_scope"`
	DiscountTemplateApplicableTo   string       `json:"discount_template_applicable_to"`
	DiscountTemplateValidDays      *int         `json:"discount_template_valid_days,omitempty"`
	DiscountTemplateCodePrefix     string       `json:"discount_template_code_prefix"`
	DiscountTemplateCreatedAt      time.Time    `json:"discount_template_created_at"`
}

func FromTemplateModel(t m.DiscountTemplateModel) DiscountTemplateResponse {
	return DiscountTemplateResponse{
		DiscountTemplateID:             t.DiscountTemplateID,
		DiscountTemplateName:           t.DiscountTemplateName,
		DiscountTemplateKind:           t.DiscountTemplateKind,
		DiscountTemplateValue:          t.DiscountTemplateValue,
		DiscountTemplateMaxAmountCents: t.DiscountTemplateMaxAmountCents,
		DiscountTemplateUsageType:      t.DiscountTemplateUsageType,
		DiscountTemplateMaxUses:        t.DiscountTemplateMaxUses,
		DiscountTemplateScope:          t.DiscountTemplateScope,
		DiscountTemplateApplicableTo:   t.DiscountTemplateApplicableTo,
		DiscountTemplateValidDays:      t.DiscountTemplateValidDays,
		DiscountTemplateCodePrefix:     t.DiscountTemplateCodePrefix,
		DiscountTemplateCreatedAt:      t.DiscountTemplateCreatedAt,
	}
}

func FromTemplateModels(rows []m.DiscountTemplateModel) []DiscountTemplateResponse {
	out := make([]DiscountTemplateResponse, 0, len(rows))
	for _, t := range rows {
		out = append(out, FromTemplateModel(t))
	}
	return out
}

type AutomationRuleResponse struct {
	AutomationRuleID                uuid.UUID      `json:"automation_rule_id"`
	AutomationRuleName              string         `json:"automation_rule_name"`
	AutomationRuleEventType         string         `json:"automation_rule_event_type"`
	AutomationRuleConditions        datatypes.JSON `json:"automation_rule_conditions,omitempty"`
	AutomationRuleTemplateID        uuid.UUID      `json:"automation_rule_template_id"`
	AutomationRulePrograms          []string       `json:"automation_rule_programs,omitempty"`
	AutomationRuleMaxUsesPerStudent int            `json:"automation_rule_max_uses_per_student"`
	AutomationRulePriority          int            `json:"automation_rule_priority"`
	AutomationRuleIsActive          bool           `json:"automation_rule_is_active"`
	AutomationRuleValidFrom         *time.Time     `json:"automation_rule_valid_from,omitempty"`
	AutomationRuleValidUntil        *time.Time     `json:"automation_rule_valid_until,omitempty"`
	AutomationRuleCreatedAt         time.Time      `json:"automation_rule_created_at"`
}

func FromRuleModel(r m.AutomationRuleModel) AutomationRuleResponse {
	return AutomationRuleResponse{
		AutomationRuleID:                r.AutomationRuleID,
		AutomationRuleName:              r.AutomationRuleName,
		AutomationRuleEventType:         r.AutomationRuleEventType,
		AutomationRuleConditions:        r.AutomationRuleConditions,
		AutomationRuleTemplateID:        r.AutomationRuleTemplateID,
		AutomationRulePrograms:          r.AutomationRulePrograms,
		AutomationRuleMaxUsesPerStudent: r.AutomationRuleMaxUsesPerStudent,
		AutomationRulePriority:          r.AutomationRulePriority,
		AutomationRuleIsActive:          r.AutomationRuleIsActive,
		AutomationRuleValidFrom:         r.AutomationRuleValidFrom,
		AutomationRuleValidUntil:        r.AutomationRuleValidUntil,
		AutomationRuleCreatedAt:         r.AutomationRuleCreatedAt,
	}
}

func FromRuleModels(rows []m.AutomationRuleModel) []AutomationRuleResponse {
	out := make([]AutomationRuleResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, FromRuleModel(r))
	}
	return out
}

type DiscountEventResponse struct {
	DiscountEventID          uuid.UUID              `json:"discount_event_id"`
	DiscountEventType        string                 `json:"discount_event_type"`
	DiscountEventStudentID   *uuid.UUID             `json:"discount_event_student_id,omitempty"`
	DiscountEventFamilyID    *uuid.UUID             `json:"discount_event_family_id,omitempty"`
	DiscountEventPayload     map[string]interface{} `json:"discount_event_payload,omitempty"`
	DiscountEventOccurredAt  time.Time              `json:"discount_event_occurred_at"`
	DiscountEventProcessedAt *time.Time             `json:"discount_event_processed_at,omitempty"`
	DiscountEventLastError   *string                `json:"discount_event_last_error,omitempty"`
}

func FromEventModel(e m.DiscountEventModel) DiscountEventResponse {
	return DiscountEventResponse{
		DiscountEventID:          e.DiscountEventID,
		DiscountEventType:        e.DiscountEventType,
		DiscountEventStudentID:   e.DiscountEventStudentID,
		DiscountEventFamilyID:    e.DiscountEventFamilyID,
		DiscountEventPayload:     e.DiscountEventPayload,
		DiscountEventOccurredAt:  e.DiscountEventOccurredAt,
		DiscountEventProcessedAt: e.DiscountEventProcessedAt,
		DiscountEventLastError:   e.DiscountEventLastError,
	}
}

type DiscountAssignmentResponse struct {
	DiscountAssignmentID         uuid.UUID  `json:"discount_assignment_id"`
	DiscountAssignmentRuleID     uuid.UUID  `json:"discount_assignment_rule_id"`
	DiscountAssignmentSubjectKey string     `json:"discount_assignment_subject_key"`
	DiscountAssignmentSeq        int        `json:"discount_assignment_seq"`
	DiscountAssignmentStudentID  *uuid.UUID `json:"discount_assignment_student_id,omitempty"`
	DiscountAssignmentFamilyID   *uuid.UUID `json:"discount_assignment_family_id,omitempty"`
	DiscountAssignmentEventID    uuid.UUID  `json:"discount_assignment_event_id"`
	DiscountAssignmentCodeID     uuid.UUID  `json:"discount_assignment_code_id"`
	DiscountAssignmentCreatedAt  time.Time  `json:"discount_assignment_created_at"`

	// Kode hasil mint, diisi saat list dengan join.
	DiscountCodeCode *string `json:"discount_code_code,omitempty"`
}

func FromAssignmentModel(a m.DiscountAssignmentModel) DiscountAssignmentResponse {
	return DiscountAssignmentResponse{
		DiscountAssignmentID:         a.DiscountAssignmentID,
		DiscountAssignmentRuleID:     a.DiscountAssignmentRuleID,
		DiscountAssignmentSubjectKey: a.DiscountAssignmentSubjectKey,
		DiscountAssignmentSeq:        a.DiscountAssignmentSeq,
		DiscountAssignmentStudentID:  a.DiscountAssignmentStudentID,
		DiscountAssignmentFamilyID:   a.DiscountAssignmentFamilyID,
		DiscountAssignmentEventID:    a.DiscountAssignmentEventID,
		DiscountAssignmentCodeID:     a.DiscountAssignmentCodeID,
		DiscountAssignmentCreatedAt:  a.DiscountAssignmentCreatedAt,
	}
}
