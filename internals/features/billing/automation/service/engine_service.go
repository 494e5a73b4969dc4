// internals/features/billing/automation/service/engine_service.go
//
// Mesin aturan diskon otomatis. Event bisnis (enrollment, kenaikan
// sabuk, milestone kehadiran, referral, ...) masuk sebagai baris
// discount_events; mesin mengevaluasi aturan aktif terhadap snapshot
// ruleset dan mencetak kode diskon dari template untuk subjek yang
// memenuhi syarat.
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	am "dojoku_backend/internals/features/billing/automation/model"
	dm "dojoku_backend/internals/features/billing/discounts/model"
	em "dojoku_backend/internals/features/billing/enrollments/model"
	sm "dojoku_backend/internals/features/dojo/members/model"
	"dojoku_backend/internals/helpers/dates"
	"dojoku_backend/internals/helpers/money"
	"dojoku_backend/internals/observability/metrics"
)

type EngineService struct {
	DB      *gorm.DB
	Metrics *metrics.BillingMetrics
}

func NewEngineService(db *gorm.DB) *EngineService {
	return &EngineService{DB: db, Metrics: metrics.Billing()}
}

/* ===============================
   Perekaman event
=================================*/

// RecordEvent dipanggil kolaborator (enrollment, payment, kehadiran,
// referral) setiap ada kejadian yang mungkin memicu diskon.
func (s *EngineService) RecordEvent(ctx context.Context, dojoID uuid.UUID, eventType string, studentID, familyID *uuid.UUID, payload map[string]interface{}) (*am.DiscountEventModel, error) {
	if !am.ValidEventType(eventType) {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Tipe event tidak dikenal: "+eventType)
	}

	ev := &am.DiscountEventModel{
		DiscountEventDojoID:     dojoID,
		DiscountEventType:       eventType,
		DiscountEventStudentID:  studentID,
		DiscountEventFamilyID:   familyID,
		DiscountEventPayload:    datatypes.JSONMap(payload),
		DiscountEventOccurredAt: time.Now(),
	}
	if err := s.DB.WithContext(ctx).Create(ev).Error; err != nil {
		return nil, err
	}
	return ev, nil
}

/* ===============================
   Snapshot ruleset
=================================*/

// Ruleset adalah potret aturan + template satu dojo pada satu titik
// waktu. Satu batch memakai satu snapshot supaya pembacaan konsisten.
type Ruleset struct {
	DojoID    uuid.UUID
	Rules     []am.AutomationRuleModel
	Templates map[uuid.UUID]am.DiscountTemplateModel
}

func (s *EngineService) LoadRuleset(ctx context.Context, dojoID uuid.UUID) (*Ruleset, error) {
	var rules []am.AutomationRuleModel
	if err := s.DB.WithContext(ctx).
		Where("automation_rule_dojo_id = ? AND automation_rule_is_active = ?", dojoID, true).
		Order("automation_rule_priority DESC, automation_rule_created_at ASC").
		Find(&rules).Error; err != nil {
		return nil, err
	}

	templateIDs := make([]uuid.UUID, 0, len(rules))
	for _, r := range rules {
		templateIDs = append(templateIDs, r.AutomationRuleTemplateID)
	}

	templates := make(map[uuid.UUID]am.DiscountTemplateModel, len(templateIDs))
	if len(templateIDs) > 0 {
		var rows []am.DiscountTemplateModel
		if err := s.DB.WithContext(ctx).
			Where("discount_template_id IN ?", templateIDs).
			Find(&rows).Error; err != nil {
			return nil, err
		}
		for _, t := range rows {
			templates[t.DiscountTemplateID] = t
		}
	}

	return &Ruleset{DojoID: dojoID, Rules: rules, Templates: templates}, nil
}

/* ===============================
   Facts: payload + atribut subjek
=================================*/

// buildFacts menggabungkan payload event dengan atribut siswa/keluarga
// yang bisa dirujuk kondisi: age, belt_level, program_codes,
// family_size. Atribut hasil query menimpa payload bila tabrakan.
func (s *EngineService) buildFacts(ctx context.Context, ev *am.DiscountEventModel) (map[string]interface{}, error) {
	facts := make(map[string]interface{}, len(ev.DiscountEventPayload)+5)
	for k, v := range ev.DiscountEventPayload {
		facts[k] = v
	}
	facts["event_type"] = ev.DiscountEventType

	familyID := ev.DiscountEventFamilyID

	if ev.DiscountEventStudentID != nil {
		var stu sm.StudentModel
		err := s.DB.WithContext(ctx).
			Where("student_id = ?", *ev.DiscountEventStudentID).
			First(&stu).Error
		if err != nil && err != gorm.ErrRecordNotFound {
			return nil, err
		}
		if err == nil {
			facts["belt_level"] = int(stu.StudentBeltLevel)
			if age := stu.AgeOn(dates.Day(ev.DiscountEventOccurredAt)); age >= 0 {
				facts["age"] = age
			}
			if familyID == nil {
				familyID = &stu.StudentFamilyID
			}

			var codes []string
			if err := s.DB.WithContext(ctx).
				Table("programs").
				Joins("JOIN enrollments ON enrollment_program_id = program_id").
				Where("enrollment_student_id = ?", stu.StudentID).
				Where("enrollment_status IN ?", []string{em.EnrollmentStatusActive, em.EnrollmentStatusTrial}).
				Where("enrollment_deleted_at IS NULL AND program_deleted_at IS NULL").
				Pluck("program_code", &codes).Error; err != nil {
				return nil, err
			}
			facts["program_codes"] = codes
		}
	}

	if familyID != nil {
		var size int64
		if err := s.DB.WithContext(ctx).
			Model(&sm.StudentModel{}).
			Where("student_family_id = ?", *familyID).
			Count(&size).Error; err != nil {
			return nil, err
		}
		facts["family_size"] = int(size)
	}

	return facts, nil
}

/* ===============================
   Pemrosesan satu event
=================================*/

// ProcessEvent mengevaluasi semua aturan ruleset terhadap satu event.
// Setiap aturan cocok mencetak satu kode + assignment (dibatasi
// max_uses_per_student lewat unique index). Setelah seluruh aturan
// dievaluasi, event ditandai processed meski tidak ada yang cocok.
// Error (kondisi rusak, DB) membuat event TIDAK ditandai, supaya bisa
// diulang setelah dibereskan.
func (s *EngineService) ProcessEvent(ctx context.Context, ev *am.DiscountEventModel, rs *Ruleset) (int, error) {
	if ev.DiscountEventProcessedAt != nil {
		return 0, nil
	}

	facts, err := s.buildFacts(ctx, ev)
	if err != nil {
		return 0, err
	}

	subjectKey := am.SubjectKeyFor(ev.DiscountEventStudentID, ev.DiscountEventFamilyID)
	today := dates.Today()
	created := 0

	for i := range rs.Rules {
		rule := &rs.Rules[i]

		if rule.AutomationRuleEventType != ev.DiscountEventType {
			continue
		}
		if rule.AutomationRuleValidFrom != nil && dates.Before(today, *rule.AutomationRuleValidFrom) {
			continue
		}
		if rule.AutomationRuleValidUntil != nil && dates.Before(*rule.AutomationRuleValidUntil, today) {
			continue
		}
		if len(rule.AutomationRulePrograms) > 0 && !programsOverlap(rule.AutomationRulePrograms, facts["program_codes"]) {
			continue
		}

		clauses, err := ParseConditions(rule.AutomationRuleConditions)
		if err != nil {
			return created, fmt.Errorf("aturan %q: %w", rule.AutomationRuleName, err)
		}
		match, err := EvaluateConditions(clauses, facts)
		if err != nil {
			return created, fmt.Errorf("aturan %q: %w", rule.AutomationRuleName, err)
		}
		if !match {
			continue
		}

		if subjectKey == "" {
			log.Printf("[AUTOMATION] event %s cocok aturan %q tapi tanpa subjek, lewati", ev.DiscountEventID, rule.AutomationRuleName)
			continue
		}

		tpl, ok := rs.Templates[rule.AutomationRuleTemplateID]
		if !ok {
			// Template dihapus setelah snapshot; aturan tidak bisa mencetak.
			log.Printf("[AUTOMATION] aturan %q menunjuk template yang hilang, lewati", rule.AutomationRuleName)
			continue
		}

		granted, err := s.grant(ctx, ev, rule, &tpl, subjectKey)
		if err != nil {
			return created, err
		}
		if granted {
			created++
			s.Metrics.IncAssignmentCreated()
		}
	}

	// Tandai processed tanpa syarat hasil; WHERE processed_at IS NULL
	// menjaga dua worker tidak saling menimpa stempel.
	if err := s.DB.WithContext(ctx).
		Model(&am.DiscountEventModel{}).
		Where("discount_event_id = ? AND discount_event_processed_at IS NULL", ev.DiscountEventID).
		Updates(map[string]interface{}{
			"discount_event_processed_at": time.Now(),
			"discount_event_last_error":   nil,
		}).Error; err != nil {
		return created, err
	}

	return created, nil
}

// grant mencetak kode dari template + menulis assignment dalam satu
// transaksi. false tanpa error = jatah subjek sudah penuh (bukan
// kegagalan).
func (s *EngineService) grant(ctx context.Context, ev *am.DiscountEventModel, rule *am.AutomationRuleModel, tpl *am.DiscountTemplateModel, subjectKey string) (bool, error) {
	granted := false

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		maxUses := rule.AutomationRuleMaxUsesPerStudent
		if maxUses <= 0 {
			maxUses = 1
		}

		var prior int64
		if err := tx.
			Model(&am.DiscountAssignmentModel{}).
			Where("discount_assignment_rule_id = ? AND discount_assignment_subject_key = ?", rule.AutomationRuleID, subjectKey).
			Count(&prior).Error; err != nil {
			return err
		}
		if prior >= int64(maxUses) {
			return nil
		}

		code, err := mintCode(tx, ev.DiscountEventDojoID, tpl)
		if err != nil {
			return err
		}

		asg := am.DiscountAssignmentModel{
			DiscountAssignmentDojoID:     ev.DiscountEventDojoID,
			DiscountAssignmentRuleID:     rule.AutomationRuleID,
			DiscountAssignmentSubjectKey: subjectKey,
			DiscountAssignmentSeq:        int(prior) + 1,
			DiscountAssignmentStudentID:  ev.DiscountEventStudentID,
			DiscountAssignmentFamilyID:   ev.DiscountEventFamilyID,
			DiscountAssignmentEventID:    ev.DiscountEventID,
			DiscountAssignmentCodeID:     code.DiscountCodeID,
		}
		if err := tx.Create(&asg).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				// Kalah balapan dengan pemrosesan paralel event lain:
				// rollback ikut membatalkan kode yang terlanjur dicetak.
				return errLostGrantRace
			}
			return err
		}

		granted = true
		return nil
	})

	if errors.Is(err, errLostGrantRace) {
		return false, nil
	}
	return granted, err
}

var errLostGrantRace = errors.New("grant lost dedup race")

// mintCode menulis kode diskon baru dari template. Kode acak
// PREFIX-XXXXXXXX; tabrakan kode diulang lewat savepoint.
func mintCode(tx *gorm.DB, dojoID uuid.UUID, tpl *am.DiscountTemplateModel) (*dm.DiscountCodeModel, error) {
	today := dates.Today()

	var validUntil *time.Time
	if tpl.DiscountTemplateValidDays != nil && *tpl.DiscountTemplateValidDays > 0 {
		until := dates.AddDays(today, *tpl.DiscountTemplateValidDays)
		validUntil = &until
	}

	var maxAmount *money.Cents
	if tpl.DiscountTemplateMaxAmountCents != nil {
		v := *tpl.DiscountTemplateMaxAmountCents
		maxAmount = &v
	}

	for attempt := 0; attempt < 3; attempt++ {
		row := &dm.DiscountCodeModel{
			DiscountCodeDojoID:         dojoID,
			DiscountCodeCode:           mintCodeString(tpl.DiscountTemplateCodePrefix),
			DiscountCodeKind:           tpl.DiscountTemplateKind,
			DiscountCodeValue:          tpl.DiscountTemplateValue,
			DiscountCodeMaxAmountCents: maxAmount,
			DiscountCodeUsageType:      tpl.DiscountTemplateUsageType,
			DiscountCodeMaxUses:        tpl.DiscountTemplateMaxUses,
			DiscountCodeScope:          tpl.DiscountTemplateScope,
			DiscountCodeApplicableTo:   tpl.DiscountTemplateApplicableTo,
			DiscountCodeValidFrom:      &today,
			DiscountCodeValidUntil:     validUntil,
			DiscountCodeIsActive:       true,
		}

		// Savepoint: tabrakan kode tidak boleh membatalkan transaksi luar.
		err := tx.Transaction(func(inner *gorm.DB) error {
			return inner.Create(row).Error
		})
		if err == nil {
			return row, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, err
		}
	}
	return nil, errors.New("gagal mencetak kode unik setelah 3 percobaan")
}

func mintCodeString(prefix string) string {
	token := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	prefix = strings.ToUpper(strings.TrimSpace(prefix))
	if prefix == "" {
		prefix = "PROMO"
	}
	return prefix + "-" + token
}

// programsOverlap mengecek irisan filter program aturan dengan kode
// program siswa dari facts.
func programsOverlap(rulePrograms []string, fact interface{}) bool {
	codes, ok := fact.([]string)
	if !ok || len(codes) == 0 {
		return false
	}
	for _, rp := range rulePrograms {
		for _, c := range codes {
			if strings.EqualFold(rp, c) {
				return true
			}
		}
	}
	return false
}
