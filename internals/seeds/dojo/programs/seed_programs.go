package program

import (
	"log"
	"os"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"dojoku_backend/internals/features/dojo/programs/model"
	"dojoku_backend/internals/helpers/money"
)

type ProgramSeed struct {
	ProgramDojoID     string `json:"program_dojo_id"`
	ProgramCode       string `json:"program_code"`
	ProgramName       string `json:"program_name"`
	ProgramMonthlyFee int64  `json:"program_monthly_fee"`
	ProgramYearlyFee  int64  `json:"program_yearly_fee"`
	ProgramSessionFee int64  `json:"program_session_fee"`
}

func SeedProgramsFromJSON(db *gorm.DB, filePath string) {
	log.Println("📥 Membaca file:", filePath)

	file, err := os.ReadFile(filePath)
	if err != nil {
		log.Fatalf("❌ Gagal membaca file JSON: %v", err)
	}

	var input []ProgramSeed
	if err := sonic.Unmarshal(file, &input); err != nil {
		log.Fatalf("❌ Gagal decode JSON: %v", err)
	}

	for _, p := range input {
		dojoID, err := uuid.Parse(p.ProgramDojoID)
		if err != nil {
			log.Printf("❌ Program %s: dojo_id tidak valid: %v", p.ProgramCode, err)
			continue
		}

		var existing model.ProgramModel
		if err := db.Where("program_dojo_id = ? AND program_code = ?", dojoID, p.ProgramCode).First(&existing).Error; err == nil {
			log.Printf("ℹ️ Program %s sudah ada, lewati...", p.ProgramCode)
			continue
		}

		row := model.ProgramModel{
			ProgramDojoID:     dojoID,
			ProgramCode:       p.ProgramCode,
			ProgramName:       p.ProgramName,
			ProgramMonthlyFee: money.Cents(p.ProgramMonthlyFee),
			ProgramYearlyFee:  money.Cents(p.ProgramYearlyFee),
			ProgramSessionFee: money.Cents(p.ProgramSessionFee),
			ProgramIsActive:   true,
		}

		if err := db.Create(&row).Error; err != nil {
			log.Printf("❌ Gagal insert Program %s: %v", p.ProgramCode, err)
		} else {
			log.Printf("✅ Berhasil insert Program %s (%s)", p.ProgramCode, p.ProgramName)
		}
	}
}
