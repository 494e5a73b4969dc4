package helper

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

/* ===============================
   Scope dari token (Locals)
   Diisi middleware AuthJWT, dibaca controller.
=================================*/

const (
	LocUserID    = "user_id"
	LocDojoID    = "dojo_id"
	LocFamilyID  = "family_id"
	LocStudentID = "student_ids"
	LocRole      = "role"
)

// --- util kecil biar gak duplikasi parsing ---
func uuidFromLocals(c *fiber.Ctx, key string) (uuid.UUID, error) {
	v := c.Locals(key)
	if v == nil {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, key+" tidak ditemukan di token")
	}

	switch t := v.(type) {
	case uuid.UUID:
		if t == uuid.Nil {
			return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, key+" kosong di token")
		}
		return t, nil
	case string:
		if strings.TrimSpace(t) == "" {
			return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, key+" kosong di token")
		}
		id, err := uuid.Parse(strings.TrimSpace(t))
		if err != nil {
			return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "Format "+key+" tidak valid di token")
		}
		return id, nil
	case []string:
		if len(t) == 0 || strings.TrimSpace(t[0]) == "" {
			return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, key+" kosong di token")
		}
		id, err := uuid.Parse(strings.TrimSpace(t[0]))
		if err != nil {
			return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "Format "+key+" tidak valid di token")
		}
		return id, nil
	}
	return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "Format "+key+" tidak valid di token")
}

// GetDojoIDFromToken mengambil tenant aktif. Semua query wajib
// difilter dengan ID ini.
func GetDojoIDFromToken(c *fiber.Ctx) (uuid.UUID, error) {
	return uuidFromLocals(c, LocDojoID)
}

func GetUserIDFromToken(c *fiber.Ctx) (uuid.UUID, error) {
	return uuidFromLocals(c, LocUserID)
}

// GetFamilyIDFromToken untuk endpoint wali: scope keluarga pemegang token.
func GetFamilyIDFromToken(c *fiber.Ctx) (uuid.UUID, error) {
	return uuidFromLocals(c, LocFamilyID)
}

// GetStudentIDFromToken mengambil siswa pertama milik pemegang token
// (token wali bisa membawa beberapa siswa).
func GetStudentIDFromToken(c *fiber.Ctx) (uuid.UUID, error) {
	return uuidFromLocals(c, LocStudentID)
}

// RoleFromToken mengembalikan role pemegang token ("" bila tidak ada).
func RoleFromToken(c *fiber.Ctx) string {
	if s, ok := c.Locals(LocRole).(string); ok {
		return strings.ToLower(strings.TrimSpace(s))
	}
	return ""
}

func IsAdmin(c *fiber.Ctx) bool {
	r := RoleFromToken(c)
	return r == "admin" || r == "owner"
}
