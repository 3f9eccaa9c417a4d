package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yukikurage/survey-api/internal/utils"
)

// Paginate applies pagination to a GORM query
func Paginate(params utils.PaginationParams) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(params.Offset).Limit(params.Limit)
	}
}

// Contains filters rows whose column contains value as a case-sensitive substring.
// LIKE is case-insensitive on sqlite and most mysql collations, so each dialect
// gets its own position function.
func Contains(column, value string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		switch db.Dialector.Name() {
		case "postgres":
			return db.Where(fmt.Sprintf("strpos(%s, ?) > 0", column), value)
		case "mysql":
			return db.Where(fmt.Sprintf("LOCATE(BINARY ?, %s) > 0", column), value)
		default:
			return db.Where(fmt.Sprintf("instr(%s, ?) > 0", column), value)
		}
	}
}
