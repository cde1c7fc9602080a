package models

import (
	"database/sql/driver"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// StringList stores a list of strings as a Postgres text[] column. On other
// dialects (the in-memory test database) it degrades to a flat text column
// holding the array literal.
type StringList pq.StringArray

// Scan implements sql.Scanner.
func (s *StringList) Scan(src interface{}) error {
	return (*pq.StringArray)(s).Scan(src)
}

// Value implements driver.Valuer.
func (s StringList) Value() (driver.Value, error) {
	return pq.StringArray(s).Value()
}

// GormDataType reports the general data type so GORM schema parsing does not
// mistake the slice for a has-many relation.
func (StringList) GormDataType() string {
	return "text"
}

// GormDBDataType picks the column type per dialect.
func (StringList) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "text[]"
	}
	return "text"
}
