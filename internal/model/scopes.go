package model

import "gorm.io/gorm"

// Active limits a query to rows that were not soft deleted. Every read path
// must go through it.
func Active(db *gorm.DB) *gorm.DB {
	return db.Where("deleted = ?", false)
}

// ActiveIn is Active for queries that join several soft deleted tables.
func ActiveIn(table string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(table+".deleted = ?", false)
	}
}

// OwnedBy limits a query to rows owned by the given identity.
func OwnedBy(ownerID string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("owner_id = ?", ownerID)
	}
}

// SoftDelete moves the matching active rows of m into the deleted state and
// reports how many rows changed.
func SoftDelete(db *gorm.DB, m any, query string, args ...any) (int64, error) {
	res := db.
		Model(m).
		Scopes(Active).
		Where(query, args...).
		Update("deleted", true)

	return res.RowsAffected, res.Error
}

// All lists the tables owned by the application, in migration order.
func All() []any {
	return []any{&User{}, &Project{}, &Collection{}, &File{}}
}
