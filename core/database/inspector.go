package database

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// ColumnInfo describes one table column.
type ColumnInfo struct {
	Field   string
	Type    string
	Null    string
	Key     string
	Default *string
	Extra   string
}

// GetTableColumns returns the columns of table with lower-cased names and types.
// A missing table yields no columns.
func GetTableColumns(db *gorm.DB, table string) ([]ColumnInfo, error) {
	var columns []ColumnInfo
	if db.Dialector.Name() == DriverSQLite {
		var rows []struct {
			Cid       int
			Name      string
			Type      string
			Notnull   int
			DfltValue *string
			Pk        int
		}
		if err := db.Raw("SELECT * FROM pragma_table_info(?)", table).Scan(&rows).Error; err != nil {
			return nil, fmt.Errorf("failed to get columns for table %s: %w", table, err)
		}
		for _, r := range rows {
			columns = append(columns, ColumnInfo{
				Field:   strings.ToLower(r.Name),
				Type:    strings.ToLower(r.Type),
				Default: r.DfltValue,
			})
		}
		return columns, nil
	}

	if err := db.Raw(fmt.Sprintf("SHOW COLUMNS FROM `%s`", strings.ReplaceAll(table, "`", ""))).Scan(&columns).Error; err != nil {
		return nil, fmt.Errorf("failed to get columns for table %s: %w", table, err)
	}
	for i := range columns {
		columns[i].Type = strings.ToLower(columns[i].Type)
		columns[i].Field = strings.ToLower(columns[i].Field)
	}
	return columns, nil
}

// RequireColumns checks that table has every named column.
func RequireColumns(db *gorm.DB, table string, names ...string) error {
	columns, err := GetTableColumns(db, table)
	if err != nil {
		return err
	}
	have := make(map[string]bool, len(columns))
	for _, c := range columns {
		have[c.Field] = true
	}
	var missing []string
	for _, n := range names {
		if !have[strings.ToLower(n)] {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("table %s is missing columns %s", table, strings.Join(missing, ", "))
	}
	return nil
}
