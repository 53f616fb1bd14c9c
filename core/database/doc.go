// Package database opens the gorm connection used by the SQL data source.
//
// Connect supports sqlite (a file path, or ":memory:") and MySQL. Open takes a
// ready dialector, which lets tests hand in a sqlmock-backed connection.
//
// GetTableColumns and RequireColumns inspect an existing schema so a data source
// can refuse to start against tables it cannot read.
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    return err
//	}
//	err = database.RequireColumns(db, "items", "section_id", "position", "body")
package database
