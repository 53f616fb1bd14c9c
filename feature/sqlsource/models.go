package sqlsource

// Section is an ordered group of items.
type Section struct {
	ID       uint   `gorm:"primaryKey"`
	Position int    `gorm:"index;not null"`
	Title    string `gorm:"size:255"`
}

// Item is one row of a section.
type Item struct {
	ID        uint   `gorm:"primaryKey"`
	SectionID uint   `gorm:"index:idx_item_position,priority:1;not null"`
	Position  int    `gorm:"index:idx_item_position,priority:2;not null"`
	Body      string `gorm:"type:text"`
}
