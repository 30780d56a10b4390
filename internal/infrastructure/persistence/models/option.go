package models

// OptionModel is one row of the flat option store
type OptionModel struct {
	ID    uint   `gorm:"primaryKey;autoIncrement"`
	Name  string `gorm:"column:option_name;type:varchar(191);not null;uniqueIndex:idx_options_name"`
	Value string `gorm:"column:option_value;type:text;not null;default:''"`
	TimestampModel
}

// TableName returns the table name for GORM
func (OptionModel) TableName() string {
	return "options"
}
