package models

// Setting is a persisted key-value pair, used for the WebDAV configuration.
type Setting struct {
	Key   string `gorm:"column:key;primaryKey" json:"key"`
	Value string `gorm:"column:value;not null" json:"value"`
}

func (Setting) TableName() string {
	return "settings"
}
