package models

// Product is one row of the local product table. The barcode is the natural
// key; the id is assigned by storage on insert.
type Product struct {
	ID      int64   `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Barcode string  `gorm:"column:barcode;uniqueIndex;not null" json:"barcode"`
	Name    string  `gorm:"column:name;not null" json:"name"`
	Price   float64 `gorm:"column:price;not null" json:"price"`
	Stock   int     `gorm:"column:stock;not null;default:0" json:"stock"`
}

func (Product) TableName() string {
	return "products"
}
