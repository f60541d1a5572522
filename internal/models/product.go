package models

import "time"

// Product is a catalog item belonging to exactly one category.
type Product struct {
	ID          int64     `db:"id" json:"id"`
	CategoryID  int64     `db:"category_id" json:"categoryId"`
	Name        string    `db:"name" json:"name"`
	SKU         *string   `db:"sku" json:"sku"`
	Price       float64   `db:"price" json:"price"`
	Description *string   `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

// AttributeValue is one product/attribute/value triple.
type AttributeValue struct {
	ProductID   int64  `db:"product_id" json:"productId"`
	AttributeID int64  `db:"attribute_id" json:"attributeId"`
	Value       string `db:"value" json:"value"`
}

// AttributeValueDetail decorates a stored value with its attribute's name and type.
type AttributeValueDetail struct {
	AttributeValue
	AttrName string   `db:"attr_name" json:"attrName"`
	DataType DataType `db:"data_type" json:"dataType"`
}

// ProductDetail is a product with its attribute values attached.
type ProductDetail struct {
	Product
	Attributes []AttributeValueDetail `json:"attributes"`
}
