package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// DataType enumerates the value types an attribute can declare.
type DataType string

const (
	DataTypeString  DataType = "string"
	DataTypeNumber  DataType = "number"
	DataTypeBoolean DataType = "boolean"
	DataTypeDate    DataType = "date"
	DataTypeText    DataType = "text"
	DataTypeEnum    DataType = "enum"
)

// DataTypes lists every supported DataType in declaration order.
var DataTypes = []DataType{
	DataTypeString,
	DataTypeNumber,
	DataTypeBoolean,
	DataTypeDate,
	DataTypeText,
	DataTypeEnum,
}

// Valid reports whether d is one of the supported data types.
func (d DataType) Valid() bool {
	for _, t := range DataTypes {
		if t == d {
			return true
		}
	}
	return false
}

// StringList is an ordered list of strings persisted as a JSON array.
// A nil list is stored as NULL.
type StringList []string

// Value implements driver.Valuer.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (l *StringList) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into StringList", src)
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return err
	}
	if out == nil {
		out = []string{}
	}
	*l = out
	return nil
}

// AttributeDefinition declares one custom field of a category's schema.
// Options is only meaningful for DataTypeEnum.
type AttributeDefinition struct {
	ID         int64      `db:"id" json:"id"`
	CategoryID int64      `db:"category_id" json:"categoryId"`
	Name       string     `db:"name" json:"name"`
	DataType   DataType   `db:"data_type" json:"dataType"`
	IsRequired bool       `db:"is_required" json:"isRequired"`
	Options    StringList `db:"options_json" json:"options,omitempty"`
	SortOrder  int        `db:"sort_order" json:"sortOrder"`
	CreatedAt  time.Time  `db:"created_at" json:"createdAt"`
}
