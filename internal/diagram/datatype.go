package diagram

import (
	"encoding/json"
	"strings"

	"gopkg.in/yaml.v3"
)

// DataType is either one of the well-known attribute types or a custom
// free-text type. It encodes as a plain string.
type DataType struct {
	name   string
	custom bool
}

var (
	TypeString   = DataType{name: "String"}
	TypeNumber   = DataType{name: "Number"}
	TypeBoolean  = DataType{name: "Boolean"}
	TypeDate     = DataType{name: "Date"}
	TypeObjectID = DataType{name: "ObjectId"}
	TypeArray    = DataType{name: "Array"}
	TypeObject   = DataType{name: "Object"}
	TypeBuffer   = DataType{name: "Buffer"}
	TypeMixed    = DataType{name: "Mixed"}
	TypeDecimal  = DataType{name: "Decimal"}
	TypeInteger  = DataType{name: "Integer"}
	TypeBigInt   = DataType{name: "BigInt"}
	TypeEmail    = DataType{name: "Email"}
	TypeURL      = DataType{name: "URL"}
	TypeFloat    = DataType{name: "Float"}
	TypeDouble   = DataType{name: "Double"}
	TypeUUID     = DataType{name: "UUID"}
	TypeText     = DataType{name: "Text"}
	TypeJSON     = DataType{name: "JSON"}
)

// KnownDataTypes lists the closed vocabulary in display order.
var KnownDataTypes = []DataType{
	TypeString, TypeNumber, TypeBoolean, TypeDate, TypeObjectID,
	TypeArray, TypeObject, TypeBuffer, TypeMixed, TypeDecimal,
	TypeInteger, TypeBigInt, TypeEmail, TypeURL, TypeFloat,
	TypeDouble, TypeUUID, TypeText, TypeJSON,
}

var knownByName = func() map[string]DataType {
	m := make(map[string]DataType, len(KnownDataTypes))
	for _, dt := range KnownDataTypes {
		m[dt.name] = dt
	}
	return m
}()

// Custom builds a free-text data type such as "varchar(255)".
func Custom(name string) DataType {
	return DataType{name: strings.TrimSpace(name), custom: true}
}

// ParseDataType maps s onto a well-known type when it is spelled exactly
// like one and otherwise keeps it verbatim as Custom, so "text" stays "text".
// An empty string yields TypeString.
func ParseDataType(s string) DataType {
	s = strings.TrimSpace(s)
	if s == "" {
		return TypeString
	}
	if dt, ok := knownByName[s]; ok {
		return dt
	}
	return Custom(s)
}

func (d DataType) String() string {
	if d.name == "" {
		return TypeString.name
	}
	return d.name
}

func (d DataType) IsCustom() bool { return d.custom }

func (d DataType) IsZero() bool { return d.name == "" }

func (d DataType) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *DataType) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*d = ParseDataType(s)
	return nil
}

func (d DataType) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}

func (d *DataType) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	*d = ParseDataType(s)
	return nil
}
