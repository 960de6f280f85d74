package models

import "strings"

// JSONValue is a generic type to represent any JSON value.
// This can be nil, bool, json.Number, string, JSONArray or *JSONObject.
type JSONValue interface{}

// JSONArray represents a JSON array, which is a slice of JSONValues.
type JSONArray []JSONValue

// JSONObject represents a JSON object whose keys keep their insertion order.
// Output order of generated members follows this order.
type JSONObject struct {
	keys   []string
	values map[string]JSONValue
}

// NewJSONObject creates an empty ordered object.
func NewJSONObject() *JSONObject {
	return &JSONObject{values: make(map[string]JSONValue)}
}

// Set stores a value. A repeated key keeps its first position and takes the new value.
func (o *JSONObject) Set(key string, value JSONValue) {
	if _, exists := o.values[key]; !exists {
		o.keys = append(o.keys, key)
	}
	o.values[key] = value
}

// Get returns the value stored under key.
func (o *JSONObject) Get(key string) (JSONValue, bool) {
	v, ok := o.values[key]
	return v, ok
}

// Keys returns the keys in insertion order.
func (o *JSONObject) Keys() []string {
	return o.keys
}

// Len returns the number of keys.
func (o *JSONObject) Len() int {
	return len(o.keys)
}

// IntermediateRepresentation is a structure to hold the parsed JSON data
// in a way that's easy for the analyzer to work with.
type IntermediateRepresentation struct {
	Root        JSONValue
	RootIsArray bool // True if the root of the JSON is an array vs an object
}

// Mode selects the kind of declarations generated.
type Mode string

const (
	ModeInterface Mode = "interface"
	ModeDTO       Mode = "dto"
)

// ParseMode maps a mode name to a Mode. Anything other than "interface" is dto.
func ParseMode(s string) Mode {
	if strings.EqualFold(strings.TrimSpace(s), string(ModeInterface)) {
		return ModeInterface
	}
	return ModeDTO
}

// Keyword returns the TypeScript keyword used for declarations in this mode.
func (m Mode) Keyword() string {
	if m == ModeInterface {
		return "interface"
	}
	return "class"
}

// IsDTO reports whether annotations are emitted.
func (m Mode) IsDTO() bool {
	return m != ModeInterface
}
