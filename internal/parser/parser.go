package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mcncl/json2nest/internal/errors"
	"github.com/mcncl/json2nest/internal/models"
)

// Parse converts JSON data from an io.Reader into an IntermediateRepresentation
func Parse(reader io.Reader) (models.IntermediateRepresentation, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return models.IntermediateRepresentation{}, errors.NewInputError("failed to read JSON input", err)
	}
	return ParseBytes(data)
}

// ParseBytes parses a single JSON document. Object keys keep their document
// order and numbers are kept as json.Number, so 3.0 stays a distinct literal.
func ParseBytes(data []byte) (models.IntermediateRepresentation, error) {
	// json.Unmarshal checks the whole input before decoding anything, which
	// gives us the standard library's own message for every syntax problem,
	// including empty input and trailing data.
	var raw json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		cause := errors.ErrInvalidJSON
		if strings.HasSuffix(err.Error(), "after top-level value") {
			cause = errors.ErrMultipleJSON
		}
		return models.IntermediateRepresentation{}, errors.NewParsingError(err.Error(), cause)
	}

	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()

	rootValue, err := decodeValue(decoder)
	if err != nil {
		return models.IntermediateRepresentation{}, errors.NewParsingError(err.Error(), errors.ErrInvalidJSON)
	}

	ir := models.IntermediateRepresentation{
		Root: rootValue,
	}
	if _, ok := rootValue.(models.JSONArray); ok {
		ir.RootIsArray = true
	}

	return ir, nil
}

// decodeValue reads the next complete value from the token stream.
func decodeValue(decoder *json.Decoder) (models.JSONValue, error) {
	tok, err := decoder.Token()
	if err != nil {
		return nil, err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return decodeObject(decoder)
		case '[':
			return decodeArray(decoder)
		default:
			return nil, fmt.Errorf("unexpected delimiter %q", t)
		}
	default:
		// nil, bool, json.Number and string are used as-is
		return t, nil
	}
}

func decodeObject(decoder *json.Decoder) (models.JSONValue, error) {
	obj := models.NewJSONObject()
	for decoder.More() {
		keyTok, err := decoder.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("object key must be a string, got %T", keyTok)
		}
		value, err := decodeValue(decoder)
		if err != nil {
			return nil, err
		}
		obj.Set(key, value)
	}
	// consume the closing '}'
	if _, err := decoder.Token(); err != nil {
		return nil, err
	}
	return obj, nil
}

func decodeArray(decoder *json.Decoder) (models.JSONValue, error) {
	arr := make(models.JSONArray, 0)
	for decoder.More() {
		value, err := decodeValue(decoder)
		if err != nil {
			return nil, err
		}
		arr = append(arr, value)
	}
	// consume the closing ']'
	if _, err := decoder.Token(); err != nil {
		return nil, err
	}
	return arr, nil
}

// ParseString parses JSON from a string
func ParseString(jsonString string) (models.IntermediateRepresentation, error) {
	return ParseBytes([]byte(jsonString))
}

// ParseFile parses JSON from a file path
func ParseFile(filePath string) (models.IntermediateRepresentation, error) {
	data, err := ReadFile(filePath)
	if err != nil {
		return models.IntermediateRepresentation{}, err
	}
	return ParseBytes(data)
}

// ReadFile reads a JSON input file, reporting missing and empty files as input errors.
func ReadFile(filePath string) ([]byte, error) {
	if strings.TrimSpace(filePath) == "" {
		return nil, errors.NewInputError("file path is empty", errors.ErrInvalidFilePath)
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewInputError(
				fmt.Sprintf("file '%s' not found", filePath),
				errors.ErrFileNotFound,
			)
		}
		return nil, errors.NewInputError(
			fmt.Sprintf("failed to open file '%s'", filePath),
			err,
		)
	}
	if len(data) == 0 {
		return nil, errors.NewInputError(
			fmt.Sprintf("input file '%s' is empty", filePath),
			errors.ErrFileEmpty,
		)
	}
	return data, nil
}
