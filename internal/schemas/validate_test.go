package schemas

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSchema = `{
	"type": "object",
	"required": ["name", "score"],
	"properties": {
		"name": {"type": "string"},
		"score": {"type": "number", "minimum": 0, "maximum": 1}
	}
}`

func TestValidateJSONString_Valid(t *testing.T) {
	err := ValidateJSONString(testSchema, `{"name": "x", "score": 0.5}`)
	assert.NoError(t, err)
}

func TestValidateJSONString_MissingField(t *testing.T) {
	err := ValidateJSONString(testSchema, `{"name": "x"}`)
	require.Error(t, err)

	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.NotEmpty(t, ve.Errors)
	assert.Contains(t, ve.Error(), "score")
}

func TestValidateJSONString_OutOfRange(t *testing.T) {
	err := ValidateJSONString(testSchema, `{"name": "x", "score": 1.5}`)
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
}

func TestValidateJSONString_MalformedDocument(t *testing.T) {
	err := ValidateJSONString(testSchema, `{not json`)
	require.Error(t, err)
}

func TestValidateJSONString_MalformedSchema(t *testing.T) {
	err := ValidateJSONString(`{"type": `, `{}`)
	var se *SchemaLoadError
	require.True(t, errors.As(err, &se))
}
