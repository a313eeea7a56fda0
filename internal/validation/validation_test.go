package validation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type sampleInput struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Age   int    `json:"age" validate:"gte=18,lte=65"`
}

func TestCheckPasses(t *testing.T) {
	v := New()

	err := Check(v, sampleInput{Name: "Sara", Email: "sara@example.com", Age: 30})

	require.NoError(t, err)
}

func TestCheckReportsJSONFieldNames(t *testing.T) {
	v := New()

	err := Check(v, sampleInput{Email: "not-an-email", Age: 12})

	var fields FieldErrors
	require.ErrorAs(t, err, &fields)
	require.Equal(t, "is required", fields["name"])
	require.Equal(t, "must be a valid email address", fields["email"])
	require.Equal(t, "must be at least 18", fields["age"])
}

func TestFieldErrorsMessageIsStable(t *testing.T) {
	err := FieldErrors{"b": "is invalid", "a": "is required"}

	require.Equal(t, "validation failed: a: is required; b: is invalid", err.Error())
}

func TestValidateURL(t *testing.T) {
	require.NoError(t, ValidateURL("", "imageUrl"))
	require.NoError(t, ValidateURL("https://res.cloudinary.com/demo/image.png", "imageUrl"))

	err := ValidateURL("not a url", "imageUrl")
	var fields FieldErrors
	require.ErrorAs(t, err, &fields)
	require.Contains(t, fields, "imageUrl")

	require.Error(t, ValidateURL("ftp://example.com/file", "imageUrl"))
}
