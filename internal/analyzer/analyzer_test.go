package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/mcncl/json2nest/internal/config"
	"github.com/mcncl/json2nest/internal/errors"
	"github.com/mcncl/json2nest/internal/models"
	"github.com/mcncl/json2nest/internal/parser"
)

func analyze(t *testing.T, mode models.Mode, input string) *models.Declaration {
	t.Helper()
	ir, err := parser.ParseString(input)
	require.NoError(t, err)

	a := NewAnalyzerWithConfig(mode, config.NewConfig(), zaptest.NewLogger(t).Sugar())
	result, err := a.Analyze(ir)
	require.NoError(t, err)
	require.NotNil(t, result.Root)
	assert.Equal(t, mode, result.Mode)
	return result.Root
}

func scalar(name string) models.TypeRef {
	return models.TypeRef{Kind: models.Scalar, Name: name}
}

func TestAnalyze_SimpleObject(t *testing.T) {
	root := analyze(t, models.ModeInterface, `{"id": 1, "name": "x", "active": true, "gone": null, "score": 99.5}`)

	assert.Equal(t, "Parent", root.Name)
	assert.Nil(t, root.Scalar)
	assert.Empty(t, root.Children)
	assert.Equal(t, []models.FieldInfo{
		{Key: "id", Type: scalar("number")},
		{Key: "name", Type: scalar("string")},
		{Key: "active", Type: scalar("boolean")},
		{Key: "gone", Type: models.TypeRef{Kind: models.Null, Name: "{}"}},
		{Key: "score", Type: scalar("number")},
	}, root.Fields)
}

func TestAnalyze_RootName(t *testing.T) {
	tests := []struct {
		name     string
		mode     models.Mode
		rootName string
		expected string
	}{
		{name: "interface default", mode: models.ModeInterface, expected: "Parent"},
		{name: "dto default", mode: models.ModeDTO, expected: "ParentDto"},
		{name: "custom root", mode: models.ModeInterface, rootName: "order_line", expected: "OrderLine"},
		{name: "custom root dto", mode: models.ModeDTO, rootName: "Order", expected: "OrderDto"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.NewConfig()
			if tt.rootName != "" {
				cfg.RootName = tt.rootName
			}
			ir, err := parser.ParseString(`{"a": 1}`)
			require.NoError(t, err)

			result, err := NewAnalyzerWithConfig(tt.mode, cfg, nil).Analyze(ir)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result.Root.Name)
		})
	}
}

func TestAnalyze_NestedObjects(t *testing.T) {
	root := analyze(t, models.ModeInterface, `{
		"user_id": 123,
		"user_profile": {
			"full_name": "John Doe",
			"home_address": {"street": "123 Main St", "city": "Anytown"}
		},
		"settings": {"theme": "dark"}
	}`)

	require.Len(t, root.Children, 2)
	profile := root.Children[0]
	assert.Equal(t, "UserProfile", profile.Name)
	require.Len(t, profile.Children, 1)
	assert.Equal(t, "HomeAddress", profile.Children[0].Name)
	assert.Equal(t, "Settings", root.Children[1].Name)

	assert.Equal(t, models.TypeRef{Kind: models.Reference, Name: "UserProfile"}, root.Fields[1].Type)
	assert.Equal(t, models.TypeRef{Kind: models.Reference, Name: "HomeAddress"}, profile.Fields[1].Type)
	assert.Equal(t, 4, root.Count())
}

func TestAnalyze_Arrays(t *testing.T) {
	root := analyze(t, models.ModeInterface, `{
		"tags": ["a", "b"],
		"matrix": [[1, 2], [3]],
		"empty": [],
		"nested_empty": [[]],
		"holes": [null],
		"items": [{"id": 1}, {"id": 2, "extra": true}]
	}`)

	expected := []models.TypeRef{
		{Kind: models.Scalar, Name: "string", ArrayDepth: 1},
		{Kind: models.Scalar, Name: "number", ArrayDepth: 2},
		{Kind: models.EmptyArray, ArrayDepth: 1},
		{Kind: models.EmptyArray, ArrayDepth: 2},
		{Kind: models.Null, Name: "{}", ArrayDepth: 1},
		{Kind: models.Reference, Name: "Items", ArrayDepth: 1},
	}
	require.Len(t, root.Fields, len(expected))
	for i, want := range expected {
		assert.Equal(t, want, root.Fields[i].Type, root.Fields[i].Key)
	}

	// only the first element is inspected
	require.Len(t, root.Children, 1)
	items := root.Children[0]
	require.Len(t, items.Fields, 1)
	assert.Equal(t, "id", items.Fields[0].Key)
}

func TestAnalyze_ScalarRoot(t *testing.T) {
	tests := []struct {
		input    string
		expected models.TypeRef
	}{
		{input: `42`, expected: scalar("number")},
		{input: `"text"`, expected: scalar("string")},
		{input: `false`, expected: scalar("boolean")},
		{input: `null`, expected: models.TypeRef{Kind: models.Null, Name: "{}"}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			root := analyze(t, models.ModeInterface, tt.input)
			require.NotNil(t, root.Scalar)
			assert.Equal(t, tt.expected, *root.Scalar)
			assert.Empty(t, root.Fields)
		})
	}
}

func TestAnalyze_TopLevelArray(t *testing.T) {
	ir, err := parser.ParseString(`[1, 2, 3]`)
	require.NoError(t, err)

	_, err = NewAnalyzer(models.ModeInterface).Analyze(ir)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrTopLevelArray))
	assert.Equal(t, errors.TopLevelArrayMessage, errors.Message(err))

	var appErr *errors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, errors.ErrorTypeAnalysis, appErr.Type)
}

func TestAnalyze_Dedup(t *testing.T) {
	t.Run("identical shape under another field reuses the first name", func(t *testing.T) {
		root := analyze(t, models.ModeInterface, `{"a": {"x": 1, "y": 2}, "b": {"y": 4, "x": 3}}`)

		require.Len(t, root.Children, 1)
		assert.Equal(t, "A", root.Children[0].Name)
		assert.Equal(t, models.TypeRef{Kind: models.Reference, Name: "A"}, root.Fields[0].Type)
		assert.Equal(t, models.TypeRef{Kind: models.Reference, Name: "A"}, root.Fields[1].Type)
	})

	t.Run("same field and shape at different depths is declared once", func(t *testing.T) {
		root := analyze(t, models.ModeInterface, `{
			"owner": {"name": "a"},
			"repo": {"owner": {"name": "b"}}
		}`)

		require.Len(t, root.Children, 2)
		assert.Equal(t, "Owner", root.Children[0].Name)
		repo := root.Children[1]
		assert.Equal(t, "Repo", repo.Name)
		assert.Empty(t, repo.Children)
		assert.Equal(t, models.TypeRef{Kind: models.Reference, Name: "Owner"}, repo.Fields[0].Type)
	})

	t.Run("different shapes under one field name are both declared", func(t *testing.T) {
		root := analyze(t, models.ModeInterface, `{
			"first": {"meta": {"x": 1}, "p": 1},
			"second": {"meta": {"y": 1}, "q": 1}
		}`)

		require.Len(t, root.Children, 2)
		require.Len(t, root.Children[0].Children, 1)
		require.Len(t, root.Children[1].Children, 1)
		assert.Equal(t, "Meta", root.Children[0].Children[0].Name)
		assert.Equal(t, "Meta", root.Children[1].Children[0].Name)
	})

	t.Run("only the most recent shape per field name is remembered", func(t *testing.T) {
		root := analyze(t, models.ModeInterface, `{
			"one": {"meta": {"x": 1}, "a": 1},
			"two": {"meta": {"y": 1}, "b": 1},
			"three": {"meta": {"x": 2}, "c": 1}
		}`)

		require.Len(t, root.Children, 3)
		for _, child := range root.Children {
			require.Len(t, child.Children, 1, child.Name)
			assert.Equal(t, "Meta", child.Children[0].Name)
		}
		assert.Equal(t, 7, root.Count())
	})

	t.Run("state does not leak between calls", func(t *testing.T) {
		ir, err := parser.ParseString(`{"user_name": {"first": "a"}}`)
		require.NoError(t, err)

		a := NewAnalyzer(models.ModeInterface)
		first, err := a.Analyze(ir)
		require.NoError(t, err)
		second, err := a.Analyze(ir)
		require.NoError(t, err)
		assert.Equal(t, first, second)
		require.Len(t, second.Root.Children, 1)
		assert.Equal(t, "UserName", second.Root.Children[0].Name)
	})
}

func TestAnalyze_Naming(t *testing.T) {
	tests := []struct {
		name     string
		style    string
		mode     models.Mode
		field    string
		expected string
	}{
		{name: "single segment", style: config.NamingSegments, mode: models.ModeInterface, field: "address", expected: "Address"},
		{name: "underscore segments", style: config.NamingSegments, mode: models.ModeInterface, field: "billing_address_line", expected: "BillingAddressLine"},
		{name: "dto suffix", style: config.NamingSegments, mode: models.ModeDTO, field: "user_name", expected: "UserNameDto"},
		{name: "inner capitals kept", style: config.NamingSegments, mode: models.ModeInterface, field: "userName", expected: "UserName"},
		{name: "dashes kept with segments", style: config.NamingSegments, mode: models.ModeInterface, field: "user-name", expected: "User-name"},
		{name: "camel style", style: config.NamingCamel, mode: models.ModeInterface, field: "user-name", expected: "UserName"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.NewConfig()
			cfg.Naming.Style = tt.style
			ir, err := parser.ParseString(`{"` + tt.field + `": {"v": 1}}`)
			require.NoError(t, err)

			result, err := NewAnalyzerWithConfig(tt.mode, cfg, nil).Analyze(ir)
			require.NoError(t, err)
			require.Len(t, result.Root.Children, 1)
			assert.Equal(t, tt.expected, result.Root.Children[0].Name)
		})
	}
}

func TestAnalyze_Annotations(t *testing.T) {
	root := analyze(t, models.ModeDTO, `{
		"created_at": "2023-01-01T00:00:00Z",
		"updated": "at 2023-01-01T00:00:00.123+02:00 sharp",
		"name": "x",
		"count": 3,
		"ok": true,
		"nothing": null,
		"tags": ["a"],
		"items": [{"id": 1}],
		"owner": {"login": "x"}
	}`)

	expected := map[string][]string{
		"created_at": {"@IsDateString()"},
		"updated":    {"@IsDateString()"},
		"name":       {"@IsString()", "@IsNotEmpty()"},
		"count":      {"@IsNumber()"},
		"ok":         {"@IsBoolean()"},
		"nothing":    nil,
		"tags":       {"@IsArray()", "@ValidateNested({ each: true })", "@Type(() => TagsDto)"},
		"items":      {"@IsArray()", "@ValidateNested({ each: true })", "@Type(() => ItemsDto)"},
		"owner":      {"@ValidateNested()", "@Type(() => OwnerDto)"},
	}

	require.Len(t, root.Fields, len(expected))
	for _, f := range root.Fields {
		assert.Equal(t, expected[f.Key], f.Annotations, f.Key)
	}
}

func TestAnalyze_AnnotationsFollowReusedName(t *testing.T) {
	root := analyze(t, models.ModeDTO, `{"a": {"x": 1}, "b": [{"x": 2}]}`)

	require.Len(t, root.Children, 1)
	assert.Equal(t, []string{"@IsArray()", "@ValidateNested({ each: true })", "@Type(() => ADto)"}, root.Fields[1].Annotations)
	assert.Equal(t, models.TypeRef{Kind: models.Reference, Name: "ADto", ArrayDepth: 1}, root.Fields[1].Type)
}

func TestAnalyze_InterfaceModeHasNoAnnotations(t *testing.T) {
	root := analyze(t, models.ModeInterface, `{"name": "x", "items": [{"id": 1}]}`)
	for _, f := range root.Fields {
		assert.Empty(t, f.Annotations, f.Key)
	}
}

func TestAnalyze_ConfiguredRules(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Validation.Rules = []config.ValidationRule{
		{Pattern: "(?i)email$", Annotation: "@IsEmail()"},
		{Pattern: "^id$", Annotation: "@IsPositive()"},
	}
	require.NoError(t, cfg.Validate())

	ir, err := parser.ParseString(`{"id": 1, "contact_email": "a@b.c", "name": "x"}`)
	require.NoError(t, err)

	dto, err := NewAnalyzerWithConfig(models.ModeDTO, cfg, nil).Analyze(ir)
	require.NoError(t, err)
	assert.Equal(t, []string{"@IsNumber()", "@IsPositive()"}, dto.Root.Fields[0].Annotations)
	assert.Equal(t, []string{"@IsString()", "@IsNotEmpty()", "@IsEmail()"}, dto.Root.Fields[1].Annotations)
	assert.Equal(t, []string{"@IsString()", "@IsNotEmpty()"}, dto.Root.Fields[2].Annotations)

	iface, err := NewAnalyzerWithConfig(models.ModeInterface, cfg, nil).Analyze(ir)
	require.NoError(t, err)
	assert.Empty(t, iface.Root.Fields[1].Annotations)
}
