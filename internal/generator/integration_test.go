package generator

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcncl/json2nest/internal/analyzer"
	"github.com/mcncl/json2nest/internal/config"
	"github.com/mcncl/json2nest/internal/models"
	"github.com/mcncl/json2nest/internal/parser"
)

func generate(t *testing.T, mode models.Mode, cfg *config.Config, input string) string {
	t.Helper()
	ir, err := parser.ParseString(input)
	require.NoError(t, err)

	result, err := analyzer.NewAnalyzerWithConfig(mode, cfg, nil).Analyze(ir)
	require.NoError(t, err)

	code, err := NewGenerator().Generate(result)
	require.NoError(t, err)
	return code
}

func TestIntegration_ParserAnalyzerGenerator(t *testing.T) {
	input := `{
		"user_id": 123,
		"username": "johndoe",
		"is_active": true,
		"user_profile": {
			"full_name": "John Doe",
			"email": "john.doe@example.com"
		}
	}`

	expected := `export interface Parent {
  user_id: number;
  username: string;
  is_active: boolean;
  user_profile: UserProfile;
}

export interface UserProfile {
  full_name: string;
  email: string;
}
`
	assert.Equal(t, expected, generate(t, models.ModeInterface, config.NewConfig(), input))
}

func TestIntegration_ArrayOfObjectsDTO(t *testing.T) {
	input := `{"items": [{"id": 1, "created_at": "2023-01-01T00:00:00Z"}], "total": 1}`

	expected := `export class ParentDto {
  @IsArray()
  @ValidateNested({ each: true })
  @Type(() => ItemsDto)
  items: ItemsDto[];

  @IsNumber()
  total: number;
}

export class ItemsDto {
  @IsNumber()
  id: number;

  @IsDateString()
  created_at: string;
}
`
	assert.Equal(t, expected, generate(t, models.ModeDTO, config.NewConfig(), input))
}

func TestIntegration_DeepNestingFlushOrder(t *testing.T) {
	input := `{"a": {"b": {"c": {"d": 1}}}, "e": {"f": 2}}`

	expected := `export interface Parent {
  a: A;
  e: E;
}

export interface C {
  d: number;
}

export interface B {
  c: C;
}

export interface A {
  b: B;
}

export interface E {
  f: number;
}
`
	assert.Equal(t, expected, generate(t, models.ModeInterface, config.NewConfig(), input))
}

func TestIntegration_CustomRootAndCamelNaming(t *testing.T) {
	cfg := config.NewConfig()
	cfg.RootName = "Order"
	cfg.Naming.Style = config.NamingCamel

	input := `{"line-items": [{"sku": "x"}]}`

	expected := `export interface Order {
  line-items: LineItems[];
}

export interface LineItems {
  sku: string;
}
`
	assert.Equal(t, expected, generate(t, models.ModeInterface, cfg, input))
}

func TestIntegration_SampleFile(t *testing.T) {
	if _, err := os.Stat("../../testdata/samples/user.json"); os.IsNotExist(err) {
		t.Skip("sample file not found")
	}

	ir, err := parser.ParseFile("../../testdata/samples/user.json")
	require.NoError(t, err)

	result, err := analyzer.NewAnalyzer(models.ModeInterface).Analyze(ir)
	require.NoError(t, err)

	code, err := NewGenerator().Generate(result)
	require.NoError(t, err)
	assert.Contains(t, code, "export interface Parent {\n")
}
