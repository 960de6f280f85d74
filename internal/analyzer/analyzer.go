package analyzer

import (
	"encoding/json"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/mcncl/json2nest/internal/config"
	"github.com/mcncl/json2nest/internal/errors"
	"github.com/mcncl/json2nest/internal/logger"
	"github.com/mcncl/json2nest/internal/models"
)

// Unanchored on purpose: any string containing an ISO-8601 date-time counts.
var dateTimeRegex = regexp.MustCompile(`\d{4}-\d\d-\d\dT\d\d:\d\d:\d\d(\.\d+)?(\+\d\d:\d\d|Z)`)

// Analyzer walks a parsed document and builds the declaration tree.
//
// All state is reset by Analyze, so an Analyzer may be reused sequentially
// but must not be shared between goroutines.
type Analyzer struct {
	mode   models.Mode
	config *config.Config
	logger *zap.SugaredLogger

	// seen holds the shape of the last declaration emitted under each field name.
	// Only one shape is remembered per name.
	seen map[string]string
	// shapes maps a shape to the first declaration name emitted for it.
	shapes map[string]string
}

// NewAnalyzer creates a new Analyzer with the default configuration.
func NewAnalyzer(mode models.Mode) *Analyzer {
	return NewAnalyzerWithConfig(mode, config.NewConfig(), nil)
}

// NewAnalyzerWithConfig creates a new Analyzer with custom configuration.
// A nil logger disables logging.
func NewAnalyzerWithConfig(mode models.Mode, cfg *config.Config, log *zap.SugaredLogger) *Analyzer {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	return &Analyzer{
		mode:   mode,
		config: cfg,
		logger: logger.OrNop(log),
	}
}

// Analyze resolves every value of the document into declarations.
// The root declaration is named after the configured root name.
func (a *Analyzer) Analyze(ir models.IntermediateRepresentation) (models.AnalysisResult, error) {
	if ir.RootIsArray {
		return models.AnalysisResult{}, errors.NewAnalysisError(errors.TopLevelArrayMessage, errors.ErrTopLevelArray)
	}

	a.seen = make(map[string]string)
	a.shapes = make(map[string]string)

	root := &models.Declaration{Name: a.declarationName(a.config.RootName)}
	if obj, ok := ir.Root.(*models.JSONObject); ok {
		a.analyzeFields(root, obj)
	} else {
		ref := scalarRef(ir.Root, 0)
		root.Scalar = &ref
	}

	a.logger.Debugw("analysis complete",
		"mode", a.mode,
		"declarations", root.Count(),
	)

	return models.AnalysisResult{Mode: a.mode, Root: root}, nil
}

// analyzeFields resolves the members of decl in key order.
func (a *Analyzer) analyzeFields(decl *models.Declaration, obj *models.JSONObject) {
	decl.Fields = make([]models.FieldInfo, 0, obj.Len())
	for _, key := range obj.Keys() {
		val, _ := obj.Get(key)
		ref := a.resolve(decl, key, val, 0)

		field := models.FieldInfo{Key: key, Type: ref}
		if a.mode.IsDTO() {
			field.Annotations = a.annotations(key, val, ref)
		}
		decl.Fields = append(decl.Fields, field)
	}
}

// resolve determines the type of the value held by field. Arrays are
// represented by their first element.
func (a *Analyzer) resolve(parent *models.Declaration, field string, value models.JSONValue, arrayDepth int) models.TypeRef {
	switch v := value.(type) {
	case models.JSONArray:
		if len(v) == 0 {
			return models.TypeRef{Kind: models.EmptyArray, ArrayDepth: arrayDepth + 1}
		}
		return a.resolve(parent, field, v[0], arrayDepth+1)
	case *models.JSONObject:
		return a.resolveObject(parent, field, v, arrayDepth)
	default:
		return scalarRef(v, arrayDepth)
	}
}

// resolveObject names the object after its field and declares it unless an
// identical shape was already declared.
func (a *Analyzer) resolveObject(parent *models.Declaration, field string, obj *models.JSONObject, arrayDepth int) models.TypeRef {
	name := a.declarationName(field)
	shape := shapeOf(obj)

	if prev, ok := a.seen[field]; ok && prev == shape {
		a.logger.Debugw("shape already declared for field", "field", field, "name", name)
		return models.TypeRef{Kind: models.Reference, Name: name, ArrayDepth: arrayDepth}
	}
	if existing, ok := a.shapes[shape]; ok && existing != name {
		a.logger.Debugw("reusing declaration with identical shape", "field", field, "name", existing)
		return models.TypeRef{Kind: models.Reference, Name: existing, ArrayDepth: arrayDepth}
	}

	decl := &models.Declaration{Name: name}
	a.seen[field] = shape
	if _, ok := a.shapes[shape]; !ok {
		a.shapes[shape] = name
	}
	parent.Children = append(parent.Children, decl)

	a.analyzeFields(decl, obj)
	return models.TypeRef{Kind: models.Reference, Name: name, ArrayDepth: arrayDepth}
}

// annotations returns the class-validator lines for a DTO member.
func (a *Analyzer) annotations(field string, value models.JSONValue, ref models.TypeRef) []string {
	var out []string
	switch v := value.(type) {
	case nil:
	case string:
		if dateTimeRegex.MatchString(v) {
			out = []string{"@IsDateString()"}
		} else {
			out = []string{"@IsString()", "@IsNotEmpty()"}
		}
	case json.Number:
		out = []string{"@IsNumber()"}
	case bool:
		out = []string{"@IsBoolean()"}
	case models.JSONArray:
		out = []string{"@IsArray()", "@ValidateNested({ each: true })", "@Type(() => " + a.typeTarget(field, ref) + ")"}
	case *models.JSONObject:
		out = []string{"@ValidateNested()", "@Type(() => " + a.typeTarget(field, ref) + ")"}
	}
	return append(out, a.config.ExtraAnnotations(field)...)
}

// typeTarget is the class named in @Type(): the referenced declaration, or the
// field's own derived name when the value is not an object.
func (a *Analyzer) typeTarget(field string, ref models.TypeRef) string {
	if ref.Kind == models.Reference {
		return ref.Name
	}
	return a.declarationName(field)
}

func (a *Analyzer) declarationName(field string) string {
	name := a.config.DeclarationName(field)
	if a.mode.IsDTO() {
		name += a.config.Naming.DTOSuffix
	}
	return name
}

func scalarRef(value models.JSONValue, arrayDepth int) models.TypeRef {
	ref := models.TypeRef{Kind: models.Scalar, ArrayDepth: arrayDepth}
	switch value.(type) {
	case nil:
		ref.Kind = models.Null
		ref.Name = "{}"
	case string:
		ref.Name = "string"
	case json.Number:
		ref.Name = "number"
	case bool:
		ref.Name = "boolean"
	default:
		ref.Name = "{}"
	}
	return ref
}

// shapeOf returns an order-independent key for the object's field names.
func shapeOf(obj *models.JSONObject) string {
	keys := make([]string, obj.Len())
	copy(keys, obj.Keys())
	sort.Strings(keys)
	for i, k := range keys {
		keys[i] = strconv.Quote(k)
	}
	return strings.Join(keys, ",")
}
