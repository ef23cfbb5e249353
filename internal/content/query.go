package content

import (
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/goliatone/go-sitekit/internal/domain"
)

// PublicationState narrows reads by lifecycle status.
type PublicationState string

const (
	// PublicationStateLive restricts results to published entries.
	PublicationStateLive PublicationState = "live"
	// PublicationStatePreview returns entries regardless of status.
	PublicationStatePreview PublicationState = "preview"
)

// Query is the declarative read surface shared by Find, FindOne and Count.
//
// Filters map a field name to either a literal (equality) or an operator
// document such as {"$gte": 10, "$lte": 100}; multiple operators on one
// field are ANDed. Sort terms use the "field:asc" / "field:desc" shape.
type Query struct {
	Filters          map[string]any   `json:"filters,omitempty"`
	Sort             []string         `json:"sort,omitempty"`
	Pagination       Pagination       `json:"pagination,omitempty"`
	Locale           string           `json:"locale,omitempty"`
	PublicationState PublicationState `json:"publicationState,omitempty"`
}

// Pagination selects a result window. Zero values fall back to the defaults.
type Pagination struct {
	Page     int `json:"page,omitempty"`
	PageSize int `json:"pageSize,omitempty"`
}

const (
	DefaultPage     = 1
	DefaultPageSize = 25
)

// Filter operators.
const (
	OpEq          = "$eq"
	OpNe          = "$ne"
	OpIn          = "$in"
	OpNotIn       = "$notIn"
	OpGt          = "$gt"
	OpGte         = "$gte"
	OpLt          = "$lt"
	OpLte         = "$lte"
	OpContains    = "$contains"
	OpNotContains = "$notContains"
	OpStartsWith  = "$startsWith"
	OpEndsWith    = "$endsWith"
	OpNull        = "$null"
)

var knownOperators = map[string]struct{}{
	OpEq: {}, OpNe: {}, OpIn: {}, OpNotIn: {},
	OpGt: {}, OpGte: {}, OpLt: {}, OpLte: {},
	OpContains: {}, OpNotContains: {}, OpStartsWith: {}, OpEndsWith: {},
	OpNull: {},
}

// Document identifies which stored document a field reference addresses.
type Document string

const (
	DocumentBase        Document = "base"
	DocumentTranslation Document = "translation"
)

// FieldRef resolves a query field name to its storage location: either an
// entry-native column or a key inside one of the JSON documents.
type FieldRef struct {
	Column   string
	Document Document
	Name     string
	Numeric  bool
}

// Condition is one storage predicate of a compiled query plan.
type Condition struct {
	Ref   FieldRef
	Op    string
	Value any
}

// SortTerm orders results by one field reference.
type SortTerm struct {
	Ref  FieldRef
	Desc bool
}

// QueryPlan is the storage-agnostic compilation of a Query against a content
// type's field registry. Both the bun and the in-memory repositories consume
// it.
type QueryPlan struct {
	ContentTypeID    uuid.UUID
	Locale           string
	Conditions       []Condition
	Sorts            []SortTerm
	Page             int
	PageSize         int
	WithTranslations bool
}

// NeedsTranslationJoin reports whether any predicate or sort addresses the
// translation document.
func (p QueryPlan) NeedsTranslationJoin() bool {
	for _, cond := range p.Conditions {
		if cond.Ref.Document == DocumentTranslation {
			return true
		}
	}
	for _, sort := range p.Sorts {
		if sort.Ref.Document == DocumentTranslation {
			return true
		}
	}
	return false
}

// entryColumns are the entry-native columns addressable from the query
// language without going through a document path.
var entryColumns = map[string]FieldRef{
	"id":           {Column: "id"},
	"status":       {Column: "status"},
	"created_at":   {Column: "created_at"},
	"updated_at":   {Column: "updated_at"},
	"published_at": {Column: "published_at"},
}

// BuildPlan compiles a Query into storage predicates using the content
// type's field definitions. Validation failures surface as ValidationErrors
// keyed by the offending field or option name.
func BuildPlan(contentType *ContentType, fields []*ContentTypeField, q Query) (QueryPlan, error) {
	plan := QueryPlan{
		ContentTypeID: contentType.ID,
		Locale:        strings.TrimSpace(q.Locale),
		Page:          q.Pagination.Page,
		PageSize:      q.Pagination.PageSize,
	}

	if plan.Page == 0 {
		plan.Page = DefaultPage
	}
	if plan.PageSize == 0 {
		plan.PageSize = DefaultPageSize
	}
	if plan.Page < 1 {
		return plan, fieldError("pagination.page", "validation_pagination", "page must be >= 1")
	}
	if plan.PageSize < 1 {
		return plan, fieldError("pagination.pageSize", "validation_pagination", "pageSize must be >= 1")
	}

	byName := make(map[string]*ContentTypeField, len(fields))
	for _, field := range fields {
		byName[field.Name] = field
	}

	errs := validation.Errors{}

	for name, raw := range q.Filters {
		ref, err := resolveFieldRef(name, byName, plan.Locale)
		if err != nil {
			errs[name] = err
			continue
		}
		conds, err := buildConditions(ref, raw)
		if err != nil {
			errs[name] = err
			continue
		}
		plan.Conditions = append(plan.Conditions, conds...)
	}

	for _, term := range q.Sort {
		name, desc, err := parseSortTerm(term)
		if err != nil {
			errs[term] = err
			continue
		}
		ref, err := resolveFieldRef(name, byName, plan.Locale)
		if err != nil {
			errs[name] = err
			continue
		}
		plan.Sorts = append(plan.Sorts, SortTerm{Ref: ref, Desc: desc})
	}

	switch q.PublicationState {
	case "", PublicationStatePreview:
	case PublicationStateLive:
		plan.Conditions = append(plan.Conditions, Condition{
			Ref:   entryColumns["status"],
			Op:    OpEq,
			Value: string(domain.StatusPublished),
		})
	default:
		errs["publicationState"] = validation.NewError("validation_publication_state", fmt.Sprintf("unknown publication state %q", q.PublicationState))
	}

	if len(errs) > 0 {
		return plan, errs
	}

	plan.WithTranslations = plan.Locale != ""
	return plan, nil
}

func resolveFieldRef(name string, fields map[string]*ContentTypeField, locale string) (FieldRef, error) {
	if ref, ok := entryColumns[name]; ok {
		return ref, nil
	}
	field, ok := fields[name]
	if !ok {
		return FieldRef{}, validation.NewError("validation_unknown_field", fmt.Sprintf("%s is not a queryable field", name))
	}
	ref := FieldRef{
		Document: DocumentBase,
		Name:     field.Name,
		Numeric:  field.Type.IsNumeric(),
	}
	if field.Translatable {
		if locale == "" {
			return FieldRef{}, validation.NewError("validation_locale_required", fmt.Sprintf("%s is translatable; addressing it requires a locale", name))
		}
		ref.Document = DocumentTranslation
	}
	return ref, nil
}

func buildConditions(ref FieldRef, raw any) ([]Condition, error) {
	operators, ok := raw.(map[string]any)
	if !ok {
		// Bare literal means equality.
		return []Condition{{Ref: ref, Op: OpEq, Value: normalizeValue(raw)}}, nil
	}

	conds := make([]Condition, 0, len(operators))
	for op, value := range operators {
		if _, known := knownOperators[op]; !known {
			return nil, validation.NewError("validation_unknown_operator", fmt.Sprintf("unknown filter operator %q", op))
		}
		switch op {
		case OpIn, OpNotIn:
			values, err := toSlice(value)
			if err != nil {
				return nil, err
			}
			conds = append(conds, Condition{Ref: ref, Op: op, Value: values})
		case OpNull:
			flag, ok := value.(bool)
			if !ok {
				return nil, validation.NewError("validation_operator_value", "$null expects a boolean")
			}
			conds = append(conds, Condition{Ref: ref, Op: op, Value: flag})
		case OpContains, OpNotContains, OpStartsWith, OpEndsWith:
			text, ok := value.(string)
			if !ok {
				return nil, validation.NewError("validation_operator_value", fmt.Sprintf("%s expects a string", op))
			}
			conds = append(conds, Condition{Ref: ref, Op: op, Value: text})
		default:
			conds = append(conds, Condition{Ref: ref, Op: op, Value: normalizeValue(value)})
		}
	}
	return conds, nil
}

func toSlice(value any) ([]any, error) {
	switch typed := value.(type) {
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = normalizeValue(item)
		}
		return out, nil
	case []string:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = item
		}
		return out, nil
	default:
		return nil, validation.NewError("validation_operator_value", "$in/$notIn expect an array")
	}
}

func parseSortTerm(term string) (string, bool, error) {
	trimmed := strings.TrimSpace(term)
	if trimmed == "" {
		return "", false, validation.NewError("validation_sort", "empty sort term")
	}
	name := trimmed
	desc := false
	if idx := strings.IndexByte(trimmed, ':'); idx >= 0 {
		name = trimmed[:idx]
		switch strings.ToLower(trimmed[idx+1:]) {
		case "asc":
		case "desc":
			desc = true
		default:
			return "", false, validation.NewError("validation_sort", fmt.Sprintf("sort direction must be asc or desc in %q", term))
		}
	}
	return name, desc, nil
}
