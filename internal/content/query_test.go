package content

import (
	"testing"

	"github.com/google/uuid"
)

func planFixture() (*ContentType, []*ContentTypeField) {
	ct := &ContentType{ID: uuid.New(), Name: "product"}
	fields := []*ContentTypeField{
		{Name: "title", Type: FieldText, Translatable: true},
		{Name: "price", Type: FieldDecimal},
		{Name: "sku", Type: FieldText},
	}
	return ct, fields
}

func TestBuildPlanDefaults(t *testing.T) {
	ct, fields := planFixture()

	plan, err := BuildPlan(ct, fields, Query{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.Page != DefaultPage || plan.PageSize != DefaultPageSize {
		t.Fatalf("expected default pagination, got %d/%d", plan.Page, plan.PageSize)
	}
	if plan.ContentTypeID != ct.ID {
		t.Fatal("plan should carry the content type id")
	}
	if plan.WithTranslations {
		t.Fatal("no locale given, translations should not load")
	}
}

func TestBuildPlanLiteralEquality(t *testing.T) {
	ct, fields := planFixture()

	plan, err := BuildPlan(ct, fields, Query{Filters: map[string]any{"sku": "ABC-1"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(plan.Conditions) != 1 {
		t.Fatalf("expected one condition, got %d", len(plan.Conditions))
	}
	cond := plan.Conditions[0]
	if cond.Op != OpEq || cond.Value != "ABC-1" || cond.Ref.Document != DocumentBase {
		t.Fatalf("unexpected condition: %+v", cond)
	}
}

func TestBuildPlanOperatorDocument(t *testing.T) {
	ct, fields := planFixture()

	plan, err := BuildPlan(ct, fields, Query{Filters: map[string]any{
		"price": map[string]any{"$gte": 10, "$lte": 100},
	}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(plan.Conditions) != 2 {
		t.Fatalf("operators should AND into two conditions, got %d", len(plan.Conditions))
	}
	for _, cond := range plan.Conditions {
		if !cond.Ref.Numeric {
			t.Fatalf("price ref should be numeric: %+v", cond.Ref)
		}
		if _, ok := cond.Value.(float64); !ok {
			t.Fatalf("operator values should normalize to float64, got %T", cond.Value)
		}
	}
}

func TestBuildPlanRejectsUnknowns(t *testing.T) {
	ct, fields := planFixture()

	if _, err := BuildPlan(ct, fields, Query{Filters: map[string]any{"bogus": 1}}); err == nil {
		t.Fatal("unknown field should fail")
	}
	if _, err := BuildPlan(ct, fields, Query{Filters: map[string]any{
		"sku": map[string]any{"$like": "x"},
	}}); err == nil {
		t.Fatal("unknown operator should fail")
	}
	if _, err := BuildPlan(ct, fields, Query{Filters: map[string]any{
		"sku": map[string]any{"$in": "not-a-list"},
	}}); err == nil {
		t.Fatal("$in with a scalar should fail")
	}
	if _, err := BuildPlan(ct, fields, Query{Filters: map[string]any{
		"sku": map[string]any{"$null": "yes"},
	}}); err == nil {
		t.Fatal("$null with a non-boolean should fail")
	}
}

func TestBuildPlanTranslatableNeedsLocale(t *testing.T) {
	ct, fields := planFixture()

	_, err := BuildPlan(ct, fields, Query{Filters: map[string]any{"title": "Hello"}})
	if !IsValidationError(err) {
		t.Fatalf("filtering a translatable field without a locale should fail, got %v", err)
	}

	plan, err := BuildPlan(ct, fields, Query{
		Filters: map[string]any{"title": "Hello"},
		Locale:  "es",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !plan.NeedsTranslationJoin() {
		t.Fatal("translatable predicate should require the translation join")
	}
	if !plan.WithTranslations {
		t.Fatal("locale reads load translations")
	}
}

func TestBuildPlanSort(t *testing.T) {
	ct, fields := planFixture()

	plan, err := BuildPlan(ct, fields, Query{Sort: []string{"price:desc", "created_at"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(plan.Sorts) != 2 {
		t.Fatalf("expected two sort terms, got %d", len(plan.Sorts))
	}
	if !plan.Sorts[0].Desc || plan.Sorts[1].Desc {
		t.Fatalf("unexpected sort directions: %+v", plan.Sorts)
	}
	if plan.Sorts[1].Ref.Column != "created_at" {
		t.Fatalf("created_at should resolve to a native column: %+v", plan.Sorts[1].Ref)
	}

	if _, err := BuildPlan(ct, fields, Query{Sort: []string{"price:sideways"}}); err == nil {
		t.Fatal("bad sort direction should fail")
	}
}

func TestBuildPlanPublicationState(t *testing.T) {
	ct, fields := planFixture()

	plan, err := BuildPlan(ct, fields, Query{PublicationState: PublicationStateLive})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	found := false
	for _, cond := range plan.Conditions {
		if cond.Ref.Column == "status" && cond.Op == OpEq {
			found = true
		}
	}
	if !found {
		t.Fatal("live state should constrain status to published")
	}

	if _, err := BuildPlan(ct, fields, Query{PublicationState: "sorta"}); err == nil {
		t.Fatal("unknown publication state should fail")
	}
}

func TestBuildPlanPagination(t *testing.T) {
	ct, fields := planFixture()

	if _, err := BuildPlan(ct, fields, Query{Pagination: Pagination{Page: -1}}); err == nil {
		t.Fatal("negative page should fail")
	}
	if _, err := BuildPlan(ct, fields, Query{Pagination: Pagination{PageSize: -5}}); err == nil {
		t.Fatal("negative page size should fail")
	}

	plan, err := BuildPlan(ct, fields, Query{Pagination: Pagination{Page: 3, PageSize: 10}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.Page != 3 || plan.PageSize != 10 {
		t.Fatalf("pagination lost: %d/%d", plan.Page, plan.PageSize)
	}
}
