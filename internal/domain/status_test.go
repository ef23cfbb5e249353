package domain_test

import (
	"errors"
	"testing"

	"github.com/goliatone/go-sitekit/internal/domain"
)

func TestParseStatus(t *testing.T) {
	cases := []struct {
		input string
		want  domain.Status
		ok    bool
	}{
		{"draft", domain.StatusDraft, true},
		{" Published ", domain.StatusPublished, true},
		{"ARCHIVED", domain.StatusArchived, true},
		{"scheduled", "", false},
		{"", "", false},
	}

	for _, tc := range cases {
		got, err := domain.ParseStatus(tc.input)
		if tc.ok {
			if err != nil {
				t.Fatalf("parse %q: %v", tc.input, err)
			}
			if got != tc.want {
				t.Fatalf("parse %q: expected %q got %q", tc.input, tc.want, got)
			}
			continue
		}
		var unknown *domain.UnknownStatusError
		if !errors.As(err, &unknown) {
			t.Fatalf("parse %q: expected UnknownStatusError got %v", tc.input, err)
		}
	}
}

func TestTransitionTable(t *testing.T) {
	allowed := [][2]domain.Status{
		{domain.StatusDraft, domain.StatusPublished},
		{domain.StatusPublished, domain.StatusDraft},
		{domain.StatusDraft, domain.StatusArchived},
		{domain.StatusPublished, domain.StatusArchived},
		{domain.StatusDraft, domain.StatusDraft},
		{domain.StatusArchived, domain.StatusArchived},
	}
	for _, pair := range allowed {
		if err := domain.Transition(pair[0], pair[1]); err != nil {
			t.Fatalf("expected %s -> %s to be legal: %v", pair[0], pair[1], err)
		}
	}

	blocked := [][2]domain.Status{
		{domain.StatusArchived, domain.StatusDraft},
		{domain.StatusArchived, domain.StatusPublished},
	}
	for _, pair := range blocked {
		err := domain.Transition(pair[0], pair[1])
		var te *domain.TransitionError
		if !errors.As(err, &te) {
			t.Fatalf("expected TransitionError for %s -> %s, got %v", pair[0], pair[1], err)
		}
		if te.From != pair[0] || te.To != pair[1] {
			t.Fatalf("transition error carries %s -> %s, expected %s -> %s", te.From, te.To, pair[0], pair[1])
		}
	}
}
