package hooks

import (
	"testing"

	"github.com/yanmxa/hookrun/internal/config"
	"github.com/yanmxa/hookrun/internal/event"
)

func TestMatchesEventType(t *testing.T) {
	tests := []struct {
		name      string
		matcher   string
		eventType string
		want      bool
	}{
		{"empty matcher matches everything", "", "anything", true},
		{"wildcard matcher matches everything", "*", "anything", true},
		{"exact match", "task.created", "task.created", true},
		{"exact match fails", "task.created", "task.closed", false},
		{"regex or pattern", "task\\.created|task\\.closed", "task.closed", true},
		{"regex or pattern fails", "task\\.created|task\\.closed", "feature.started", false},
		{"regex prefix", "task\\..*", "task.created", true},
		{"regex prefix fails", "task\\..*", "subtask.created", false},
		{"invalid regex falls back to exact", "[invalid", "[invalid", true},
		{"invalid regex fails", "[invalid", "other", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MatchesEventType(tt.matcher, tt.eventType)
			if got != tt.want {
				t.Errorf("MatchesEventType(%q, %q) = %v, want %v", tt.matcher, tt.eventType, got, tt.want)
			}
		})
	}
}

func TestMatchesFieldGlobs(t *testing.T) {
	ev := event.New("task.created", map[string]any{
		"feature": "auth-login",
		"count":   3,
	})

	tests := []struct {
		name   string
		filter config.Filter
		want   bool
	}{
		{"no filter", config.Filter{}, true},
		{"field glob matches", config.Filter{Fields: map[string]string{"feature": "auth-*"}}, true},
		{"field glob fails", config.Filter{Fields: map[string]string{"feature": "billing-*"}}, false},
		{"alternation glob", config.Filter{Fields: map[string]string{"feature": "{auth-login,auth-logout}"}}, true},
		{"missing field fails", config.Filter{Fields: map[string]string{"task": "*"}}, false},
		{"non-string field matched by string form", config.Filter{Fields: map[string]string{"count": "3"}}, true},
		{"all fields must match", config.Filter{Fields: map[string]string{"feature": "auth-*", "count": "9"}}, false},
		{"type and fields", config.Filter{Events: "task\\..*", Fields: map[string]string{"feature": "auth-*"}}, true},
		{"type mismatch wins", config.Filter{Events: "release\\..*", Fields: map[string]string{"feature": "auth-*"}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Matches(tt.filter, ev); got != tt.want {
				t.Errorf("Matches(%+v) = %v, want %v", tt.filter, got, tt.want)
			}
		})
	}
}

func TestMatchPreservesDeclarationOrder(t *testing.T) {
	hooks := []config.Hook{
		{Name: "third", Filter: config.Filter{Events: "task\\..*"}},
		{Name: "skipped", Filter: config.Filter{Events: "release\\..*"}},
		{Name: "first", Filter: config.Filter{}},
		{Name: "second", Filter: config.Filter{Events: "task.created"}},
	}
	ev := event.New("task.created", nil)

	matched := Match(hooks, ev)
	if len(matched) != 3 {
		t.Fatalf("expected 3 matched hooks, got %d", len(matched))
	}

	want := []string{"third", "first", "second"}
	for i, name := range want {
		if matched[i].Name != name {
			t.Errorf("matched[%d] = %q, want %q", i, matched[i].Name, name)
		}
	}
}
