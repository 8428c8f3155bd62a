package hooks

import (
	"regexp"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/yanmxa/hookrun/internal/config"
	"github.com/yanmxa/hookrun/internal/event"
)

// Match returns the hooks whose filter accepts the event, preserving
// declaration order. Declaration order is the execution order, so it is
// a first-class guarantee of this function, not an accident.
func Match(hooks []config.Hook, ev event.Event) []config.Hook {
	var matched []config.Hook
	for _, h := range hooks {
		if Matches(h.Filter, ev) {
			matched = append(matched, h)
		}
	}
	return matched
}

// Matches reports whether the filter accepts the event's type and
// payload fields.
func Matches(f config.Filter, ev event.Event) bool {
	if !MatchesEventType(f.Events, ev.Type) {
		return false
	}
	for field, pattern := range f.Fields {
		value, ok := ev.Field(field)
		if !ok {
			return false
		}
		matched, err := doublestar.Match(pattern, value)
		if err != nil || !matched {
			return false
		}
	}
	return true
}

// MatchesEventType checks if a matcher pattern matches the event type.
// Empty or "*" matches everything. Matcher is regex-anchored at both
// ends; an invalid regex falls back to exact comparison.
func MatchesEventType(matcher, eventType string) bool {
	switch matcher {
	case "", "*":
		return true
	default:
		if re, err := regexp.Compile("^(" + matcher + ")$"); err == nil {
			return re.MatchString(eventType)
		}
		return matcher == eventType
	}
}
