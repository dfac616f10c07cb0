package harness

import (
	"bytes"
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/roach88/otioremap/internal/canon"
	"github.com/roach88/otioremap/internal/store"
)

// AssertionError represents a failed assertion with detailed context.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	return fmt.Sprintf("assertion %s failed: expected %s, got %s", e.Type, e.Expected, e.Actual)
}

// matchSubset checks that actual contains every field of expected. Nested
// objects are matched the same way; everything else must be equal after
// canonical JSON encoding, so 10, 10.0 and int64(10) all compare equal.
// It returns the dotted path of the first mismatching field.
func matchSubset(actual, expected map[string]any) (string, bool) {
	for _, key := range canon.SortedKeys(expected) {
		actualVal, exists := actual[key]
		if !exists {
			return key, false
		}
		if path, ok := valuesMatch(actualVal, expected[key]); !ok {
			if path == "" {
				return key, false
			}
			return key + "." + path, false
		}
	}
	return "", true
}

func valuesMatch(actual, expected any) (string, bool) {
	if expMap, ok := expected.(map[string]any); ok {
		actMap, ok := asMap(actual)
		if !ok {
			return "", false
		}
		return matchSubset(actMap, expMap)
	}

	actualJSON, err := canon.MarshalCanonical(actual)
	if err != nil {
		return "", false
	}
	expectedJSON, err := canon.MarshalCanonical(expected)
	if err != nil {
		return "", false
	}
	return "", bytes.Equal(actualJSON, expectedJSON)
}

// asMap accepts plain maps and named string-keyed map types such as
// otio.Metadata.
func asMap(v any) (map[string]any, bool) {
	if m, ok := v.(map[string]any); ok {
		return m, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	m := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		m[iter.Key().String()] = iter.Value().Interface()
	}
	return m, true
}

// describe renders a value for error messages.
func describe(v any) string {
	data, err := canon.MarshalCanonical(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}

// lookupPath returns the value at a dotted path, or nil.
func lookupPath(m map[string]any, path string) any {
	var cur any = m
	for _, part := range strings.Split(path, ".") {
		obj, ok := asMap(cur)
		if !ok {
			return nil
		}
		cur = obj[part]
	}
	return cur
}

// assertShotRecorded checks that a shot with the given name was recorded in
// one of the sessions and that its stored data contains the expected fields.
// Stored data has been through canonical JSON, so this also checks that
// the instance survives the ledger round trip.
func assertShotRecorded(ctx context.Context, st *store.Store, sessions []string, assertion Assertion) error {
	for _, sessionID := range sessions {
		shots, err := st.ReadShots(ctx, sessionID)
		if err != nil {
			return fmt.Errorf("read shots: %w", err)
		}
		for _, shot := range shots {
			if shot.Name != assertion.Shot {
				continue
			}
			if path, ok := matchSubset(shot.Data, assertion.Expect); !ok {
				return &AssertionError{
					Type:     AssertShotRecorded,
					Expected: fmt.Sprintf("%s.%s = %s", assertion.Shot, path, describe(lookupPath(assertion.Expect, path))),
					Actual:   describe(lookupPath(shot.Data, path)),
				}
			}
			return nil
		}
	}
	return &AssertionError{
		Type:     AssertShotRecorded,
		Expected: fmt.Sprintf("shot %q in ledger", assertion.Shot),
		Actual:   "shot not found",
	}
}

// assertShotCount checks the number of shots recorded across all sessions.
func assertShotCount(ctx context.Context, st *store.Store, sessions []string, assertion Assertion) error {
	count := 0
	for _, sessionID := range sessions {
		shots, err := st.ReadShots(ctx, sessionID)
		if err != nil {
			return fmt.Errorf("read shots: %w", err)
		}
		count += len(shots)
	}

	if count != assertion.Count {
		return &AssertionError{
			Type:     AssertShotCount,
			Expected: fmt.Sprintf("%d shots", assertion.Count),
			Actual:   fmt.Sprintf("%d shots", count),
		}
	}
	return nil
}

// assertClipSkipped checks that a clip was skipped, with the expected code
// when one is given.
func assertClipSkipped(ctx context.Context, st *store.Store, sessions []string, assertion Assertion) error {
	for _, sessionID := range sessions {
		skipped, err := st.ReadSkippedClips(ctx, sessionID)
		if err != nil {
			return fmt.Errorf("read skipped clips: %w", err)
		}
		for _, sc := range skipped {
			if sc.Clip != assertion.Shot {
				continue
			}
			if assertion.Code != "" && sc.Code != assertion.Code {
				return &AssertionError{
					Type:     AssertClipSkipped,
					Expected: fmt.Sprintf("%s skipped with %s", assertion.Shot, assertion.Code),
					Actual:   fmt.Sprintf("skipped with %s: %s", sc.Code, sc.Message),
				}
			}
			return nil
		}
	}
	return &AssertionError{
		Type:     AssertClipSkipped,
		Expected: fmt.Sprintf("clip %q skipped", assertion.Shot),
		Actual:   "clip not skipped",
	}
}

// AssertionContext provides the ledger that assertions query.
type AssertionContext struct {
	Store    *store.Store
	Ctx      context.Context
	Sessions []string
}

// EvaluateAssertions evaluates all assertions against the ledger.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(assertions []Assertion, actx *AssertionContext) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		if actx == nil || actx.Store == nil {
			err = fmt.Errorf("assertion[%d]: %s requires a ledger", i, assertion.Type)
		} else {
			switch assertion.Type {
			case AssertShotRecorded:
				err = assertShotRecorded(actx.Ctx, actx.Store, actx.Sessions, assertion)
			case AssertShotCount:
				err = assertShotCount(actx.Ctx, actx.Store, actx.Sessions, assertion)
			case AssertClipSkipped:
				err = assertClipSkipped(actx.Ctx, actx.Store, actx.Sessions, assertion)
			default:
				err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
			}
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
