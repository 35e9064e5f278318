package goksql

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	loggerinternal "github.com/fbiengine/goksql/internal/logger"
)

// report fails the test when msg is set. Failure messages go through the secret masker, so
// credentials used by the tests never reach the output.
func report(t *testing.T, fatal bool, msg string, descriptions []string) {
	t.Helper()
	if msg == "" {
		return
	}
	msg = loggerinternal.MaskSecrets(strings.TrimSpace(msg + " " + strings.Join(descriptions, " ")))
	if fatal {
		t.Fatal(msg)
	}
	t.Error(msg)
}

func isNil(value any) bool {
	if value == nil {
		return true
	}
	switch v := reflect.ValueOf(value); v.Kind() {
	case reflect.Pointer, reflect.Slice, reflect.Map, reflect.Interface, reflect.Func, reflect.Chan:
		return v.IsNil()
	}
	return false
}

func nilMsg(actual any) string {
	if isNil(actual) {
		return ""
	}
	return fmt.Sprintf("expected nil, got %v.", actual)
}

func notNilMsg(actual any) string {
	if !isNil(actual) {
		return ""
	}
	return "expected a non-nil value."
}

func equalMsg(actual, expected any) string {
	if actual == expected {
		return ""
	}
	return fmt.Sprintf("expected %q, got %q.", fmt.Sprint(expected), fmt.Sprint(actual))
}

func assertNilE(t *testing.T, actual any, descriptions ...string) {
	t.Helper()
	report(t, false, nilMsg(actual), descriptions)
}

func assertNilF(t *testing.T, actual any, descriptions ...string) {
	t.Helper()
	report(t, true, nilMsg(actual), descriptions)
}

func assertNotNilE(t *testing.T, actual any, descriptions ...string) {
	t.Helper()
	report(t, false, notNilMsg(actual), descriptions)
}

func assertNotNilF(t *testing.T, actual any, descriptions ...string) {
	t.Helper()
	report(t, true, notNilMsg(actual), descriptions)
}

func assertEqualE(t *testing.T, actual, expected any, descriptions ...string) {
	t.Helper()
	report(t, false, equalMsg(actual, expected), descriptions)
}

func assertEqualF(t *testing.T, actual, expected any, descriptions ...string) {
	t.Helper()
	report(t, true, equalMsg(actual, expected), descriptions)
}

func assertNotEqualE(t *testing.T, actual, expected any, descriptions ...string) {
	t.Helper()
	if actual == expected {
		report(t, false, fmt.Sprintf("expected a value other than %v.", expected), descriptions)
	}
}

func assertDeepEqualE(t *testing.T, actual, expected any, descriptions ...string) {
	t.Helper()
	if !reflect.DeepEqual(actual, expected) {
		report(t, false, fmt.Sprintf("expected %#v, got %#v.", expected, actual), descriptions)
	}
}

func assertTrueE(t *testing.T, actual bool, descriptions ...string) {
	t.Helper()
	report(t, false, equalMsg(actual, true), descriptions)
}

func assertTrueF(t *testing.T, actual bool, descriptions ...string) {
	t.Helper()
	report(t, true, equalMsg(actual, true), descriptions)
}

func assertFalseE(t *testing.T, actual bool, descriptions ...string) {
	t.Helper()
	report(t, false, equalMsg(actual, false), descriptions)
}

func assertErrIsE(t *testing.T, actual, expected error, descriptions ...string) {
	t.Helper()
	if !errors.Is(actual, expected) {
		report(t, false, fmt.Sprintf("expected error %v to match %v.", actual, expected), descriptions)
	}
}

func assertErrorsAsF(t *testing.T, err error, target any, descriptions ...string) {
	t.Helper()
	if !errors.As(err, target) {
		report(t, true, fmt.Sprintf("expected error %v to be a %v.", err, reflect.TypeOf(target).Elem()), descriptions)
	}
}

func assertStringContainsE(t *testing.T, actual, expected string, descriptions ...string) {
	t.Helper()
	if !strings.Contains(actual, expected) {
		report(t, false, fmt.Sprintf("expected %q to contain %q.", actual, expected), descriptions)
	}
}

func assertHasPrefixE(t *testing.T, actual, prefix string, descriptions ...string) {
	t.Helper()
	if !strings.HasPrefix(actual, prefix) {
		report(t, false, fmt.Sprintf("expected %q to start with %q.", actual, prefix), descriptions)
	}
}

func assertEmptyE[T any](t *testing.T, actual []T, descriptions ...string) {
	t.Helper()
	if len(actual) != 0 {
		report(t, false, fmt.Sprintf("expected no elements, got %v.", actual), descriptions)
	}
}
