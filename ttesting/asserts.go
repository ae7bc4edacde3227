// Package ttesting contains small assertion helpers shared by the tests.
package ttesting

import (
	"image/color"
	"reflect"
	"testing"

	"github.com/pkg/errors"
)

func AssertEqualInt(t *testing.T, name string, got, want int) {
	t.Helper()
	t.Run(name, func(t *testing.T) {
		if got != want {
			t.Errorf("got %d; want %d", got, want)
		}
	})
}

func AssertEqualRGBA(t *testing.T, name string, got, want color.RGBA) {
	t.Helper()
	t.Run(name, func(t *testing.T) {
		if got != want {
			t.Errorf("got %+v; want %+v", got, want)
		}
	})
}

// AssertTransparent checks that a pixel decoded from palette index 0 is
// fully transparent, whatever RGB it carries.
func AssertTransparent(t *testing.T, name string, got color.RGBA) {
	t.Helper()
	t.Run(name, func(t *testing.T) {
		if got.A != 0 {
			t.Errorf("got alpha %d; want 0", got.A)
		}
	})
}

// AssertErrorType checks that errors.Cause(err) has the same dynamic type
// as want.
func AssertErrorType(t *testing.T, name string, err error, want interface{}) {
	t.Helper()
	t.Run(name, func(t *testing.T) {
		if err == nil {
			t.Fatalf("got nil error; want %T", want)
		}
		if got := reflect.TypeOf(errors.Cause(err)); got != reflect.TypeOf(want) {
			t.Errorf("got error %T (%v); want %T", errors.Cause(err), err, want)
		}
	})
}

// AssertCause checks that errors.Cause(err) is want.
func AssertCause(t *testing.T, name string, err, want error) {
	t.Helper()
	t.Run(name, func(t *testing.T) {
		if got := errors.Cause(err); got != want {
			t.Errorf("got cause %v; want %v", got, want)
		}
	})
}
