package ferr

import (
	"errors"
	"strings"
	"testing"

	"github.com/fusabi-lang/fusabi/internal/token"
)

func TestErrorMessagesIncludeKindAndDetail(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{&NameError{Name: "foo"}, `"foo" is not defined`},
		{&ArityError{Name: "bar", Want: 2, Got: 1}, "bar expects 2 argument(s), got 1"},
		{&StackOverflow{Depth: 1025, Limit: 1024}, "depth 1025 exceeds limit 1024"},
		{&MatchFailure{Subject: "x"}, "no arm matched x"},
		{&FormatError{Reason: "bad magic"}, "bad magic"},
	}
	for _, tc := range cases {
		if got := tc.err.Error(); !strings.Contains(got, tc.want) {
			t.Errorf("Error() = %q, want it to contain %q", got, tc.want)
		}
	}
}

func TestCircularLoadJoinsCycleWithArrows(t *testing.T) {
	err := &CircularLoad{Cycle: []string{"a", "b", "a"}}
	want := "circular load: a -> b -> a"
	if err.Error() != want {
		t.Fatalf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestHostErrorUnwrapsInnerError(t *testing.T) {
	inner := errors.New("division by zero")
	wrapped := &HostError{Span: token.Span{}, Name: "Array.get", Err: inner}

	if !errors.Is(wrapped, inner) {
		t.Fatalf("errors.Is did not see through HostError.Unwrap to the inner error")
	}
}
