// internal/core/scope/scope_test.go
package scope

import (
	"errors"
	"testing"

	"reconweave/internal/core/value"
	"reconweave/internal/testutil"
)

func TestScope_Filtering(t *testing.T) {
	s, err := New([]value.Value{value.Must(value.NewHost("example.com"))}, nil)
	testutil.RequireNoError(t, err, "new scope")

	testutil.AssertTrue(t, s.Includes(value.Must(value.NewHost("example.com"))), "seed itself")
	testutil.AssertFalse(t, s.Includes(value.Must(value.NewHost("other.com"))), "other host excluded")
	testutil.AssertTrue(t, s.Includes(value.Must(value.NewURL("https://unrelated.org/x"))), "uncategorized passes")
	testutil.AssertTrue(t, s.Includes(value.Must(value.NewIP("10.0.0.1"))), "empty ip bucket allows")
}

func TestScope_DomainAndRanges(t *testing.T) {
	s, err := New([]value.Value{
		value.Must(value.NewDomain("example.com")),
		value.Must(value.NewWildcard("*.example.net")),
		value.Must(value.NewIPRange("10.0.0.0/16")),
	}, nil)
	testutil.RequireNoError(t, err, "new scope")

	tests := []struct {
		v    value.Value
		want bool
	}{
		{value.Must(value.NewHost("www.example.com")), true},
		{value.Must(value.NewNameserver("ns1.example.com")), true},
		{value.Must(value.NewHost("api.example.net")), true},
		{value.Must(value.NewHost("example.org")), false},
		{value.Must(value.NewWildcard("*.example.com")), true},
		{value.Must(value.NewWildcard("*.example.org")), false},
		{value.Must(value.NewIP("10.0.5.5")), true},
		{value.Must(value.NewIP("192.168.0.1")), false},
		{value.Must(value.NewIPRange("10.0.1.0/24")), true},
		{value.Must(value.NewOpenPort("192.168.0.1", 80, value.PortInfo{})), true},
	}
	for _, tt := range tests {
		t.Run(tt.v.String(), func(t *testing.T) {
			testutil.AssertEqual(t, s.Includes(tt.v), tt.want, "includes")
		})
	}
}

func TestScope_IgnoreWins(t *testing.T) {
	s, err := New(
		[]value.Value{value.Must(value.NewDomain("example.com"))},
		[]value.Value{
			value.Must(value.NewHost("admin.example.com")),
			value.Must(value.NewURL("https://example.com/logout")),
		},
	)
	testutil.RequireNoError(t, err, "new scope")

	testutil.AssertFalse(t, s.Includes(value.Must(value.NewHost("admin.example.com"))), "ignored host")
	testutil.AssertTrue(t, s.Includes(value.Must(value.NewHost("www.example.com"))), "sibling kept")
	testutil.AssertFalse(t, s.Includes(value.Must(value.NewURL("https://example.com/logout"))), "ignored uncategorized")
	testutil.AssertTrue(t, s.Includes(value.Must(value.NewURL("https://example.com/login"))), "other url kept")
}

func TestScope_UnsupportedSeed(t *testing.T) {
	_, err := New([]value.Value{value.Must(value.NewURL("https://example.com"))}, nil)
	testutil.AssertTrue(t, errors.Is(err, ErrUnsupportedScopeValue), "url seed rejected")

	_, err = New(nil, nil)
	testutil.AssertNoError(t, err, "empty scope is valid")
}

func TestCategoryOf(t *testing.T) {
	testutil.AssertEqual(t, CategoryOf(value.Must(value.NewMailserver("mx.example.com"))), HostLike, "mailserver")
	testutil.AssertEqual(t, CategoryOf(value.Must(value.NewIPRange("10.*.*.*"))), IPLike, "range")
	testutil.AssertEqual(t, CategoryOf(value.Must(value.NewEmailAddress("a@example.com"))), Uncategorized, "email")
	testutil.AssertEqual(t, HostLike.String(), "host", "string")
}
