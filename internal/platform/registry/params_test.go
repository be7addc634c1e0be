// internal/platform/registry/params_test.go
package registry

import (
	"testing"
	"time"

	"reconweave/internal/testutil"
)

func TestStringParam(t *testing.T) {
	params := map[string]any{"command": "/usr/bin/probe", "empty": "", "number": 3}

	testutil.AssertEqual(t, StringParam(params, "command", "x"), "/usr/bin/probe", "present")
	testutil.AssertEqual(t, StringParam(params, "empty", "x"), "x", "empty falls back")
	testutil.AssertEqual(t, StringParam(params, "number", "x"), "x", "wrong type")
	testutil.AssertEqual(t, StringParam(nil, "command", "x"), "x", "nil map")
}

func TestIntParam(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		want int
	}{
		{"int from yaml", 10, 10},
		{"float from json", float64(20), 20},
		{"int64", int64(30), 30},
		{"numeric string from env", "40", 40},
		{"garbage", "many", 7},
		{"missing", nil, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := map[string]any{}
			if tt.raw != nil {
				params["n"] = tt.raw
			}
			testutil.AssertEqual(t, IntParam(params, "n", 7), tt.want, "int param")
		})
	}
}

func TestDurationParam(t *testing.T) {
	params := map[string]any{"a": "250ms", "b": 2, "c": 1.5, "d": time.Minute, "e": "later"}

	testutil.AssertEqual(t, DurationParam(params, "a", 0), 250*time.Millisecond, "string")
	testutil.AssertEqual(t, DurationParam(params, "b", 0), 2*time.Second, "int seconds")
	testutil.AssertEqual(t, DurationParam(params, "c", 0), 1500*time.Millisecond, "float seconds")
	testutil.AssertEqual(t, DurationParam(params, "d", 0), time.Minute, "duration")
	testutil.AssertEqual(t, DurationParam(params, "e", time.Second), time.Second, "invalid falls back")
}

func TestSliceParams(t *testing.T) {
	params := map[string]any{
		"args":  []any{"-json", "-silent"},
		"mixed": []any{"-json", 3},
		"ports": []any{80, float64(8080), "8000"},
	}

	testutil.AssertSameStrings(t, StringsParam(params, "args", nil), []string{"-json", "-silent"}, "strings")
	testutil.AssertLen(t, StringsParam(params, "mixed", []string{"d"}), 1, "mixed falls back")

	ports := IntsParam(params, "ports", nil)
	testutil.AssertLen(t, ports, 3, "ints")
	testutil.AssertEqual(t, ports[1], 8080, "float converted")
}

func TestBoolAndFloatParams(t *testing.T) {
	params := map[string]any{"on": true, "off": "false", "rate": 2, "burst": "0.5"}

	testutil.AssertTrue(t, BoolParam(params, "on", false), "bool")
	testutil.AssertFalse(t, BoolParam(params, "off", true), "string bool")
	testutil.AssertEqual(t, FloatParam(params, "rate", 0), 2.0, "int to float")
	testutil.AssertEqual(t, FloatParam(params, "burst", 0), 0.5, "string float")
}

func TestValidators(t *testing.T) {
	testutil.AssertError(t, ValidateRequiredString("command", ""), "required")
	testutil.AssertNoError(t, ValidateRequiredString("command", "probe"), "present")
	testutil.AssertError(t, ValidatePositiveInt("max_hosts", 0), "zero")
	testutil.AssertNoError(t, ValidatePositiveInt("max_hosts", 1), "positive")
	testutil.AssertError(t, ValidateEnum("mode", "loud", []string{"quiet", "raw"}), "enum")
	testutil.AssertNoError(t, ValidateEnum("mode", "raw", []string{"quiet", "raw"}), "enum ok")
}
