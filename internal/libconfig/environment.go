package libconfig

import (
	"strconv"
	"strings"
)

// Environment maps build flag names to values. Values are either bool or
// string; strings that spell a boolean are normalized to bool.
type Environment map[string]any

// Truthy reports whether name is set to a true value: boolean true, or any
// non-empty string other than "false" and "0".
func (e Environment) Truthy(name string) bool {
	v, ok := e[name]
	if !ok {
		return false
	}
	switch val := v.(type) {
	case bool:
		return val
	case string:
		s := strings.TrimSpace(val)
		return s != "" && !strings.EqualFold(s, "false") && s != "0"
	default:
		return v != nil
	}
}

// Clone returns a shallow copy of e.
func (e Environment) Clone() Environment {
	out := make(Environment, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

// NormalizeEnvironment turns raw flag values into an Environment and applies
// the convenience aliases: prod/production and dev/development mirror each
// other, and the two modes are mutually exclusive. prod, when non-nil, is an
// explicit mode switch that takes precedence over raw; otherwise production
// wins if both modes are present.
func NormalizeEnvironment(raw map[string]any, prod *bool) Environment {
	env := make(Environment, len(raw)+4)
	for k, v := range raw {
		key := strings.TrimSpace(k)
		if key == "" {
			continue
		}
		env[key] = normalizeValue(v)
	}

	isProd := env.Truthy("prod") || env.Truthy("production")
	isDev := env.Truthy("dev") || env.Truthy("development")
	if prod != nil {
		isProd = *prod
		if isProd {
			isDev = false
		}
	}

	switch {
	case isProd:
		setMode(env, true)
	case isDev:
		setMode(env, false)
	case prod != nil:
		// Explicit --prod=false without a dev flag only clears production.
		env["prod"] = false
		env["production"] = false
	}
	return env
}

// ParseEnvironmentString parses "prod,ci=false,target=es5" style input into
// raw flag values. Bare names are true.
func ParseEnvironmentString(s string) map[string]any {
	raw := map[string]any{}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, value, hasValue := strings.Cut(part, "=")
		if !hasValue {
			raw[key] = true
			continue
		}
		raw[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return raw
}

func setMode(env Environment, production bool) {
	env["prod"] = production
	env["production"] = production
	env["dev"] = !production
	env["development"] = !production
}

func normalizeValue(v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
		return b
	}
	return s
}
