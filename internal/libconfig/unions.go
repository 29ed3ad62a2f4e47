package libconfig

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Toggle is a "bool or options object" field. A JSON boolean sets Enabled and
// leaves Options nil; an object sets Enabled and Options.
type Toggle[T any] struct {
	Enabled bool
	Options *T
}

// On returns an enabled Toggle carrying opts.
func On[T any](opts *T) *Toggle[T] {
	return &Toggle[T]{Enabled: true, Options: opts}
}

// Off returns a disabled Toggle.
func Off[T any]() *Toggle[T] {
	return &Toggle[T]{}
}

func (t *Toggle[T]) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		t.Enabled = b
		t.Options = nil
		return nil
	}
	var opts T
	if err := json.Unmarshal(data, &opts); err != nil {
		return err
	}
	t.Enabled = true
	t.Options = &opts
	return nil
}

func (t Toggle[T]) MarshalJSON() ([]byte, error) {
	if t.Options != nil {
		return json.Marshal(t.Options)
	}
	return json.Marshal(t.Enabled)
}

// AssetEntry is one copy instruction. The JSON form is either a bare source
// pattern or an object.
type AssetEntry struct {
	From    string   `json:"from"`
	To      string   `json:"to,omitempty"`
	Exclude []string `json:"exclude,omitempty"`
}

func (a *AssetEntry) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*a = AssetEntry{From: s}
		return nil
	}
	type plain AssetEntry
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*a = AssetEntry(p)
	return nil
}

// CopySetting is the copy block: false disables copying, true keeps the
// default README/LICENSE copy, an array lists explicit assets.
type CopySetting struct {
	Enabled bool
	Assets  []AssetEntry
}

func (c *CopySetting) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*c = CopySetting{Enabled: b}
		return nil
	}
	var assets []AssetEntry
	if err := json.Unmarshal(data, &assets); err != nil {
		return fmt.Errorf("copy must be a boolean or an array: %w", err)
	}
	*c = CopySetting{Enabled: true, Assets: assets}
	return nil
}

func (c CopySetting) MarshalJSON() ([]byte, error) {
	if c.Assets != nil {
		return json.Marshal(c.Assets)
	}
	return json.Marshal(c.Enabled)
}

// ExternalEntry is either a module name or an object mapping module names to
// global names (or per-format global maps).
type ExternalEntry struct {
	Module  string
	Mapping map[string]any
}

// Names returns the module names this entry marks as external.
func (e ExternalEntry) Names() []string {
	if e.Module != "" {
		return []string{e.Module}
	}
	names := make([]string, 0, len(e.Mapping))
	for k := range e.Mapping {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func (e *ExternalEntry) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*e = ExternalEntry{Module: s}
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("externals entry must be a string or an object: %w", err)
	}
	*e = ExternalEntry{Mapping: m}
	return nil
}

func (e ExternalEntry) MarshalJSON() ([]byte, error) {
	if e.Module != "" {
		return json.Marshal(e.Module)
	}
	return json.Marshal(e.Mapping)
}

// Externals accepts a single entry or an array of entries.
type Externals []ExternalEntry

func (x *Externals) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var entries []ExternalEntry
		if err := json.Unmarshal(trimmed, &entries); err != nil {
			return err
		}
		*x = entries
		return nil
	}
	var single ExternalEntry
	if err := json.Unmarshal(trimmed, &single); err != nil {
		return err
	}
	*x = Externals{single}
	return nil
}

// Names flattens every entry's module names, preserving first occurrence order.
func (x Externals) Names() []string {
	var names []string
	seen := make(map[string]bool)
	for _, e := range x {
		for _, n := range e.Names() {
			if !seen[n] {
				seen[n] = true
				names = append(names, n)
			}
		}
	}
	return names
}

// EnvOverride is one named partial BuildAction.
type EnvOverride struct {
	Name   string
	Action BuildAction
}

// EnvOverrides is the envOverrides object with its key order preserved.
type EnvOverrides []EnvOverride

func (o *EnvOverrides) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("envOverrides must be an object")
	}

	var out EnvOverrides
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("envOverrides: unexpected key token %v", keyTok)
		}
		var action BuildAction
		if err := dec.Decode(&action); err != nil {
			return fmt.Errorf("envOverrides.%s: %w", key, err)
		}
		out = append(out, EnvOverride{Name: key, Action: action})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*o = out
	return nil
}

func (o EnvOverrides) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, ov := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(ov.Name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(ov.Action)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
