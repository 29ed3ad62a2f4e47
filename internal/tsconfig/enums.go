package tsconfig

import (
	"fmt"
	"strings"
)

// ScriptTarget is the compiler's output language level. Values are ordered so
// that comparisons like t >= TargetES2015 hold.
type ScriptTarget int

// Script targets, numbered the way the compiler numbers them.
const (
	TargetES3    ScriptTarget = 0
	TargetES5    ScriptTarget = 1
	TargetES2015 ScriptTarget = 2
	TargetES2016 ScriptTarget = 3
	TargetES2017 ScriptTarget = 4
	TargetES2018 ScriptTarget = 5
	TargetES2019 ScriptTarget = 6
	TargetES2020 ScriptTarget = 7
	TargetES2021 ScriptTarget = 8
	TargetES2022 ScriptTarget = 9
	TargetES2023 ScriptTarget = 10
	TargetES2024 ScriptTarget = 11
	TargetESNext ScriptTarget = 99

	// TargetLatest is an alias for the newest supported level.
	TargetLatest = TargetESNext
)

// DefaultScriptTarget applies when neither the entry nor the compiler
// configuration names a target.
const DefaultScriptTarget = TargetES2017

var scriptTargetNames = map[string]ScriptTarget{
	"es3":    TargetES3,
	"es5":    TargetES5,
	"es6":    TargetES2015,
	"es2015": TargetES2015,
	"es2016": TargetES2016,
	"es2017": TargetES2017,
	"es2018": TargetES2018,
	"es2019": TargetES2019,
	"es2020": TargetES2020,
	"es2021": TargetES2021,
	"es2022": TargetES2022,
	"es2023": TargetES2023,
	"es2024": TargetES2024,
	"esnext": TargetESNext,
	"latest": TargetLatest,
}

// ParseScriptTarget maps a target string such as "ES2015" or "esnext" to its
// enum value. Matching is case-insensitive.
func ParseScriptTarget(s string) (ScriptTarget, bool) {
	t, ok := scriptTargetNames[strings.ToLower(strings.TrimSpace(s))]
	return t, ok
}

func (t ScriptTarget) String() string {
	switch t {
	case TargetES3:
		return "ES3"
	case TargetES5:
		return "ES5"
	case TargetESNext:
		return "ESNext"
	}
	if t >= TargetES2015 && t <= TargetES2024 {
		return fmt.Sprintf("ES%d", 2015+int(t-TargetES2015))
	}
	return fmt.Sprintf("ScriptTarget(%d)", int(t))
}

// MarshalText renders the target by name in JSON and YAML plans.
func (t ScriptTarget) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// ModuleKind is the module system the compiler emits.
type ModuleKind int

// Module kinds, numbered the way the compiler numbers them.
const (
	ModuleNone     ModuleKind = 0
	ModuleCommonJS ModuleKind = 1
	ModuleAMD      ModuleKind = 2
	ModuleUMD      ModuleKind = 3
	ModuleSystem   ModuleKind = 4
	ModuleES2015   ModuleKind = 5
	ModuleES2020   ModuleKind = 6
	ModuleES2022   ModuleKind = 7
	ModuleESNext   ModuleKind = 99
	ModuleNode16   ModuleKind = 100
	ModuleNode18   ModuleKind = 101
	ModuleNodeNext ModuleKind = 199
	ModulePreserve ModuleKind = 200
)

var moduleKindNames = map[string]ModuleKind{
	"none":     ModuleNone,
	"commonjs": ModuleCommonJS,
	"amd":      ModuleAMD,
	"umd":      ModuleUMD,
	"system":   ModuleSystem,
	"es6":      ModuleES2015,
	"es2015":   ModuleES2015,
	"es2020":   ModuleES2020,
	"es2022":   ModuleES2022,
	"esnext":   ModuleESNext,
	"node16":   ModuleNode16,
	"node18":   ModuleNode18,
	"nodenext": ModuleNodeNext,
	"preserve": ModulePreserve,
}

// ParseModuleKind maps a module string such as "CommonJS" to its enum value.
// Matching is case-insensitive.
func ParseModuleKind(s string) (ModuleKind, bool) {
	m, ok := moduleKindNames[strings.ToLower(strings.TrimSpace(s))]
	return m, ok
}

func (m ModuleKind) String() string {
	switch m {
	case ModuleNone:
		return "None"
	case ModuleCommonJS:
		return "CommonJS"
	case ModuleAMD:
		return "AMD"
	case ModuleUMD:
		return "UMD"
	case ModuleSystem:
		return "System"
	case ModuleES2015:
		return "ES2015"
	case ModuleES2020:
		return "ES2020"
	case ModuleES2022:
		return "ES2022"
	case ModuleESNext:
		return "ESNext"
	case ModuleNode16:
		return "Node16"
	case ModuleNode18:
		return "Node18"
	case ModuleNodeNext:
		return "NodeNext"
	case ModulePreserve:
		return "Preserve"
	}
	return fmt.Sprintf("ModuleKind(%d)", int(m))
}

// MarshalText renders the module kind by name in JSON and YAML plans.
func (m ModuleKind) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}
