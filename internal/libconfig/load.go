package libconfig

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/Aakash-Pandya/lib-tools/internal/logging"
)

// ConfigFileName is the conventional name of the build configuration document.
const ConfigFileName = "libconfig.json"

const schemaURL = "libconfig.schema.json"

//go:embed schemas/libconfig.schema.json
var schemaSource []byte

// Document is a loaded, validated libconfig.json together with the location
// information every project needs.
type Document struct {
	Config        *LibConfig
	Path          string
	WorkspaceRoot string
}

// Loader reads and validates configuration documents. The compiled schema is
// owned by the Loader and built at most once; construct one Loader per process
// and pass it to every component that loads documents.
type Loader struct {
	logger *log.Logger

	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
}

// NewLoader returns a Loader with an empty schema cache.
func NewLoader() *Loader {
	return &Loader{logger: logging.New("libconfig")}
}

// Schema returns the compiled configuration schema, compiling it on first use.
func (l *Loader) Schema() (*jsonschema.Schema, error) {
	l.schemaOnce.Do(func() {
		l.logger.Debug("compiling configuration schema")
		c := jsonschema.NewCompiler()
		c.Draft = jsonschema.Draft7
		if err := c.AddResource(schemaURL, bytes.NewReader(schemaSource)); err != nil {
			l.schemaErr = fmt.Errorf("adding schema resource: %w", err)
			return
		}
		s, err := c.Compile(schemaURL)
		if err != nil {
			l.schemaErr = fmt.Errorf("compiling schema: %w", err)
			return
		}
		l.schema = s
	})
	return l.schema, l.schemaErr
}

// Load reads the document at path, validates it against the schema and the
// semantic rules, and returns it with its workspace root (the document's
// directory). Every schema violation is reported in one InvalidConfigError.
func (l *Loader) Load(path string) (*Document, error) {
	if path == "" {
		return nil, NewInvalidConfigError(nil, "The 'libConfigPath' parameter is required.")
	}
	if !strings.EqualFold(filepath.Ext(path), ".json") {
		return nil, NewInvalidConfigError(nil, "Invalid config file: %s.", path)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, NewInvalidConfigError(err, "Could not read config file: %s.", path)
	}

	l.logger.Debug("loading configuration", "path", abs)
	cfg, err := l.Parse(data)
	if err != nil {
		return nil, err
	}

	return &Document{
		Config:        cfg,
		Path:          abs,
		WorkspaceRoot: filepath.Dir(abs),
	}, nil
}

// Parse validates raw document bytes and decodes them into a LibConfig.
func (l *Loader) Parse(data []byte) (*LibConfig, error) {
	var raw any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, NewInvalidConfigError(err, "Invalid configuration, error: %v.", err)
	}

	schema, err := l.Schema()
	if err != nil {
		return nil, err
	}
	if err := schema.Validate(raw); err != nil {
		var verr *jsonschema.ValidationError
		if !errors.As(err, &verr) {
			return nil, fmt.Errorf("validating configuration: %w", err)
		}
		lines := FormatValidationError(verr)
		return nil, NewInvalidConfigError(err, "Invalid configuration.\n\n%s", strings.Join(lines, "\n"))
	}

	var cfg LibConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, NewInvalidConfigError(err, "Invalid configuration, error: %v.", err)
	}

	if result := Validate(&cfg); result.HasErrors() {
		return nil, result.Err()
	}
	return &cfg, nil
}

// FormatValidationError flattens a schema validation error tree into one
// line per leaf violation, in the order the validator reported them.
func FormatValidationError(verr *jsonschema.ValidationError) []string {
	var lines []string
	var walk func(e *jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			loc := e.InstanceLocation
			if loc == "" {
				loc = "/"
			}
			lines = append(lines, fmt.Sprintf("Configuration error at '%s': %s", loc, e.Message))
			return
		}
		for _, c := range e.Causes {
			walk(c)
		}
	}
	walk(verr)
	return lines
}

// FindConfigFile walks up from startDir looking for libconfig.json and returns
// its absolute path, or "" when none exists up to the filesystem root.
func FindConfigFile(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}
