package catalog

import (
	"bufio"
	"os"
	"strconv"
	"strings"
)

// Config is the full set of options from spec.md §6, loaded from the
// environment, an optional properties file, or set directly by a caller
// building one programmatically (see NewConfig's zero-value defaults).
type Config struct {
	CatalogFiles []string
	Additions    []string

	PreferPropertyFile bool
	AlwaysResolve      bool
	ParseRDDL          bool
	URIForSystem       bool
	MergeHTTPS         bool
	MaskJarURIs        bool

	AccessExternalEntity   string
	AccessExternalDocument string

	FixWindowsSystemIdentifiers bool
	ThrowURIExceptions          bool
}

// env var names, one per Config field, per SPEC_FULL.md §6 EXPANSION.
const (
	envCatalogFiles     = "XML_CATALOG_FILES"
	envAdditions        = "XML_CATALOG_ADDITIONS"
	envPreferPropFile   = "XML_CATALOG_PREFER_PROPERTY_FILE"
	envAlwaysResolve    = "XML_CATALOG_ALWAYS_RESOLVE"
	envParseRDDL        = "XML_CATALOG_PARSE_RDDL"
	envURIForSystem     = "XML_CATALOG_URI_FOR_SYSTEM"
	envMergeHTTPS       = "XML_CATALOG_MERGE_HTTPS"
	envMaskJarURIs      = "XML_CATALOG_MASK_JAR_URIS"
	envAccessEntity     = "XML_CATALOG_ACCESS_EXTERNAL_ENTITY"
	envAccessDocument   = "XML_CATALOG_ACCESS_EXTERNAL_DOCUMENT"
	envFixWindowsSysIDs = "XML_CATALOG_FIX_WINDOWS_SYSTEM_IDENTIFIERS"
	envThrowURIExc      = "XML_CATALOG_THROW_URI_EXCEPTIONS"
)

// NewConfig returns a Config with spec.md §6's documented defaults:
// RDDL parsing and URI-for-system fallback on, https/http kept distinct,
// jar URIs unmasked, full access to external entities and documents.
func NewConfig() *Config {
	return &Config{
		ParseRDDL:              true,
		URIForSystem:           true,
		AccessExternalEntity:   "all",
		AccessExternalDocument: "all",
	}
}

// LoadEnv overlays environment variables onto c, for options actually set
// in the environment.
func (c *Config) LoadEnv() {
	c.applyEnv(envCatalogFiles, func(v string) { c.CatalogFiles = splitList(v) })
	c.applyEnv(envAdditions, func(v string) { c.Additions = splitList(v) })
	c.applyEnv(envPreferPropFile, func(v string) { c.PreferPropertyFile = parseBool(v) })
	c.applyEnv(envAlwaysResolve, func(v string) { c.AlwaysResolve = parseBool(v) })
	c.applyEnv(envParseRDDL, func(v string) { c.ParseRDDL = parseBool(v) })
	c.applyEnv(envURIForSystem, func(v string) { c.URIForSystem = parseBool(v) })
	c.applyEnv(envMergeHTTPS, func(v string) { c.MergeHTTPS = parseBool(v) })
	c.applyEnv(envMaskJarURIs, func(v string) { c.MaskJarURIs = parseBool(v) })
	c.applyEnv(envAccessEntity, func(v string) { c.AccessExternalEntity = v })
	c.applyEnv(envAccessDocument, func(v string) { c.AccessExternalDocument = v })
	c.applyEnv(envFixWindowsSysIDs, func(v string) { c.FixWindowsSystemIdentifiers = parseBool(v) })
	c.applyEnv(envThrowURIExc, func(v string) { c.ThrowURIExceptions = parseBool(v) })
}

func (c *Config) applyEnv(name string, set func(string)) {
	if v, ok := os.LookupEnv(name); ok {
		set(v)
	}
}

// LoadPropertiesFile overlays key=value settings from an ini-flavored
// properties file (# comments, blank lines skipped) onto c. Whether this
// wins over an already-applied LoadEnv call is the caller's choice, driven
// by PreferPropertyFile (see LoadAll).
func (c *Config) LoadPropertiesFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	props := map[string]string{}
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		k, v, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		props[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	if err := sc.Err(); err != nil {
		return err
	}

	apply := map[string]func(string){
		envCatalogFiles:     func(v string) { c.CatalogFiles = splitList(v) },
		envAdditions:        func(v string) { c.Additions = splitList(v) },
		envPreferPropFile:   func(v string) { c.PreferPropertyFile = parseBool(v) },
		envAlwaysResolve:    func(v string) { c.AlwaysResolve = parseBool(v) },
		envParseRDDL:        func(v string) { c.ParseRDDL = parseBool(v) },
		envURIForSystem:     func(v string) { c.URIForSystem = parseBool(v) },
		envMergeHTTPS:       func(v string) { c.MergeHTTPS = parseBool(v) },
		envMaskJarURIs:      func(v string) { c.MaskJarURIs = parseBool(v) },
		envAccessEntity:     func(v string) { c.AccessExternalEntity = v },
		envAccessDocument:   func(v string) { c.AccessExternalDocument = v },
		envFixWindowsSysIDs: func(v string) { c.FixWindowsSystemIdentifiers = parseBool(v) },
		envThrowURIExc:      func(v string) { c.ThrowURIExceptions = parseBool(v) },
	}
	for k, v := range props {
		if set, ok := apply[k]; ok {
			set(v)
		}
	}
	return nil
}

// LoadAll applies env and, if propertiesPath is non-empty, the properties
// file, in the precedence order PreferPropertyFile selects. Default (false)
// is env-wins, matching most resolver config precedence in the wild; this
// was an Open Question in spec.md §9, decided and recorded in DESIGN.md.
func (c *Config) LoadAll(propertiesPath string) error {
	c.LoadEnv() // baseline; may itself set PreferPropertyFile
	if propertiesPath == "" {
		return nil
	}
	if c.PreferPropertyFile {
		return c.LoadPropertiesFile(propertiesPath) // file applied last, file wins
	}
	if err := c.LoadPropertiesFile(propertiesPath); err != nil {
		return err
	}
	c.LoadEnv() // re-apply so env still wins over the file
	return nil
}

func (c *Config) normalizer() NormalizeFunc { return Normalizer(c.MergeHTTPS) }

// splitList splits a catalog-files-style list on the platform path list
// separator (":" on unix, ";" on windows), matching XML_CATALOG_FILES'
// CLASSPATH-like convention.
func splitList(v string) []string {
	fields := strings.Split(v, string(os.PathListSeparator))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

func parseBool(v string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	return err == nil && b
}
