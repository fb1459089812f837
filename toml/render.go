package toml

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mvil/nox"
	"github.com/pelletier/go-toml/v2"
)

const customSourcesExample = `
# Additional sources. Format may be docbook, xhtml, builtins or auto.
#
# [[custom_sources]]
# id = "nixvim"
# name = "Nixvim"
# url = "https://nix-community.github.io/nixvim/options.html"
# format = "auto"
# version = "subtitle-or-title"
`

// DefaultConfig renders every recognized option with its default value as
// a commented configuration file.
func DefaultConfig() string {
	var buf bytes.Buffer
	buf.WriteString("# nox configuration\n")

	table := ""
	for _, opt := range nox.ConfigOptions() {
		tbl, key := splitKey(opt.Key)
		if tbl != table {
			fmt.Fprintf(&buf, "\n[%s]\n", tbl)
			table = tbl
		} else {
			buf.WriteByte('\n')
		}
		fmt.Fprintf(&buf, "# %s\n", opt.Description)
		buf.WriteString(renderValue(key, opt.Default))
	}
	buf.WriteString(customSourcesExample)
	return buf.String()
}

// WriteDefault writes DefaultConfig to path. An existing file is replaced
// only when force is set.
func WriteDefault(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return nox.Errorf(nox.EINVALID, "%s already exists", path)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(DefaultConfig()), 0o644); err != nil {
		return fmt.Errorf("write default config: %w", err)
	}
	return nil
}

// splitKey splits a dotted key into its table and final key.
func splitKey(dotted string) (string, string) {
	i := strings.LastIndexByte(dotted, '.')
	if i < 0 {
		return "", dotted
	}
	return dotted[:i], dotted[i+1:]
}

func renderValue(key string, v any) string {
	b, err := toml.Marshal(map[string]any{key: v})
	if err != nil {
		return fmt.Sprintf("# %s = %v\n", key, v)
	}
	return string(b)
}
