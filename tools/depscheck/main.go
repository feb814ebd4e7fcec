// Command depscheck enforces the layering between core packages and the
// transport edge: hexgrid stays dependency-free, nav sees only hexgrid,
// and the wire types in proto never reach back into game logic. Run it
// from the module root; a non-zero exit lists the offending imports.
package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"
)

type packageInfo struct {
	ImportPath string
	Imports    []string
}

var rules = []struct {
	scope     string
	forbidden string
}{
	{"hexwake/server/internal/hexgrid", "hexwake/server/internal/"},
	{"hexwake/server/internal/nav", "hexwake/server/internal/net"},
	{"hexwake/server/internal/nav", "hexwake/server/internal/game"},
	{"hexwake/server/internal/net/proto", "hexwake/server/internal/game"},
	{"hexwake/server/internal/net/proto", "hexwake/server/internal/nav"},
}

func main() {
	cmd := exec.Command("go", "list", "-json", "./internal/...")
	cmd.Env = os.Environ()
	output, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			os.Stderr.Write(exitErr.Stderr)
		}
		fmt.Fprintf(os.Stderr, "depscheck: failed to list packages: %v\n", err)
		os.Exit(1)
	}

	decoder := json.NewDecoder(bytes.NewReader(output))

	var violations []string
	for {
		var pkg packageInfo
		if err := decoder.Decode(&pkg); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			fmt.Fprintf(os.Stderr, "depscheck: failed to decode package info: %v\n", err)
			os.Exit(1)
		}

		for _, imp := range pkg.Imports {
			for _, rule := range rules {
				if strings.HasPrefix(pkg.ImportPath, rule.scope) && strings.HasPrefix(imp, rule.forbidden) {
					violations = append(violations, fmt.Sprintf("%s -> %s", pkg.ImportPath, imp))
				}
			}
		}
	}

	if len(violations) > 0 {
		sort.Strings(violations)
		fmt.Fprintln(os.Stderr, "depscheck: found forbidden imports:")
		for _, violation := range violations {
			fmt.Fprintf(os.Stderr, "  %s\n", violation)
		}
		os.Exit(1)
	}
}
