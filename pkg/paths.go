package fecom

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/joho/godotenv"
)

// PathResolver expands environment variables in archive paths. Variables
// come from dotenv files, overridden by the process environment.
type PathResolver struct {
	vars map[string]string
}

func NewPathResolver(envFiles ...string) (*PathResolver, error) {
	vars := map[string]string{}
	if len(envFiles) > 0 {
		fileVars, err := godotenv.Read(envFiles...)
		if err != nil {
			return nil, fmt.Errorf("reading env files %v: %w", envFiles, err)
		}
		vars = fileVars
	}
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			vars[k] = v
		}
	}
	return &PathResolver{vars: vars}, nil
}

func (p *PathResolver) Lookup(name string) (string, bool) {
	v, ok := p.vars[name]
	return v, ok
}

// Resolve expands ${VAR} and $VAR tokens. Undefined variables are an error.
func (p *PathResolver) Resolve(path string) (string, error) {
	missing := map[string]struct{}{}
	resolved := os.Expand(path, func(name string) string {
		v, ok := p.vars[name]
		if !ok {
			missing[name] = struct{}{}
		}
		return v
	})
	if len(missing) > 0 {
		names := make([]string, 0, len(missing))
		for name := range missing {
			names = append(names, name)
		}
		sort.Strings(names)
		errs := make([]error, len(names))
		for i, name := range names {
			errs[i] = fmt.Errorf("undefined variable %q in path %q", name, path)
		}
		return "", errors.Join(errs...)
	}
	return resolved, nil
}
