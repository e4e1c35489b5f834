package resolver

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"streamgate/internal/logger"
)

// Registry maps stream hostnames to site-specific resolver scripts. The
// domains file is a flat {tag: domain} object; a host matching a domain by
// substring resolves to <resolvers dir>/<tag>_resolver.py.
type Registry struct {
	resolversDir string
	domains      map[string]string
}

// LoadRegistry reads the domains file; a missing or unreadable file yields
// an empty registry (every host passes through unresolved).
func LoadRegistry(resolversDir, domainsFile string) *Registry {
	domains := make(map[string]string)

	data, err := os.ReadFile(domainsFile)
	if err == nil {
		if err := json.Unmarshal(data, &domains); err != nil {
			logger.AppLogger().WithFields(map[string]interface{}{
				"file": domainsFile,
			}).Warn("domains file is not valid JSON, ignoring")
			domains = make(map[string]string)
		}
	}

	return &Registry{
		resolversDir: resolversDir,
		domains:      domains,
	}
}

// ScriptFor returns the resolver script path for a hostname, when one is
// registered and present on disk.
func (r *Registry) ScriptFor(hostname string) (string, bool) {
	for tag, domain := range r.domains {
		if domain == "" || !strings.Contains(hostname, domain) {
			continue
		}
		candidate := filepath.Join(r.resolversDir, tag+"_resolver.py")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true
		}
	}
	return "", false
}
