package api

import (
	"embed"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/qri-io/jsonschema"
)

//go:embed schemas/*.json
var schemaFS embed.FS

var (
	schemaOnce sync.Once
	schemas    map[string]*jsonschema.Schema
)

func loadSchemas() {
	schemas = map[string]*jsonschema.Schema{}

	entries, err := schemaFS.ReadDir("schemas")
	if err != nil {
		panic(fmt.Sprintf("read embedded schemas: %v", err))
	}
	for _, entry := range entries {
		raw, err := schemaFS.ReadFile("schemas/" + entry.Name())
		if err != nil {
			panic(fmt.Sprintf("read schema %s: %v", entry.Name(), err))
		}
		rs := &jsonschema.Schema{}
		if err := json.Unmarshal(raw, rs); err != nil {
			panic(fmt.Sprintf("parse schema %s: %v", entry.Name(), err))
		}
		schemas[strings.TrimSuffix(entry.Name(), ".json")] = rs
	}
}

// decodeValid reads the request body, checks it against the named embedded
// schema and decodes it into v. Violations are reported to the client as a
// 400; the return value tells the handler whether to proceed.
func decodeValid(w http.ResponseWriter, r *http.Request, name string, v any) bool {
	schemaOnce.Do(loadSchemas)
	rs, ok := schemas[name]
	if !ok {
		panic(fmt.Sprintf("unknown request schema %q", name))
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return false
	}

	keyErrs, err := rs.ValidateBytes(r.Context(), body)
	if err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return false
	}
	if len(keyErrs) > 0 {
		writeJSON(w, errorResponse{Error: keyErrs[0].Error()}, http.StatusBadRequest)
		return false
	}

	if err := json.Unmarshal(body, v); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return false
	}

	return true
}
