// Package index derives the navigable endpoint list and tag groups from a
// spec. Results are recomputed on every call; nothing is cached.
package index

import (
	"strings"

	"github.com/kolah/truffle/internal/model"
)

// OtherGroup collects endpoints that declare no tag.
const OtherGroup = "Other"

// DefaultHiddenPaths are operational paths kept out of the public index.
var DefaultHiddenPaths = []string{"/health", "/metrics", "/debug/vars"}

// Hidden is a set of exact path templates excluded from the index.
type Hidden map[string]struct{}

func NewHidden(paths ...string) Hidden {
	h := make(Hidden, len(paths))
	for _, p := range paths {
		h[p] = struct{}{}
	}
	return h
}

func (h Hidden) Contains(path string) bool {
	_, ok := h[path]
	return ok
}

// Extract lists one endpoint per (path, method) pair, walking paths in
// document order and methods in model.Methods order.
func Extract(spec *model.Spec, hidden Hidden) []model.Endpoint {
	if spec == nil {
		return nil
	}
	var endpoints []model.Endpoint
	for i := range spec.Paths {
		item := &spec.Paths[i]
		if hidden.Contains(item.Path) {
			continue
		}
		for _, m := range model.Methods {
			op := item.Operation(m)
			if op == nil {
				continue
			}
			endpoints = append(endpoints, model.Endpoint{
				Path:      item.Path,
				Method:    m,
				Operation: op,
			})
		}
	}
	return endpoints
}

// GroupByTag partitions the extracted endpoints by their first tag. Groups
// follow the order of spec.Tags; tags that are not declared there come after,
// in the order they are first seen. Empty groups are never returned.
func GroupByTag(spec *model.Spec, hidden Hidden) []model.TagGroup {
	endpoints := Extract(spec, hidden)

	members := make(map[string][]model.Endpoint)
	var seen []string
	for _, ep := range endpoints {
		tag := ep.PrimaryTag()
		if tag == "" {
			tag = OtherGroup
		}
		if _, ok := members[tag]; !ok {
			seen = append(seen, tag)
		}
		members[tag] = append(members[tag], ep)
	}

	var groups []model.TagGroup
	placed := make(map[string]bool)
	for _, t := range spec.Tags {
		if placed[t.Name] || len(members[t.Name]) == 0 {
			continue
		}
		placed[t.Name] = true
		groups = append(groups, model.TagGroup{
			Name:        t.Name,
			Description: t.Description,
			Endpoints:   members[t.Name],
		})
	}
	for _, name := range seen {
		if placed[name] {
			continue
		}
		placed[name] = true
		groups = append(groups, model.TagGroup{Name: name, Endpoints: members[name]})
	}
	return groups
}

// Find looks up an endpoint by method (case-insensitive) and exact path template.
func Find(endpoints []model.Endpoint, method, path string) (model.Endpoint, bool) {
	m, ok := model.ParseMethod(method)
	if !ok {
		return model.Endpoint{}, false
	}
	for _, ep := range endpoints {
		if ep.Method == m && ep.Path == path {
			return ep, true
		}
	}
	return model.Endpoint{}, false
}

// Filter returns endpoints matching optional tag and method filters. The tag
// matches any declared tag, case-insensitively.
func Filter(endpoints []model.Endpoint, tag, method string) []model.Endpoint {
	method = strings.ToUpper(method)
	var result []model.Endpoint
	for _, ep := range endpoints {
		if method != "" && string(ep.Method) != method {
			continue
		}
		if tag != "" && !hasTag(ep, tag) {
			continue
		}
		result = append(result, ep)
	}
	return result
}

func hasTag(ep model.Endpoint, tag string) bool {
	if ep.Operation == nil {
		return false
	}
	if len(ep.Operation.Tags) == 0 {
		return strings.EqualFold(tag, OtherGroup)
	}
	for _, t := range ep.Operation.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}
