package models

import (
	"fmt"
	"sort"
	"strings"
)

// Entities is the per-conversation extracted-fact bag (spec §3).
// List fields are sets represented as slices kept sorted and deduplicated
// so that Merge is idempotent (spec §8 invariant 8).
type Entities struct {
	Persons   []string       `json:"persons,omitempty"`
	Amounts   []string       `json:"amounts,omitempty"`
	Dates     []string       `json:"dates,omitempty"`
	Locations []string       `json:"locations,omitempty"`
	Other     map[string]any `json:"other,omitempty"`
}

// Merge performs the merge-union update policy: list fields are
// deduplicated by value equality, Other is map-merged, and an empty
// incoming field never clears an existing one.
func (e *Entities) Merge(in Entities) {
	e.Persons = unionStrings(e.Persons, in.Persons)
	e.Amounts = unionStrings(e.Amounts, in.Amounts)
	e.Dates = unionStrings(e.Dates, in.Dates)
	e.Locations = unionStrings(e.Locations, in.Locations)
	if len(in.Other) > 0 {
		if e.Other == nil {
			e.Other = make(map[string]any, len(in.Other))
		}
		for k, v := range in.Other {
			e.Other[k] = v
		}
	}
}

// IsEmpty reports whether no entity was ever recorded.
func (e Entities) IsEmpty() bool {
	return len(e.Persons) == 0 && len(e.Amounts) == 0 && len(e.Dates) == 0 &&
		len(e.Locations) == 0 && len(e.Other) == 0
}

func unionStrings(existing, incoming []string) []string {
	if len(incoming) == 0 {
		return existing
	}
	seen := make(map[string]struct{}, len(existing)+len(incoming))
	out := make([]string, 0, len(existing)+len(incoming))
	for _, v := range existing {
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	for _, v := range incoming {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}

// GlobalState is the per-conversation bag of classification results and
// extracted entities kept outside the message stream (spec §3, GLOSSARY).
type GlobalState struct {
	Domain   LegalDomain
	Intent   LegalIntent
	Entities Entities
}

// Update performs the field-wise merge-union update policy described in
// spec §4.5. An empty domain/intent does not clear a previously set one.
func (g *GlobalState) Update(domain LegalDomain, intent LegalIntent, entities Entities) {
	if domain != "" {
		g.Domain = domain
	}
	if intent != "" {
		g.Intent = intent
	}
	g.Entities.Merge(entities)
}

// Clear resets the state to empty, used on explicit conversation reset.
func (g *GlobalState) Clear() {
	*g = GlobalState{}
}

// ToString renders a human-readable block used as LLM context, matching
// the fixed "已知事实" section the memory manager appends in
// MemoryManager.GetFullContext.
func (g GlobalState) ToString() string {
	if g.Domain == "" && g.Intent == "" && g.Entities.IsEmpty() {
		return ""
	}
	var b strings.Builder
	if g.Domain != "" {
		fmt.Fprintf(&b, "领域: %s\n", g.Domain)
	}
	if g.Intent != "" {
		fmt.Fprintf(&b, "意图: %s\n", g.Intent)
	}
	writeList(&b, "当事人", g.Entities.Persons)
	writeList(&b, "金额", g.Entities.Amounts)
	writeList(&b, "日期", g.Entities.Dates)
	writeList(&b, "地点", g.Entities.Locations)
	if len(g.Entities.Other) > 0 {
		keys := make([]string, 0, len(g.Entities.Other))
		for k := range g.Entities.Other {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "%s: %v\n", k, g.Entities.Other[k])
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func writeList(b *strings.Builder, label string, values []string) {
	if len(values) == 0 {
		return
	}
	fmt.Fprintf(b, "%s: %s\n", label, strings.Join(values, "、"))
}
