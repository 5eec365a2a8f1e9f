package parser

import (
	"regexp"
	"strings"

	"github.com/fenwick-labs/gleaner/internal/model"
)

// modRule is one modification grammar: a compiled pattern plus the
// family it reports. actionFirst says which capture group holds the verb.
type modRule struct {
	re          *regexp.Regexp
	typ         string
	category    string
	actionFirst bool
}

// modRules covers the four modification families, verb-first and
// noun-first phrasings each. Evaluated in order; every match contributes.
var modRules = []modRule{
	{
		re:          regexp.MustCompile(`(?i)\b(installing|installed|removing|removed|uninstalling|uninstalled)\s+(?:application|app|package)\s+['"]?(.+?)['"]?\s*$`),
		typ:         "application",
		category:    "software",
		actionFirst: true,
	},
	{
		re:       regexp.MustCompile(`(?i)\b(?:application|app|package)\s+['"]?(.+?)['"]?\s+(?:was\s+)?(installed|removed|uninstalled)\s*$`),
		typ:      "application",
		category: "software",
	},
	{
		re:          regexp.MustCompile(`(?i)\b(starting|started|stopping|stopped|enabling|enabled|disabling|disabled|restarting|restarted)\s+service\s+['"]?(.+?)['"]?\s*$`),
		typ:         "service",
		category:    "services",
		actionFirst: true,
	},
	{
		re:       regexp.MustCompile(`(?i)\bservice\s+['"]?(.+?)['"]?\s+(?:was\s+)?(started|stopped|enabled|disabled|restarted)\b`),
		typ:      "service",
		category: "services",
	},
	{
		re:          regexp.MustCompile(`(?i)\b(setting|set|modifying|modified|creating|created|deleting|deleted|updating|updated)\s+registry\s+(?:key|value)\s+['"]?(.+?)['"]?\s*$`),
		typ:         "registry",
		category:    "registry",
		actionFirst: true,
	},
	{
		re:       regexp.MustCompile(`(?i)\bregistry\s+(?:key|value)\s+['"]?(.+?)['"]?\s+(?:was\s+)?(set|modified|created|deleted|updated)\b`),
		typ:      "registry",
		category: "registry",
	},
	{
		re:          regexp.MustCompile(`(?i)\b(applying|applied|enabling|enabled|disabling|disabled)\s+optimization\s+['"]?(.+?)['"]?\s*$`),
		typ:         "optimization",
		category:    "performance",
		actionFirst: true,
	},
	{
		re:       regexp.MustCompile(`(?i)\boptimization\s+['"]?(.+?)['"]?\s+(?:was\s+)?(applied|enabled|disabled)\b`),
		typ:      "optimization",
		category: "performance",
	},
}

// canonAction folds verb tenses onto one canonical action per family.
var canonAction = map[string]string{
	"installing": "installed", "installed": "installed",
	"removing": "removed", "removed": "removed",
	"uninstalling": "removed", "uninstalled": "removed",
	"starting": "started", "started": "started",
	"stopping": "stopped", "stopped": "stopped",
	"enabling": "enabled", "enabled": "enabled",
	"disabling": "disabled", "disabled": "disabled",
	"restarting": "restarted", "restarted": "restarted",
	"setting": "set", "set": "set",
	"modifying": "modified", "modified": "modified",
	"creating": "created", "created": "created",
	"deleting": "deleted", "deleted": "deleted",
	"updating": "updated", "updated": "updated",
	"applying": "applied", "applied": "applied",
}

// extractModifications collects every recorded system change mentioned in
// an informational message.
func extractModifications(msg string) []model.Modification {
	var mods []model.Modification
	for _, rule := range modRules {
		m := rule.re.FindStringSubmatch(msg)
		if m == nil {
			continue
		}
		action, target := m[2], m[1]
		if rule.actionFirst {
			action, target = m[1], m[2]
		}
		mods = append(mods, model.Modification{
			Type:     rule.typ,
			Action:   canonAction[strings.ToLower(action)],
			Target:   cleanTarget(target),
			Category: rule.category,
		})
	}
	return mods
}

// cleanTarget strips quoting and trailing punctuation from a captured
// target name.
func cleanTarget(s string) string {
	return strings.Trim(strings.TrimSpace(s), `'".`)
}
