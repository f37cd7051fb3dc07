package domain

import (
	"fmt"
	"slices"
)

// IconSet is the closed list of icon names a field may hold.
// The first value is the default for items that omit the icon.
type IconSet struct {
	Name   string
	Values []string
}

func (s IconSet) Contains(v string) bool {
	return slices.Contains(s.Values, v)
}

func (s IconSet) Default() string {
	return s.Values[0]
}

var (
	BrandingServiceIcons = IconSet{
		Name:   "branding.services",
		Values: []string{"Palette", "Brush", "BarChart3", "Smartphone", "Package", "FileText"},
	}
	GraphicServiceIcons = IconSet{
		Name:   "graphic.services",
		Values: []string{"Palette", "Brush", "Eye", "Zap", "Users", "Award"},
	}
	PackageStatIcons = IconSet{
		Name:   "packages.stats",
		Values: []string{"Award", "Check", "Users", "ThumbsUp"},
	}
	PerformanceReasonIcons = IconSet{
		Name:   "performance.partnerReasons",
		Values: []string{"Target", "BarChart3", "Share2", "Eye", "Users", "Zap"},
	}
	PerformanceBenefitIcons = IconSet{
		Name:   "performance.benefits",
		Values: []string{"TrendingUp", "Target", "Users", "DollarSign", "Zap", "Sparkles"},
	}
	PerformanceServiceIcons = IconSet{
		Name:   "performance.services",
		Values: []string{"Search", "Share2", "Monitor", "ShoppingCart", "Smartphone", "RefreshCw"},
	}
	PerformanceMetricIcons = IconSet{
		Name:   "performance.metrics",
		Values: []string{"MousePointer", "UserCheck", "Mail", "TrendingUp", "DollarSign", "BarChart3", "UserCircle2Icon"},
	}
)

// IconRule binds an icon set to the "icon" field of every item in an array section.
type IconRule struct {
	Section string
	Set     IconSet
}

const iconField = "icon"

// ApplyIcons validates every icon the rules cover, filling defaults for items
// that have none. It mutates r in place.
func ApplyIcons(r Record, rules []IconRule) error {
	for _, rule := range rules {
		items, ok := r[rule.Section].([]any)
		if !ok {
			continue
		}
		for i, raw := range items {
			item, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			if err := ApplyIcon(item, rule.Set); err != nil {
				return fmt.Errorf("%s[%d]: %w", rule.Section, i, err)
			}
		}
	}
	return nil
}

// ApplyIcon validates one array item against set.
func ApplyIcon(item map[string]any, set IconSet) error {
	v, present := item[iconField]
	if !present || v == "" {
		item[iconField] = set.Default()
		return nil
	}
	name, ok := v.(string)
	if !ok || !set.Contains(name) {
		return fmt.Errorf("%w: %v not in %s", ErrInvalidIcon, v, set.Name)
	}
	return nil
}
