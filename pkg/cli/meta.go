package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Fepozopo/canvasfill/pkg/paint"
)

// ParamType is a small enum for parameter types used in metadata.
type ParamType string

const (
	ParamTypeInt    ParamType = "int"
	ParamTypeBool   ParamType = "bool"
	ParamTypeString ParamType = "string"
	ParamTypeEnum   ParamType = "enum"
	ParamTypeColor  ParamType = "color"
	ParamTypePoints ParamType = "points"
)

// ValidationRule is a machine-friendly representation of the constraints
// that a UI or client can use to validate input before invoking a command.
type ValidationRule struct {
	Type        ParamType `json:"type"`
	Required    bool      `json:"required"`
	Min         *float64  `json:"min,omitempty"`
	Max         *float64  `json:"max,omitempty"`
	EnumOptions []string  `json:"enumOptions,omitempty"` // valid when Type == ParamTypeEnum
	Example     string    `json:"example,omitempty"`
	Hint        string    `json:"hint,omitempty"`
}

// parseBoolLikeToString accepts common truthy/falsy forms and returns "true"/"false" string.
func parseBoolLikeToString(s string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "t", "true", "y", "yes", "on":
		return "true", nil
	case "0", "f", "false", "n", "no", "off":
		return "false", nil
	default:
		return "", fmt.Errorf("invalid boolean: %q", s)
	}
}

// parsePoints parses "x,y x,y ..." into points. Pairs may also be separated
// by semicolons.
func parsePoints(s string) ([][2]int, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ' ' || r == ';' || r == '\t' })
	if len(fields) == 0 {
		return nil, fmt.Errorf("no points in %q", s)
	}
	out := make([][2]int, 0, len(fields))
	for _, f := range fields {
		xs, ys, ok := strings.Cut(f, ",")
		if !ok {
			return nil, fmt.Errorf("invalid point %q, want x,y", f)
		}
		x, err := strconv.Atoi(strings.TrimSpace(xs))
		if err != nil {
			return nil, fmt.Errorf("invalid point %q: %w", f, err)
		}
		y, err := strconv.Atoi(strings.TrimSpace(ys))
		if err != nil {
			return nil, fmt.Errorf("invalid point %q: %w", f, err)
		}
		out = append(out, [2]int{x, y})
	}
	return out, nil
}

func formatPoints(pts [][2]int) string {
	parts := make([]string, len(pts))
	for i, p := range pts {
		parts[i] = fmt.Sprintf("%d,%d", p[0], p[1])
	}
	return strings.Join(parts, " ")
}

// GenerateTooltip produces a tooltip string from a CommandSpec.
func GenerateTooltip(c CommandSpec) string {
	var sb strings.Builder
	if c.Description != "" {
		sb.WriteString(c.Description)
	} else {
		sb.WriteString("No description")
	}
	if len(c.Args) == 0 {
		sb.WriteString(" (no parameters)")
		return sb.String()
	}
	sb.WriteString("\nusage: " + c.Usage + "\nparameters:\n")
	for _, a := range c.Args {
		req := "optional"
		if a.Required {
			req = "required"
		}
		sb.WriteString(fmt.Sprintf("- %s (%s, %s)", a.Name, a.Type, req))
		if a.Description != "" {
			sb.WriteString(": " + a.Description)
		}
		if a.Default != "" {
			sb.WriteString(" (default: " + a.Default + ")")
		}
		sb.WriteString("\n")
	}
	return strings.TrimSpace(sb.String())
}

// GenerateValidationRules creates ValidationRule entries from a CommandSpec.
// "uint" arguments become integers with a minimum of zero; enum options are
// read from the "a|b|c" argument description.
func GenerateValidationRules(c CommandSpec) map[string]ValidationRule {
	rules := make(map[string]ValidationRule, len(c.Args))
	for _, a := range c.Args {
		r := ValidationRule{Required: a.Required, Hint: a.Description, Example: a.Default}
		switch strings.ToLower(a.Type) {
		case "int":
			r.Type = ParamTypeInt
		case "uint":
			r.Type = ParamTypeInt
			zero := 0.0
			r.Min = &zero
		case "bool":
			r.Type = ParamTypeBool
		case "enum":
			r.Type = ParamTypeEnum
			r.EnumOptions = strings.Split(a.Description, "|")
		case "color":
			r.Type = ParamTypeColor
		case "points":
			r.Type = ParamTypePoints
		default:
			r.Type = ParamTypeString
		}
		rules[a.Name] = r
	}
	return rules
}

// MetaStore indexes command metadata by name.
type MetaStore struct {
	Commands []CommandSpec
	byName   map[string]CommandSpec
}

// NewMetaStore creates a MetaStore from a CommandSpec list.
func NewMetaStore(cmds []CommandSpec) *MetaStore {
	m := &MetaStore{Commands: cmds, byName: make(map[string]CommandSpec, len(cmds))}
	for _, c := range cmds {
		m.byName[c.Name] = c
	}
	return m
}

// Lookup returns the command called name.
func (m *MetaStore) Lookup(name string) (CommandSpec, bool) {
	c, ok := m.byName[name]
	return c, ok
}

// Resolve maps a user selection to a command name: an exact name (any
// case) or a unique prefix.
func (m *MetaStore) Resolve(selection string) (string, error) {
	sel := strings.ToLower(strings.TrimSpace(selection))
	var matches []string
	for _, c := range m.Commands {
		name := strings.ToLower(c.Name)
		if name == sel {
			return c.Name, nil
		}
		if strings.HasPrefix(name, sel) {
			matches = append(matches, c.Name)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("unknown command: %s", selection)
	case 1:
		return matches[0], nil
	}
	return "", fmt.Errorf("ambiguous selection %q, candidates: %s", selection, strings.Join(matches, ", "))
}

// GetCommandHelp returns both tooltip and validation rules for a command.
func (m *MetaStore) GetCommandHelp(name string) (string, map[string]ValidationRule, error) {
	c, ok := m.byName[name]
	if !ok {
		return "", nil, fmt.Errorf("unknown command: %s", name)
	}
	return GenerateTooltip(c), GenerateValidationRules(c), nil
}

// NormalizeArgs validates args against the command metadata and returns them
// in canonical form: integers in base 10, booleans as true/false, colors as
// #rrggbbaa, points as "x,y x,y". Missing optional arguments stay empty.
func NormalizeArgs(store *MetaStore, cmdName string, args []string) ([]string, error) {
	if store == nil {
		return nil, fmt.Errorf("metadata store is nil")
	}
	c, ok := store.byName[cmdName]
	if !ok {
		return nil, fmt.Errorf("unknown command: %s", cmdName)
	}
	if len(args) > len(c.Args) {
		return nil, fmt.Errorf("%s takes at most %d arguments, got %d", cmdName, len(c.Args), len(args))
	}
	rules := GenerateValidationRules(c)
	out := make([]string, len(c.Args))
	for i, a := range c.Args {
		var raw string
		if i < len(args) {
			raw = strings.TrimSpace(args[i])
		}
		if raw == "" {
			if a.Required {
				return nil, fmt.Errorf("missing required parameter: %s", a.Name)
			}
			continue
		}
		vr := rules[a.Name]
		switch vr.Type {
		case ParamTypeInt:
			v, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("parameter %s: expected integer, got %q", a.Name, raw)
			}
			if vr.Min != nil && float64(v) < *vr.Min {
				return nil, fmt.Errorf("parameter %s: %d < min %v", a.Name, v, *vr.Min)
			}
			if vr.Max != nil && float64(v) > *vr.Max {
				return nil, fmt.Errorf("parameter %s: %d > max %v", a.Name, v, *vr.Max)
			}
			out[i] = strconv.FormatInt(v, 10)
		case ParamTypeBool:
			bs, err := parseBoolLikeToString(raw)
			if err != nil {
				return nil, fmt.Errorf("parameter %s: %w", a.Name, err)
			}
			out[i] = bs
		case ParamTypeEnum:
			v, ok := mapEnumValue(a.Name, raw)
			if !ok || !contains(vr.EnumOptions, v) {
				return nil, fmt.Errorf("parameter %s: %q is not one of %s", a.Name, raw, strings.Join(vr.EnumOptions, ", "))
			}
			out[i] = v
		case ParamTypeColor:
			col, err := paint.ParseColor(raw)
			if err != nil {
				return nil, fmt.Errorf("parameter %s: %w", a.Name, err)
			}
			out[i] = paint.FormatColor(col)
		case ParamTypePoints:
			pts, err := parsePoints(raw)
			if err != nil {
				return nil, fmt.Errorf("parameter %s: %w", a.Name, err)
			}
			out[i] = formatPoints(pts)
		case ParamTypeString:
			out[i] = raw
		default:
			return nil, fmt.Errorf("parameter %s: unsupported param type %q", a.Name, vr.Type)
		}
	}
	return out, nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

var (
	// Aliases accepted for enum parameters. Values are the canonical
	// lowercase names the command handlers switch on.
	stateNameToValue = map[string]string{
		"ON":     "on",
		"OFF":    "off",
		"TOGGLE": "toggle",
		"FLIP":   "toggle",
	}

	strategyNameToValue = map[string]string{
		"PIXEL": "pixel",
		"SPAN":  "span",
		"SCAN":  "span",
	}
)

// mapEnumValue translates textual enum aliases into the canonical value.
// Boolean-like input is accepted for on/off states.
func mapEnumValue(paramName string, val string) (string, bool) {
	up := strings.ToUpper(strings.TrimSpace(val))
	switch strings.ToLower(paramName) {
	case "state":
		if out, ok := stateNameToValue[up]; ok {
			return out, true
		}
		if b, err := parseBoolLikeToString(val); err == nil {
			if b == "true" {
				return "on", true
			}
			return "off", true
		}
	case "strategy":
		if out, ok := strategyNameToValue[up]; ok {
			return out, true
		}
	}
	return strings.ToLower(strings.TrimSpace(val)), true
}
