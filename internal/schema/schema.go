// Package schema describes node and credential properties the way a
// workflow host consumes them: names, types, defaults and the display rules
// that decide when a property is shown.
package schema

import "slices"

// PropertyType is the kind of input a host renders for a property.
type PropertyType string

const (
	TypeString     PropertyType = "string"
	TypeOptions    PropertyType = "options"
	TypeCollection PropertyType = "collection"
)

type (
	// Property is a single user-facing parameter definition.
	Property struct {
		DisplayName      string               `json:"displayName" yaml:"displayName"`
		Name             string               `json:"name" yaml:"name"`
		Type             PropertyType         `json:"type" yaml:"type"`
		Default          any                  `json:"default" yaml:"default"`
		Required         bool                 `json:"required,omitempty" yaml:"required,omitempty"`
		NoDataExpression bool                 `json:"noDataExpression,omitempty" yaml:"noDataExpression,omitempty"`
		Placeholder      string               `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
		Description      string               `json:"description,omitempty" yaml:"description,omitempty"`
		TypeOptions      *PropertyTypeOptions `json:"typeOptions,omitempty" yaml:"typeOptions,omitempty"`
		DisplayOptions   *DisplayOptions      `json:"displayOptions,omitempty" yaml:"displayOptions,omitempty"`
		Options          []Option             `json:"options,omitempty" yaml:"options,omitempty"`

		// Fields holds the child properties of a collection
		Fields []Property `json:"fields,omitempty" yaml:"fields,omitempty"`
	}

	// Option is one selectable value of an options property.
	Option struct {
		Name        string `json:"name" yaml:"name"`
		Value       string `json:"value" yaml:"value"`
		Description string `json:"description,omitempty" yaml:"description,omitempty"`
		Action      string `json:"action,omitempty" yaml:"action,omitempty"`
	}

	// PropertyTypeOptions tune how a host renders a property.
	PropertyTypeOptions struct {
		Password bool `json:"password,omitempty" yaml:"password,omitempty"`
		Rows     int  `json:"rows,omitempty" yaml:"rows,omitempty"`
	}

	// DisplayOptions show a property only when every listed parameter holds
	// one of the listed values.
	DisplayOptions struct {
		Show map[string][]string `json:"show" yaml:"show"`
	}
)

// Properties is an ordered set of property definitions.
type Properties []Property

// Find returns the property with the given name.
func (p Properties) Find(name string) (Property, bool) {
	for _, prop := range p {
		if prop.Name == name {
			return prop, true
		}
	}
	return Property{}, false
}

// Defaults returns the default value of every top-level property.
func (p Properties) Defaults() map[string]any {
	res := make(map[string]any, len(p))
	for _, prop := range p {
		res[prop.Name] = prop.DefaultValue()
	}
	return res
}

// Visible reports whether the property is displayed for the given
// parameter values. Missing values fall back to the property defaults.
func (p Properties) Visible(name string, values map[string]any) bool {
	prop, ok := p.Find(name)
	if !ok {
		return false
	}
	if prop.DisplayOptions == nil {
		return true
	}
	for key, allowed := range prop.DisplayOptions.Show {
		v, ok := values[key]
		if !ok {
			other, found := p.Find(key)
			if !found {
				return false
			}
			v = other.DefaultValue()
		}
		s, ok := v.(string)
		if !ok || !slices.Contains(allowed, s) {
			return false
		}
	}
	return true
}

// DefaultValue returns the value a host uses when the parameter is unset.
func (p Property) DefaultValue() any {
	if p.Type == TypeCollection && p.Default == nil {
		return map[string]any{}
	}
	return p.Default
}

// OptionValues lists the selectable values of an options property.
func (p Property) OptionValues() []string {
	res := make([]string, 0, len(p.Options))
	for _, o := range p.Options {
		res = append(res, o.Value)
	}
	return res
}

// Show builds display options for the given parameter values.
func Show(show map[string][]string) *DisplayOptions {
	return &DisplayOptions{Show: show}
}
