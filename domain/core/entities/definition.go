package entities

// Definition is the content payload of a node. The engine treats it as
// opaque except for Labels, which are the roles structural rules match on.
type Definition struct {
	Stencil    string
	Labels     []string
	Properties map[string]string
}

// NewDefinition creates a definition for a stencil. The stencil id is
// always one of the labels.
func NewDefinition(stencil string, labels ...string) Definition {
	all := make([]string, 0, len(labels)+1)
	if stencil != "" {
		all = append(all, stencil)
	}
	for _, l := range labels {
		if l != "" && l != stencil {
			all = append(all, l)
		}
	}
	return Definition{
		Stencil:    stencil,
		Labels:     all,
		Properties: make(map[string]string),
	}
}

// HasLabel reports whether the definition plays the given role
func (d Definition) HasLabel(role string) bool {
	for _, l := range d.Labels {
		if l == role {
			return true
		}
	}
	return false
}

// Property returns a property value and whether it was set
func (d Definition) Property(key string) (string, bool) {
	v, ok := d.Properties[key]
	return v, ok
}

// WithProperty returns a copy with the property set
func (d Definition) WithProperty(key, value string) Definition {
	props := make(map[string]string, len(d.Properties)+1)
	for k, v := range d.Properties {
		props[k] = v
	}
	props[key] = value
	d.Properties = props
	return d
}
