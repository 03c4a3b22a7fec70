package homepage

// ServicesConfig represents the top-level structure of services.yaml:
// a list of groups, each holding a list of single-key service maps.
// Homepage uses dynamic keys, so we parse as []map[string][]map[string]ServiceProps
type ServicesConfig []map[string][]map[string]ServiceProps

// ServiceProps holds the service properties relevant to a link.
// Widgets, pings and monitors are ignored.
type ServiceProps struct {
	Href        string `yaml:"href"`
	Icon        string `yaml:"icon,omitempty"`
	Description string `yaml:"description,omitempty"`
	Target      string `yaml:"target,omitempty"`
}
