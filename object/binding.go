package object

import "fmt"

// Binding associates an external application with the autoscaler.
// It is immutable after creation except for ResourceName, which may be
// set once at bind time when name resolution is enabled.
type Binding struct {
	Id           string            `json:"id" yaml:"id"`
	ResourceId   string            `json:"resourceId" yaml:"resourceId"`
	ResourceName string            `json:"resourceName,omitempty" yaml:"resourceName,omitempty"`
	ScalerId     string            `json:"scalerId" yaml:"scalerId"`
	ServiceId    string            `json:"serviceId" yaml:"serviceId"`
	Context      map[string]string `json:"context" yaml:"context"`
	CreationTime int64             `json:"creationTime" yaml:"creationTime"`
}

// IdentifierString returns the string used to refer to this binding in logs.
func (b *Binding) IdentifierString() string {
	return fmt.Sprintf("%s/%s/%s", b.Id, b.ResourceId, b.ResourceName)
}

// Equals reports whether two bindings describe the same application with
// the same parameters. ResourceName is ignored because it may be resolved
// after the bind request was sent.
func (b *Binding) Equals(other *Binding) bool {
	if other == nil {
		return false
	}
	if b.Id != other.Id || b.ResourceId != other.ResourceId ||
		b.ScalerId != other.ScalerId || b.ServiceId != other.ServiceId ||
		b.CreationTime != other.CreationTime {
		return false
	}
	if len(b.Context) != len(other.Context) {
		return false
	}
	for k, v := range b.Context {
		if other.Context[k] != v {
			return false
		}
	}
	return true
}
