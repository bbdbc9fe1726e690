// SPDX-License-Identifier: MIT
package signal

// PortSpec names and types one input or output of a processor. Names are
// resolved to indices once at graph-build time; only indices are used on
// the run-time path.
type PortSpec struct {
	Name    string
	Tag     Tag
	Default any // zero value per ZeroValue(Tag) if nil
}

// DefaultValue returns the port's declared default, falling back to the
// tag's zero value when none was set.
func (p PortSpec) DefaultValue() any {
	if p.Default != nil {
		return p.Default
	}
	return ZeroValue(p.Tag)
}
