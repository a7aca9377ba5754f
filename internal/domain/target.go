package domain

// TargetTypeProject is the polymorphic type tag for naming projects, the one
// target kind registered today.
const TargetTypeProject = "project"

// Target is an entity that shares and exports can point at, addressed by a
// (type tag, opaque id) pair.
type Target interface {
	TargetOwner() string
	TargetName() string
	TargetCompleted() bool
}

func (p *Project) TargetOwner() string    { return p.OwnerID }
func (p *Project) TargetName() string     { return p.BusinessName }
func (p *Project) TargetCompleted() bool  { return p.Completed() }
