package pom

import "slices"

// Packaging is the declared packaging kind.
type Packaging string

const (
	PackagingJar Packaging = "jar"
	PackagingPom Packaging = "pom"
)

// Parent is a project's link to the descriptor it inherits from.
type Parent struct {
	Coordinates
	RelativePath ParentRelativePath
}

// Property is one ordered property definition.
type Property struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

// Project is one parsed descriptor. It is immutable; With returns modified copies.
// Identity is the pointer: a descriptor is parsed once per session.
type Project struct {
	coordinates Coordinates
	parent      *Parent
	packaging   Packaging
	modules     []string
	properties  []Property
	propIndex   map[string]int
	deps        []Dependency
	managed     []Dependency
	source      string
}

// Option configures a Project under construction.
type Option func(*Project)

// NewProject builds an immutable project.
func NewProject(coordinates Coordinates, opts ...Option) *Project {
	p := &Project{coordinates: coordinates, packaging: PackagingJar}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// With returns a copy of p with opts applied. p is unchanged.
func (p *Project) With(opts ...Option) *Project {
	cp := &Project{
		coordinates: p.coordinates,
		packaging:   p.packaging,
		modules:     slices.Clone(p.modules),
		properties:  slices.Clone(p.properties),
		deps:        slices.Clone(p.deps),
		managed:     slices.Clone(p.managed),
		source:      p.source,
	}
	if p.parent != nil {
		parent := *p.parent
		cp.parent = &parent
	}
	cp.reindex()
	for _, opt := range opts {
		opt(cp)
	}
	return cp
}

func WithParent(parent Parent) Option {
	return func(p *Project) { p.parent = &parent }
}

func WithoutParent() Option {
	return func(p *Project) { p.parent = nil }
}

func WithPackaging(packaging Packaging) Option {
	return func(p *Project) {
		if packaging == "" {
			packaging = PackagingJar
		}
		p.packaging = packaging
	}
}

func WithModules(modules ...string) Option {
	return func(p *Project) { p.modules = append(p.modules, modules...) }
}

// WithProperty sets name, keeping its original position when redefined.
func WithProperty(name, value string) Option {
	return func(p *Project) {
		if p.propIndex == nil {
			p.reindex()
		}
		if i, ok := p.propIndex[name]; ok {
			p.properties[i].Value = value
			return
		}
		p.propIndex[name] = len(p.properties)
		p.properties = append(p.properties, Property{Name: name, Value: value})
	}
}

func WithProperties(props ...Property) Option {
	return func(p *Project) {
		for _, prop := range props {
			WithProperty(prop.Name, prop.Value)(p)
		}
	}
}

func WithDependencies(deps ...Dependency) Option {
	return func(p *Project) { p.deps = append(p.deps, deps...) }
}

func WithManagedDependencies(deps ...Dependency) Option {
	return func(p *Project) { p.managed = append(p.managed, deps...) }
}

func WithSource(source string) Option {
	return func(p *Project) { p.source = source }
}

// WithVersion replaces the declared version; the placeholder token removes it.
func WithVersion(v Version) Option {
	return func(p *Project) { p.coordinates.Version = v }
}

// WithParentVersion replaces the parent reference's version.
func WithParentVersion(v Version) Option {
	return func(p *Project) {
		if p.parent != nil {
			p.parent.Version = v
		}
	}
}

func (p *Project) reindex() {
	p.propIndex = make(map[string]int, len(p.properties))
	for i, prop := range p.properties {
		p.propIndex[prop.Name] = i
	}
}

// Coordinates returns the coordinates as declared, placeholders included.
func (p *Project) Coordinates() Coordinates { return p.coordinates }

// EffectiveCoordinates fills a missing group or version from the parent.
func (p *Project) EffectiveCoordinates() Coordinates {
	c := p.coordinates
	if p.parent != nil {
		c.GroupID = c.GroupID.Or(p.parent.GroupID)
		c.Version = c.Version.Or(p.parent.Version)
	}
	return c
}

// Identity is the effective group and artifact.
func (p *Project) Identity() ArtifactIdentity { return p.EffectiveCoordinates().Identity() }

// Parent returns the parent link, if any.
func (p *Project) Parent() (Parent, bool) {
	if p.parent == nil {
		return Parent{}, false
	}
	return *p.parent, true
}

// HasParent reports whether a parent is declared.
func (p *Project) HasParent() bool { return p.parent != nil }

// HasOwnVersion reports whether the descriptor carries its own version tag.
func (p *Project) HasOwnVersion() bool { return !p.coordinates.Version.IsPlaceholder() }

func (p *Project) Packaging() Packaging { return p.packaging }

// IsPomPackaged reports "pom" packaging.
func (p *Project) IsPomPackaged() bool { return p.packaging == PackagingPom }

func (p *Project) Modules() []string { return slices.Clone(p.modules) }

// Properties returns the property definitions in declaration order.
func (p *Project) Properties() []Property { return slices.Clone(p.properties) }

// Property returns the raw value of name.
func (p *Project) Property(name string) (string, bool) {
	if i, ok := p.propIndex[name]; ok {
		return p.properties[i].Value, true
	}
	return "", false
}

// PropertyMap returns the raw properties as a fresh map.
func (p *Project) PropertyMap() map[string]string {
	m := make(map[string]string, len(p.properties))
	for _, prop := range p.properties {
		m[prop.Name] = prop.Value
	}
	return m
}

// Dependencies returns the declared dependencies.
func (p *Project) Dependencies() []Dependency { return slices.Clone(p.deps) }

// DependencyManagement returns the declared dependency-management entries.
func (p *Project) DependencyManagement() []Dependency { return slices.Clone(p.managed) }

// Source is where the descriptor was read from.
func (p *Project) Source() string { return p.source }

// Equal compares coordinates and source location.
func (p *Project) Equal(o *Project) bool {
	if p == nil || o == nil {
		return p == o
	}
	return p.coordinates == o.coordinates && p.source == o.source
}

func (p *Project) String() string {
	return p.EffectiveCoordinates().String()
}
