package exec

import (
	"fmt"
	"io"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/samber/lo"

	errUtils "github.com/cloudposse/pomgraph/errors"
	"github.com/cloudposse/pomgraph/pkg/dependency"
	"github.com/cloudposse/pomgraph/pkg/perf"
)

// builtIn marks values that come from the coordinates rather than a properties section.
const builtIn = "(coordinates)"

// PropertiesProps are the arguments of `pomgraph properties`.
type PropertiesProps struct {
	Project string
	// Name selects a single property.
	Name   string
	Format string
	File   string
}

// PropertyRow is one property as seen from a project.
type PropertyRow struct {
	Name      string `json:"name" yaml:"name"`
	Value     string `json:"value" yaml:"value"`
	Raw       string `json:"raw,omitempty" yaml:"raw,omitempty"`
	DefinedIn string `json:"definedIn" yaml:"definedIn"`
}

// PropertiesResult lists every property a project sees.
type PropertiesResult struct {
	Project    string        `json:"project" yaml:"project"`
	Properties []PropertyRow `json:"properties" yaml:"properties"`
}

func (r *PropertiesResult) headers() []string {
	return []string{"NAME", "VALUE", "DEFINED IN"}
}

func (r *PropertiesResult) rows() [][]string {
	return lo.Map(r.Properties, func(p PropertyRow, _ int) []string {
		return []string{p.Name, p.Value, p.DefinedIn}
	})
}

// ExecuteProperties prints the expanded properties of a project, nearest
// definition first.
func ExecuteProperties(w io.Writer, ws *Workspace, props PropertiesProps) error {
	defer perf.Track(&ws.Config, "exec.ExecuteProperties")()

	project, err := ws.FindProject(props.Project)
	if err != nil {
		return err
	}
	ctx := ws.Engine.For(project)
	result := &PropertiesResult{Project: project.EffectiveCoordinates().String()}

	if props.Name != "" {
		row, ok := lookupProperty(ctx, props.Name)
		if !ok {
			return errUtils.Build(fmt.Errorf("%w: '%s'", errUtils.ErrPropertyNotFound, props.Name)).
				WithHintf("%s and its ancestors do not define it", result.Project).
				Err()
		}
		result.Properties = []PropertyRow{row}
		return printOrWriteToFile(w, props.Format, props.File, result)
	}

	seen := mapset.NewThreadUnsafeSet[string]()
	for _, p := range ctx.Chain() {
		for _, prop := range p.Properties() {
			if !seen.Add(prop.Name) {
				continue
			}
			value, _ := ctx.Property(prop.Name)
			result.Properties = append(result.Properties, PropertyRow{
				Name:      prop.Name,
				Value:     value,
				Raw:       prop.Value,
				DefinedIn: p.EffectiveCoordinates().String(),
			})
		}
	}
	return printOrWriteToFile(w, props.Format, props.File, result)
}

func lookupProperty(ctx *dependency.Context, name string) (PropertyRow, bool) {
	value, ok := ctx.Property(name)
	if !ok {
		return PropertyRow{}, false
	}
	for _, p := range ctx.Chain() {
		if raw, ok := p.Property(name); ok {
			return PropertyRow{Name: name, Value: value, Raw: raw, DefinedIn: p.EffectiveCoordinates().String()}, true
		}
	}
	return PropertyRow{Name: name, Value: value, DefinedIn: builtIn}, true
}
