// Package loader reads policy and entity documents from disk and maps
// them onto the authz builders. File handling and formats live here so
// the evaluation core stays free of I/O.
package loader

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/gatehouse-authz/gatehouse/internal/authz"
)

// ErrUnknownResource indicates a resource name absent from the entity
// document. Distinct from a deny: the caller asked about an object the
// deployment does not know.
var ErrUnknownResource = errors.New("loader: unknown resource")

// PolicyDocument is the on-disk shape of a policy file.
type PolicyDocument struct {
	Statements []StatementDoc `yaml:"statements" validate:"required,min=1,dive"`
}

// StatementDoc is one statement as written by a policy author.
type StatementDoc struct {
	ID        string            `yaml:"id"`
	Effect    string            `yaml:"effect" validate:"required,oneof=permit forbid"`
	Principal PrincipalScopeDoc `yaml:"principal"`
	Action    ActionScopeDoc    `yaml:"action"`
	Resource  ResourceScopeDoc  `yaml:"resource"`
	Condition *ConditionDoc     `yaml:"condition"`
}

// PrincipalScopeDoc selects principals: any, one id, or one role.
type PrincipalScopeDoc struct {
	Any  bool   `yaml:"any"`
	ID   string `yaml:"id"`
	Role string `yaml:"role"`
}

// ActionScopeDoc selects actions: any or one name.
type ActionScopeDoc struct {
	Any  bool   `yaml:"any"`
	Name string `yaml:"name"`
}

// ResourceScopeDoc selects resources: any, a kind, or a kind+name pair.
type ResourceScopeDoc struct {
	Any  bool   `yaml:"any"`
	Kind string `yaml:"kind"`
	Name string `yaml:"name"`
}

// ConditionDoc mirrors the authz condition tree.
type ConditionDoc struct {
	Op        string         `yaml:"op" validate:"required"`
	Attribute string         `yaml:"attribute"`
	Value     any            `yaml:"value"`
	Values    []any          `yaml:"values"`
	Args      []ConditionDoc `yaml:"args"`
}

// EntityDocument is the on-disk shape of an entity file.
type EntityDocument struct {
	Principals []PrincipalDoc `yaml:"principals" validate:"dive"`
	Resources  []ResourceDoc  `yaml:"resources" validate:"dive"`
}

// PrincipalDoc is one principal with its role memberships and attributes.
type PrincipalDoc struct {
	ID         string         `yaml:"id" validate:"required"`
	Roles      []string       `yaml:"roles"`
	Attributes map[string]any `yaml:"attributes"`
}

// ResourceDoc registers one addressable resource.
type ResourceDoc struct {
	Kind string `yaml:"kind" validate:"required"`
	Name string `yaml:"name" validate:"required"`
}

// Loader parses and validates documents. It is stateless apart from the
// shared validator instance and safe for concurrent use.
type Loader struct {
	validate *validator.Validate
}

// New constructs a Loader.
func New() *Loader {
	return &Loader{validate: validator.New()}
}

// LoadPolicies reads a policy document and builds the policy set.
// Structural problems inside a statement surface as the core's
// InvalidStatementError; the whole load fails rather than admitting a
// partial rule set.
func (l *Loader) LoadPolicies(path string) (*authz.PolicySet, error) {
	var doc PolicyDocument
	if err := l.readDocument(path, &doc); err != nil {
		return nil, err
	}
	statements := make([]authz.Statement, 0, len(doc.Statements))
	for _, sd := range doc.Statements {
		statements = append(statements, authz.Statement{
			ID:     sd.ID,
			Effect: authz.Effect(sd.Effect),
			Principal: authz.PrincipalScope{
				Any:       sd.Principal.Any,
				Principal: sd.Principal.ID,
				Role:      sd.Principal.Role,
			},
			Action: authz.ActionScope{
				Any:    sd.Action.Any,
				Action: sd.Action.Name,
			},
			Resource: authz.ResourceScope{
				Any:  sd.Resource.Any,
				Kind: sd.Resource.Kind,
				Name: sd.Resource.Name,
			},
			Condition: sd.Condition.toCondition(),
		})
	}
	return authz.BuildPolicySet(statements)
}

// LoadEntities reads an entity document and builds the entity model plus
// the resource catalog used to resolve CLI resource arguments.
func (l *Loader) LoadEntities(path string) (*authz.EntityModel, *Catalog, error) {
	var doc EntityDocument
	if err := l.readDocument(path, &doc); err != nil {
		return nil, nil, err
	}
	records := make([]authz.PrincipalRecord, 0, len(doc.Principals))
	for _, pd := range doc.Principals {
		records = append(records, authz.PrincipalRecord{
			ID:         pd.ID,
			Roles:      pd.Roles,
			Attributes: pd.Attributes,
		})
	}
	model, err := authz.BuildEntityModel(records)
	if err != nil {
		return nil, nil, err
	}
	catalog := newCatalog(doc.Resources)
	return model, catalog, nil
}

func (l *Loader) readDocument(path string, dest any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("loader: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("loader: parse %s: %w", path, err)
	}
	if err := l.validate.Struct(dest); err != nil {
		return fmt.Errorf("loader: validate %s: %w", path, err)
	}
	return nil
}

func (cd *ConditionDoc) toCondition() *authz.Condition {
	if cd == nil {
		return nil
	}
	cond := authz.Condition{
		Op:        cd.Op,
		Attribute: cd.Attribute,
		Value:     cd.Value,
		Values:    cd.Values,
	}
	for i := range cd.Args {
		cond.Args = append(cond.Args, *cd.Args[i].toCondition())
	}
	return &cond
}

// Catalog resolves resource references to full (kind, name) identities.
type Catalog struct {
	byName map[string]authz.Resource
}

func newCatalog(resources []ResourceDoc) *Catalog {
	c := &Catalog{byName: make(map[string]authz.Resource, len(resources))}
	for _, rd := range resources {
		res := authz.Resource{Kind: rd.Kind, Name: rd.Name}
		c.byName[rd.Name] = res
		c.byName[rd.Kind+"/"+rd.Name] = res
	}
	return c
}

// Resolve maps a reference to a registered resource. It accepts either a
// bare name or the qualified "Kind/name" form.
func (c *Catalog) Resolve(ref string) (authz.Resource, error) {
	ref = strings.TrimSpace(ref)
	if res, ok := c.byName[ref]; ok {
		return res, nil
	}
	return authz.Resource{}, fmt.Errorf("%w: %s", ErrUnknownResource, ref)
}
