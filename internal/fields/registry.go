package fields

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/joseph-ayodele/amenity-parser/internal/common"
	"github.com/joseph-ayodele/amenity-parser/internal/extract"
)

// Factory builds a strategy from its (possibly empty) YAML options node.
type Factory func(opts *yaml.Node) (extract.FieldExtractor, error)

// Registry maps strategy names to factories.
type Registry struct {
	factories map[string]Factory
}

// DefaultOrder is the scan order used when a config names no strategies.
var DefaultOrder = []string{
	FieldName, FieldAddress, FieldDistrict, FieldCategory, FieldStatus, FieldStatusDetailed,
	FieldBudget, FieldDates, FieldCustomer, FieldContractor, FieldRegion, FieldArea,
	FieldPhotoHint, FieldMapHint,
}

func NewRegistry() *Registry {
	r := &Registry{factories: map[string]Factory{}}
	r.factories[FieldName] = func(n *yaml.Node) (extract.FieldExtractor, error) {
		var o NameOptions
		if err := decodeOptions(n, &o); err != nil {
			return nil, err
		}
		s, err := NewNameStrategy(o)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	r.factories[FieldAddress] = markerFactory(func(o MarkerOptions) extract.FieldExtractor { return NewAddressStrategy(o) })
	r.factories[FieldCustomer] = markerFactory(func(o MarkerOptions) extract.FieldExtractor { return NewCustomerStrategy(o) })
	r.factories[FieldContractor] = markerFactory(func(o MarkerOptions) extract.FieldExtractor { return NewContractorStrategy(o) })
	r.factories[FieldDistrict] = func(n *yaml.Node) (extract.FieldExtractor, error) {
		var o DistrictOptions
		if err := decodeOptions(n, &o); err != nil {
			return nil, err
		}
		return NewDistrictStrategy(o), nil
	}
	r.factories[FieldCategory] = func(n *yaml.Node) (extract.FieldExtractor, error) {
		var o CategoryOptions
		if err := decodeOptions(n, &o); err != nil {
			return nil, err
		}
		return NewCategoryStrategy(o), nil
	}
	r.factories[FieldStatus] = func(n *yaml.Node) (extract.FieldExtractor, error) {
		var o StatusOptions
		if err := decodeOptions(n, &o); err != nil {
			return nil, err
		}
		return NewStatusStrategy(o), nil
	}
	r.factories[FieldStatusDetailed] = func(n *yaml.Node) (extract.FieldExtractor, error) {
		var o struct {
			Marker string `yaml:"marker"`
		}
		if err := decodeOptions(n, &o); err != nil {
			return nil, err
		}
		return NewDetailedStatusStrategy(o.Marker), nil
	}
	r.factories[FieldBudget] = func(n *yaml.Node) (extract.FieldExtractor, error) {
		var o BudgetOptions
		if err := decodeOptions(n, &o); err != nil {
			return nil, err
		}
		s, err := NewBudgetStrategy(o)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	r.factories[FieldDates] = noOptions(func() extract.FieldExtractor { return NewDatesStrategy() })
	r.factories[FieldArea] = noOptions(func() extract.FieldExtractor { return NewAreaStrategy() })
	r.factories[FieldRegion] = func(n *yaml.Node) (extract.FieldExtractor, error) {
		var o RegionOptions
		if err := decodeOptions(n, &o); err != nil {
			return nil, err
		}
		return NewRegionStrategy(o), nil
	}
	r.factories[FieldPhotoHint] = hintFactory(func(o HintOptions) extract.FieldExtractor { return NewPhotoHintStrategy(o) })
	r.factories[FieldMapHint] = hintFactory(func(o HintOptions) extract.FieldExtractor { return NewMapHintStrategy(o) })
	return r
}

// Register adds a custom strategy. Names are unique.
func (r *Registry) Register(name string, f Factory) error {
	if name == "" || f == nil {
		return configErr("strategy name and factory are required")
	}
	if _, exists := r.factories[name]; exists {
		return configErr("strategy %q already registered", name)
	}
	r.factories[name] = f
	return nil
}

func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.factories))
	for name := range r.factories {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (r *Registry) Build(spec StrategySpec) (extract.FieldExtractor, error) {
	f, ok := r.factories[spec.Name]
	if !ok {
		return nil, configErr("unknown strategy %q", spec.Name)
	}
	opts := &spec.Options
	if spec.Options.Kind == 0 {
		opts = nil
	}
	e, err := f(opts)
	if err != nil {
		return nil, configErr("strategy %q: %v", spec.Name, err)
	}
	return e, nil
}

// StrategySpec names one strategy and its options.
type StrategySpec struct {
	Name    string    `yaml:"name"`
	Options yaml.Node `yaml:"options"`
}

// StrategyConfig is the on-disk shape of a field-extraction config.
type StrategyConfig struct {
	Strategies  []StrategySpec  `yaml:"strategies"`
	Description ResidualOptions `yaml:"description"`
}

// ParseStrategyConfig decodes strictly: unknown keys are errors.
func ParseStrategyConfig(r io.Reader) (StrategyConfig, error) {
	var cfg StrategyConfig
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return StrategyConfig{}, configErr("strategy config: %v", err)
	}
	return cfg, nil
}

func LoadStrategyConfig(path string) (StrategyConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return StrategyConfig{}, err
	}
	defer f.Close()
	return ParseStrategyConfig(f)
}

// BuildBattery instantiates cfg against the registry. An empty strategy list
// means every built-in in DefaultOrder.
func (r *Registry) BuildBattery(cfg StrategyConfig, logger *slog.Logger) (*Battery, error) {
	specs := cfg.Strategies
	if len(specs) == 0 {
		specs = make([]StrategySpec, len(DefaultOrder))
		for i, name := range DefaultOrder {
			specs[i] = StrategySpec{Name: name}
		}
	}
	seen := map[string]bool{}
	extractors := make([]extract.FieldExtractor, 0, len(specs))
	for _, spec := range specs {
		if seen[spec.Name] {
			return nil, configErr("strategy %q listed twice", spec.Name)
		}
		seen[spec.Name] = true
		e, err := r.Build(spec)
		if err != nil {
			return nil, err
		}
		extractors = append(extractors, e)
	}
	return NewBattery(extractors, cfg.Description, logger), nil
}

// DefaultStrategies returns every built-in with default options.
func DefaultStrategies() []extract.FieldExtractor {
	r := NewRegistry()
	out := make([]extract.FieldExtractor, 0, len(DefaultOrder))
	for _, name := range DefaultOrder {
		e, err := r.Build(StrategySpec{Name: name})
		if err != nil {
			panic(err) // built-in defaults always compile
		}
		out = append(out, e)
	}
	return out
}

func decodeOptions(n *yaml.Node, out any) error {
	if n == nil || n.Kind == 0 {
		return nil
	}
	raw, err := yaml.Marshal(n)
	if err != nil {
		return err
	}
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func markerFactory(build func(MarkerOptions) extract.FieldExtractor) Factory {
	return func(n *yaml.Node) (extract.FieldExtractor, error) {
		var o MarkerOptions
		if err := decodeOptions(n, &o); err != nil {
			return nil, err
		}
		return build(o), nil
	}
}

func hintFactory(build func(HintOptions) extract.FieldExtractor) Factory {
	return func(n *yaml.Node) (extract.FieldExtractor, error) {
		var o HintOptions
		if err := decodeOptions(n, &o); err != nil {
			return nil, err
		}
		return build(o), nil
	}
}

func noOptions(build func() extract.FieldExtractor) Factory {
	return func(n *yaml.Node) (extract.FieldExtractor, error) {
		var o struct{}
		if err := decodeOptions(n, &o); err != nil {
			return nil, err
		}
		return build(), nil
	}
}

func configErr(format string, args ...any) error {
	return common.NewAppError("CONFIG_ERROR", fmt.Sprintf(format, args...), common.ErrInvalidInput)
}
