package osmlinks

import (
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	DEFAULT_MAXIMUM_LENGTH_METERS = 1000.0
	DEFAULT_FORWARD_BAND_DEGREES  = 90.0
)

var (
	defaultLinkTypes     = []string{"motorway_link", "trunk_link", "primary_link", "secondary_link", "tertiary_link"}
	defaultPriorityOrder = []string{"motorway", "trunk", "primary", "secondary", "tertiary", "unclassified", "residential"}
	defaultLinkToParent  = map[string]string{
		"motorway_link":  "motorway",
		"trunk_link":     "trunk",
		"primary_link":   "primary",
		"secondary_link": "secondary",
		"tertiary_link":  "tertiary",
	}

	defaultAccessFlagValues    = []string{"yes", "permissive"}
	defaultAccessMotorwayTypes = []string{"motorway", "trunk"}
	defaultAccessFootwayTypes  = []string{"footway", "bridleway", "steps", "path", "cycleway", "pedestrian", "track", "bus_guideway", "busway", "raceway"}
)

// Configuration Parameters of link and access checks. Could be loaded from YAML file
type Configuration struct {
	HighwayTypes HighwayTypesConfiguration `yaml:"highwayTypes"`
	Length       LengthConfiguration       `yaml:"length"`
	Neighbor     NeighborConfiguration     `yaml:"neighbor"`
	Access       AccessConfiguration       `yaml:"access"`
}

// HighwayTypesConfiguration Road classes table parameters
type HighwayTypesConfiguration struct {
	LinkTypes                  []string          `yaml:"linkTypes" validate:"dive,required"`
	PriorityOrder              []string          `yaml:"priorityOrder" validate:"min=1,dive,required"`
	LinkToParentCorrespondence map[string]string `yaml:"linkToParentCorrespondence" validate:"dive,keys,required,endkeys,required"`
}

type LengthConfiguration struct {
	Maximum MaximumLengthConfiguration `yaml:"maximum"`
}

type MaximumLengthConfiguration struct {
	Meters float64 `yaml:"meters" validate:"gt=0"`
}

// NeighborConfiguration Endpoint neighbor resolving parameters
type NeighborConfiguration struct {
	// Candidates deviating from way's heading more than this value are not considered as continuation
	ForwardBandDegrees float64 `yaml:"forwardBandDegrees" validate:"gt=0,lte=180"`
}

// AccessConfiguration Parameters for `access` tag check
type AccessConfiguration struct {
	FlagValues    []string `yaml:"flagValues" validate:"dive,required"`
	MotorwayTypes []string `yaml:"motorwayTypes" validate:"dive,required"`
	FootwayTypes  []string `yaml:"footwayTypes" validate:"dive,required"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report YAML names instead of Go names
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// DefaultConfiguration returns configuration with default values
func DefaultConfiguration() *Configuration {
	cfg := &Configuration{}
	cfg.applyDefaults()
	return cfg
}

// LoadConfiguration reads YAML file. Keys which are not provided keep default values.
// Lists and maps provided in file replace defaults entirely
func LoadConfiguration(fname string) (*Configuration, error) {
	data, err := os.ReadFile(fname)
	if err != nil {
		return nil, errors.Wrap(err, "Can't read configuration file")
	}
	cfg, err := ParseConfiguration(data)
	if err != nil {
		return nil, errors.Wrapf(err, "Can't parse configuration file '%s'", fname)
	}
	return cfg, nil
}

// ParseConfiguration parses YAML document, applies defaults and validates result
func ParseConfiguration(data []byte) (*Configuration, error) {
	cfg := &Configuration{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, "Can't unmarshal YAML")
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cfg *Configuration) applyDefaults() {
	if cfg.HighwayTypes.LinkTypes == nil {
		cfg.HighwayTypes.LinkTypes = copyStrings(defaultLinkTypes)
	}
	if cfg.HighwayTypes.PriorityOrder == nil {
		cfg.HighwayTypes.PriorityOrder = copyStrings(defaultPriorityOrder)
	}
	if cfg.HighwayTypes.LinkToParentCorrespondence == nil {
		cfg.HighwayTypes.LinkToParentCorrespondence = make(map[string]string, len(defaultLinkToParent))
		for link, parent := range defaultLinkToParent {
			cfg.HighwayTypes.LinkToParentCorrespondence[link] = parent
		}
	}
	if cfg.Length.Maximum.Meters == 0 {
		cfg.Length.Maximum.Meters = DEFAULT_MAXIMUM_LENGTH_METERS
	}
	if cfg.Neighbor.ForwardBandDegrees == 0 {
		cfg.Neighbor.ForwardBandDegrees = DEFAULT_FORWARD_BAND_DEGREES
	}
	if cfg.Access.FlagValues == nil {
		cfg.Access.FlagValues = copyStrings(defaultAccessFlagValues)
	}
	if cfg.Access.MotorwayTypes == nil {
		cfg.Access.MotorwayTypes = copyStrings(defaultAccessMotorwayTypes)
	}
	if cfg.Access.FootwayTypes == nil {
		cfg.Access.FootwayTypes = copyStrings(defaultAccessFootwayTypes)
	}
}

// Validate checks values ranges. Returns *ConfigurationError for the first violation
func (cfg *Configuration) Validate() error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		fieldErr := validationErrors[0]
		field := strings.TrimPrefix(fieldErr.Namespace(), "Configuration.")
		return configurationErrorf(field, "value '%v' violates '%s' rule", fieldErr.Value(), ruleString(fieldErr))
	}
	return errors.Wrap(err, "Can't validate configuration")
}

func ruleString(fieldErr validator.FieldError) string {
	if fieldErr.Param() == "" {
		return fieldErr.Tag()
	}
	return fmt.Sprintf("%s=%s", fieldErr.Tag(), fieldErr.Param())
}

// BuildTable creates road classes table from `highwayTypes` section
func (cfg *Configuration) BuildTable() (*RoadClassTable, error) {
	priority, badIdx := parseHighwayTypes(cfg.HighwayTypes.PriorityOrder)
	if badIdx >= 0 {
		return nil, configurationErrorf("highwayTypes.priorityOrder", "unknown class '%s'", cfg.HighwayTypes.PriorityOrder[badIdx])
	}
	linkTypes, badIdx := parseHighwayTypes(cfg.HighwayTypes.LinkTypes)
	if badIdx >= 0 {
		return nil, configurationErrorf("highwayTypes.linkTypes", "unknown class '%s'", cfg.HighwayTypes.LinkTypes[badIdx])
	}
	linkToParent := make(map[HighwayType]HighwayType, len(cfg.HighwayTypes.LinkToParentCorrespondence))
	for linkStr, parentStr := range cfg.HighwayTypes.LinkToParentCorrespondence {
		link, ok := ParseHighwayType(linkStr)
		if !ok {
			return nil, configurationErrorf("highwayTypes.linkToParentCorrespondence", "unknown class '%s'", linkStr)
		}
		parent, ok := ParseHighwayType(parentStr)
		if !ok {
			return nil, configurationErrorf("highwayTypes.linkToParentCorrespondence", "unknown class '%s'", parentStr)
		}
		linkToParent[link] = parent
	}
	return NewRoadClassTable(priority, linkTypes, linkToParent)
}

// accessSets converts `access` section into lookup sets
func (cfg *Configuration) accessSets() (map[string]struct{}, map[HighwayType]struct{}, map[HighwayType]struct{}, error) {
	values := make(map[string]struct{}, len(cfg.Access.FlagValues))
	for _, value := range cfg.Access.FlagValues {
		values[strings.ToLower(value)] = struct{}{}
	}
	motorways, badIdx := parseHighwayTypes(cfg.Access.MotorwayTypes)
	if badIdx >= 0 {
		return nil, nil, nil, configurationErrorf("access.motorwayTypes", "unknown class '%s'", cfg.Access.MotorwayTypes[badIdx])
	}
	footways, badIdx := parseHighwayTypes(cfg.Access.FootwayTypes)
	if badIdx >= 0 {
		return nil, nil, nil, configurationErrorf("access.footwayTypes", "unknown class '%s'", cfg.Access.FootwayTypes[badIdx])
	}
	return values, highwaySet(motorways), highwaySet(footways), nil
}

// Marshal returns YAML representation
func (cfg *Configuration) Marshal() ([]byte, error) {
	return yaml.Marshal(cfg)
}

func copyStrings(values []string) []string {
	result := make([]string, len(values))
	copy(result, values)
	return result
}

func highwaySet(values []HighwayType) map[HighwayType]struct{} {
	result := make(map[HighwayType]struct{}, len(values))
	for _, value := range values {
		result[value] = struct{}{}
	}
	return result
}

// DefaultRoadClassTable returns table built from default configuration
func DefaultRoadClassTable() *RoadClassTable {
	table, err := DefaultConfiguration().BuildTable()
	if err != nil {
		panic(fmt.Sprintf("default road classes table is malformed: %s", err))
	}
	return table
}
