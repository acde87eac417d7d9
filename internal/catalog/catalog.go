package catalog

import (
	"errors"
	"fmt"
	"os"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// Country is a member of a region with a fixed income classification.
type Country struct {
	Name   string `yaml:"name"`
	Income string `yaml:"income"`
}

// Region holds its countries in display order.
type Region struct {
	Name      string    `yaml:"name"`
	Countries []Country `yaml:"countries"`
}

// Disease (a.k.a. market) with the brands sold against it.
type Disease struct {
	Name   string   `yaml:"name"`
	Brands []string `yaml:"brands"`
}

// Catalog is the static dimension schema the generator enumerates.
// It is built once and never mutated afterwards.
type Catalog struct {
	FirstYear   int       `yaml:"first_year"`
	LastYear    int       `yaml:"last_year"`
	Regions     []Region  `yaml:"regions"`
	Diseases    []Disease `yaml:"diseases"`
	Companies   []string  `yaml:"companies"`
	AgeGroups   []string  `yaml:"age_groups"`
	Genders     []string  `yaml:"genders"`
	Segments    []string  `yaml:"segments"`
	ROA         []string  `yaml:"roa"`
	FDF         []string  `yaml:"fdf"`
	Procurement []string  `yaml:"procurement"`
	// PublicChannels lists the procurement channels classified as Public.
	PublicChannels []string `yaml:"public_channels"`
}

const (
	Public  = "Public"
	Private = "Private"
)

// Income classes.
const (
	HighIncome   = "High Income"
	MiddleIncome = "Middle Income"
	LowIncome    = "Low Income"
)

var ErrInvalidCatalog = errors.New("invalid catalog")

// Years returns the contiguous year range.
func (c *Catalog) Years() []int {
	if c.LastYear < c.FirstYear {
		return nil
	}
	years := make([]int, 0, c.LastYear-c.FirstYear+1)
	for y := c.FirstYear; y <= c.LastYear; y++ {
		years = append(years, y)
	}
	return years
}

// CountryCount is the number of countries across all regions.
func (c *Catalog) CountryCount() int {
	n := 0
	for _, r := range c.Regions {
		n += len(r.Countries)
	}
	return n
}

// BrandCount is the number of (disease, brand) pairs.
func (c *Catalog) BrandCount() int {
	n := 0
	for _, d := range c.Diseases {
		n += len(d.Brands)
	}
	return n
}

// RecordCount is the size of the cross product the generator produces:
// years × countries × brands-per-disease × age groups × genders.
func (c *Catalog) RecordCount() int {
	return len(c.Years()) * c.CountryCount() * c.BrandCount() * len(c.AgeGroups) * len(c.Genders)
}

// IsPublic reports whether a procurement channel is a public buyer.
func (c *Catalog) IsPublic(channel string) bool {
	for _, p := range c.PublicChannels {
		if p == channel {
			return true
		}
	}
	return false
}

// Sector maps a procurement channel onto the Public/Private partition.
func (c *Catalog) Sector(channel string) string {
	if c.IsPublic(channel) {
		return Public
	}
	return Private
}

// Validate checks the structural rules: non-empty dimensions, a sane year
// range, unique names within every dimension, known income classes and
// public channels drawn from the procurement list.
func (c *Catalog) Validate() error {
	var errs error
	if c.LastYear < c.FirstYear {
		errs = multierr.Append(errs, fmt.Errorf("year range %d..%d is inverted", c.FirstYear, c.LastYear))
	}
	if len(c.Regions) == 0 {
		errs = multierr.Append(errs, errors.New("no regions"))
	}
	if len(c.Diseases) == 0 {
		errs = multierr.Append(errs, errors.New("no diseases"))
	}

	regions := make(map[string]struct{}, len(c.Regions))
	countries := make(map[string]string)
	for _, r := range c.Regions {
		if _, ok := regions[r.Name]; ok {
			errs = multierr.Append(errs, fmt.Errorf("region %q listed twice", r.Name))
		}
		regions[r.Name] = struct{}{}
		if len(r.Countries) == 0 {
			errs = multierr.Append(errs, fmt.Errorf("region %q has no countries", r.Name))
		}
		for _, ct := range r.Countries {
			if prev, ok := countries[ct.Name]; ok {
				errs = multierr.Append(errs, fmt.Errorf("country %q listed in %q and %q", ct.Name, prev, r.Name))
			}
			countries[ct.Name] = r.Name
			switch ct.Income {
			case HighIncome, MiddleIncome, LowIncome:
			default:
				errs = multierr.Append(errs, fmt.Errorf("country %q has unknown income class %q", ct.Name, ct.Income))
			}
		}
	}

	diseases := make(map[string]struct{}, len(c.Diseases))
	brands := make(map[string]string)
	for _, d := range c.Diseases {
		if _, ok := diseases[d.Name]; ok {
			errs = multierr.Append(errs, fmt.Errorf("disease %q listed twice", d.Name))
		}
		diseases[d.Name] = struct{}{}
		if len(d.Brands) == 0 {
			errs = multierr.Append(errs, fmt.Errorf("disease %q has no brands", d.Name))
		}
		for _, b := range d.Brands {
			if prev, ok := brands[b]; ok {
				errs = multierr.Append(errs, fmt.Errorf("brand %q listed under %q and %q", b, prev, d.Name))
			}
			brands[b] = d.Name
		}
	}

	for _, dim := range []struct {
		name string
		list []string
	}{
		{"companies", c.Companies},
		{"age_groups", c.AgeGroups},
		{"genders", c.Genders},
		{"segments", c.Segments},
		{"roa", c.ROA},
		{"fdf", c.FDF},
		{"procurement", c.Procurement},
	} {
		if len(dim.list) == 0 {
			errs = multierr.Append(errs, fmt.Errorf("%s is empty", dim.name))
		}
		seen := make(map[string]struct{}, len(dim.list))
		for _, v := range dim.list {
			if _, ok := seen[v]; ok {
				errs = multierr.Append(errs, fmt.Errorf("%s lists %q twice", dim.name, v))
			}
			seen[v] = struct{}{}
		}
	}

	channels := make(map[string]struct{}, len(c.Procurement))
	for _, p := range c.Procurement {
		channels[p] = struct{}{}
	}
	for _, p := range c.PublicChannels {
		if _, ok := channels[p]; !ok {
			errs = multierr.Append(errs, fmt.Errorf("public channel %q is not a procurement channel", p))
		}
	}

	if errs != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCatalog, errs)
	}
	return nil
}

// LoadFile reads a YAML catalog. The result is validated before return.
func LoadFile(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var c Catalog
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}
