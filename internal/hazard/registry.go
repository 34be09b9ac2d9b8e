// Package hazard combines per-county hazard metrics through the crosswalk
// into ranked per-nation hazard summaries.
package hazard

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Def describes one hazard type and its metrics. ScoreMetric is intensive
// (percentile/score, aggregated by weighted mean); LossMetric is extensive
// (dollars, aggregated by weighted sum) and optional.
type Def struct {
	Name        string `yaml:"name"`
	ScoreMetric string `yaml:"score_metric"`
	LossMetric  string `yaml:"loss_metric,omitempty"`
}

// Registry is the full set of hazard types an aggregation run covers.
type Registry struct {
	Hazards []Def `yaml:"hazards"`
}

// DefaultRegistry covers the hazard types of the national risk dataset.
func DefaultRegistry() *Registry {
	return &Registry{Hazards: []Def{
		{Name: "avalanche", ScoreMetric: "AVLN_RISKS", LossMetric: "AVLN_EALT"},
		{Name: "coastal_flooding", ScoreMetric: "CFLD_RISKS", LossMetric: "CFLD_EALT"},
		{Name: "cold_wave", ScoreMetric: "CWAV_RISKS", LossMetric: "CWAV_EALT"},
		{Name: "drought", ScoreMetric: "DRGT_RISKS", LossMetric: "DRGT_EALT"},
		{Name: "earthquake", ScoreMetric: "ERQK_RISKS", LossMetric: "ERQK_EALT"},
		{Name: "hail", ScoreMetric: "HAIL_RISKS", LossMetric: "HAIL_EALT"},
		{Name: "heat_wave", ScoreMetric: "HWAV_RISKS", LossMetric: "HWAV_EALT"},
		{Name: "hurricane", ScoreMetric: "HRCN_RISKS", LossMetric: "HRCN_EALT"},
		{Name: "ice_storm", ScoreMetric: "ISTM_RISKS", LossMetric: "ISTM_EALT"},
		{Name: "landslide", ScoreMetric: "LNDS_RISKS", LossMetric: "LNDS_EALT"},
		{Name: "riverine_flooding", ScoreMetric: "RFLD_RISKS", LossMetric: "RFLD_EALT"},
		{Name: "strong_wind", ScoreMetric: "SWND_RISKS", LossMetric: "SWND_EALT"},
		{Name: "tornado", ScoreMetric: "TRND_RISKS", LossMetric: "TRND_EALT"},
		{Name: "wildfire", ScoreMetric: "WFIR_RISKS", LossMetric: "WFIR_EALT"},
		{Name: "winter_weather", ScoreMetric: "WNTW_RISKS", LossMetric: "WNTW_EALT"},
	}}
}

// LoadRegistry reads a hazard registry from a YAML file. An empty path
// returns the default registry.
func LoadRegistry(path string) (*Registry, error) {
	if path == "" {
		return DefaultRegistry(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "hazard: read registry %s", path)
	}

	var reg Registry
	if err := yaml.Unmarshal(data, &reg); err != nil {
		return nil, eris.Wrap(err, "hazard: parse registry")
	}
	if err := reg.validate(); err != nil {
		return nil, err
	}
	return &reg, nil
}

func (r *Registry) validate() error {
	if len(r.Hazards) == 0 {
		return eris.New("hazard: registry defines no hazards")
	}
	seen := make(map[string]bool, len(r.Hazards))
	for _, d := range r.Hazards {
		if d.Name == "" || d.ScoreMetric == "" {
			return eris.Errorf("hazard: registry entry %q needs a name and score metric", d.Name)
		}
		if seen[d.Name] {
			return eris.Errorf("hazard: duplicate hazard %s in registry", d.Name)
		}
		seen[d.Name] = true
	}
	return nil
}
