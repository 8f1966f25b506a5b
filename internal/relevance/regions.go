package relevance

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// RegionConfig lists the terms that tie an article to a geographic region.
// Every list entry is matched independently; one article can collect several
// bonuses from the same category.
type RegionConfig struct {
	Keywords      []string `yaml:"keywords"`
	Landmarks     []string `yaml:"landmarks"`
	Organizations []string `yaml:"organizations"`
	Postcodes     []string `yaml:"postcodes"`
}

// regionsFile is the on-disk shape of a regions table.
type regionsFile struct {
	Regions map[string]RegionConfig `yaml:"regions"`
}

// LoadRegions reads a YAML region table. Region names are normalized to
// lower case.
func LoadRegions(path string) (map[string]RegionConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read regions file: %w", err)
	}

	var file regionsFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("decode regions file: %w", err)
	}
	if len(file.Regions) == 0 {
		return nil, fmt.Errorf("regions file %s contains no regions", path)
	}

	regions := make(map[string]RegionConfig, len(file.Regions))
	for name, cfg := range file.Regions {
		regions[strings.ToLower(strings.TrimSpace(name))] = cfg
	}
	return regions, nil
}

// DefaultRegions is the built-in table used when no regions file is
// configured.
func DefaultRegions() map[string]RegionConfig {
	return map[string]RegionConfig{
		"calderdale": {
			Keywords:      []string{"halifax", "calderdale", "hebden bridge", "sowerby bridge", "todmorden", "brighouse", "elland"},
			Landmarks:     []string{"piece hall", "shibden hall", "wainhouse tower", "north bridge", "eureka museum"},
			Organizations: []string{"calderdale council", "calderdale college", "overgate hospice", "halifax panthers"},
			Postcodes:     []string{"hx1", "hx2", "hx3", "hx4", "hx5", "hx6", "hx7", "ol14"},
		},
		"kirklees": {
			Keywords:      []string{"huddersfield", "kirklees", "dewsbury", "batley", "holmfirth", "mirfield"},
			Landmarks:     []string{"castle hill", "greenhead park", "john smith's stadium", "victoria tower"},
			Organizations: []string{"kirklees council", "huddersfield town", "university of huddersfield"},
			Postcodes:     []string{"hd1", "hd2", "hd3", "hd4", "hd5", "wf12", "wf13", "wf17"},
		},
		"bradford": {
			Keywords:      []string{"bradford", "shipley", "keighley", "bingley", "ilkley", "saltaire"},
			Landmarks:     []string{"alhambra theatre", "city park", "salts mill", "lister park", "cartwright hall"},
			Organizations: []string{"bradford council", "bradford city", "bradford bulls", "university of bradford"},
			Postcodes:     []string{"bd1", "bd2", "bd3", "bd4", "bd5", "bd16", "bd18", "bd21"},
		},
	}
}
