package research

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/mention-cli/internal/model"
)

// LoadBrands reads the brand configuration file. The pipeline treats each
// entry as opaque read-only input; editing the file is the caller's job.
func LoadBrands(path string) ([]model.BrandConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "research: read brands file %s", path)
	}

	var doc struct {
		Brands []model.BrandConfig `yaml:"brands"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, eris.Wrapf(err, "research: parse brands file %s", path)
	}

	return doc.Brands, nil
}

// FindBrand matches a name against the configured brands, exact first,
// then case-insensitive, then unique prefix.
func FindBrand(brands []model.BrandConfig, name string) (model.BrandConfig, bool) {
	for _, b := range brands {
		if b.Name == name {
			return b, true
		}
	}
	for _, b := range brands {
		if strings.EqualFold(b.Name, name) {
			return b, true
		}
	}

	var match model.BrandConfig
	found := 0
	lower := strings.ToLower(name)
	for _, b := range brands {
		if strings.HasPrefix(strings.ToLower(b.Name), lower) {
			match = b
			found++
		}
	}
	if found == 1 {
		return match, true
	}
	return model.BrandConfig{}, false
}
