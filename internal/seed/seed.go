// Package seed loads the startup phone fixtures into a repository.
package seed

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"phoneapi/internal/model"
	"phoneapi/internal/repository"
)

// Fixture is one phone to insert at startup.
type Fixture struct {
	PhoneName string `yaml:"phoneName"`
	BrandID   int32  `yaml:"brandId"`
}

type fixtureFile struct {
	Phones []Fixture `yaml:"phones"`
}

// Defaults returns the built-in catalog.
func Defaults() []Fixture {
	return []Fixture{
		{PhoneName: "Iphone X", BrandID: 1},
		{PhoneName: "Samsung Galaxy S10", BrandID: 2},
	}
}

// LoadFile reads fixtures from a YAML document of the form
//
//	phones:
//	  - phoneName: Iphone X
//	    brandId: 1
func LoadFile(path string) ([]Fixture, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var f fixtureFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse seed file %s: %w", path, err)
	}
	for i, p := range f.Phones {
		if p.PhoneName == "" {
			return nil, fmt.Errorf("seed file %s: phone %d has no phoneName", path, i)
		}
	}
	return f.Phones, nil
}

// Run saves every fixture whose name is not stored yet and returns how many were inserted.
// Existing names are skipped so restarts against a persistent store do not fail.
func Run(ctx context.Context, repo repository.PhoneRepository, fixtures []Fixture, logger *log.Logger) (int, error) {
	inserted := 0
	for _, f := range fixtures {
		_, err := repo.FindByPhoneName(ctx, f.PhoneName)
		if err == nil {
			logger.Debug("seed_skip", "phone_name", f.PhoneName, "reason", "already stored")
			continue
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return inserted, fmt.Errorf("lookup %q: %w", f.PhoneName, err)
		}

		p, err := repo.Save(ctx, &model.Phone{PhoneName: f.PhoneName, BrandID: f.BrandID})
		if err != nil {
			return inserted, fmt.Errorf("save %q: %w", f.PhoneName, err)
		}
		logger.Info("seed_insert", "phone_id", p.ID, "phone_name", p.PhoneName, "brand_id", p.BrandID)
		inserted++
	}
	return inserted, nil
}
