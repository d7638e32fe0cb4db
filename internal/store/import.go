package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/navyaanair/M-A-lead-generation-tool/internal/model"
)

// companyFile is the YAML layout of an import file.
type companyFile struct {
	Companies []model.Company `yaml:"companies"`
}

// ReadCompanies decodes a YAML document with a top-level "companies" list.
func ReadCompanies(r io.Reader) ([]model.Company, error) {
	var f companyFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("parse companies: %w", err)
	}
	return f.Companies, nil
}

// LoadFile reads companies from a YAML file into a fresh MemoryStore.
func LoadFile(ctx context.Context, path string) (*MemoryStore, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open companies file: %w", err)
	}
	defer f.Close()

	companies, err := ReadCompanies(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	s := NewMemoryStore()
	if _, err := Import(ctx, s, companies); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Import adds every company to s, stopping at the first failure. It returns
// how many were added.
func Import(ctx context.Context, s model.CompanyStore, companies []model.Company) (int, error) {
	for i, c := range companies {
		if _, err := s.Add(ctx, c); err != nil {
			return i, fmt.Errorf("import company %d: %w", i+1, err)
		}
	}
	return len(companies), nil
}

// prepare trims and validates c and assigns an ID when it has none.
func prepare(c model.Company) (model.Company, error) {
	c.ID = strings.TrimSpace(c.ID)
	c.Name = strings.TrimSpace(c.Name)
	c.Industry = strings.TrimSpace(c.Industry)
	c.Location = strings.TrimSpace(c.Location)
	if c.Strengths == nil {
		c.Strengths = []string{}
	}
	if c.Challenges == nil {
		c.Challenges = []string{}
	}
	if err := c.Validate(); err != nil {
		return model.Company{}, err
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return c, nil
}
