package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/senira34/lolipop-wear/internal/apiclient"
	"github.com/senira34/lolipop-wear/internal/domain"
)

type seedFile struct {
	Products []seedProduct `yaml:"products"`
}

type seedProduct struct {
	ID          int64    `yaml:"id"`
	Name        string   `yaml:"name"`
	Price       float64  `yaml:"price"`
	Category    string   `yaml:"category"`
	Subcategory string   `yaml:"subcategory"`
	Image       string   `yaml:"image"`
	Images      []string `yaml:"images"`
	Description string   `yaml:"description"`
	Fabric      string   `yaml:"fabric"`
	Fit         string   `yaml:"fit"`
	Sizes       []string `yaml:"sizes"`
	Colors      []string `yaml:"colors"`
	Stock       int      `yaml:"stock"`
	Rating      float64  `yaml:"rating"`
}

func (s seedProduct) toProduct() *domain.Product {
	return &domain.Product{
		ID:          s.ID,
		Name:        s.Name,
		Price:       s.Price,
		Category:    domain.Category(s.Category),
		Subcategory: s.Subcategory,
		Image:       s.Image,
		Images:      s.Images,
		Description: s.Description,
		Fabric:      s.Fabric,
		Fit:         domain.Fit(s.Fit),
		Sizes:       s.Sizes,
		Colors:      s.Colors,
		Stock:       s.Stock,
		Rating:      s.Rating,
	}
}

// loadSeed parses and validates a catalog seed file. Every invalid product is
// reported, not just the first.
func loadSeed(path string) ([]*domain.Product, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}

	var file seedFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}

	products := make([]*domain.Product, 0, len(file.Products))
	seen := make(map[int64]bool, len(file.Products))
	var errs []error
	for i, sp := range file.Products {
		p := sp.toProduct()
		if err := p.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("product #%d (id %d): %w", i+1, sp.ID, err))
			continue
		}
		if seen[p.ID] {
			errs = append(errs, fmt.Errorf("product #%d: duplicate id %d", i+1, p.ID))
			continue
		}
		seen[p.ID] = true
		products = append(products, p)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return products, nil
}

func seedCmd(opts *globalOptions) *cobra.Command {
	var skipExisting bool

	cmd := &cobra.Command{
		Use:   "seed <file.yaml>",
		Short: "Load catalog products from a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			products, err := loadSeed(args[0])
			if err != nil {
				return err
			}

			a, err := newApp(opts, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer a.Close()

			created, skipped := 0, 0
			for _, p := range products {
				if _, err := a.client.CreateProduct(cmd.Context(), p); err != nil {
					if skipExisting && errors.Is(err, apiclient.ErrAlreadyExists) {
						skipped++
						continue
					}
					return fmt.Errorf("create product %d: %w", p.ID, err)
				}
				created++
			}

			fmt.Fprintf(a.out, "Seeded %d products (%d skipped)\n", created, skipped)
			return nil
		},
	}

	cmd.Flags().BoolVar(&skipExisting, "skip-existing", false, "skip products whose id already exists")
	return cmd
}
