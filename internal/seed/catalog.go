// Package seed loads catalog fixtures into a catalog store.
package seed

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"os"

	"marketplace/internal/domain"
	"marketplace/internal/domain/models/catalog"
	catalogRepo "marketplace/internal/domain/repositories/catalog"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"
)

//go:embed fixtures/default.yaml
var defaultFixture []byte

// Fixture is a YAML catalog: per category, a nested folder tree with assets
type Fixture struct {
	Categories []CategoryFixture `yaml:"categories"`
}

type CategoryFixture struct {
	MediaCategory catalog.MediaCategory `yaml:"media_category"`
	Folders       []FolderFixture       `yaml:"folders"`
}

type FolderFixture struct {
	ID            string          `yaml:"id"` // optional; generated when empty
	Name          string          `yaml:"name"`
	Purchasable   bool            `yaml:"purchasable"`
	BasePrice     int64           `yaml:"base_price"`
	DiscountPrice *int64          `yaml:"discount_price"`
	Folders       []FolderFixture `yaml:"folders"`
	Assets        []AssetFixture  `yaml:"assets"`
}

type AssetFixture struct {
	ID            string `yaml:"id"`
	Title         string `yaml:"title"`
	BasePrice     int64  `yaml:"base_price"`
	DiscountPrice *int64 `yaml:"discount_price"`
	PreviewURL    string `yaml:"preview_url"`
	DownloadURL   string `yaml:"download_url"`
	QRPayload     string `yaml:"qr_payload"`
}

func (c CategoryFixture) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.MediaCategory,
			validation.Required,
			validation.In(catalog.CategoryTemplate, catalog.CategoryPicture, catalog.CategoryVideo, catalog.CategoryAudio),
		),
		validation.Field(&c.Folders),
	)
}

func (f FolderFixture) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.ID, validation.By(optionalNodeID)),
		validation.Field(&f.Name, validation.Required),
		validation.Field(&f.BasePrice, validation.Min(int64(0))),
		validation.Field(&f.DiscountPrice, validation.By(discountBelow(f.BasePrice))),
		validation.Field(&f.Folders),
		validation.Field(&f.Assets),
	)
}

func (a AssetFixture) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.ID, validation.By(optionalNodeID)),
		validation.Field(&a.Title, validation.Required),
		validation.Field(&a.BasePrice, validation.Min(int64(0))),
		validation.Field(&a.DiscountPrice, validation.By(discountBelow(a.BasePrice))),
	)
}

func optionalNodeID(value interface{}) error {
	id, _ := value.(string)
	if id == "" {
		return nil
	}
	return domain.ValidateNodeID(id)
}

func discountBelow(base int64) validation.RuleFunc {
	return func(value interface{}) error {
		discount, _ := value.(*int64)
		if discount == nil {
			return nil
		}
		if *discount < 0 || *discount >= base {
			return fmt.Errorf("must be between 0 and base price %d (exclusive)", base)
		}
		return nil
	}
}

// ParseFixture decodes and validates a YAML fixture
func ParseFixture(data []byte) (*Fixture, error) {
	var fx Fixture
	if err := yaml.Unmarshal(data, &fx); err != nil {
		return nil, fmt.Errorf("decode fixture: %w", err)
	}
	if err := validation.Validate(fx.Categories, validation.Required); err != nil {
		return nil, fmt.Errorf("%w: categories: %v", domain.ErrValidation, err)
	}
	return &fx, nil
}

// LoadFixtureFile reads a fixture from disk; an empty path selects the
// embedded demo catalog.
func LoadFixtureFile(path string) (*Fixture, error) {
	if path == "" {
		return ParseFixture(defaultFixture)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	return ParseFixture(data)
}

// CatalogSeeder writes fixtures through the catalog repositories
type CatalogSeeder struct {
	folderRepo catalogRepo.FolderRepository
	assetRepo  catalogRepo.AssetRepository
	logger     *slog.Logger
}

// NewCatalogSeeder creates a new catalog seeder
func NewCatalogSeeder(folderRepo catalogRepo.FolderRepository, assetRepo catalogRepo.AssetRepository, logger *slog.Logger) *CatalogSeeder {
	return &CatalogSeeder{
		folderRepo: folderRepo,
		assetRepo:  assetRepo,
		logger:     logger,
	}
}

// Result counts what a seed run created
type Result struct {
	Folders int
	Assets  int
}

// Seed creates every folder and asset of the fixture, parents first
func (s *CatalogSeeder) Seed(ctx context.Context, fx *Fixture) (*Result, error) {
	result := &Result{}
	for _, c := range fx.Categories {
		for i := range c.Folders {
			if err := s.seedFolder(ctx, c.MediaCategory, nil, &c.Folders[i], result); err != nil {
				return result, err
			}
		}
		s.logger.Info("category seeded", "media_category", c.MediaCategory, "root_folders", len(c.Folders))
	}
	return result, nil
}

func (s *CatalogSeeder) seedFolder(ctx context.Context, category catalog.MediaCategory, parentID *string, ff *FolderFixture, result *Result) error {
	folder := &catalog.Folder{
		ID:            ff.ID,
		MediaCategory: category,
		ParentID:      parentID,
		Name:          ff.Name,
		IsPurchasable: ff.Purchasable,
		BasePrice:     ff.BasePrice,
		DiscountPrice: ff.DiscountPrice,
	}
	if err := s.folderRepo.Create(ctx, folder); err != nil {
		return fmt.Errorf("seed folder %q: %w", ff.Name, err)
	}
	result.Folders++

	for _, af := range ff.Assets {
		asset := &catalog.Asset{
			ID:            af.ID,
			MediaCategory: category,
			ParentID:      folder.ID,
			Title:         af.Title,
			BasePrice:     af.BasePrice,
			DiscountPrice: af.DiscountPrice,
			PreviewURL:    af.PreviewURL,
			DownloadURL:   af.DownloadURL,
			QRPayload:     af.QRPayload,
		}
		if err := s.assetRepo.Create(ctx, asset); err != nil {
			return fmt.Errorf("seed asset %q: %w", af.Title, err)
		}
		result.Assets++
	}

	for i := range ff.Folders {
		if err := s.seedFolder(ctx, category, &folder.ID, &ff.Folders[i], result); err != nil {
			return err
		}
	}
	return nil
}
