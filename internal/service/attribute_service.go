package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/catalog_api/internal/codec"
	"github.com/GTDGit/catalog_api/internal/database"
	"github.com/GTDGit/catalog_api/internal/models"
	"github.com/GTDGit/catalog_api/internal/repository"
	"github.com/GTDGit/catalog_api/internal/utils"
)

// DefineAttributeRequest represents the request to add an attribute to a
// category schema.
type DefineAttributeRequest struct {
	Name       string          `json:"name"`
	DataType   models.DataType `json:"dataType"`
	IsRequired bool            `json:"isRequired"`
	Options    []string        `json:"options"`
	SortOrder  int             `json:"sortOrder"`
}

// FormField describes one input of the product form of a category.
type FormField struct {
	AttributeID int64           `json:"attributeId"`
	Name        string          `json:"name"`
	DataType    models.DataType `json:"dataType"`
	IsRequired  bool            `json:"isRequired"`
	Input       codec.InputHint `json:"input"`
	Options     []string        `json:"options,omitempty"`
}

// AttributeService manages the category-scoped attribute schema.
type AttributeService struct {
	repo  *repository.AttributeRepository
	cache CatalogCache
}

// NewAttributeService creates a new AttributeService. cache may be nil.
func NewAttributeService(repo *repository.AttributeRepository, cache CatalogCache) *AttributeService {
	return &AttributeService{repo: repo, cache: cache}
}

// Define validates and stores a new attribute definition for categoryID and
// returns it with its generated id. An unknown category surfaces as a
// persistence error from the foreign key.
func (s *AttributeService) Define(ctx context.Context, categoryID int64, req DefineAttributeRequest) (*models.AttributeDefinition, error) {
	def, err := buildDefinition(categoryID, req)
	if err != nil {
		return nil, err
	}

	id, err := s.repo.Create(ctx, def)
	if err != nil {
		if database.IsConstraintViolation(err) {
			return nil, utils.PersistenceError("attribute violates a storage constraint", err)
		}
		return nil, utils.PersistenceError("failed to define attribute", err)
	}

	if s.cache != nil {
		if err := s.cache.InvalidateAttributes(ctx, categoryID); err != nil {
			log.Warn().Err(err).Int64("category_id", categoryID).Msg("failed to invalidate attribute cache")
		}
	}

	created, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, utils.PersistenceError("failed to read attribute", err)
	}
	return created, nil
}

// List returns the schema of categoryID in display order. A category
// without attributes yields an empty slice.
func (s *AttributeService) List(ctx context.Context, categoryID int64) ([]models.AttributeDefinition, error) {
	if s.cache == nil {
		return s.listFromStore(ctx, categoryID)
	}

	// The generation is read before the store so a define racing this read
	// moves readers to a newer key than the one written below.
	gen, err := s.cache.AttributesGeneration(ctx, categoryID)
	if err != nil {
		log.Warn().Err(err).Int64("category_id", categoryID).Msg("attribute cache generation read failed")
		return s.listFromStore(ctx, categoryID)
	}

	attrs, found, err := s.cache.GetAttributes(ctx, categoryID, gen)
	if err != nil {
		log.Warn().Err(err).Int64("category_id", categoryID).Msg("attribute cache read failed")
	}
	if found {
		return attrs, nil
	}

	attrs, err = s.listFromStore(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	if err := s.cache.SetAttributes(ctx, categoryID, gen, attrs); err != nil {
		log.Warn().Err(err).Int64("category_id", categoryID).Msg("failed to cache attributes")
	}
	return attrs, nil
}

func (s *AttributeService) listFromStore(ctx context.Context, categoryID int64) ([]models.AttributeDefinition, error) {
	attrs, err := s.repo.ListByCategory(ctx, categoryID)
	if err != nil {
		return nil, utils.PersistenceError("failed to list attributes", err)
	}
	return attrs, nil
}

// Get returns one attribute definition or a not found error.
func (s *AttributeService) Get(ctx context.Context, id int64) (*models.AttributeDefinition, error) {
	def, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.NotFoundError("attribute not found")
		}
		return nil, utils.PersistenceError("failed to get attribute", err)
	}
	return def, nil
}

// ProductForm returns the ordered input fields a client renders to create a
// product in categoryID.
func (s *AttributeService) ProductForm(ctx context.Context, categoryID int64) ([]FormField, error) {
	attrs, err := s.List(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	fields := make([]FormField, 0, len(attrs))
	for _, a := range attrs {
		fields = append(fields, FormField{
			AttributeID: a.ID,
			Name:        a.Name,
			DataType:    a.DataType,
			IsRequired:  a.IsRequired,
			Input:       codec.Hint(a.DataType),
			Options:     a.Options,
		})
	}
	return fields, nil
}

func buildDefinition(categoryID int64, req DefineAttributeRequest) (*models.AttributeDefinition, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, utils.ValidationError("attribute name is required")
	}
	if req.DataType == "" {
		req.DataType = models.DataTypeString
	}
	if !req.DataType.Valid() {
		return nil, utils.ValidationError(fmt.Sprintf("unsupported data type %q", req.DataType))
	}

	def := &models.AttributeDefinition{
		CategoryID: categoryID,
		Name:       name,
		DataType:   req.DataType,
		IsRequired: req.IsRequired,
		SortOrder:  req.SortOrder,
	}
	if req.DataType != models.DataTypeEnum {
		return def, nil
	}

	options := make(models.StringList, 0, len(req.Options))
	seen := make(map[string]struct{}, len(req.Options))
	for _, o := range req.Options {
		// Options are stored byte-exact; enum values are compared the same way.
		if strings.TrimSpace(o) == "" {
			return nil, utils.ValidationError("enum options must not be blank")
		}
		if _, dup := seen[o]; dup {
			return nil, utils.ValidationError(fmt.Sprintf("duplicate option %q", o))
		}
		seen[o] = struct{}{}
		options = append(options, o)
	}
	if len(options) == 0 {
		return nil, utils.ValidationError("enum attribute requires at least one option")
	}
	def.Options = options
	return def, nil
}
