package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/dukerupert/mercato/internal/domain"
	"github.com/dukerupert/mercato/internal/repository"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

type catalogService struct {
	store repository.Store
	deps  Deps
}

// NewCatalogService creates the catalog write surface the ledger reads
// prices and stock from.
func NewCatalogService(store repository.Store, deps Deps) domain.CatalogService {
	return &catalogService{
		store: store,
		deps:  deps.withDefaults(),
	}
}

func (s *catalogService) CreateCategory(ctx context.Context, params domain.CreateCategoryParams) (*domain.Category, error) {
	const op = "catalog.create_category"

	name := strings.TrimSpace(params.Name)
	slug := strings.TrimSpace(params.Slug)
	fields := map[string]string{}
	if name == "" {
		fields["name"] = "is required"
	}
	if slug == "" {
		fields["slug"] = "is required"
	}
	if len(fields) > 0 {
		return nil, domain.NewFieldsError(op, fields)
	}

	var parentID pgtype.UUID
	if params.ParentID != "" {
		id, err := parseUUID(op, "parent_id", params.ParentID)
		if err != nil {
			return nil, err
		}
		parentID = id
	}

	category, err := s.store.CreateCategory(ctx, repository.CreateCategoryParams{
		Name:     name,
		Slug:     slug,
		ParentID: parentID,
	})
	if err != nil {
		switch {
		case repository.IsConstraint(err, repository.ErrUniqueViolation, repository.ConstraintCategoryName):
			return nil, domain.WithOp(domain.ErrDuplicateName, op)
		case repository.IsConstraint(err, repository.ErrUniqueViolation, repository.ConstraintCategorySlug):
			return nil, domain.WithOp(domain.ErrDuplicateSlug, op)
		case repository.IsConstraint(err, repository.ErrForeignKeyViolation, ""):
			return nil, domain.WithOp(domain.ErrCategoryNotFound, op)
		}
		return nil, s.deps.fail(op, err, "slug", slug)
	}

	return toCategory(category), nil
}

func (s *catalogService) CreateProduct(ctx context.Context, params domain.CreateProductParams) (*domain.Product, error) {
	const op = "catalog.create_product"

	name := strings.TrimSpace(params.Name)
	slug := strings.TrimSpace(params.Slug)
	fields := map[string]string{}
	if name == "" {
		fields["name"] = "is required"
	}
	if slug == "" {
		fields["slug"] = "is required"
	}
	if !domain.IsValidPrice(params.BasePrice) {
		fields["base_price"] = domain.ErrInvalidPrice.Message
	}
	if len(fields) > 0 {
		return nil, domain.NewFieldsError(op, fields)
	}

	categoryID, err := parseUUID(op, "category_id", params.CategoryID)
	if err != nil {
		return nil, err
	}

	product, err := s.store.CreateProduct(ctx, repository.CreateProductParams{
		CategoryID:  categoryID,
		Name:        name,
		Slug:        slug,
		Description: params.Description,
		BasePrice:   params.BasePrice,
		CreatedAt:   s.deps.Clock(),
	})
	if err != nil {
		switch {
		case repository.IsConstraint(err, repository.ErrUniqueViolation, repository.ConstraintProductSlug):
			return nil, domain.WithOp(domain.ErrDuplicateSlug, op)
		case repository.IsConstraint(err, repository.ErrForeignKeyViolation, ""):
			return nil, domain.WithOp(domain.ErrCategoryNotFound, op)
		}
		return nil, s.deps.fail(op, err, "slug", slug)
	}

	s.deps.Logger.Info("Product created", "product_id", uuidString(product.ID), "slug", slug)
	return toProduct(product), nil
}

func (s *catalogService) GetProduct(ctx context.Context, productID string) (*domain.Product, error) {
	const op = "catalog.get_product"

	id, err := parseUUID(op, "product_id", productID)
	if err != nil {
		return nil, err
	}

	product, err := s.store.GetProduct(ctx, id)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.WithOp(domain.ErrProductNotFound, op)
		}
		return nil, s.deps.fail(op, err, "product_id", productID)
	}
	return toProduct(product), nil
}

// UpdateProduct changes the live catalog row. Prices already captured in
// carts and orders are not affected.
func (s *catalogService) UpdateProduct(ctx context.Context, productID string, params domain.UpdateProductParams) (*domain.Product, error) {
	const op = "catalog.update_product"

	id, err := parseUUID(op, "product_id", productID)
	if err != nil {
		return nil, err
	}

	arg := repository.UpdateProductParams{ID: id}
	if params.Name != nil {
		name := strings.TrimSpace(*params.Name)
		if name == "" {
			return nil, domain.NewValidationError(op, "name", "is required")
		}
		arg.Name = pgtype.Text{String: name, Valid: true}
	}
	if params.BasePrice != nil {
		if !domain.IsValidPrice(*params.BasePrice) {
			return nil, domain.NewValidationError(op, "base_price", domain.ErrInvalidPrice.Message)
		}
		arg.BasePrice = decimal.NewNullDecimal(*params.BasePrice)
	}
	if params.IsActive != nil {
		arg.IsActive = pgtype.Bool{Bool: *params.IsActive, Valid: true}
	}

	product, err := s.store.UpdateProduct(ctx, arg)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.WithOp(domain.ErrProductNotFound, op)
		}
		return nil, s.deps.fail(op, err, "product_id", productID)
	}

	s.deps.Logger.Info("Product updated", "product_id", productID)
	return toProduct(product), nil
}

// CreateVariant adds a variant together with its inventory row.
func (s *catalogService) CreateVariant(ctx context.Context, params domain.CreateVariantParams) (*domain.Variant, error) {
	const op = "catalog.create_variant"

	sku := strings.TrimSpace(params.SKU)
	fields := map[string]string{}
	if sku == "" {
		fields["sku"] = "is required"
	}
	if params.PriceOverride.Valid && !domain.IsValidPrice(params.PriceOverride.Decimal) {
		fields["price_override"] = domain.ErrInvalidPrice.Message
	}
	if params.InitialStock < 0 || params.InitialStock > math.MaxInt32 {
		fields["initial_stock"] = "must be zero or more"
	}
	if len(fields) > 0 {
		return nil, domain.NewFieldsError(op, fields)
	}

	productID, err := parseUUID(op, "product_id", params.ProductID)
	if err != nil {
		return nil, err
	}

	attrs := params.Attrs
	if attrs == nil {
		attrs = map[string]string{}
	}
	attrsJSON, err := json.Marshal(attrs)
	if err != nil {
		return nil, s.deps.fail(op, fmt.Errorf("failed to encode attrs: %w", err))
	}

	var variant repository.ProductVariant
	err = s.store.ExecTx(ctx, func(q repository.Querier) error {
		created, err := q.CreateVariant(ctx, repository.CreateVariantParams{
			ProductID:     productID,
			Sku:           sku,
			Attrs:         attrsJSON,
			PriceOverride: params.PriceOverride,
		})
		if err != nil {
			switch {
			case repository.IsConstraint(err, repository.ErrUniqueViolation, repository.ConstraintVariantSku):
				return domain.WithOp(domain.ErrDuplicateSKU, op)
			case repository.IsConstraint(err, repository.ErrForeignKeyViolation, ""):
				return domain.WithOp(domain.ErrProductNotFound, op)
			}
			return fmt.Errorf("failed to create variant: %w", err)
		}

		if _, err := q.CreateInventory(ctx, repository.CreateInventoryParams{
			VariantID:    created.ID,
			QtyAvailable: int32(params.InitialStock),
			UpdatedAt:    s.deps.Clock(),
		}); err != nil {
			return fmt.Errorf("failed to create inventory: %w", err)
		}

		variant = created
		return nil
	})
	if err != nil {
		return nil, s.deps.fail(op, err, "sku", sku)
	}

	s.deps.Logger.Info("Variant created", "variant_id", uuidString(variant.ID), "sku", sku, "initial_stock", params.InitialStock)
	return s.variant(op, variant)
}

func (s *catalogService) GetVariant(ctx context.Context, variantID string) (*domain.Variant, error) {
	const op = "catalog.get_variant"

	id, err := parseUUID(op, "variant_id", variantID)
	if err != nil {
		return nil, err
	}

	variant, err := s.store.GetVariant(ctx, id)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.WithOp(domain.ErrVariantNotFound, op)
		}
		return nil, s.deps.fail(op, err, "variant_id", variantID)
	}
	return s.variant(op, variant)
}

// SetPriceOverride sets or, with an invalid NullDecimal, clears the
// variant's price override.
func (s *catalogService) SetPriceOverride(ctx context.Context, variantID string, price decimal.NullDecimal) (*domain.Variant, error) {
	const op = "catalog.set_price_override"

	id, err := parseUUID(op, "variant_id", variantID)
	if err != nil {
		return nil, err
	}
	if price.Valid && !domain.IsValidPrice(price.Decimal) {
		return nil, domain.NewValidationError(op, "price_override", domain.ErrInvalidPrice.Message)
	}

	variant, err := s.store.SetVariantPriceOverride(ctx, repository.SetVariantPriceOverrideParams{
		ID:            id,
		PriceOverride: price,
	})
	if err != nil {
		if isNoRows(err) {
			return nil, domain.WithOp(domain.ErrVariantNotFound, op)
		}
		return nil, s.deps.fail(op, err, "variant_id", variantID)
	}
	return s.variant(op, variant)
}

// DeleteCategory fails with ErrReferentialIntegrity while products still
// belong to the category. Child categories are detached, not deleted.
func (s *catalogService) DeleteCategory(ctx context.Context, categoryID string) error {
	return s.delete(ctx, "catalog.delete_category", "category_id", categoryID, domain.ErrCategoryNotFound, s.store.DeleteCategory)
}

// DeleteProduct removes a product and its variants. It fails with
// ErrReferentialIntegrity while any variant is in a cart or an order.
func (s *catalogService) DeleteProduct(ctx context.Context, productID string) error {
	return s.delete(ctx, "catalog.delete_product", "product_id", productID, domain.ErrProductNotFound, s.store.DeleteProduct)
}

// DeleteVariant fails with ErrReferentialIntegrity while the variant is in
// a cart or an order.
func (s *catalogService) DeleteVariant(ctx context.Context, variantID string) error {
	return s.delete(ctx, "catalog.delete_variant", "variant_id", variantID, domain.ErrVariantNotFound, s.store.DeleteVariant)
}

func (s *catalogService) delete(
	ctx context.Context,
	op, field, rawID string,
	notFound *domain.Error,
	del func(ctx context.Context, id pgtype.UUID) (int64, error),
) error {
	id, err := parseUUID(op, field, rawID)
	if err != nil {
		return err
	}

	n, err := del(ctx, id)
	if err != nil {
		if repository.IsConstraint(err, repository.ErrForeignKeyViolation, "") {
			return domain.WrapError(fmt.Errorf("%w: %w", domain.ErrReferentialIntegrity, err),
				domain.ECONFLICT, op, domain.ErrReferentialIntegrity.Message)
		}
		return s.deps.fail(op, err, field, rawID)
	}
	if n == 0 {
		return domain.WithOp(notFound, op)
	}

	s.deps.Logger.Info("Catalog record deleted", "op", op, field, rawID)
	return nil
}

func (s *catalogService) variant(op string, v repository.ProductVariant) (*domain.Variant, error) {
	variant, err := toVariant(v)
	if err != nil {
		return nil, s.deps.fail(op, err, "variant_id", uuidString(v.ID))
	}
	return variant, nil
}
