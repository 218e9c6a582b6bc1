package repository

// Constraint names declared by the migrations. Services match on these to
// turn storage rejections into domain errors.
const (
	ConstraintActiveCartPerUser    = "uniq_active_cart_per_user"
	ConstraintCartItemVariant      = "uniq_cart_item_variant"
	ConstraintPaymentOrder         = "payments_order_id_key"
	ConstraintOrderCart            = "orders_cart_id_key"
	ConstraintCategoryName         = "categories_name_key"
	ConstraintCategorySlug         = "categories_slug_key"
	ConstraintProductSlug          = "products_slug_key"
	ConstraintVariantSku           = "product_variants_sku_key"
	ConstraintUserEmail            = "users_email_key"
	ConstraintReviewPerUser        = "uniq_review_per_user_product"
	ConstraintReviewUser           = "reviews_user_id_fkey"
	ConstraintReviewProduct        = "reviews_product_id_fkey"
	ConstraintDefaultAddress       = "uniq_default_address_per_user"
	ConstraintInventoryNonNegative = "inventory_qty_available_non_negative"
)
