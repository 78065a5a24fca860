package migrate

import (
	"context"

	"cncraft/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type MigrateOptions struct {
	CreateExtensions       bool // pgcrypto for gen_random_uuid
	CreateChecks           bool // integrity CHECK constraints
	CreateIndexes          bool // lookup indexes
	CreateFKsViaSQL        bool // FKs via SQL on top of the GORM constraints
	CreateUpdatedAtTrigger bool // updated_at maintenance trigger
}

func DefaultMigrateOptions() MigrateOptions {
	return MigrateOptions{
		CreateExtensions:       true,
		CreateChecks:           true,
		CreateIndexes:          true,
		CreateFKsViaSQL:        true,
		CreateUpdatedAtTrigger: true,
	}
}

func MigrateStorefrontDB(ctx context.Context, db *gorm.DB, log *zap.Logger, opt MigrateOptions) error {
	log.Info("Starting storefront database migration")

	if opt.CreateExtensions {
		if err := db.WithContext(ctx).Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto`).Error; err != nil {
			log.Error("failed to enable pgcrypto extension", zap.Error(err))
			return err
		}
		if err := db.WithContext(ctx).Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
			log.Error("failed to enable uuid-ossp extension", zap.Error(err))
			return err
		}
	}

	log.Info("Creating storefront tables")
	if err := db.WithContext(ctx).AutoMigrate(
		&models.Category{},
		&models.Product{},
		&models.UserProfile{},
		&models.Order{},
		&models.OrderLineItem{},
	); err != nil {
		log.Error("failed to create tables", zap.Error(err))
		return err
	}

	if opt.CreateUpdatedAtTrigger {
		if err := db.WithContext(ctx).Exec(`
CREATE OR REPLACE FUNCTION set_updated_at() RETURNS trigger AS $$
BEGIN NEW.updated_at = now(); RETURN NEW; END; $$ LANGUAGE plpgsql;

DROP TRIGGER IF EXISTS trg_products_updated ON products;
CREATE TRIGGER trg_products_updated
BEFORE UPDATE ON products
FOR EACH ROW EXECUTE FUNCTION set_updated_at();

DROP TRIGGER IF EXISTS trg_user_profiles_updated ON user_profiles;
CREATE TRIGGER trg_user_profiles_updated
BEFORE UPDATE ON user_profiles
FOR EACH ROW EXECUTE FUNCTION set_updated_at();
`).Error; err != nil {
			log.Error("failed to create updated_at trigger", zap.Error(err))
			return err
		}
	}

	if opt.CreateChecks {
		// line items: quantity strictly positive, frozen total non-negative
		if err := db.WithContext(ctx).Exec(`
ALTER TABLE order_line_items
  DROP CONSTRAINT IF EXISTS chk_order_line_items_quantity_gt_zero;
ALTER TABLE order_line_items
  ADD CONSTRAINT chk_order_line_items_quantity_gt_zero
  CHECK (quantity > 0);
`).Error; err != nil {
			log.Error("failed to create CHECK for order_line_items.quantity", zap.Error(err))
			return err
		}
		if err := db.WithContext(ctx).Exec(`
ALTER TABLE order_line_items
  DROP CONSTRAINT IF EXISTS chk_order_line_items_total_non_negative;
ALTER TABLE order_line_items
  ADD CONSTRAINT chk_order_line_items_total_non_negative
  CHECK (lineitem_total >= 0);
`).Error; err != nil {
			log.Error("failed to create CHECK for order_line_items.lineitem_total", zap.Error(err))
			return err
		}
		if err := db.WithContext(ctx).Exec(`
ALTER TABLE orders
  DROP CONSTRAINT IF EXISTS chk_orders_totals_non_negative;
ALTER TABLE orders
  ADD CONSTRAINT chk_orders_totals_non_negative
  CHECK (order_total >= 0 AND delivery_cost >= 0 AND grand_total >= 0);
`).Error; err != nil {
			log.Error("failed to create CHECK for orders totals", zap.Error(err))
			return err
		}
		if err := db.WithContext(ctx).Exec(`
ALTER TABLE products
  DROP CONSTRAINT IF EXISTS chk_products_price_non_negative;
ALTER TABLE products
  ADD CONSTRAINT chk_products_price_non_negative
  CHECK (price >= 0 AND (discount_price IS NULL OR discount_price >= 0));
`).Error; err != nil {
			log.Error("failed to create CHECK for products.price", zap.Error(err))
			return err
		}
	}

	if opt.CreateIndexes {
		// order history lookups by profile, newest first
		if err := db.WithContext(ctx).Exec(`
CREATE INDEX IF NOT EXISTS ix_orders_profile_date
ON orders (user_profile_id, date DESC);
`).Error; err != nil {
			log.Error("failed to create index ix_orders_profile_date", zap.Error(err))
			return err
		}
		// webhook correlation by order number is already UNIQUE; line item fetch per order
		if err := db.WithContext(ctx).Exec(`
CREATE INDEX IF NOT EXISTS ix_order_line_items_order
ON order_line_items (order_id, created_at ASC);
`).Error; err != nil {
			log.Error("failed to create index ix_order_line_items_order", zap.Error(err))
			return err
		}
	}

	if opt.CreateFKsViaSQL {
		if err := db.WithContext(ctx).Exec(`
ALTER TABLE order_line_items
  DROP CONSTRAINT IF EXISTS fk_order_line_items_order,
  ADD CONSTRAINT fk_order_line_items_order
    FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE;
`).Error; err != nil {
			log.Error("failed to create FK order_line_items.order_id -> orders.id", zap.Error(err))
			return err
		}
		if err := db.WithContext(ctx).Exec(`
ALTER TABLE order_line_items
  DROP CONSTRAINT IF EXISTS fk_order_line_items_product,
  ADD CONSTRAINT fk_order_line_items_product
    FOREIGN KEY (product_id) REFERENCES products(id);
`).Error; err != nil {
			log.Error("failed to create FK order_line_items.product_id -> products.id", zap.Error(err))
			return err
		}
	}

	log.Info("Storefront database migration completed successfully")
	return nil
}
