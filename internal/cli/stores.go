package cli

import (
	"context"
	"fmt"
	"log/slog"

	"ecom-warehouse/internal/storage"
	"ecom-warehouse/internal/storage/clickhouse"
	"ecom-warehouse/internal/storage/memory"
	"ecom-warehouse/internal/storage/migrations"
	"ecom-warehouse/internal/storage/postgres"
)

// storeSet bundles every store the engines need, plus the connections
// backing them.
type storeSet struct {
	StagingCustomers  storage.StagingCustomerStore
	StagingProducts   storage.StagingProductStore
	StagingOrders     storage.StagingOrderStore
	StagingOrderItems storage.StagingOrderItemStore
	Customers         storage.CustomerDimensionStore
	Products          storage.ProductDimensionStore
	OrderFacts        storage.OrderFactStore
	OrderItemFacts    storage.OrderItemFactStore
	CheckResults      storage.CheckResultStore

	close func()
}

// Close releases the backing connections, if any.
func (s *storeSet) Close() {
	if s.close != nil {
		s.close()
	}
}

// openStores selects and initializes the storage backend. Memory serves
// when requested or when neither DSN is configured; otherwise both DSNs are
// required, the embedded migrations run, and the SQL-backed stores are
// wired over the migrated connections.
func openStores(ctx context.Context, opts *RootOptions) (*storeSet, error) {
	if opts.UseMemory || (opts.Env.PostgresDSN == "" && opts.Env.ClickHouseDSN == "") {
		slog.Debug("storage ready", "backend", "memory")
		return memoryStores(), nil
	}
	if opts.Env.PostgresDSN == "" || opts.Env.ClickHouseDSN == "" {
		return nil, fmt.Errorf("backed storage needs both WAREHOUSE_POSTGRES_DSN and WAREHOUSE_CLICKHOUSE_DSN; pass --use-memory to run without them")
	}

	pool, err := postgres.NewPool(ctx, opts.Env.PostgresDSN)
	if err != nil {
		return nil, err
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres migrations: %w", err)
	}

	conn, err := migrations.RunClickhouseMigrations(ctx, opts.Env.ClickHouseDSN)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("clickhouse migrations: %w", err)
	}
	slog.Debug("storage ready", "backend", "postgres+clickhouse")

	return &storeSet{
		StagingCustomers:  clickhouse.NewStagingCustomerStore(conn),
		StagingProducts:   clickhouse.NewStagingProductStore(conn),
		StagingOrders:     clickhouse.NewStagingOrderStore(conn),
		StagingOrderItems: clickhouse.NewStagingOrderItemStore(conn),
		Customers:         postgres.NewCustomerDimensionStore(pool),
		Products:          postgres.NewProductDimensionStore(pool),
		OrderFacts:        postgres.NewOrderFactStore(pool),
		OrderItemFacts:    postgres.NewOrderItemFactStore(pool),
		CheckResults:      postgres.NewCheckResultStore(pool),
		close: func() {
			if err := conn.Close(); err != nil {
				slog.Error("close clickhouse connection", "error", err)
			}
			pool.Close()
		},
	}, nil
}

// memoryStores wires the in-memory backend.
func memoryStores() *storeSet {
	return &storeSet{
		StagingCustomers:  memory.NewStagingCustomerStore(),
		StagingProducts:   memory.NewStagingProductStore(),
		StagingOrders:     memory.NewStagingOrderStore(),
		StagingOrderItems: memory.NewStagingOrderItemStore(),
		Customers:         memory.NewCustomerDimensionStore(),
		Products:          memory.NewProductDimensionStore(),
		OrderFacts:        memory.NewOrderFactStore(),
		OrderItemFacts:    memory.NewOrderItemFactStore(),
		CheckResults:      memory.NewCheckResultStore(),
	}
}
