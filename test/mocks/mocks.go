// test/mocks/mocks.go

// Package mocks contains generated mocks for the application's interfaces.
// To regenerate mocks, run `make mocks` from the root directory.
package mocks

//go:generate mockgen -source=../../internal/core/ports/inventory_snapshot.go -destination=inventory_snapshot_mock.go -package=mocks
//go:generate mockgen -source=../../internal/core/ports/lot_metadata.go -destination=lot_metadata_mock.go -package=mocks
//go:generate mockgen -source=../../internal/core/ports/allocation_service.go -destination=allocation_service_mock.go -package=mocks
//go:generate mockgen -source=../../internal/core/ports/cache.go -destination=cache_repository_mock.go -package=mocks
//go:generate mockgen -source=../../internal/core/ports/report_store.go -destination=report_store_mock.go -package=mocks
//go:generate mockgen -source=../../internal/core/ports/database.go -destination=database_mock.go -package=mocks
