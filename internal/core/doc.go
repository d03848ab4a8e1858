// Package core provides the dataset registry and query service behind the
// fleet console.
//
// This package holds the domain logic independent of any UI or transport
// layer. It can be used by web handlers, CLI tools, or tests without
// modification.
//
// # Dataset Registry
//
// Datasets are registered at init time using [Register]. Each
// [DatasetDefinition] describes the columns of one console view and how they
// are filtered:
//
//	core.Register(DatasetDefinition{
//	    Info: DatasetInfo{Key: "assets", Group: "Fleet", Label: "Assets"},
//	    Columns: []ColumnSpec{
//	        {Key: "plate_number", Kind: filter.KindText, Sortable: true, Searchable: true},
//	        {Key: "mileage", Kind: filter.KindNumberRange, Aggregate: true},
//	    },
//	})
//
// # Queries
//
// [Service.Query] loads every row of a dataset from a [RowSource], then:
//
//  1. applies the column filters through the filter engine
//  2. applies the global search over searchable columns
//  3. sorts by up to [MaxSortLevels] columns, missing values last
//  4. clamps and slices the requested page
//  5. aggregates numeric columns over all matching rows
//
// [Service.Export] runs the same pipeline without pagination. Concurrent
// exports are bounded by an [ExportLimiter].
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - FLT001: invalid filter spec
//   - DS001, COL001: unknown dataset or column
//   - SET001-SET002: column settings
//   - DB001-DB007: database errors
//   - REQ001-REQ004: request errors
package core
