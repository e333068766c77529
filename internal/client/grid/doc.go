// Package grid adapts the lead listing endpoint to a windowed row model.
//
// DataSource turns a [StartRow, EndRow) window plus a filter model into one
// paged GET /leads call and reports the rows together with the last row
// index once the end of the result set is in sight. It keeps no state
// between calls.
//
// RowModel sits on top of a DataSource and caches fixed-size row blocks.
// Blocks covering a window are loaded concurrently, identical in-flight
// loads are shared, and Refresh drops every cached block before loading
// the visible window again. Loads started before a purge never repopulate
// the cache.
//
// Page numbering follows the backend: page = EndRow / (EndRow - StartRow),
// which is only meaningful for windows whose StartRow is a multiple of
// their size. Other windows are refused with ErrUnalignedWindow instead of
// being sent with a wrong page number.
package grid
