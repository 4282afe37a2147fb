// Package tsdata loads time series data for a chart from a data source that
// is slow, partial, and possibly unreliable, and caches one window of it.
//
// A chart asks for data with a Query: a time unit plus a Section, which is an
// anchor time with a count of items wanted before and after it. The Provider
// answers from its Cache when it can, and otherwise loads the missing data
// from a DataSource before answering.
//
// ## Request Planning
//
// When the cache holds no data near the query anchor, a single Reset request
// replaces the cached window. When the query reaches past one or both edges
// of the cached window, a LeftExpand and/or RightExpand request extends the
// window from its current edge. Request sections are enlarged by the expand
// multiplier, so that panning a chart does not cause a request on every move.
//
// The data source never says that no more data exists. The cache infers this
// from a source returning fewer items than requested, and marks that edge of
// the window as the end of data. No further requests are made past such an
// edge.
//
// ## Merging
//
// Expand results are merged only if they connect to the cached window,
// sharing its edge item. A result that does not connect is discarded and
// logged. After all requests for a query finish, items far outside the query
// are discarded to bound memory use.
//
// ## Concurrency
//
// Only one query is processed at a time. Concurrent calls to LoadData wait
// for the active query to finish, after which each sees the cache as the
// previous query left it. This means that many identical concurrent queries
// cause only one load.
//
// Each request is given a timeout. A request that times out is finished
// without an error, and its data is ignored if it arrives later. The
// data source is given a context that is canceled when the request finishes,
// but is not required to honor it.
package tsdata
