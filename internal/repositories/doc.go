// package repositories provides the sqlite persistence layer.
//
// [SearchCacheRepository] stores destination search results keyed by a
// normalized track key so repeat transfers skip the network. Rows use
// generated UUID ids, a monotonic sequence and soft deletes.
package repositories
