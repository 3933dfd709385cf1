// Package sitegraph crawls a single web site and records the link graph
// between its pages.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., goquery/, bloom/, sqlite/). The
// concurrent crawl engine lives in crawl/.
package sitegraph
