// Package sqlsource serves sections and items stored in a SQL database through
// gorm.
//
// The source keeps an ordered cache of section ids and item counts, refreshed
// from the database with parallel count queries. NumberOfSections and
// NumberOfItems answer from that cache; NodeForItem reads the item row. The
// mutation helpers change the rows in a transaction, update the cache and submit
// the matching command while the source is locked, exactly like memsource.
//
// Rows changed behind the source's back are picked up by Refresh, which submits
// a full reload.
package sqlsource
