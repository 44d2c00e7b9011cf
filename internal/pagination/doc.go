// Package pagination drives the report client across pages.
//
// Pages are requested strictly one after another, starting at the configured
// page number and increasing by one. Which signal ends the walk is chosen by
// the stop policy:
//
//	size  a page with fewer records than the page limit (or none) is the last
//	flag  the response's nextPage field decides; without a paging block the
//	      size rule applies
//	auto  whichever of the above signals the response provides
//
// A run that is still receiving data after MaxPages pages fails with a
// PAGINATION error rather than returning a partial result.
package pagination
