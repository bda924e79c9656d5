// Package site is the thin HTTP adapter for the exchange website.
//
// The site's HTML structure and file layout are fragile external contracts;
// everything that talks to spimex.com goes through this client so that
// timeouts, pooling and the User-Agent live in one place.
package site
