// Package artwork resolves artwork identifiers to loaded images. The primary delivery
// network is always tried first using the conventional '<base>/<id>.<format>' URL. Only
// when that fails is the IPFS manifest consulted for a gateway URL to try instead. The
// manifest is fetched through the fetch cache and memoized after the first success.
package artwork
