// Package mock runs a site that serves the artwork metadata, the IPFS manifest, the
// gallery images, and - on the same server - the IPFS gateway paths the manifest points
// to. The artworks are fixed so tests can exercise every branch of the image fallback:
//
//	rocks-1   on the primary network and in the manifest
//	amor-2    only on the gateway
//	solo-3    only on the primary network, no manifest entry
//	lost-4    in the manifest but the gateway has no content for it
//	nogw-5    in the manifest without a gateway URL
package mock
