/*
artcache runs a caching server in front of the site that serves the artwork metadata,
the IPFS manifest, and the gallery images. JSON documents are cached with a TTL and
concurrent requests for the same document share one upstream fetch. Images are loaded
from the primary delivery network and, if that fails, from the IPFS gateway named in
the manifest.

Usage:

	artcache [global flags] command [command flags]

Commands:

	serve     Runs the server
	warm      Loads the metadata and the listed artwork images and reports
	manifest  Lists the entries of the IPFS manifest
	version   Displays the version

Global flags:

	--log-level string
		Log level: debug, info, warn, or error. Defaults to 'error'.
	--log-file string
		Log to the file rather than the console.
	--config-file string
		A YAML file to load configuration from. Command line values override the file.

Run 'artcache command --help' for the command flags.
*/
package main
