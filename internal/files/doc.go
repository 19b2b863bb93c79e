// Package files provides file system discovery and output helpers.
//
// Discovery resolves the dataset file: an exact name first, then a
// case-insensitive scan of the directory. When nothing matches it returns a
// *NotFoundError carrying the searched path and the directory listing.
//
// Manager writes generated exports atomically under the reports directory.
//
// Example usage:
//
//	discovery := files.NewDiscovery("")
//	info, err := discovery.Resolve("data", "premio_mayor_loteria_medellin.csv")
//	if errors.Is(err, files.ErrFileNotFound) {
//	    var nf *files.NotFoundError
//	    errors.As(err, &nf)
//	    fmt.Println(nf.Available)
//	}
package files
