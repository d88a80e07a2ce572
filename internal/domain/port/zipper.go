package port

import "context"

// Zipper bundles extracted frame files into a single archive.
type Zipper interface {
	CreateZip(ctx context.Context, filePaths []string, outputPath string) error
}
