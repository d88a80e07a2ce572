// Package archive bundles extracted frames into a zip file.
package archive

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ZipCreator stores frames under a fixed directory prefix inside the
// archive, keeping their zero-padded names so they sort in output order.
type ZipCreator struct {
	prefix string
}

func NewZipCreator(prefix string) *ZipCreator {
	return &ZipCreator{prefix: prefix}
}

func (z *ZipCreator) CreateZip(ctx context.Context, filePaths []string, outputPath string) (err error) {
	zipFile, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create zip file: %w", err)
	}
	defer func() {
		if cerr := zipFile.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close zip file: %w", cerr)
		}
	}()

	zipWriter := zip.NewWriter(zipFile)

	for _, fp := range filePaths {
		select {
		case <-ctx.Done():
			zipWriter.Close()
			return ctx.Err()
		default:
		}

		if err := z.addFile(zipWriter, fp); err != nil {
			zipWriter.Close()
			return fmt.Errorf("add %s to zip: %w", fp, err)
		}
	}

	if err := zipWriter.Close(); err != nil {
		return fmt.Errorf("finish zip: %w", err)
	}
	return nil
}

func (z *ZipCreator) addFile(zw *zip.Writer, filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return err
	}

	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}

	header.Name = filepath.Base(filename)
	if z.prefix != "" {
		header.Name = z.prefix + "/" + header.Name
	}
	// jpg and png payloads are already compressed
	header.Method = zip.Store

	writer, err := zw.CreateHeader(header)
	if err != nil {
		return err
	}

	_, err = io.Copy(writer, file)
	return err
}
