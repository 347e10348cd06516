package locate

import (
	"context"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/spf13/afero"
)

// SyncFromS3 : copies every .sql / .csv object under prefix into root, keeping the
// directory structure below the prefix. Returns the number of files written.
func SyncFromS3(ctx context.Context, api s3iface.S3API, bucket string, prefix string, fs afero.Fs, root string) (int, error) {
	var (
		keys    []string
		written int
	)
	err := api.ListObjectsV2PagesWithContext(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
		Prefix: aws.String(prefix),
	}, func(page *s3.ListObjectsV2Output, _ bool) bool {
		for _, obj := range page.Contents {
			k := aws.StringValue(obj.Key)
			if ext := path.Ext(k); ext == ".sql" || ext == ".csv" {
				keys = append(keys, k)
			}
		}
		return true
	})
	if err != nil {
		return 0, fmt.Errorf("locate : could not list s3://%s/%s : %w", bucket, prefix, err)
	}
	for _, k := range keys {
		rel := strings.TrimPrefix(strings.TrimPrefix(k, prefix), "/")
		target := filepath.Join(root, filepath.FromSlash(rel))
		if !within(root, target) {
			return written, fmt.Errorf("locate : s3://%s/%s resolves outside %s", bucket, k, root)
		}
		if err := download(ctx, api, bucket, k, fs, target); err != nil {
			return written, err
		}
		written++
	}
	return written, nil
}

func download(ctx context.Context, api s3iface.S3API, bucket string, key string, fs afero.Fs, target string) error {
	out, err := api.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("locate : could not get s3://%s/%s : %w", bucket, key, err)
	}
	defer out.Body.Close()
	if err := fs.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("locate : could not create %s : %w", filepath.Dir(target), err)
	}
	f, err := fs.Create(target)
	if err != nil {
		return fmt.Errorf("locate : could not create %s : %w", target, err)
	}
	_, err = io.Copy(f, out.Body)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("locate : could not write %s : %w", target, err)
	}
	return nil
}

func within(root string, target string) bool {
	rel, err := filepath.Rel(root, target)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
